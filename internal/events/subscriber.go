// Package events delivers real-time notifications about an organization's issues.
// Payloads are opaque; their arrival is the signal to refetch.
package events

import (
	"strings"

	"github.com/h0rv/polardash/internal/domain"
)

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers raw event payloads on the returned channel.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}

// Topic returns the subject carrying every event for an organization.
func Topic(platform domain.Platform, orgName string) string {
	return "polar." + token(string(platform)) + "." + token(orgName) + ".>"
}

// token makes s safe as a single NATS subject token.
func token(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t':
			return '_'
		}
		return r
	}, s)
}

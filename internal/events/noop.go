package events

import "sync"

// NoopSubscriber never delivers anything (used when NATS is not configured).
type NoopSubscriber struct{}

// Subscribe returns a channel that stays open until cancel is called.
func (n *NoopSubscriber) Subscribe(topic string) (<-chan []byte, func(), error) {
	ch := make(chan []byte)
	var once sync.Once
	return ch, func() { once.Do(func() { close(ch) }) }, nil
}

func (n *NoopSubscriber) Close() error {
	return nil
}

package backoffice

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/h0rv/polardash/internal/domain"
)

var (
	// ErrAlreadyPaid indicates the reward has a paid_at timestamp.
	ErrAlreadyPaid = errors.New("reward already paid out")
	// ErrTransferInFlight indicates a transfer for the same reward has not resolved yet.
	ErrTransferInFlight = errors.New("transfer already in progress")
)

// Transferrer creates payout transfers.
type Transferrer interface {
	CreateRewardTransfer(ctx context.Context, pledgeID, issueRewardID string) error
}

// Transfers tracks in-flight transfer requests so a reward cannot be submitted
// twice before the first request resolves.
type Transfers struct {
	mu       sync.Mutex
	inFlight map[domain.TransferKey]struct{}
}

// NewTransfers creates an empty tracker.
func NewTransfers() *Transfers {
	return &Transfers{inFlight: make(map[domain.TransferKey]struct{})}
}

// Begin marks key as in flight. It returns false if it already was.
func (t *Transfers) Begin(key domain.TransferKey) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.inFlight[key]; ok {
		return false
	}
	t.inFlight[key] = struct{}{}
	return true
}

// Done clears key after the request resolved, successfully or not.
func (t *Transfers) Done(key domain.TransferKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inFlight, key)
}

// InFlight reports whether a transfer for key is pending.
func (t *Transfers) InFlight(key domain.TransferKey) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.inFlight[key]
	return ok
}

// Transfer creates the payout for r. It refuses paid rewards and rewards with a
// transfer already in flight. The reward itself is not modified; callers refetch
// the reward list after a successful transfer.
func (t *Transfers) Transfer(ctx context.Context, client Transferrer, r domain.Reward) error {
	if r.Paid() {
		return ErrAlreadyPaid
	}
	key := r.TransferKey()
	if !t.Begin(key) {
		return ErrTransferInFlight
	}
	defer t.Done(key)

	if err := client.CreateRewardTransfer(ctx, key.PledgeID, key.IssueRewardID); err != nil {
		return fmt.Errorf("transfer for pledge %s reward %s: %w", key.PledgeID, key.IssueRewardID, err)
	}
	return nil
}

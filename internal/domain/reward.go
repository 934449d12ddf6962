package domain

import (
	"fmt"
	"strings"
	"time"
)

// Money is an amount in the smallest currency unit (cents).
type Money struct {
	Amount   int64
	Currency string
}

// Dollars renders cents as a dollar string. With showCents the fractional part is
// always included; with pretty the integer part gets thousands separators.
func Dollars(cents int64, showCents, pretty bool) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}

	whole := cents / 100
	frac := cents % 100

	intPart := fmt.Sprintf("%d", whole)
	if pretty {
		intPart = groupThousands(intPart)
	}

	out := intPart
	if showCents || frac != 0 {
		out = fmt.Sprintf("%s.%02d", intPart, frac)
	}
	if neg {
		out = "-" + out
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// PledgeState is the lifecycle state of a pledge.
type PledgeState string

const (
	PledgeStateInitiated           PledgeState = "initiated"
	PledgeStateCreated             PledgeState = "created"
	PledgeStatePending             PledgeState = "pending"
	PledgeStateConfirmationPending PledgeState = "confirmation_pending"
	PledgeStateRefunded            PledgeState = "refunded"
	PledgeStateDisputed            PledgeState = "disputed"
	PledgeStateChargeDisputed      PledgeState = "charge_disputed"
)

// Pledger is the backer behind a pledge. All fields are optional.
type Pledger struct {
	Name           string
	GitHubUsername string
	AvatarURL      string
}

// DisplayName returns the best available name for the pledger.
func (p *Pledger) DisplayName() string {
	switch {
	case p == nil:
		return "Anonymous"
	case p.GitHubUsername != "":
		return p.GitHubUsername
	case p.Name != "":
		return p.Name
	default:
		return "Anonymous"
	}
}

// Pledge is a monetary commitment by a backer toward an issue.
type Pledge struct {
	ID                string
	Amount            Money
	State             PledgeState
	Pledger           *Pledger
	ScheduledPayoutAt *time.Time
	Issue             Issue
}

// Recipient is who a reward is paid out to: a UserRecipient or an
// OrganizationRecipient, never both.
type Recipient interface {
	isRecipient()
	DisplayName() string
	Avatar() string
}

// UserRecipient is a reward paid to a Polar user.
type UserRecipient struct {
	ID        string
	Username  string
	AvatarURL string
}

func (UserRecipient) isRecipient()          {}
func (u UserRecipient) DisplayName() string { return u.Username }
func (u UserRecipient) Avatar() string      { return u.AvatarURL }

// OrganizationRecipient is a reward paid to a Polar organization.
type OrganizationRecipient struct {
	ID        string
	Name      string
	AvatarURL string
}

func (OrganizationRecipient) isRecipient()          {}
func (o OrganizationRecipient) DisplayName() string { return o.Name }
func (o OrganizationRecipient) Avatar() string      { return o.AvatarURL }

// Reward is one disbursement line item splitting a pledge's funds to a recipient.
type Reward struct {
	Pledge          Pledge
	Recipient       Recipient
	Amount          Money
	PaidAt          *time.Time
	IssueRewardID   string
	PledgePaymentID string
	PledgerEmail    string
}

// Paid reports whether the reward has been transferred.
func (r Reward) Paid() bool {
	return r.PaidAt != nil
}

// TransferKey identifies a transfer request for a reward.
type TransferKey struct {
	PledgeID      string
	IssueRewardID string
}

// TransferKey returns the key the transfer endpoint is called with.
func (r Reward) TransferKey() TransferKey {
	return TransferKey{PledgeID: r.Pledge.ID, IssueRewardID: r.IssueRewardID}
}

// PaymentURL returns the Stripe dashboard page for the pledge payment.
func (r Reward) PaymentURL() string {
	return "https://dashboard.stripe.com/payments/" + r.PledgePaymentID
}

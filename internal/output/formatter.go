// Package output renders dashboard data for the non-interactive commands.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/h0rv/polardash/internal/backoffice"
	"github.com/h0rv/polardash/internal/domain"
)

// FormatType represents the output format type
type FormatType int

const (
	// FormatTable outputs as a formatted table
	FormatTable FormatType = iota
	// FormatJSON outputs as JSON
	FormatJSON
)

// Formatter handles output formatting
type Formatter struct {
	format FormatType
	writer io.Writer
	colors palette
}

type palette struct {
	muted, bold, red, green, blue, hiBlue *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		muted:  color.New(color.FgHiBlack),
		bold:   color.New(color.Bold),
		red:    color.New(color.FgRed),
		green:  color.New(color.FgGreen),
		blue:   color.New(color.FgBlue),
		hiBlue: color.New(color.FgHiBlue),
	}
	for _, c := range []*color.Color{p.muted, p.bold, p.red, p.green, p.blue, p.hiBlue} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// NewFormatter creates a formatter writing to stdout, colorized when stdout supports it.
func NewFormatter(format FormatType) *Formatter {
	return NewFormatterWithWriter(format, os.Stdout, ShouldUseColor(os.Stdout))
}

// NewFormatterWithWriter creates a new formatter with custom writer
func NewFormatterWithWriter(format FormatType, writer io.Writer, useColor bool) *Formatter {
	return &Formatter{
		format: format,
		writer: writer,
		colors: newPalette(useColor && format == FormatTable),
	}
}

type issueJSON struct {
	ID         string   `json:"id"`
	Repository string   `json:"repository"`
	Number     int      `json:"number"`
	Title      string   `json:"title"`
	State      string   `json:"state"`
	Status     string   `json:"status"`
	Labels     []string `json:"labels"`
	Reactions  int      `json:"reactions"`
	Comments   int      `json:"comments"`
	Pledged    int64    `json:"pledged_cents"`
	Currency   string   `json:"currency"`
	URL        string   `json:"url"`
	CreatedAt  string   `json:"created_at,omitempty"`
}

type issueListJSON struct {
	TotalCount int         `json:"total_count"`
	Issues     []issueJSON `json:"issues"`
}

// FormatIssues writes a list of dashboard issues with the reported total.
func (f *Formatter) FormatIssues(issues []domain.Issue, total int) error {
	if f.format == FormatJSON {
		out := issueListJSON{TotalCount: total, Issues: make([]issueJSON, 0, len(issues))}
		for _, is := range issues {
			labels := make([]string, 0, len(is.Labels))
			for _, l := range is.Labels {
				labels = append(labels, l.Name)
			}
			var created string
			if !is.IssueCreatedAt.IsZero() {
				created = is.IssueCreatedAt.Format(time.RFC3339)
			}
			out.Issues = append(out.Issues, issueJSON{
				ID:         is.ID,
				Repository: is.Repository.FullName(),
				Number:     is.Number,
				Title:      is.Title,
				State:      is.State,
				Status:     string(is.Status),
				Labels:     labels,
				Reactions:  is.Reactions,
				Comments:   is.Comments,
				Pledged:    is.PledgedAmount.Amount,
				Currency:   is.PledgedAmount.Currency,
				URL:        is.URL(),
				CreatedAt:  created,
			})
		}
		return f.writeJSON(out)
	}

	if len(issues) == 0 {
		_, err := fmt.Fprintln(f.writer, f.colors.muted.Sprint("No issues found"))
		return err
	}

	w := tabwriter.NewWriter(f.writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ISSUE\tTITLE\tSTATUS\tPLEDGED\t👍\tLABELS")
	for _, is := range issues {
		labels := make([]string, 0, len(is.Labels))
		for _, l := range is.Labels {
			labels = append(labels, l.Name)
		}
		fmt.Fprintf(w, "%s#%d\t%s\t%s\t%s\t%d\t%s\n",
			f.colors.muted.Sprint(is.Repository.FullName()),
			is.Number,
			truncate(is.Title, 60),
			statusLabel(is.Status),
			f.money(is.PledgedAmount),
			is.Reactions,
			strings.Join(labels, ","),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(f.writer, "\n%s\n", f.colors.muted.Sprintf("Showing %d of %d issues", len(issues), total))
	return err
}

type rewardJSON struct {
	IssueRewardID string `json:"issue_reward_id"`
	Recipient     string `json:"recipient"`
	RecipientType string `json:"recipient_type"`
	AmountCents   int64  `json:"amount_cents"`
	PaidAt        string `json:"paid_at,omitempty"`
}

type pledgeJSON struct {
	PledgeID        string       `json:"pledge_id"`
	Pledger         string       `json:"pledger"`
	PledgerEmail    string       `json:"pledger_email,omitempty"`
	State           string       `json:"state"`
	AmountCents     int64        `json:"amount_cents"`
	PledgePaymentID string       `json:"pledge_payment_id,omitempty"`
	Rewards         []rewardJSON `json:"rewards"`
}

type issueGroupJSON struct {
	IssueID string       `json:"issue_id"`
	Issue   string       `json:"issue"`
	Title   string       `json:"title"`
	Pledges []pledgeJSON `json:"pledges"`
}

// FormatRewards writes the issue, pledge, reward hierarchy.
func (f *Formatter) FormatRewards(groups []backoffice.IssueGroup) error {
	if f.format == FormatJSON {
		out := make([]issueGroupJSON, 0, len(groups))
		for _, g := range groups {
			ig := issueGroupJSON{
				IssueID: g.Issue.ID,
				Issue:   fmt.Sprintf("%s#%d", g.Issue.Repository.FullName(), g.Issue.Number),
				Title:   g.Issue.Title,
			}
			for _, pg := range g.Pledges {
				pj := pledgeJSON{
					PledgeID:        pg.Pledge.ID,
					Pledger:         pg.Pledge.Pledger.DisplayName(),
					PledgerEmail:    pg.PledgerEmail,
					State:           string(pg.Pledge.State),
					AmountCents:     pg.Pledge.Amount.Amount,
					PledgePaymentID: pg.PaymentID,
				}
				for _, r := range pg.Rewards {
					rj := rewardJSON{
						IssueRewardID: r.IssueRewardID,
						AmountCents:   r.Amount.Amount,
					}
					if r.Recipient != nil {
						rj.Recipient = r.Recipient.DisplayName()
						rj.RecipientType = RecipientType(r.Recipient)
					}
					if r.PaidAt != nil {
						rj.PaidAt = r.PaidAt.Format(time.RFC3339)
					}
					pj.Rewards = append(pj.Rewards, rj)
				}
				ig.Pledges = append(ig.Pledges, pj)
			}
			out = append(out, ig)
		}
		return f.writeJSON(out)
	}

	if len(groups) == 0 {
		_, err := fmt.Fprintln(f.writer, f.colors.muted.Sprint("No pending rewards"))
		return err
	}

	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(f.writer)
		}
		fmt.Fprintf(f.writer, "%s %s\n",
			f.colors.bold.Sprintf("%s#%d", g.Issue.Repository.FullName(), g.Issue.Number),
			g.Issue.Title,
		)
		for _, pg := range g.Pledges {
			fmt.Fprintf(f.writer, "  pledge %s  %s  %s  by %s\n",
				pg.Pledge.ID,
				f.money(pg.Pledge.Amount),
				f.PledgeState(pg.Pledge.State),
				pg.Pledge.Pledger.DisplayName(),
			)
			w := tabwriter.NewWriter(f.writer, 0, 0, 2, ' ', 0)
			for _, r := range pg.Rewards {
				recipient := "?"
				if r.Recipient != nil {
					recipient = r.Recipient.DisplayName() + " (" + RecipientType(r.Recipient) + ")"
				}
				paid := f.colors.red.Sprint("unpaid")
				if r.Paid() {
					paid = f.colors.green.Sprint("paid " + r.PaidAt.Format("2006-01-02"))
				}
				fmt.Fprintf(w, "    reward %s\t%s\t%s\t%s\n", r.IssueRewardID, recipient, f.money(r.Amount), paid)
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

// FormatMessage writes a plain status line.
func (f *Formatter) FormatMessage(format string, args ...any) error {
	if f.format == FormatJSON {
		return f.writeJSON(map[string]string{"message": fmt.Sprintf(format, args...)})
	}
	_, err := fmt.Fprintf(f.writer, format+"\n", args...)
	return err
}

// PledgeState renders a pledge state with its badge color.
func (f *Formatter) PledgeState(s domain.PledgeState) string {
	label := strings.ReplaceAll(string(s), "_", " ")
	switch s {
	case domain.PledgeStateDisputed, domain.PledgeStateChargeDisputed:
		return f.colors.red.Sprint(label)
	case domain.PledgeStatePending:
		return f.colors.green.Sprint(label)
	case domain.PledgeStateConfirmationPending:
		return f.colors.blue.Sprint(label)
	case domain.PledgeStateCreated:
		return f.colors.hiBlue.Sprint(label)
	default:
		return f.colors.muted.Sprint(label)
	}
}

// RecipientType names the recipient variant.
func RecipientType(r domain.Recipient) string {
	switch r.(type) {
	case domain.OrganizationRecipient:
		return "organization"
	default:
		return "user"
	}
}

func (f *Formatter) money(m domain.Money) string {
	return "$" + domain.Dollars(m.Amount, false, true)
}

func (f *Formatter) writeJSON(v any) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func statusLabel(s domain.IssueStatus) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(string(s), "_", " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

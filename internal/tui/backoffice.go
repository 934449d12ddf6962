package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/h0rv/polardash/internal/backoffice"
	"github.com/h0rv/polardash/internal/domain"
)

type rowKind int

const (
	rowIssue rowKind = iota
	rowPledge
	rowReward
)

// backofficeRow addresses one line of the issue -> pledge -> reward tree.
type backofficeRow struct {
	kind   rowKind
	issue  int
	pledge int
	reward int
}

var (
	issueRowStyle = lipgloss.NewStyle().Bold(true)

	paidStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))

	unpaidStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// BackofficeModel lists pending rewards grouped by issue and pledge and
// creates payout transfers.
type BackofficeModel struct {
	deps      Deps
	transfers *backoffice.Transfers

	keymap  BackofficeKeyMap
	help    HelpModel
	spinner spinner.Model

	groups []backoffice.IssueGroup
	rows   []backofficeRow
	cursor int
	offset int

	loading    bool
	err        error
	confirm    *domain.Reward
	toast      string
	toastErr   bool
	showHelp   bool
	standalone bool

	width  int
	height int
}

// NewBackofficeModel creates the backoffice screen. A standalone screen quits
// on esc instead of returning to the dashboard.
func NewBackofficeModel(deps Deps, standalone bool) BackofficeModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return BackofficeModel{
		deps:       deps.withDefaults(),
		transfers:  backoffice.NewTransfers(),
		keymap:     DefaultBackofficeKeyMap(),
		help:       NewHelpModel("Backoffice keys", DefaultBackofficeKeyMap()),
		spinner:    sp,
		loading:    true,
		standalone: standalone,
	}
}

// Init loads the pending rewards.
func (m BackofficeModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.WindowSize(), m.loadRewards())
}

func (m BackofficeModel) loadRewards() tea.Cmd {
	client := m.deps.Polar
	ctx := m.deps.Ctx
	return func() tea.Msg {
		rewards, err := client.ListPendingRewards(ctx)
		return rewardsLoadedMsg{rewards: rewards, err: err}
	}
}

func (m BackofficeModel) transfer(r domain.Reward) tea.Cmd {
	client := m.deps.Polar
	ctx := m.deps.Ctx
	transfers := m.transfers
	return func() tea.Msg {
		return transferDoneMsg{reward: r, err: transfers.Transfer(ctx, client, r)}
	}
}

// Update handles messages
func (m BackofficeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		(&m).adjustScroll()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case rewardsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.deps.Logger.Warn("loading pending rewards failed", "err", msg.err)
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.groups = backoffice.Group(msg.rewards)
		(&m).rebuildRows()
		return m, nil

	case transferDoneMsg:
		key := msg.reward.TransferKey()
		switch {
		case msg.err == nil:
			m.deps.Logger.Info("transfer created", "pledge_id", key.PledgeID, "issue_reward_id", key.IssueRewardID)
			m.setToast(fmt.Sprintf("Transfer created for %s", recipientName(msg.reward)), false)
			m.loading = true
			return m, m.loadRewards()
		case errors.Is(msg.err, backoffice.ErrTransferInFlight):
			m.setToast("Transfer already in progress", true)
		case errors.Is(msg.err, backoffice.ErrAlreadyPaid):
			m.setToast("Reward already paid out", true)
		default:
			m.deps.Logger.Error("transfer failed", "pledge_id", key.PledgeID, "issue_reward_id", key.IssueRewardID, "err", msg.err)
			m.setToast(fmt.Sprintf("Transfer failed: %v", msg.err), true)
		}
		return m, nil

	case openURLFailedMsg:
		m.setToast(fmt.Sprintf("Open failed: %v", msg.err), true)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

func (m *BackofficeModel) setToast(text string, isErr bool) {
	m.toast = text
	m.toastErr = isErr
}

func (m BackofficeModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, func() tea.Msg { return QuitMsg{} }
	}

	// Transfer confirmation
	if m.confirm != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			r := *m.confirm
			m.confirm = nil
			m.setToast("Creating transfer...", false)
			return m, m.transfer(r)
		case "n", "N", "esc":
			m.confirm = nil
		}
		return m, nil
	}

	if m.showHelp {
		if msg.String() == "?" || msg.String() == "q" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		if m.standalone {
			return m, func() tea.Msg { return QuitMsg{} }
		}
		return m, func() tea.Msg { return closeBackofficeMsg{} }
	case "?":
		m.showHelp = true
	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			(&m).adjustScroll()
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
			(&m).adjustScroll()
		}
	case "r":
		m.loading = true
		return m, m.loadRewards()
	case "t":
		r := m.selectedReward()
		switch {
		case r == nil:
			m.setToast("Select a reward to transfer", true)
		case r.Paid():
			m.setToast("Reward already paid out", true)
		case m.transfers.InFlight(r.TransferKey()):
			m.setToast("Transfer already in progress", true)
		default:
			m.confirm = r
		}
	case "o":
		if row, ok := m.selectedRow(); ok {
			return m, openURLCmd(m.groups[row.issue].Issue.URL())
		}
	case "P":
		pg := m.selectedPledge()
		if pg == nil {
			return m, nil
		}
		if pg.PaymentID == "" {
			m.setToast("Pledge has no payment id", true)
			return m, nil
		}
		return m, openURLCmd(domain.Reward{PledgePaymentID: pg.PaymentID}.PaymentURL())
	}

	return m, nil
}

// rebuildRows flattens the groups into display rows.
func (m *BackofficeModel) rebuildRows() {
	m.rows = m.rows[:0]
	for i, ig := range m.groups {
		m.rows = append(m.rows, backofficeRow{kind: rowIssue, issue: i})
		for j, pg := range ig.Pledges {
			m.rows = append(m.rows, backofficeRow{kind: rowPledge, issue: i, pledge: j})
			for k := range pg.Rewards {
				m.rows = append(m.rows, backofficeRow{kind: rowReward, issue: i, pledge: j, reward: k})
			}
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
	m.adjustScroll()
}

func (m BackofficeModel) selectedRow() (backofficeRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return backofficeRow{}, false
	}
	return m.rows[m.cursor], true
}

func (m BackofficeModel) selectedPledge() *backoffice.PledgeGroup {
	row, ok := m.selectedRow()
	if !ok || row.kind == rowIssue {
		return nil
	}
	return &m.groups[row.issue].Pledges[row.pledge]
}

func (m BackofficeModel) selectedReward() *domain.Reward {
	row, ok := m.selectedRow()
	if !ok || row.kind != rowReward {
		return nil
	}
	r := m.groups[row.issue].Pledges[row.pledge].Rewards[row.reward]
	return &r
}

// size returns the terminal size, assuming 80x24 until the first WindowSizeMsg.
func (m BackofficeModel) size() (width, height int) {
	width, height = m.width, m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}
	return width, height
}

func (m BackofficeModel) listHeight() int {
	_, height := m.size()
	h := height - 4 // header, blank, footer, help
	if h < 3 {
		h = 3
	}
	return h
}

func (m *BackofficeModel) adjustScroll() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

// View renders the reward tree.
func (m BackofficeModel) View() string {
	width, height := m.size()

	header := titleStyle.Render("Backoffice · Pending rewards")
	if len(m.groups) > 0 {
		unpaid := len(backoffice.Unpaid(m.groups))
		header += dimStyle.Render("  " + plural(len(m.groups), "issue") + ", " + plural(unpaid, "unpaid reward"))
	}
	if m.loading {
		header += " " + m.spinner.View()
	}

	var body string
	switch {
	case m.showHelp:
		body = m.help.View(width)
	case m.err != nil:
		body = ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + dimStyle.Render("Press r to retry")
	case m.loading && len(m.rows) == 0:
		body = m.spinner.View() + " Loading rewards..."
	case len(m.rows) == 0:
		body = dimStyle.Render("No pending rewards")
	default:
		end := m.offset + m.listHeight()
		if end > len(m.rows) {
			end = len(m.rows)
		}
		lines := make([]string, 0, end-m.offset)
		for i := m.offset; i < end; i++ {
			lines = append(lines, m.renderRow(m.rows[i], i == m.cursor, width))
		}
		body = strings.Join(lines, "\n")
	}

	footer := m.help.ShortView(width)
	if m.toast != "" {
		if m.toastErr {
			footer = errorStyle.Render("✗ "+m.toast) + "  " + footer
		} else {
			footer = successStyle.Render("✓ "+m.toast) + "  " + footer
		}
	}

	view := lipgloss.JoinVertical(lipgloss.Left, header, "", body, footer)
	if m.confirm != nil {
		return m.renderConfirmOver(width, height)
	}
	return view
}

func (m BackofficeModel) renderRow(row backofficeRow, selected bool, width int) string {
	ig := m.groups[row.issue]
	var line string

	switch row.kind {
	case rowIssue:
		line = issueRowStyle.Render(fmt.Sprintf("%s#%d", ig.Issue.Repository.FullName(), ig.Issue.Number)) +
			" " + truncate(ig.Issue.Title, max(width-30, 10))
	case rowPledge:
		pg := ig.Pledges[row.pledge]
		pledger := pg.Pledge.Pledger.DisplayName()
		if pg.PledgerEmail != "" {
			pledger += " <" + pg.PledgerEmail + ">"
		}
		line = "  " + moneyStyle.Render(money(pg.Pledge.Amount)) + " " +
			pledgeStateStyle(pg.Pledge.State).Render(strings.ReplaceAll(string(pg.Pledge.State), "_", " ")) +
			" by " + pledger
		if pg.PaymentID != "" {
			line += dimStyle.Render("  " + pg.PaymentID)
		}
	case rowReward:
		r := ig.Pledges[row.pledge].Rewards[row.reward]
		var state string
		switch {
		case r.Paid():
			state = paidStyle.Render("paid " + r.PaidAt.Format("2006-01-02"))
		case m.transfers.InFlight(r.TransferKey()):
			state = m.spinner.View() + "transferring"
		default:
			state = unpaidStyle.Render("unpaid")
		}
		line = fmt.Sprintf("    → %s  %s  %s", recipientName(r), money(r.Amount), state)
	}

	if selected {
		return SelectedItemStyle.Render("> ") + line
	}
	return "  " + line
}

// renderConfirmOver draws the transfer confirmation modal.
func (m BackofficeModel) renderConfirmOver(width, height int) string {
	r := m.confirm
	var b strings.Builder
	b.WriteString(titleStyle.Render("Create Transfer") + "\n\n")
	b.WriteString(dimStyle.Render("Issue      ") + fmt.Sprintf("%s#%d", r.Pledge.Issue.Repository.FullName(), r.Pledge.Issue.Number) + "\n")
	b.WriteString(dimStyle.Render("Pledge     ") + r.Pledge.ID + "\n")
	b.WriteString(dimStyle.Render("Reward     ") + r.IssueRewardID + "\n")
	b.WriteString(dimStyle.Render("Recipient  ") + recipientName(*r) + "\n")
	b.WriteString(dimStyle.Render("Amount     ") + moneyStyle.Render(money(r.Amount)) + "\n\n")
	b.WriteString(dimStyle.Render("y/Enter to confirm · Esc/n to cancel"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modalStyle.Render(b.String()))
}

// recipientName renders the recipient with its variant.
func recipientName(r domain.Reward) string {
	switch rec := r.Recipient.(type) {
	case domain.UserRecipient:
		return rec.DisplayName() + " (user)"
	case domain.OrganizationRecipient:
		return rec.DisplayName() + " (organization)"
	default:
		return "unknown recipient"
	}
}

type (
	rewardsLoadedMsg struct {
		rewards []domain.Reward
		err     error
	}
	transferDoneMsg struct {
		reward domain.Reward
		err    error
	}
)

// plural renders "1 issue" or "3 issues".
func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/h0rv/polardash/internal/domain"
)

// errNoGitHub is shown when the detail screen has no GitHub client.
var errNoGitHub = errors.New("no GitHub token available; run 'gh auth login' or set GITHUB_TOKEN")

const composerHeight = 5

var (
	factLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(10)
	authorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	opStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true)
	markerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("99")).Padding(0, 1)
	ruleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// DetailModel shows the funding summary of a dashboard issue above its
// GitHub discussion.
type DetailModel struct {
	client IssueDetailAPI
	ctx    context.Context

	issue  domain.Issue
	detail *domain.IssueDetail

	spinner  spinner.Model
	composer textarea.Model
	viewport viewport.Model

	commentMode    bool
	discardPending bool
	posting        bool
	loading        bool
	loadErr        string
	errorMsg       string
	successMsg     string

	width  int
	height int
}

// NewDetailModel creates the detail screen. client may be nil, in which case
// only Polar's copy of the issue is shown.
func NewDetailModel(issue domain.Issue, client IssueDetailAPI, ctx context.Context) DetailModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = "Leave a comment on GitHub..."
	ta.ShowLineNumbers = false
	ta.SetHeight(composerHeight)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()

	vp := viewport.New(80, 10)
	vp.MouseWheelEnabled = true

	m := DetailModel{
		client:   client,
		ctx:      ctx,
		issue:    issue,
		spinner:  sp,
		composer: ta,
		viewport: vp,
		loading:  client != nil,
	}
	if client == nil {
		m.loadErr = errNoGitHub.Error()
	}
	m.refreshDiscussion()
	return m
}

// Init starts loading the discussion.
func (m DetailModel) Init() tea.Cmd {
	if m.client == nil {
		return tea.Batch(m.spinner.Tick, tea.WindowSize())
	}
	return tea.Batch(m.spinner.Tick, tea.WindowSize(), m.loadComments())
}

// Update handles messages
func (m DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case commentsLoadedMsg:
		m.loading = false
		m.loadErr = ""
		m.detail = msg.detail
		m.refreshDiscussion()
		return m, nil

	case commentsErrorMsg:
		m.loading = false
		m.loadErr = msg.err.Error()
		return m, nil

	case commentPostedMsg:
		m.posting = false
		m.closeComposer()
		m.successMsg = "Comment posted!"
		m.loading = true
		return m, m.loadComments()

	case commentErrorMsg:
		m.posting = false
		m.errorMsg = fmt.Sprintf("Failed: %v", msg.err)
		return m, nil

	case openURLFailedMsg:
		m.errorMsg = fmt.Sprintf("Open failed: %v", msg.err)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if !m.commentMode {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	if m.commentMode {
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m DetailModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, func() tea.Msg { return QuitMsg{} }
	}

	if m.commentMode {
		switch key {
		case "ctrl+s":
			body := strings.TrimSpace(m.composer.Value())
			if body == "" || m.posting {
				return m, nil
			}
			m.posting = true
			m.errorMsg = ""
			return m, m.postComment(body)
		case "esc":
			// A non-empty draft needs a second esc to be thrown away
			if strings.TrimSpace(m.composer.Value()) != "" && !m.discardPending {
				m.discardPending = true
				return m, nil
			}
			m.closeComposer()
			return m, nil
		}
		m.discardPending = false
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd
	}

	switch key {
	case "q", "esc":
		return m, func() tea.Msg { return closeDetailMsg{} }
	case "o":
		return m, openURLCmd(m.issue.URL())
	case "c":
		m.successMsg = ""
		if !m.canComment() {
			if m.client == nil {
				m.errorMsg = errNoGitHub.Error()
			}
			return m, nil
		}
		m.commentMode = true
		m.errorMsg = ""
		m.layout()
		focus := m.composer.Focus()
		return m, tea.Batch(focus, textarea.Blink)
	case "j", "down":
		m.viewport.LineDown(1)
	case "k", "up":
		m.viewport.LineUp(1)
	case "ctrl+d":
		m.viewport.HalfViewDown()
	case "ctrl+u":
		m.viewport.HalfViewUp()
	case "g":
		m.viewport.GotoTop()
	case "G":
		m.viewport.GotoBottom()
	}
	return m, nil
}

func (m *DetailModel) closeComposer() {
	m.commentMode = false
	m.discardPending = false
	m.composer.Reset()
	m.composer.Blur()
	m.layout()
}

// layout sizes the discussion viewport to what is left below the summary.
func (m *DetailModel) layout() {
	if m.width == 0 {
		return
	}
	m.viewport.Width = m.width
	m.composer.SetWidth(m.width - 2)

	used := lipgloss.Height(m.renderSummary()) + 2 // rule + footer
	if m.commentMode {
		used += composerHeight + 3
	}
	m.viewport.Height = max(m.height-used, 3)
	m.refreshDiscussion()
}

// View renders the screen
func (m DetailModel) View() string {
	var sections []string
	sections = append(sections, m.renderSummary())
	sections = append(sections, ruleStyle.Render(strings.Repeat("─", max(m.width, 20))))
	sections = append(sections, m.renderDiscussion())
	if m.commentMode {
		sections = append(sections, m.composer.View())
	}
	sections = append(sections, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderSummary renders the Polar side: where the issue lives, its status and
// how much has been pledged.
func (m DetailModel) renderSummary() string {
	issue := m.issue
	width := max(m.width, 40)
	var b strings.Builder

	b.WriteString(dimStyle.Render(fmt.Sprintf("%s #%d", issue.Repository.FullName(), issue.Number)))
	if hasMarker(issue) {
		b.WriteString(" " + markerStyle.Render("polar"))
	}
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(wordwrap.String(issue.Title, width)))
	b.WriteString("\n\n")

	fact := func(label, value string) {
		b.WriteString(factLabelStyle.Render(label) + value + "\n")
	}

	status := statusNames[issue.Status]
	if status == "" {
		status = string(issue.Status)
	}
	if issue.State == "closed" {
		status += dimStyle.Render(" (closed on GitHub)")
	}
	fact("Status", status)

	pledged := dimStyle.Render("nothing yet")
	if issue.PledgedAmount.Amount > 0 {
		pledged = moneyStyle.Render(money(issue.PledgedAmount))
	}
	fact("Pledged", pledged)
	fact("Activity", fmt.Sprintf("👍 %d  💬 %d", issue.Reactions, issue.Comments))
	if !issue.IssueCreatedAt.IsZero() {
		fact("Opened", issue.IssueCreatedAt.Format("2006-01-02"))
	}
	if len(issue.Labels) > 0 {
		names := make([]string, 0, len(issue.Labels))
		for _, l := range issue.Labels {
			names = append(names, l.Name)
		}
		fact("Labels", truncate(strings.Join(names, ", "), width-10))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m DetailModel) renderDiscussion() string {
	switch {
	case m.loading && m.detail == nil:
		return m.spinner.View() + " Loading discussion from GitHub..."
	case m.loadErr != "" && m.detail == nil && m.body() == "":
		return errorStyle.Render("Error: " + m.loadErr)
	case m.body() == "" && len(m.comments()) == 0:
		return dimStyle.Render("No description or comments")
	}
	return m.viewport.View()
}

func (m DetailModel) renderFooter() string {
	var status string
	switch {
	case m.posting:
		status = m.spinner.View() + " Posting..."
	case m.discardPending:
		status = errorStyle.Render("Unsaved comment, press esc again to discard")
	case m.errorMsg != "":
		status = errorStyle.Render("✗ " + m.errorMsg)
	case m.successMsg != "":
		status = successStyle.Render("✓ " + m.successMsg)
	}

	keys := "[q]back [o]open [j/k]scroll [g/G]top/bottom"
	if m.commentMode {
		keys = "[ctrl+s]post [esc]cancel"
	} else if m.canComment() {
		keys += " [c]comment"
	}
	if status == "" {
		return dimStyle.Render(keys)
	}
	return status + "  " + dimStyle.Render(keys)
}

// refreshDiscussion renders the opening post and comments into the viewport.
func (m *DetailModel) refreshDiscussion() {
	wrap := max(m.viewport.Width-2, 30)
	var posts []string

	if body := m.body(); body != "" {
		author, created := "author", m.issue.IssueCreatedAt
		if m.detail != nil {
			if m.detail.Author != "" {
				author = m.detail.Author
			}
			created = parseTime(m.detail.CreatedAt)
		}
		posts = append(posts, authorStyle.Render(author)+" "+opStyle.Render("OP")+" "+
			dimStyle.Render(ago(created, time.Now()))+"\n"+wordwrap.String(body, wrap))
	}

	for _, c := range m.comments() {
		author := c.Author
		if author == "" {
			author = "(deleted)"
		}
		posts = append(posts, authorStyle.Render(author)+" "+
			dimStyle.Render(ago(parseTime(c.CreatedAt), time.Now()))+"\n"+wordwrap.String(c.Body, wrap))
	}

	m.viewport.SetContent(strings.Join(posts, "\n\n"))
}

// body prefers the GitHub body over Polar's copy.
func (m DetailModel) body() string {
	if m.detail != nil {
		return m.detail.Body
	}
	return m.issue.Body
}

func (m DetailModel) comments() []domain.Comment {
	if m.detail == nil {
		return nil
	}
	return m.detail.Comments
}

// canComment reports whether the GitHub subject is known.
func (m DetailModel) canComment() bool {
	return m.client != nil && m.detail != nil && m.detail.NodeID != ""
}

func (m DetailModel) postComment(body string) tea.Cmd {
	client, ctx, subjectID := m.client, m.ctx, m.detail.NodeID
	return func() tea.Msg {
		if _, err := client.AddComment(ctx, subjectID, body); err != nil {
			return commentErrorMsg{err: err}
		}
		return commentPostedMsg{}
	}
}

func (m DetailModel) loadComments() tea.Cmd {
	client, ctx, issue := m.client, m.ctx, m.issue
	return func() tea.Msg {
		detail, err := client.GetIssueDetail(ctx, issue.Repository.Organization.Name, issue.Repository.Name, issue.Number)
		if err != nil {
			return commentsErrorMsg{err: err}
		}
		return commentsLoadedMsg{detail: detail}
	}
}

func hasMarker(issue domain.Issue) bool {
	for _, l := range issue.Labels {
		if l.Name == "polar" {
			return true
		}
	}
	return false
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

var agoUnits = []struct {
	size   time.Duration
	suffix string
}{
	{365 * 24 * time.Hour, "y"},
	{30 * 24 * time.Hour, "mo"},
	{7 * 24 * time.Hour, "w"},
	{24 * time.Hour, "d"},
	{time.Hour, "h"},
	{time.Minute, "m"},
}

// ago renders the time between t and now as "3d ago". Zero times render empty.
func ago(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	for _, u := range agoUnits {
		if d >= u.size {
			return fmt.Sprintf("%d%s ago", int(d/u.size), u.suffix)
		}
	}
	return "just now"
}

type (
	commentPostedMsg  struct{}
	commentErrorMsg   struct{ err error }
	commentsLoadedMsg struct{ detail *domain.IssueDetail }
	commentsErrorMsg  struct{ err error }
)

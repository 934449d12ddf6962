package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/h0rv/polardash/internal/dashboard"
	"github.com/h0rv/polardash/internal/domain"
)

func TestBanner_FitsWidth(t *testing.T) {
	b := Banner{
		Color: BannerMuted,
		Body:  strings.Repeat("pledge ", 40),
		Right: "[x]skip",
	}

	for _, width := range []int{30, 60, 120} {
		out := b.Render(width)
		assert.Equal(t, width, lipgloss.Width(out), "width %d", width)
		assert.Contains(t, out, "[x]skip")
	}
}

func TestBanner_RightSlotOnFirstLine(t *testing.T) {
	out := Banner{Body: "Short notice", Right: "[r]retry"}.Render(60)
	lines := strings.Split(out, "\n")

	// Border, content, border
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Short notice")
	assert.Contains(t, lines[1], "[r]retry")
}

func TestBanner_NarrowStacksRightSlot(t *testing.T) {
	out := Banner{Body: "Body", Right: "[i]install [x]skip"}.Render(24)
	lines := strings.Split(out, "\n")

	assert.Greater(t, len(lines), 3)
	assert.NotContains(t, lines[1], "[i]install")
}

func TestNoticeModel_Keys(t *testing.T) {
	opened := stubOpenURL(t)
	m := NewNoticeModel(dashboard.RoutePersonal, []domain.Pledge{
		{ID: "p1", Amount: domain.Money{Amount: 2500}, State: domain.PledgeStateCreated, Issue: testIssue(1, domain.IssueStatusBacklog)},
		{ID: "p2", Amount: domain.Money{Amount: 5000}, State: domain.PledgeStatePending, Issue: testIssue(2, domain.IssueStatusBacklog)},
	})
	assert.Contains(t, m.View(), "$25")

	model, _ := m.Update(keyPress("j"))
	m = model.(NoticeModel)
	_, cmd := m.Update(keyPress("o"))
	cmd()
	assert.Equal(t, []string{"https://github.com/polarsource/polar/issues/2"}, *opened)

	_, cmd = m.Update(keyPress("r"))
	assert.IsType(t, reloadRootMsg{}, cmd())

	_, cmd = m.Update(keyPress("B"))
	assert.IsType(t, openBackofficeMsg{}, cmd())
}

package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the dashboard view.
type KeyMap struct {
	// Navigation
	Left  key.Binding
	Right key.Binding
	Up    key.Binding
	Down  key.Binding

	// Filters
	ToggleStatus key.Binding
	Search       key.Binding
	CycleSort    key.Binding
	PickSort     key.Binding
	OnlyPledged  key.Binding
	OnlyBadged   key.Binding
	SwitchTab    key.Binding

	// Actions
	Open       key.Binding
	Detail     key.Binding
	Refresh    key.Binding
	LoadMore   key.Binding
	PickRepo   key.Binding
	PickOrg    key.Binding
	Backoffice key.Binding
	Help       key.Binding
	Quit       key.Binding

	// Extension banner
	InstallExtension key.Binding
	SkipExtension    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous column"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next column"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous issue"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next issue"),
		),
		ToggleStatus: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5"),
			key.WithHelp("1-5", "toggle status"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "next sort"),
		),
		PickSort: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "choose sort"),
		),
		OnlyPledged: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "only pledged"),
		),
		OnlyBadged: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "only badged"),
		),
		SwitchTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "issues/dependencies"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open in browser"),
		),
		Detail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "issue detail"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		LoadMore: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "load more"),
		),
		PickRepo: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "choose repository"),
		),
		PickOrg: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "switch organization"),
		),
		Backoffice: key.NewBinding(
			key.WithKeys("B"),
			key.WithHelp("B", "backoffice"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		InstallExtension: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "install extension"),
		),
		SkipExtension: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss banner"),
		),
	}
}

// ShortHelp returns key bindings to be shown in the mini help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Detail, k.Open},
		{k.ToggleStatus, k.Search, k.CycleSort, k.PickSort, k.OnlyPledged, k.OnlyBadged, k.SwitchTab},
		{k.Refresh, k.LoadMore, k.PickRepo, k.PickOrg, k.Backoffice},
		{k.InstallExtension, k.SkipExtension, k.Help, k.Quit},
	}
}

// BackofficeKeyMap defines the key bindings of the reward reconciliation screen.
type BackofficeKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Transfer  key.Binding
	OpenIssue key.Binding
	Payment   key.Binding
	Refresh   key.Binding
	Back      key.Binding
	Help      key.Binding
}

// DefaultBackofficeKeyMap returns the default backoffice bindings.
func DefaultBackofficeKeyMap() BackofficeKeyMap {
	return BackofficeKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous row"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next row"),
		),
		Transfer: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "create transfer"),
		),
		OpenIssue: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open issue"),
		),
		Payment: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "open Stripe payment"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("esc/q", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

// ShortHelp returns key bindings to be shown in the mini help view.
func (k BackofficeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Transfer, k.Payment, k.Back}
}

// FullHelp returns key bindings for the expanded help view.
func (k BackofficeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Transfer, k.OpenIssue, k.Payment},
		{k.Refresh, k.Help, k.Back},
	}
}

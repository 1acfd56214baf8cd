package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines keyboard shortcuts for the application
type KeyMap struct {
	// Global navigation
	Quit key.Binding
	Back key.Binding
	Help key.Binding

	// Navigation
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding

	// Application specific
	Workflow key.Binding
	Balances key.Binding
	History  key.Binding
	Logs     key.Binding

	// Workflow
	RunFull  key.Binding
	Resume   key.Binding
	SwapBtoA key.Binding
	Refresh  key.Binding

	// Logs
	FilterInfo  key.Binding
	FilterWarn  key.Binding
	FilterError key.Binding
	FilterAll   key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),

		Workflow: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "workflow"),
		),
		Balances: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "balances"),
		),
		History: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "history"),
		),
		Logs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "logs"),
		),

		RunFull: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "run full"),
		),
		Resume: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "continue"),
		),
		SwapBtoA: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "swap B→A"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("f5", "ctrl+r"),
			key.WithHelp("f5", "refresh"),
		),

		FilterInfo: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "info+"),
		),
		FilterWarn: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "warn+"),
		),
		FilterError: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "errors"),
		),
		FilterAll: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "all"),
		),
	}
}

// ContextualHelp returns the bindings shown in the help bar for a route.
func (k KeyMap) ContextualHelp(route Route) []key.Binding {
	switch route {
	case RouteMainMenu:
		return []key.Binding{k.Up, k.Down, k.Enter, k.Workflow, k.Balances, k.History, k.Logs, k.Quit}
	case RouteWorkflow:
		return []key.Binding{k.RunFull, k.Resume, k.SwapBtoA, k.Back, k.Quit}
	case RouteBalances, RouteHistory:
		return []key.Binding{k.Refresh, k.Up, k.Down, k.Back, k.Quit}
	case RouteLogs:
		return []key.Binding{k.FilterAll, k.FilterInfo, k.FilterWarn, k.FilterError, k.Up, k.Down, k.Back}
	default:
		return []key.Binding{k.Back, k.Quit}
	}
}

// helpKeys adapts a binding list to help.KeyMap.
type helpKeys []key.Binding

func (h helpKeys) ShortHelp() []key.Binding  { return h }
func (h helpKeys) FullHelp() [][]key.Binding { return [][]key.Binding{h} }

// HelpFor returns a help.KeyMap for the route.
func (k KeyMap) HelpFor(route Route) help.KeyMap {
	return helpKeys(k.ContextualHelp(route))
}

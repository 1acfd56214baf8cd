package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/hookswap/internal/ui"
	"github.com/rovshanmuradov/hookswap/internal/ui/router"
	"github.com/rovshanmuradov/hookswap/internal/ui/style"
)

// MenuItem represents a menu item
type MenuItem struct {
	Label       string
	Description string
	Route       ui.Route
}

// MainMenuScreen represents the main menu screen
type MainMenuScreen struct {
	width    int
	height   int
	keyMap   ui.KeyMap
	help     help.Model
	services ui.ServiceProvider

	selectedIndex int
	menuItems     []MenuItem
}

// NewMainMenuScreen creates a new main menu screen
func NewMainMenuScreen(services ui.ServiceProvider) *MainMenuScreen {
	return &MainMenuScreen{
		keyMap:   ui.DefaultKeyMap(),
		help:     help.New(),
		services: services,
		menuItems: []MenuItem{
			{"▶ Workflow", "Create tokens, AMM and pool, deposit and swap step by step", ui.RouteWorkflow},
			{"💧 Pool balances", "Vault and wallet balances, trade counters", ui.RouteBalances},
			{"🧾 History", "Transactions sent from this wallet", ui.RouteHistory},
			{"📜 Logs", "Live application logs", ui.RouteLogs},
		},
	}
}

// Init initializes the main menu screen
func (m *MainMenuScreen) Init() tea.Cmd {
	return nil
}

func navigate(route ui.Route) tea.Cmd {
	return func() tea.Msg { return ui.RouterMsg{To: route} }
}

// Update handles screen updates
func (m *MainMenuScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keyMap.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, m.keyMap.Up):
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}
	case key.Matches(keyMsg, m.keyMap.Down):
		if m.selectedIndex < len(m.menuItems)-1 {
			m.selectedIndex++
		}
	case key.Matches(keyMsg, m.keyMap.Enter):
		return m, navigate(m.menuItems[m.selectedIndex].Route)
	case key.Matches(keyMsg, m.keyMap.Workflow):
		return m, navigate(ui.RouteWorkflow)
	case key.Matches(keyMsg, m.keyMap.Balances):
		return m, navigate(ui.RouteBalances)
	case key.Matches(keyMsg, m.keyMap.History):
		return m, navigate(ui.RouteHistory)
	case key.Matches(keyMsg, m.keyMap.Logs):
		return m, navigate(ui.RouteLogs)
	}
	return m, nil
}

// View renders the main menu screen
func (m *MainMenuScreen) View() string {
	var b strings.Builder

	b.WriteString(style.TitleStyle.Render("🐟 hookswap · Token-2022 transfer-hook AMM"))
	b.WriteString("\n")
	if m.services != nil {
		b.WriteString(style.MutedStyle.Render(fmt.Sprintf("wallet %s · %s",
			m.services.Payer().String(), m.services.Network())))
		b.WriteString("\n")
		if r := m.services.Runner(); r != nil {
			b.WriteString(style.InfoStyle.Render("stage: " + r.Stage().String()))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	for i, item := range m.menuItems {
		if i == m.selectedIndex {
			b.WriteString(style.MenuSelectedStyle.Render(item.Label))
		} else {
			b.WriteString(style.MenuItemStyle.Render(item.Label))
		}
		b.WriteString("\n")
		b.WriteString(style.DescriptionStyle.Render(item.Description))
		b.WriteString("\n\n")
	}

	b.WriteString(m.help.View(m.keyMap.HelpFor(ui.RouteMainMenu)))
	return b.String()
}

// SetSize sets the screen size
func (m *MainMenuScreen) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
}

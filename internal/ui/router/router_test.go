package router

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/hookswap/internal/ui"
)

type stubScreen struct {
	name   string
	inits  int
	width  int
	height int
	last   tea.Msg
}

func (s *stubScreen) Init() tea.Cmd {
	s.inits++
	return nil
}

func (s *stubScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	s.last = msg
	return s, nil
}

func (s *stubScreen) View() string { return s.name }

func (s *stubScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
}

func newTestRouter() (*Router, *stubScreen) {
	root := &stubScreen{name: "menu"}
	r := New(root, func(route ui.Route) Screen {
		if route == ui.RouteLogs {
			return nil
		}
		return &stubScreen{name: route.String()}
	})
	return r, root
}

func TestRouterNavigateAndBack(t *testing.T) {
	r, root := newTestRouter()
	r.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, 100, root.width)

	r.Update(ui.RouterMsg{To: ui.RouteWorkflow})
	require.Equal(t, 2, r.Depth())
	assert.Equal(t, "workflow", r.View())

	cur := r.Current().(*stubScreen)
	assert.Equal(t, 1, cur.inits)
	assert.Equal(t, 40, cur.height)

	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, "menu", r.View())
	assert.False(t, r.CanGoBack())

	// esc в корне уходит в экран
	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, r.Depth())
	assert.NotNil(t, root.last)
}

func TestRouterMainMenuClearsStack(t *testing.T) {
	r, _ := newTestRouter()
	r.Update(ui.RouterMsg{To: ui.RouteWorkflow})
	r.Update(ui.RouterMsg{To: ui.RouteBalances})
	require.Equal(t, 3, r.Depth())

	r.Update(ui.RouterMsg{To: ui.RouteMainMenu})
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, "menu", r.View())
}

func TestRouterUnknownRoute(t *testing.T) {
	r, _ := newTestRouter()
	r.Update(ui.RouterMsg{To: ui.RouteLogs})
	assert.Equal(t, 1, r.Depth())
}

func TestRouterForwardsMessages(t *testing.T) {
	r, root := newTestRouter()
	msg := ui.HistoryMsg{}
	r.Update(msg)
	assert.Equal(t, msg, root.last)
}

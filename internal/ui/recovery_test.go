package ui

import (
	"io"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type startMsg struct{}

// mockModel is a test UI model
type mockModel struct {
	panicOnUpdate bool
	panicOnView   bool
	updateCount   int32
	viewCount     int32
}

func (m *mockModel) Init() tea.Cmd {
	return func() tea.Msg { return startMsg{} }
}

func (m *mockModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	atomic.AddInt32(&m.updateCount, 1)
	if m.panicOnUpdate {
		panic("update panic test")
	}
	if _, ok := msg.(startMsg); ok {
		return m, tea.Quit
	}
	return m, nil
}

func (m *mockModel) View() string {
	atomic.AddInt32(&m.viewCount, 1)
	if m.panicOnView && atomic.LoadInt32(&m.viewCount) > 3 {
		panic("view panic test")
	}
	return "Test UI"
}

func headless() []tea.ProgramOption {
	return []tea.ProgramOption{
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	}
}

func TestRecoveryHandlerNormalExit(t *testing.T) {
	handler := NewRecoveryHandler(zap.NewNop(), func() (tea.Model, []tea.ProgramOption) {
		return &mockModel{}, headless()
	})

	done := make(chan error, 1)
	go func() { done <- handler.RunWithRecovery() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean exit, got %v", err)
		}
		if handler.GetRestartCount() != 0 {
			t.Fatalf("expected no restarts, got %d", handler.GetRestartCount())
		}
	case <-time.After(2 * time.Second):
		handler.Stop()
		t.Fatal("UI did not exit")
	}
}

func TestRecoveryHandlerRestartsAfterPanic(t *testing.T) {
	var runs int32
	handler := NewRecoveryHandler(zap.NewNop(), func() (tea.Model, []tea.ProgramOption) {
		n := atomic.AddInt32(&runs, 1)
		return &mockModel{panicOnUpdate: n == 1}, headless()
	})
	handler.restartDelay = 10 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- handler.RunWithRecovery() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected recovery, got %v", err)
		}
		if handler.GetRestartCount() != 1 {
			t.Fatalf("expected 1 restart, got %d", handler.GetRestartCount())
		}
	case <-time.After(3 * time.Second):
		handler.Stop()
		t.Fatal("UI did not recover")
	}
}

func TestRecoveryHandlerGivesUp(t *testing.T) {
	handler := NewRecoveryHandler(zap.NewNop(), func() (tea.Model, []tea.ProgramOption) {
		return &mockModel{panicOnUpdate: true}, headless()
	})
	handler.restartDelay = time.Millisecond
	handler.maxRestarts = 2

	done := make(chan error, 1)
	go func() { done <- handler.RunWithRecovery() }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected error after too many crashes")
		}
		if handler.GetRestartCount() != 3 {
			t.Fatalf("expected 3 crashes counted, got %d", handler.GetRestartCount())
		}
	case <-time.After(3 * time.Second):
		handler.Stop()
		t.Fatal("handler did not give up")
	}
}

func TestSafeUIWrapper(t *testing.T) {
	model := &mockModel{panicOnView: true}
	wrapper := NewSafeUIWrapper(model, zap.NewNop())

	if cmd := wrapper.Init(); cmd == nil {
		t.Fatal("expected Init command")
	}

	next, _ := wrapper.Update(startMsg{})
	if next != wrapper {
		t.Fatal("Update must return the wrapper")
	}

	if view := wrapper.View(); view != "Test UI" {
		t.Fatalf("unexpected view %q", view)
	}

	model.viewCount = 10
	if view := wrapper.View(); view != "UI Error: View crashed. Press Ctrl+C to exit." {
		t.Fatalf("expected error view, got %q", view)
	}
}

func TestSafeUIWrapperUpdatePanic(t *testing.T) {
	wrapper := NewSafeUIWrapper(&mockModel{panicOnUpdate: true}, zap.NewNop())

	next, cmd := wrapper.Update(startMsg{})
	if next != wrapper {
		t.Fatal("Update must return the wrapper after a panic")
	}
	if cmd != nil {
		t.Fatal("expected nil command after a panic")
	}
}

package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap/zapcore"

	"github.com/rovshanmuradov/hookswap/internal/dex/hookamm"
	"github.com/rovshanmuradov/hookswap/internal/storage/models"
	"github.com/rovshanmuradov/hookswap/internal/workflow"
)

// Tea message types for UI communication

// RouterMsg represents navigation between screens
type RouterMsg struct {
	To Route
}

// StepResultMsg – результат одного шага сценария.
type StepResultMsg struct {
	Result workflow.Result
}

// WorkflowDoneMsg – сценарий завершён (успешно или на первой ошибке).
type WorkflowDoneMsg struct {
	Name    string
	Results []workflow.Result
	Err     error
}

// BalancesMsg – снимок балансов пула и пользователя.
type BalancesMsg struct {
	Balances *hookamm.PoolBalances
	Stats    *hookamm.PoolStats
	CounterA *hookamm.MintTradeCounter
	CounterB *hookamm.MintTradeCounter
	SOL      uint64
	Err      error
}

// HistoryMsg – последние транзакции из хранилища.
type HistoryMsg struct {
	Transactions []*models.Transaction
	Err          error
}

// LogMsg represents log messages
type LogMsg struct {
	Level   zapcore.Level
	Message string
	Fields  map[string]interface{}
}

// ErrorMsg represents error conditions
type ErrorMsg struct {
	Error error
	Title string
}

// Bus is the global event bus for UI communication
var Bus = make(chan tea.Msg, 1024)

// PublishError publishes an error message to the UI bus
func PublishError(err error, title string) {
	select {
	case Bus <- ErrorMsg{Error: err, Title: title}:
	default:
		// Bus is full, drop the error
	}
}

// ListenBus returns a tea.Cmd that listens to the event bus
func ListenBus() tea.Cmd {
	return func() tea.Msg {
		return <-Bus
	}
}

// Route represents different screens in the application
type Route int

const (
	RouteMainMenu Route = iota
	RouteWorkflow
	RouteBalances
	RouteHistory
	RouteLogs
)

// String returns the string representation of the route
func (r Route) String() string {
	switch r {
	case RouteMainMenu:
		return "main_menu"
	case RouteWorkflow:
		return "workflow"
	case RouteBalances:
		return "balances"
	case RouteHistory:
		return "history"
	case RouteLogs:
		return "logs"
	default:
		return "unknown"
	}
}

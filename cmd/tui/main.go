package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hookswap/internal/app"
	"github.com/rovshanmuradov/hookswap/internal/config"
	"github.com/rovshanmuradov/hookswap/internal/ui"
	"github.com/rovshanmuradov/hookswap/internal/ui/router"
	"github.com/rovshanmuradov/hookswap/internal/ui/screen"
	"github.com/rovshanmuradov/hookswap/internal/ui/style"
	"github.com/rovshanmuradov/hookswap/internal/workflow"
)

// busMsg – сообщение, прочитанное из ui.Bus; после него шину слушаем снова.
type busMsg struct{ msg tea.Msg }

func listenBus() tea.Cmd {
	return func() tea.Msg { return busMsg{msg: ui.ListenBus()()} }
}

// AppModel represents the main TUI application model
type AppModel struct {
	router   *router.Router
	services ui.ServiceProvider
	workflow *screen.WorkflowScreen
	logger   *zap.Logger
	width    int
	height   int
	lastErr  string
}

// NewAppModel creates a new application model
func NewAppModel(services ui.ServiceProvider) *AppModel {
	m := &AppModel{
		services: services,
		logger:   services.Logger(),
		// экран сценария один на всё время работы, прогресс не теряется при навигации
		workflow: screen.NewWorkflowScreen(services),
	}
	m.router = router.New(screen.NewMainMenuScreen(services), m.screenFor)
	return m
}

func (m *AppModel) screenFor(route ui.Route) router.Screen {
	switch route {
	case ui.RouteWorkflow:
		return m.workflow
	case ui.RouteBalances:
		return screen.NewBalancesScreen(m.services)
	case ui.RouteHistory:
		return screen.NewHistoryScreen(m.services)
	case ui.RouteLogs:
		return screen.NewLogsScreen(m.services)
	default:
		return nil
	}
}

// Init initializes the application
func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Init(), listenBus())
}

// Update handles application-level updates
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if bm, ok := msg.(busMsg); ok {
		msg = bm.msg
		cmds = append(cmds, listenBus())
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case ui.ErrorMsg:
		m.lastErr = fmt.Sprintf("%s: %v", msg.Title, msg.Error)
		return m, tea.Batch(cmds...)

	case ui.StepResultMsg, ui.WorkflowDoneMsg:
		// прогресс идёт в экран сценария, даже если он сейчас не открыт
		if m.router.Current() != router.Screen(m.workflow) {
			_, cmd := m.workflow.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	_, cmd := m.router.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View renders the application
func (m *AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	view := m.router.View()
	if m.lastErr != "" {
		view += "\n" + style.ErrorStyle.Render(m.lastErr)
	}
	return view
}

func main() {
	configPath := flag.String("config", "", "Path to config file (default ./config.yaml)")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application, err := app.New(rootCtx, cfg, app.Options{TUI: true, BufferSize: 2000})
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer application.Close()
	logger := application.Logger

	sender := ui.InitBus(logger)
	application.OnClose("ui-sender", func() error { sender.Close(); return nil })
	application.Runner.OnResult(func(r workflow.Result) {
		sender.Deliver(rootCtx, ui.StepResultMsg{Result: r})
	})

	services := ui.NewRealServiceProvider(ui.Services{
		Ctx:       rootCtx,
		Logger:    logger,
		Runner:    application.Runner,
		Scenario:  application.Scenario,
		Reader:    application.DEX.Reader(),
		Store:     application.Store,
		LogBuffer: application.LogBuffer,
		Payer:     application.Wallet.PublicKey(),
		Network:   cfg.Network,
		RPCURL:    cfg.RPCURL,
	})

	logger.Info("🚀 Starting hookswap TUI")

	handler := ui.NewRecoveryHandler(logger, func() (tea.Model, []tea.ProgramOption) {
		return ui.NewSafeUIWrapper(NewAppModel(services), logger), []tea.ProgramOption{
			tea.WithAltScreen(),
		}
	})

	go func() {
		<-rootCtx.Done()
		handler.Stop()
	}()

	if err := handler.RunWithRecovery(); err != nil {
		logger.Error("💥 TUI application failed", zap.Error(err))
		application.Close()
		os.Exit(1)
	}
	logger.Info("🛑 TUI stopped")
}

// Package app собирает клиент из конфигурации: логгер, RPC, кошелёк, DEX, хранилище и сценарий.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rovshanmuradov/hookswap/internal/blockchain/solbc"
	"github.com/rovshanmuradov/hookswap/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/hookswap/internal/config"
	"github.com/rovshanmuradov/hookswap/internal/dex/hookamm"
	"github.com/rovshanmuradov/hookswap/internal/logger"
	"github.com/rovshanmuradov/hookswap/internal/storage"
	"github.com/rovshanmuradov/hookswap/internal/storage/yamlstore"
	"github.com/rovshanmuradov/hookswap/internal/wallet"
	"github.com/rovshanmuradov/hookswap/internal/workflow"
)

// Options – как запускается приложение.
type Options struct {
	// TUI: консольный вывод отключён, логи идут в кольцевой буфер и файл.
	TUI bool
	// BufferSize – ёмкость буфера логов для TUI.
	BufferSize int
	// Scenario переопределяет параметры сценария; nil – DefaultScenarioConfig.
	Scenario *workflow.ScenarioConfig
}

// App держит все собранные зависимости. Закрывается через Close.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	LogBuffer *logger.LogBuffer

	Client   *solbc.Client
	Sender   *transaction.Manager
	Wallet   *wallet.Wallet
	DEX      *hookamm.DEX
	Store    storage.Storage
	Tracker  *workflow.Tracker
	Runner   *workflow.Runner
	Scenario *workflow.Scenario

	shutdown *ShutdownHandler
}

// New собирает приложение. Сохранённая сессия, если есть, восстанавливается в сценарий.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	a := &App{Config: cfg}

	if err := a.initLogger(opts); err != nil {
		return nil, err
	}
	a.shutdown = NewShutdownHandler(a.Logger, 0)

	if err := a.initWallet(); err != nil {
		a.Close()
		return nil, err
	}

	commitment, err := cfg.CommitmentType()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Client = solbc.NewClient(cfg.RPCURL, commitment, a.Logger)
	a.Sender = transaction.NewManager(a.Client, a.Logger, cfg.TxConfig())

	hookCfg, err := cfg.HookConfig()
	if err != nil {
		a.Close()
		return nil, err
	}
	hookCfg.LogFields(a.Logger)
	a.DEX, err = hookamm.NewDEX(a.Client, a.Sender, a.Wallet, hookCfg, a.Logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Store, err = yamlstore.NewStorage(cfg.SessionPath, a.Logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	scCfg := workflow.DefaultScenarioConfig()
	if opts.Scenario != nil {
		scCfg = *opts.Scenario
	}
	scCfg.SolFee = cfg.DefaultSolFee

	a.Tracker = workflow.NewTracker(workflow.StageStart)
	a.Runner = workflow.NewRunner(a.Tracker, a.Store, a.Wallet.PublicKey().String(), a.Logger)
	a.Scenario = workflow.NewScenario(a.DEX, a.DEX.Reader(), a.Store, a.Tracker, scCfg, cfg.Network, a.Logger)

	if err := a.Scenario.LoadScenarioSession(ctx); err != nil {
		if !errors.Is(err, workflow.ErrNoSession) {
			// повреждённая сессия не мешает начать заново
			a.Logger.Warn("Failed to restore session", zap.Error(err))
		}
	} else {
		a.Logger.Info("Session restored", zap.Stringer("stage", a.Tracker.Current()))
	}

	a.Logger.Info("Client ready",
		zap.String("rpc", cfg.RPCURL),
		zap.String("network", cfg.Network),
		zap.String("wallet", a.Wallet.PublicKey().String()))
	return a, nil
}

func (a *App) initLogger(opts Options) error {
	lc := a.Config.Log
	base, err := logger.NewFileLogger(logger.FileConfig{
		Debug:      lc.Debug,
		Path:       lc.File,
		MaxSizeMB:  lc.MaxSizeMB,
		MaxBackups: lc.MaxBackups,
		MaxAgeDays: lc.MaxAgeDays,
		Console:    !opts.TUI,
	})
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	if opts.TUI && lc.File == "" {
		// без файла NewFileLogger пишет в консоль, в TUI это ломает экран
		base = zap.New(zapcore.NewNopCore())
	}

	if !opts.TUI {
		a.Logger = base
		return nil
	}

	size := opts.BufferSize
	if size <= 0 {
		size = 1000
	}
	a.LogBuffer, err = logger.NewLogBuffer(size, "", base)
	if err != nil {
		return fmt.Errorf("failed to create log buffer: %w", err)
	}
	a.Logger, err = logger.WithBuffer(base, a.LogBuffer, lc.Debug)
	return err
}

func (a *App) initWallet() error {
	wc := a.Config.DevWallet
	if wc.SecretKey != "" {
		w, err := wallet.FromSecret(wc.SecretKey)
		if err != nil {
			return fmt.Errorf("invalid dev_wallet.secret_key: %w", err)
		}
		a.Wallet = w
		return nil
	}

	w, created, err := wallet.LoadOrCreate(wc.Path)
	if err != nil {
		return fmt.Errorf("failed to load wallet %s: %w", wc.Path, err)
	}
	if created {
		a.Logger.Info("Generated new dev wallet",
			zap.String("path", wc.Path),
			zap.String("address", w.PublicKey().String()))
	}
	a.Wallet = w
	return nil
}

// OnClose регистрирует ресурс, закрываемый вместе с приложением.
func (a *App) OnClose(name string, fn func() error) {
	a.shutdown.AddFunc(name, fn)
}

// Close закрывает ресурсы и сбрасывает логгер.
func (a *App) Close() error {
	var err error
	if a.shutdown != nil {
		err = a.shutdown.Shutdown(context.Background())
	}
	if a.LogBuffer != nil {
		if cerr := a.LogBuffer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return err
}

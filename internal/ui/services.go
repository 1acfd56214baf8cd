package ui

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hookswap/internal/dex/hookamm"
	"github.com/rovshanmuradov/hookswap/internal/logger"
	"github.com/rovshanmuradov/hookswap/internal/storage"
	"github.com/rovshanmuradov/hookswap/internal/workflow"
)

// StateReader – чтение состояния пула для экрана балансов. Реализуется *hookamm.Reader.
type StateReader interface {
	PoolBalances(ctx context.Context, owner, mintA, mintB, lpMint solana.PublicKey) (*hookamm.PoolBalances, error)
	PoolStats(ctx context.Context, mintA, mintB solana.PublicKey) (*hookamm.PoolStats, error)
	TradeCounter(ctx context.Context, mint solana.PublicKey) (*hookamm.MintTradeCounter, error)
	SOLBalance(ctx context.Context, owner solana.PublicKey) (uint64, error)
}

var _ StateReader = (*hookamm.Reader)(nil)

// ServiceProvider provides access to client services for UI screens
type ServiceProvider interface {
	Context() context.Context
	Logger() *zap.Logger
	Runner() *workflow.Runner
	Scenario() *workflow.Scenario
	Reader() StateReader
	Store() storage.Storage
	LogBuffer() *logger.LogBuffer
	Payer() solana.PublicKey
	Network() string
	RPCURL() string
}

// Services – поля RealServiceProvider.
type Services struct {
	Ctx       context.Context
	Logger    *zap.Logger
	Runner    *workflow.Runner
	Scenario  *workflow.Scenario
	Reader    StateReader
	Store     storage.Storage
	LogBuffer *logger.LogBuffer
	Payer     solana.PublicKey
	Network   string
	RPCURL    string
}

// RealServiceProvider implements ServiceProvider with real services
type RealServiceProvider struct {
	s Services
}

// NewRealServiceProvider creates a new real service provider
func NewRealServiceProvider(s Services) ServiceProvider {
	if s.Ctx == nil {
		s.Ctx = context.Background()
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	s.Logger = s.Logger.Named("ui")
	return &RealServiceProvider{s: s}
}

func (p *RealServiceProvider) Context() context.Context     { return p.s.Ctx }
func (p *RealServiceProvider) Logger() *zap.Logger          { return p.s.Logger }
func (p *RealServiceProvider) Runner() *workflow.Runner     { return p.s.Runner }
func (p *RealServiceProvider) Scenario() *workflow.Scenario { return p.s.Scenario }
func (p *RealServiceProvider) Reader() StateReader          { return p.s.Reader }
func (p *RealServiceProvider) Store() storage.Storage       { return p.s.Store }
func (p *RealServiceProvider) LogBuffer() *logger.LogBuffer { return p.s.LogBuffer }
func (p *RealServiceProvider) Payer() solana.PublicKey      { return p.s.Payer }
func (p *RealServiceProvider) Network() string              { return p.s.Network }
func (p *RealServiceProvider) RPCURL() string               { return p.s.RPCURL }

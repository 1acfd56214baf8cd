// internal/workflow/scenario.go
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hookswap/internal/dex/hookamm"
	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
	"github.com/rovshanmuradov/hookswap/internal/storage"
	"github.com/rovshanmuradov/hookswap/internal/storage/models"
)

// Operations – операции hook AMM, которые использует сценарий. Реализуется *hookamm.DEX.
type Operations interface {
	Payer() solana.PublicKey
	CreateTokenWithHook(ctx context.Context, name, symbol, uri string) (*hookamm.OpResult, error)
	MintTokens(ctx context.Context, mint solana.PublicKey, amount uint64) (*hookamm.OpResult, error)
	CreateAmm(ctx context.Context, mintA, mintB solana.PublicKey, solFee uint64, collector solana.PublicKey) (*hookamm.OpResult, error)
	CreatePool(ctx context.Context, mintA, mintB solana.PublicKey) (*hookamm.OpResult, error)
	CreatePoolTokenAccounts(ctx context.Context, mintA, mintB, lpMint solana.PublicKey) (*hookamm.OpResult, error)
	DepositLiquidity(ctx context.Context, mintA, mintB, lpMint solana.PublicKey, amountA, amountB uint64, hookProgram solana.PublicKey) (*hookamm.OpResult, error)
	Swap(ctx context.Context, p hookamm.SwapParams) (*hookamm.OpResult, error)
}

// BalanceReader читает балансы владельца.
type BalanceReader interface {
	OwnerTokenBalance(ctx context.Context, owner, mint solana.PublicKey) (*hookamm.TokenBalance, error)
}

var _ Operations = (*hookamm.DEX)(nil)

// TokenSpec – параметры создаваемого токена.
type TokenSpec struct {
	Name   string
	Symbol string
	URI    string
}

// ScenarioConfig – суммы и параметры полного сценария (в базовых единицах).
type ScenarioConfig struct {
	TokenA        TokenSpec
	TokenB        TokenSpec
	MintAmount    uint64
	SolFee        uint64
	DepositTarget uint64
	SwapAmount    uint64
	// SlippageBps – допустимое отклонение выхода свапа в базисных пунктах.
	SlippageBps uint64
	HookProgram solana.PublicKey
}

// DefaultScenarioConfig – значения для минтов с 6 знаками.
func DefaultScenarioConfig() ScenarioConfig {
	return ScenarioConfig{
		TokenA:        TokenSpec{Name: "Red Koi", Symbol: "KOI", URI: "https://arweave.net/koi"},
		TokenB:        TokenSpec{Name: "Blue Koi", Symbol: "KOI-B", URI: "https://arweave.net/koib"},
		MintAmount:    1_000 * 1_000_000,
		SolFee:        50_000_000,
		DepositTarget: 750 * 1_000_000,
		SwapAmount:    5 * 1_000_000,
		SlippageBps:   500,
	}
}

// Session – адреса, созданные сценарием.
type Session struct {
	MintA        solana.PublicKey
	MintB        solana.PublicKey
	UserAccountA solana.PublicKey
	UserAccountB solana.PublicKey
	AMM          solana.PublicKey
	Pool         solana.PublicKey
	LPMint       solana.PublicKey
}

func keyString(pk solana.PublicKey) string {
	if pk.IsZero() {
		return ""
	}
	return pk.String()
}

func parseKey(s string) (solana.PublicKey, error) {
	if s == "" {
		return solana.PublicKey{}, nil
	}
	return solana.PublicKeyFromBase58(s)
}

// SessionFromModel восстанавливает сессию и стадию из хранилища.
func SessionFromModel(m *models.Session) (*Session, Stage, error) {
	s := &Session{}
	for _, f := range []struct {
		val string
		dst *solana.PublicKey
	}{
		{m.MintA, &s.MintA}, {m.MintB, &s.MintB},
		{m.UserAccountA, &s.UserAccountA}, {m.UserAccountB, &s.UserAccountB},
		{m.AMM, &s.AMM}, {m.Pool, &s.Pool}, {m.LPMint, &s.LPMint},
	} {
		pk, err := parseKey(f.val)
		if err != nil {
			return nil, StageStart, fmt.Errorf("invalid address %q in session: %w", f.val, err)
		}
		*f.dst = pk
	}
	stage, err := ParseStage(m.Stage)
	if err != nil {
		return nil, StageStart, err
	}
	return s, stage, nil
}

// Scenario собирает шаги сценария: минты, AMM, пул, депозит, свап.
type Scenario struct {
	ops     Operations
	reader  BalanceReader
	store   storage.Storage
	tracker *Tracker
	cfg     ScenarioConfig
	network string
	logger  *zap.Logger

	mu      sync.Mutex
	session Session
}

// NewScenario создаёт сценарий. reader и store могут быть nil.
func NewScenario(ops Operations, reader BalanceReader, store storage.Storage, tracker *Tracker, cfg ScenarioConfig, network string, logger *zap.Logger) *Scenario {
	if tracker == nil {
		tracker = NewTracker(StageStart)
	}
	return &Scenario{
		ops:     ops,
		reader:  reader,
		store:   store,
		tracker: tracker,
		cfg:     cfg,
		network: network,
		logger:  logger.Named("scenario"),
	}
}

// Restore подставляет сессию, сохранённую ранее.
func (s *Scenario) Restore(session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
}

// Session возвращает копию текущей сессии.
func (s *Scenario) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *Scenario) update(ctx context.Context, fn func(*Session)) error {
	s.mu.Lock()
	fn(&s.session)
	snapshot := s.session
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.SaveSession(ctx, &models.Session{
		Network:      s.network,
		Wallet:       s.ops.Payer().String(),
		MintA:        keyString(snapshot.MintA),
		MintB:        keyString(snapshot.MintB),
		UserAccountA: keyString(snapshot.UserAccountA),
		UserAccountB: keyString(snapshot.UserAccountB),
		AMM:          keyString(snapshot.AMM),
		Pool:         keyString(snapshot.Pool),
		LPMint:       keyString(snapshot.LPMint),
		Stage:        s.tracker.Current().String(),
	})
}

// persist сохраняет сессию с текущей стадией.
func (s *Scenario) persist(ctx context.Context, _ *hookamm.OpResult) error {
	return s.update(ctx, func(*Session) {})
}

func address(op *hookamm.OpResult, name string) solana.PublicKey {
	if op == nil {
		return solana.PublicKey{}
	}
	return op.Addresses[name]
}

func (s *Scenario) mints() (solana.PublicKey, solana.PublicKey, error) {
	sess := s.Session()
	if sess.MintA.IsZero() || sess.MintB.IsZero() {
		return solana.PublicKey{}, solana.PublicKey{}, apperrors.InvalidInput("both mints must be created first")
	}
	return sess.MintA, sess.MintB, nil
}

// TokenSteps создаёт минт с hook и выпускает на него начальный объём.
// second=true – токен B; после него сценарий переходит в стадию minted.
func (s *Scenario) TokenSteps(second bool) []Step {
	spec, label := s.cfg.TokenA, "a"
	if second {
		spec, label = s.cfg.TokenB, "b"
	}
	mintStage := StageStart
	if second {
		mintStage = StageMinted
	}

	return []Step{
		{
			Name: "create_token_" + label,
			Run: func(ctx context.Context) (*hookamm.OpResult, error) {
				return s.ops.CreateTokenWithHook(ctx, spec.Name, spec.Symbol, spec.URI)
			},
			Apply: func(ctx context.Context, op *hookamm.OpResult) error {
				return s.update(ctx, func(sess *Session) {
					if second {
						sess.MintB = address(op, "mint")
					} else {
						sess.MintA = address(op, "mint")
					}
				})
			},
		},
		{
			Name:  "mint_tokens_" + label,
			Stage: mintStage,
			Run: func(ctx context.Context) (*hookamm.OpResult, error) {
				sess := s.Session()
				mint := sess.MintA
				if second {
					mint = sess.MintB
				}
				return s.ops.MintTokens(ctx, mint, s.cfg.MintAmount)
			},
			Apply: func(ctx context.Context, op *hookamm.OpResult) error {
				return s.update(ctx, func(sess *Session) {
					if second {
						sess.UserAccountB = address(op, "token_account")
					} else {
						sess.UserAccountA = address(op, "token_account")
					}
				})
			},
		},
	}
}

// PoolSteps создаёт AMM, пул и хранилища пула.
func (s *Scenario) PoolSteps() []Step {
	return []Step{
		{
			Name:  "create_amm",
			Stage: StageAMM,
			Run: func(ctx context.Context) (*hookamm.OpResult, error) {
				mintA, mintB, err := s.mints()
				if err != nil {
					return nil, err
				}
				return s.ops.CreateAmm(ctx, mintA, mintB, s.cfg.SolFee, s.ops.Payer())
			},
			Apply: func(ctx context.Context, op *hookamm.OpResult) error {
				return s.update(ctx, func(sess *Session) { sess.AMM = address(op, "amm") })
			},
		},
		{
			Name: "create_pool",
			Run: func(ctx context.Context) (*hookamm.OpResult, error) {
				mintA, mintB, err := s.mints()
				if err != nil {
					return nil, err
				}
				return s.ops.CreatePool(ctx, mintA, mintB)
			},
			Apply: func(ctx context.Context, op *hookamm.OpResult) error {
				return s.update(ctx, func(sess *Session) {
					sess.Pool = address(op, "pool")
					sess.LPMint = address(op, "lp_mint")
				})
			},
		},
		{
			Name:  "create_pool_token_accounts",
			Stage: StagePool,
			Run: func(ctx context.Context) (*hookamm.OpResult, error) {
				mintA, mintB, err := s.mints()
				if err != nil {
					return nil, err
				}
				return s.ops.CreatePoolTokenAccounts(ctx, mintA, mintB, s.Session().LPMint)
			},
			Apply: s.persist,
		},
	}
}

// depositAmount доводит балансы до цели (best effort) и возвращает min(цель, A, B).
func (s *Scenario) depositAmount(ctx context.Context, mintA, mintB solana.PublicKey) (uint64, error) {
	target := s.cfg.DepositTarget
	if s.reader == nil {
		return target, nil
	}

	owner := s.ops.Payer()
	amount := target
	for _, mint := range []solana.PublicKey{mintA, mintB} {
		bal, err := s.reader.OwnerTokenBalance(ctx, owner, mint)
		if err != nil {
			return 0, err
		}
		have := bal.Amount
		if have < target {
			if _, err := s.ops.MintTokens(ctx, mint, target-have); err != nil {
				s.logger.Warn("Top-up before deposit failed",
					zap.String("mint", mint.String()),
					zap.Error(err))
			} else if bal, err = s.reader.OwnerTokenBalance(ctx, owner, mint); err == nil {
				have = bal.Amount
			}
		}
		if have < amount {
			amount = have
		}
	}
	if amount == 0 {
		return 0, apperrors.InvalidInput("not enough token balance to deposit, mint again")
	}
	return amount, nil
}

// DepositStep вносит ликвидность поровну в A и B.
func (s *Scenario) DepositStep() Step {
	return Step{
		Name:  "deposit_liquidity",
		Stage: StageDeposit,
		Run: func(ctx context.Context) (*hookamm.OpResult, error) {
			mintA, mintB, err := s.mints()
			if err != nil {
				return nil, err
			}
			lp := s.Session().LPMint
			if lp.IsZero() {
				return nil, apperrors.InvalidInput("pool must be created first")
			}
			amount, err := s.depositAmount(ctx, mintA, mintB)
			if err != nil {
				return nil, err
			}
			return s.ops.DepositLiquidity(ctx, mintA, mintB, lp, amount, amount, s.cfg.HookProgram)
		},
		Apply: s.persist,
	}
}

// SwapStep меняет SwapAmount в направлении aToB с минимальным выходом по SlippageBps.
func (s *Scenario) SwapStep(aToB bool) Step {
	name := "swap_a_to_b"
	if !aToB {
		name = "swap_b_to_a"
	}
	return Step{
		Name:  name,
		Stage: StageSwap,
		Run: func(ctx context.Context) (*hookamm.OpResult, error) {
			mintA, mintB, err := s.mints()
			if err != nil {
				return nil, err
			}
			minOut := s.cfg.SwapAmount * (10_000 - min(s.cfg.SlippageBps, 10_000)) / 10_000
			return s.ops.Swap(ctx, hookamm.SwapParams{
				MintA:           mintA,
				MintB:           mintB,
				SwapA:           aToB,
				InputAmount:     s.cfg.SwapAmount,
				MinOutputAmount: minOut,
				HookProgramA:    s.cfg.HookProgram,
				HookProgramB:    s.cfg.HookProgram,
			})
		},
		Apply: s.persist,
	}
}

// FullSteps – весь сценарий: два минта, AMM и пул, депозит, свап A→B.
func (s *Scenario) FullSteps() []Step {
	steps := append(s.TokenSteps(false), s.TokenSteps(true)...)
	steps = append(steps, s.PoolSteps()...)
	steps = append(steps, s.DepositStep(), s.SwapStep(true))
	return steps
}

// ResumeSteps – шаги, которые ещё не выполнены для текущей стадии.
func (s *Scenario) ResumeSteps() []Step {
	sess := s.Session()
	var steps []Step
	switch stage := s.tracker.Current(); {
	case stage < StageMinted:
		steps = append(steps, s.pendingTokenSteps(false, sess.MintA, sess.UserAccountA)...)
		steps = append(steps, s.pendingTokenSteps(true, sess.MintB, sess.UserAccountB)...)
		fallthrough
	case stage < StageAMM:
		steps = append(steps, s.PoolSteps()...)
		steps = append(steps, s.DepositStep())
	case stage < StagePool:
		steps = append(steps, s.PoolSteps()[1:]...)
		steps = append(steps, s.DepositStep())
	case stage < StageDeposit:
		steps = append(steps, s.DepositStep())
	}
	return append(steps, s.SwapStep(true))
}

// pendingTokenSteps пропускает создание уже записанного в сессию минта; выпуск пропускается,
// только если токен-аккаунт тоже записан.
func (s *Scenario) pendingTokenSteps(second bool, mint, account solana.PublicKey) []Step {
	steps := s.TokenSteps(second)
	switch {
	case mint.IsZero():
		return steps
	case account.IsZero():
		return steps[1:]
	default:
		return nil
	}
}

// ErrNoSession возвращается, когда сохранённой сессии нет.
var ErrNoSession = errors.New("no saved session")

// LoadScenarioSession читает сессию из хранилища в сценарий и трекер.
func (s *Scenario) LoadScenarioSession(ctx context.Context) error {
	if s.store == nil {
		return ErrNoSession
	}
	m, err := s.store.LoadSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNoSession
		}
		return err
	}
	sess, stage, err := SessionFromModel(m)
	if err != nil {
		return err
	}
	s.Restore(*sess)
	s.tracker.Advance(stage)
	return nil
}

// =============================
// File: internal/dex/hookamm/instructions.go
// =============================
package hookamm

import (
	"github.com/gagliardetto/solana-go"

	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
	"github.com/rovshanmuradov/hookswap/internal/wallet"
)

// AccountSpec – позиция аккаунта в инструкции с флагами, как в IDL программы.
type AccountSpec struct {
	Name     string
	Writable bool
	Signer   bool
}

// Порядок аккаунтов каждой инструкции. Программа читает их позиционно.
var accountLayouts = map[Operation][]AccountSpec{
	OpCreateAmm: {
		{Name: "amm", Writable: true},
		{Name: "admin", Signer: true},
		{Name: "sol_fee_collector"},
		{Name: "authority", Writable: true, Signer: true},
		{Name: "mint_a"},
		{Name: "mint_b"},
		{Name: "system_program"},
	},
	OpUpdateAdmin: {
		{Name: "amm", Writable: true},
		{Name: "mint_a"},
		{Name: "mint_b"},
		{Name: "admin", Signer: true},
	},
	OpUpdateFee: {
		{Name: "amm", Writable: true},
		{Name: "mint_a"},
		{Name: "mint_b"},
		{Name: "admin", Signer: true},
	},
	OpCreatePool: {
		{Name: "payer", Writable: true, Signer: true},
		{Name: "amm"},
		{Name: "pool", Writable: true},
		{Name: "pool_authority"},
		{Name: "mint_liquidity", Writable: true, Signer: true},
		{Name: "mint_a"},
		{Name: "mint_b"},
		{Name: "system_program"},
		{Name: "associated_token_program"},
		{Name: "token_program"},
	},
	OpCreateTokenAccounts: {
		{Name: "payer", Writable: true, Signer: true},
		{Name: "amm"},
		{Name: "pool", Writable: true},
		{Name: "pool_authority"},
		{Name: "mint_a"},
		{Name: "mint_b"},
		{Name: "mint_liquidity"},
		{Name: "pool_account_a", Writable: true},
		{Name: "pool_account_b", Writable: true},
		{Name: "pool_account_liquidity", Writable: true},
		{Name: "system_program"},
		{Name: "associated_token_program"},
		{Name: "token_program"},
	},
	OpDepositLiquidity: {
		{Name: "amm"},
		{Name: "pool", Writable: true},
		{Name: "pool_authority"},
		{Name: "mint_a"},
		{Name: "mint_b"},
		{Name: "pool_account_a", Writable: true},
		{Name: "pool_account_b", Writable: true},
		{Name: "depositor_account_a", Writable: true},
		{Name: "depositor_account_b", Writable: true},
		{Name: "depositor_account_liquidity", Writable: true},
		{Name: "pool_account_liquidity", Writable: true},
		{Name: "mint_liquidity"},
		{Name: "depositor", Writable: true, Signer: true},
		{Name: "system_program"},
		{Name: "associated_token_program"},
		{Name: "token_program"},
		// remaining accounts для transfer hook
		{Name: "extra_account_metas_a"},
		{Name: "trade_counter_a", Writable: true},
		{Name: "extra_account_metas_b"},
		{Name: "trade_counter_b", Writable: true},
		{Name: "hook_program"},
	},
	OpSwapExactTokensForTokens: {
		{Name: "amm"},
		{Name: "pool", Writable: true},
		{Name: "pool_authority"},
		{Name: "mint_a"},
		{Name: "mint_b"},
		{Name: "pool_account_a", Writable: true},
		{Name: "pool_account_b", Writable: true},
		{Name: "trader_account_a", Writable: true},
		{Name: "trader_account_b", Writable: true},
		{Name: "trader", Signer: true},
		{Name: "system_program"},
		{Name: "associated_token_program"},
		{Name: "token_program"},
		{Name: "extra_account_meta_list_a"},
		{Name: "trade_counter_a", Writable: true},
		{Name: "extra_account_meta_list_b"},
		{Name: "trade_counter_b", Writable: true},
		{Name: "hook_program_a"},
		{Name: "hook_program_b"},
	},
	OpCreateTokenWithHook: {
		{Name: "mint", Writable: true, Signer: true},
		{Name: "authority", Signer: true},
		{Name: "payer", Writable: true, Signer: true},
		{Name: "counter_hook_program"},
		{Name: "system_program"},
		{Name: "token_program"},
		{Name: "associated_token_program"},
	},
	OpMintTokens: {
		{Name: "mint", Writable: true},
		{Name: "token_account", Writable: true},
		{Name: "authority", Writable: true, Signer: true},
		{Name: "system_program"},
		{Name: "token_program"},
		{Name: "associated_token_program"},
	},
	OpInitializeExtraAccountMetaList: {
		{Name: "payer", Writable: true, Signer: true},
		{Name: "extra_account_meta_list", Writable: true},
		{Name: "mint"},
		{Name: "mint_trade_counter"},
		{Name: "system_program"},
	},
	OpInitializeMintTradeCounter: {
		{Name: "payer", Writable: true, Signer: true},
		{Name: "mint"},
		{Name: "mint_trade_counter", Writable: true},
		{Name: "system_program"},
	},
	OpUpdateMintTradeCounter: {
		{Name: "mint"},
		{Name: "mint_trade_counter", Writable: true},
	},
}

// AccountLayout возвращает схему аккаунтов операции.
func AccountLayout(op Operation) []AccountSpec {
	return accountLayouts[op]
}

// layoutMetas раскладывает ключи по схеме операции. Пустой ключ – ошибка ввода.
func layoutMetas(op Operation, keys ...solana.PublicKey) ([]*solana.AccountMeta, error) {
	layout, ok := accountLayouts[op]
	if !ok {
		return nil, apperrors.Encoding("no account layout for %q", op)
	}
	if len(keys) != len(layout) {
		return nil, apperrors.Encoding("%s expects %d accounts, got %d", op, len(layout), len(keys))
	}

	metas := make([]*solana.AccountMeta, len(layout))
	for i, spec := range layout {
		// адрес системной программы состоит из нулей
		if keys[i].IsZero() && spec.Name != "system_program" {
			return nil, apperrors.InvalidInput("%s: account %s is not set", op, spec.Name)
		}
		metas[i] = solana.NewAccountMeta(keys[i], spec.Writable, spec.Signer)
	}
	return metas, nil
}

// Plan – результат сборки: инструкции, свежие ключи-подписанты и адреса, созданные по ходу.
type Plan struct {
	Instructions []solana.Instruction
	Signers      []solana.PrivateKey
	Addresses    map[string]solana.PublicKey
}

func newPlan() *Plan {
	return &Plan{Addresses: make(map[string]solana.PublicKey)}
}

func (p *Plan) add(ix solana.Instruction) {
	p.Instructions = append(p.Instructions, ix)
}

// Builder собирает инструкции программ AMM, token_setup и counter_hook.
// Сеть не используется: всё, что требует чтения состояния, передаётся параметрами.
type Builder struct {
	cfg *Config
}

func NewBuilder(cfg *Config) *Builder {
	if cfg == nil {
		cfg = GetDefaultConfig()
	}
	return &Builder{cfg: cfg}
}

// Config возвращает конфигурацию программ билдера.
func (b *Builder) Config() *Config {
	return b.cfg
}

func requireKey(name string, pk solana.PublicKey) error {
	if pk.IsZero() {
		return apperrors.InvalidInput("%s address is required", name)
	}
	return nil
}

func requirePair(mintA, mintB solana.PublicKey) error {
	if err := requireKey("mint A", mintA); err != nil {
		return err
	}
	if err := requireKey("mint B", mintB); err != nil {
		return err
	}
	if mintA.Equals(mintB) {
		return apperrors.InvalidInput("mint A and mint B must differ")
	}
	return nil
}

func requireAmount(name string, v uint64) error {
	if v == 0 {
		return apperrors.InvalidInput("%s must be positive", name)
	}
	return nil
}

func validateSolFee(fee uint64) error {
	if fee == 0 || fee > MaxSolFee {
		return apperrors.InvalidInput("sol fee must be in (0, %d] lamports, got %d", MaxSolFee, fee)
	}
	return nil
}

// CreateAmmParams – параметры create_amm. Плательщик одновременно становится админом.
type CreateAmmParams struct {
	Payer           solana.PublicKey
	MintA           solana.PublicKey
	MintB           solana.PublicKey
	SolFee          uint64
	SolFeeCollector solana.PublicKey
}

// CreateAmm собирает запись реестра AMM для пары минтов.
func (b *Builder) CreateAmm(p CreateAmmParams) (*Plan, error) {
	if err := requirePair(p.MintA, p.MintB); err != nil {
		return nil, err
	}
	if err := validateSolFee(p.SolFee); err != nil {
		return nil, err
	}
	collector := p.SolFeeCollector
	if collector.IsZero() {
		collector = p.Payer
	}

	amm, err := DeriveAMM(b.cfg.AMMProgramID, p.MintA, p.MintB)
	if err != nil {
		return nil, err
	}

	data, err := EncodeCreateAmm(CreateAmmArgs{
		MintA:           p.MintA,
		MintB:           p.MintB,
		SolFee:          p.SolFee,
		SolFeeCollector: collector,
	})
	if err != nil {
		return nil, err
	}
	metas, err := layoutMetas(OpCreateAmm,
		amm.Address, p.Payer, collector, p.Payer, p.MintA, p.MintB, SystemProgramID)
	if err != nil {
		return nil, err
	}

	plan := newPlan()
	plan.add(solana.NewInstruction(b.cfg.AMMProgramID, metas, data))
	plan.Addresses["amm"] = amm.Address
	return plan, nil
}

// UpdateAdmin передаёт права админа AMM.
func (b *Builder) UpdateAdmin(admin, mintA, mintB, newAdmin solana.PublicKey) (*Plan, error) {
	if err := requirePair(mintA, mintB); err != nil {
		return nil, err
	}
	if err := requireKey("new admin", newAdmin); err != nil {
		return nil, err
	}
	amm, err := DeriveAMM(b.cfg.AMMProgramID, mintA, mintB)
	if err != nil {
		return nil, err
	}
	data, err := EncodeUpdateAdmin(UpdateAdminArgs{NewAdmin: newAdmin})
	if err != nil {
		return nil, err
	}
	metas, err := layoutMetas(OpUpdateAdmin, amm.Address, mintA, mintB, admin)
	if err != nil {
		return nil, err
	}

	plan := newPlan()
	plan.add(solana.NewInstruction(b.cfg.AMMProgramID, metas, data))
	plan.Addresses["amm"] = amm.Address
	return plan, nil
}

// UpdateFee меняет комиссию AMM в лампортах.
func (b *Builder) UpdateFee(admin, mintA, mintB solana.PublicKey, fee uint64) (*Plan, error) {
	if err := requirePair(mintA, mintB); err != nil {
		return nil, err
	}
	if err := validateSolFee(fee); err != nil {
		return nil, err
	}
	amm, err := DeriveAMM(b.cfg.AMMProgramID, mintA, mintB)
	if err != nil {
		return nil, err
	}
	data, err := EncodeUpdateFee(UpdateFeeArgs{NewSolFee: fee})
	if err != nil {
		return nil, err
	}
	metas, err := layoutMetas(OpUpdateFee, amm.Address, mintA, mintB, admin)
	if err != nil {
		return nil, err
	}

	plan := newPlan()
	plan.add(solana.NewInstruction(b.cfg.AMMProgramID, metas, data))
	plan.Addresses["amm"] = amm.Address
	return plan, nil
}

// CreatePool создаёт пул и генерирует новый LP минт, который подписывает транзакцию.
func (b *Builder) CreatePool(payer, mintA, mintB solana.PublicKey) (*Plan, error) {
	if err := requirePair(mintA, mintB); err != nil {
		return nil, err
	}
	addrs, err := b.cfg.DerivePoolAddresses(mintA, mintB)
	if err != nil {
		return nil, err
	}

	lpMint, err := wallet.NewKeypair()
	if err != nil {
		return nil, err
	}

	data, err := EncodeCreatePool()
	if err != nil {
		return nil, err
	}
	metas, err := layoutMetas(OpCreatePool,
		payer, addrs.AMM, addrs.Pool, addrs.PoolAuthority.Address, lpMint.PublicKey(),
		mintA, mintB, SystemProgramID, b.cfg.AssociatedTokenProgramID, b.cfg.TokenProgramID)
	if err != nil {
		return nil, err
	}

	plan := newPlan()
	plan.add(solana.NewInstruction(b.cfg.AMMProgramID, metas, data))
	plan.Signers = append(plan.Signers, lpMint)
	plan.Addresses["amm"] = addrs.AMM
	plan.Addresses["pool"] = addrs.Pool
	plan.Addresses["pool_authority"] = addrs.PoolAuthority.Address
	plan.Addresses["lp_mint"] = lpMint.PublicKey()
	return plan, nil
}

// CreatePoolTokenAccounts создаёт хранилища пула A, B и LP. lpMint берётся из записи пула.
func (b *Builder) CreatePoolTokenAccounts(payer, mintA, mintB, lpMint solana.PublicKey) (*Plan, error) {
	if err := requirePair(mintA, mintB); err != nil {
		return nil, err
	}
	if err := requireKey("lp mint", lpMint); err != nil {
		return nil, err
	}
	addrs, err := b.cfg.DerivePoolAddresses(mintA, mintB)
	if err != nil {
		return nil, err
	}
	poolLP, err := b.cfg.ATA(addrs.PoolAuthority.Address, lpMint)
	if err != nil {
		return nil, err
	}

	data, err := EncodeCreateTokenAccounts()
	if err != nil {
		return nil, err
	}
	metas, err := layoutMetas(OpCreateTokenAccounts,
		payer, addrs.AMM, addrs.Pool, addrs.PoolAuthority.Address, mintA, mintB, lpMint,
		addrs.VaultA, addrs.VaultB, poolLP,
		SystemProgramID, b.cfg.AssociatedTokenProgramID, b.cfg.TokenProgramID)
	if err != nil {
		return nil, err
	}

	plan := newPlan()
	plan.add(solana.NewInstruction(b.cfg.AMMProgramID, metas, data))
	plan.Addresses["pool_account_a"] = addrs.VaultA
	plan.Addresses["pool_account_b"] = addrs.VaultB
	plan.Addresses["pool_account_liquidity"] = poolLP
	return plan, nil
}

// DepositParams – параметры deposit_liquidity.
type DepositParams struct {
	Depositor   solana.PublicKey
	MintA       solana.PublicKey
	MintB       solana.PublicKey
	LPMint      solana.PublicKey
	AmountA     uint64
	AmountB     uint64
	HookProgram solana.PublicKey
}

// DepositLiquidity вносит ликвидность. Аккаунты hook обоих минтов идут после основного списка.
func (b *Builder) DepositLiquidity(p DepositParams) (*Plan, error) {
	if err := requirePair(p.MintA, p.MintB); err != nil {
		return nil, err
	}
	if err := requireKey("lp mint", p.LPMint); err != nil {
		return nil, err
	}
	if err := requireAmount("amount A", p.AmountA); err != nil {
		return nil, err
	}
	if err := requireAmount("amount B", p.AmountB); err != nil {
		return nil, err
	}
	hookProgram := p.HookProgram
	if hookProgram.IsZero() {
		hookProgram = b.cfg.CounterHookProgramID
	}

	addrs, err := b.cfg.DerivePoolAddresses(p.MintA, p.MintB)
	if err != nil {
		return nil, err
	}
	userA, err := b.cfg.ATA(p.Depositor, p.MintA)
	if err != nil {
		return nil, err
	}
	userB, err := b.cfg.ATA(p.Depositor, p.MintB)
	if err != nil {
		return nil, err
	}
	userLP, err := b.cfg.ATA(p.Depositor, p.LPMint)
	if err != nil {
		return nil, err
	}
	poolLP, err := b.cfg.ATA(addrs.PoolAuthority.Address, p.LPMint)
	if err != nil {
		return nil, err
	}
	hookA, err := DeriveHookAccounts(hookProgram, p.MintA)
	if err != nil {
		return nil, err
	}
	hookB, err := DeriveHookAccounts(hookProgram, p.MintB)
	if err != nil {
		return nil, err
	}

	data, err := EncodeDepositLiquidity(DepositLiquidityArgs{AmountA: p.AmountA, AmountB: p.AmountB})
	if err != nil {
		return nil, err
	}
	metas, err := layoutMetas(OpDepositLiquidity,
		addrs.AMM, addrs.Pool, addrs.PoolAuthority.Address, p.MintA, p.MintB,
		addrs.VaultA, addrs.VaultB, userA, userB, userLP, poolLP, p.LPMint, p.Depositor,
		SystemProgramID, b.cfg.AssociatedTokenProgramID, b.cfg.TokenProgramID,
		hookA.ExtraAccountMetas, hookA.TradeCounter, hookB.ExtraAccountMetas, hookB.TradeCounter, hookProgram)
	if err != nil {
		return nil, err
	}

	plan := newPlan()
	plan.add(solana.NewInstruction(b.cfg.AMMProgramID, metas, data))
	plan.Addresses["depositor_account_liquidity"] = userLP
	return plan, nil
}

// SwapParams – параметры swap_exact_tokens_for_tokens. SwapA=true меняет A на B.
type SwapParams struct {
	Trader          solana.PublicKey
	MintA           solana.PublicKey
	MintB           solana.PublicKey
	SwapA           bool
	InputAmount     uint64
	MinOutputAmount uint64
	HookProgramA    solana.PublicKey
	HookProgramB    solana.PublicKey
}

// Swap собирает обмен с точным входом.
func (b *Builder) Swap(p SwapParams) (*Plan, error) {
	if err := requirePair(p.MintA, p.MintB); err != nil {
		return nil, err
	}
	if err := requireAmount("input amount", p.InputAmount); err != nil {
		return nil, err
	}
	hookProgA, hookProgB := p.HookProgramA, p.HookProgramB
	if hookProgA.IsZero() {
		hookProgA = b.cfg.CounterHookProgramID
	}
	if hookProgB.IsZero() {
		hookProgB = b.cfg.CounterHookProgramID
	}

	addrs, err := b.cfg.DerivePoolAddresses(p.MintA, p.MintB)
	if err != nil {
		return nil, err
	}
	traderA, err := b.cfg.ATA(p.Trader, p.MintA)
	if err != nil {
		return nil, err
	}
	traderB, err := b.cfg.ATA(p.Trader, p.MintB)
	if err != nil {
		return nil, err
	}
	hookA, err := DeriveHookAccounts(hookProgA, p.MintA)
	if err != nil {
		return nil, err
	}
	hookB, err := DeriveHookAccounts(hookProgB, p.MintB)
	if err != nil {
		return nil, err
	}

	data, err := EncodeSwap(SwapArgs{
		SwapA:           p.SwapA,
		InputAmount:     p.InputAmount,
		MinOutputAmount: p.MinOutputAmount,
	})
	if err != nil {
		return nil, err
	}
	metas, err := layoutMetas(OpSwapExactTokensForTokens,
		addrs.AMM, addrs.Pool, addrs.PoolAuthority.Address, p.MintA, p.MintB,
		addrs.VaultA, addrs.VaultB, traderA, traderB, p.Trader,
		SystemProgramID, b.cfg.AssociatedTokenProgramID, b.cfg.TokenProgramID,
		hookA.ExtraAccountMetas, hookA.TradeCounter, hookB.ExtraAccountMetas, hookB.TradeCounter,
		hookProgA, hookProgB)
	if err != nil {
		return nil, err
	}

	plan := newPlan()
	plan.add(solana.NewInstruction(b.cfg.AMMProgramID, metas, data))
	return plan, nil
}

// CreateTokenWithHook создаёт минт Token-2022 с transfer hook. Транзакция также
// инициализирует список extra metas и счётчик сделок, подписывает плательщик и новый минт.
func (b *Builder) CreateTokenWithHook(payer solana.PublicKey, args CreateTokenWithHookArgs) (*Plan, error) {
	if err := requireKey("payer", payer); err != nil {
		return nil, err
	}
	if args.Name == "" || args.Symbol == "" {
		return nil, apperrors.InvalidInput("token name and symbol are required")
	}

	mint, err := wallet.NewKeypair()
	if err != nil {
		return nil, err
	}
	mintKey := mint.PublicKey()

	data, err := EncodeCreateTokenWithHook(args)
	if err != nil {
		return nil, err
	}
	metas, err := layoutMetas(OpCreateTokenWithHook,
		mintKey, payer, payer, b.cfg.CounterHookProgramID,
		SystemProgramID, b.cfg.TokenProgramID, b.cfg.AssociatedTokenProgramID)
	if err != nil {
		return nil, err
	}

	plan := newPlan()
	plan.add(solana.NewInstruction(b.cfg.TokenSetupProgramID, metas, data))

	metaIx, err := b.initializeExtraAccountMetaList(payer, mintKey, plan)
	if err != nil {
		return nil, err
	}
	plan.add(metaIx)

	counterIx, err := b.initializeMintTradeCounter(payer, mintKey, plan)
	if err != nil {
		return nil, err
	}
	plan.add(counterIx)

	plan.Signers = append(plan.Signers, mint)
	plan.Addresses["mint"] = mintKey
	return plan, nil
}

// MintTokens выпускает amount на ATA владельца. Если ATA ещё нет (ataExists=false),
// перед выпуском добавляется идемпотентное создание ATA.
func (b *Builder) MintTokens(authority, mint solana.PublicKey, amount uint64, ataExists bool) (*Plan, error) {
	if err := requireKey("mint", mint); err != nil {
		return nil, err
	}
	if err := requireAmount("amount", amount); err != nil {
		return nil, err
	}
	ata, err := b.cfg.ATA(authority, mint)
	if err != nil {
		return nil, err
	}

	plan := newPlan()
	if !ataExists {
		plan.add(b.CreateATAIdempotent(authority, ata, authority, mint))
	}

	data, err := EncodeMintTokens(MintTokensArgs{Amount: amount})
	if err != nil {
		return nil, err
	}
	metas, err := layoutMetas(OpMintTokens,
		mint, ata, authority, SystemProgramID, b.cfg.TokenProgramID, b.cfg.AssociatedTokenProgramID)
	if err != nil {
		return nil, err
	}
	plan.add(solana.NewInstruction(b.cfg.TokenSetupProgramID, metas, data))
	plan.Addresses["token_account"] = ata
	return plan, nil
}

// InitializeExtraAccountMetaList собирает отдельную инициализацию списка extra metas минта.
func (b *Builder) InitializeExtraAccountMetaList(payer, mint solana.PublicKey) (*Plan, error) {
	if err := requireKey("mint", mint); err != nil {
		return nil, err
	}
	plan := newPlan()
	ix, err := b.initializeExtraAccountMetaList(payer, mint, plan)
	if err != nil {
		return nil, err
	}
	plan.add(ix)
	return plan, nil
}

// InitializeMintTradeCounter собирает создание счётчика сделок минта в counter_hook.
func (b *Builder) InitializeMintTradeCounter(payer, mint solana.PublicKey) (*Plan, error) {
	if err := requireKey("mint", mint); err != nil {
		return nil, err
	}
	plan := newPlan()
	ix, err := b.initializeMintTradeCounter(payer, mint, plan)
	if err != nil {
		return nil, err
	}
	plan.add(ix)
	return plan, nil
}

func (b *Builder) initializeExtraAccountMetaList(payer, mint solana.PublicKey, plan *Plan) (solana.Instruction, error) {
	metaList, err := DeriveExtraAccountMetaList(b.cfg.TokenSetupProgramID, mint)
	if err != nil {
		return nil, err
	}
	counter, err := DeriveMintTradeCounter(b.cfg.CounterHookProgramID, mint)
	if err != nil {
		return nil, err
	}
	data, err := EncodeInitializeExtraAccountMetaList()
	if err != nil {
		return nil, err
	}
	metas, err := layoutMetas(OpInitializeExtraAccountMetaList,
		payer, metaList.Address, mint, counter.Address, SystemProgramID)
	if err != nil {
		return nil, err
	}
	plan.Addresses["extra_account_meta_list"] = metaList.Address
	return solana.NewInstruction(b.cfg.TokenSetupProgramID, metas, data), nil
}

func (b *Builder) initializeMintTradeCounter(payer, mint solana.PublicKey, plan *Plan) (solana.Instruction, error) {
	counter, err := DeriveMintTradeCounter(b.cfg.CounterHookProgramID, mint)
	if err != nil {
		return nil, err
	}
	data, err := EncodeInitializeMintTradeCounter()
	if err != nil {
		return nil, err
	}
	metas, err := layoutMetas(OpInitializeMintTradeCounter, payer, mint, counter.Address, SystemProgramID)
	if err != nil {
		return nil, err
	}
	plan.Addresses["mint_trade_counter"] = counter.Address
	return solana.NewInstruction(b.cfg.CounterHookProgramID, metas, data), nil
}

// UpdateMintTradeCounter собирает прямой вызов hook для диагностики.
func (b *Builder) UpdateMintTradeCounter(mint solana.PublicKey, args UpdateMintTradeCounterArgs) (*Plan, error) {
	if err := requireKey("mint", mint); err != nil {
		return nil, err
	}
	counter, err := DeriveMintTradeCounter(b.cfg.CounterHookProgramID, mint)
	if err != nil {
		return nil, err
	}
	data, err := EncodeUpdateMintTradeCounter(args)
	if err != nil {
		return nil, err
	}
	metas, err := layoutMetas(OpUpdateMintTradeCounter, mint, counter.Address)
	if err != nil {
		return nil, err
	}

	plan := newPlan()
	plan.add(solana.NewInstruction(b.cfg.CounterHookProgramID, metas, data))
	plan.Addresses["mint_trade_counter"] = counter.Address
	return plan, nil
}

// CreateATAIdempotent создаёт ATA программы Token-2022, если его ещё нет (инструкция 1 программы ATA).
func (b *Builder) CreateATAIdempotent(payer, ata, owner, mint solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		b.cfg.AssociatedTokenProgramID,
		[]*solana.AccountMeta{
			solana.NewAccountMeta(payer, true, true),
			solana.NewAccountMeta(ata, true, false),
			solana.NewAccountMeta(owner, false, false),
			solana.NewAccountMeta(mint, false, false),
			solana.NewAccountMeta(SystemProgramID, false, false),
			solana.NewAccountMeta(b.cfg.TokenProgramID, false, false),
		},
		[]byte{1},
	)
}

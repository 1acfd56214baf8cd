// =============================
// File: internal/dex/hookamm/dex.go
// =============================
package hookamm

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hookswap/internal/blockchain"
	"github.com/rovshanmuradov/hookswap/internal/blockchain/solbc/transaction"
	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
	"github.com/rovshanmuradov/hookswap/internal/logger"
	"github.com/rovshanmuradov/hookswap/internal/wallet"
)

// Sender отправляет инструкции и ждёт подтверждения. Реализуется transaction.Manager.
type Sender interface {
	SendAndConfirm(ctx context.Context, instructions []solana.Instruction, signer wallet.Signer, extra ...solana.PrivateKey) (*transaction.Status, error)
	ConfirmSignature(ctx context.Context, signature solana.Signature, level rpc.ConfirmationStatusType) (*transaction.Status, error)
}

// OpResult – итог подтверждённой операции.
type OpResult struct {
	Operation        string
	Signature        solana.Signature
	AlreadyProcessed bool
	Logs             []string
	Addresses        map[string]solana.PublicKey
	Elapsed          time.Duration
}

// DEX выполняет операции программ AMM и token_setup от имени одного подписанта.
type DEX struct {
	client  blockchain.Client
	sender  Sender
	signer  wallet.Signer
	builder *Builder
	reader  *Reader
	cfg     *Config
	logger  *zap.Logger
}

// NewDEX создаёт новый экземпляр клиента hook AMM.
func NewDEX(client blockchain.Client, sender Sender, signer wallet.Signer, cfg *Config, logger *zap.Logger) (*DEX, error) {
	if client == nil || sender == nil || signer == nil || logger == nil {
		return nil, fmt.Errorf("client, sender, signer и logger не могут быть nil")
	}
	if cfg == nil {
		cfg = GetDefaultConfig()
	}
	return &DEX{
		client:  client,
		sender:  sender,
		signer:  signer,
		builder: NewBuilder(cfg),
		reader:  NewReader(client, cfg, logger),
		cfg:     cfg,
		logger:  logger.Named("hookamm"),
	}, nil
}

func (d *DEX) Payer() solana.PublicKey { return d.signer.PublicKey() }
func (d *DEX) Reader() *Reader         { return d.reader }
func (d *DEX) Builder() *Builder       { return d.builder }
func (d *DEX) Config() *Config         { return d.cfg }

// ensureBalance – pre-flight проверка SOL баланса плательщика до сборки транзакции.
func (d *DEX) ensureBalance(ctx context.Context) error {
	if d.cfg.MinBalance == 0 {
		return nil
	}
	have, err := d.reader.SOLBalance(ctx, d.Payer())
	if err != nil {
		return err
	}
	if have < d.cfg.MinBalance {
		return apperrors.InsufficientBalance(have, d.cfg.MinBalance)
	}
	return nil
}

// execute отправляет план и превращает статус в OpResult.
func (d *DEX) execute(ctx context.Context, name string, plan *Plan) (*OpResult, error) {
	started := time.Now()
	log := logger.WithOperation(d.logger, name)
	log.Info("Submitting operation",
		zap.Int("instructions", len(plan.Instructions)),
		zap.Int("extra_signers", len(plan.Signers)))

	status, err := d.sender.SendAndConfirm(ctx, plan.Instructions, d.signer, plan.Signers...)
	if err != nil {
		log.Error("Operation failed",
			zap.String("kind", string(apperrors.KindOf(err))),
			zap.Error(err))
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	result := &OpResult{
		Operation:        name,
		Signature:        status.Signature,
		AlreadyProcessed: status.AlreadyProcessed,
		Logs:             status.Logs,
		Addresses:        plan.Addresses,
		Elapsed:          time.Since(started),
	}
	fields := []zap.Field{
		zap.String("signature", status.Signature.String()),
		zap.Bool("already_processed", status.AlreadyProcessed),
	}
	for k, v := range plan.Addresses {
		fields = append(fields, zap.String(k, v.String()))
	}
	log.Info("Operation confirmed", fields...)
	return result, nil
}

// run – операция с чистой сборкой плана: build не ходит в сеть, поэтому ошибки ввода
// отсекаются до любого RPC, а баланс проверяется до отправки.
func (d *DEX) run(ctx context.Context, name string, build func() (*Plan, error)) (*OpResult, error) {
	plan, err := build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := d.ensureBalance(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return d.execute(ctx, name, plan)
}

// runWithReads – операция, чья сборка читает состояние сети. Порядок: validate без сети,
// проверка баланса, затем prepare с чтениями.
func (d *DEX) runWithReads(ctx context.Context, name string, validate func() error, prepare func() (*Plan, error)) (*OpResult, error) {
	if err := validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := d.ensureBalance(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	plan, err := prepare()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return d.execute(ctx, name, plan)
}

// CreateTokenWithHook создаёт минт с transfer hook, список extra metas и счётчик сделок.
// Адрес нового минта – Addresses["mint"].
func (d *DEX) CreateTokenWithHook(ctx context.Context, name, symbol, uri string) (*OpResult, error) {
	res, err := d.run(ctx, "create_token_with_hook", func() (*Plan, error) {
		return d.builder.CreateTokenWithHook(d.Payer(), CreateTokenWithHookArgs{Name: name, Symbol: symbol, URI: uri})
	})
	if err != nil {
		return nil, err
	}
	d.logger.Info("Token created",
		zap.String("mint", res.Addresses["mint"].String()),
		zap.String("symbol", symbol))
	return res, nil
}

// PrepareMintTokens проверяет наличие ATA плательщика и собирает выпуск токенов.
func (d *DEX) PrepareMintTokens(ctx context.Context, mint solana.PublicKey, amount uint64) (*Plan, error) {
	if err := validateMintTokens(mint, amount); err != nil {
		return nil, err
	}
	ata, err := d.cfg.ATA(d.Payer(), mint)
	if err != nil {
		return nil, err
	}
	exists, err := d.reader.AccountExists(ctx, ata)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("Destination token account checked",
		zap.String("ata", ata.String()),
		zap.Bool("exists", exists))
	return d.builder.MintTokens(d.Payer(), mint, amount, exists)
}

func validateMintTokens(mint solana.PublicKey, amount uint64) error {
	if err := requireKey("mint", mint); err != nil {
		return err
	}
	return requireAmount("amount", amount)
}

// MintTokens выпускает amount (в базовых единицах) на ATA плательщика.
func (d *DEX) MintTokens(ctx context.Context, mint solana.PublicKey, amount uint64) (*OpResult, error) {
	result, err := d.runWithReads(ctx, "mint_tokens",
		func() error { return validateMintTokens(mint, amount) },
		func() (*Plan, error) { return d.PrepareMintTokens(ctx, mint, amount) })
	if err == nil {
		d.reader.Metadata().Invalidate(mint)
	}
	return result, err
}

// CreateAmm создаёт запись реестра AMM. Нулевой collector заменяется плательщиком.
func (d *DEX) CreateAmm(ctx context.Context, mintA, mintB solana.PublicKey, solFee uint64, collector solana.PublicKey) (*OpResult, error) {
	return d.run(ctx, "create_amm", func() (*Plan, error) {
		return d.builder.CreateAmm(CreateAmmParams{
			Payer:           d.Payer(),
			MintA:           mintA,
			MintB:           mintB,
			SolFee:          solFee,
			SolFeeCollector: collector,
		})
	})
}

func (d *DEX) UpdateAdmin(ctx context.Context, mintA, mintB, newAdmin solana.PublicKey) (*OpResult, error) {
	return d.run(ctx, "update_admin", func() (*Plan, error) {
		return d.builder.UpdateAdmin(d.Payer(), mintA, mintB, newAdmin)
	})
}

func (d *DEX) UpdateFee(ctx context.Context, mintA, mintB solana.PublicKey, fee uint64) (*OpResult, error) {
	return d.run(ctx, "update_fee", func() (*Plan, error) {
		return d.builder.UpdateFee(d.Payer(), mintA, mintB, fee)
	})
}

// CreatePool создаёт пул пары. Адрес нового LP минта – Addresses["lp_mint"].
func (d *DEX) CreatePool(ctx context.Context, mintA, mintB solana.PublicKey) (*OpResult, error) {
	return d.run(ctx, "create_pool", func() (*Plan, error) {
		return d.builder.CreatePool(d.Payer(), mintA, mintB)
	})
}

// lpMintOf берёт LP минт из записи пула, если он не передан явно.
func (d *DEX) lpMintOf(ctx context.Context, mintA, mintB, lpMint solana.PublicKey) (solana.PublicKey, error) {
	if !lpMint.IsZero() {
		return lpMint, nil
	}
	pool, _, err := d.reader.PoolForPair(ctx, mintA, mintB)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to read pool: %w", err)
	}
	return pool.LPMint, nil
}

// CreatePoolTokenAccounts создаёт хранилища пула. Нулевой lpMint читается из записи пула.
func (d *DEX) CreatePoolTokenAccounts(ctx context.Context, mintA, mintB, lpMint solana.PublicKey) (*OpResult, error) {
	return d.runWithReads(ctx, "create_token_accounts",
		func() error { return requirePair(mintA, mintB) },
		func() (*Plan, error) {
			lp, err := d.lpMintOf(ctx, mintA, mintB, lpMint)
			if err != nil {
				return nil, err
			}
			return d.builder.CreatePoolTokenAccounts(d.Payer(), mintA, mintB, lp)
		})
}

// DepositLiquidity вносит amountA/amountB (базовые единицы) в пул.
func (d *DEX) DepositLiquidity(ctx context.Context, mintA, mintB, lpMint solana.PublicKey, amountA, amountB uint64, hookProgram solana.PublicKey) (*OpResult, error) {
	validate := func() error {
		if err := requirePair(mintA, mintB); err != nil {
			return err
		}
		if err := requireAmount("amount A", amountA); err != nil {
			return err
		}
		return requireAmount("amount B", amountB)
	}
	return d.runWithReads(ctx, "deposit_liquidity", validate, func() (*Plan, error) {
		lp, err := d.lpMintOf(ctx, mintA, mintB, lpMint)
		if err != nil {
			return nil, err
		}
		return d.builder.DepositLiquidity(DepositParams{
			Depositor:   d.Payer(),
			MintA:       mintA,
			MintB:       mintB,
			LPMint:      lp,
			AmountA:     amountA,
			AmountB:     amountB,
			HookProgram: hookProgram,
		})
	})
}

// Swap меняет InputAmount одного минта на другой. Trader всегда плательщик.
func (d *DEX) Swap(ctx context.Context, p SwapParams) (*OpResult, error) {
	p.Trader = d.Payer()
	return d.run(ctx, "swap_exact_tokens_for_tokens", func() (*Plan, error) {
		return d.builder.Swap(p)
	})
}

func (d *DEX) InitializeExtraAccountMetaList(ctx context.Context, mint solana.PublicKey) (*OpResult, error) {
	return d.run(ctx, "initialize_extra_account_meta_list", func() (*Plan, error) {
		return d.builder.InitializeExtraAccountMetaList(d.Payer(), mint)
	})
}

func (d *DEX) InitializeMintTradeCounter(ctx context.Context, mint solana.PublicKey) (*OpResult, error) {
	return d.run(ctx, "initialize_mint_trade_counter", func() (*Plan, error) {
		return d.builder.InitializeMintTradeCounter(d.Payer(), mint)
	})
}

// AirdropResult – итог airdrop с балансом после подтверждения.
type AirdropResult struct {
	Signature solana.Signature
	Lamports  uint64
	Balance   uint64
}

// Airdrop запрашивает SOL в тестовой сети и ждёт подтверждения. Pre-flight проверка баланса не нужна.
func (d *DEX) Airdrop(ctx context.Context, lamports uint64) (*AirdropResult, error) {
	if err := requireAmount("airdrop amount", lamports); err != nil {
		return nil, err
	}
	sig, err := d.client.RequestAirdrop(ctx, d.Payer(), lamports)
	if err != nil {
		return nil, apperrors.Submission(err, nil)
	}
	d.logger.Info("Airdrop requested",
		zap.String("signature", sig.String()),
		zap.String("amount_sol", FormatSOL(lamports)))

	if _, err := d.sender.ConfirmSignature(ctx, sig, rpc.ConfirmationStatusConfirmed); err != nil {
		return nil, fmt.Errorf("airdrop: %w", err)
	}
	balance, err := d.reader.SOLBalance(ctx, d.Payer())
	if err != nil {
		return nil, err
	}
	d.logger.Info("Airdrop confirmed", zap.String("balance", FormatSOL(balance)))
	return &AirdropResult{Signature: sig, Lamports: lamports, Balance: balance}, nil
}

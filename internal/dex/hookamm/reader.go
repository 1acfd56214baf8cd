// =============================
// File: internal/dex/hookamm/reader.go
// =============================
package hookamm

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/hookswap/internal/blockchain"
	"github.com/rovshanmuradov/hookswap/internal/blockchain/solbc"
	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
)

// Reader читает и декодирует аккаунты программ и токен-балансы.
type Reader struct {
	client   blockchain.NetworkReader
	cfg      *Config
	metadata *solbc.TokenMetadataCache
	logger   *zap.Logger
}

func NewReader(client blockchain.NetworkReader, cfg *Config, logger *zap.Logger) *Reader {
	if cfg == nil {
		cfg = GetDefaultConfig()
	}
	return &Reader{
		client:   client,
		cfg:      cfg,
		metadata: solbc.NewTokenMetadataCache(logger),
		logger:   logger.Named("hookamm-reader"),
	}
}

// Metadata возвращает кэш метаданных минтов ридера.
func (r *Reader) Metadata() *solbc.TokenMetadataCache {
	return r.metadata
}

// accountData возвращает байты аккаунта; отсутствующий аккаунт – ErrAccountNotFound.
func (r *Reader) accountData(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	info, err := r.client.GetAccountInfo(ctx, address)
	if err != nil {
		if solbc.IsAccountNotFoundError(err) {
			return nil, apperrors.Wrap(apperrors.KindAccountNotFound, err, address.String())
		}
		return nil, fmt.Errorf("failed to get account %s: %w", address, err)
	}
	if info == nil || info.Value == nil {
		return nil, apperrors.New(apperrors.KindAccountNotFound, address.String())
	}
	return info.Value.Data.GetBinary(), nil
}

// AccountExists проверяет наличие аккаунта.
func (r *Reader) AccountExists(ctx context.Context, address solana.PublicKey) (bool, error) {
	_, err := r.accountData(ctx, address)
	if err == nil {
		return true, nil
	}
	if solbc.IsAccountNotFoundError(err) {
		return false, nil
	}
	return false, err
}

// Pool читает запись пула по адресу.
func (r *Reader) Pool(ctx context.Context, address solana.PublicKey) (*Pool, error) {
	data, err := r.accountData(ctx, address)
	if err != nil {
		return nil, err
	}
	return ParsePool(data)
}

// PoolForPair вычисляет адрес пула пары и читает его.
func (r *Reader) PoolForPair(ctx context.Context, mintA, mintB solana.PublicKey) (*Pool, *PoolAddresses, error) {
	addrs, err := r.cfg.DerivePoolAddresses(mintA, mintB)
	if err != nil {
		return nil, nil, err
	}
	pool, err := r.Pool(ctx, addrs.Pool)
	if err != nil {
		return nil, addrs, err
	}
	return pool, addrs, nil
}

// Amm читает запись реестра AMM пары.
func (r *Reader) Amm(ctx context.Context, mintA, mintB solana.PublicKey) (*Amm, solana.PublicKey, error) {
	pda, err := DeriveAMM(r.cfg.AMMProgramID, mintA, mintB)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	data, err := r.accountData(ctx, pda.Address)
	if err != nil {
		return nil, pda.Address, err
	}
	amm, err := ParseAmm(data)
	return amm, pda.Address, err
}

// TradeCounter читает счётчик сделок минта из программы counter_hook.
func (r *Reader) TradeCounter(ctx context.Context, mint solana.PublicKey) (*MintTradeCounter, error) {
	pda, err := DeriveMintTradeCounter(r.cfg.CounterHookProgramID, mint)
	if err != nil {
		return nil, err
	}
	return r.TradeCounterAt(ctx, pda.Address)
}

// TradeCounterAt читает счётчик по известному адресу.
func (r *Reader) TradeCounterAt(ctx context.Context, address solana.PublicKey) (*MintTradeCounter, error) {
	data, err := r.accountData(ctx, address)
	if err != nil {
		return nil, err
	}
	return ParseMintTradeCounter(data)
}

// MintDecimals возвращает decimals минта; при ошибке чтения используется значение из конфигурации.
func (r *Reader) MintDecimals(ctx context.Context, mint solana.PublicKey) uint8 {
	md, err := r.metadata.GetTokenMetadata(ctx, r.client, mint)
	if err != nil {
		r.logger.Debug("Mint decimals unavailable, using default",
			zap.String("mint", mint.String()),
			zap.Uint8("default", r.cfg.Decimals),
			zap.Error(err))
		return r.cfg.Decimals
	}
	return md.Decimals
}

// TokenBalance читает баланс токен-аккаунта. Несуществующий аккаунт – нулевой баланс, не ошибка.
func (r *Reader) TokenBalance(ctx context.Context, account, mint solana.PublicKey) (*TokenBalance, error) {
	balance := &TokenBalance{Account: account, Mint: mint}

	result, err := r.client.GetTokenAccountBalance(ctx, account)
	if err != nil {
		if solbc.IsAccountNotFoundError(err) {
			balance.Decimals = r.MintDecimals(ctx, mint)
			balance.UIAmount = decimal.Zero
			return balance, nil
		}
		return nil, fmt.Errorf("failed to get token balance of %s: %w", account, err)
	}
	if result == nil || result.Value == nil {
		return nil, apperrors.Decode("token balance "+account.String(), "empty response")
	}

	amount, err := parseRawAmount(result.Value)
	if err != nil {
		return nil, apperrors.Decode("token balance "+account.String(), "%v", err)
	}
	balance.Amount = amount
	balance.Decimals = result.Value.Decimals
	balance.UIAmount = FromBaseUnits(amount, balance.Decimals)
	balance.Exists = true
	return balance, nil
}

func parseRawAmount(v *rpc.UiTokenAmount) (uint64, error) {
	if v.Amount == "" {
		return 0, nil
	}
	return strconv.ParseUint(v.Amount, 10, 64)
}

// OwnerTokenBalance читает баланс ATA владельца для минта.
func (r *Reader) OwnerTokenBalance(ctx context.Context, owner, mint solana.PublicKey) (*TokenBalance, error) {
	ata, err := r.cfg.ATA(owner, mint)
	if err != nil {
		return nil, err
	}
	return r.TokenBalance(ctx, ata, mint)
}

// PoolBalances параллельно читает хранилища пула и балансы пользователя. lpMint может быть нулевым.
func (r *Reader) PoolBalances(ctx context.Context, owner, mintA, mintB, lpMint solana.PublicKey) (*PoolBalances, error) {
	addrs, err := r.cfg.DerivePoolAddresses(mintA, mintB)
	if err != nil {
		return nil, err
	}

	out := &PoolBalances{}
	g, gctx := errgroup.WithContext(ctx)

	read := func(dst *TokenBalance, account, mint solana.PublicKey) {
		g.Go(func() error {
			b, err := r.TokenBalance(gctx, account, mint)
			if err != nil {
				return err
			}
			*dst = *b
			return nil
		})
	}
	readOwner := func(dst *TokenBalance, mint solana.PublicKey) {
		g.Go(func() error {
			b, err := r.OwnerTokenBalance(gctx, owner, mint)
			if err != nil {
				return err
			}
			*dst = *b
			return nil
		})
	}

	read(&out.PoolA, addrs.VaultA, mintA)
	read(&out.PoolB, addrs.VaultB, mintB)
	if !owner.IsZero() {
		readOwner(&out.UserA, mintA)
		readOwner(&out.UserB, mintB)
		if !lpMint.IsZero() {
			readOwner(&out.UserLP, lpMint)
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// PoolStats собирает сводку по пулу: запись пула, резервы и цену A в B.
func (r *Reader) PoolStats(ctx context.Context, mintA, mintB solana.PublicKey) (*PoolStats, error) {
	pool, addrs, err := r.PoolForPair(ctx, mintA, mintB)
	if err != nil {
		return nil, err
	}
	balances, err := r.PoolBalances(ctx, solana.PublicKey{}, mintA, mintB, solana.PublicKey{})
	if err != nil {
		return nil, err
	}

	stats := &PoolStats{
		Address:        addrs.Pool,
		Pool:           pool,
		ReserveA:       balances.PoolA.UIAmount,
		ReserveB:       balances.PoolB.UIAmount,
		TotalLiquidity: pool.TotalLiquidity,
		PriceAInB:      decimal.Zero,
	}
	if stats.ReserveA.IsPositive() {
		stats.PriceAInB = stats.ReserveB.Div(stats.ReserveA)
	}
	return stats, nil
}

// SOLBalance возвращает баланс в лампортах.
func (r *Reader) SOLBalance(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	lamports, err := r.client.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get SOL balance: %w", err)
	}
	return lamports, nil
}

// TransactionLogs возвращает логи транзакции, отфильтрованные по программе (если задана).
func (r *Reader) TransactionLogs(ctx context.Context, signature solana.Signature, program solana.PublicKey) ([]string, error) {
	result, err := r.client.GetTransaction(ctx, signature)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", signature, err)
	}
	if result == nil || result.Meta == nil {
		return nil, nil
	}
	logs := make([]string, 0, len(result.Meta.LogMessages))
	for _, l := range result.Meta.LogMessages {
		logs = append(logs, solbc.StripANSI(l))
	}
	if program.IsZero() {
		return logs, nil
	}
	return solbc.FilterProgramLogs(logs, program), nil
}

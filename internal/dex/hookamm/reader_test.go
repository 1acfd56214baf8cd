package hookamm

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/hookswap/internal/blockchain/blockchaintest"
	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
)

func notFound(pk solana.PublicKey) error {
	return apperrors.New(apperrors.KindAccountNotFound, pk.String())
}

func tokenAmount(amount string, decimals uint8) *rpc.GetTokenAccountBalanceResult {
	return &rpc.GetTokenAccountBalanceResult{Value: &rpc.UiTokenAmount{Amount: amount, Decimals: decimals}}
}

func TestTokenBalanceMissingAccountIsZero(t *testing.T) {
	client := new(blockchaintest.MockClient)
	account := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	client.On("GetTokenAccountBalance", mock.Anything, account).Return(nil, notFound(account))
	client.On("GetAccountInfo", mock.Anything, mint).Return(nil, notFound(mint))

	r := NewReader(client, nil, zaptest.NewLogger(t))
	balance, err := r.TokenBalance(context.Background(), account, mint)

	require.NoError(t, err)
	assert.False(t, balance.Exists)
	assert.Zero(t, balance.Amount)
	assert.True(t, balance.UIAmount.IsZero())
	assert.Equal(t, DefaultDecimals, balance.Decimals)
}

func TestTokenBalanceScales(t *testing.T) {
	client := new(blockchaintest.MockClient)
	account := solana.NewWallet().PublicKey()
	client.On("GetTokenAccountBalance", mock.Anything, account).Return(tokenAmount("1500000", 6), nil)

	r := NewReader(client, nil, zaptest.NewLogger(t))
	balance, err := r.TokenBalance(context.Background(), account, solana.NewWallet().PublicKey())

	require.NoError(t, err)
	assert.True(t, balance.Exists)
	assert.Equal(t, uint64(1_500_000), balance.Amount)
	assert.True(t, balance.UIAmount.Equal(decimal.RequireFromString("1.5")))
}

func TestTokenBalanceTransportErrorSurfaces(t *testing.T) {
	client := new(blockchaintest.MockClient)
	account := solana.NewWallet().PublicKey()
	client.On("GetTokenAccountBalance", mock.Anything, account).Return(nil, errors.New("connection refused"))

	r := NewReader(client, nil, zaptest.NewLogger(t))
	_, err := r.TokenBalance(context.Background(), account, solana.NewWallet().PublicKey())

	assert.Error(t, err)
}

func TestTokenBalanceMethodNotFoundSurfaces(t *testing.T) {
	client := new(blockchaintest.MockClient)
	account := solana.NewWallet().PublicKey()
	client.On("GetTokenAccountBalance", mock.Anything, account).
		Return(nil, &jsonrpc.RPCError{Code: -32601, Message: "Method not found"})

	r := NewReader(client, nil, zaptest.NewLogger(t))
	balance, err := r.TokenBalance(context.Background(), account, solana.NewWallet().PublicKey())

	require.Error(t, err)
	assert.Nil(t, balance)
	assert.Contains(t, err.Error(), "Method not found")
	client.AssertNotCalled(t, "GetAccountInfo", mock.Anything, mock.Anything)
}

func TestAccountExistsTransportErrorSurfaces(t *testing.T) {
	client := new(blockchaintest.MockClient)
	account := solana.NewWallet().PublicKey()
	client.On("GetAccountInfo", mock.Anything, account).
		Return(nil, &jsonrpc.RPCError{Code: -32601, Message: "Method not found"})

	r := NewReader(client, nil, zaptest.NewLogger(t))
	_, err := r.AccountExists(context.Background(), account)

	assert.Error(t, err)
}

func TestPoolBalancesFanOut(t *testing.T) {
	client := new(blockchaintest.MockClient)
	cfg := GetDefaultConfig()
	owner := solana.NewWallet().PublicKey()
	mintA := solana.NewWallet().PublicKey()
	mintB := solana.NewWallet().PublicKey()
	addrs, err := cfg.DerivePoolAddresses(mintA, mintB)
	require.NoError(t, err)
	userA, _ := cfg.ATA(owner, mintA)
	userB, _ := cfg.ATA(owner, mintB)

	client.On("GetTokenAccountBalance", mock.Anything, addrs.VaultA).Return(tokenAmount("1000000000", 6), nil)
	client.On("GetTokenAccountBalance", mock.Anything, addrs.VaultB).Return(tokenAmount("2000000000", 6), nil)
	client.On("GetTokenAccountBalance", mock.Anything, userA).Return(tokenAmount("7", 6), nil)
	client.On("GetTokenAccountBalance", mock.Anything, userB).Return(nil, notFound(userB))
	client.On("GetAccountInfo", mock.Anything, mintB).Return(nil, notFound(mintB))

	r := NewReader(client, cfg, zaptest.NewLogger(t))
	balances, err := r.PoolBalances(context.Background(), owner, mintA, mintB, solana.PublicKey{})

	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_000), balances.PoolA.Amount)
	assert.Equal(t, uint64(2_000_000_000), balances.PoolB.Amount)
	assert.Equal(t, uint64(7), balances.UserA.Amount)
	assert.False(t, balances.UserB.Exists)
	assert.False(t, balances.UserLP.Exists)
}

func TestPoolStats(t *testing.T) {
	client := new(blockchaintest.MockClient)
	cfg := GetDefaultConfig()
	mintA := solana.NewWallet().PublicKey()
	mintB := solana.NewWallet().PublicKey()
	addrs, err := cfg.DerivePoolAddresses(mintA, mintB)
	require.NoError(t, err)

	pool := randomPool()
	pool.MintA, pool.MintB = mintA, mintB
	client.On("GetAccountInfo", mock.Anything, addrs.Pool).Return(blockchaintest.Account(cfg.AMMProgramID, poolBytes(pool, true)), nil)
	client.On("GetTokenAccountBalance", mock.Anything, addrs.VaultA).Return(tokenAmount("1000000", 6), nil)
	client.On("GetTokenAccountBalance", mock.Anything, addrs.VaultB).Return(tokenAmount("4000000", 6), nil)

	r := NewReader(client, cfg, zaptest.NewLogger(t))
	stats, err := r.PoolStats(context.Background(), mintA, mintB)

	require.NoError(t, err)
	assert.Equal(t, addrs.Pool, stats.Address)
	assert.Equal(t, pool.TotalLiquidity, stats.TotalLiquidity)
	assert.True(t, stats.PriceAInB.Equal(decimal.NewFromInt(4)))
}

func TestTradeCounterDecodeError(t *testing.T) {
	client := new(blockchaintest.MockClient)
	mint := solana.NewWallet().PublicKey()
	counter, _ := DeriveMintTradeCounter(CounterHookProgramID, mint)
	client.On("GetAccountInfo", mock.Anything, counter.Address).
		Return(blockchaintest.Account(CounterHookProgramID, []byte{1, 2, 3}), nil)

	r := NewReader(client, nil, zaptest.NewLogger(t))
	_, err := r.TradeCounter(context.Background(), mint)

	assert.True(t, errors.Is(err, apperrors.ErrDecode))
}

func TestTransactionLogsFiltered(t *testing.T) {
	client := new(blockchaintest.MockClient)
	sig := solana.Signature{1}
	client.On("GetTransaction", mock.Anything, sig).Return(&rpc.GetTransactionResult{Meta: &rpc.TransactionMeta{
		LogMessages: []string{
			"Program " + AMMProgramID.String() + " invoke [1]",
			"Program log: Instruction: DepositLiquidity",
			"Program " + Token2022ProgramID.String() + " invoke [2]",
			"Program " + Token2022ProgramID.String() + " success",
			"Program " + AMMProgramID.String() + " success",
		},
	}}, nil)

	r := NewReader(client, nil, zaptest.NewLogger(t))
	all, err := r.TransactionLogs(context.Background(), sig, solana.PublicKey{})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	amm, err := r.TransactionLogs(context.Background(), sig, AMMProgramID)
	require.NoError(t, err)
	assert.NotEmpty(t, amm)
	for _, l := range amm {
		assert.NotContains(t, l, Token2022ProgramID.String())
	}
}

package hookamm

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
)

func TestDerivePoolAuthorityDeterministic(t *testing.T) {
	prog := solana.NewWallet().PublicKey()
	amm := solana.NewWallet().PublicKey()
	mintA := solana.NewWallet().PublicKey()
	mintB := solana.NewWallet().PublicKey()

	first, err := DerivePoolAuthority(prog, amm, mintA, mintB)
	require.NoError(t, err)
	second, err := DerivePoolAuthority(prog, amm, mintA, mintB)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	addr, bump, err := solana.FindProgramAddress(
		[][]byte{amm[:], mintA[:], mintB[:], []byte("pool_authority")}, prog)
	require.NoError(t, err)
	assert.Equal(t, addr, first.Address)
	assert.Equal(t, bump, first.Bump)
}

func TestDeriveSeedOrderMatters(t *testing.T) {
	prog := solana.NewWallet().PublicKey()
	mintA := solana.NewWallet().PublicKey()
	mintB := solana.NewWallet().PublicKey()

	ab, err := DeriveAMM(prog, mintA, mintB)
	require.NoError(t, err)
	ba, err := DeriveAMM(prog, mintB, mintA)
	require.NoError(t, err)

	assert.NotEqual(t, ab.Address, ba.Address)
}

func TestFindProgramAddressRejectsLongSeed(t *testing.T) {
	_, err := FindProgramAddress([][]byte{[]byte("ok"), bytes.Repeat([]byte{1}, 33)}, AMMProgramID)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidSeed))
	assert.Contains(t, err.Error(), "seed 1 is 33 bytes")
}

func TestFindProgramAddressRejectsTooManySeeds(t *testing.T) {
	seeds := make([][]byte, 17)
	for i := range seeds {
		seeds[i] = []byte{byte(i)}
	}
	_, err := FindProgramAddress(seeds, AMMProgramID)

	assert.Equal(t, apperrors.KindInvalidSeed, apperrors.KindOf(err))
}

func TestDeriveAssociatedTokenAccountMatchesLibrary(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	pda, err := DeriveAssociatedTokenAccount(owner, mint, Token2022ProgramID, AssociatedTokenProgramID)
	require.NoError(t, err)

	expected, _, err := solana.FindProgramAddress(
		[][]byte{owner[:], Token2022ProgramID[:], mint[:]}, AssociatedTokenProgramID)
	require.NoError(t, err)
	assert.Equal(t, expected, pda.Address)
}

func TestDerivePoolAddresses(t *testing.T) {
	cfg := GetDefaultConfig()
	mintA := solana.NewWallet().PublicKey()
	mintB := solana.NewWallet().PublicKey()

	addrs, err := cfg.DerivePoolAddresses(mintA, mintB)
	require.NoError(t, err)

	amm, _ := DeriveAMM(cfg.AMMProgramID, mintA, mintB)
	pool, _ := DerivePool(cfg.AMMProgramID, amm.Address, mintA, mintB)
	vaultA, _ := cfg.ATA(addrs.PoolAuthority.Address, mintA)

	assert.Equal(t, amm.Address, addrs.AMM)
	assert.Equal(t, pool.Address, addrs.Pool)

	// authority выводится от AMM: [amm, mintA, mintB, "pool_authority"].
	authority, bump, err := solana.FindProgramAddress(
		[][]byte{amm.Address[:], mintA[:], mintB[:], []byte("pool_authority")}, cfg.AMMProgramID)
	require.NoError(t, err)
	assert.Equal(t, authority, addrs.PoolAuthority.Address)
	assert.Equal(t, bump, addrs.PoolAuthority.Bump)

	poolBased, _, err := solana.FindProgramAddress(
		[][]byte{pool.Address[:], mintA[:], mintB[:], []byte("pool_authority")}, cfg.AMMProgramID)
	require.NoError(t, err)
	assert.NotEqual(t, poolBased, addrs.PoolAuthority.Address)
	assert.Equal(t, vaultA, addrs.VaultA)
	assert.NotEqual(t, addrs.VaultA, addrs.VaultB)
}

func TestDeriveHookAccounts(t *testing.T) {
	mint := solana.NewWallet().PublicKey()

	hook, err := DeriveHookAccounts(CounterHookProgramID, mint)
	require.NoError(t, err)

	counter, _ := DeriveMintTradeCounter(CounterHookProgramID, mint)
	metas, _ := DeriveExtraAccountMetaList(CounterHookProgramID, mint)
	assert.Equal(t, counter.Address, hook.TradeCounter)
	assert.Equal(t, metas.Address, hook.ExtraAccountMetas)
	assert.Equal(t, CounterHookProgramID, hook.Program)
}

package hookamm

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
)

func poolBytes(p Pool, withBump bool) []byte {
	data := append([]byte{}, PoolDiscriminator[:]...)
	for _, k := range []solana.PublicKey{p.AMM, p.MintA, p.MintB, p.VaultA, p.VaultB, p.LPMint} {
		data = append(data, k[:]...)
	}
	data = binary.LittleEndian.AppendUint64(data, p.TotalLiquidity)
	if withBump {
		data = append(data, p.PoolAuthorityBump)
	}
	return data
}

func randomPool() Pool {
	return Pool{
		AMM:               solana.NewWallet().PublicKey(),
		MintA:             solana.NewWallet().PublicKey(),
		MintB:             solana.NewWallet().PublicKey(),
		VaultA:            solana.NewWallet().PublicKey(),
		VaultB:            solana.NewWallet().PublicKey(),
		LPMint:            solana.NewWallet().PublicKey(),
		TotalLiquidity:    999_000,
		PoolAuthorityBump: 253,
	}
}

func TestParsePool(t *testing.T) {
	want := randomPool()

	got, err := ParsePool(poolBytes(want, true))
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestParsePoolWithoutBump(t *testing.T) {
	want := randomPool()

	got, err := ParsePool(poolBytes(want, false))
	require.NoError(t, err)
	assert.Equal(t, want.LPMint, got.LPMint)
	assert.Equal(t, uint8(0), got.PoolAuthorityBump)
}

func TestParsePoolErrors(t *testing.T) {
	good := poolBytes(randomPool(), true)

	_, err := ParsePool(good[:50])
	assert.Equal(t, apperrors.KindDecode, apperrors.KindOf(err))

	bad := append([]byte{}, good...)
	bad[0] ^= 0xff
	_, err = ParsePool(bad)
	assert.Equal(t, apperrors.KindDecode, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "discriminator")
}

func TestParseAmm(t *testing.T) {
	admin := solana.NewWallet().PublicKey()
	collector := solana.NewWallet().PublicKey()

	data := append([]byte{}, AmmDiscriminator[:]...)
	poolID := make([]byte, 64)
	poolID[0] = 7
	data = append(data, poolID...)
	data = append(data, admin[:]...)
	data = binary.LittleEndian.AppendUint64(data, 10_000_000)
	data = append(data, collector[:]...)
	data = append(data, 1, 0)

	amm, err := ParseAmm(data)
	require.NoError(t, err)
	assert.Equal(t, admin, amm.Admin)
	assert.Equal(t, collector, amm.SolFeeCollector)
	assert.Equal(t, uint64(10_000_000), amm.SolFee)
	assert.Equal(t, byte(7), amm.PoolID[0])
	assert.True(t, amm.Created)
	assert.False(t, amm.IsImmutable)
}

func TestParseMintTradeCounterShort(t *testing.T) {
	_, err := ParseMintTradeCounter(make([]byte, 50))
	assert.Equal(t, apperrors.KindDecode, apperrors.KindOf(err))
}

func TestParseMintTradeCounterIgnoresPadding(t *testing.T) {
	c := MintTradeCounter{Mint: solana.NewWallet().PublicKey(), IncomingTransfers: 1, LastUpdated: 5}
	buf, err := c.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, buf, tradeCounterSize)

	got, err := ParseMintTradeCounter(append(buf, make([]byte, 24)...))
	require.NoError(t, err)
	assert.Equal(t, c, *got)
	assert.Equal(t, int64(5), got.LastUpdatedTime().Unix())
}

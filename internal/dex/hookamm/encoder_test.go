package hookamm

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
)

func TestDiscriminatorTable(t *testing.T) {
	for op, disc := range discriminators {
		assert.Equal(t, CalculateDiscriminator(string(op)), disc, "operation %s", op)
	}
}

func TestDiscriminatorUnknown(t *testing.T) {
	_, err := Discriminator("close_pool")
	assert.Equal(t, apperrors.KindEncoding, apperrors.KindOf(err))
}

func TestEncodeDepositLiquidity(t *testing.T) {
	data, err := EncodeDepositLiquidity(DepositLiquidityArgs{AmountA: 1_000_000_000, AmountB: 1_000_000_000})
	require.NoError(t, err)

	require.Len(t, data, 24)
	disc := discriminators[OpDepositLiquidity]
	assert.Equal(t, disc[:], data[:8])
	assert.Equal(t, uint64(1_000_000_000), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, uint64(1_000_000_000), binary.LittleEndian.Uint64(data[16:24]))
}

func TestEncodeSwap(t *testing.T) {
	data, err := EncodeSwap(SwapArgs{SwapA: true, InputAmount: 500, MinOutputAmount: 7})
	require.NoError(t, err)

	require.Len(t, data, 8+1+8+8)
	assert.Equal(t, byte(1), data[8])
	assert.Equal(t, uint64(500), binary.LittleEndian.Uint64(data[9:17]))
	assert.Equal(t, uint64(7), binary.LittleEndian.Uint64(data[17:25]))

	data, err = EncodeSwap(SwapArgs{SwapA: false, InputAmount: 1})
	require.NoError(t, err)
	assert.Equal(t, byte(0), data[8])
}

func TestEncodeCreateTokenWithHookStrings(t *testing.T) {
	data, err := EncodeCreateTokenWithHook(CreateTokenWithHookArgs{Name: "Fish", Symbol: "FSH", URI: ""})
	require.NoError(t, err)

	disc := discriminators[OpCreateTokenWithHook]
	expected := append([]byte{}, disc[:]...)
	expected = append(expected, 4, 0, 0, 0, 'F', 'i', 's', 'h')
	expected = append(expected, 3, 0, 0, 0, 'F', 'S', 'H')
	expected = append(expected, 0, 0, 0, 0)
	assert.Equal(t, expected, data)
}

func TestEncodeCreateTokenWithHookRejectsInvalidUTF8(t *testing.T) {
	_, err := EncodeCreateTokenWithHook(CreateTokenWithHookArgs{Name: string([]byte{0xff, 0xfe}), Symbol: "X"})
	assert.Equal(t, apperrors.KindEncoding, apperrors.KindOf(err))
}

func TestEncodeCreateAmmLayout(t *testing.T) {
	mintA := solana.NewWallet().PublicKey()
	mintB := solana.NewWallet().PublicKey()
	collector := solana.NewWallet().PublicKey()

	data, err := EncodeCreateAmm(CreateAmmArgs{MintA: mintA, MintB: mintB, SolFee: 10_000_000, SolFeeCollector: collector})
	require.NoError(t, err)

	require.Len(t, data, 8+32+32+8+32)
	assert.Equal(t, mintA[:], data[8:40])
	assert.Equal(t, mintB[:], data[40:72])
	assert.Equal(t, uint64(10_000_000), binary.LittleEndian.Uint64(data[72:80]))
	assert.Equal(t, collector[:], data[80:112])
}

func TestEncodeNoArgs(t *testing.T) {
	for _, enc := range []func() ([]byte, error){
		EncodeCreatePool, EncodeCreateTokenAccounts, EncodeInitializeExtraAccountMetaList, EncodeInitializeMintTradeCounter,
	} {
		data, err := enc()
		require.NoError(t, err)
		assert.Len(t, data, 8)
	}
}

func TestTradeCounterUpdateRoundTrip(t *testing.T) {
	args := UpdateMintTradeCounterArgs{
		Amount:           42_000_000,
		SourceOwner:      solana.NewWallet().PublicKey(),
		DestinationOwner: solana.NewWallet().PublicKey(),
	}
	data, err := EncodeUpdateMintTradeCounter(args)
	require.NoError(t, err)
	require.Len(t, data, 8+8+32+32)

	var decoded UpdateMintTradeCounterArgs
	require.NoError(t, DecodeArgs(OpUpdateMintTradeCounter, data, &decoded))
	assert.Equal(t, args, decoded)

	// счётчик после такого перевода, собранный как буфер аккаунта
	counter := MintTradeCounter{
		Mint:                solana.NewWallet().PublicKey(),
		IncomingTransfers:   3,
		OutgoingTransfers:   5,
		TotalIncomingVolume: 3 * decoded.Amount,
		TotalOutgoingVolume: 5 * decoded.Amount,
		LastUpdated:         1_718_000_000,
		HookOwner:           decoded.SourceOwner,
	}
	buf, err := counter.MarshalBinary()
	require.NoError(t, err)

	parsed, err := ParseMintTradeCounter(buf)
	require.NoError(t, err)
	assert.Equal(t, counter, *parsed)
}

func TestDecodeArgsRejectsForeignDiscriminator(t *testing.T) {
	data, err := EncodeMintTokens(MintTokensArgs{Amount: 1})
	require.NoError(t, err)

	var out DepositLiquidityArgs
	err = DecodeArgs(OpDepositLiquidity, data, &out)
	assert.Equal(t, apperrors.KindDecode, apperrors.KindOf(err))
}

// =============================
// File: internal/dex/hookamm/types.go
// =============================
package hookamm

import (
	"bytes"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
	"github.com/shopspring/decimal"

	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
)

// Account discriminators
var (
	PoolDiscriminator = [8]byte{241, 154, 109, 4, 17, 177, 109, 188}
	AmmDiscriminator  = [8]byte{143, 245, 200, 17, 74, 214, 196, 135}
)

const (
	poolBodySize     = 6*32 + 8
	ammBodySize      = 64 + 32 + 8 + 32 + 1 + 1
	tradeCounterSize = 32 + 5*8 + 32
)

// Pool – запись пула AMM.
type Pool struct {
	AMM            solana.PublicKey
	MintA          solana.PublicKey
	MintB          solana.PublicKey
	VaultA         solana.PublicKey
	VaultB         solana.PublicKey
	LPMint         solana.PublicKey
	TotalLiquidity uint64
	// PoolAuthorityBump отсутствует у пулов, созданных ранними версиями программы.
	PoolAuthorityBump uint8 `borsh_skip:"true"`
}

// Amm – запись реестра AMM для пары минтов.
type Amm struct {
	PoolID          [64]byte
	Admin           solana.PublicKey
	SolFee          uint64
	SolFeeCollector solana.PublicKey
	Created         bool
	IsImmutable     bool
}

// MintTradeCounter – счётчик переводов минта, который ведёт transfer hook.
// Хранится без дискриминатора, с нулевого смещения.
type MintTradeCounter struct {
	Mint                solana.PublicKey
	IncomingTransfers   uint64
	OutgoingTransfers   uint64
	TotalIncomingVolume uint64
	TotalOutgoingVolume uint64
	LastUpdated         int64
	HookOwner           solana.PublicKey
}

// LastUpdatedTime возвращает время последнего обновления счётчика.
func (c *MintTradeCounter) LastUpdatedTime() time.Time {
	return time.Unix(c.LastUpdated, 0)
}

// MarshalBinary сериализует счётчик в раскладке аккаунта программы.
func (c *MintTradeCounter) MarshalBinary() ([]byte, error) {
	data, err := borsh.Serialize(*c)
	if err != nil {
		return nil, apperrors.Encoding("trade counter: %v", err)
	}
	return data, nil
}

// TokenBalance – баланс токен-аккаунта. Отсутствующий аккаунт даёт нулевой баланс с Exists=false.
type TokenBalance struct {
	Account  solana.PublicKey
	Mint     solana.PublicKey
	Amount   uint64
	Decimals uint8
	UIAmount decimal.Decimal
	Exists   bool
}

// PoolBalances – балансы хранилищ пула и пользователя.
type PoolBalances struct {
	PoolA  TokenBalance
	PoolB  TokenBalance
	UserA  TokenBalance
	UserB  TokenBalance
	UserLP TokenBalance
}

// PoolStats – сводка по пулу для UI.
type PoolStats struct {
	Address        solana.PublicKey
	Pool           *Pool
	ReserveA       decimal.Decimal
	ReserveB       decimal.Decimal
	TotalLiquidity uint64
	// PriceAInB – сколько B дают за единицу A по текущим резервам.
	PriceAInB decimal.Decimal
}

// deserialize оборачивает borsh.Deserialize: паника и ошибка превращаются в DecodeError.
func deserialize(account string, out interface{}, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.Decode(account, "borsh panic: %v", r)
		}
	}()
	if err := borsh.Deserialize(out, data); err != nil {
		return apperrors.Decode(account, "%v", err)
	}
	return nil
}

func checkDiscriminator(account string, data []byte, disc [8]byte, bodySize int) error {
	if len(data) < 8+bodySize {
		return apperrors.Decode(account, "expected at least %d bytes, got %d", 8+bodySize, len(data))
	}
	if !bytes.Equal(data[:8], disc[:]) {
		return apperrors.Decode(account, "invalid discriminator %v", data[:8])
	}
	return nil
}

// ParsePool разбирает аккаунт пула (Anchor: 8 байт дискриминатора + тело).
func ParsePool(data []byte) (*Pool, error) {
	if err := checkDiscriminator("pool", data, PoolDiscriminator, poolBodySize); err != nil {
		return nil, err
	}

	pool := &Pool{}
	pos := 8
	if err := deserialize("pool", pool, data[pos:pos+poolBodySize]); err != nil {
		return nil, err
	}
	pos += poolBodySize

	if len(data) > pos {
		pool.PoolAuthorityBump = data[pos]
	}
	return pool, nil
}

// ParseAmm разбирает запись реестра AMM.
func ParseAmm(data []byte) (*Amm, error) {
	if err := checkDiscriminator("amm", data, AmmDiscriminator, ammBodySize); err != nil {
		return nil, err
	}

	amm := &Amm{}
	if err := deserialize("amm", amm, data[8:8+ammBodySize]); err != nil {
		return nil, err
	}
	return amm, nil
}

// ParseMintTradeCounter разбирает счётчик сделок. Аккаунт может быть больше значимой части.
func ParseMintTradeCounter(data []byte) (*MintTradeCounter, error) {
	if len(data) < tradeCounterSize {
		return nil, apperrors.Decode("mint trade counter", "expected at least %d bytes, got %d", tradeCounterSize, len(data))
	}

	counter := &MintTradeCounter{}
	if err := deserialize("mint trade counter", counter, data[:tradeCounterSize]); err != nil {
		return nil, err
	}
	return counter, nil
}

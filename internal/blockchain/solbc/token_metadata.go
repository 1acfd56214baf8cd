// internal/blockchain/solbc/token_metadata.go
package solbc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hookswap/internal/blockchain"
	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
	"github.com/rovshanmuradov/hookswap/internal/utils/binary"
)

const (
	metadataTTL = 5 * time.Minute

	// Размер базовой структуры Mint и смещение AccountType у аккаунтов Token-2022 с расширениями.
	mintBaseSize        = 82
	accountTypeOffset   = 165
	accountTypeMint     = 1
	extTypeTransferHook = 14
)

// TokenMetadata хранит сведения о минте, прочитанные из сети.
type TokenMetadata struct {
	Mint          solana.PublicKey
	Decimals      uint8
	Supply        uint64
	MintAuthority *solana.PublicKey
	// TransferHookProgram – программа из расширения TransferHook, nil если расширения нет.
	TransferHookProgram *solana.PublicKey
	Owner               solana.PublicKey
	UpdatedAt           time.Time
}

// TokenMetadataCache кэширует метаданные минтов с TTL.
type TokenMetadataCache struct {
	cache  sync.Map
	logger *zap.Logger
}

func NewTokenMetadataCache(logger *zap.Logger) *TokenMetadataCache {
	return &TokenMetadataCache{
		logger: logger.Named("token-metadata"),
	}
}

// GetTokenMetadata получает метаданные минта с кэшированием
func (c *TokenMetadataCache) GetTokenMetadata(
	ctx context.Context,
	client blockchain.NetworkReader,
	mint solana.PublicKey,
) (*TokenMetadata, error) {
	if metadata, ok := c.getFromCache(mint.String()); ok {
		return metadata, nil
	}

	acc, err := client.GetAccountInfo(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to get mint account: %w", err)
	}

	metadata, err := ParseMintAccount(mint, acc.Value.Data.GetBinary())
	if err != nil {
		return nil, err
	}
	metadata.Owner = acc.Value.Owner
	metadata.UpdatedAt = time.Now()
	c.cache.Store(mint.String(), metadata)

	c.logger.Debug("token metadata retrieved",
		zap.String("mint", mint.String()),
		zap.Uint8("decimals", metadata.Decimals),
		zap.Bool("transfer_hook", metadata.TransferHookProgram != nil))

	return metadata, nil
}

// Invalidate удаляет минт из кэша (например, после mint-tokens изменился supply).
func (c *TokenMetadataCache) Invalidate(mint solana.PublicKey) {
	c.cache.Delete(mint.String())
}

// getFromCache получает метаданные из кэша с проверкой TTL
func (c *TokenMetadataCache) getFromCache(mint string) (*TokenMetadata, bool) {
	if value, ok := c.cache.Load(mint); ok {
		metadata := value.(*TokenMetadata)
		if time.Since(metadata.UpdatedAt) < metadataTTL {
			return metadata, true
		}
		c.cache.Delete(mint)
	}
	return nil, false
}

// ParseMintAccount разбирает аккаунт минта SPL Token / Token-2022, включая TLV расширения.
func ParseMintAccount(mint solana.PublicKey, data []byte) (*TokenMetadata, error) {
	if len(data) < mintBaseSize {
		return nil, apperrors.Decode("mint "+mint.String(), "expected at least %d bytes, got %d", mintBaseSize, len(data))
	}

	r := binary.NewReader(data)
	md := &TokenMetadata{Mint: mint}

	var err error
	if md.MintAuthority, err = r.OptionalPubKey(); err != nil {
		return nil, apperrors.Decode("mint "+mint.String(), "%v", err)
	}
	if md.Supply, err = r.Uint64(); err != nil {
		return nil, apperrors.Decode("mint "+mint.String(), "%v", err)
	}
	if md.Decimals, err = r.Uint8(); err != nil {
		return nil, apperrors.Decode("mint "+mint.String(), "%v", err)
	}

	if len(data) <= accountTypeOffset {
		return md, nil
	}
	if data[accountTypeOffset] != accountTypeMint {
		return nil, apperrors.Decode("mint "+mint.String(), "account type %d is not a mint", data[accountTypeOffset])
	}

	if err := r.Seek(accountTypeOffset + 1); err != nil {
		return nil, apperrors.Decode("mint "+mint.String(), "%v", err)
	}
	for r.Remaining() >= 4 {
		extType, _ := r.Uint16()
		extLen, _ := r.Uint16()
		value, err := r.Bytes(int(extLen))
		if err != nil {
			return nil, apperrors.Decode("mint "+mint.String(), "extension %d: %v", extType, err)
		}
		if extType == 0 {
			// нулевой тип означает неиспользуемый хвост аккаунта
			break
		}
		if extType == extTypeTransferHook && len(value) >= 64 {
			program := solana.PublicKeyFromBytes(value[32:64])
			if !program.IsZero() {
				md.TransferHookProgram = &program
			}
		}
	}

	return md, nil
}

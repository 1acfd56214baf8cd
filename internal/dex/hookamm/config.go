// =============================
// File: internal/dex/hookamm/config.go
// =============================
package hookamm

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Адреса программ по умолчанию (devnet деплой).
var (
	AMMProgramID             = solana.MustPublicKeyFromBase58("H7dswT3BXcCEeVjjLWkfpBP2p5imuJy7Qaq9i5VCpoos")
	TokenSetupProgramID      = solana.MustPublicKeyFromBase58("Ba93wuicukbNB6djDoUkvMpDUxTw4Gzo3VH1oLfq9HBp")
	CounterHookProgramID     = solana.MustPublicKeyFromBase58("GwLhrTbEzTY91MphjQyA331P63yQDq31Frw5uvZ1umdQ")
	Token2022ProgramID       = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	AssociatedTokenProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	SystemProgramID          = solana.SystemProgramID
)

// Константные сиды PDA.
const (
	AMMSeed               = "amm"
	PoolAuthoritySeed     = "pool_authority"
	ExtraAccountMetasSeed = "extra-account-metas"
	MintTradeCounterSeed  = "mint-trade-counter"
)

const (
	// MaxSolFee – верхняя граница комиссии AMM в лампортах (0.1 SOL).
	MaxSolFee uint64 = 100_000_000
	// DefaultDecimals – количество знаков у минтов, создаваемых token_setup.
	DefaultDecimals uint8 = 6
	// MinBalanceLamports – минимальный баланс плательщика перед отправкой (0.01 SOL).
	MinBalanceLamports uint64 = 10_000_000
)

// Config хранит адреса программ, с которыми работает клиент.
type Config struct {
	AMMProgramID             solana.PublicKey
	TokenSetupProgramID      solana.PublicKey
	CounterHookProgramID     solana.PublicKey
	TokenProgramID           solana.PublicKey
	AssociatedTokenProgramID solana.PublicKey

	// MinBalance – порог SOL баланса плательщика для pre-flight проверки.
	MinBalance uint64
	// Decimals используется, когда у минта не удалось прочитать decimals.
	Decimals uint8
}

// GetDefaultConfig возвращает конфигурацию по умолчанию.
func GetDefaultConfig() *Config {
	return &Config{
		AMMProgramID:             AMMProgramID,
		TokenSetupProgramID:      TokenSetupProgramID,
		CounterHookProgramID:     CounterHookProgramID,
		TokenProgramID:           Token2022ProgramID,
		AssociatedTokenProgramID: AssociatedTokenProgramID,
		MinBalance:               MinBalanceLamports,
		Decimals:                 DefaultDecimals,
	}
}

// OverridePrograms заменяет адреса программ непустыми base58 значениями.
func (cfg *Config) OverridePrograms(amm, tokenSetup, counterHook string) error {
	for _, o := range []struct {
		name string
		val  string
		dst  *solana.PublicKey
	}{
		{"amm", amm, &cfg.AMMProgramID},
		{"token_setup", tokenSetup, &cfg.TokenSetupProgramID},
		{"counter_hook", counterHook, &cfg.CounterHookProgramID},
	} {
		if o.val == "" {
			continue
		}
		pk, err := solana.PublicKeyFromBase58(o.val)
		if err != nil {
			return fmt.Errorf("invalid %s program id %q: %w", o.name, o.val, err)
		}
		*o.dst = pk
	}
	return nil
}

// LogFields выводит конфигурацию в лог при старте.
func (cfg *Config) LogFields(logger *zap.Logger) {
	logger.Info("Hook AMM configuration prepared",
		zap.String("amm_program", cfg.AMMProgramID.String()),
		zap.String("token_setup_program", cfg.TokenSetupProgramID.String()),
		zap.String("counter_hook_program", cfg.CounterHookProgramID.String()),
		zap.String("token_program", cfg.TokenProgramID.String()),
		zap.Uint64("min_balance_lamports", cfg.MinBalance))
}

// =============================
// File: internal/dex/hookamm/pda.go
// =============================
package hookamm

import (
	"github.com/gagliardetto/solana-go"

	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
)

const (
	maxSeedLength = 32
	maxSeeds      = 16
)

// PDA – адрес, производный от программы, вместе с bump.
type PDA struct {
	Address solana.PublicKey
	Bump    uint8
}

// FindProgramAddress проверяет сиды и ищет PDA так же, как это делает рантайм:
// bump перебирается от 255 вниз до первого адреса вне кривой.
func FindProgramAddress(seeds [][]byte, programID solana.PublicKey) (PDA, error) {
	if len(seeds) > maxSeeds {
		return PDA{}, apperrors.New(apperrors.KindInvalidSeed, "too many seeds")
	}
	for i, seed := range seeds {
		if len(seed) > maxSeedLength {
			return PDA{}, apperrors.InvalidSeed(i, len(seed))
		}
	}

	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return PDA{}, apperrors.DerivationExhausted(err)
	}
	return PDA{Address: addr, Bump: bump}, nil
}

// DeriveAMM вычисляет запись реестра AMM: ["amm", mintA, mintB].
func DeriveAMM(programID, mintA, mintB solana.PublicKey) (PDA, error) {
	return FindProgramAddress([][]byte{[]byte(AMMSeed), mintA[:], mintB[:]}, programID)
}

// DerivePool вычисляет запись пула: [amm, mintA, mintB].
func DerivePool(programID, amm, mintA, mintB solana.PublicKey) (PDA, error) {
	return FindProgramAddress([][]byte{amm[:], mintA[:], mintB[:]}, programID)
}

// DerivePoolAuthority вычисляет authority пула: [amm, mintA, mintB, "pool_authority"].
// Первый сид – адрес AMM, не пула.
func DerivePoolAuthority(programID, amm, mintA, mintB solana.PublicKey) (PDA, error) {
	return FindProgramAddress([][]byte{amm[:], mintA[:], mintB[:], []byte(PoolAuthoritySeed)}, programID)
}

// DeriveAssociatedTokenAccount вычисляет ATA: [owner, tokenProgram, mint] под программой ATA.
func DeriveAssociatedTokenAccount(owner, mint, tokenProgram, ataProgram solana.PublicKey) (PDA, error) {
	return FindProgramAddress([][]byte{owner[:], tokenProgram[:], mint[:]}, ataProgram)
}

// DeriveExtraAccountMetaList вычисляет список доп. аккаунтов transfer hook: ["extra-account-metas", mint].
func DeriveExtraAccountMetaList(programID, mint solana.PublicKey) (PDA, error) {
	return FindProgramAddress([][]byte{[]byte(ExtraAccountMetasSeed), mint[:]}, programID)
}

// DeriveMintTradeCounter вычисляет счётчик сделок минта: ["mint-trade-counter", mint].
func DeriveMintTradeCounter(programID, mint solana.PublicKey) (PDA, error) {
	return FindProgramAddress([][]byte{[]byte(MintTradeCounterSeed), mint[:]}, programID)
}

// ATA вычисляет Token-2022 ATA с программами из конфигурации.
func (cfg *Config) ATA(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	pda, err := DeriveAssociatedTokenAccount(owner, mint, cfg.TokenProgramID, cfg.AssociatedTokenProgramID)
	return pda.Address, err
}

// PoolAddresses – полный набор адресов пула, вычисляемый из пары минтов.
type PoolAddresses struct {
	AMM           solana.PublicKey
	Pool          solana.PublicKey
	PoolAuthority PDA
	VaultA        solana.PublicKey
	VaultB        solana.PublicKey
}

// DerivePoolAddresses вычисляет AMM, пул, authority и хранилища пула для пары минтов.
func (cfg *Config) DerivePoolAddresses(mintA, mintB solana.PublicKey) (*PoolAddresses, error) {
	amm, err := DeriveAMM(cfg.AMMProgramID, mintA, mintB)
	if err != nil {
		return nil, err
	}
	pool, err := DerivePool(cfg.AMMProgramID, amm.Address, mintA, mintB)
	if err != nil {
		return nil, err
	}
	authority, err := DerivePoolAuthority(cfg.AMMProgramID, amm.Address, mintA, mintB)
	if err != nil {
		return nil, err
	}
	vaultA, err := cfg.ATA(authority.Address, mintA)
	if err != nil {
		return nil, err
	}
	vaultB, err := cfg.ATA(authority.Address, mintB)
	if err != nil {
		return nil, err
	}
	return &PoolAddresses{
		AMM:           amm.Address,
		Pool:          pool.Address,
		PoolAuthority: authority,
		VaultA:        vaultA,
		VaultB:        vaultB,
	}, nil
}

// HookAccounts – аккаунты transfer hook одного минта.
type HookAccounts struct {
	Program           solana.PublicKey
	ExtraAccountMetas solana.PublicKey
	TradeCounter      solana.PublicKey
}

// DeriveHookAccounts вычисляет аккаунты hook под программой hookProgram.
func DeriveHookAccounts(hookProgram, mint solana.PublicKey) (HookAccounts, error) {
	metas, err := DeriveExtraAccountMetaList(hookProgram, mint)
	if err != nil {
		return HookAccounts{}, err
	}
	counter, err := DeriveMintTradeCounter(hookProgram, mint)
	if err != nil {
		return HookAccounts{}, err
	}
	return HookAccounts{
		Program:           hookProgram,
		ExtraAccountMetas: metas.Address,
		TradeCounter:      counter.Address,
	}, nil
}

package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/hookswap/internal/app"
	"github.com/rovshanmuradov/hookswap/internal/dex/hookamm"
	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
)

func parseKey(name, value string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, apperrors.Wrap(apperrors.KindInvalidInput, err, fmt.Sprintf("invalid %s %q", name, value))
	}
	return pk, nil
}

func parsePair(args []string) (solana.PublicKey, solana.PublicKey, error) {
	mintA, err := parseKey("mint A", args[0])
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	mintB, err := parseKey("mint B", args[1])
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	return mintA, mintB, nil
}

// optionalKey разбирает необязательный флаг с адресом; пустая строка – нулевой ключ.
func optionalKey(name, value string) (solana.PublicKey, error) {
	if value == "" {
		return solana.PublicKey{}, nil
	}
	return parseKey(name, value)
}

// parseTokenAmount переводит десятичную строку в базовые единицы по decimals минта.
func parseTokenAmount(ctx context.Context, a *app.App, mint solana.PublicKey, input string) (uint64, error) {
	decimals := a.DEX.Reader().MintDecimals(ctx, mint)
	return hookamm.ParseAmount(input, decimals)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// =============================
// File: internal/dex/hookamm/amount.go
// =============================
package hookamm

import (
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/rovshanmuradov/hookswap/internal/errors"
)

var maxU64 = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)

// ToBaseUnits переводит человеческую сумму в сырые единицы минта (u64).
// Отрицательные значения, лишние знаки после запятой и переполнение u64 дают EncodingError.
func ToBaseUnits(amount decimal.Decimal, decimals uint8) (uint64, error) {
	if amount.IsNegative() {
		return 0, apperrors.Encoding("amount %s is negative", amount)
	}
	scaled := amount.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, apperrors.Encoding("amount %s has more than %d decimal places", amount, decimals)
	}
	if scaled.GreaterThan(maxU64) {
		return 0, apperrors.Encoding("amount %s overflows u64 at %d decimals", amount, decimals)
	}
	return scaled.BigInt().Uint64(), nil
}

// FromBaseUnits переводит сырые единицы в десятичное число.
func FromBaseUnits(raw uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), -int32(decimals))
}

// ParseAmount разбирает пользовательский ввод ("1000", "0.5") в сырые единицы.
// Непарсируемая строка и неположительная сумма дают InvalidInputError.
func ParseAmount(input string, decimals uint8) (uint64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(input), "_", "")
	if s == "" {
		return 0, apperrors.InvalidInput("amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, apperrors.InvalidInput("amount %q is not a number", input)
	}
	if !d.IsPositive() {
		return 0, apperrors.InvalidInput("amount must be positive, got %s", d)
	}
	return ToBaseUnits(d, decimals)
}

// ParseSOL разбирает сумму в SOL и возвращает лампорты.
func ParseSOL(input string) (uint64, error) {
	return ParseAmount(input, 9)
}

// FormatSOL форматирует лампорты как SOL.
func FormatSOL(lamports uint64) string {
	return FromBaseUnits(lamports, 9).String()
}

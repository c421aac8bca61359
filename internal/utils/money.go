package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SantaVM/bank-rest/internal/apperrors"
)

// Money conversions work on exact integer minor units (cents). Amounts never
// pass through a floating type; the decimal side is a string with exactly
// two fractional digits.

// ToMinorUnits converts a decimal amount like "1234.56" into minor units
// (123456). Any other scale is rejected with an InvalidAmount error.
func ToMinorUnits(amount string) (int64, error) {
	whole, frac, ok := strings.Cut(amount, ".")
	if !ok || len(frac) != 2 {
		return 0, apperrors.Newf(apperrors.KindInvalidAmount,
			"amount must have exactly two decimal places: %q", amount)
	}

	negative := false
	if strings.HasPrefix(whole, "-") {
		negative = true
		whole = whole[1:]
	}
	if whole == "" || !isDigits(whole) || !isDigits(frac) {
		return 0, apperrors.Newf(apperrors.KindInvalidAmount, "malformed amount: %q", amount)
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.KindInvalidAmount,
			fmt.Sprintf("malformed amount: %q", amount), err)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.KindInvalidAmount,
			fmt.Sprintf("malformed amount: %q", amount), err)
	}

	minor := units*100 + cents
	if minor/100 != units {
		return 0, apperrors.Newf(apperrors.KindInvalidAmount, "amount out of range: %q", amount)
	}
	if negative {
		minor = -minor
	}
	return minor, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ToPositiveMinorUnits is ToMinorUnits with a strict positivity check, used
// for transfer amounts.
func ToPositiveMinorUnits(amount string) (int64, error) {
	minor, err := ToMinorUnits(amount)
	if err != nil {
		return 0, err
	}
	if minor <= 0 {
		return 0, apperrors.Newf(apperrors.KindInvalidAmount,
			"amount must be positive: %q", amount)
	}
	return minor, nil
}

// FromMinorUnits renders minor units as a decimal string with exactly two
// fractional digits. The conversion is exact by construction.
func FromMinorUnits(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

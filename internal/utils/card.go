package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/SantaVM/bank-rest/internal/apperrors"
)

const cardNumberLength = 16

// ExpiryLayout is the display format for card expiry dates.
const ExpiryLayout = "01/06"

// GenerateCardNumber generates a Luhn-valid 16-digit card number starting
// with the given bank identifier prefix. The random source is deliberately
// non-cryptographic: generated numbers are test/demo data, not secrets.
func GenerateCardNumber(prefix string) (string, error) {
	if len(prefix) == 0 || len(prefix) >= cardNumberLength {
		return "", fmt.Errorf("invalid bank prefix length: %d", len(prefix))
	}
	for _, r := range prefix {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("bank prefix must be numeric, got %q", prefix)
		}
	}

	var builder strings.Builder
	builder.WriteString(prefix)
	for builder.Len() < cardNumberLength-1 {
		builder.WriteByte(byte('0' + rand.Intn(10)))
	}

	number := builder.String()
	return number + string(byte('0'+LuhnCheckDigit(number))), nil
}

// LuhnCheckDigit computes the Luhn check digit for a digit string. Starting
// from the rightmost digit, every digit at an even distance from the end is
// doubled, with 9 subtracted from results over 9.
func LuhnCheckDigit(number string) int {
	sum := 0
	for i := 0; i < len(number); i++ {
		digit := int(number[len(number)-1-i] - '0')
		if i%2 == 0 {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
	}
	return (10 - sum%10) % 10
}

// ValidateCardNumber checks that number is exactly 16 digits and its last
// digit matches the Luhn checksum of the first 15. This only catches
// transcription errors; it is not a proof of issuance.
func ValidateCardNumber(number string) error {
	if len(number) != cardNumberLength {
		return apperrors.Newf(apperrors.KindInvalidCardNumber,
			"card number must be %d digits", cardNumberLength)
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			return apperrors.New(apperrors.KindInvalidCardNumber,
				"card number must contain only digits")
		}
	}
	if int(number[cardNumberLength-1]-'0') != LuhnCheckDigit(number[:cardNumberLength-1]) {
		return apperrors.New(apperrors.KindInvalidCardNumber,
			"card number failed checksum validation")
	}
	return nil
}

// MaskCardNumber returns the display form of a card number, keeping only the
// last four digits. Values of four characters or fewer (CVV-like secrets)
// are masked entirely. One-way display transform only.
func MaskCardNumber(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return "**** **** **** " + value[len(value)-4:]
}

// ParseExpiryDate converts an "MM/yy" string into the last valid day of that
// month ("12/29" becomes 2029-12-31).
func ParseExpiryDate(value string) (time.Time, error) {
	t, err := time.Parse(ExpiryLayout, value)
	if err != nil {
		return time.Time{}, apperrors.Wrap(apperrors.KindValidation,
			"expiry date must be in MM/yy format", err)
	}
	// First day of the following month minus one day.
	return t.AddDate(0, 1, -1), nil
}

// FormatExpiryDate renders a stored expiry date back to "MM/yy".
func FormatExpiryDate(t time.Time) string {
	return t.Format(ExpiryLayout)
}

// ExpiryPassed reports whether expiry lies in a month before now's month.
// The comparison is month-granular: a card stays valid through the whole of
// the last day of its expiry month.
func ExpiryPassed(expiry, now time.Time) bool {
	if expiry.Year() != now.Year() {
		return expiry.Year() < now.Year()
	}
	return expiry.Month() < now.Month()
}

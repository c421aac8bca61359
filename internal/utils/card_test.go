package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/SantaVM/bank-rest/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCardNumber(t *testing.T) {
	for i := 0; i < 1000; i++ {
		number, err := GenerateCardNumber("400000")
		require.NoError(t, err)
		require.Len(t, number, 16)
		assert.True(t, strings.HasPrefix(number, "400000"))
		assert.NoError(t, ValidateCardNumber(number))
	}
}

func TestGenerateCardNumber_BadPrefix(t *testing.T) {
	_, err := GenerateCardNumber("")
	assert.Error(t, err)

	_, err = GenerateCardNumber("4000006806224829")
	assert.Error(t, err)

	_, err = GenerateCardNumber("40a000")
	assert.Error(t, err)
}

func TestLuhnCheckDigit(t *testing.T) {
	// 4000006806224829 is a valid number: check digit over the first 15
	// digits must equal the last digit.
	assert.Equal(t, 9, LuhnCheckDigit("400000680622482"))

	// Appending the computed digit always yields a number that validates.
	prefixes := []string{"400000123456789", "510510510510510", "371449635398431", "000000000000000"}
	for _, prefix := range prefixes {
		digit := LuhnCheckDigit(prefix)
		full := prefix + string(byte('0'+digit))
		assert.NoError(t, ValidateCardNumber(full), full)
	}
}

func TestValidateCardNumber(t *testing.T) {
	tests := []struct {
		name   string
		number string
		valid  bool
	}{
		{"valid visa test number", "4000006806224829", true},
		{"wrong check digit", "4000006806224821", false},
		{"too short", "400000680622482", false},
		{"too long", "40000068062248290", false},
		{"non numeric", "400000680622482x", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCardNumber(tt.number)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, apperrors.KindInvalidCardNumber, apperrors.KindOf(err))
			}
		})
	}
}

func TestMaskCardNumber(t *testing.T) {
	assert.Equal(t, "**** **** **** 4829", MaskCardNumber("4000006806224829"))
	assert.Equal(t, "***", MaskCardNumber("123"))
	assert.Equal(t, "****", MaskCardNumber("1234"))
	assert.Equal(t, "", MaskCardNumber(""))
}

func TestParseExpiryDate(t *testing.T) {
	expiry, err := ParseExpiryDate("12/29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2029, time.December, 31, 0, 0, 0, 0, time.UTC), expiry)

	expiry, err = ParseExpiryDate("02/28")
	require.NoError(t, err)
	assert.Equal(t, 29, expiry.Day()) // 2028 is a leap year

	for _, bad := range []string{"13/29", "00/29", "1229", "12-29", "12/2029", ""} {
		_, err := ParseExpiryDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestExpiryPassed(t *testing.T) {
	// Mid-morning on the last day of the expiry month: the card is still valid.
	now := time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		expiry string
		passed bool
	}{
		{"08/26", false}, // current month, last valid day
		{"09/26", false},
		{"01/27", false},
		{"07/26", true},
		{"12/25", true},
	}
	for _, tc := range tests {
		expiry, err := ParseExpiryDate(tc.expiry)
		require.NoError(t, err)
		assert.Equal(t, tc.passed, ExpiryPassed(expiry, now), tc.expiry)
	}

	// The whole last day counts, right up to midnight.
	expiry, err := ParseExpiryDate("08/26")
	require.NoError(t, err)
	lastMoment := time.Date(2026, time.August, 31, 23, 59, 59, 0, time.UTC)
	assert.False(t, ExpiryPassed(expiry, lastMoment))
	assert.True(t, ExpiryPassed(expiry, lastMoment.Add(time.Second)))
}

func TestFormatExpiryDate(t *testing.T) {
	date := time.Date(2029, time.December, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "12/29", FormatExpiryDate(date))

	// Parse/format round trip
	parsed, err := ParseExpiryDate("05/27")
	require.NoError(t, err)
	assert.Equal(t, "05/27", FormatExpiryDate(parsed))
}

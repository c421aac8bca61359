package utils

import (
	"testing"

	"github.com/SantaVM/bank-rest/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount string
		minor  int64
	}{
		{"1234.56", 123456},
		{"0.00", 0},
		{"0.05", 5},
		{"100.00", 10000},
		{"-12.34", -1234},
		{"9223372036854775.80", 922337203685477580},
	}
	for _, tt := range tests {
		minor, err := ToMinorUnits(tt.amount)
		require.NoError(t, err, tt.amount)
		assert.Equal(t, tt.minor, minor, tt.amount)
	}
}

func TestToMinorUnits_RejectsWrongScale(t *testing.T) {
	for _, bad := range []string{"100", "100.5", "100.555", "100.", ".50", "", "abc", "10.ab", "10.-1", "1 0.00", "1,000.00"} {
		_, err := ToMinorUnits(bad)
		require.Error(t, err, bad)
		assert.Equal(t, apperrors.KindInvalidAmount, apperrors.KindOf(err), bad)
	}
}

func TestToPositiveMinorUnits(t *testing.T) {
	minor, err := ToPositiveMinorUnits("20.00")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), minor)

	for _, bad := range []string{"0.00", "-1.00"} {
		_, err := ToPositiveMinorUnits(bad)
		require.Error(t, err, bad)
		assert.Equal(t, apperrors.KindInvalidAmount, apperrors.KindOf(err), bad)
	}
}

func TestFromMinorUnits(t *testing.T) {
	assert.Equal(t, "1234.56", FromMinorUnits(123456))
	assert.Equal(t, "0.00", FromMinorUnits(0))
	assert.Equal(t, "0.05", FromMinorUnits(5))
	assert.Equal(t, "0.50", FromMinorUnits(50))
	assert.Equal(t, "-12.34", FromMinorUnits(-1234))
}

// Round-trip law: any valid two-decimal input survives the conversion
// unchanged.
func TestMoneyRoundTrip(t *testing.T) {
	for _, amount := range []string{"0.00", "0.01", "0.99", "1.00", "100.00", "1234.56", "99999999.99"} {
		minor, err := ToMinorUnits(amount)
		require.NoError(t, err)
		assert.Equal(t, amount, FromMinorUnits(minor))
	}
}

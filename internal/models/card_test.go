package models

import (
	"testing"

	"github.com/SantaVM/bank-rest/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardStatus_CanTransitionTo(t *testing.T) {
	// The full edge table: everything not listed as allowed must be
	// rejected, including self-transitions.
	allowed := map[[2]CardStatus]bool{
		{StatusActive, StatusBlocked}:  true,
		{StatusActive, StatusExpired}:  true,
		{StatusBlocked, StatusActive}:  true,
		{StatusBlocked, StatusExpired}: true,
	}

	all := []CardStatus{StatusActive, StatusBlocked, StatusExpired}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]CardStatus{from, to}], from.CanTransitionTo(to),
				"%s -> %s", from, to)
		}
	}
}

func TestCard_ChangeStatus(t *testing.T) {
	card := &Card{Status: StatusActive}

	require.NoError(t, card.ChangeStatus(StatusBlocked))
	assert.Equal(t, StatusBlocked, card.Status)

	require.NoError(t, card.ChangeStatus(StatusActive))
	require.NoError(t, card.ChangeStatus(StatusExpired))
	assert.Equal(t, StatusExpired, card.Status)
}

func TestCard_ChangeStatus_ExpiredIsTerminal(t *testing.T) {
	for _, next := range []CardStatus{StatusActive, StatusBlocked} {
		card := &Card{Status: StatusExpired}
		err := card.ChangeStatus(next)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindBusinessRule, apperrors.KindOf(err))
		assert.Equal(t, StatusExpired, card.Status, "status must not change on a rejected transition")
	}
}

func TestParseCardStatus(t *testing.T) {
	status, err := ParseCardStatus("ACTIVE")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, status)

	for _, bad := range []string{"active", "DELETED", ""} {
		_, err := ParseCardStatus(bad)
		require.Error(t, err, bad)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("ADMIN")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, err = ParseRole("ROOT")
	assert.Error(t, err)
}

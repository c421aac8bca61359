package models

import (
	"time"

	"github.com/SantaVM/bank-rest/internal/apperrors"
)

// CardStatus is the lifecycle state of a card.
type CardStatus string

const (
	StatusActive  CardStatus = "ACTIVE"
	StatusBlocked CardStatus = "BLOCKED"
	StatusExpired CardStatus = "EXPIRED"
)

// statusTransitions is the full legality table for status changes. EXPIRED is
// terminal and has no outgoing edges.
var statusTransitions = map[CardStatus][]CardStatus{
	StatusActive:  {StatusBlocked, StatusExpired},
	StatusBlocked: {StatusActive, StatusExpired},
	StatusExpired: {},
}

// ParseCardStatus converts an external string into a CardStatus.
func ParseCardStatus(s string) (CardStatus, error) {
	switch CardStatus(s) {
	case StatusActive, StatusBlocked, StatusExpired:
		return CardStatus(s), nil
	}
	return "", apperrors.Newf(apperrors.KindValidation, "unknown card status: %q", s)
}

// CanTransitionTo reports whether the edge from s to next is in the table.
func (s CardStatus) CanTransitionTo(next CardStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Card represents a bank card. CardNumber always holds the encrypted form;
// the plaintext exists only transiently during creation and display mapping.
type Card struct {
	ID         int64
	CardHolder string
	CardNumber string
	ExpiryDate time.Time // last valid day of the expiry month
	Status     CardStatus
	ToBlock    bool
	Balance    int64 // minor units, never negative in a committed state
	UserID     int64
}

// ChangeStatus applies the status machine. Callers must hold the card row
// lock when the change is combined with balance-affecting operations.
func (c *Card) ChangeStatus(next CardStatus) error {
	if !c.Status.CanTransitionTo(next) {
		return apperrors.Newf(apperrors.KindBusinessRule,
			"cannot change status from %s to %s", c.Status, next)
	}
	c.Status = next
	return nil
}

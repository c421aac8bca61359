package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/SantaVM/bank-rest/internal/apperrors"
	"github.com/SantaVM/bank-rest/internal/models"
	"github.com/SantaVM/bank-rest/internal/repository"
	"github.com/SantaVM/bank-rest/internal/utils"
)

// CardView is the presentation form of a card: number decrypted and masked,
// balance as a two-decimal string, expiry as MM/yy. Raw ciphertext or an
// unmasked number never reaches a display path.
type CardView struct {
	ID         int64             `json:"id"`
	CardHolder string            `json:"cardHolder"`
	CardNumber string            `json:"cardNumber"`
	ExpiryDate string            `json:"expiryDate"`
	Status     models.CardStatus `json:"status"`
	ToBlock    bool              `json:"toBlock"`
	Balance    string            `json:"balance"`
	UserID     int64             `json:"userId"`
}

func (s *Service) toView(card *models.Card) (*CardView, error) {
	number, err := s.crypto.Decrypt(card.CardNumber)
	if err != nil {
		// Integrity failure, not a business error. Never swallowed.
		return nil, fmt.Errorf("failed to decrypt card %d number: %w", card.ID, err)
	}
	return &CardView{
		ID:         card.ID,
		CardHolder: card.CardHolder,
		CardNumber: utils.MaskCardNumber(number),
		ExpiryDate: utils.FormatExpiryDate(card.ExpiryDate),
		Status:     card.Status,
		ToBlock:    card.ToBlock,
		Balance:    utils.FromMinorUnits(card.Balance),
		UserID:     card.UserID,
	}, nil
}

func (s *Service) toViews(cards []models.Card) ([]CardView, error) {
	views := make([]CardView, 0, len(cards))
	for i := range cards {
		view, err := s.toView(&cards[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// GenerateCardNumber produces a Luhn-valid number with the configured bank
// prefix, for test and demo data.
func (s *Service) GenerateCardNumber() (string, error) {
	return utils.GenerateCardNumber(s.config.BankPrefix)
}

// CreateCard registers a new card for a user. Administrative operation: the
// caller supplies the raw number, expiry and opening balance; the card
// holder name derives from the owner once, at creation.
func (s *Service) CreateCard(ctx context.Context, userID int64, cardNumber, expiryDate, balance string) (*CardView, error) {
	if err := utils.ValidateCardNumber(cardNumber); err != nil {
		return nil, err
	}
	expiry, err := utils.ParseExpiryDate(expiryDate)
	if err != nil {
		return nil, err
	}
	if utils.ExpiryPassed(expiry, time.Now()) {
		return nil, apperrors.New(apperrors.KindValidation, "expiry date must not be in the past")
	}
	minor, err := utils.ToMinorUnits(balance)
	if err != nil {
		return nil, err
	}
	if minor < 0 {
		return nil, apperrors.New(apperrors.KindInvalidAmount, "balance must not be negative")
	}

	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	encrypted, err := s.crypto.Encrypt(cardNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt card number: %w", err)
	}

	card := &models.Card{
		CardHolder: strings.ToUpper(user.FirstName + " " + user.LastName),
		CardNumber: encrypted,
		ExpiryDate: expiry,
		Status:     models.StatusActive,
		ToBlock:    false,
		Balance:    minor,
		UserID:     user.ID,
	}
	if err := s.store.CreateCard(ctx, card); err != nil {
		return nil, err
	}

	s.log.Infof("Card %d created for user %d", card.ID, user.ID)
	return s.toView(card)
}

// GetUserCards returns a filtered page of the caller's own cards.
func (s *Service) GetUserCards(ctx context.Context, userID int64, filter repository.CardFilter, page repository.Page) ([]CardView, int64, error) {
	filter.UserID = &userID
	return s.listCards(ctx, filter, page)
}

// GetCardsList returns a filtered page over all cards. Admin-only at the
// routing layer.
func (s *Service) GetCardsList(ctx context.Context, filter repository.CardFilter, page repository.Page) ([]CardView, int64, error) {
	return s.listCards(ctx, filter, page)
}

func (s *Service) listCards(ctx context.Context, filter repository.CardFilter, page repository.Page) ([]CardView, int64, error) {
	cards, total, err := s.store.ListCards(ctx, filter, page)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.toViews(cards)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// TotalBalance sums the balances of all the user's cards, rendered as a
// decimal string.
func (s *Service) TotalBalance(ctx context.Context, userID int64) (string, error) {
	sum, err := s.store.SumBalanceByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return utils.FromMinorUnits(sum), nil
}

// BlockRequest flags the caller's card for blocking by an administrator. It
// sets toBlock only; status is unchanged until an admin acts.
func (s *Service) BlockRequest(ctx context.Context, cardID, userID int64) (*CardView, error) {
	card, err := s.store.FindCardByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.UserID != userID {
		s.log.Errorf("Card %d block request by user %d has been rejected", cardID, userID)
		return nil, apperrors.Newf(apperrors.KindBusinessRule, "you can not block card #%d", cardID)
	}
	if err := s.store.SetCardToBlock(ctx, cardID); err != nil {
		return nil, err
	}
	card.ToBlock = true

	if s.notifier != nil {
		if user, err := s.store.FindUserByID(ctx, userID); err == nil {
			if err := s.notifier.SendBlockRequestNotice(user.Email, card.CardHolder, cardID); err != nil {
				s.log.Errorf("Failed to send block notice for card %d: %v", cardID, err)
			}
		}
	}

	s.log.Infof("Card %d flagged for blocking by user %d", cardID, userID)
	return s.toView(card)
}

// Transfer moves money between two cards of the same owner. Both legs run in
// one storage transaction; a rejected leg rolls the whole operation back.
func (s *Service) Transfer(ctx context.Context, userID, fromID, toID int64, amount string) error {
	if fromID == toID {
		return apperrors.New(apperrors.KindValidation, "cannot transfer a card to itself")
	}
	minor, err := utils.ToPositiveMinorUnits(amount)
	if err != nil {
		return err
	}

	if err := s.store.Transfer(ctx, fromID, toID, userID, minor); err != nil {
		if apperrors.IsKind(err, apperrors.KindOperationRejected) {
			s.log.Errorf("Transfer of %d from card %d to card %d rejected for user %d",
				minor, fromID, toID, userID)
		}
		return err
	}

	if s.notifier != nil {
		if user, err := s.store.FindUserByID(ctx, userID); err == nil {
			if err := s.notifier.SendTransferNotice(user.Email, fromID, toID, utils.FromMinorUnits(minor)); err != nil {
				s.log.Errorf("Failed to send transfer notice to %s: %v", user.Email, err)
			}
		}
	}

	s.log.Infof("Transferred %d minor units from card %d to card %d", minor, fromID, toID)
	return nil
}

// ChangeCardStatus applies the status machine under an exclusive row lock so
// the transition can not race a concurrent transfer.
func (s *Service) ChangeCardStatus(ctx context.Context, cardID int64, next models.CardStatus) (*CardView, error) {
	var card *models.Card
	err := s.store.WithinTx(ctx, func(tx *sql.Tx) error {
		var err error
		card, err = s.store.FindCardForUpdate(ctx, tx, cardID)
		if err != nil {
			return err
		}
		if err := card.ChangeStatus(next); err != nil {
			return err
		}
		return s.store.UpdateCardStatus(ctx, tx, cardID, next)
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Card %d status changed to %s", cardID, next)
	return s.toView(card)
}

// DeleteCard removes a card that is BLOCKED or EXPIRED. An ACTIVE card can
// not be deleted. The delete-if-not-active predicate is not expressible as a
// single conditional update that still distinguishes NotFound from
// BusinessRule, hence the locked read.
func (s *Service) DeleteCard(ctx context.Context, cardID int64) error {
	err := s.store.WithinTx(ctx, func(tx *sql.Tx) error {
		card, err := s.store.FindCardForUpdate(ctx, tx, cardID)
		if err != nil {
			return err
		}
		if card.Status == models.StatusActive {
			return apperrors.Newf(apperrors.KindBusinessRule, "you can not delete ACTIVE card #%d", cardID)
		}
		return s.store.DeleteCard(ctx, tx, cardID)
	})
	if err != nil {
		return err
	}

	s.log.Infof("Card %d deleted", cardID)
	return nil
}

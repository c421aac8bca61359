package service

import (
	"context"
	"database/sql"
	"io"
	"sync"
	"time"

	"github.com/SantaVM/bank-rest/internal/apperrors"
	"github.com/SantaVM/bank-rest/internal/config"
	"github.com/SantaVM/bank-rest/internal/models"
	"github.com/SantaVM/bank-rest/internal/repository"
	"github.com/SantaVM/bank-rest/internal/utils"
	"github.com/sirupsen/logrus"
)

// fakeStore is an in-memory Store with the same predicate semantics as the
// SQL repository, so service orchestration can be tested without a database.
type fakeStore struct {
	mu         sync.Mutex
	users      map[int64]*models.User
	cards      map[int64]*models.Card
	nextUserID int64
	nextCardID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[int64]*models.User),
		cards: make(map[int64]*models.Card),
	}
}

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return apperrors.New(apperrors.KindConflict, "email already registered: "+user.Email)
		}
	}
	f.nextUserID++
	user.ID = f.nextUserID
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperrors.New(apperrors.KindNotFound, "user not found: "+email)
}

func (f *fakeStore) FindUserByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.KindNotFound, "user not found with id: %d", id)
	}
	clone := *user
	return &clone, nil
}

func (f *fakeStore) ListUsers(_ context.Context, _ repository.UserFilter, _ repository.Page) ([]models.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []models.User
	for _, user := range f.users {
		users = append(users, *user)
	}
	return users, int64(len(users)), nil
}

func (f *fakeStore) UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.FindUserByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (f *fakeStore) CreateCard(_ context.Context, card *models.Card) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.cards {
		if existing.CardNumber == card.CardNumber {
			return apperrors.New(apperrors.KindConflict, "card already registered")
		}
	}
	f.nextCardID++
	card.ID = f.nextCardID
	clone := *card
	f.cards[card.ID] = &clone
	return nil
}

func (f *fakeStore) FindCardByID(_ context.Context, id int64) (*models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findCardLocked(id)
}

func (f *fakeStore) findCardLocked(id int64) (*models.Card, error) {
	card, ok := f.cards[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.KindNotFound, "card not found with id: %d", id)
	}
	clone := *card
	return &clone, nil
}

func (f *fakeStore) ListCards(_ context.Context, filter repository.CardFilter, _ repository.Page) ([]models.Card, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var cards []models.Card
	for _, card := range f.cards {
		if filter.UserID != nil && card.UserID != *filter.UserID {
			continue
		}
		cards = append(cards, *card)
	}
	return cards, int64(len(cards)), nil
}

func (f *fakeStore) SumBalanceByUser(_ context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum int64
	for _, card := range f.cards {
		if card.UserID == userID {
			sum += card.Balance
		}
	}
	return sum, nil
}

func (f *fakeStore) eligible(card *models.Card, ownerID int64) bool {
	return card.UserID == ownerID && card.Status == models.StatusActive && !card.ToBlock
}

func (f *fakeStore) Transfer(_ context.Context, fromID, toID, ownerID, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	from, ok := f.cards[fromID]
	if !ok || !f.eligible(from, ownerID) || from.Balance < amount {
		return apperrors.Newf(apperrors.KindOperationRejected, "error transferring from card: %d", fromID)
	}
	to, ok := f.cards[toID]
	if !ok || !f.eligible(to, ownerID) {
		// Both legs are one transaction: nothing was debited.
		return apperrors.Newf(apperrors.KindOperationRejected, "error transferring to card: %d", toID)
	}
	from.Balance -= amount
	to.Balance += amount
	return nil
}

func (f *fakeStore) SetCardToBlock(_ context.Context, cardID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	card, ok := f.cards[cardID]
	if !ok {
		return apperrors.Newf(apperrors.KindNotFound, "card not found with id: %d", cardID)
	}
	card.ToBlock = true
	return nil
}

func (f *fakeStore) ExpireOverdueCards(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var expired int64
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, card := range f.cards {
		if card.ExpiryDate.Before(today) && card.Status != models.StatusExpired {
			card.Status = models.StatusExpired
			expired++
		}
	}
	return expired, nil
}

func (f *fakeStore) WithinTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

func (f *fakeStore) FindCardForUpdate(ctx context.Context, _ *sql.Tx, id int64) (*models.Card, error) {
	return f.FindCardByID(ctx, id)
}

func (f *fakeStore) UpdateCardStatus(_ context.Context, _ *sql.Tx, cardID int64, status models.CardStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	card, ok := f.cards[cardID]
	if !ok {
		return apperrors.Newf(apperrors.KindNotFound, "card not found with id: %d", cardID)
	}
	card.Status = status
	return nil
}

func (f *fakeStore) DeleteCard(_ context.Context, _ *sql.Tx, cardID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.cards, cardID)
	return nil
}

func newTestService(store Store) *Service {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTExpirationMin: 60,
		BankPrefix:       "400000",
	}
	crypto, err := utils.NewCryptoCodec(
		[]byte("a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"),
		[]byte("a1b2c3d4e5f6a7b8"))
	if err != nil {
		panic(err)
	}
	return NewService(store, crypto, nil, logger, cfg)
}

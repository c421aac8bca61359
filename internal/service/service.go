package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/SantaVM/bank-rest/internal/config"
	"github.com/SantaVM/bank-rest/internal/models"
	"github.com/SantaVM/bank-rest/internal/repository"
	"github.com/SantaVM/bank-rest/internal/utils"
	"github.com/sirupsen/logrus"
)

// Store is the persistence surface the service depends on. The production
// implementation is *repository.Repository.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context, filter repository.UserFilter, page repository.Page) ([]models.User, int64, error)
	UserExistsByEmail(ctx context.Context, email string) (bool, error)

	CreateCard(ctx context.Context, card *models.Card) error
	FindCardByID(ctx context.Context, id int64) (*models.Card, error)
	ListCards(ctx context.Context, filter repository.CardFilter, page repository.Page) ([]models.Card, int64, error)
	SumBalanceByUser(ctx context.Context, userID int64) (int64, error)
	Transfer(ctx context.Context, fromID, toID, ownerID, amount int64) error
	SetCardToBlock(ctx context.Context, cardID int64) error
	ExpireOverdueCards(ctx context.Context, now time.Time) (int64, error)

	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
	FindCardForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*models.Card, error)
	UpdateCardStatus(ctx context.Context, tx *sql.Tx, cardID int64, status models.CardStatus) error
	DeleteCard(ctx context.Context, tx *sql.Tx, cardID int64) error
}

// Notifier sends best-effort user notifications. Failures are logged, never
// propagated into the business operation.
type Notifier interface {
	SendBlockRequestNotice(to, cardHolder string, cardID int64) error
	SendTransferNotice(to string, fromID, toID int64, amount string) error
}

// Service handles business logic
type Service struct {
	store    Store
	crypto   *utils.CryptoCodec
	notifier Notifier
	log      *logrus.Logger
	config   *config.Config
}

// NewService initializes a new service. notifier may be nil to disable
// notifications.
func NewService(store Store, crypto *utils.CryptoCodec, notifier Notifier, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{store: store, crypto: crypto, notifier: notifier, log: log, config: cfg}
}

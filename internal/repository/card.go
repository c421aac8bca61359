package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SantaVM/bank-rest/internal/apperrors"
	"github.com/SantaVM/bank-rest/internal/models"
)

const cardColumns = "id, card_holder, card_number, expiry_date, status, to_block, balance, user_id"

func scanCard(row interface{ Scan(...any) error }) (*models.Card, error) {
	card := &models.Card{}
	err := row.Scan(&card.ID, &card.CardHolder, &card.CardNumber, &card.ExpiryDate,
		&card.Status, &card.ToBlock, &card.Balance, &card.UserID)
	if err != nil {
		return nil, err
	}
	return card, nil
}

// CreateCard inserts a new card. The CardNumber field must already hold the
// encrypted form; a duplicate ciphertext maps to Conflict.
func (r *Repository) CreateCard(ctx context.Context, card *models.Card) error {
	query := `
		INSERT INTO credit_card (card_holder, card_number, expiry_date, status, to_block, balance, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		card.CardHolder, card.CardNumber, card.ExpiryDate, card.Status,
		card.ToBlock, card.Balance, card.UserID).
		Scan(&card.ID)
	if isUniqueViolation(err) {
		return apperrors.Wrap(apperrors.KindConflict, "card already registered", err)
	}
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// FindCardByID retrieves a card without locking it.
func (r *Repository) FindCardByID(ctx context.Context, id int64) (*models.Card, error) {
	query := "SELECT " + cardColumns + " FROM credit_card WHERE id = $1"
	card, err := scanCard(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "card not found with id: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find card: %w", err)
	}
	return card, nil
}

// FindCardForUpdate reads a card under an exclusive row lock held until the
// surrounding transaction ends. Used before read-then-write sequences that a
// single conditional UPDATE cannot express (status change, delete).
func (r *Repository) FindCardForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*models.Card, error) {
	query := "SELECT " + cardColumns + " FROM credit_card WHERE id = $1 FOR UPDATE"
	card, err := scanCard(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "card not found with id: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find card for update: %w", err)
	}
	return card, nil
}

// execer lets ledger updates run either on the pool or inside a transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Withdraw atomically debits a card if and only if it belongs to ownerID, is
// ACTIVE, is not marked for blocking, and holds at least amount. Returns the
// number of rows changed: 0 means some precondition failed, deliberately
// without saying which one. The single conditional UPDATE is what makes this
// safe under concurrent withdrawals: the row-level write lock serializes
// attempts and only one can observe balance >= amount after another commits.
func (r *Repository) Withdraw(ctx context.Context, ex execer, cardID, ownerID, amount int64) (int64, error) {
	if ex == nil {
		ex = r.db
	}
	query := `
		UPDATE credit_card
		SET balance = balance - $3
		WHERE id = $1 AND user_id = $2 AND status = $4 AND to_block = FALSE AND balance >= $3`
	res, err := ex.ExecContext(ctx, query, cardID, ownerID, amount, models.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("failed to withdraw from card %d: %w", cardID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return rows, nil
}

// Deposit atomically credits a card under the same ownership/status/to_block
// predicate as Withdraw. A credit needs no balance floor check.
func (r *Repository) Deposit(ctx context.Context, ex execer, cardID, ownerID, amount int64) (int64, error) {
	if ex == nil {
		ex = r.db
	}
	query := `
		UPDATE credit_card
		SET balance = balance + $3
		WHERE id = $1 AND user_id = $2 AND status = $4 AND to_block = FALSE`
	res, err := ex.ExecContext(ctx, query, cardID, ownerID, amount, models.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("failed to deposit to card %d: %w", cardID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return rows, nil
}

// Transfer debits fromID and credits toID for the same owner inside one
// transaction. If either conditional update affects zero rows the whole
// transaction rolls back, so the source is never left debited without a
// completed credit. Lock order is always debit first.
func (r *Repository) Transfer(ctx context.Context, fromID, toID, ownerID, amount int64) error {
	return r.WithinTx(ctx, func(tx *sql.Tx) error {
		withdrawn, err := r.Withdraw(ctx, tx, fromID, ownerID, amount)
		if err != nil {
			return err
		}
		if withdrawn == 0 {
			return apperrors.Newf(apperrors.KindOperationRejected,
				"error transferring from card: %d", fromID)
		}

		deposited, err := r.Deposit(ctx, tx, toID, ownerID, amount)
		if err != nil {
			return err
		}
		if deposited == 0 {
			return apperrors.Newf(apperrors.KindOperationRejected,
				"error transferring to card: %d", toID)
		}
		return nil
	})
}

// SetCardToBlock flags a card for blocking by an administrator. The flag does
// not change the card status.
func (r *Repository) SetCardToBlock(ctx context.Context, cardID int64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE credit_card SET to_block = TRUE WHERE id = $1", cardID)
	if err != nil {
		return fmt.Errorf("failed to flag card %d for blocking: %w", cardID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return apperrors.Newf(apperrors.KindNotFound, "card not found with id: %d", cardID)
	}
	return nil
}

// UpdateCardStatus persists a status already validated by the state machine.
// Must run in the same transaction as the FindCardForUpdate read.
func (r *Repository) UpdateCardStatus(ctx context.Context, tx *sql.Tx, cardID int64, status models.CardStatus) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE credit_card SET status = $2 WHERE id = $1", cardID, status)
	if err != nil {
		return fmt.Errorf("failed to update card %d status: %w", cardID, err)
	}
	return nil
}

// DeleteCard removes a card. Must run in the same transaction as the
// FindCardForUpdate read that checked the card is not ACTIVE.
func (r *Repository) DeleteCard(ctx context.Context, tx *sql.Tx, cardID int64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM credit_card WHERE id = $1", cardID)
	if err != nil {
		return fmt.Errorf("failed to delete card %d: %w", cardID, err)
	}
	return nil
}

// SumBalanceByUser returns the total balance in minor units across all cards
// owned by userID. Advisory read, no locking.
func (r *Repository) SumBalanceByUser(ctx context.Context, userID int64) (int64, error) {
	var sum int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(balance), 0) FROM credit_card WHERE user_id = $1", userID).
		Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum balance for user %d: %w", userID, err)
	}
	return sum, nil
}

// ExpireOverdueCards moves every card past its expiry date into EXPIRED with
// one conditional update. Returns the number of cards expired. Cards stay
// valid through the whole of their expiry day, so the comparison is
// date-granular.
func (r *Repository) ExpireOverdueCards(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE credit_card SET status = $2 WHERE expiry_date < CAST($1 AS DATE) AND status <> $2",
		now, models.StatusExpired)
	if err != nil {
		return 0, fmt.Errorf("failed to expire cards: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return rows, nil
}

// CardFilter narrows ListCards results. Nil/empty fields are not applied.
type CardFilter struct {
	UserID     *int64
	CardHolder string
	ExpiryDate *time.Time
	Status     *models.CardStatus
	ToBlock    *bool
}

// ListCards returns a page of cards matching the filter, plus the total
// number of matching rows.
func (r *Repository) ListCards(ctx context.Context, filter CardFilter, page Page) ([]models.Card, int64, error) {
	where := []string{"TRUE"}
	args := []any{}

	add := func(condition string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(condition, len(args)))
	}
	if filter.UserID != nil {
		add("user_id = $%d", *filter.UserID)
	}
	if filter.CardHolder != "" {
		add("LOWER(card_holder) LIKE $%d", "%"+strings.ToLower(filter.CardHolder)+"%")
	}
	if filter.ExpiryDate != nil {
		add("expiry_date = $%d", *filter.ExpiryDate)
	}
	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if filter.ToBlock != nil {
		add("to_block = $%d", *filter.ToBlock)
	}
	condition := strings.Join(where, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM credit_card WHERE " + condition
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count cards: %w", err)
	}

	args = append(args, page.Size, page.Offset())
	query := fmt.Sprintf("SELECT %s FROM credit_card WHERE %s ORDER BY id LIMIT $%d OFFSET $%d",
		cardColumns, condition, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, total, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/SantaVM/bank-rest/internal/apperrors"
	"github.com/SantaVM/bank-rest/internal/models"
	"github.com/lib/pq"
)

// pq error code for unique constraint violations.
const uniqueViolation = "23505"

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// WithinTx runs fn inside a transaction. Any error rolls the whole
// transaction back, so storage never reflects a partial mutation.
func (r *Repository) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Role).
		Scan(&user.ID)
	if isUniqueViolation(err) {
		return apperrors.Wrap(apperrors.KindConflict,
			"email already registered: "+user.Email, err)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, password_hash, first_name, last_name, role
		FROM users
		WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName, &user.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.KindNotFound, "user not found: "+email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, password_hash, first_name, last_name, role
		FROM users
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName, &user.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "user not found with id: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UserFilter narrows ListUsers results. Nil/empty fields are not applied.
type UserFilter struct {
	FirstName string
	LastName  string
	Email     string
	Role      *models.Role
}

// Page describes the requested slice of a list query.
type Page struct {
	Number int
	Size   int
}

// Offset returns the row offset of the page.
func (p Page) Offset() int { return p.Number * p.Size }

// ListUsers returns a page of users matching the filter, plus the total
// number of matching rows.
func (r *Repository) ListUsers(ctx context.Context, filter UserFilter, page Page) ([]models.User, int64, error) {
	where := []string{"TRUE"}
	args := []any{}

	like := func(column, value string) {
		args = append(args, "%"+strings.ToLower(value)+"%")
		where = append(where, fmt.Sprintf("LOWER(%s) LIKE $%d", column, len(args)))
	}
	if filter.FirstName != "" {
		like("first_name", filter.FirstName)
	}
	if filter.LastName != "" {
		like("last_name", filter.LastName)
	}
	if filter.Email != "" {
		like("email", filter.Email)
	}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	condition := strings.Join(where, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM users WHERE " + condition
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	args = append(args, page.Size, page.Offset())
	query := fmt.Sprintf(`
		SELECT id, email, password_hash, first_name, last_name, role
		FROM users
		WHERE %s
		ORDER BY id
		LIMIT $%d OFFSET $%d`, condition, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Role); err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// UserExistsByEmail reports whether a user with the given email exists.
func (r *Repository) UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)", email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

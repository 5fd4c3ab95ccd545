package repository

import (
	"context"
	"fmt"

	"bistro/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, login, role, status, bonus_balance, mail, phone, card_number, created_at
		FROM users
		WHERE id = $1
	`

	var u model.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Login, &u.Role, &u.Status, &u.BonusBalance,
		&u.Mail, &u.Phone, &u.CardNumber, &u.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("user_id", id.String()).Msg("user not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &u, nil
}

// DebitBonusTx subtracts amount from the user's bonus balance within tx.
// The balance predicate in the UPDATE makes the debit a compare-and-swap:
// a concurrent spend that drained the balance since it was read turns
// this into a zero-row update instead of a negative balance.
func (r *userRepository) DebitBonusTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}

	query := `
		UPDATE users
		SET bonus_balance = bonus_balance - $1
		WHERE id = $2 AND bonus_balance >= $1
	`

	tag, err := tx.Exec(ctx, query, amount, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to debit bonus balance")
		return fmt.Errorf("failed to debit bonus balance: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().
			Str("user_id", userID.String()).
			Str("amount", amount.String()).
			Msg("bonus debit guard failed")
		return model.ErrInsufficientBalance
	}

	return nil
}

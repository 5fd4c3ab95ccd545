package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bistro/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint
// violation, raised by the one-basket-per-customer partial index when
// two requests race to create a basket.
const uniqueViolation = "23505"

const orderColumns = `id, user_id, state, payment_type, bonuses_in_payment, final_price, created_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateBasket inserts an empty BASKET order for the user. Losing the
// race against a concurrent insert surfaces as model.ErrBasketConflict.
func (r *orderRepository) CreateBasket(ctx context.Context, userID uuid.UUID) (*model.Order, error) {
	query := `
		INSERT INTO orders (id, user_id, state, payment_type, bonuses_in_payment, final_price)
		VALUES ($1, $2, $3, $4, 0, 0)
		RETURNING ` + orderColumns

	var o model.Order
	err := r.pool.QueryRow(ctx, query, uuid.New(), userID, model.OrderStateBasket, model.PaymentTypeCash).Scan(
		&o.ID, &o.UserID, &o.State, &o.PaymentType, &o.BonusesInPayment, &o.FinalPrice, &o.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			r.logger.Debug().Str("user_id", userID.String()).Msg("lost basket creation race")
			return nil, model.ErrBasketConflict
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to create basket")
		return nil, fmt.Errorf("failed to create basket: %w", err)
	}

	r.logger.Debug().
		Str("order_id", o.ID.String()).
		Str("user_id", userID.String()).
		Msg("basket created")

	return &o, nil
}

// GetByID retrieves an order by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var o model.Order
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.UserID, &o.State, &o.PaymentType, &o.BonusesInPayment, &o.FinalPrice, &o.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return &o, nil
}

// GetBasketByUser retrieves the user's BASKET order. At most one such
// row can exist under the partial unique index.
func (r *orderRepository) GetBasketByUser(ctx context.Context, userID uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 AND state = $2`

	var o model.Order
	err := r.pool.QueryRow(ctx, query, userID, model.OrderStateBasket).Scan(
		&o.ID, &o.UserID, &o.State, &o.PaymentType, &o.BonusesInPayment, &o.FinalPrice, &o.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query basket")
		return nil, fmt.Errorf("failed to query basket: %w", err)
	}

	return &o, nil
}

// FinalizeTx conditionally transitions the order BASKET -> SUBMITTED
// within tx. The state predicate in the UPDATE is what makes the
// transition safe against a concurrent submit of the same order.
func (r *orderRepository) FinalizeTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, paymentType model.PaymentType, bonuses, finalPrice decimal.Decimal) error {
	query := `
		UPDATE orders
		SET state = $1, payment_type = $2, bonuses_in_payment = $3, final_price = $4
		WHERE id = $5 AND state = $6
	`

	tag, err := tx.Exec(ctx, query,
		model.OrderStateSubmitted, paymentType, bonuses, finalPrice,
		orderID, model.OrderStateBasket,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to finalize order")
		return fmt.Errorf("failed to finalize order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().Str("order_id", orderID.String()).Msg("order no longer in basket state")
		return model.ErrOrderNotMutable
	}

	return nil
}

// Count returns the number of orders matching the filter, joined against
// their owning users.
func (r *orderRepository) Count(ctx context.Context, filter model.ListingFilter) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM orders o
		JOIN users u ON u.id = o.user_id
	`

	clauses, args := listingClauses(filter)
	query += whereClause(clauses)

	var count int64
	err := r.pool.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return count, nil
}

// CountByUser returns the number of orders owned by one user.
func (r *orderRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM orders WHERE user_id = $1`

	var count int64
	err := r.pool.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to count user orders")
		return 0, fmt.Errorf("failed to count user orders: %w", err)
	}

	return count, nil
}

// FindWithUsers returns rows [minPos, maxPos) of the filtered listing
// joined with users. The composite ORDER BY keeps the ordering stable
// across sequential windows.
func (r *orderRepository) FindWithUsers(ctx context.Context, minPos, maxPos int64, filter model.ListingFilter) ([]model.OrderWithUser, error) {
	query := `
		SELECT o.id, o.user_id, o.state, o.payment_type, o.bonuses_in_payment, o.final_price, o.created_at,
		       u.id, u.login, u.role, u.status, u.bonus_balance, u.mail, u.phone, u.card_number, u.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
	`

	clauses, args := listingClauses(filter)
	query += whereClause(clauses)
	query += fmt.Sprintf(" ORDER BY o.created_at DESC, o.id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, maxPos-minPos, minPos)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders with users")
		return nil, fmt.Errorf("failed to query orders with users: %w", err)
	}
	defer rows.Close()

	var results []model.OrderWithUser
	for rows.Next() {
		var row model.OrderWithUser
		err := rows.Scan(
			&row.Order.ID, &row.Order.UserID, &row.Order.State, &row.Order.PaymentType,
			&row.Order.BonusesInPayment, &row.Order.FinalPrice, &row.Order.CreatedAt,
			&row.User.ID, &row.User.Login, &row.User.Role, &row.User.Status,
			&row.User.BonusBalance, &row.User.Mail, &row.User.Phone, &row.User.CardNumber,
			&row.User.CreatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order with user row")
			return nil, fmt.Errorf("failed to scan order with user: %w", err)
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return results, nil
}

// FindByUser returns rows [minPos, maxPos) of one user's orders.
func (r *orderRepository) FindByUser(ctx context.Context, userID uuid.UUID, minPos, maxPos int64, filter model.OrderFilter) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`

	clauses, args := orderClauses(filter, "", nil)
	clauses = append(clauses, fmt.Sprintf("user_id = $%d", len(args)+1))
	args = append(args, userID)

	query += whereClause(clauses)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, maxPos-minPos, minPos)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query user orders")
		return nil, fmt.Errorf("failed to query user orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		err := rows.Scan(&o.ID, &o.UserID, &o.State, &o.PaymentType, &o.BonusesInPayment, &o.FinalPrice, &o.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// orderClauses appends WHERE clauses for the order-side filter. prefix
// qualifies column names when the query joins other tables.
func orderClauses(f model.OrderFilter, prefix string, args []any) ([]string, []any) {
	var clauses []string

	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, s := range f.States {
			states[i] = string(s)
		}
		args = append(args, states)
		clauses = append(clauses, fmt.Sprintf("%sstate = ANY($%d)", prefix, len(args)))
	}

	if len(f.PaymentTypes) > 0 {
		types := make([]string, len(f.PaymentTypes))
		for i, p := range f.PaymentTypes {
			types[i] = string(p)
		}
		args = append(args, types)
		clauses = append(clauses, fmt.Sprintf("%spayment_type = ANY($%d)", prefix, len(args)))
	}

	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		clauses = append(clauses, fmt.Sprintf("%sfinal_price >= $%d", prefix, len(args)))
	}

	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		clauses = append(clauses, fmt.Sprintf("%sfinal_price <= $%d", prefix, len(args)))
	}

	return clauses, args
}

// userClauses appends WHERE clauses for the user-side filter.
func userClauses(f model.UserFilter, args []any) ([]string, []any) {
	var clauses []string

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		clauses = append(clauses, fmt.Sprintf("u.status = ANY($%d)", len(args)))
	}

	if len(f.Roles) > 0 {
		roles := make([]string, len(f.Roles))
		for i, role := range f.Roles {
			roles[i] = string(role)
		}
		args = append(args, roles)
		clauses = append(clauses, fmt.Sprintf("u.role = ANY($%d)", len(args)))
	}

	substrings := []struct {
		col string
		val string
	}{
		{"u.login", f.Login},
		{"u.mail", f.Mail},
		{"u.phone", f.Phone},
		{"u.card_number", f.CardNumber},
	}
	for _, s := range substrings {
		if s.val != "" {
			args = append(args, "%"+s.val+"%")
			clauses = append(clauses, fmt.Sprintf("%s ILIKE $%d", s.col, len(args)))
		}
	}

	return clauses, args
}

// listingClauses builds the combined clause set for the joined listing.
func listingClauses(f model.ListingFilter) ([]string, []any) {
	clauses, args := orderClauses(f.Order, "o.", nil)
	userC, args := userClauses(f.User, args)
	return append(clauses, userC...), args
}

// whereClause renders clauses as a WHERE fragment, empty when there are
// no predicates.
func whereClause(clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(clauses, " AND ")
}

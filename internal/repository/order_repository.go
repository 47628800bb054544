package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rahul3988/updnefol-backend/internal/models"
)

// ==============================================
// ERRORS
// ==============================================

var (
	ErrOrderNotFound    = errors.New("payment order not found")
	ErrDuplicateReceipt = errors.New("payment order already exists for receipt")
)

// ==============================================
// ORDER REPOSITORY
// ==============================================

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

// ==============================================
// CREATE
// ==============================================

func (r *OrderRepository) Create(ctx context.Context, order *models.PaymentOrder) error {
	query := `
		INSERT INTO payment_orders (receipt, gateway_order_id, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		order.Receipt,
		order.GatewayOrderID,
		order.Amount,
		order.Currency,
		order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrDuplicateReceipt
		}
		return fmt.Errorf("failed to create payment order: %w", err)
	}

	return nil
}

// ==============================================
// LOOKUP
// ==============================================

func (r *OrderRepository) scanOrder(row pgx.Row) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	err := row.Scan(
		&order.ID,
		&order.Receipt,
		&order.GatewayOrderID,
		&order.PaymentID,
		&order.Amount,
		&order.Currency,
		&order.Status,
		&order.FailureReason,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get payment order: %w", err)
	}
	return &order, nil
}

const orderColumns = `id, receipt, gateway_order_id, payment_id, amount, currency,
	       status, failure_reason, created_at, updated_at`

func (r *OrderRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PaymentOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM payment_orders WHERE gateway_order_id = $1`
	return r.scanOrder(r.db.QueryRow(ctx, query, gatewayOrderID))
}

func (r *OrderRepository) GetByReceipt(ctx context.Context, receipt string) (*models.PaymentOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM payment_orders WHERE receipt = $1`
	return r.scanOrder(r.db.QueryRow(ctx, query, receipt))
}

// ==============================================
// STATE TRANSITIONS
// ==============================================

// MarkPaid transitions an order to paid. Only created and failed orders move:
// the checkout callback and the payment.captured webhook can both land without
// double-applying, and a capture redelivered after a refund does not resurrect
// the order as paid.
func (r *OrderRepository) MarkPaid(ctx context.Context, gatewayOrderID, paymentID string) error {
	query := `
		UPDATE payment_orders
		SET status = $3, payment_id = $2, failure_reason = NULL, updated_at = NOW()
		WHERE gateway_order_id = $1 AND status IN ($4, $5)
	`

	tag, err := r.db.Exec(ctx, query,
		gatewayOrderID, paymentID, models.OrderStatusPaid,
		models.OrderStatusCreated, models.OrderStatusFailed)
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Already paid or refunded, or no such order. Distinguish for the
		// caller.
		if _, lookupErr := r.GetByGatewayOrderID(ctx, gatewayOrderID); lookupErr != nil {
			return lookupErr
		}
	}

	return nil
}

// MarkFailed records a gateway-reported payment failure. A paid order is not
// demoted by a late failure event.
func (r *OrderRepository) MarkFailed(ctx context.Context, gatewayOrderID, paymentID, reason string) error {
	query := `
		UPDATE payment_orders
		SET status = $3, payment_id = $2, failure_reason = $4, updated_at = NOW()
		WHERE gateway_order_id = $1 AND status = $5
	`

	_, err := r.db.Exec(ctx, query,
		gatewayOrderID, paymentID, models.OrderStatusFailed, reason, models.OrderStatusCreated)
	if err != nil {
		return fmt.Errorf("failed to mark order failed: %w", err)
	}

	return nil
}

// UpdateRefundStatus transitions a paid order on refund webhook events,
// matching by the captured payment id.
func (r *OrderRepository) UpdateRefundStatus(ctx context.Context, paymentID, status string) error {
	query := `
		UPDATE payment_orders
		SET status = $2, updated_at = NOW()
		WHERE payment_id = $1 AND status IN ($3, $4)
	`

	_, err := r.db.Exec(ctx, query,
		paymentID, status, models.OrderStatusPaid, models.OrderStatusRefundFailed)
	if err != nil {
		return fmt.Errorf("failed to update refund status: %w", err)
	}

	return nil
}

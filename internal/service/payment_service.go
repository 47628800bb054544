package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rahul3988/updnefol-backend/internal/api/dto"
	"github.com/rahul3988/updnefol-backend/internal/models"
	"github.com/rahul3988/updnefol-backend/internal/payment"
	"github.com/rahul3988/updnefol-backend/internal/repository"
)

// ==============================================
// PAYMENT SERVICE
// ==============================================

// OrderGateway creates orders with the payment gateway.
type OrderGateway interface {
	CreateOrder(amount int64, currency, receipt string) (string, error)
}

type PaymentService struct {
	orders        OrderStore
	gateway       OrderGateway
	keyID         string
	keySecret     string
	webhookSecret string
	log           *zap.Logger
}

func NewPaymentService(
	orders OrderStore,
	gateway OrderGateway,
	keyID, keySecret, webhookSecret string,
	log *zap.Logger,
) *PaymentService {
	return &PaymentService{
		orders:        orders,
		gateway:       gateway,
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		log:           log,
	}
}

// ==============================================
// CREATE ORDER
// ==============================================

func (s *PaymentService) CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	receipt := req.Receipt
	if receipt == "" {
		receipt = uuid.NewString()
	} else {
		// Client-supplied receipts double as idempotency keys: a retried
		// request returns the existing order instead of charging twice.
		existing, err := s.orders.GetByReceipt(ctx, receipt)
		if err == nil {
			return s.orderToDTO(existing), nil
		}
		if !errors.Is(err, repository.ErrOrderNotFound) {
			return nil, fmt.Errorf("failed to check receipt: %w", err)
		}
	}

	gatewayOrderID, err := s.gateway.CreateOrder(req.Amount, currency, receipt)
	if err != nil {
		s.log.Error("gateway order create failed", zap.Error(err))
		return nil, models.ErrGatewayUnavailable
	}

	order := &models.PaymentOrder{
		Receipt:        receipt,
		GatewayOrderID: gatewayOrderID,
		Amount:         req.Amount,
		Currency:       currency,
		Status:         models.OrderStatusCreated,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicateReceipt) {
			return nil, models.ErrDuplicateReceipt
		}
		return nil, fmt.Errorf("failed to store payment order: %w", err)
	}

	return s.orderToDTO(order), nil
}

func (s *PaymentService) orderToDTO(order *models.PaymentOrder) *dto.CreateOrderResponse {
	return &dto.CreateOrderResponse{
		Receipt:        order.Receipt,
		GatewayOrderID: order.GatewayOrderID,
		Amount:         order.Amount,
		Currency:       order.Currency,
		KeyID:          s.keyID,
	}
}

// ==============================================
// VERIFY (checkout callback)
// ==============================================

// VerifyPayment checks the checkout callback signature; only a genuine tuple
// transitions the order to paid.
func (s *PaymentService) VerifyPayment(ctx context.Context, req dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error) {
	if !payment.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, s.keySecret) {
		return nil, models.ErrSignatureMismatch
	}

	if err := s.orders.MarkPaid(ctx, req.RazorpayOrderID, req.RazorpayPaymentID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}

	return &dto.VerifyPaymentResponse{
		Verified: true,
		Status:   models.OrderStatusPaid,
		Message:  "Payment verified",
	}, nil
}

// ==============================================
// WEBHOOK
// ==============================================

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID               string `json:"id"`
				OrderID          string `json:"order_id"`
				ErrorDescription string `json:"error_description"`
			} `json:"entity"`
		} `json:"payment"`
		Refund struct {
			Entity struct {
				ID        string `json:"id"`
				PaymentID string `json:"payment_id"`
			} `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

// HandleWebhook authenticates the raw body against the webhook secret, then
// applies the event. Unknown event types are acknowledged and ignored so new
// gateway events can't break us.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if signature == "" || !payment.VerifyWebhook(body, signature, s.webhookSecret) {
		return models.ErrSignatureMismatch
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to parse webhook body: %w", err)
	}

	switch event.Event {
	case models.WebhookEventPaymentCaptured:
		pay := event.Payload.Payment.Entity
		if err := s.orders.MarkPaid(ctx, pay.OrderID, pay.ID); err != nil &&
			!errors.Is(err, repository.ErrOrderNotFound) {
			return fmt.Errorf("failed to apply payment.captured: %w", err)
		}

	case models.WebhookEventPaymentFailed:
		pay := event.Payload.Payment.Entity
		if err := s.orders.MarkFailed(ctx, pay.OrderID, pay.ID, pay.ErrorDescription); err != nil {
			return fmt.Errorf("failed to apply payment.failed: %w", err)
		}

	case models.WebhookEventRefundProcessed:
		refund := event.Payload.Refund.Entity
		if err := s.orders.UpdateRefundStatus(ctx, refund.PaymentID, models.OrderStatusRefunded); err != nil {
			return fmt.Errorf("failed to apply refund.processed: %w", err)
		}

	case models.WebhookEventRefundFailed:
		refund := event.Payload.Refund.Entity
		if err := s.orders.UpdateRefundStatus(ctx, refund.PaymentID, models.OrderStatusRefundFailed); err != nil {
			return fmt.Errorf("failed to apply refund.failed: %w", err)
		}

	default:
		s.log.Debug("ignoring unhandled webhook event", zap.String("event", event.Event))
	}

	return nil
}

package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rahul3988/updnefol-backend/internal/api/dto"
	"github.com/rahul3988/updnefol-backend/internal/models"
)

// SignatureHeader carries the webhook HMAC computed by the gateway.
const SignatureHeader = "X-Razorpay-Signature"

// maxWebhookBody bounds how much of a webhook body we will read.
const maxWebhookBody = 1 << 20

// ==============================================
// SERVICE INTERFACE (for testing)
// ==============================================

type PaymentService interface {
	CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (*dto.CreateOrderResponse, error)
	VerifyPayment(ctx context.Context, req dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

// ==============================================
// HANDLER (HTTP Layer ONLY)
// ==============================================

type PaymentHandler struct {
	service PaymentService
}

func NewPaymentHandler(service PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// ==============================================
// ENDPOINTS
// ==============================================

// CreateOrder handles POST /api/v1/payment/order
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.ErrCodeValidation, err.Error())
		return
	}

	resp, err := h.service.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// VerifyPayment handles POST /api/v1/payment/verify
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.ErrCodeValidation, err.Error())
		return
	}

	resp, err := h.service.VerifyPayment(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Webhook handles POST /api/v1/payment/webhook. The HMAC is computed over the
// raw body, so it must not pass through JSON binding first.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		respondError(c, http.StatusBadRequest, models.ErrCodeValidation, "unreadable request body")
		return
	}

	signature := c.GetHeader(SignatureHeader)
	if err := h.service.HandleWebhook(c.Request.Context(), body, signature); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ==============================================
// ROUTE REGISTRATION
// ==============================================

func (h *PaymentHandler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1/payment")
	{
		v1.POST("/order", h.CreateOrder)
		v1.POST("/verify", h.VerifyPayment)
		v1.POST("/webhook", h.Webhook)
	}
}

package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rahul3988/updnefol-backend/internal/api/dto"
	"github.com/rahul3988/updnefol-backend/internal/models"
)

// ==============================================
// SERVICE INTERFACE (for testing)
// ==============================================

type OTPService interface {
	Send(ctx context.Context, req dto.SendOTPRequest) (*dto.SendOTPResponse, error)
	Verify(ctx context.Context, req dto.VerifyOTPRequest) (*dto.VerifyOTPResponse, error)
}

// ==============================================
// HANDLER (HTTP Layer ONLY)
// ==============================================

type OTPHandler struct {
	service OTPService
}

func NewOTPHandler(service OTPService) *OTPHandler {
	return &OTPHandler{service: service}
}

// ==============================================
// ENDPOINTS
// ==============================================

// Send handles POST /api/v1/otp/send
func (h *OTPHandler) Send(c *gin.Context) {
	var req dto.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.ErrCodeValidation, err.Error())
		return
	}

	resp, err := h.service.Send(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Verify handles POST /api/v1/otp/verify
func (h *OTPHandler) Verify(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.ErrCodeValidation, err.Error())
		return
	}

	resp, err := h.service.Verify(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ==============================================
// ROUTE REGISTRATION
// ==============================================

func (h *OTPHandler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1/otp")
	{
		v1.POST("/send", h.Send)
		v1.POST("/verify", h.Verify)
	}
}

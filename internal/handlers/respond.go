package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rahul3988/updnefol-backend/internal/api/dto"
	"github.com/rahul3988/updnefol-backend/internal/models"
)

// ==============================================
// RESPONSE HELPERS
// ==============================================

func respondError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// respondServiceError maps service errors onto the error taxonomy:
// VALIDATION 400, AUTH 401, NOT_FOUND 404, CONFLICT 409, INTERNAL 500.
// OTP failures carry their specific reason code so clients can distinguish
// expired / exhausted / wrong.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrCredentialExpired):
		respondError(c, http.StatusBadRequest, models.ErrCodeOTPExpired, err.Error())
	case errors.Is(err, models.ErrTooManyAttempts):
		respondError(c, http.StatusBadRequest, models.ErrCodeOTPMaxAttempts, err.Error())
	case errors.Is(err, models.ErrCredentialInvalid), errors.Is(err, models.ErrCredentialNotFound):
		respondError(c, http.StatusBadRequest, models.ErrCodeOTPInvalid, err.Error())

	case errors.Is(err, models.ErrResendCooldown), errors.Is(err, models.ErrTooManyRequests):
		respondError(c, http.StatusTooManyRequests, models.ErrCodeValidation, err.Error())

	case models.IsValidationError(err):
		respondError(c, http.StatusBadRequest, models.ErrCodeValidation, err.Error())
	case models.IsAuthError(err):
		respondError(c, http.StatusUnauthorized, models.ErrCodeAuth, err.Error())
	case models.IsNotFoundError(err):
		respondError(c, http.StatusNotFound, models.ErrCodeNotFound, err.Error())
	case models.IsConflictError(err):
		respondError(c, http.StatusConflict, models.ErrCodeConflict, err.Error())

	default:
		// Database and other unexpected errors never leak details.
		respondError(c, http.StatusInternalServerError, models.ErrCodeInternal, "Internal server error")
	}
}

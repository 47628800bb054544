package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahul3988/updnefol-backend/internal/api/dto"
	"github.com/rahul3988/updnefol-backend/internal/models"
)

// ==============================================
// MOCK SERVICE
// ==============================================

type mockOTPService struct {
	sendFunc   func(ctx context.Context, req dto.SendOTPRequest) (*dto.SendOTPResponse, error)
	verifyFunc func(ctx context.Context, req dto.VerifyOTPRequest) (*dto.VerifyOTPResponse, error)
}

func (m *mockOTPService) Send(ctx context.Context, req dto.SendOTPRequest) (*dto.SendOTPResponse, error) {
	return m.sendFunc(ctx, req)
}

func (m *mockOTPService) Verify(ctx context.Context, req dto.VerifyOTPRequest) (*dto.VerifyOTPResponse, error) {
	return m.verifyFunc(ctx, req)
}

func newOTPRouter(svc OTPService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewOTPHandler(svc).RegisterRoutes(router)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

// ==============================================
// SEND
// ==============================================

func TestSendEndpoint_Success(t *testing.T) {
	router := newOTPRouter(&mockOTPService{
		sendFunc: func(_ context.Context, req dto.SendOTPRequest) (*dto.SendOTPResponse, error) {
			assert.Equal(t, "9876543210", req.Phone)
			return &dto.SendOTPResponse{Message: "Verification code sent", ExpiresIn: 600}, nil
		},
	})

	w := postJSON(router, "/api/v1/otp/send", `{"phone":"9876543210"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.SendOTPResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 600, resp.ExpiresIn)
}

func TestSendEndpoint_CooldownIs429(t *testing.T) {
	router := newOTPRouter(&mockOTPService{
		sendFunc: func(context.Context, dto.SendOTPRequest) (*dto.SendOTPResponse, error) {
			return nil, models.ErrResendCooldown
		},
	})

	w := postJSON(router, "/api/v1/otp/send", `{"phone":"9876543210"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

// ==============================================
// VERIFY
// ==============================================

func TestVerifyEndpoint_RejectsMalformedCode(t *testing.T) {
	router := newOTPRouter(&mockOTPService{
		verifyFunc: func(context.Context, dto.VerifyOTPRequest) (*dto.VerifyOTPResponse, error) {
			t.Fatal("service must not be called on binding failure")
			return nil, nil
		},
	})

	for _, body := range []string{
		`{"phone":"9876543210"}`,                   // missing
		`{"phone":"9876543210","otp":"12345"}`,     // too short
		`{"phone":"9876543210","otp":"12345a"}`,    // non-numeric
		`{"phone":"9876543210","otp":"1234567"}`,   // too long
	} {
		w := postJSON(router, "/api/v1/otp/verify", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestVerifyEndpoint_ReasonCodes(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"expired", models.ErrCredentialExpired, http.StatusBadRequest, models.ErrCodeOTPExpired},
		{"wrong code", models.ErrCredentialInvalid, http.StatusBadRequest, models.ErrCodeOTPInvalid},
		{"no credential", models.ErrCredentialNotFound, http.StatusBadRequest, models.ErrCodeOTPInvalid},
		{"attempts exhausted", models.ErrTooManyAttempts, http.StatusBadRequest, models.ErrCodeOTPMaxAttempts},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newOTPRouter(&mockOTPService{
				verifyFunc: func(context.Context, dto.VerifyOTPRequest) (*dto.VerifyOTPResponse, error) {
					return nil, tt.serviceErr
				},
			})

			w := postJSON(router, "/api/v1/otp/verify", `{"phone":"9876543210","otp":"123456"}`)
			require.Equal(t, tt.wantStatus, w.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error)
		})
	}
}

func TestVerifyEndpoint_Success(t *testing.T) {
	router := newOTPRouter(&mockOTPService{
		verifyFunc: func(_ context.Context, req dto.VerifyOTPRequest) (*dto.VerifyOTPResponse, error) {
			assert.Equal(t, "123456", req.OTP)
			return &dto.VerifyOTPResponse{Verified: true, AccessToken: "token", TokenType: "Bearer"}, nil
		},
	})

	w := postJSON(router, "/api/v1/otp/verify", `{"phone":"9876543210","otp":"123456"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.VerifyOTPResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Verified)
	assert.Equal(t, "Bearer", resp.TokenType)
}

package dto

// ==============================================
// PAYMENT REQUEST DTOs
// ==============================================

// CreateOrderRequest - amount in the smallest currency unit (paise)
type CreateOrderRequest struct {
	Amount   int64  `json:"amount" binding:"required,min=100"`
	Currency string `json:"currency" binding:"omitempty,len=3"`
	Receipt  string `json:"receipt" binding:"omitempty,max=40"`
}

// VerifyPaymentRequest - the tuple Razorpay checkout hands back to the client
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// ==============================================
// PAYMENT RESPONSE DTOs
// ==============================================

type CreateOrderResponse struct {
	Receipt        string `json:"receipt"`
	GatewayOrderID string `json:"gateway_order_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	KeyID          string `json:"key_id"` // public key for the checkout widget
}

type VerifyPaymentResponse struct {
	Verified bool   `json:"verified"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// Package payment implements the Razorpay signature contracts. An order is
// only ever marked paid after one of these checks passes.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the checkout callback signature:
// hex(HMAC-SHA256(secret, orderID + "|" + paymentID)).
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a client-side checkout callback tuple against the
// gateway-supplied signature in constant time.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	expected := Sign(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignBody computes the webhook signature over the raw request body using the
// webhook-specific secret.
func SignBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhook checks the X-Razorpay-Signature header against the raw body.
func VerifyWebhook(body []byte, signature, secret string) bool {
	expected := SignBody(body, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

package payment

import (
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// Gateway wraps the Razorpay order API.
type Gateway struct {
	client *razorpay.Client
}

func NewGateway(keyID, keySecret string) *Gateway {
	return &Gateway{client: razorpay.NewClient(keyID, keySecret)}
}

// CreateOrder registers an order with the gateway and returns its order id.
// Amount is in the smallest currency unit.
func (g *Gateway) CreateOrder(amount int64, currency, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":          amount,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay order create: %w", err)
	}

	id, ok := body["id"].(string)
	if !ok || id == "" {
		return "", errors.New("razorpay order create: response missing order id")
	}

	return id, nil
}

package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/razorpay/razorpay-go"
)

// TopupGateway creates payment-gateway orders for wallet top-ups. The
// actual payment is authorized on the client; the wallet credit completes
// on the signed confirmation callback.
type TopupGateway interface {
	CreateTopupOrder(ctx context.Context, amount float64, currency, receipt string) (string, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

type RazorpayGateway struct {
	client    *razorpay.Client
	keySecret string
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		client:    razorpay.NewClient(keyID, keySecret),
		keySecret: keySecret,
	}
}

func (g *RazorpayGateway) CreateTopupOrder(_ context.Context, amount float64, currency, receipt string) (string, error) {
	orderData := map[string]interface{}{
		"amount":   int(amount * 100), // smallest currency unit
		"currency": currency,
		"receipt":  receipt,
	}

	order, err := g.client.Order.Create(orderData, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create gateway order: %w", err)
	}

	orderID, ok := order["id"].(string)
	if !ok {
		return "", fmt.Errorf("gateway order response missing id")
	}
	return orderID, nil
}

// VerifySignature checks the HMAC the gateway attaches to a successful
// payment confirmation.
func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/xourcebase/backend/config"
)

var (
	// ErrGatewayNotConfigured is returned when Razorpay credentials are missing.
	ErrGatewayNotConfigured = errors.New("payment gateway not configured")
)

// Gateway abstracts the payment gateway so handlers can be tested without
// network calls.
type Gateway interface {
	// CreateOrder creates a gateway order for the minor-unit amount and
	// returns the gateway order id. Notes are opaque key-value metadata
	// round-tripped back on webhook payloads.
	CreateOrder(amountPaise int64, currency, receipt string, notes map[string]interface{}) (string, error)
	// VerifyPaymentSignature checks the client-reported checkout signature
	// over "order_id|payment_id".
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	// VerifyWebhookSignature checks the signature over the exact raw
	// webhook body bytes.
	VerifyWebhookSignature(body []byte, signature string) bool
	// KeyID returns the public key id the checkout widget needs.
	KeyID() string
}

type razorpayGateway struct {
	client        *razorpay.Client
	keyID         string
	keySecret     string
	webhookSecret string
}

// NewRazorpayGateway wraps the Razorpay SDK with the resolved credentials.
// Construction never fails; operations return ErrGatewayNotConfigured when
// credentials are absent so misconfiguration surfaces at first use.
func NewRazorpayGateway(cfg config.RazorpayConfig) Gateway {
	g := &razorpayGateway{
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
	}
	if cfg.KeyID != "" && cfg.KeySecret != "" {
		g.client = razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	}
	return g
}

func (g *razorpayGateway) CreateOrder(amountPaise int64, currency, receipt string, notes map[string]interface{}) (string, error) {
	if g.client == nil {
		return "", ErrGatewayNotConfigured
	}
	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}
	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("create razorpay order: %w", err)
	}
	id, _ := order["id"].(string)
	if id == "" {
		return "", errors.New("razorpay order response missing id")
	}
	return id, nil
}

func (g *razorpayGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return verifyHMACSHA256([]byte(orderID+"|"+paymentID), signature, g.keySecret)
}

func (g *razorpayGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	return verifyHMACSHA256(body, signature, g.webhookSecret)
}

func (g *razorpayGateway) KeyID() string { return g.keyID }

// verifyHMACSHA256 compares the hex HMAC-SHA256 of payload against the
// received signature in constant time. An empty secret never verifies.
func verifyHMACSHA256(payload []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

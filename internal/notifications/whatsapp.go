package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/xourcebase/backend/config"
)

// ErrWhatsAppNotConfigured is returned when UltraMsg credentials are missing.
var ErrWhatsAppNotConfigured = errors.New("whatsapp messaging not configured")

// WhatsAppClient sends templated messages through the UltraMsg chat API.
type WhatsAppClient struct {
	instanceID string
	token      string
	baseURL    string
	http       *retryablehttp.Client
}

// NewWhatsAppClient creates an UltraMsg client.
func NewWhatsAppClient(cfg config.UltraMsgConfig) *WhatsAppClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.Logger = nil
	return &WhatsAppClient{
		instanceID: cfg.InstanceID,
		token:      cfg.Token,
		baseURL:    cfg.BaseURL,
		http:       rc,
	}
}

type ultraMsgResponse struct {
	Sent    string      `json:"sent"`
	ID      interface{} `json:"id"`
	Error   interface{} `json:"error"`
	Message string      `json:"message"`
}

// SendChat posts a chat message to the given E.164-style number (no plus).
func (w *WhatsAppClient) SendChat(ctx context.Context, to, body string) error {
	if w.instanceID == "" || w.token == "" {
		return ErrWhatsAppNotConfigured
	}

	payload, err := json.Marshal(map[string]interface{}{
		"token":    w.token,
		"to":       to,
		"body":     body,
		"priority": 10,
	})
	if err != nil {
		return fmt.Errorf("encode ultramsg payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages/chat", w.baseURL, w.instanceID)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build ultramsg request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		return fmt.Errorf("call ultramsg: %w", err)
	}
	defer resp.Body.Close()

	var result ultraMsgResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode ultramsg response: %w", err)
	}
	if result.Sent == "true" || result.ID != nil {
		return nil
	}
	return fmt.Errorf("ultramsg rejected message: %v", result.Error)
}

// ConfirmationMessage builds the templated congratulatory message.
func ConfirmationMessage(fullName string, w config.WorkshopConfig) string {
	return fmt.Sprintf(`🎉 *Congratulations %s!* 🎉

You're officially registered for the
*%s* by %s!

📅 *Date*: %s
🕖 *Time*: %s
⏱️ *Duration*: %s
🔗 *Platform*: %s

🎁 *Bonuses Worth ₹6,400* + Recording access included!

Confirmation email & receipt also sent.

See you soon! 🚀
Team XourceBase`,
		fullName, w.Name, w.Host, w.Date, w.Time, w.Duration, w.Platform)
}

package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xourcebase/backend/internal/models"
	"github.com/xourcebase/backend/pkg/response"
	"github.com/xourcebase/backend/pkg/utils"
)

// Webhook event types of interest.
const (
	EventPaymentCaptured = "payment.captured"
	EventOrderPaid       = "order.paid"
	EventPaymentFailed   = "payment.failed"
)

// RegistrationStore is the authoritative write path for confirmed
// registrations. The upsert must be atomic per payment id.
type RegistrationStore interface {
	Upsert(ctx context.Context, reg *models.Registration) error
}

// EventDeduper marks webhook event ids as processed. MarkProcessed reports
// whether this delivery is the first one; Forget releases a marker so a
// redelivery can be reprocessed after a failure. Purely an optimization: the
// upsert keeps redeliveries safe without it.
type EventDeduper interface {
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// WebhookHandler receives Razorpay server-to-server events. This is the only
// path that writes the registration store.
type WebhookHandler struct {
	gateway Gateway
	store   RegistrationStore
	dedup   EventDeduper
	logger  *zap.Logger
}

// NewWebhookHandler creates a webhook handler. dedup may be nil.
func NewWebhookHandler(gateway Gateway, store RegistrationStore, dedup EventDeduper, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{gateway: gateway, store: store, dedup: dedup, logger: logger}
}

// webhookEvent mirrors the Razorpay webhook envelope, trimmed to the fields
// this system consumes.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity *paymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// paymentEntity is the nested payment object.
type paymentEntity struct {
	ID       string        `json:"id"`
	Amount   int64         `json:"amount"` // minor units (paise)
	Currency string        `json:"currency"`
	Status   string        `json:"status"`
	OrderID  string        `json:"order_id"`
	Email    string        `json:"email"`
	Contact  string        `json:"contact"`
	Notes    flexibleNotes `json:"notes"`
}

// flexibleNotes tolerates Razorpay sending an empty array instead of an
// empty object for notes.
type flexibleNotes map[string]interface{}

func (fn *flexibleNotes) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err == nil {
		*fn = m
		return nil
	}
	var arr []interface{}
	if err := json.Unmarshal(data, &arr); err == nil {
		*fn = make(map[string]interface{})
		return nil
	}
	return fmt.Errorf("notes must be either object or array")
}

func (fn flexibleNotes) get(key string) string {
	if fn == nil {
		return ""
	}
	s, _ := fn[key].(string)
	return s
}

// Handle processes POST /webhooks/razorpay. Verification runs over the exact
// raw body bytes before any parsing. Once verified, the response is 200 even
// for ignored or unknown events so the gateway does not retry-storm; 500 is
// reserved for processing faults where a redelivery is wanted.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		response.BadRequest(c, "unable to read request body")
		return
	}
	signature := c.GetHeader("x-razorpay-signature")
	if signature == "" {
		response.BadRequest(c, "no signature")
		return
	}
	if !h.gateway.VerifyWebhookSignature(body, signature) {
		h.logger.Warn("invalid webhook signature",
			zap.Int("body_bytes", len(body)),
			zap.String("client_ip", c.ClientIP()),
		)
		response.BadRequest(c, "invalid signature")
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		response.BadRequest(c, "malformed event payload")
		return
	}

	eventID := c.GetHeader("x-razorpay-event-id")
	if eventID != "" && h.dedup != nil {
		first, err := h.dedup.MarkProcessed(c.Request.Context(), eventID)
		if err != nil {
			// Dedup is best-effort; the upsert makes reprocessing safe.
			h.logger.Warn("event dedup unavailable", zap.Error(err))
		} else if !first {
			c.JSON(http.StatusOK, gin.H{"status": "success"})
			return
		}
	}

	switch event.Event {
	case EventPaymentCaptured, EventOrderPaid:
		h.handleCaptured(c, &event, eventID)
	case EventPaymentFailed:
		if p := event.Payload.Payment.Entity; p != nil {
			// Failed attempts are not recorded.
			h.logger.Info("payment failed", zap.String("payment_id", p.ID))
		}
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	default:
		// Unknown event types are acknowledged for forward compatibility.
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}
}

func (h *WebhookHandler) handleCaptured(c *gin.Context, event *webhookEvent, eventID string) {
	p := event.Payload.Payment.Entity
	if p == nil || p.Status != "captured" {
		// Covers the authorized-but-not-captured race.
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	reg := registrationFromPayment(p)
	if err := h.store.Upsert(c.Request.Context(), reg); err != nil {
		h.logger.Error("registration upsert failed",
			zap.Error(err),
			zap.String("payment_id", p.ID),
		)
		// Release the event marker so the redelivery is not short-circuited
		// as a duplicate before it ever reaches the store.
		if eventID != "" && h.dedup != nil {
			if derr := h.dedup.Forget(c.Request.Context(), eventID); derr != nil {
				h.logger.Warn("could not release event marker",
					zap.String("event_id", eventID),
					zap.Error(derr),
				)
			}
		}
		// 500 makes the gateway redeliver; the upsert absorbs the retry.
		response.Internal(c, "failed to record registration")
		return
	}

	h.logger.Info("payment confirmed",
		zap.String("payment_id", reg.PaymentID),
		zap.String("email", reg.Email),
		zap.String("amount", reg.AmountPaid.String()),
	)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// registrationFromPayment maps a captured payment entity to a registration.
// Registrant fields come from the order notes written at initiation, falling
// back to the payment's own email/contact. The amount is always the captured
// gateway amount, never a client claim.
func registrationFromPayment(p *paymentEntity) *models.Registration {
	fullName := p.Notes.get("name")
	if fullName == "" {
		fullName = "User"
	}
	email := p.Notes.get("email")
	if email == "" {
		email = p.Email
	}
	phone := p.Notes.get("phone")
	if phone == "" {
		phone = p.Contact
	}
	coupon := p.Notes.get("coupon")
	if coupon == "" {
		coupon = models.CouponNone
	}

	return &models.Registration{
		PaymentID:   p.ID,
		FullName:    fullName,
		Email:       email,
		Phone:       utils.NormalizePhone(phone),
		Whatsapp:    p.Notes.get("whatsapp"),
		CurrentRole: p.Notes.get("currentRole"),
		Experience:  p.Notes.get("experience"),
		Coupon:      coupon,
		AmountPaid:  decimal.NewFromInt(p.Amount).Div(decimal.NewFromInt(100)).Round(2),
		Status:      models.RegistrationStatusConfirmed,
	}
}

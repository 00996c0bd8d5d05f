package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xourcebase/backend/config"
	"github.com/xourcebase/backend/internal/models"
)

const (
	testKeySecret     = "test_key_secret"
	testWebhookSecret = "test_webhook_secret"
)

type fakeStore struct {
	upserts  []*models.Registration
	err      error
	failures int
}

func (s *fakeStore) Upsert(_ context.Context, reg *models.Registration) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("store unavailable")
	}
	if s.err != nil {
		return s.err
	}
	s.upserts = append(s.upserts, reg)
	return nil
}

type fakeDeduper struct {
	seen map[string]bool
}

func (d *fakeDeduper) MarkProcessed(_ context.Context, eventID string) (bool, error) {
	if d.seen == nil {
		d.seen = make(map[string]bool)
	}
	if d.seen[eventID] {
		return false, nil
	}
	d.seen[eventID] = true
	return true, nil
}

func (d *fakeDeduper) Forget(_ context.Context, eventID string) error {
	delete(d.seen, eventID)
	return nil
}

func testGateway() Gateway {
	return NewRazorpayGateway(config.RazorpayConfig{
		KeyID:         "rzp_test_key",
		KeySecret:     testKeySecret,
		WebhookSecret: testWebhookSecret,
	})
}

func signBody(body, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(t *testing.T, store *fakeStore, body, signature string) *httptest.ResponseRecorder {
	t.Helper()
	return postWebhookEvent(t, store, nil, body, signature, "")
}

func postWebhookEvent(t *testing.T, store *fakeStore, dedup EventDeduper, body, signature, eventID string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewWebhookHandler(testGateway(), store, dedup, nil)
	router.POST("/webhooks/razorpay", handler.Handle)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", strings.NewReader(body))
	if signature != "" {
		req.Header.Set("x-razorpay-signature", signature)
	}
	if eventID != "" {
		req.Header.Set("x-razorpay-event-id", eventID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const capturedEvent = `{
	"event": "payment.captured",
	"payload": {
		"payment": {
			"entity": {
				"id": "pay_ABC123",
				"amount": 49900,
				"currency": "INR",
				"status": "captured",
				"order_id": "order_XYZ",
				"email": "fallback@example.com",
				"contact": "+911234567890",
				"notes": {
					"name": "Asha Rao",
					"email": "asha@example.com",
					"phone": "+91 98765 43210",
					"whatsapp": "9876543210",
					"currentRole": "QA Engineer",
					"experience": "1-3",
					"coupon": "EARLYBIRD"
				}
			}
		}
	}
}`

func TestWebhookMissingSignature(t *testing.T) {
	store := &fakeStore{}
	rec := postWebhook(t, store, capturedEvent, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.upserts)
}

func TestWebhookTamperedBody(t *testing.T) {
	store := &fakeStore{}
	sig := signBody(capturedEvent, testWebhookSecret)
	tampered := strings.Replace(capturedEvent, "49900", "1", 1)
	rec := postWebhook(t, store, tampered, sig)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.upserts)
}

func TestWebhookWrongSecret(t *testing.T) {
	store := &fakeStore{}
	sig := signBody(capturedEvent, "some_other_secret")
	rec := postWebhook(t, store, capturedEvent, sig)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.upserts)
}

func TestWebhookCapturedPersistsRegistration(t *testing.T) {
	store := &fakeStore{}
	rec := postWebhook(t, store, capturedEvent, signBody(capturedEvent, testWebhookSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())

	require.Len(t, store.upserts, 1)
	reg := store.upserts[0]
	assert.Equal(t, "pay_ABC123", reg.PaymentID)
	assert.Equal(t, "Asha Rao", reg.FullName)
	assert.Equal(t, "asha@example.com", reg.Email)
	assert.Equal(t, "9876543210", reg.Phone)
	assert.Equal(t, "EARLYBIRD", reg.Coupon)
	assert.Equal(t, "confirmed", reg.Status)
	assert.Equal(t, "499", reg.AmountPaid.String())
}

func TestWebhookIdempotentRedelivery(t *testing.T) {
	store := &fakeStore{}
	sig := signBody(capturedEvent, testWebhookSecret)
	for i := 0; i < 3; i++ {
		rec := postWebhook(t, store, capturedEvent, sig)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	// Every delivery reaches the store; the upsert keys on payment id.
	require.Len(t, store.upserts, 3)
	for _, reg := range store.upserts {
		assert.Equal(t, "pay_ABC123", reg.PaymentID)
	}
}

func TestWebhookAuthorizedNotCapturedIgnored(t *testing.T) {
	store := &fakeStore{}
	body := strings.Replace(capturedEvent, `"status": "captured"`, `"status": "authorized"`, 1)
	rec := postWebhook(t, store, body, signBody(body, testWebhookSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ignored"}`, rec.Body.String())
	assert.Empty(t, store.upserts)
}

func TestWebhookPaymentFailedLogsOnly(t *testing.T) {
	store := &fakeStore{}
	body := `{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_FAIL","status":"failed"}}}}`
	rec := postWebhook(t, store, body, signBody(body, testWebhookSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())
	assert.Empty(t, store.upserts)
}

func TestWebhookUnknownEventAcknowledged(t *testing.T) {
	store := &fakeStore{}
	body := `{"event":"refund.created","payload":{}}`
	rec := postWebhook(t, store, body, signBody(body, testWebhookSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())
	assert.Empty(t, store.upserts)
}

func TestWebhookStoreErrorReturns500(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	rec := postWebhook(t, store, capturedEvent, signBody(capturedEvent, testWebhookSecret))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebhookDuplicateEventIDShortCircuits(t *testing.T) {
	store := &fakeStore{}
	dedup := &fakeDeduper{}
	sig := signBody(capturedEvent, testWebhookSecret)

	rec := postWebhookEvent(t, store, dedup, capturedEvent, sig, "evt_dup")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, store.upserts, 1)

	// The exact same event id is acknowledged without touching the store.
	rec = postWebhookEvent(t, store, dedup, capturedEvent, sig, "evt_dup")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, store.upserts, 1)
}

func TestWebhookRedeliveryAfterStoreError(t *testing.T) {
	store := &fakeStore{failures: 1}
	dedup := &fakeDeduper{}
	sig := signBody(capturedEvent, testWebhookSecret)

	rec := postWebhookEvent(t, store, dedup, capturedEvent, sig, "evt_1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, store.upserts)
	// The failed delivery must not leave its marker behind, or the gateway's
	// redelivery would be swallowed as a duplicate and the row lost for good.
	assert.False(t, dedup.seen["evt_1"])

	rec = postWebhookEvent(t, store, dedup, capturedEvent, sig, "evt_1")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, store.upserts, 1)
	assert.Equal(t, "pay_ABC123", store.upserts[0].PaymentID)
	assert.True(t, dedup.seen["evt_1"])
}

func TestWebhookEmptyNotesArray(t *testing.T) {
	store := &fakeStore{}
	body := `{"event":"payment.captured","payload":{"payment":{"entity":{
		"id":"pay_NONOTES","amount":9900,"status":"captured",
		"email":"walkin@example.com","contact":"+919876543210","notes":[]}}}}`
	rec := postWebhook(t, store, body, signBody(body, testWebhookSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, store.upserts, 1)
	reg := store.upserts[0]
	assert.Equal(t, "User", reg.FullName)
	assert.Equal(t, "walkin@example.com", reg.Email)
	assert.Equal(t, "9876543210", reg.Phone)
	assert.Equal(t, models.CouponNone, reg.Coupon)
	assert.Equal(t, "99", reg.AmountPaid.String())
}

func TestAmountDerivation(t *testing.T) {
	tests := []struct {
		paise    int64
		expected string
	}{
		{49900, "499"},
		{100, "1"},
		{9901, "99.01"},
		{1, "0.01"},
		{0, "0"},
	}
	for _, tt := range tests {
		p := &paymentEntity{ID: "pay_X", Amount: tt.paise, Status: "captured"}
		reg := registrationFromPayment(p)
		assert.Equal(t, tt.expected, reg.AmountPaid.String(), "paise=%d", tt.paise)
	}
}

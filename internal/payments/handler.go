package payments

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xourcebase/backend/internal/models"
	"github.com/xourcebase/backend/pkg/response"
)

// OrderRequest is the body for POST /api/payments/order. Amount is in
// currency major units (rupees).
type OrderRequest struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Whatsapp    string `json:"whatsapp"`
	CurrentRole string `json:"currentRole"`
	Experience  string `json:"experience"`
	Coupon      string `json:"coupon"`
}

// VerifyRequest is the checkout result reported by the payment widget.
type VerifyRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// Handler handles order initiation and client-side payment verification.
type Handler struct {
	gateway Gateway
	logger  *zap.Logger
}

// NewHandler creates a payments handler.
func NewHandler(gateway Gateway, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{gateway: gateway, logger: logger}
}

// CreateOrder handles POST /api/payments/order. Validates input, then creates
// a gateway order carrying the registrant fields as notes. Nothing is
// persisted locally; an abandoned checkout leaves no trace.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if req.Amount < 1 {
		response.BadRequest(c, "invalid amount")
		return
	}
	if req.FullName == "" || req.Email == "" || req.Phone == "" {
		response.BadRequest(c, "missing registrant fields")
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}
	receipt := req.Receipt
	if receipt == "" {
		receipt = fmt.Sprintf("workshop_%d", time.Now().UnixMilli())
	}
	coupon := req.Coupon
	if coupon == "" {
		coupon = models.CouponNone
	}

	// The webhook recovers registrant identity from these notes, so no
	// pending-registration row is needed.
	notes := map[string]interface{}{
		"name":        req.FullName,
		"email":       req.Email,
		"phone":       req.Phone,
		"whatsapp":    req.Whatsapp,
		"currentRole": req.CurrentRole,
		"experience":  req.Experience,
		"coupon":      coupon,
	}

	amountPaise := req.Amount * 100
	orderID, err := h.gateway.CreateOrder(amountPaise, currency, receipt, notes)
	if err != nil {
		if errors.Is(err, ErrGatewayNotConfigured) {
			h.logger.Error("razorpay credentials missing")
			response.Internal(c, "payment gateway not configured")
			return
		}
		h.logger.Error("order creation failed", zap.Error(err))
		response.Internal(c, "payment initiation failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"order_id": orderID,
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
		"key_id":   h.gateway.KeyID(),
	})
}

// VerifyPayment handles POST /api/payments/verify. Confirms the checkout
// signature so the browser can show the success page without waiting on the
// webhook. This path is advisory only; it never writes the store.
func (h *Handler) VerifyPayment(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		response.BadRequest(c, "missing payment details")
		return
	}

	if !h.gateway.VerifyPaymentSignature(req.OrderID, req.PaymentID, req.Signature) {
		h.logger.Warn("invalid payment signature",
			zap.String("order_id", req.OrderID),
			zap.String("payment_id", req.PaymentID),
		)
		response.BadRequest(c, "payment verification failed - invalid signature")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "payment verified successfully",
		"payment_id": req.PaymentID,
	})
}

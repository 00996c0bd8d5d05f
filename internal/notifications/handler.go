package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xourcebase/backend/config"
	"github.com/xourcebase/backend/pkg/response"
	"github.com/xourcebase/backend/pkg/storage"
	"github.com/xourcebase/backend/pkg/utils"
)

// ReceiptRequest is the body for POST /api/notifications/receipt.
type ReceiptRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Whatsapp    string `json:"whatsapp"`
	CurrentRole string `json:"currentRole"`
	Experience  string `json:"experience"`
	Coupon      string `json:"coupon"`
	PaymentID   string `json:"paymentId"`
}

// WhatsAppRequest is the body for POST /api/notifications/whatsapp.
type WhatsAppRequest struct {
	Phone    string `json:"phone"`
	FullName string `json:"fullName"`
}

// Handler handles the post-confirmation notification endpoints. Both channels
// are best-effort and fail independently; neither blocks the success page the
// user already sees.
type Handler struct {
	mailer   *Mailer
	whatsapp *WhatsAppClient
	archive  *storage.S3 // nil disables receipt archiving
	workshop config.WorkshopConfig
	logger   *zap.Logger
}

// NewHandler creates a notifications handler.
func NewHandler(mailer *Mailer, whatsapp *WhatsAppClient, archive *storage.S3, workshop config.WorkshopConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{mailer: mailer, whatsapp: whatsapp, archive: archive, workshop: workshop, logger: logger}
}

// SendReceipt handles POST /api/notifications/receipt. Renders the PDF
// receipt, emails it to the registrant, and archives a copy when a bucket is
// configured.
func (h *Handler) SendReceipt(c *gin.Context) {
	var req ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if req.FullName == "" || req.Email == "" {
		response.BadRequest(c, "missing registrant details")
		return
	}

	data := ReceiptData(req)
	pdf, err := BuildReceiptPDF(data, h.workshop)
	if err != nil {
		h.logger.Error("receipt render failed", zap.Error(err))
		response.Internal(c, "failed to generate receipt")
		return
	}

	if h.archive != nil && req.PaymentID != "" {
		go h.archiveReceipt(req.PaymentID, pdf)
	}

	if err := h.mailer.SendReceipt(c.Request.Context(), data, h.workshop, pdf); err != nil {
		h.logger.Error("receipt email failed", zap.Error(err), zap.String("email", req.Email))
		response.Internal(c, "failed to send receipt")
		return
	}

	response.Message(c, "receipt emailed successfully")
}

// SendWhatsApp handles POST /api/notifications/whatsapp.
func (h *Handler) SendWhatsApp(c *gin.Context) {
	var req WhatsAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if req.Phone == "" || req.FullName == "" {
		response.BadRequest(c, "missing phone or name")
		return
	}

	local, err := utils.NormalizeLocalPhone(req.Phone)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidPhone) {
			response.BadRequest(c, err.Error())
			return
		}
		response.BadRequest(c, "invalid phone number")
		return
	}

	msg := ConfirmationMessage(req.FullName, h.workshop)
	if err := h.whatsapp.SendChat(c.Request.Context(), "91"+local, msg); err != nil {
		h.logger.Error("whatsapp send failed", zap.Error(err))
		response.Internal(c, "failed to send whatsapp message")
		return
	}

	response.Message(c, "whatsapp message sent")
}

// archiveReceipt uploads a copy of the receipt, detached from the request
// lifecycle. Failures are logged and otherwise ignored.
func (h *Handler) archiveReceipt(paymentID string, pdf []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := h.archive.ArchiveReceipt(ctx, paymentID, pdf); err != nil {
		h.logger.Warn("receipt archive failed", zap.Error(err), zap.String("payment_id", paymentID))
	}
}

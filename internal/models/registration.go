package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegistrationStatus values. A row only exists once a payment is captured,
// so "confirmed" is the only status written by this system.
const (
	RegistrationStatusConfirmed = "confirmed"
)

// CouponNone is the sentinel stored when no coupon was applied.
const CouponNone = "None"

// Registration is a confirmed workshop registration, keyed by the gateway
// payment id. Written exclusively by the webhook path via an idempotent
// upsert; amount_paid always reflects the captured gateway amount.
type Registration struct {
	ID          uuid.UUID       `json:"id"`
	PaymentID   string          `json:"paymentId"`
	FullName    string          `json:"fullName"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Whatsapp    string          `json:"whatsapp,omitempty"`
	CurrentRole string          `json:"currentRole,omitempty"`
	Experience  string          `json:"experience,omitempty"`
	Coupon      string          `json:"coupon"`
	AmountPaid  decimal.Decimal `json:"amountPaid"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

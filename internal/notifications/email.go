package notifications

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	mail "github.com/wneessen/go-mail"

	"github.com/xourcebase/backend/config"
)

// ErrMailerNotConfigured is returned when no SMTP host is set.
var ErrMailerNotConfigured = errors.New("email transport not configured")

// Mailer sends transactional email over SMTP with STARTTLS.
type Mailer struct {
	cfg config.EmailConfig
}

// NewMailer creates a mailer from SMTP config.
func NewMailer(cfg config.EmailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendReceipt emails the receipt PDF to the registrant.
func (m *Mailer) SendReceipt(ctx context.Context, data ReceiptData, w config.WorkshopConfig, pdf []byte) error {
	if m.cfg.SMTPHost == "" {
		return ErrMailerNotConfigured
	}

	client, err := mail.NewClient(m.cfg.SMTPHost,
		mail.WithPort(m.cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.SMTPUser),
		mail.WithPassword(m.cfg.SMTPPass),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.FromAddress); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(data.Email); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(fmt.Sprintf("Your %s Receipt - %s", w.Name, data.FullName))
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Hi %s,\n\nThank you for registering! Attached is your payment receipt.\n\nSee you on %s!\n\nTeam XourceBase",
		data.FullName, w.Date,
	))
	msg.AddAlternativeString(mail.TypeTextHTML, fmt.Sprintf(
		`<h2>Thank You, %s!</h2>
<p>Your seat is confirmed for the <strong>%s</strong> on <strong>%s</strong>.</p>
<p>Attached is your official receipt.</p>
<p>We can't wait to see you there!</p>
<br>
<p>Best,<br>Team XourceBase</p>`,
		data.FullName, w.Name, w.Date,
	))
	if err := msg.AttachReader(ReceiptFilename(data.FullName), bytes.NewReader(pdf)); err != nil {
		return fmt.Errorf("attach receipt: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send receipt email: %w", err)
	}
	return nil
}

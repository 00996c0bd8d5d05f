package notifications

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/xourcebase/backend/config"
	"github.com/xourcebase/backend/internal/models"
)

// ReceiptData holds the registrant and payment fields rendered on a receipt.
type ReceiptData struct {
	FullName    string
	Email       string
	Phone       string
	Whatsapp    string
	CurrentRole string
	Experience  string
	Coupon      string
	PaymentID   string
}

// DisplayAmount maps a coupon code to the price shown on receipts and
// messages. The server-recorded amount_paid stays gateway-derived; this is
// display only.
func DisplayAmount(coupon string) string {
	switch coupon {
	case "FREEPASS":
		return "FREE"
	case "ONEFOR1":
		return "₹1"
	case "EARLYBIRD", "XOURCE50":
		return "₹49"
	default:
		return "₹99"
	}
}

// ExperienceLabel expands an experience bracket code to its display form.
// Unknown codes pass through unchanged.
func ExperienceLabel(exp string) string {
	switch exp {
	case "0-1":
		return "Fresher (0-1 Year)"
	case "1-3":
		return "1-3 Years"
	case "3-5":
		return "3-5 Years"
	case "5-10":
		return "5-10 Years"
	case "10+":
		return "10+ Years"
	default:
		return exp
	}
}

// BuildReceiptPDF renders the fixed-layout payment receipt and returns the
// document bytes.
func BuildReceiptPDF(data ReceiptData, w config.WorkshopConfig) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Title
	pdf.SetFont("Helvetica", "B", 26)
	pdf.SetTextColor(16, 185, 129)
	pdf.CellFormat(0, 12, "Payment Receipt", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, w.Name, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Success badge
	pdf.SetFillColor(16, 185, 129)
	pdf.RoundedRect(70, pdf.GetY(), 70, 12, 3, "1234", "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 12, "PAYMENT SUCCESSFUL", "", 1, "C", false, 0, "")
	pdf.Ln(8)

	coupon := data.Coupon
	if coupon == "" {
		coupon = models.CouponNone
	}
	couponLabel := coupon
	if coupon == models.CouponNone {
		couponLabel = "No coupon used"
	}
	paymentID := data.PaymentID
	if paymentID == "" {
		paymentID = "N/A"
	}

	rows := [][2]string{
		{"Participant Name", data.FullName},
		{"Email Address", data.Email},
		{"Phone Number", data.Phone},
	}
	if data.Whatsapp != "" {
		rows = append(rows, [2]string{"WhatsApp Number", data.Whatsapp})
	}
	if data.CurrentRole != "" {
		rows = append(rows, [2]string{"Current Role", data.CurrentRole})
	}
	if data.Experience != "" {
		rows = append(rows, [2]string{"Experience", ExperienceLabel(data.Experience)})
	}
	rows = append(rows,
		[2]string{"Coupon Applied", couponLabel},
		[2]string{"Payment ID", paymentID},
		[2]string{"Transaction Date", time.Now().Format("02 January 2006")},
		[2]string{"Workshop Date", w.Date},
		[2]string{"Time", w.Time},
		[2]string{"Duration", w.Duration},
		[2]string{"Platform", w.Platform},
		[2]string{"Amount Paid", pdfSafe(DisplayAmount(coupon))},
		[2]string{"Payment Status", "Success - Confirmed"},
	)

	// Field table
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(16, 185, 129)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(70, 9, "Field", "1", 0, "L", true, 0, "")
	pdf.CellFormat(110, 9, "Details", "1", 1, "L", true, 0, "")

	pdf.SetTextColor(0, 0, 0)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(70, 9, row[0], "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(110, 9, row[1], "1", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	// Bonuses
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(16, 185, 129)
	pdf.CellFormat(0, 8, pdfSafe("Exclusive Bonuses Included (Worth ₹6,400):"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	for _, bonus := range []string{
		"- Full workshop recording access",
		"- Career templates & resume guides",
		"- Lifetime access to bonus resources",
	} {
		pdf.CellFormat(0, 7, bonus, "", 1, "L", false, 0, "")
	}

	// Footer
	pdf.SetY(-30)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 5, "Thank you for choosing XourceBase!", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("For support: %s | %s", w.SupportEmail, w.SupportPhone), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, w.Website, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// pdfSafe rewrites characters the core cp1252 fonts cannot encode.
func pdfSafe(s string) string {
	return strings.ReplaceAll(s, "₹", "Rs ")
}

// ReceiptFilename builds the attachment name for a registrant.
func ReceiptFilename(fullName string) string {
	return "XourceBase_Receipt_" + strings.Join(strings.Fields(fullName), "_") + ".pdf"
}

package checkout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/makahco2025-svg/test3/internal/domain"
)

const (
	CampaignTag      = "*#طلب_جديد_من_المتجر* 🛒"
	CurrencyLabel    = "جنيه"
	NotesPlaceholder = "لا يوجد"
	DefaultRecipient = "201030566078"
)

// LineSummary renders one cart line of the order message.
func LineSummary(line domain.CartLine) string {
	return fmt.Sprintf("%s - الكمية: %d - السعر: %s %s",
		line.Product.Name, line.Quantity, line.Total().StringFixed(2), CurrencyLabel)
}

// ComposeMessage renders the order message handed to the messaging channel.
// Downstream readers parse it, so the layout must not drift.
func ComposeMessage(form domain.Form, lines []domain.CartLine) string {
	notes := form.Notes
	if notes == "" {
		notes = NotesPlaceholder
	}

	summary := make([]string, len(lines))
	for i, line := range lines {
		summary[i] = LineSummary(line)
	}

	var b strings.Builder
	b.WriteString(CampaignTag + "\n")
	b.WriteString("*بيانات العميل:*\n")
	b.WriteString("  - الاسم: " + form.CustomerName + "\n")
	b.WriteString("  - الهاتف: " + form.Phone + "\n")
	b.WriteString("  - العنوان: " + form.Address + "\n")
	b.WriteString("  - الموقع (GPS): " + form.LocationURL + "\n")
	b.WriteString("  - ملاحظات: " + notes + "\n")
	b.WriteString("\n")
	b.WriteString("*تفاصيل الطلبات:*\n")
	b.WriteString(strings.Join(summary, "\n") + "\n")
	b.WriteString("*الإجمالي الكلي:* " + domain.TotalPrice(lines).StringFixed(2) + " " + CurrencyLabel + "\n")
	b.WriteString("\n")
	b.WriteString("برجاء تأكيد الطلب مع العميل. شكراً.")
	return b.String()
}

// DeepLink addresses message to recipient on the messaging channel.
func DeepLink(recipient, message string) string {
	return "https://wa.me/" + recipient + "?text=" + EncodeURIComponent(message)
}

// MapURL points a map service at the given coordinates.
func MapURL(p Position) string {
	return "https://www.google.com/maps?q=" +
		strconv.FormatFloat(p.Latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(p.Longitude, 'f', -1, 64)
}

// EncodeURIComponent percent-encodes every UTF-8 byte of s except
// A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func EncodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

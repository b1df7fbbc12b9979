package render

import (
	"fmt"
	"strings"

	"github.com/vrpoint/giftcert-bot/internal/giftcert"
	"github.com/vrpoint/giftcert-bot/internal/session"
)

// Button is one inline action. Token carries a verb:id intent, URL opens
// an external link; exactly one of the two is set.
type Button struct {
	Label string
	Token string
	URL   string
}

// Row is one row of inline buttons
type Row []Button

// escapeHTML escapes the characters Telegram HTML mode treats specially
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// Truncate bounds a string for inline display, counting runes so
// multi-byte text is never cut mid-character.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func statusEmoji(status string) string {
	s := strings.ToLower(status)
	switch {
	case s == giftcert.StatusUsed:
		return "♻️"
	case s == giftcert.StatusAnnulled:
		return "🚫"
	case strings.Contains(s, "error"):
		return "⚠️"
	default:
		return "✅"
	}
}

func statusLabel(status string) string {
	switch strings.ToLower(status) {
	case giftcert.StatusUsed:
		return "Использован"
	case giftcert.StatusAnnulled:
		return "Аннулирован"
	case giftcert.StatusSent:
		return "Отправлен"
	case giftcert.StatusManual:
		return "Создан вручную"
	case giftcert.StatusSendError:
		return "Ошибка отправки"
	case "":
		return "—"
	default:
		return status
	}
}

// Card renders a certificate as Telegram HTML
func Card(cert *giftcert.Certificate) string {
	source := cert.Source
	if source == "" {
		source = "—"
	}

	lines := []string{
		"🎟 <b>Сертификат</b>",
		fmt.Sprintf("ID: <b>%d</b>", cert.ID.Int64()),
		fmt.Sprintf("Код: <b>%s</b>", escapeHTML(cert.Code)),
		fmt.Sprintf("Сумма: <b>%s BYN</b>", escapeHTML(cert.Amount.String())),
		fmt.Sprintf("Статус: %s <b>%s</b>", statusEmoji(cert.Status), escapeHTML(statusLabel(cert.Status))),
		fmt.Sprintf("Источник: <code>%s</code>", escapeHTML(source)),
	}

	recipientName := strings.TrimSpace(cert.RecipientName)
	recipientEmail := strings.TrimSpace(cert.RecipientEmail)
	if recipientName != "" || recipientEmail != "" {
		lines = append(lines, fmt.Sprintf("Получатель: <b>%s</b> — %s",
			escapeHTML(orDash(recipientName)), escapeHTML(orDash(recipientEmail))))
	}

	donor := strings.TrimSpace(cert.DonorLastname + " " + cert.DonorFirstname)
	if donor != "" {
		lines = append(lines, fmt.Sprintf("Даритель: <b>%s</b>", escapeHTML(donor)))
	}

	timestamps := []struct {
		value string
		title string
	}{
		{cert.CreatedAt, "Создан"},
		{cert.SentAt, "Отправлен"},
		{cert.UsedAt, "Использован"},
		{cert.AnnulledAt, "Аннулирован"},
	}
	for _, ts := range timestamps {
		if v := strings.TrimSpace(ts.value); v != "" {
			lines = append(lines, fmt.Sprintf("%s: <code>%s</code>", ts.title, escapeHTML(v)))
		}
	}

	if oid := cert.OrderID.Int64(); oid != 0 {
		lines = append(lines, fmt.Sprintf("Заказ: <code>#%d</code>", oid))
	}

	return strings.Join(lines, "\n")
}

// ActionMenu builds the inline action rows for a certificate. Use and
// annul are omitted once the certificate is used or annulled; pdf, email
// and delete are always offered.
func ActionMenu(cert *giftcert.Certificate) []Row {
	id := cert.ID.Int64()

	rows := []Row{
		{
			{Label: "📄 PDF", Token: fmt.Sprintf("pdf:%d", id)},
			{Label: "✉️ Email", Token: fmt.Sprintf("email:%d", id)},
		},
	}

	if !cert.Terminal() {
		rows = append(rows, Row{
			{Label: "✅ Использовать", Token: fmt.Sprintf("use:%d", id)},
			{Label: "🚫 Аннулировать", Token: fmt.Sprintf("annul:%d", id)},
		})
	}

	rows = append(rows, Row{
		{Label: "🗑 Удалить", Token: fmt.Sprintf("del:%d", id)},
	})

	return rows
}

// ConfirmDeleteMenu builds the confirm/cancel pair for the two-step
// delete. Both tokens re-encode the certificate id; no pending state is
// kept anywhere.
func ConfirmDeleteMenu(id int64) []Row {
	return []Row{
		{
			{Label: "✅ Да, удалить", Token: fmt.Sprintf("del_yes:%d", id)},
			{Label: "↩️ Отмена", Token: fmt.Sprintf("del_no:%d", id)},
		},
	}
}

// ConfirmDeletePrompt is the question shown above the confirm/cancel pair
func ConfirmDeletePrompt(id int64) string {
	return fmt.Sprintf("Удалить сертификат #%d? Код станет доступен снова.", id)
}

// SheetLinkMenu builds a single external-link button
func SheetLinkMenu(label, url string) []Row {
	return []Row{
		{
			{Label: label, URL: url},
		},
	}
}

// MainMenu returns the reply-keyboard labels for the operator menu
func MainMenu(sheetConfigured bool) [][]string {
	rows := [][]string{
		{LabelNewCert, LabelJournal},
	}
	if sheetConfigured {
		rows = append(rows, []string{LabelOpenSheet})
	}
	return rows
}

// DeliveryMenu returns the reply-keyboard labels for the delivery choice
func DeliveryMenu() [][]string {
	return [][]string{
		{LabelSendPDF, LabelSendEmail},
		{LabelCancel},
	}
}

// CreationSummary shows the collected wizard fields before the
// delivery-choice keyboard.
func CreationSummary(s *session.Session) string {
	donor := strings.TrimSpace(s.DonorFirst + " " + s.DonorLast)
	return fmt.Sprintf(
		"Проверьте данные:\n"+
			"• Сумма: %d BYN\n"+
			"• Получатель: %s\n"+
			"• Даритель: %s\n"+
			"• Email: %s\n\n"+
			"Как отправить?",
		s.Amount, orDash(s.RecipientName), orDash(donor), orDash(s.RecipientEmail),
	)
}

// CreatedCaption is the caption attached to the delivered PDF document
func CreatedCaption(code, amount string) string {
	return fmt.Sprintf("Сертификат создан ✅\nКод: %s\nСумма: %s BYN\nИсточник: telegram", code, amount)
}

// PDFFileName names the delivered certificate document
func PDFFileName(key string) string {
	return fmt.Sprintf("Certificate_%s.pdf", key)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

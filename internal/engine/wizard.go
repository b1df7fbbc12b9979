package engine

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/vrpoint/giftcert-bot/internal/giftcert"
	"github.com/vrpoint/giftcert-bot/internal/render"
	"github.com/vrpoint/giftcert-bot/internal/session"
	"github.com/vrpoint/giftcert-bot/pkg/logger"
)

// skipSentinel maps an optional wizard field to the empty string
const skipSentinel = "-"

// startWizard enters the creation wizard at the amount step
func (e *Engine) startWizard(ctx context.Context, ev Event) []Reply {
	if !e.gate.IsPrivileged(ev.CallerID) {
		return []Reply{message(render.TextAccessDenied)}
	}

	if err := e.store.Put(ctx, ev.CallerID, session.New()); err != nil {
		logger.Error("session create failed", zap.Int64("caller_id", ev.CallerID), zap.Error(err))
		return nil
	}
	return []Reply{closeKeyboardMessage(render.TextPromptAmount)}
}

// cancelWizard discards the collected fields and returns to idle
func (e *Engine) cancelWizard(ctx context.Context, ev Event) []Reply {
	_ = e.store.Delete(ctx, ev.CallerID)
	return []Reply{closeKeyboardMessage(render.TextCancelled)}
}

// wizardStep advances the wizard by exactly one state on valid input and
// stays in place on validation failure. The cancel label works in every
// state.
func (e *Engine) wizardStep(ctx context.Context, log *zap.Logger, ev Event, sess *session.Session) []Reply {
	text := strings.TrimSpace(ev.Text)

	if text == render.LabelCancel {
		return e.cancelWizard(ctx, ev)
	}

	switch sess.State {
	case session.StateAwaitingAmount:
		amount, ok := parseAmount(text)
		if !ok {
			return []Reply{message(render.TextAmountInvalid)}
		}
		sess.Amount = amount
		sess.State = session.StateAwaitingRecipientName
		return e.saveAndPrompt(ctx, ev, sess, message(render.TextPromptRecipientName))

	case session.StateAwaitingRecipientName:
		sess.RecipientName = optionalValue(text)
		sess.State = session.StateAwaitingDonorFirst
		return e.saveAndPrompt(ctx, ev, sess, message(render.TextPromptDonorFirst))

	case session.StateAwaitingDonorFirst:
		sess.DonorFirst = optionalValue(text)
		sess.State = session.StateAwaitingDonorLast
		return e.saveAndPrompt(ctx, ev, sess, message(render.TextPromptDonorLast))

	case session.StateAwaitingDonorLast:
		sess.DonorLast = optionalValue(text)
		sess.State = session.StateAwaitingRecipientEmail
		return e.saveAndPrompt(ctx, ev, sess, message(render.TextPromptRecipientEmail))

	case session.StateAwaitingRecipientEmail:
		sess.RecipientEmail = optionalValue(text)
		sess.State = session.StateAwaitingDeliveryChoice
		return e.saveAndPrompt(ctx, ev, sess,
			keyboardMessage(render.CreationSummary(sess), render.DeliveryMenu()))

	case session.StateAwaitingDeliveryChoice:
		return e.deliveryChoice(ctx, log, ev, sess, text)
	}

	return nil
}

// deliveryChoice validates the terminal step and performs the single
// creation call.
func (e *Engine) deliveryChoice(ctx context.Context, log *zap.Logger, ev Event, sess *session.Session, text string) []Reply {
	var sendEmail bool
	switch text {
	case render.LabelSendPDF:
		sendEmail = false
	case render.LabelSendEmail:
		sendEmail = true
	default:
		return []Reply{keyboardMessage(render.CreationSummary(sess), render.DeliveryMenu())}
	}

	if sendEmail && sess.RecipientEmail == "" {
		return []Reply{message(render.TextEmailMissing)}
	}

	return e.submit(ctx, log, ev, sess, sendEmail)
}

// submit issues exactly one creation call, then tries to deliver the PDF.
// A PDF failure after a successful creation is a partial success: the
// certificate exists upstream and is not rolled back.
func (e *Engine) submit(ctx context.Context, log *zap.Logger, ev Event, sess *session.Session, sendEmail bool) []Reply {
	replies := []Reply{message(render.TextGenerating)}

	req := &giftcert.CreateRequest{
		Amount:         sess.Amount,
		RecipientName:  sess.RecipientName,
		DonorFirstname: sess.DonorFirst,
		DonorLastname:  sess.DonorLast,
		RecipientEmail: sess.RecipientEmail,
		SendEmail:      sendEmail,
		Source:         "telegram",
	}

	// The wizard is over either way; the certificate, if created, lives
	// in the backend.
	defer func() {
		_ = e.store.Delete(ctx, ev.CallerID)
	}()

	res, err := e.api.Create(ctx, req)
	if err != nil {
		log.Warn("certificate creation failed", zap.Error(err))
		replies = append(replies, closeKeyboardMessage("Ошибка API: "+render.Truncate(err.Error(), 500)))
		return replies
	}
	log.Info("certificate created",
		zap.Int64("giftcert_id", res.ID),
		zap.String("code", res.Code),
	)

	amount := res.Amount
	if amount == "" {
		amount = strconv.Itoa(sess.Amount)
	}

	data, err := e.api.DownloadPDF(ctx, giftcert.Ref{ID: res.ID})
	if err != nil {
		log.Warn("certificate created but pdf delivery failed",
			zap.Int64("giftcert_id", res.ID), zap.Error(err))
		replies = append(replies, message("Создан, но не смог отправить PDF: "+render.Truncate(err.Error(), 300)))
	} else {
		key := res.Code
		if key == "" {
			key = strconv.FormatInt(res.ID, 10)
		}
		replies = append(replies, documentReply(render.PDFFileName(key), data,
			render.CreatedCaption(res.Code, amount)))
	}

	if e.sheetURL != "" {
		replies = append(replies, menuMessage(render.TextJournalLink,
			render.SheetLinkMenu("📒 Журнал (Google Таблица)", e.sheetURL)))
	}

	replies = append(replies, closeKeyboardMessage(render.TextDone))
	return replies
}

// saveAndPrompt persists the advanced session and returns the next prompt
func (e *Engine) saveAndPrompt(ctx context.Context, ev Event, sess *session.Session, prompt Reply) []Reply {
	if err := e.store.Put(ctx, ev.CallerID, sess); err != nil {
		logger.Error("session save failed", zap.Int64("caller_id", ev.CallerID), zap.Error(err))
		return []Reply{closeKeyboardMessage(render.TextCancelled)}
	}
	return []Reply{prompt}
}

// parseAmount accepts only a string of decimal digits with value > 0
func parseAmount(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// optionalValue maps the skip sentinel to the empty string
func optionalValue(s string) string {
	if s == skipSentinel {
		return ""
	}
	return s
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/vrpoint/giftcert-bot/internal/giftcert"
	"github.com/vrpoint/giftcert-bot/internal/render"
)

// errBadToken marks an unparseable callback token. The dispatcher fails
// closed: no backend call is made for such tokens.
var errBadToken = errors.New("malformed callback token")

// parseToken splits an inline-button token into its verb and
// certificate id.
func parseToken(token string) (string, int64, error) {
	verb, idRaw, ok := strings.Cut(token, ":")
	if !ok || verb == "" {
		return "", 0, errBadToken
	}
	id, err := strconv.ParseInt(idRaw, 10, 64)
	if err != nil {
		return "", 0, errBadToken
	}
	return verb, id, nil
}

// handleCallback dispatches one inline-button press. The full intent is
// carried in the token; the dispatcher holds no state between presses.
func (e *Engine) handleCallback(ctx context.Context, log *zap.Logger, ev Event) []Reply {
	if !e.gate.IsPrivileged(ev.CallerID) {
		return []Reply{alert(render.TextAccessDenied)}
	}

	verb, id, err := parseToken(ev.Token)
	if err != nil {
		log.Warn("malformed callback token", zap.String("token", ev.Token))
		return []Reply{alert(render.TextBadCallback)}
	}
	log = log.With(zap.String("verb", verb), zap.Int64("giftcert_id", id))

	switch verb {
	case "pdf":
		return e.actionPDF(ctx, log, id)
	case "email":
		return e.actionEmail(ctx, log, id)
	case "use":
		return e.actionUse(ctx, log, id)
	case "annul":
		return e.actionAnnul(ctx, log, id)
	case "del":
		// No backend call yet: both outcomes re-encode the id, so the
		// confirmation survives without server-side pending state.
		return []Reply{
			toast(""),
			menuMessage(render.ConfirmDeletePrompt(id), render.ConfirmDeleteMenu(id)),
		}
	case "del_yes":
		return e.actionDelete(ctx, log, id)
	case "del_no":
		return []Reply{toast(render.TextDeleteCancelled)}
	default:
		log.Warn("unknown callback verb")
		return []Reply{alert(render.TextUnknownAction)}
	}
}

func (e *Engine) actionPDF(ctx context.Context, log *zap.Logger, id int64) []Reply {
	replies := []Reply{toast(render.ToastPreparingPDF)}

	data, err := e.api.DownloadPDF(ctx, giftcert.Ref{ID: id})
	if err != nil {
		log.Warn("pdf download failed", zap.Error(err))
		return append(replies, message("Ошибка PDF: "+render.Truncate(err.Error(), 300)))
	}

	name := render.PDFFileName(strconv.FormatInt(id, 10))
	return append(replies, documentReply(name, data, fmt.Sprintf("PDF сертификата #%d", id)))
}

func (e *Engine) actionEmail(ctx context.Context, log *zap.Logger, id int64) []Reply {
	replies := []Reply{toast(render.ToastSendingEmail)}

	if err := e.api.ResendEmail(ctx, id); err != nil {
		log.Warn("email resend failed", zap.Error(err))
		return append(replies, message("❌ Ошибка отправки: "+render.Truncate(err.Error(), 300)))
	}
	return append(replies, message(fmt.Sprintf("Email отправлен ✅ (сертификат #%d)", id)))
}

func (e *Engine) actionUse(ctx context.Context, log *zap.Logger, id int64) []Reply {
	replies := []Reply{toast(render.ToastMarkingUsed)}

	if err := e.api.Use(ctx, giftcert.Ref{ID: id}, render.NoteUsedViaTelegram); err != nil {
		log.Warn("certificate use failed", zap.Error(err))
		return append(replies, message("❌ Не получилось: "+render.Truncate(err.Error(), 300)))
	}
	return append(replies, e.refreshedCard(ctx, log, id, "Готово ✅"))
}

func (e *Engine) actionAnnul(ctx context.Context, log *zap.Logger, id int64) []Reply {
	replies := []Reply{toast(render.ToastAnnulling)}

	if err := e.api.Annul(ctx, id, render.ReasonAnnulledViaTelegr); err != nil {
		log.Warn("certificate annul failed", zap.Error(err))
		return append(replies, message("❌ Ошибка: "+render.Truncate(err.Error(), 300)))
	}
	return append(replies, e.refreshedCard(ctx, log, id,
		fmt.Sprintf("🚫 Аннулирован ✅ (сертификат #%d)", id)))
}

func (e *Engine) actionDelete(ctx context.Context, log *zap.Logger, id int64) []Reply {
	replies := []Reply{toast(render.ToastDeleting)}

	if err := e.api.Delete(ctx, id); err != nil {
		log.Warn("certificate delete failed", zap.Error(err))
		return append(replies, message("❌ Ошибка удаления: "+render.Truncate(err.Error(), 300)))
	}
	return append(replies, message(fmt.Sprintf("Удалён ✅ (сертификат #%d). Код стал доступен снова.", id)))
}

// refreshedCard re-fetches a certificate after a mutating call so the
// operator sees the new status and the menu without stale actions. A
// fetch failure degrades to the fallback text; the mutation already
// succeeded.
func (e *Engine) refreshedCard(ctx context.Context, log *zap.Logger, id int64, fallback string) Reply {
	cert, err := e.api.Get(ctx, giftcert.Ref{ID: id})
	if err != nil {
		log.Warn("certificate refetch failed", zap.Error(err))
		return message(fallback)
	}
	return e.cardReply(cert)
}

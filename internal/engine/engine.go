package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vrpoint/giftcert-bot/internal/auth"
	"github.com/vrpoint/giftcert-bot/internal/giftcert"
	"github.com/vrpoint/giftcert-bot/internal/render"
	"github.com/vrpoint/giftcert-bot/internal/session"
	"github.com/vrpoint/giftcert-bot/pkg/logger"
	"github.com/vrpoint/giftcert-bot/pkg/metrics"
)

const journalPageSize = 10

// Engine routes inbound events to the creation wizard, the action
// dispatcher and the scan router. It owns no certificate data; every
// display comes straight from the backend.
type Engine struct {
	gate     *auth.Gate
	api      giftcert.API
	store    session.Store
	sheetURL string

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// New creates an engine
func New(gate *auth.Gate, api giftcert.API, store session.Store, sheetURL string) *Engine {
	return &Engine{
		gate:     gate,
		api:      api,
		store:    store,
		sheetURL: sheetURL,
		locks:    make(map[int64]*sync.Mutex),
	}
}

// callerLock returns the mutex serializing all turns of one caller.
// Session read-modify-write is a critical section per caller; events of
// different callers never contend.
func (e *Engine) callerLock(callerID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.locks[callerID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[callerID] = lock
	}
	return lock
}

// Handle processes one inbound event and returns the replies to send.
// A panic while processing is logged and reported; the event is dropped
// without touching other callers' sessions.
func (e *Engine) Handle(ctx context.Context, ev Event) (replies []Reply) {
	log := logger.With(
		zap.String("correlation_id", uuid.NewString()),
		zap.Int64("caller_id", ev.CallerID),
		zap.String("kind", string(ev.Kind)),
	)

	defer func() {
		if r := recover(); r != nil {
			metrics.Event(string(ev.Kind), "panic")
			log.Error("event processing panicked", zap.Any("panic", r))
			if hub := sentry.CurrentHub(); hub.Client() != nil {
				hub.Recover(r)
			}
			replies = nil
		}
	}()

	lock := e.callerLock(ev.CallerID)
	lock.Lock()
	defer lock.Unlock()

	switch ev.Kind {
	case KindCommand:
		replies = e.handleCommand(ctx, log, ev)
	case KindText:
		replies = e.handleText(ctx, log, ev)
	case KindCallback:
		replies = e.handleCallback(ctx, log, ev)
	}

	metrics.Event(string(ev.Kind), "ok")
	return replies
}

// handleCommand routes slash commands
func (e *Engine) handleCommand(ctx context.Context, log *zap.Logger, ev Event) []Reply {
	switch ev.Command {
	case "start":
		return e.handleStart(ctx, log, ev)
	case "new":
		return e.startWizard(ctx, ev)
	case "cancel":
		return e.cancelWizard(ctx, ev)
	case "journal":
		return e.handleJournal(ctx, log, ev)
	case "sheet":
		return e.handleSheet(ev)
	case "pdf":
		return e.handlePDFCommand(ctx, log, ev)
	case "scan":
		return e.handleScan(ctx, log, ev)
	default:
		log.Debug("ignoring unknown command", zap.String("command", ev.Command))
		return nil
	}
}

// handleText feeds wizard steps and resolves free-text menu labels
func (e *Engine) handleText(ctx context.Context, log *zap.Logger, ev Event) []Reply {
	sess, err := e.store.Get(ctx, ev.CallerID)
	if err != nil {
		log.Error("session load failed", zap.Error(err))
		return nil
	}
	if sess != nil && sess.State != session.StateIdle {
		return e.wizardStep(ctx, log, ev, sess)
	}

	switch ev.Text {
	case render.LabelNewCert:
		return e.startWizard(ctx, ev)
	case render.LabelJournal:
		return e.handleJournal(ctx, log, ev)
	case render.LabelOpenSheet:
		if e.sheetURL != "" {
			return e.handleSheet(ev)
		}
	}
	return nil
}

// handleStart implements /start with an optional deep-link payload.
// A payload with a code is a scan: anonymous callers get the promo text
// and nothing else, operators get the certificate card.
func (e *Engine) handleStart(ctx context.Context, log *zap.Logger, ev Event) []Reply {
	if code := ExtractCode(ev.Args); code != "" {
		if !e.gate.IsPrivileged(ev.CallerID) {
			log.Info("anonymous scan", zap.String("code", code))
			return []Reply{message(render.PromoText)}
		}
		return e.showCertByCode(ctx, log, code)
	}

	if !e.gate.IsPrivileged(ev.CallerID) {
		return []Reply{message(render.TextAccessDenied)}
	}

	return []Reply{keyboardMessage(render.TextChooseAction, render.MainMenu(e.sheetURL != ""))}
}

// handleScan implements the explicit /scan command
func (e *Engine) handleScan(ctx context.Context, log *zap.Logger, ev Event) []Reply {
	if ev.Args == "" {
		return []Reply{message(render.TextScanUsage)}
	}
	code := ExtractCode(ev.Args)
	if code == "" {
		return []Reply{message(render.TextCodeRequired)}
	}

	if !e.gate.IsPrivileged(ev.CallerID) {
		log.Info("anonymous scan", zap.String("code", code))
		return []Reply{message(render.PromoText)}
	}
	return e.showCertByCode(ctx, log, code)
}

// handleJournal lists the most recent certificates, one card per message
func (e *Engine) handleJournal(ctx context.Context, log *zap.Logger, ev Event) []Reply {
	if !e.gate.IsPrivileged(ev.CallerID) {
		return []Reply{message(render.TextAccessDenied)}
	}

	rows, err := e.api.List(ctx, 0, journalPageSize)
	if err != nil {
		log.Warn("journal listing failed", zap.Error(err))
		return []Reply{message("Ошибка API: " + render.Truncate(err.Error(), 300))}
	}
	if len(rows) == 0 {
		return []Reply{message(render.TextJournalEmpty)}
	}

	replies := []Reply{message(render.TextJournalHeader)}
	for i := range rows {
		replies = append(replies, e.cardReply(&rows[i]))
	}
	if e.sheetURL != "" {
		replies = append(replies, menuMessage(render.TextSheetExtra,
			render.SheetLinkMenu(render.LabelOpenSheet, e.sheetURL)))
	}
	return replies
}

// handleSheet shows the external journal spreadsheet link
func (e *Engine) handleSheet(ev Event) []Reply {
	if !e.gate.IsPrivileged(ev.CallerID) {
		return []Reply{message(render.TextAccessDenied)}
	}
	if e.sheetURL == "" {
		return []Reply{message(render.TextSheetMissing)}
	}
	return []Reply{menuMessage(render.TextSheetPrompt,
		render.SheetLinkMenu(render.LabelOpenSheetShort, e.sheetURL))}
}

// handlePDFCommand fetches the certificate document by code
func (e *Engine) handlePDFCommand(ctx context.Context, log *zap.Logger, ev Event) []Reply {
	if !e.gate.IsPrivileged(ev.CallerID) {
		return []Reply{message(render.TextAccessDenied)}
	}
	if ev.Args == "" {
		return []Reply{message(render.TextPDFUsage)}
	}
	code := ExtractCode(ev.Args)
	if code == "" {
		return []Reply{message(render.TextCodeRequired)}
	}

	data, err := e.api.DownloadPDF(ctx, giftcert.Ref{Code: code})
	if err != nil {
		log.Warn("pdf download failed", zap.String("code", code), zap.Error(err))
		return []Reply{message("Ошибка: " + render.Truncate(err.Error(), 300))}
	}
	return []Reply{documentReply(render.PDFFileName(code), data, "PDF по коду "+code)}
}

// showCertByCode fetches one certificate and renders its card with the
// action menu. Only reachable for privileged callers.
func (e *Engine) showCertByCode(ctx context.Context, log *zap.Logger, code string) []Reply {
	cert, err := e.api.Get(ctx, giftcert.Ref{Code: code})
	if err != nil {
		log.Warn("certificate lookup failed", zap.String("code", code), zap.Error(err))
		return []Reply{message(fmt.Sprintf("❌ Сертификат не найден.\nКод: %s\n\n%s",
			code, render.Truncate(err.Error(), 300)))}
	}
	return []Reply{e.cardReply(cert)}
}

// cardReply renders a certificate card with its action menu
func (e *Engine) cardReply(cert *giftcert.Certificate) Reply {
	return htmlMessage(render.Card(cert), render.ActionMenu(cert))
}

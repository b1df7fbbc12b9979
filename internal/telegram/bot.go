package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/vrpoint/giftcert-bot/internal/engine"
	"github.com/vrpoint/giftcert-bot/internal/render"
	"github.com/vrpoint/giftcert-bot/pkg/logger"
)

// Bot adapts Telegram long polling to the engine's event model. It owns
// no conversation logic: updates go in as events, replies come back out.
type Bot struct {
	api    *tgbotapi.BotAPI
	engine *engine.Engine
}

// New authenticates against the Telegram Bot API
func New(token string, eng *engine.Engine) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{api: api, engine: eng}, nil
}

// Username returns the authenticated bot account name
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run polls for updates until the context is cancelled. Each update is
// processed in its own goroutine; the engine serializes per caller.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30

	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate converts one update, runs the engine and delivers replies
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	ev, callbackID, ok := toEvent(update)
	if !ok {
		return
	}

	replies := b.engine.Handle(ctx, ev)
	for _, reply := range replies {
		b.send(ev.ChatID, callbackID, reply)
	}
}

// toEvent maps a Telegram update onto an engine event
func toEvent(update tgbotapi.Update) (engine.Event, string, bool) {
	if cb := update.CallbackQuery; cb != nil {
		ev := engine.Event{
			Kind:     engine.KindCallback,
			CallerID: cb.From.ID,
			Token:    cb.Data,
		}
		if cb.Message != nil {
			ev.ChatID = cb.Message.Chat.ID
		}
		return ev, cb.ID, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return engine.Event{}, "", false
	}

	ev := engine.Event{
		CallerID: msg.From.ID,
		ChatID:   msg.Chat.ID,
	}
	if msg.IsCommand() {
		ev.Kind = engine.KindCommand
		ev.Command = msg.Command()
		ev.Args = msg.CommandArguments()
	} else {
		ev.Kind = engine.KindText
		ev.Text = msg.Text
	}
	return ev, "", true
}

// send delivers one engine reply through the Bot API
func (b *Bot) send(chatID int64, callbackID string, reply engine.Reply) {
	switch reply.Kind {
	case engine.ReplyCallback:
		if callbackID == "" {
			return
		}
		var cb tgbotapi.CallbackConfig
		if reply.Alert {
			cb = tgbotapi.NewCallbackWithAlert(callbackID, reply.Text)
		} else {
			cb = tgbotapi.NewCallback(callbackID, reply.Text)
		}
		if _, err := b.api.Request(cb); err != nil {
			logger.Warn("callback answer failed", zap.Error(err))
		}

	case engine.ReplyDocument:
		if reply.Document == nil {
			return
		}
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
			Name:  reply.Document.Name,
			Bytes: reply.Document.Data,
		})
		doc.Caption = reply.Document.Caption
		if _, err := b.api.Send(doc); err != nil {
			logger.Warn("document send failed", zap.Error(err))
		}

	default:
		msg := tgbotapi.NewMessage(chatID, reply.Text)
		if reply.HTML {
			msg.ParseMode = tgbotapi.ModeHTML
		}
		if markup := replyMarkup(reply); markup != nil {
			msg.ReplyMarkup = markup
		}
		if _, err := b.api.Send(msg); err != nil {
			logger.Warn("message send failed", zap.Error(err))
		}
	}
}

// replyMarkup builds the keyboard attachment for a message reply
func replyMarkup(reply engine.Reply) interface{} {
	if len(reply.Menu) > 0 {
		return inlineKeyboard(reply.Menu)
	}
	if len(reply.Keyboard) > 0 {
		var rows [][]tgbotapi.KeyboardButton
		for _, labels := range reply.Keyboard {
			var row []tgbotapi.KeyboardButton
			for _, label := range labels {
				row = append(row, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, row)
		}
		kb := tgbotapi.NewReplyKeyboard(rows...)
		kb.ResizeKeyboard = true
		return kb
	}
	if reply.RemoveKeyboard {
		return tgbotapi.NewRemoveKeyboard(false)
	}
	return nil
}

// inlineKeyboard converts render rows to Telegram inline buttons
func inlineKeyboard(menu []render.Row) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, row := range menu {
		var buttons []tgbotapi.InlineKeyboardButton
		for _, btn := range row {
			if btn.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(btn.Label, btn.URL))
			} else {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Token))
			}
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

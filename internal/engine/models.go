package engine

import "github.com/vrpoint/giftcert-bot/internal/render"

// EventKind classifies an inbound user event
type EventKind string

// Event kinds delivered by the transport
const (
	KindCommand  EventKind = "command"
	KindText     EventKind = "text"
	KindCallback EventKind = "callback"
)

// Event is one inbound user turn, already stripped of transport detail.
// Command events carry Command and Args, text events carry Text, and
// callback events carry the raw button Token.
type Event struct {
	Kind     EventKind
	CallerID int64
	ChatID   int64
	Command  string
	Args     string
	Text     string
	Token    string
}

// ReplyKind classifies an outbound reply
type ReplyKind int

// Reply kinds the transport knows how to deliver
const (
	ReplyMessage ReplyKind = iota
	ReplyDocument
	ReplyCallback
)

// Document is a file attachment reply
type Document struct {
	Name    string
	Data    []byte
	Caption string
}

// Reply is one outbound item. ReplyCallback answers the pressed button
// (toast, or blocking alert when Alert is set); the other kinds produce
// chat messages.
type Reply struct {
	Kind ReplyKind
	Text string
	HTML bool

	// Menu is an inline keyboard attached to the message
	Menu []render.Row
	// Keyboard is a reply keyboard shown under the input field
	Keyboard [][]string
	// RemoveKeyboard hides a previously shown reply keyboard
	RemoveKeyboard bool

	Document *Document
	Alert    bool
}

func message(text string) Reply {
	return Reply{Kind: ReplyMessage, Text: text}
}

func htmlMessage(text string, menu []render.Row) Reply {
	return Reply{Kind: ReplyMessage, Text: text, HTML: true, Menu: menu}
}

func menuMessage(text string, menu []render.Row) Reply {
	return Reply{Kind: ReplyMessage, Text: text, Menu: menu}
}

func keyboardMessage(text string, keyboard [][]string) Reply {
	return Reply{Kind: ReplyMessage, Text: text, Keyboard: keyboard}
}

func closeKeyboardMessage(text string) Reply {
	return Reply{Kind: ReplyMessage, Text: text, RemoveKeyboard: true}
}

func toast(text string) Reply {
	return Reply{Kind: ReplyCallback, Text: text}
}

func alert(text string) Reply {
	return Reply{Kind: ReplyCallback, Text: text, Alert: true}
}

func documentReply(name string, data []byte, caption string) Reply {
	return Reply{
		Kind:     ReplyDocument,
		Document: &Document{Name: name, Data: data, Caption: caption},
	}
}

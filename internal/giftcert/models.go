package giftcert

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Certificate statuses as reported by the backend
const (
	StatusManual    = "manual"
	StatusSent      = "sent"
	StatusSendError = "send_error"
	StatusUsed      = "used"
	StatusAnnulled  = "annulled"
)

// FlexInt64 decodes backend identifiers that arrive either as JSON
// numbers or as quoted strings.
type FlexInt64 int64

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*f = FlexInt64(v)
	return nil
}

// Int64 returns the plain integer value
func (f FlexInt64) Int64() int64 { return int64(f) }

// FlexString decodes backend values that arrive either as JSON strings
// or as bare numbers, keeping their textual form for display.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	*f = FlexString(data)
	return nil
}

// String returns the textual value
func (f FlexString) String() string { return string(f) }

// Certificate is the backend-owned gift certificate record. The bot never
// stores it; every display re-fetches or reuses a just-returned payload.
type Certificate struct {
	ID             FlexInt64  `json:"giftcert_id"`
	Code           string     `json:"code"`
	Amount         FlexString `json:"amount"`
	Status         string     `json:"status"`
	RecipientName  string     `json:"recipient_name"`
	RecipientEmail string     `json:"recipient_email"`
	DonorFirstname string     `json:"firstname"`
	DonorLastname  string     `json:"lastname"`
	Source         string     `json:"source"`
	CreatedAt      string     `json:"created_at"`
	SentAt         string     `json:"sent_at"`
	UsedAt         string     `json:"used_at"`
	AnnulledAt     string     `json:"annulled_at"`
	OrderID        FlexInt64  `json:"order_id"`
}

// Terminal reports whether the certificate can no longer be used or annulled
func (c *Certificate) Terminal() bool {
	return c.Status == StatusUsed || c.Status == StatusAnnulled
}

// CreateRequest is the payload for certificate creation
type CreateRequest struct {
	Amount         int    `json:"amount"`
	RecipientName  string `json:"recipient_name"`
	DonorFirstname string `json:"firstname"`
	DonorLastname  string `json:"lastname"`
	RecipientEmail string `json:"recipient_email"`
	SendEmail      bool   `json:"send_email"`
	Source         string `json:"source"`
}

// CreateResult carries the fields the bot needs after a successful creation
type CreateResult struct {
	ID     int64
	Code   string
	Amount string
}

// Ref addresses a certificate either by numeric id or by human-facing code.
// Exactly one of the two is expected to be set.
type Ref struct {
	ID   int64
	Code string
}

// apiEnvelope is the common response shape of every backend endpoint
type apiEnvelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Cert    json.RawMessage `json:"cert"`
	Rows    json.RawMessage `json:"rows"`

	GiftcertID FlexInt64  `json:"giftcert_id"`
	Code       string     `json:"code"`
	Amount     FlexString `json:"amount"`
}

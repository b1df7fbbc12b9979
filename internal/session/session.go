package session

// State is the position of a caller inside the creation wizard
type State int

// Wizard states, in the strict order the wizard walks through them
const (
	StateIdle State = iota
	StateAwaitingAmount
	StateAwaitingRecipientName
	StateAwaitingDonorFirst
	StateAwaitingDonorLast
	StateAwaitingRecipientEmail
	StateAwaitingDeliveryChoice
)

// Session is the per-caller ephemeral wizard state. It lives only while
// a certificate is being collected and is cleared on cancel or submit.
type Session struct {
	State          State  `json:"state"`
	Amount         int    `json:"amount"`
	RecipientName  string `json:"recipient_name"`
	DonorFirst     string `json:"donor_first"`
	DonorLast      string `json:"donor_last"`
	RecipientEmail string `json:"recipient_email"`
}

// New returns a fresh session positioned at the first wizard step
func New() *Session {
	return &Session{State: StateAwaitingAmount}
}

package notification

import "time"

// Notification types
const (
	TypeNewRegistration = "new-registration"
	TypePaymentPending  = "payment-pending"
	TypePaymentReceived = "payment-received"
)

var AllTypes = []string{TypeNewRegistration, TypePaymentPending, TypePaymentReceived}

// Notification is an admin-facing inbox entry. Only the read flag is ever mutated.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	StudentID string    `json:"student_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

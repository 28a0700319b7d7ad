package payment

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sanaa/core"
)

// Payment methods
const (
	MethodCash         = "cash"
	MethodCard         = "card"
	MethodBankTransfer = "bank-transfer"
	MethodUPI          = "upi"
	MethodOther        = "other"
)

var AllMethods = []string{MethodCash, MethodCard, MethodBankTransfer, MethodUPI, MethodOther}

var methodTag = "paymentmethod"

// InitValidators registers this package's custom validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterEnumValidation(validate, translator, methodTag, AllMethods)
}

// Payment is one ledger entry. Entries are append-only; corrections are made
// by recording another entry, never by editing.
type Payment struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Amount    int       `json:"amount"` // whole rupees
	Date      time.Time `json:"date"`   // UTC, set at insert; listings order by it
	Method    string    `json:"method"`
	Notes     string    `json:"notes,omitempty"`

	CreatedAt  time.Time `json:"created_at"` // UTC
	RecordedBy string    `json:"recorded_by,omitempty"`
}

// NewPayment contains information needed to record a payment.
type NewPayment struct {
	StudentID string `json:"student_id" validate:"required"`
	Amount    int    `json:"amount" validate:"required,min=1"`
	Method    string `json:"method" validate:"required,paymentmethod"`
	Notes     string `json:"notes"`
}

func (np *NewPayment) Validate() error {
	np.Method = core.CleanString(np.Method, true /* lower */)
	np.Notes = core.CleanString(np.Notes)
	return core.Validate.Struct(np)
}

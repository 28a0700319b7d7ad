package student

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sanaa/core"
)

// Lifecycle statuses
const (
	StatusRegistered = "registered"
	StatusActive     = "active"
	StatusInactive   = "inactive"
	StatusCompleted  = "completed"
)

// Fee types
const (
	FeeTypeSingle       = "single"
	FeeTypeInstallments = "installments"
)

// Genders
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

var (
	AllStatuses = []string{StatusRegistered, StatusActive, StatusInactive, StatusCompleted}
	AllFeeTypes = []string{FeeTypeSingle, FeeTypeInstallments}
	AllGenders  = []string{GenderMale, GenderFemale, GenderOther}
)

// custom validation tags
var (
	statusTag  = "studentstatus"
	feeTypeTag = "feetype"
	genderTag  = "gender"
)

// InitValidators registers this package's custom validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterEnumValidation(validate, translator, statusTag, AllStatuses)
	core.RegisterEnumValidation(validate, translator, feeTypeTag, AllFeeTypes)
	core.RegisterEnumValidation(validate, translator, genderTag, AllGenders)
}

// Student is one registered child. AmountPaid is derived from the payment
// ledger and maintained by the payment write path, never user-entered.
type Student struct {
	ID string `json:"id"`

	// Child
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	DateOfBirth  string `json:"date_of_birth"` // YYYY-MM-DD
	Age          int    `json:"age"`
	Grade        string `json:"grade"`
	Gender       string `json:"gender,omitempty"`
	ArtworkURL   string `json:"artwork_url,omitempty"`
	MedicalNotes string `json:"medical_notes,omitempty"`

	// Parent
	ParentName  string `json:"parent_name"`
	ParentEmail string `json:"parent_email"`
	ParentPhone string `json:"parent_phone"`
	Address     string `json:"address"`

	// Class preference
	PreferredTiming string `json:"preferred_timing"`
	ReferralSource  string `json:"referral_source"`

	// Fees & lifecycle
	TotalFee   int    `json:"total_fee"`
	FeeType    string `json:"fee_type"`
	AmountPaid int    `json:"amount_paid"`
	Status     string `json:"status"`

	// Audit
	CreatedAt time.Time  `json:"created_at"` // UTC
	UpdatedAt time.Time  `json:"updated_at"` // UTC
	CreatedBy string     `json:"created_by,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Balance is the outstanding fee amount.
func (s Student) Balance() int {
	return s.TotalFee - s.AmountPaid
}

func (s Student) IsDeleted() bool {
	return s.DeletedAt != nil
}

// Registration contains information submitted through the public registration form.
type Registration struct {
	FirstName    string `json:"first_name" form:"first_name" validate:"required"`
	LastName     string `json:"last_name" form:"last_name" validate:"required"`
	DateOfBirth  string `json:"date_of_birth" form:"date_of_birth" validate:"required"`
	Age          int    `json:"age" form:"age" validate:"required,min=1"`
	Grade        string `json:"grade" form:"grade" validate:"required"`
	Gender       string `json:"gender" form:"gender" validate:"omitempty,gender"`
	MedicalNotes string `json:"medical_notes" form:"medical_notes"`

	ParentName  string `json:"parent_name" form:"parent_name" validate:"required"`
	ParentEmail string `json:"parent_email" form:"parent_email" validate:"required,email"`
	ParentPhone string `json:"parent_phone" form:"parent_phone" validate:"required"`
	Address     string `json:"address" form:"address" validate:"required"`

	PreferredTiming string `json:"preferred_timing" form:"preferred_timing" validate:"required"`
	ReferralSource  string `json:"referral_source" form:"referral_source"`

	TotalFee int    `json:"total_fee" form:"total_fee" validate:"omitempty,min=0"`
	FeeType  string `json:"fee_type" form:"fee_type" validate:"omitempty,feetype"`
}

func (reg *Registration) Validate() error {
	reg.FirstName = core.CleanString(reg.FirstName)
	reg.LastName = core.CleanString(reg.LastName)
	reg.ParentName = core.CleanString(reg.ParentName)
	reg.ParentEmail = core.CleanString(reg.ParentEmail, true /* lower */)
	reg.ParentPhone = core.CleanString(reg.ParentPhone)
	return core.Validate.Struct(reg)
}

// UpdateStudent defines what may be modified on an existing Student.
// Zero-valued fields are left untouched.
type UpdateStudent struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	DateOfBirth  string `json:"date_of_birth"`
	Age          *int   `json:"age" validate:"omitempty,min=1"`
	Grade        string `json:"grade"`
	Gender       string `json:"gender" validate:"omitempty,gender"`
	ArtworkURL   string `json:"artwork_url"`
	MedicalNotes string `json:"medical_notes"`

	ParentName  string `json:"parent_name"`
	ParentEmail string `json:"parent_email" validate:"omitempty,email"`
	ParentPhone string `json:"parent_phone"`
	Address     string `json:"address"`

	PreferredTiming string `json:"preferred_timing"`
	ReferralSource  string `json:"referral_source"`

	TotalFee *int   `json:"total_fee" validate:"omitempty,min=0"`
	FeeType  string `json:"fee_type" validate:"omitempty,feetype"`
	Status   string `json:"status" validate:"omitempty,studentstatus"`
}

func (us *UpdateStudent) Validate() error {
	us.FirstName = core.CleanString(us.FirstName)
	us.LastName = core.CleanString(us.LastName)
	us.ParentEmail = core.CleanString(us.ParentEmail, true /* lower */)
	return core.Validate.Struct(us)
}

// Sort fields accepted by QueryFilter.
const (
	SortByCreatedAt  = "created_at"
	SortByFirstName  = "first_name"
	SortByAmountPaid = "amount_paid"
)

// QueryFilter narrows and orders student listings. Server-side predicates
// (status, timing, created range) are applied by the repository together with
// the ordering and page size; Search is applied afterwards by the service as
// a case-insensitive substring match on first name, last name, parent email
// and parent phone. A search can therefore return fewer than PageSize rows
// even when more matches exist beyond the fetched page.
type QueryFilter struct {
	Search          string    `query:"search"`
	Status          string    `query:"status"`
	PreferredTiming string    `query:"timing"`
	CreatedFrom     time.Time `query:"created_from"`
	CreatedTo       time.Time `query:"created_to"`
	SortBy          string    `query:"sort_by"`    // created_at | first_name | amount_paid
	SortOrder       string    `query:"sort_order"` // asc | desc
	PageSize        int       `query:"page_size"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.PreferredTiming = core.CleanString(qf.PreferredTiming)
}

// Ordering resolves the filter's sort request to a whitelisted DB ordering;
// anything unrecognized falls back to creation date, newest first.
func (qf *QueryFilter) Ordering() core.DBOrdering {
	field := SortByCreatedAt
	switch qf.SortBy {
	case SortByFirstName, SortByAmountPaid:
		field = qf.SortBy
	}
	return core.DBOrdering{Field: field, Ascending: qf.SortOrder == "asc"}
}

// Stats are dashboard aggregates over all non-deleted students.
type Stats struct {
	Total        int `json:"total"`
	TotalPaid    int `json:"total_paid"`
	TotalPending int `json:"total_pending"`
	TodayCount   int `json:"today_count"`
	WeekCount    int `json:"week_count"`
	MonthCount   int `json:"month_count"`
}

package activity

import "time"

// Audited actions
const (
	ActionCreated      = "created"
	ActionUpdated      = "updated"
	ActionDeleted      = "deleted"
	ActionRoleAdded    = "role-added"
	ActionRoleRemoved  = "role-removed"
	ActionPaymentAdded = "payment-added"
)

// Audited entity types
const (
	EntityStudent = "student"
	EntityRole    = "role"
	EntityPayment = "payment"
)

// Entry is an append-only audit trail record.
type Entry struct {
	ID          string                 `json:"id"`
	Action      string                 `json:"action"`
	EntityType  string                 `json:"entity_type"`
	EntityID    string                 `json:"entity_id"`
	PerformedBy string                 `json:"performed_by"`
	Details     map[string]interface{} `json:"details,omitempty"`
	Timestamp   time.Time              `json:"timestamp"` // UTC
}

package role

import (
	"time"

	"github.com/trezcool/sanaa/core"
)

// RoleAdmin is the only capability currently granted via roles.
const RoleAdmin = "admin"

// SystemActor marks records created by the app itself rather than an admin.
const SystemActor = "system"

// Role grants the admin capability to an email address.
// Email is the uniqueness key and is always stored lower-cased.
type Role struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	AddedBy   string    `json:"added_by"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewRole contains information needed to grant a new admin role.
type NewRole struct {
	Email string `json:"email" validate:"required,email"`
}

func (nr *NewRole) Validate() error {
	nr.Email = core.CleanString(nr.Email, true /* lower */)
	return core.Validate.Struct(nr)
}

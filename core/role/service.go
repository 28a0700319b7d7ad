package role

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/sanaa/core"
	"github.com/trezcool/sanaa/core/activity"
)

var (
	ErrNotFound   = errors.New("role not found")
	ErrRoleExists = errors.New("an admin role already exists for this email")
)

type (
	Repository interface {
		CreateRole(ctx context.Context, rl Role) (Role, error)
		GetRoleByEmail(ctx context.Context, email string) (Role, error)
		// QueryAllRoles returns all roles, newest first.
		QueryAllRoles(ctx context.Context) ([]Role, error)
		CountRoles(ctx context.Context) (int, error)
		DeleteRoleByEmail(ctx context.Context, email string) error
	}

	Service struct {
		repo        Repository
		activitySvc *activity.Service
		logger      core.Logger
		conf        *core.Config
	}
)

func NewService(repo Repository, activitySvc *activity.Service, logger core.Logger, conf *core.Config) *Service {
	return &Service{repo: repo, activitySvc: activitySvc, logger: logger, conf: conf}
}

// ResolveAdmin reports whether the given email holds the admin capability.
func (svc *Service) ResolveAdmin(ctx context.Context, email string) (bool, error) {
	email = core.CleanString(email, true /* lower */)
	if email == "" {
		return false, nil
	}
	if _, err := svc.repo.GetRoleByEmail(ctx, email); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(err, "finding role by email")
	}
	return true, nil
}

// BootstrapFirstAdmin grants the very first admin role on first sign-in:
// if no roles exist yet and the email matches the configured initial admin
// address, a role is created with AddedBy="system". Otherwise it falls
// through to ResolveAdmin.
//
// Concurrent first sign-ins by the configured admin can both observe an
// empty role collection and both insert; the duplicate rows are harmless.
func (svc *Service) BootstrapFirstAdmin(ctx context.Context, email string) (bool, error) {
	email = core.CleanString(email, true /* lower */)
	if email == "" {
		return false, nil
	}

	count, err := svc.repo.CountRoles(ctx)
	if err != nil {
		return false, pkgerrors.Wrap(err, "counting roles")
	}
	if count == 0 && svc.conf.InitialAdminEmail != "" && email == svc.conf.InitialAdminEmail {
		rl := Role{
			Email:     email,
			Role:      RoleAdmin,
			AddedBy:   SystemActor,
			CreatedAt: time.Now().UTC(),
		}
		if _, err = svc.repo.CreateRole(ctx, rl); err != nil {
			return false, pkgerrors.Wrap(err, "creating initial admin role")
		}
		return true, nil
	}
	return svc.ResolveAdmin(ctx, email)
}

// Add grants the admin role to an email. Duplicates are rejected with a validation error.
func (svc *Service) Add(ctx context.Context, nr NewRole, addedBy string) (Role, error) {
	if _, err := svc.repo.GetRoleByEmail(ctx, nr.Email); err == nil {
		return Role{}, core.NewValidationError(ErrRoleExists, core.FieldError{Field: "email", Error: ErrRoleExists.Error()})
	} else if !errors.Is(err, ErrNotFound) {
		return Role{}, pkgerrors.Wrap(err, "checking role uniqueness")
	}

	rl := Role{
		Email:     nr.Email,
		Role:      RoleAdmin,
		AddedBy:   addedBy,
		CreatedAt: time.Now().UTC(),
	}
	rl, err := svc.repo.CreateRole(ctx, rl)
	if err != nil {
		return Role{}, pkgerrors.Wrap(err, "creating role")
	}

	svc.logAudit(ctx, activity.ActionRoleAdded, rl.ID, addedBy, map[string]interface{}{"email": rl.Email})
	return rl, nil
}

// Remove revokes the admin role from an email.
func (svc *Service) Remove(ctx context.Context, email, performedBy string) error {
	email = core.CleanString(email, true /* lower */)
	if err := svc.repo.DeleteRoleByEmail(ctx, email); err != nil {
		return pkgerrors.Wrap(err, "deleting role")
	}
	svc.logAudit(ctx, activity.ActionRoleRemoved, email, performedBy, nil)
	return nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Role, error) {
	return svc.repo.QueryAllRoles(ctx)
}

// logAudit records the audit trail best-effort; failures are logged, never propagated.
func (svc *Service) logAudit(ctx context.Context, action, entityID, performedBy string, details map[string]interface{}) {
	if svc.activitySvc == nil {
		return
	}
	if _, err := svc.activitySvc.Log(ctx, action, activity.EntityRole, entityID, performedBy, details); err != nil {
		svc.logger.Warn("logging role activity: "+err.Error(), err)
	}
}

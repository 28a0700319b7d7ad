package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sanaa/core/role"
)

type roleApi struct {
	svc *role.Service
}

func registerRoleAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := roleApi{svc: deps.RoleSvc}

	rg := g.Group("/roles", jwt, adminMiddleware())
	rg.GET("", api.query)
	rg.POST("", api.create)
	rg.DELETE("/:email", api.destroy)
}

func (api *roleApi) query(ctx echo.Context) error {
	roles, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying roles")
	}
	if roles == nil {
		roles = []role.Role{}
	}
	return ctx.JSON(http.StatusOK, roles)
}

func (api *roleApi) create(ctx echo.Context) error {
	var data role.NewRole
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRole")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	rl, err := api.svc.Add(ctx.Request().Context(), data, usr.Email)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rl)
}

// destroy revokes admin access. Admins cannot revoke their own role.
func (api *roleApi) destroy(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	if ctx.Param("email") == usr.Email {
		return errHttpForbidden
	}
	if err = api.svc.Remove(ctx.Request().Context(), ctx.Param("email"), usr.Email); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

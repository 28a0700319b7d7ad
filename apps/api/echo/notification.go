package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sanaa/core/activity"
	"github.com/trezcool/sanaa/core/notification"
)

type notificationApi struct {
	svc         *notification.Service
	activitySvc *activity.Service
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := notificationApi{svc: deps.NotifSvc, activitySvc: deps.ActivitySvc}

	ng := g.Group("/notifications", jwt, adminMiddleware())
	ng.GET("", api.query)
	ng.PUT("/:id/read", api.markRead)

	g.GET("/activity", api.queryActivity, jwt, adminMiddleware())
}

func (api *notificationApi) query(ctx echo.Context) error {
	var notifs []notification.Notification
	var err error

	if ctx.QueryParam("unread") == "true" {
		notifs, err = api.svc.QueryUnread(ctx.Request().Context())
	} else {
		limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
		notifs, err = api.svc.QueryAll(ctx.Request().Context(), limit)
	}
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if notifs == nil {
		notifs = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	if err := api.svc.MarkRead(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *notificationApi) queryActivity(ctx echo.Context) error {
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	entries, err := api.activitySvc.QueryRecent(ctx.Request().Context(), limit)
	if err != nil {
		return errors.Wrap(err, "querying activity")
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sanaa/core/student"
)

type studentApi struct {
	svc *student.Service
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := studentApi{svc: deps.StudentSvc}

	sg := g.Group("/students")

	// the registration form is public
	// TODO: rate limit `/register`
	sg.POST("/register", api.register)

	ag := sg.Group("", jwt, adminMiddleware())
	ag.GET("", api.query)
	ag.GET("/stats", api.stats)
	ag.GET("/export", api.export)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

// register accepts the public registration form, JSON or multipart with an
// optional "artwork" file part.
func (api *studentApi) register(ctx echo.Context) error {
	var data student.Registration
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Registration")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	var artwork *student.Artwork
	if fh, err := ctx.FormFile("artwork"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return errors.Wrap(err, "opening artwork upload")
		}
		defer func() { _ = f.Close() }()
		artwork = &student.Artwork{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     f,
		}
	}

	std, err := api.svc.Register(ctx.Request().Context(), data, artwork)
	if err != nil {
		return errors.Wrap(err, "registering student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}

	students, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) stats(ctx echo.Context) error {
	stats, err := api.svc.GetStats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *studentApi) export(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	_ = ctx.Bind(filter)

	students, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename=`+student.CSVFilename(time.Now()))
	res.WriteHeader(http.StatusOK)
	return student.WriteCSV(res, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	std, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	std, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data, usr.Email)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

// destroy soft-deletes by default; `?hard=true` removes the record for good.
func (api *studentApi) destroy(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}

	if ctx.QueryParam("hard") == "true" {
		if err = api.svc.HardDelete(ctx.Request().Context(), ctx.Param("id"), usr.Email); err != nil {
			return err
		}
	} else if err = api.svc.SoftDelete(ctx.Request().Context(), ctx.Param("id"), usr.Email); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

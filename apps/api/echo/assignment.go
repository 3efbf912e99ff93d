package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/assignment"
)

type assignmentApi struct {
	svc      assignment.Service
	validate *validator.Validate
	conf     *core.Config
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := assignmentApi{
		svc:      deps.AssignmentSvc,
		validate: deps.Validate,
		conf:     deps.Conf,
	}

	ag := g.Group("/assignments", jwt)
	ag.POST("", api.create)
	ag.GET("", api.query)

	// detail endpoints
	dg := ag.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *assignmentApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	file, err := formFile(ctx, "file", api.conf.Storage.UploadMaxSize)
	if err != nil {
		return err
	}
	params := formParams(ctx)

	data := assignment.NewAssignment{
		Title:       params.Get("title"),
		Description: params.Get("description"),
		File:        file,
		StudentIDs:  params["student_ids"],
	}
	if v := params.Get("published_at"); v != "" {
		if data.PublishedAt, err = formTime("published_at", v); err != nil {
			return err
		}
	}
	if v := params.Get("due_date"); v != "" {
		if data.DueDate, err = formTime("due_date", v); err != nil {
			return err
		}
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assignmentApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	// the service validates the filter
	filter := assignment.QueryFilter{
		Published: ctx.QueryParam("published"),
		Status:    assignment.Status(ctx.QueryParam("status")),
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	assignments, err := api.svc.Query(ctx.Request().Context(), claims.Subject, filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if assignments == nil {
		assignments = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	a, err := api.svc.Get(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	file, err := formFile(ctx, "file", api.conf.Storage.UploadMaxSize)
	if err != nil {
		return err
	}
	params := formParams(ctx)

	data := assignment.UpdateAssignment{File: file}
	if vals, ok := params["title"]; ok && len(vals) > 0 {
		data.Title = null.StringFrom(vals[0])
	}
	if vals, ok := params["description"]; ok && len(vals) > 0 {
		data.Description = null.StringFrom(vals[0])
	}
	if vals, ok := params["published_at"]; ok && len(vals) > 0 {
		t, err := formTime("published_at", vals[0])
		if err != nil {
			return err
		}
		data.PublishedAt = null.TimeFrom(t)
	}
	if vals, ok := params["due_date"]; ok && len(vals) > 0 {
		t, err := formTime("due_date", vals[0])
		if err != nil {
			return err
		}
		data.DueDate = null.TimeFrom(t)
	}
	if err := data.Validate(); err != nil {
		return err
	}

	a, err := api.svc.Update(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.Delete(ctx.Request().Context(), claims.Subject, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

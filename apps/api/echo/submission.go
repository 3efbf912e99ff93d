package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/assignment"
	"github.com/trezcool/kazi/core/submission"
)

type submissionApi struct {
	svc      submission.Service
	validate *validator.Validate
	conf     *core.Config
}

func registerSubmissionAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := submissionApi{
		svc:      deps.SubmissionSvc,
		validate: deps.Validate,
		conf:     deps.Conf,
	}

	sg := g.Group("/assignments/:id/submissions", jwt)
	sg.POST("", api.submit)
	sg.GET("", api.details)
}

// Handlers

func (api *submissionApi) submit(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	file, err := formFile(ctx, "file", api.conf.Storage.UploadMaxSize)
	if err != nil {
		return err
	}
	data := submission.NewSubmission{File: file}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.svc.Submit(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "submitting assignment")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *submissionApi) details(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	details, err := api.svc.GetAssignmentDetails(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting assignment details")
	}

	// the service filters submissions per role; here we only shape the payload
	if claims.IsStudent {
		resp := StudentAssignmentDetailsResponse{Assignment: details.Assignment}
		if len(details.Submissions) > 0 {
			resp.Submission = &details.Submissions[0]
		}
		return ctx.JSON(http.StatusOK, resp)
	}

	if details.Submissions == nil {
		details.Submissions = []submission.SubmissionDetail{}
	}
	return ctx.JSON(http.StatusOK, AssignmentDetailsResponse{
		Assignment:  details.Assignment,
		Submissions: details.Submissions,
	})
}

type (
	AssignmentDetailsResponse struct {
		Assignment  assignment.Assignment         `json:"assignment"`
		Submissions []submission.SubmissionDetail `json:"submissions"`
	}

	// StudentAssignmentDetailsResponse carries at most the requester's own
	// submission; Submission is null until they submit.
	StudentAssignmentDetailsResponse struct {
		Assignment assignment.Assignment        `json:"assignment"`
		Submission *submission.SubmissionDetail `json:"submission"`
	}
)

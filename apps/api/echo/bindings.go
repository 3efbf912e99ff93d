package echoapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// formFile extracts the uploaded file under name from the multipart form.
// A missing file (or a non-multipart request) is not an error: (nil, nil).
func formFile(ctx echo.Context, name string, maxSize int64) (*core.File, error) {
	fh, err := ctx.FormFile(name)
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, errors.Wrap(err, "getting form file "+name)
	}
	if fh.Size > maxSize {
		return nil, core.NewValidationError(nil, core.FieldError{
			Field: name,
			Error: fmt.Sprintf("file exceeds the %d MB upload limit", maxSize>>20),
		})
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening form file "+name)
	}
	return &core.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Content:     f,
	}, nil
}

// formParams returns the parsed form values; empty on a bodyless request.
// Presence of a key distinguishes "set to blank" from "left out" on partial updates.
func formParams(ctx echo.Context) url.Values {
	params, err := ctx.FormParams()
	if err != nil {
		return url.Values{}
	}
	return params
}

func formTime(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, core.NewValidationError(nil, core.FieldError{
			Field: field,
			Error: "must be a valid RFC 3339 timestamp",
		})
	}
	return t, nil
}

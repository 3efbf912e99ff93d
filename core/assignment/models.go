package assignment

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
)

// Status is the submission state of a student's copy of an assignment.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSubmitted Status = "SUBMITTED"

	// StatusOverdue annotates reads only; it is never stored.
	// A pending assignment past its due date reads as overdue.
	StatusOverdue Status = "OVERDUE"
)

// Submit transitions the Status to StatusSubmitted.
// StatusPending is the only state a submission is accepted from;
// the transition is one-way.
func (s Status) Submit() (Status, error) {
	if s != StatusPending {
		return s, ErrAlreadySubmitted
	}
	return StatusSubmitted, nil
}

// published filter values
const (
	PublishedScheduled = "SCHEDULED" // published_at in the future
	PublishedOngoing   = "ONGOING"   // published_at reached
)

type (
	Assignment struct {
		ID          string    `json:"id"`
		TutorID     string    `json:"tutor_id"`
		Title       string    `json:"title"`
		Description string    `json:"description,omitempty"`
		FileURL     string    `json:"file_url"`
		PublishedAt time.Time `json:"published_at"` // UTC
		DueDate     time.Time `json:"due_date"`     // UTC
		CreatedAt   time.Time `json:"created_at"`   // UTC
		UpdatedAt   time.Time `json:"updated_at"`   // UTC

		// Status is the requesting student's status; empty on tutor reads.
		Status Status `json:"status,omitempty"`
	}

	// StudentAssignment assigns an Assignment to a student and tracks their status.
	StudentAssignment struct {
		ID           string    `json:"id"`
		AssignmentID string    `json:"assignment_id"`
		StudentID    string    `json:"student_id"`
		Status       Status    `json:"status"`
		CreatedAt    time.Time `json:"created_at"` // UTC
		UpdatedAt    time.Time `json:"updated_at"` // UTC
	}

	// DueSoonItem is a pending StudentAssignment whose deadline falls in the
	// reminder window, joined to the data the reminder mail needs.
	DueSoonItem struct {
		StudentName  string
		StudentEmail string
		Title        string
		DueDate      time.Time
	}
)

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	PublishedAt time.Time  `json:"published_at"` // defaults to creation time
	DueDate     time.Time  `json:"due_date" validate:"required"`
	File        *core.File `json:"file" validate:"required"`
	StudentIDs  []string   `json:"student_ids" validate:"omitempty,dive,uuid"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	return validate.Struct(na)
}

// UpdateAssignment contains the Assignment fields to change. Null wrappers
// distinguish a field set to its zero value from a field left out.
type UpdateAssignment struct {
	Title       null.String `json:"title"`
	Description null.String `json:"description"`
	PublishedAt null.Time   `json:"published_at"`
	DueDate     null.Time   `json:"due_date"`
	File        *core.File  `json:"file"`
}

// HasUpdates reports whether at least one field is set.
func (ua *UpdateAssignment) HasUpdates() bool {
	return ua.Title.Valid ||
		ua.Description.Valid ||
		ua.PublishedAt.Valid ||
		ua.DueDate.Valid ||
		ua.File != nil
}

func (ua *UpdateAssignment) Validate() error {
	if ua.Title.Valid {
		ua.Title.String = core.CleanString(ua.Title.String)
		if ua.Title.String == "" {
			return core.NewValidationError(nil, core.FieldError{Field: "title", Error: "title cannot be blank"})
		}
	}
	if ua.Description.Valid {
		ua.Description.String = core.CleanString(ua.Description.String)
	}
	if ua.DueDate.Valid && ua.DueDate.Time.IsZero() {
		return core.NewValidationError(nil, core.FieldError{Field: "due_date", Error: "due_date cannot be blank"})
	}
	if ua.PublishedAt.Valid && ua.PublishedAt.Time.IsZero() {
		return core.NewValidationError(nil, core.FieldError{Field: "published_at", Error: "published_at cannot be blank"})
	}
	return nil
}

// QueryFilter narrows assignment listings. Values are matched case-insensitively.
type QueryFilter struct {
	Published string // PublishedScheduled or PublishedOngoing
	Status    Status // students only; StatusPending, StatusSubmitted or StatusOverdue
}

func (f *QueryFilter) Validate() error {
	f.Published = strings.ToUpper(core.CleanString(f.Published))
	f.Status = Status(strings.ToUpper(core.CleanString(string(f.Status))))

	switch f.Published {
	case "", PublishedScheduled, PublishedOngoing:
	default:
		return core.NewValidationError(nil, core.FieldError{Field: "published", Error: "must be one of: SCHEDULED, ONGOING"})
	}
	switch f.Status {
	case "", StatusPending, StatusSubmitted, StatusOverdue:
	default:
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "must be one of: PENDING, SUBMITTED, OVERDUE"})
	}
	return nil
}

// DeriveStatus computes the student-facing status at read time:
// a pending assignment past its due date reads as overdue.
func DeriveStatus(s Status, dueDate, now time.Time) Status {
	if s == StatusPending && dueDate.Before(now) {
		return StatusOverdue
	}
	return s
}

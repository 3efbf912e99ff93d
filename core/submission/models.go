package submission

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/assignment"
)

type (
	Submission struct {
		ID           string    `json:"id"`
		AssignmentID string    `json:"assignment_id"`
		StudentID    string    `json:"student_id"`
		FileURL      string    `json:"file_url"`
		SubmittedAt  time.Time `json:"submitted_at"` // UTC
	}

	// SubmissionDetail is a Submission annotated with its student's identity.
	SubmissionDetail struct {
		Submission
		StudentName     string `json:"student_name"`
		StudentUsername string `json:"student_username"`
	}

	// AssignmentDetails is the submissions view of an assignment.
	// Tutors get every submission; students get at most their own.
	AssignmentDetails struct {
		Assignment  assignment.Assignment
		Submissions []SubmissionDetail
	}
)

// NewSubmission contains information needed to submit an assignment.
type NewSubmission struct {
	File *core.File `json:"file" validate:"required"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	return validate.Struct(ns)
}

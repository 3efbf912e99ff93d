package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/submission"
)

type (
	submissionRow struct {
		ID           string    `db:"id"`
		AssignmentID string    `db:"assignment_id"`
		StudentID    string    `db:"student_id"`
		FileURL      string    `db:"file_url"`
		SubmittedAt  time.Time `db:"submitted_at"`
	}

	// submissionDetailRow is a submissionRow joined to the submitting student.
	submissionDetailRow struct {
		submissionRow
		StudentName     string      `db:"student_name"`
		StudentUsername null.String `db:"student_username"`
	}
)

type submissionRepository struct {
	exec core.DBExecutor
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(exec core.DBExecutor) *submissionRepository {
	return &submissionRepository{exec: exec}
}

func (repo submissionRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo submissionRepository) unrow(r submissionRow) submission.Submission {
	return submission.Submission{
		ID:           r.ID,
		AssignmentID: r.AssignmentID,
		StudentID:    r.StudentID,
		FileURL:      r.FileURL,
		SubmittedAt:  r.SubmittedAt,
	}
}

func (repo submissionRepository) unrowDetail(r submissionDetailRow) submission.SubmissionDetail {
	return submission.SubmissionDetail{
		Submission:      repo.unrow(r.submissionRow),
		StudentName:     r.StudentName,
		StudentUsername: r.StudentUsername.String,
	}
}

// trapNoRowsErr maps psql "no rows" err to submission.ErrNotFound
func (repo submissionRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return submission.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo submissionRepository) CreateSubmission(ctx context.Context, sub submission.Submission, exec ...core.DBExecutor) (submission.Submission, error) {
	sub.ID = uuid.New().String()

	q := `
		INSERT INTO submissions (id, assignment_id, student_id, file_url, submitted_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := repo.getExec(exec).ExecContext(ctx, q, sub.ID, sub.AssignmentID, sub.StudentID, sub.FileURL, sub.SubmittedAt.UTC())
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return submission.Submission{}, submission.ErrSubmissionExists
		}
		return submission.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return sub, nil
}

func (repo submissionRepository) GetStudentSubmission(ctx context.Context, assignmentID, studentID string, exec ...core.DBExecutor) (submission.SubmissionDetail, error) {
	var r submissionDetailRow
	q := `
		SELECT s.*, u.name AS student_name, u.username AS student_username
		FROM submissions s
		JOIN users u ON u.id = s.student_id
		WHERE s.assignment_id = $1 AND s.student_id = $2`
	if err := repo.getExec(exec).GetContext(ctx, &r, q, assignmentID, studentID); err != nil {
		return submission.SubmissionDetail{}, repo.trapNoRowsErr(err, "finding submission")
	}
	return repo.unrowDetail(r), nil
}

func (repo submissionRepository) QueryAssignmentSubmissions(ctx context.Context, assignmentID string, exec ...core.DBExecutor) ([]submission.SubmissionDetail, error) {
	var rows []submissionDetailRow
	q := `
		SELECT s.*, u.name AS student_name, u.username AS student_username
		FROM submissions s
		JOIN users u ON u.id = s.student_id
		WHERE s.assignment_id = $1
		ORDER BY s.submitted_at`
	if err := repo.getExec(exec).SelectContext(ctx, &rows, q, assignmentID); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}

	subs := make([]submission.SubmissionDetail, 0, len(rows))
	for _, r := range rows {
		subs = append(subs, repo.unrowDetail(r))
	}
	return subs, nil
}

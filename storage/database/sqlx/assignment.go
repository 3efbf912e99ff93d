package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/assignment"
)

type (
	assignmentRow struct {
		ID          string      `db:"id"`
		TutorID     string      `db:"tutor_id"`
		Title       string      `db:"title"`
		Description null.String `db:"description"`
		FileURL     string      `db:"file_url"`
		PublishedAt time.Time   `db:"published_at"`
		DueDate     time.Time   `db:"due_date"`
		CreatedAt   time.Time   `db:"created_at"`
		UpdatedAt   time.Time   `db:"updated_at"`
	}

	// studentAssignmentListRow is an assignmentRow carrying the requesting
	// student's status from the student_assignments join.
	studentAssignmentListRow struct {
		assignmentRow
		Status string `db:"status"`
	}

	studentAssignmentRow struct {
		ID           string    `db:"id"`
		AssignmentID string    `db:"assignment_id"`
		StudentID    string    `db:"student_id"`
		Status       string    `db:"status"`
		CreatedAt    time.Time `db:"created_at"`
		UpdatedAt    time.Time `db:"updated_at"`
	}

	dueSoonRow struct {
		StudentName  string    `db:"student_name"`
		StudentEmail string    `db:"student_email"`
		Title        string    `db:"title"`
		DueDate      time.Time `db:"due_date"`
	}
)

type assignmentRepository struct {
	exec core.DBExecutor
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(exec core.DBExecutor) *assignmentRepository {
	return &assignmentRepository{exec: exec}
}

func (repo assignmentRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo assignmentRepository) row(a assignment.Assignment) assignmentRow {
	return assignmentRow{
		ID:          a.ID,
		TutorID:     a.TutorID,
		Title:       a.Title,
		Description: null.NewString(a.Description, a.Description != ""),
		FileURL:     a.FileURL,
		PublishedAt: a.PublishedAt.UTC(),
		DueDate:     a.DueDate.UTC(),
		CreatedAt:   a.CreatedAt.UTC(),
		UpdatedAt:   a.UpdatedAt.UTC(),
	}
}

func (repo assignmentRepository) unrow(r assignmentRow) assignment.Assignment {
	return assignment.Assignment{
		ID:          r.ID,
		TutorID:     r.TutorID,
		Title:       r.Title,
		Description: r.Description.String,
		FileURL:     r.FileURL,
		PublishedAt: r.PublishedAt,
		DueDate:     r.DueDate,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (repo assignmentRepository) unrowStudentAssignment(r studentAssignmentRow) assignment.StudentAssignment {
	return assignment.StudentAssignment{
		ID:           r.ID,
		AssignmentID: r.AssignmentID,
		StudentID:    r.StudentID,
		Status:       assignment.Status(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// trapNoRowsErr maps psql "no rows" err to assignment.ErrNotFound
func (repo assignmentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return assignment.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment, exec ...core.DBExecutor) (assignment.Assignment, error) {
	a.ID = uuid.New().String()
	r := repo.row(a)

	q := `
		INSERT INTO assignments (id, tutor_id, title, description, file_url, published_at, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.getExec(exec).ExecContext(
		ctx, q,
		r.ID, r.TutorID, r.Title, r.Description, r.FileURL, r.PublishedAt, r.DueDate, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return repo.unrow(r), nil
}

func (repo assignmentRepository) CreateStudentAssignments(ctx context.Context, sas []assignment.StudentAssignment, exec ...core.DBExecutor) error {
	if len(sas) == 0 {
		return nil
	}

	values := make([]string, 0, len(sas))
	args := make([]interface{}, 0, len(sas)*6)
	for i, sa := range sas {
		n := i * 6
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6))
		args = append(args, uuid.New().String(), sa.AssignmentID, sa.StudentID, string(sa.Status), sa.CreatedAt.UTC(), sa.UpdatedAt.UTC())
	}

	q := fmt.Sprintf(`
		INSERT INTO student_assignments (id, assignment_id, student_id, status, created_at, updated_at)
		VALUES %s
		ON CONFLICT (assignment_id, student_id) DO NOTHING`, strings.Join(values, ", "))
	if _, err := repo.getExec(exec).ExecContext(ctx, q, args...); err != nil {
		if pgErrCode(err) == pgFKViolation {
			return assignment.ErrUnknownStudent
		}
		return errors.Wrap(err, "inserting student assignments")
	}
	return nil
}

func (repo assignmentRepository) GetAssignment(ctx context.Context, id string, exec ...core.DBExecutor) (assignment.Assignment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return assignment.Assignment{}, assignment.ErrNotFound
	}

	var r assignmentRow
	if err := repo.getExec(exec).GetContext(ctx, &r, `SELECT * FROM assignments WHERE id = $1`, id); err != nil {
		return assignment.Assignment{}, repo.trapNoRowsErr(err, "finding assignment")
	}
	return repo.unrow(r), nil
}

func (repo assignmentRepository) GetStudentAssignment(ctx context.Context, assignmentID, studentID string, exec ...core.DBExecutor) (assignment.StudentAssignment, error) {
	var r studentAssignmentRow
	q := `SELECT * FROM student_assignments WHERE assignment_id = $1 AND student_id = $2`
	if err := repo.getExec(exec).GetContext(ctx, &r, q, assignmentID, studentID); err != nil {
		return assignment.StudentAssignment{}, repo.trapNoRowsErr(err, "finding student assignment")
	}
	return repo.unrowStudentAssignment(r), nil
}

func (repo assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment, exec ...core.DBExecutor) (assignment.Assignment, error) {
	r := repo.row(a)

	q := `
		UPDATE assignments
		SET title = $2, description = $3, file_url = $4, published_at = $5, due_date = $6, updated_at = $7
		WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(
		ctx, q,
		r.ID, r.Title, r.Description, r.FileURL, r.PublishedAt, r.DueDate, r.UpdatedAt,
	)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	return repo.unrow(r), nil
}

func (repo assignmentRepository) UpdateStudentAssignment(ctx context.Context, sa assignment.StudentAssignment, exec ...core.DBExecutor) (assignment.StudentAssignment, error) {
	q := `UPDATE student_assignments SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(ctx, q, sa.ID, string(sa.Status), sa.UpdatedAt.UTC())
	if err != nil {
		return assignment.StudentAssignment{}, errors.Wrap(err, "updating student assignment")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return assignment.StudentAssignment{}, assignment.ErrNotFound
	}
	return sa, nil
}

func (repo assignmentRepository) DeleteAssignment(ctx context.Context, id string, exec ...core.DBExecutor) error {
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return assignment.ErrNotFound
	}
	return nil
}

func (repo assignmentRepository) QueryTutorAssignments(ctx context.Context, tutorID string, filter assignment.QueryFilter, now time.Time, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]assignment.Assignment, error) {
	q := `SELECT a.* FROM assignments a WHERE a.tutor_id = $1`
	args := []interface{}{tutorID}

	if cond := publishedCond(filter.Published, len(args)+1); cond != "" {
		q += " AND " + cond
		args = append(args, now)
	}
	q += orderBy(ordering)

	var rows []assignmentRow
	if err := repo.getExec(exec).SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying tutor assignments")
	}

	assignments := make([]assignment.Assignment, 0, len(rows))
	for _, r := range rows {
		assignments = append(assignments, repo.unrow(r))
	}
	return assignments, nil
}

func (repo assignmentRepository) QueryStudentAssignments(ctx context.Context, studentID string, filter assignment.QueryFilter, now time.Time, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]assignment.Assignment, error) {
	q := `
		SELECT a.*, sa.status FROM assignments a
		JOIN student_assignments sa ON sa.assignment_id = a.id
		WHERE sa.student_id = $1`
	args := []interface{}{studentID}

	if cond := publishedCond(filter.Published, len(args)+1); cond != "" {
		q += " AND " + cond
		args = append(args, now)
	}
	switch filter.Status {
	case assignment.StatusPending:
		q += fmt.Sprintf(" AND sa.status = '%s' AND a.due_date >= $%d", assignment.StatusPending, len(args)+1)
		args = append(args, now)
	case assignment.StatusOverdue:
		q += fmt.Sprintf(" AND sa.status = '%s' AND a.due_date < $%d", assignment.StatusPending, len(args)+1)
		args = append(args, now)
	case assignment.StatusSubmitted:
		q += fmt.Sprintf(" AND sa.status = '%s'", assignment.StatusSubmitted)
	}
	q += orderBy(ordering)

	var rows []studentAssignmentListRow
	if err := repo.getExec(exec).SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying student assignments")
	}

	assignments := make([]assignment.Assignment, 0, len(rows))
	for _, r := range rows {
		a := repo.unrow(r.assignmentRow)
		a.Status = assignment.Status(r.Status)
		assignments = append(assignments, a)
	}
	return assignments, nil
}

func (repo assignmentRepository) QueryDueSoonPending(ctx context.Context, from, to time.Time, exec ...core.DBExecutor) ([]assignment.DueSoonItem, error) {
	q := fmt.Sprintf(`
		SELECT u.name AS student_name, u.email AS student_email, a.title, a.due_date
		FROM student_assignments sa
		JOIN assignments a ON a.id = sa.assignment_id
		JOIN users u ON u.id = sa.student_id
		WHERE sa.status = '%s'
		  AND a.due_date >= $1 AND a.due_date < $2
		  AND u.email IS NOT NULL AND u.is_active`, assignment.StatusPending)

	var rows []dueSoonRow
	if err := repo.getExec(exec).SelectContext(ctx, &rows, q, from.UTC(), to.UTC()); err != nil {
		return nil, errors.Wrap(err, "querying due soon assignments")
	}

	items := make([]assignment.DueSoonItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, assignment.DueSoonItem{
			StudentName:  r.StudentName,
			StudentEmail: r.StudentEmail,
			Title:        r.Title,
			DueDate:      r.DueDate,
		})
	}
	return items, nil
}

// publishedCond returns the WHERE condition for the published filter,
// parameterized at position argPos; the caller appends its now to the args.
func publishedCond(published string, argPos int) string {
	switch published {
	case assignment.PublishedScheduled:
		return fmt.Sprintf("a.published_at > $%d", argPos)
	case assignment.PublishedOngoing:
		return fmt.Sprintf("a.published_at <= $%d", argPos)
	}
	return ""
}

// orderBy renders ordering; fields are whitelisted by the service.
func orderBy(ordering []core.DBOrdering) string {
	if len(ordering) == 0 {
		return " ORDER BY a.created_at DESC"
	}
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, "a."+ord.String())
	}
	return " ORDER BY " + strings.Join(orderList, ", ")
}

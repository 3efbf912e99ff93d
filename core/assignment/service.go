package assignment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/user"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound         = errors.New("assignment not found")
	ErrForbidden        = errors.New("operation not allowed")
	ErrAlreadySubmitted = errors.New("assignment already submitted")
	ErrUnknownStudent   = errors.New("unknown student")

	errNoUpdates = errors.New("no updates provided")
)

const fileKeyPrefix = "assignments"

// orderingFields are the assignment columns listings may be ordered by.
var orderingFields = map[string]bool{
	"title":        true,
	"published_at": true,
	"due_date":     true,
	"created_at":   true,
}

type (
	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment, exec ...core.DBExecutor) (Assignment, error)
		// CreateStudentAssignments bulk-inserts sas with status PENDING;
		// already-assigned (assignment, student) pairs are skipped.
		CreateStudentAssignments(ctx context.Context, sas []StudentAssignment, exec ...core.DBExecutor) error
		GetAssignment(ctx context.Context, id string, exec ...core.DBExecutor) (Assignment, error)
		GetStudentAssignment(ctx context.Context, assignmentID, studentID string, exec ...core.DBExecutor) (StudentAssignment, error)
		UpdateAssignment(ctx context.Context, a Assignment, exec ...core.DBExecutor) (Assignment, error)
		UpdateStudentAssignment(ctx context.Context, sa StudentAssignment, exec ...core.DBExecutor) (StudentAssignment, error)
		DeleteAssignment(ctx context.Context, id string, exec ...core.DBExecutor) error
		// QueryTutorAssignments lists a tutor's own assignments.
		QueryTutorAssignments(ctx context.Context, tutorID string, filter QueryFilter, now time.Time, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Assignment, error)
		// QueryStudentAssignments lists assignments assigned to a student;
		// rows carry the stored per-student Status.
		QueryStudentAssignments(ctx context.Context, studentID string, filter QueryFilter, now time.Time, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Assignment, error)
		// QueryDueSoonPending lists pending student assignments with
		// from <= due_date < to, joined to student contact info.
		QueryDueSoonPending(ctx context.Context, from, to time.Time, exec ...core.DBExecutor) ([]DueSoonItem, error)
	}

	// Service is the assignment workflow; requester is the acting user's ID.
	Service interface {
		Create(ctx context.Context, requester string, na NewAssignment) (Assignment, error)
		Get(ctx context.Context, requester, id string) (Assignment, error)
		Query(ctx context.Context, requester string, filter QueryFilter, ordering ...core.DBOrdering) ([]Assignment, error)
		Update(ctx context.Context, requester, id string, ua UpdateAssignment) (Assignment, error)
		Delete(ctx context.Context, requester, id string) error
		RemindDueSoon(ctx context.Context) error
	}

	service struct {
		db      core.DB
		repo    Repository
		usrSvc  user.Service
		fstore  core.FileStore
		mailSvc core.EmailService
		logger  core.Logger
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(
	db core.DB,
	repo Repository,
	usrSvc user.Service,
	fstore core.FileStore,
	mailSvc core.EmailService,
	logger core.Logger,
) Service {
	return &service{
		db:      db,
		repo:    repo,
		usrSvc:  usrSvc,
		fstore:  fstore,
		mailSvc: mailSvc,
		logger:  logger,
	}
}

// Create uploads the assignment file, then inserts the Assignment and fans out
// one pending StudentAssignment per student in a single transaction. The upload
// happens outside the transaction; on rollback the blob is left orphaned.
func (svc *service) Create(ctx context.Context, requester string, na NewAssignment) (Assignment, error) {
	usr, err := svc.usrSvc.GetByID(ctx, requester)
	if err != nil {
		return Assignment{}, err
	}
	if !usr.IsTutor() {
		return Assignment{}, ErrForbidden
	}

	fileURL, err := svc.uploadFile(ctx, na.File)
	if err != nil {
		return Assignment{}, err
	}

	now := NowFunc().UTC()
	publishedAt := now
	if !na.PublishedAt.IsZero() {
		publishedAt = na.PublishedAt.UTC()
	}
	a := Assignment{
		TutorID:     usr.ID,
		Title:       na.Title,
		Description: na.Description,
		FileURL:     fileURL,
		PublishedAt: publishedAt,
		DueDate:     na.DueDate.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx, err := svc.db.BeginTxx(ctx, nil)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "beginning transaction")
	}

	if a, err = svc.repo.CreateAssignment(ctx, a, tx); err != nil {
		_ = tx.Rollback()
		return Assignment{}, err
	}

	sas := make([]StudentAssignment, 0, len(na.StudentIDs))
	for _, sid := range na.StudentIDs {
		sas = append(sas, StudentAssignment{
			AssignmentID: a.ID,
			StudentID:    sid,
			Status:       StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	if err = svc.repo.CreateStudentAssignments(ctx, sas, tx); err != nil {
		_ = tx.Rollback()
		if errors.Cause(err) == ErrUnknownStudent {
			return Assignment{}, core.NewValidationError(err, core.FieldError{Field: "student_ids", Error: ErrUnknownStudent.Error()})
		}
		return Assignment{}, err
	}

	if err = tx.Commit(); err != nil {
		_ = tx.Rollback()
		return Assignment{}, errors.Wrap(err, "committing transaction")
	}
	return a, nil
}

// Get returns a single assignment. It is visible to its owning tutor and to
// assigned students only; anyone else gets ErrNotFound.
func (svc *service) Get(ctx context.Context, requester, id string) (Assignment, error) {
	usr, err := svc.usrSvc.GetByID(ctx, requester)
	if err != nil {
		return Assignment{}, err
	}

	a, err := svc.repo.GetAssignment(ctx, id)
	if err != nil {
		return Assignment{}, err
	}

	switch {
	case usr.IsTutor():
		if a.TutorID != usr.ID {
			return Assignment{}, ErrNotFound
		}
		return a, nil
	case usr.IsStudent():
		sa, err := svc.repo.GetStudentAssignment(ctx, a.ID, usr.ID)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				return Assignment{}, ErrNotFound
			}
			return Assignment{}, err
		}
		a.Status = DeriveStatus(sa.Status, a.DueDate, NowFunc().UTC())
		return a, nil
	}
	return Assignment{}, ErrNotFound
}

// Query lists assignments for the requester: tutors see their own, students see
// those assigned to them annotated with their status.
func (svc *service) Query(ctx context.Context, requester string, filter QueryFilter, ordering ...core.DBOrdering) ([]Assignment, error) {
	usr, err := svc.usrSvc.GetByID(ctx, requester)
	if err != nil {
		return nil, err
	}
	if err = filter.Validate(); err != nil {
		return nil, err
	}
	for _, ord := range ordering {
		if !orderingFields[ord.Field] {
			return nil, core.NewValidationError(nil, core.FieldError{Field: "ordering", Error: "cannot order by " + ord.Field})
		}
	}

	now := NowFunc().UTC()
	switch {
	case usr.IsTutor():
		if filter.Status != "" {
			return nil, core.NewValidationError(nil, core.FieldError{Field: "status", Error: "status filter only applies to students"})
		}
		return svc.repo.QueryTutorAssignments(ctx, usr.ID, filter, now, ordering)
	case usr.IsStudent():
		assignments, err := svc.repo.QueryStudentAssignments(ctx, usr.ID, filter, now, ordering)
		if err != nil {
			return nil, err
		}
		for i := range assignments {
			assignments[i].Status = DeriveStatus(assignments[i].Status, assignments[i].DueDate, now)
		}
		return assignments, nil
	}
	return nil, ErrForbidden
}

// Update applies the set fields of ua to the assignment. A new file goes to a
// fresh object key; the replaced blob is left orphaned.
func (svc *service) Update(ctx context.Context, requester, id string, ua UpdateAssignment) (Assignment, error) {
	usr, err := svc.usrSvc.GetByID(ctx, requester)
	if err != nil {
		return Assignment{}, err
	}
	if !usr.IsTutor() {
		return Assignment{}, ErrForbidden
	}

	a, err := svc.repo.GetAssignment(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if a.TutorID != usr.ID {
		return Assignment{}, ErrForbidden
	}
	if !ua.HasUpdates() {
		return Assignment{}, core.NewValidationError(errNoUpdates)
	}

	if ua.File != nil {
		fileURL, err := svc.uploadFile(ctx, ua.File)
		if err != nil {
			return Assignment{}, err
		}
		a.FileURL = fileURL
	}
	if ua.Title.Valid {
		a.Title = ua.Title.String
	}
	if ua.Description.Valid {
		a.Description = ua.Description.String
	}
	if ua.PublishedAt.Valid {
		a.PublishedAt = ua.PublishedAt.Time.UTC()
	}
	if ua.DueDate.Valid {
		a.DueDate = ua.DueDate.Time.UTC()
	}
	a.UpdatedAt = NowFunc().UTC()

	return svc.repo.UpdateAssignment(ctx, a)
}

// Delete removes the assignment; student assignments and submissions go with
// it. The stored blob delete is best-effort and never blocks the row delete.
func (svc *service) Delete(ctx context.Context, requester, id string) error {
	usr, err := svc.usrSvc.GetByID(ctx, requester)
	if err != nil {
		return err
	}
	if !usr.IsTutor() {
		return ErrForbidden
	}

	a, err := svc.repo.GetAssignment(ctx, id)
	if err != nil {
		return err
	}
	if a.TutorID != usr.ID {
		return ErrForbidden
	}

	if err = svc.fstore.Delete(ctx, a.FileURL); err != nil {
		svc.logger.Warn("deleting assignment file " + a.FileURL + ": " + err.Error())
	}
	return svc.repo.DeleteAssignment(ctx, id)
}

func (svc *service) uploadFile(ctx context.Context, f *core.File) (string, error) {
	return svc.fstore.Put(ctx, core.BuildObjectKey(fileKeyPrefix, f.Name), f.Content, f.ContentType)
}

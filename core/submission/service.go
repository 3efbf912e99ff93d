package submission

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/assignment"
	"github.com/trezcool/kazi/core/user"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound         = errors.New("submission not found")
	ErrForbidden        = errors.New("operation not allowed")
	ErrSubmissionExists = errors.New("assignment already submitted")
)

const fileKeyPrefix = "submissions"

type (
	Repository interface {
		// CreateSubmission inserts sub; a second submission for the same
		// (assignment, student) pair fails with ErrSubmissionExists.
		CreateSubmission(ctx context.Context, sub Submission, exec ...core.DBExecutor) (Submission, error)
		GetStudentSubmission(ctx context.Context, assignmentID, studentID string, exec ...core.DBExecutor) (SubmissionDetail, error)
		QueryAssignmentSubmissions(ctx context.Context, assignmentID string, exec ...core.DBExecutor) ([]SubmissionDetail, error)
	}

	Service interface {
		Submit(ctx context.Context, requester, assignmentID string, ns NewSubmission) (Submission, error)
		GetAssignmentDetails(ctx context.Context, requester, assignmentID string) (AssignmentDetails, error)
	}

	service struct {
		db         core.DB
		repo       Repository
		assignRepo assignment.Repository
		usrSvc     user.Service
		fstore     core.FileStore
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(
	db core.DB,
	repo Repository,
	assignRepo assignment.Repository,
	usrSvc user.Service,
	fstore core.FileStore,
) Service {
	return &service{
		db:         db,
		repo:       repo,
		assignRepo: assignRepo,
		usrSvc:     usrSvc,
		fstore:     fstore,
	}
}

// Submit stores the student's file and, in a single transaction, inserts the
// Submission and flips their assignment status to SUBMITTED. The upload
// happens before the transaction; on rollback the blob is left orphaned.
// Only assigned students may submit, and only once.
func (svc *service) Submit(ctx context.Context, requester, assignmentID string, ns NewSubmission) (Submission, error) {
	usr, err := svc.usrSvc.GetByID(ctx, requester)
	if err != nil {
		return Submission{}, err
	}
	if !usr.IsStudent() {
		return Submission{}, ErrForbidden
	}

	a, err := svc.assignRepo.GetAssignment(ctx, assignmentID)
	if err != nil {
		return Submission{}, err
	}
	sa, err := svc.assignRepo.GetStudentAssignment(ctx, a.ID, usr.ID)
	if err != nil {
		if errors.Cause(err) == assignment.ErrNotFound {
			return Submission{}, ErrForbidden
		}
		return Submission{}, err
	}

	// the state machine rejects anything but the first submission;
	// the unique (assignment, student) index breaks races.
	newStatus, err := sa.Status.Submit()
	if err != nil {
		return Submission{}, ErrSubmissionExists
	}

	fileURL, err := svc.fstore.Put(ctx, core.BuildObjectKey(fileKeyPrefix, ns.File.Name), ns.File.Content, ns.File.ContentType)
	if err != nil {
		return Submission{}, err
	}

	now := NowFunc().UTC()
	sub := Submission{
		AssignmentID: a.ID,
		StudentID:    usr.ID,
		FileURL:      fileURL,
		SubmittedAt:  now,
	}

	tx, err := svc.db.BeginTxx(ctx, nil)
	if err != nil {
		return Submission{}, errors.Wrap(err, "beginning transaction")
	}

	if sub, err = svc.repo.CreateSubmission(ctx, sub, tx); err != nil {
		_ = tx.Rollback()
		return Submission{}, err
	}
	sa.Status = newStatus
	sa.UpdatedAt = now
	if _, err = svc.assignRepo.UpdateStudentAssignment(ctx, sa, tx); err != nil {
		_ = tx.Rollback()
		return Submission{}, err
	}

	if err = tx.Commit(); err != nil {
		_ = tx.Rollback()
		return Submission{}, errors.Wrap(err, "committing transaction")
	}
	return sub, nil
}

// GetAssignmentDetails returns the submissions view of an assignment.
// Tutors see every submission; an assigned student sees their own or none,
// which is a valid "not submitted yet", not an error.
func (svc *service) GetAssignmentDetails(ctx context.Context, requester, assignmentID string) (AssignmentDetails, error) {
	usr, err := svc.usrSvc.GetByID(ctx, requester)
	if err != nil {
		return AssignmentDetails{}, err
	}

	a, err := svc.assignRepo.GetAssignment(ctx, assignmentID)
	if err != nil {
		return AssignmentDetails{}, err
	}

	switch {
	case usr.IsTutor():
		if a.TutorID != usr.ID {
			return AssignmentDetails{}, assignment.ErrNotFound
		}
		subs, err := svc.repo.QueryAssignmentSubmissions(ctx, a.ID)
		if err != nil {
			return AssignmentDetails{}, err
		}
		return AssignmentDetails{Assignment: a, Submissions: subs}, nil

	case usr.IsStudent():
		sa, err := svc.assignRepo.GetStudentAssignment(ctx, a.ID, usr.ID)
		if err != nil {
			if errors.Cause(err) == assignment.ErrNotFound {
				return AssignmentDetails{}, assignment.ErrNotFound
			}
			return AssignmentDetails{}, err
		}
		a.Status = assignment.DeriveStatus(sa.Status, a.DueDate, NowFunc().UTC())

		sub, err := svc.repo.GetStudentSubmission(ctx, a.ID, usr.ID)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				return AssignmentDetails{Assignment: a}, nil
			}
			return AssignmentDetails{}, err
		}
		return AssignmentDetails{Assignment: a, Submissions: []SubmissionDetail{sub}}, nil
	}
	return AssignmentDetails{}, ErrForbidden
}

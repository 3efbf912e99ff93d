package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/submission"
)

type submissionRepository struct {
	db *DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *DB) submission.Repository {
	return &submissionRepository{db: db}
}

func (repo *submissionRepository) CreateSubmission(ctx context.Context, sub submission.Submission, exec ...core.DBExecutor) (submission.Submission, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, s := range repo.db.submissions {
		if s.AssignmentID == sub.AssignmentID && s.StudentID == sub.StudentID {
			return submission.Submission{}, submission.ErrSubmissionExists
		}
	}
	sub.ID = uuid.New().String()
	repo.db.submissions[sub.ID] = sub
	return sub, nil
}

func (repo *submissionRepository) GetStudentSubmission(ctx context.Context, assignmentID, studentID string, exec ...core.DBExecutor) (submission.SubmissionDetail, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, sub := range repo.db.submissions {
		if sub.AssignmentID == assignmentID && sub.StudentID == studentID {
			return repo.detail(sub), nil
		}
	}
	return submission.SubmissionDetail{}, submission.ErrNotFound
}

func (repo *submissionRepository) QueryAssignmentSubmissions(ctx context.Context, assignmentID string, exec ...core.DBExecutor) ([]submission.SubmissionDetail, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	subs := make([]submission.SubmissionDetail, 0)
	for _, sub := range repo.db.submissions {
		if sub.AssignmentID == assignmentID {
			subs = append(subs, repo.detail(sub))
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].SubmittedAt.Before(subs[j].SubmittedAt) })
	return subs, nil
}

// detail annotates sub with its student's identity; callers hold the lock.
func (repo *submissionRepository) detail(sub submission.Submission) submission.SubmissionDetail {
	d := submission.SubmissionDetail{Submission: sub}
	if usr, ok := repo.db.users[sub.StudentID]; ok {
		d.StudentName = usr.Name
		d.StudentUsername = usr.Username
	}
	return d
}

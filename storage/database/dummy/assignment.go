package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment, exec ...core.DBExecutor) (assignment.Assignment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	a.ID = uuid.New().String()
	repo.db.assignments[a.ID] = a
	return a, nil
}

func (repo *assignmentRepository) CreateStudentAssignments(ctx context.Context, sas []assignment.StudentAssignment, exec ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, sa := range sas {
		if _, ok := repo.db.users[sa.StudentID]; !ok {
			return assignment.ErrUnknownStudent
		}
		if repo.findStudentAssignment(sa.AssignmentID, sa.StudentID) != nil {
			continue // already assigned
		}
		sa.ID = uuid.New().String()
		repo.db.studentAssignments[sa.ID] = sa
	}
	return nil
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, id string, exec ...core.DBExecutor) (assignment.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if a, ok := repo.db.assignments[id]; ok {
		return a, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) GetStudentAssignment(ctx context.Context, assignmentID, studentID string, exec ...core.DBExecutor) (assignment.StudentAssignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if sa := repo.findStudentAssignment(assignmentID, studentID); sa != nil {
		return *sa, nil
	}
	return assignment.StudentAssignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment, exec ...core.DBExecutor) (assignment.Assignment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.assignments[a.ID]; !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	repo.db.assignments[a.ID] = a
	return a, nil
}

func (repo *assignmentRepository) UpdateStudentAssignment(ctx context.Context, sa assignment.StudentAssignment, exec ...core.DBExecutor) (assignment.StudentAssignment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.studentAssignments[sa.ID]
	if !ok {
		return assignment.StudentAssignment{}, assignment.ErrNotFound
	}
	orig.Status = sa.Status
	orig.UpdatedAt = sa.UpdatedAt
	repo.db.studentAssignments[sa.ID] = orig
	return orig, nil
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.assignments[id]; !ok {
		return assignment.ErrNotFound
	}
	delete(repo.db.assignments, id)

	// cascade
	for k, sa := range repo.db.studentAssignments {
		if sa.AssignmentID == id {
			delete(repo.db.studentAssignments, k)
		}
	}
	for k, sub := range repo.db.submissions {
		if sub.AssignmentID == id {
			delete(repo.db.submissions, k)
		}
	}
	return nil
}

func (repo *assignmentRepository) QueryTutorAssignments(ctx context.Context, tutorID string, filter assignment.QueryFilter, now time.Time, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]assignment.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	assignments := make([]assignment.Assignment, 0)
	for _, a := range repo.db.assignments {
		if a.TutorID != tutorID {
			continue
		}
		if !matchesPublished(a, filter.Published, now) {
			continue
		}
		assignments = append(assignments, a)
	}
	sortAssignments(assignments, ordering)
	return assignments, nil
}

func (repo *assignmentRepository) QueryStudentAssignments(ctx context.Context, studentID string, filter assignment.QueryFilter, now time.Time, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]assignment.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	assignments := make([]assignment.Assignment, 0)
	for _, sa := range repo.db.studentAssignments {
		if sa.StudentID != studentID {
			continue
		}
		a, ok := repo.db.assignments[sa.AssignmentID]
		if !ok {
			continue
		}
		if !matchesPublished(a, filter.Published, now) {
			continue
		}
		switch filter.Status {
		case assignment.StatusPending:
			if sa.Status != assignment.StatusPending || a.DueDate.Before(now) {
				continue
			}
		case assignment.StatusOverdue:
			if sa.Status != assignment.StatusPending || !a.DueDate.Before(now) {
				continue
			}
		case assignment.StatusSubmitted:
			if sa.Status != assignment.StatusSubmitted {
				continue
			}
		}
		a.Status = sa.Status
		assignments = append(assignments, a)
	}
	sortAssignments(assignments, ordering)
	return assignments, nil
}

func (repo *assignmentRepository) QueryDueSoonPending(ctx context.Context, from, to time.Time, exec ...core.DBExecutor) ([]assignment.DueSoonItem, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	items := make([]assignment.DueSoonItem, 0)
	for _, sa := range repo.db.studentAssignments {
		if sa.Status != assignment.StatusPending {
			continue
		}
		a, ok := repo.db.assignments[sa.AssignmentID]
		if !ok || a.DueDate.Before(from) || !a.DueDate.Before(to) {
			continue
		}
		usr, ok := repo.db.users[sa.StudentID]
		if !ok || usr.Email == "" || !usr.Active() {
			continue
		}
		items = append(items, assignment.DueSoonItem{
			StudentName:  usr.Name,
			StudentEmail: usr.Email,
			Title:        a.Title,
			DueDate:      a.DueDate,
		})
	}
	return items, nil
}

// findStudentAssignment scans by the unique (assignment, student) pair;
// callers hold the lock.
func (repo *assignmentRepository) findStudentAssignment(assignmentID, studentID string) *assignment.StudentAssignment {
	for _, sa := range repo.db.studentAssignments {
		if sa.AssignmentID == assignmentID && sa.StudentID == studentID {
			return &sa
		}
	}
	return nil
}

func matchesPublished(a assignment.Assignment, published string, now time.Time) bool {
	switch published {
	case assignment.PublishedScheduled:
		return a.PublishedAt.After(now)
	case assignment.PublishedOngoing:
		return !a.PublishedAt.After(now)
	}
	return true
}

func sortAssignments(assignments []assignment.Assignment, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}} // newest first
	}
	sort.SliceStable(assignments, func(i, j int) bool {
		for _, ord := range ordering {
			c := compareAssignments(assignments[i], assignments[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func compareAssignments(a, b assignment.Assignment, field string) int {
	switch field {
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "published_at":
		return compareTimes(a.PublishedAt, b.PublishedAt)
	case "due_date":
		return compareTimes(a.DueDate, b.DueDate)
	default:
		return compareTimes(a.CreatedAt, b.CreatedAt)
	}
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

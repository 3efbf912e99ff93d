package testutil

import (
	"context"
	"io"
	"log"
	"net/mail"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/assignment"
	"github.com/trezcool/kazi/core/submission"
	"github.com/trezcool/kazi/core/user"
	logsvc "github.com/trezcool/kazi/services/logger"
)

// NewConfig returns the app configuration tests run under and sets core.Conf.
func NewConfig() *core.Config {
	conf := &core.Config{
		AppName:  "Kazi",
		Env:      "TEST",
		TestMode: true,
		Build:    "test",
		WorkDir:  core.Getwd(),

		SecretKey:                 "s3cr3t-k3y-f0r-t3sts-0nly",
		FrontendBaseURL:           "http://localhost:8080",
		DefaultFromEmail:          mail.Address{Name: "Kazi", Address: "noreply@localhost"},
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,

		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Storage: core.StorageConfig{
			UploadMaxSize: 20 << 20,
		},
	}
	core.Conf = conf
	return conf
}

// InitValidators returns a fresh validator/translator pair with the app's
// custom validations registered.
func InitValidators() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	lang := en.New()
	translator, _ := ut.New(lang, lang).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

// NewLogger returns a logger that discards its output; rollbar delivery is
// disabled.
func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateAssignment stores an assignment and fans it out to studentIDs.
func CreateAssignment(
	t *testing.T,
	repo assignment.Repository,
	tutorID, title string,
	publishedAt, dueDate time.Time,
	studentIDs ...string,
) assignment.Assignment {
	t.Helper()

	ctx := context.Background()
	now := time.Now().UTC()
	a := assignment.Assignment{
		TutorID:     tutorID,
		Title:       title,
		FileURL:     "mem://assignments/" + title,
		PublishedAt: publishedAt.UTC(),
		DueDate:     dueDate.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	a, err := repo.CreateAssignment(ctx, a)
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}

	if len(studentIDs) > 0 {
		sas := make([]assignment.StudentAssignment, 0, len(studentIDs))
		for _, sid := range studentIDs {
			sas = append(sas, assignment.StudentAssignment{
				AssignmentID: a.ID,
				StudentID:    sid,
				Status:       assignment.StatusPending,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
		}
		if err = repo.CreateStudentAssignments(ctx, sas); err != nil {
			t.Fatalf("CreateAssignment() failed: %v", err)
		}
	}
	return a
}

// CreateSubmission stores a submission and flips the matching
// StudentAssignment to SUBMITTED, like the submission workflow does.
func CreateSubmission(
	t *testing.T,
	subRepo submission.Repository,
	assignRepo assignment.Repository,
	assignmentID, studentID string,
	submittedAt ...time.Time,
) submission.Submission {
	t.Helper()

	ctx := context.Background()
	tstamp := time.Now().UTC()
	if len(submittedAt) > 0 {
		tstamp = submittedAt[0].UTC()
	}
	sub, err := subRepo.CreateSubmission(ctx, submission.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		FileURL:      "mem://submissions/" + assignmentID + "/" + studentID,
		SubmittedAt:  tstamp,
	})
	if err != nil {
		t.Fatalf("CreateSubmission() failed: %v", err)
	}

	sa, err := assignRepo.GetStudentAssignment(ctx, assignmentID, studentID)
	if err != nil {
		t.Fatalf("CreateSubmission() failed: %v", err)
	}
	sa.Status = assignment.StatusSubmitted
	sa.UpdatedAt = tstamp
	if _, err = assignRepo.UpdateStudentAssignment(ctx, sa); err != nil {
		t.Fatalf("CreateSubmission() failed: %v", err)
	}
	return sub
}

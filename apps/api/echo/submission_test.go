package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/trezcool/kazi/apps/api/echo"
	"github.com/trezcool/kazi/core/assignment"
	"github.com/trezcool/kazi/core/submission"
	"github.com/trezcool/kazi/core/user"
	"github.com/trezcool/kazi/tests"
)

func Test_submissionApi_submit(t *testing.T) {
	app := setup(t)

	tutor := testutil.CreateUser(t, usrRepo, "Jane Tutor", "jane", "jane@test.cd", "", user.RoleTutor, true)
	ali := testutil.CreateUser(t, usrRepo, "Ali Student", "ali", "ali@test.cd", "", user.RoleStudent, true)
	bob := testutil.CreateUser(t, usrRepo, "Bob Student", "bob", "bob@test.cd", "", user.RoleStudent, true)
	aliToken := getToken(t, ali)

	now := time.Now().UTC()
	a1 := testutil.CreateAssignment(t, assignRepo, tutor.ID, "Algebra Basics", now.Add(-2*time.Hour), now.Add(48*time.Hour), ali.ID)
	overdue := testutil.CreateAssignment(t, assignRepo, tutor.ID, "History Essay", now.Add(-48*time.Hour), now.Add(-time.Hour), ali.ID)

	path := "/v1/assignments/" + a1.ID + "/submissions"
	validFile := testFile{field: "file", name: "my answers.pdf", contentType: "application/pdf", content: pdfStub}

	checkSubmitted := func(assignmentID string) func(t *testing.T, rec *httptest.ResponseRecorder) {
		return func(t *testing.T, rec *httptest.ResponseRecorder) {
			var sub submission.Submission
			if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
				t.Fatalf("json.Unmarshal(): %v", err)
			}
			if sub.ID == "" {
				t.Error("failed! ID is empty")
			}
			if sub.AssignmentID != assignmentID || sub.StudentID != ali.ID {
				t.Errorf("failed! AssignmentID = %q, StudentID = %q; want %q, %q", sub.AssignmentID, sub.StudentID, assignmentID, ali.ID)
			}
			if sub.SubmittedAt.IsZero() {
				t.Error("failed! SubmittedAt is zero")
			}
			if !strings.HasPrefix(sub.FileURL, "mem://submissions/") || !strings.HasSuffix(sub.FileURL, "/my_answers.pdf") {
				t.Errorf("failed! FileURL = %q", sub.FileURL)
			}
			if blob, ok := fstore.Blob(sub.FileURL); !ok || !bytes.Equal(blob, pdfStub) {
				t.Errorf("failed! blob = %q, ok = %v; want %q", blob, ok, pdfStub)
			}

			sa, err := assignRepo.GetStudentAssignment(context.Background(), assignmentID, ali.ID)
			if err != nil {
				t.Fatalf("GetStudentAssignment(): %v", err)
			}
			if sa.Status != assignment.StatusSubmitted {
				t.Errorf("failed! Status = %q; want %q", sa.Status, assignment.StatusSubmitted)
			}
		}
	}

	tests := []struct {
		name     string
		path     string
		token    string
		files    []testFile
		wantCode int
		wantData []byte
		extra    func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "Auth required", path: path, wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Tutors cannot submit", path: path, token: getToken(t, tutor), files: []testFile{validFile},
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Unassigned students cannot submit", path: path, token: getToken(t, bob), files: []testFile{validFile},
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Unknown assignment", path: "/v1/assignments/lol/submissions", token: aliToken, files: []testFile{validFile},
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "Required file", path: path, token: aliToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"file": "this field is required"}),
		},
		{
			name: "Assigned students can submit", path: path, token: aliToken, files: []testFile{validFile},
			wantCode: http.StatusCreated, extra: checkSubmitted(a1.ID),
		},
		{
			name: "Resubmission is rejected", path: path, token: aliToken, files: []testFile{validFile},
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "assignment already submitted"}),
		},
		{
			name: "Late submissions still go through", path: "/v1/assignments/" + overdue.ID + "/submissions",
			token: aliToken, files: []testFile{validFile},
			wantCode: http.StatusCreated, extra: checkSubmitted(overdue.ID),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newUploadRequest(t, http.MethodPost, tt.path, tt.token, url.Values{}, tt.files...)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
			if tt.wantData != nil {
				checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: tt.wantData}, rec)
			}
			if tt.extra != nil {
				tt.extra(t, rec)
			}
		})
	}
}

func Test_submissionApi_details(t *testing.T) {
	app := setup(t)

	tutor := testutil.CreateUser(t, usrRepo, "Jane Tutor", "jane", "jane@test.cd", "", user.RoleTutor, true)
	tutor2 := testutil.CreateUser(t, usrRepo, "John Tutor", "john", "john@test.cd", "", user.RoleTutor, true)
	ali := testutil.CreateUser(t, usrRepo, "Ali Student", "ali", "ali@test.cd", "", user.RoleStudent, true)
	bob := testutil.CreateUser(t, usrRepo, "Bob Student", "bob", "bob@test.cd", "", user.RoleStudent, true)
	zoe := testutil.CreateUser(t, usrRepo, "Zoe Student", "zoe", "zoe@test.cd", "", user.RoleStudent, true)

	now := time.Now().UTC()
	a1 := testutil.CreateAssignment(t, assignRepo, tutor.ID, "Algebra Basics", now.Add(-2*time.Hour), now.Add(48*time.Hour), ali.ID, bob.ID)
	sub := testutil.CreateSubmission(t, subRepo, assignRepo, a1.ID, ali.ID)
	subDetail := submission.SubmissionDetail{Submission: sub, StudentName: ali.Name, StudentUsername: ali.Username}

	path := "/v1/assignments/" + a1.ID + "/submissions"
	withStatus := func(a assignment.Assignment, status assignment.Status) assignment.Assignment {
		a.Status = status
		return a
	}

	tests := []httpTest{
		{name: "Auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Owners see every submission", path: path, token: getToken(t, tutor),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.AssignmentDetailsResponse{
				Assignment:  a1,
				Submissions: []submission.SubmissionDetail{subDetail},
			}),
		},
		{
			name: "Other tutors cannot", path: path, token: getToken(t, tutor2),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "Students see only their own submission", path: path, token: getToken(t, ali),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.StudentAssignmentDetailsResponse{
				Assignment: withStatus(a1, assignment.StatusSubmitted),
				Submission: &subDetail,
			}),
		},
		{
			name: "Pending students get a null submission", path: path, token: getToken(t, bob),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, echoapi.StudentAssignmentDetailsResponse{
				Assignment: withStatus(a1, assignment.StatusPending),
			}),
		},
		{
			name: "Unassigned students cannot", path: path, token: getToken(t, zoe),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "Unknown assignment", path: "/v1/assignments/lol/submissions", token: getToken(t, tutor),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

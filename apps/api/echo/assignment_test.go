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

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/assignment"
	"github.com/trezcool/kazi/core/user"
	"github.com/trezcool/kazi/tests"
)

var pdfStub = []byte("%PDF-1.4 stub")

func Test_assignmentApi_create(t *testing.T) {
	app := setup(t)

	tutor := testutil.CreateUser(t, usrRepo, "Jane Tutor", "jane", "jane@test.cd", "", user.RoleTutor, true)
	ali := testutil.CreateUser(t, usrRepo, "Ali Student", "ali", "ali@test.cd", "", user.RoleStudent, true)
	bob := testutil.CreateUser(t, usrRepo, "Bob Student", "bob", "bob@test.cd", "", user.RoleStudent, true)
	tutorToken := getToken(t, tutor)
	aliToken := getToken(t, ali)

	path := "/v1/assignments"
	pubAt := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	dueDate := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	validFields := url.Values{
		"title":    {"Trigonometry Drills"},
		"due_date": {dueDate.Format(time.RFC3339)},
	}
	validFile := testFile{field: "file", name: "trig drills.pdf", contentType: "application/pdf", content: pdfStub}

	tests := []struct {
		name      string
		token     string
		fields    url.Values
		files     []testFile
		maxUpload int64
		wantCode  int
		wantData  []byte
		extra     func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "Auth required", wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Students cannot create", token: aliToken, fields: validFields, files: []testFile{validFile},
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Required fields", token: tutorToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"title":    "this field is required",
				"due_date": "this field is required",
				"file":     "this field is required",
			}),
		},
		{
			name: "due_date must be RFC 3339", token: tutorToken,
			fields:   url.Values{"title": {"Trigonometry Drills"}, "due_date": {"next friday"}},
			files:    []testFile{validFile},
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"due_date": "must be a valid RFC 3339 timestamp"}),
		},
		{
			name: "File too large", token: tutorToken, fields: validFields, maxUpload: 1 << 20,
			files:    []testFile{{field: "file", name: "huge.pdf", contentType: "application/pdf", content: bytes.Repeat([]byte("a"), 1<<20+1)}},
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"file": "file exceeds the 1 MB upload limit"}),
		},
		{
			name: "student_ids must be UUIDs", token: tutorToken,
			fields: url.Values{
				"title":       {"Trigonometry Drills"},
				"due_date":    {dueDate.Format(time.RFC3339)},
				"student_ids": {"lol"},
			},
			files:    []testFile{validFile},
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"student_ids[0]": "student_ids[0] must be a valid UUID"}),
		},
		{
			name: "Unknown students are rejected", token: tutorToken,
			fields: url.Values{
				"title":       {"Trigonometry Drills"},
				"due_date":    {dueDate.Format(time.RFC3339)},
				"student_ids": {"0b79458b-7cd0-44cd-b6cf-e0f8d19f53ae"},
			},
			files:    []testFile{validFile},
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"student_ids": "unknown student"}),
		},
		{
			name: "Tutors can create", token: tutorToken,
			fields: url.Values{
				"title":        {"Trigonometry Drills"},
				"description":  {"Practice set 3"},
				"published_at": {pubAt.Format(time.RFC3339)},
				"due_date":     {dueDate.Format(time.RFC3339)},
				"student_ids":  {ali.ID, bob.ID},
			},
			files:    []testFile{validFile},
			wantCode: http.StatusCreated,
			extra: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var a assignment.Assignment
				if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if a.ID == "" {
					t.Error("failed! ID is empty")
				}
				if a.TutorID != tutor.ID {
					t.Errorf("failed! TutorID = %q; want %q", a.TutorID, tutor.ID)
				}
				if a.Title != "Trigonometry Drills" || a.Description != "Practice set 3" {
					t.Errorf("failed! Title = %q, Description = %q", a.Title, a.Description)
				}
				if !a.PublishedAt.Equal(pubAt) || !a.DueDate.Equal(dueDate) {
					t.Errorf("failed! PublishedAt = %v, DueDate = %v; want %v, %v", a.PublishedAt, a.DueDate, pubAt, dueDate)
				}
				if a.Status != "" {
					t.Errorf("failed! Status = %q; want empty", a.Status)
				}
				if !strings.HasPrefix(a.FileURL, "mem://assignments/") || !strings.HasSuffix(a.FileURL, "/trig_drills.pdf") {
					t.Errorf("failed! FileURL = %q", a.FileURL)
				}
				if blob, ok := fstore.Blob(a.FileURL); !ok || !bytes.Equal(blob, pdfStub) {
					t.Errorf("failed! blob = %q, ok = %v; want %q", blob, ok, pdfStub)
				}

				// each listed student got a pending copy
				ctx := context.Background()
				for _, sid := range []string{ali.ID, bob.ID} {
					sa, err := assignRepo.GetStudentAssignment(ctx, a.ID, sid)
					if err != nil {
						t.Fatalf("GetStudentAssignment(%q): %v", sid, err)
					}
					if sa.Status != assignment.StatusPending {
						t.Errorf("failed! Status = %q; want %q", sa.Status, assignment.StatusPending)
					}
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.maxUpload > 0 {
				orig := core.Conf.Storage.UploadMaxSize
				core.Conf.Storage.UploadMaxSize = tt.maxUpload
				defer func() { core.Conf.Storage.UploadMaxSize = orig }()
			}

			req, rec := newUploadRequest(t, http.MethodPost, path, tt.token, tt.fields, tt.files...)
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

func Test_assignmentApi_query(t *testing.T) {
	app := setup(t)

	tutor := testutil.CreateUser(t, usrRepo, "Jane Tutor", "jane", "jane@test.cd", "", user.RoleTutor, true)
	tutor2 := testutil.CreateUser(t, usrRepo, "John Tutor", "john", "john@test.cd", "", user.RoleTutor, true)
	ali := testutil.CreateUser(t, usrRepo, "Ali Student", "ali", "ali@test.cd", "", user.RoleStudent, true)
	bob := testutil.CreateUser(t, usrRepo, "Bob Student", "bob", "bob@test.cd", "", user.RoleStudent, true)
	zoe := testutil.CreateUser(t, usrRepo, "Zoe Student", "zoe", "zoe@test.cd", "", user.RoleStudent, true)

	now := time.Now().UTC()
	a1 := testutil.CreateAssignment(t, assignRepo, tutor.ID, "Algebra Basics", now.Add(-2*time.Hour), now.Add(48*time.Hour), ali.ID, bob.ID)
	a2 := testutil.CreateAssignment(t, assignRepo, tutor.ID, "Chemistry Lab", now.Add(24*time.Hour), now.Add(72*time.Hour), ali.ID)
	a3 := testutil.CreateAssignment(t, assignRepo, tutor.ID, "History Essay", now.Add(-48*time.Hour), now.Add(-time.Hour), ali.ID)
	a4 := testutil.CreateAssignment(t, assignRepo, tutor2.ID, "Biology Quiz", now.Add(-time.Hour), now.Add(24*time.Hour), bob.ID)
	testutil.CreateSubmission(t, subRepo, assignRepo, a1.ID, ali.ID)

	withStatus := func(a assignment.Assignment, status assignment.Status) assignment.Assignment {
		a.Status = status
		return a
	}

	tests := []httpTest{
		{name: "Auth required", path: "/v1/assignments", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Tutors see their own, newest first", path: "/v1/assignments", token: getToken(t, tutor),
			wantCode: http.StatusOK, wantData: marchallList(t, a3, a2, a1),
		},
		{
			name: "Other tutors' listings are scoped too", path: "/v1/assignments", token: getToken(t, tutor2),
			wantCode: http.StatusOK, wantData: marchallList(t, a4),
		},
		{
			name: "Tutor scheduled filter", path: "/v1/assignments?published=SCHEDULED", token: getToken(t, tutor),
			wantCode: http.StatusOK, wantData: marchallList(t, a2),
		},
		{
			name: "Tutor ongoing filter", path: "/v1/assignments?published=ONGOING", token: getToken(t, tutor),
			wantCode: http.StatusOK, wantData: marchallList(t, a3, a1),
		},
		{
			name: "Status filter is student-only", path: "/v1/assignments?status=PENDING", token: getToken(t, tutor),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"status": "status filter only applies to students"}),
		},
		{
			name: "Students see their assigned work with statuses", path: "/v1/assignments", token: getToken(t, ali),
			wantCode: http.StatusOK,
			wantData: marchallList(t, withStatus(a3, assignment.StatusOverdue), withStatus(a2, assignment.StatusPending), withStatus(a1, assignment.StatusSubmitted)),
		},
		{
			name: "Student pending filter", path: "/v1/assignments?status=PENDING", token: getToken(t, ali),
			wantCode: http.StatusOK, wantData: marchallList(t, withStatus(a2, assignment.StatusPending)),
		},
		{
			name: "Student overdue filter", path: "/v1/assignments?status=OVERDUE", token: getToken(t, ali),
			wantCode: http.StatusOK, wantData: marchallList(t, withStatus(a3, assignment.StatusOverdue)),
		},
		{
			name: "Student submitted filter", path: "/v1/assignments?status=SUBMITTED", token: getToken(t, ali),
			wantCode: http.StatusOK, wantData: marchallList(t, withStatus(a1, assignment.StatusSubmitted)),
		},
		{
			name: "Student ongoing filter", path: "/v1/assignments?published=ONGOING", token: getToken(t, ali),
			wantCode: http.StatusOK,
			wantData: marchallList(t, withStatus(a3, assignment.StatusOverdue), withStatus(a1, assignment.StatusSubmitted)),
		},
		{
			name: "Unassigned students get an empty list", path: "/v1/assignments", token: getToken(t, zoe),
			wantCode: http.StatusOK, wantData: marchallList(t),
		},
		{
			name: "Invalid published filter", path: "/v1/assignments?published=lol", token: getToken(t, tutor),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"published": "must be one of: SCHEDULED, ONGOING"}),
		},
		{
			name: "Invalid status filter", path: "/v1/assignments?status=lol", token: getToken(t, ali),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"status": "must be one of: PENDING, SUBMITTED, OVERDUE"}),
		},
		{
			name: "Ordering by title", path: "/v1/assignments?ordering=title", token: getToken(t, tutor),
			wantCode: http.StatusOK, wantData: marchallList(t, a1, a2, a3),
			extra: []string{a1.ID, a2.ID, a3.ID},
		},
		{
			name: "Ordering by due date, descending", path: "/v1/assignments?ordering=-due_date", token: getToken(t, tutor),
			wantCode: http.StatusOK, wantData: marchallList(t, a2, a1, a3),
			extra: []string{a2.ID, a1.ID, a3.ID},
		},
		{
			name: "Unknown ordering field", path: "/v1/assignments?ordering=lol", token: getToken(t, tutor),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"ordering": "cannot order by lol"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			// ordering assertions are strict on sequence
			if wantIDs, ok := tt.extra.([]string); ok {
				var assignments []assignment.Assignment
				if err := json.Unmarshal(rec.Body.Bytes(), &assignments); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				gotIDs := make([]string, 0, len(assignments))
				for _, a := range assignments {
					gotIDs = append(gotIDs, a.ID)
				}
				if len(gotIDs) != len(wantIDs) {
					t.Fatalf("failed! IDs = %v; want %v", gotIDs, wantIDs)
				}
				for i := range wantIDs {
					if gotIDs[i] != wantIDs[i] {
						t.Errorf("failed! IDs = %v; want %v", gotIDs, wantIDs)
						break
					}
				}
			}
		})
	}
}

func Test_assignmentApi_retrieve(t *testing.T) {
	app := setup(t)

	tutor := testutil.CreateUser(t, usrRepo, "Jane Tutor", "jane", "jane@test.cd", "", user.RoleTutor, true)
	tutor2 := testutil.CreateUser(t, usrRepo, "John Tutor", "john", "john@test.cd", "", user.RoleTutor, true)
	ali := testutil.CreateUser(t, usrRepo, "Ali Student", "ali", "ali@test.cd", "", user.RoleStudent, true)
	zoe := testutil.CreateUser(t, usrRepo, "Zoe Student", "zoe", "zoe@test.cd", "", user.RoleStudent, true)

	now := time.Now().UTC()
	a1 := testutil.CreateAssignment(t, assignRepo, tutor.ID, "Algebra Basics", now.Add(-2*time.Hour), now.Add(48*time.Hour), ali.ID)
	a2 := testutil.CreateAssignment(t, assignRepo, tutor.ID, "History Essay", now.Add(-48*time.Hour), now.Add(-time.Hour), ali.ID)

	withStatus := func(a assignment.Assignment, status assignment.Status) assignment.Assignment {
		a.Status = status
		return a
	}

	tests := []httpTest{
		{name: "Auth required", path: "/v1/assignments/" + a1.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Owners can retrieve", path: "/v1/assignments/" + a1.ID, token: getToken(t, tutor),
			wantCode: http.StatusOK, wantData: marchallObj(t, a1),
		},
		{
			name: "Other tutors cannot", path: "/v1/assignments/" + a1.ID, token: getToken(t, tutor2),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "Assigned students see their status", path: "/v1/assignments/" + a1.ID, token: getToken(t, ali),
			wantCode: http.StatusOK, wantData: marchallObj(t, withStatus(a1, assignment.StatusPending)),
		},
		{
			name: "Past due reads as overdue", path: "/v1/assignments/" + a2.ID, token: getToken(t, ali),
			wantCode: http.StatusOK, wantData: marchallObj(t, withStatus(a2, assignment.StatusOverdue)),
		},
		{
			name: "Unassigned students cannot", path: "/v1/assignments/" + a1.ID, token: getToken(t, zoe),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "Unknown assignment", path: "/v1/assignments/lol", token: getToken(t, tutor),
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

func Test_assignmentApi_update(t *testing.T) {
	app := setup(t)

	tutor := testutil.CreateUser(t, usrRepo, "Jane Tutor", "jane", "jane@test.cd", "", user.RoleTutor, true)
	tutor2 := testutil.CreateUser(t, usrRepo, "John Tutor", "john", "john@test.cd", "", user.RoleTutor, true)
	ali := testutil.CreateUser(t, usrRepo, "Ali Student", "ali", "ali@test.cd", "", user.RoleStudent, true)
	tutorToken := getToken(t, tutor)

	now := time.Now().UTC()
	a1 := testutil.CreateAssignment(t, assignRepo, tutor.ID, "Algebra Basics", now.Add(-2*time.Hour), now.Add(48*time.Hour), ali.ID)
	path := "/v1/assignments/" + a1.ID
	newDue := now.Add(96 * time.Hour).Truncate(time.Second)

	tests := []struct {
		name     string
		path     string
		token    string
		fields   url.Values
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
			name: "Students cannot update", path: path, token: getToken(t, ali),
			fields:   url.Values{"title": {"Hacked"}},
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Other tutors cannot update", path: path, token: getToken(t, tutor2),
			fields:   url.Values{"title": {"Hacked"}},
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Unknown assignment", path: "/v1/assignments/lol", token: tutorToken,
			fields:   url.Values{"title": {"Linear Algebra"}},
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "No updates provided", path: path, token: tutorToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "no updates provided"}),
		},
		{
			name: "Title cannot be blanked", path: path, token: tutorToken,
			fields:   url.Values{"title": {"   "}},
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"title": "title cannot be blank"}),
		},
		{
			name: "due_date must be RFC 3339", path: path, token: tutorToken,
			fields:   url.Values{"due_date": {"tomorrow"}},
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"due_date": "must be a valid RFC 3339 timestamp"}),
		},
		{
			name: "Partial updates", path: path, token: tutorToken,
			fields: url.Values{
				"title":    {"Linear Algebra"},
				"due_date": {newDue.Format(time.RFC3339)},
			},
			wantCode: http.StatusOK,
			extra: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var a assignment.Assignment
				if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if a.Title != "Linear Algebra" {
					t.Errorf("failed! Title = %q; want %q", a.Title, "Linear Algebra")
				}
				if !a.DueDate.Equal(newDue) {
					t.Errorf("failed! DueDate = %v; want %v", a.DueDate, newDue)
				}
				// untouched fields survive
				if !a.PublishedAt.Equal(a1.PublishedAt) || a.FileURL != a1.FileURL {
					t.Errorf("failed! PublishedAt = %v, FileURL = %q; want %v, %q", a.PublishedAt, a.FileURL, a1.PublishedAt, a1.FileURL)
				}

				stored, err := assignRepo.GetAssignment(context.Background(), a1.ID)
				if err != nil {
					t.Fatalf("GetAssignment(): %v", err)
				}
				if stored.Title != "Linear Algebra" {
					t.Errorf("failed! stored Title = %q; want %q", stored.Title, "Linear Algebra")
				}
			},
		},
		{
			name: "File replacement", path: path, token: tutorToken,
			files:    []testFile{{field: "file", name: "drills v2.pdf", contentType: "application/pdf", content: pdfStub}},
			wantCode: http.StatusOK,
			extra: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var a assignment.Assignment
				if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if a.FileURL == a1.FileURL {
					t.Errorf("failed! FileURL = %q; want a fresh object key", a.FileURL)
				}
				if !strings.HasPrefix(a.FileURL, "mem://assignments/") || !strings.HasSuffix(a.FileURL, "/drills_v2.pdf") {
					t.Errorf("failed! FileURL = %q", a.FileURL)
				}
				if blob, ok := fstore.Blob(a.FileURL); !ok || !bytes.Equal(blob, pdfStub) {
					t.Errorf("failed! blob = %q, ok = %v; want %q", blob, ok, pdfStub)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newUploadRequest(t, http.MethodPut, tt.path, tt.token, tt.fields, tt.files...)
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

func Test_assignmentApi_destroy(t *testing.T) {
	app := setup(t)

	tutor := testutil.CreateUser(t, usrRepo, "Jane Tutor", "jane", "jane@test.cd", "", user.RoleTutor, true)
	tutor2 := testutil.CreateUser(t, usrRepo, "John Tutor", "john", "john@test.cd", "", user.RoleTutor, true)
	ali := testutil.CreateUser(t, usrRepo, "Ali Student", "ali", "ali@test.cd", "", user.RoleStudent, true)
	tutorToken := getToken(t, tutor)

	now := time.Now().UTC()
	a1 := testutil.CreateAssignment(t, assignRepo, tutor.ID, "Algebra Basics", now.Add(-2*time.Hour), now.Add(48*time.Hour), ali.ID)
	path := "/v1/assignments/" + a1.ID

	// back the factory's FileURL with an actual blob so deletion is observable
	ctx := context.Background()
	if _, err := fstore.Put(ctx, "assignments/"+a1.Title, bytes.NewReader(pdfStub), "application/pdf"); err != nil {
		t.Fatalf("fstore.Put(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Students cannot delete", path: path, token: getToken(t, ali),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Other tutors cannot delete", path: path, token: getToken(t, tutor2),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Unknown assignment", path: "/v1/assignments/lol", token: tutorToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "Owners can delete", path: path, token: tutorToken, wantCode: http.StatusNoContent},
		{
			name: "Deletion is final", path: path, token: tutorToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodDelete

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusNoContent {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}

				// row, student copies and blob are all gone
				if _, err := assignRepo.GetAssignment(ctx, a1.ID); err != assignment.ErrNotFound {
					t.Errorf("GetAssignment() err = %v; want %v", err, assignment.ErrNotFound)
				}
				if _, err := assignRepo.GetStudentAssignment(ctx, a1.ID, ali.ID); err != assignment.ErrNotFound {
					t.Errorf("GetStudentAssignment() err = %v; want %v", err, assignment.ErrNotFound)
				}
				if _, ok := fstore.Blob(a1.FileURL); ok {
					t.Errorf("failed! blob %q still exists", a1.FileURL)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

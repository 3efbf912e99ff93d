package echoapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/kazi/apps/api/echo"
	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/assignment"
	"github.com/trezcool/kazi/core/submission"
	"github.com/trezcool/kazi/core/user"
	"github.com/trezcool/kazi/services/email"
	"github.com/trezcool/kazi/services/filestore"
	"github.com/trezcool/kazi/storage/database/dummy"
	"github.com/trezcool/kazi/tests"
)

var (
	usrRepo    user.Repository
	assignRepo assignment.Repository
	subRepo    submission.Repository
	fstore     *fssvc.MemStore
	usrSvc     user.Service

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

// setup wires a fresh in-memory app; the package-level repos point at its DB.
func setup(t *testing.T) *echoapi.Server {
	t.Helper()

	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)
	assignRepo = dummydb.NewAssignmentRepository(db)
	subRepo = dummydb.NewSubmissionRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	emailsvc.SentMessages = nil // reset
	fstore = fssvc.NewMemStore()
	usrSvc = user.NewService(usrRepo, mailSvc, conf)
	assignSvc := assignment.NewService(db, assignRepo, usrSvc, fstore, mailSvc, logger)
	subSvc := submission.NewService(db, subRepo, assignRepo, usrSvc, fstore)

	validate, translator := testutil.InitValidators()
	core.ParseEmailTemplates(logger)
	user.LoadCommonPasswords(logger)

	// set up server
	return echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			UserSvc:       usrSvc,
			AssignmentSvc: assignSvc,
			SubmissionSvc: subSvc,
			Validate:      validate,
			Translator:    translator,
		},
	)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// testFile is an upload on its way into a multipart request body.
type testFile struct {
	field       string
	name        string
	contentType string
	content     []byte
}

func newUploadRequest(
	t *testing.T,
	method, path, token string,
	fields url.Values,
	files ...testFile,
) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for field, vals := range fields {
		for _, val := range vals {
			if err := w.WriteField(field, val); err != nil {
				t.Fatalf("newUploadRequest(): %v", err)
			}
		}
	}
	for _, f := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		if f.contentType != "" {
			hdr.Set("Content-Type", f.contentType)
		}
		part, err := w.CreatePart(hdr)
		if err != nil {
			t.Fatalf("newUploadRequest(): %v", err)
		}
		if _, err = part.Write(f.content); err != nil {
			t.Fatalf("newUploadRequest(): %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("newUploadRequest(): %v", err)
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, usr user.User) string {
	claims := echoapi.GetUserClaims(usr)
	token, err := echoapi.GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

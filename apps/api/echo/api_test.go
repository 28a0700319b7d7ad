package echoapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/sanaa/core"
	"github.com/trezcool/sanaa/core/activity"
	"github.com/trezcool/sanaa/core/auth"
	"github.com/trezcool/sanaa/core/notification"
	"github.com/trezcool/sanaa/core/payment"
	"github.com/trezcool/sanaa/core/role"
	"github.com/trezcool/sanaa/core/student"
	authsvc "github.com/trezcool/sanaa/services/auth"
	inmemblob "github.com/trezcool/sanaa/storage/blob/inmem"
	inmemdb "github.com/trezcool/sanaa/storage/database/inmem"
	testutil "github.com/trezcool/sanaa/tests"
)

func TestMain(m *testing.M) {
	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	payment.InitValidators(validate, translator)
	os.Exit(m.Run())
}

const (
	ownerToken = "owner-id-token"
	guestToken = "guest-id-token"
)

func newTestServer(t *testing.T) (*Server, student.Repository) {
	t.Helper()

	conf := &core.Config{
		Env:               "TEST",
		TestMode:          true,
		AppName:           "Sanaa",
		SecretKey:         "secret",
		InitialAdminEmail: "owner@test.test",
		DefaultFee:        5000,
		Server: core.ServerConfig{
			Addr:                      ":0",
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 2 * time.Hour,
		},
	}

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	logger := testutil.NopLogger{}
	stdRepo := inmemdb.NewStudentRepository(db)
	notifSvc := notification.NewService(inmemdb.NewNotificationRepository(db))
	activitySvc := activity.NewService(inmemdb.NewActivityRepository(db))
	roleSvc := role.NewService(inmemdb.NewRoleRepository(db), activitySvc, logger, conf)
	stdSvc := student.NewService(stdRepo, inmemblob.NewService(), notifSvc, activitySvc, nil, logger, conf)
	pmtSvc := payment.NewService(inmemdb.NewPaymentRepository(db), stdSvc, notifSvc, activitySvc, logger)

	verifier := &authsvc.StaticVerifier{Users: map[string]auth.User{
		ownerToken: {Email: "owner@test.test", Name: "Owner"},
		guestToken: {Email: "guest@test.test", Name: "Guest"},
	}}

	server := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		DisableReqLogs: true,
		StudentSvc:     stdSvc,
		PaymentSvc:     pmtSvc,
		RoleSvc:        roleSvc,
		NotifSvc:       notifSvc,
		ActivitySvc:    activitySvc,
		AuthBroker:     auth.NewBroker(roleSvc, logger),
		Verifier:       verifier,
	})
	return server, stdRepo
}

func do(t *testing.T, server *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

// login exchanges a verifier token for an app JWT.
func login(t *testing.T, server *Server, idToken string) string {
	t.Helper()
	rec := do(t, server, http.MethodPost, "/v1/auth/login", "", echoMap{"id_token": idToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	var res LoginResponse
	decode(t, rec, &res)
	if res.Token == "" {
		t.Fatal("login returned an empty token")
	}
	return res.Token
}

type echoMap = map[string]interface{}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

func registrationBody() echoMap {
	return echoMap{
		"first_name":       "Asha",
		"last_name":        "Verma",
		"date_of_birth":    "2017-06-15",
		"age":              8,
		"grade":            "3rd",
		"parent_name":      "Ravi Verma",
		"parent_email":     "ravi@test.test",
		"parent_phone":     "+91 98765 43210",
		"address":          "42 Test Lane",
		"preferred_timing": "Saturday Morning",
	}
}

func TestAuthAPI_login(t *testing.T) {
	server, _ := newTestServer(t)

	rec := do(t, server, http.MethodPost, "/v1/auth/login", "", echoMap{"id_token": ownerToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var res LoginResponse
	decode(t, rec, &res)
	if res.User == nil || !res.User.IsAdmin {
		t.Errorf("owner should be bootstrapped as admin: %+v", res.User)
	}

	// a second identity is not an admin
	rec = do(t, server, http.MethodPost, "/v1/auth/login", "", echoMap{"id_token": guestToken})
	decode(t, rec, &res)
	if res.User == nil || res.User.IsAdmin {
		t.Errorf("guest should not be admin: %+v", res.User)
	}

	// bad tokens are rejected
	rec = do(t, server, http.MethodPost, "/v1/auth/login", "", echoMap{"id_token": "forged"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	// missing token is a field error
	rec = do(t, server, http.MethodPost, "/v1/auth/login", "", echoMap{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAuthAPI_me(t *testing.T) {
	server, _ := newTestServer(t)
	token := login(t, server, ownerToken)

	rec := do(t, server, http.MethodGet, "/v1/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var usr auth.User
	decode(t, rec, &usr)
	if usr.Email != "owner@test.test" || !usr.IsAdmin {
		t.Errorf("me = %+v", usr)
	}
}

func TestAuthAPI_tokenRefresh(t *testing.T) {
	server, _ := newTestServer(t)
	token := login(t, server, ownerToken)

	rec := do(t, server, http.MethodPost, "/v1/auth/token-refresh", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var res LoginResponse
	decode(t, rec, &res)
	if res.Token == "" {
		t.Error("refresh returned an empty token")
	}
}

func TestStudentAPI_register(t *testing.T) {
	server, _ := newTestServer(t)

	// public endpoint, no token
	rec := do(t, server, http.MethodPost, "/v1/students/register", "", registrationBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var std student.Student
	decode(t, rec, &std)
	if std.ID == "" || std.TotalFee != 5000 || std.Status != student.StatusRegistered {
		t.Errorf("register = %+v", std)
	}

	// invalid payloads get per-field errors
	rec = do(t, server, http.MethodPost, "/v1/students/register", "", echoMap{"first_name": "Asha"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStudentAPI_adminOnly(t *testing.T) {
	server, _ := newTestServer(t)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{name: "no token", token: "", want: http.StatusUnauthorized},
		{name: "non-admin", token: guestToken, want: http.StatusForbidden},
		{name: "admin", token: ownerToken, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var token string
			if tt.token != "" {
				token = login(t, server, tt.token)
			}
			rec := do(t, server, http.MethodGet, "/v1/students", token, nil)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestStudentAPI_crud(t *testing.T) {
	server, _ := newTestServer(t)
	token := login(t, server, ownerToken)

	rec := do(t, server, http.MethodPost, "/v1/students/register", "", registrationBody())
	var std student.Student
	decode(t, rec, &std)

	// retrieve
	rec = do(t, server, http.MethodGet, "/v1/students/"+std.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("retrieve status = %d", rec.Code)
	}

	// update
	rec = do(t, server, http.MethodPut, "/v1/students/"+std.ID, token, echoMap{"grade": "4th", "status": "active"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &std)
	if std.Grade != "4th" || std.Status != student.StatusActive {
		t.Errorf("update = %+v", std)
	}

	// invalid status value
	rec = do(t, server, http.MethodPut, "/v1/students/"+std.ID, token, echoMap{"status": "graduated"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("update status = %d, want 400", rec.Code)
	}

	// soft delete hides from listing
	rec = do(t, server, http.MethodDelete, "/v1/students/"+std.ID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	var students []student.Student
	rec = do(t, server, http.MethodGet, "/v1/students", token, nil)
	decode(t, rec, &students)
	if len(students) != 0 {
		t.Errorf("got %d students after soft delete, want 0", len(students))
	}

	// hard delete removes for good
	rec = do(t, server, http.MethodDelete, "/v1/students/"+std.ID+"?hard=true", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("hard delete status = %d", rec.Code)
	}
	rec = do(t, server, http.MethodGet, "/v1/students/"+std.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("retrieve status = %d, want 404", rec.Code)
	}
}

func TestStudentAPI_stats(t *testing.T) {
	server, _ := newTestServer(t)
	token := login(t, server, ownerToken)

	do(t, server, http.MethodPost, "/v1/students/register", "", registrationBody())

	rec := do(t, server, http.MethodGet, "/v1/students/stats", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats student.Stats
	decode(t, rec, &stats)
	if stats.Total != 1 || stats.TotalPending != 5000 || stats.TodayCount != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestStudentAPI_export(t *testing.T) {
	server, _ := newTestServer(t)
	token := login(t, server, ownerToken)

	do(t, server, http.MethodPost, "/v1/students/register", "", registrationBody())

	rec := do(t, server, http.MethodGet, "/v1/students/export", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "students-") {
		t.Errorf("content disposition = %q", cd)
	}
	if !strings.Contains(rec.Body.String(), `"Asha"`) {
		t.Errorf("export body missing student: %s", rec.Body.String())
	}
}

func TestPaymentAPI(t *testing.T) {
	server, _ := newTestServer(t)
	token := login(t, server, ownerToken)

	rec := do(t, server, http.MethodPost, "/v1/students/register", "", registrationBody())
	var std student.Student
	decode(t, rec, &std)

	rec = do(t, server, http.MethodPost, "/v1/payments", token, echoMap{
		"student_id": std.ID,
		"amount":     2000,
		"method":     "upi",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var pmt payment.Payment
	decode(t, rec, &pmt)
	if pmt.RecordedBy != "owner@test.test" {
		t.Errorf("RecordedBy = %q", pmt.RecordedBy)
	}

	// running total reflected on the student
	rec = do(t, server, http.MethodGet, "/v1/students/"+std.ID, token, nil)
	decode(t, rec, &std)
	if std.AmountPaid != 2000 {
		t.Errorf("AmountPaid = %d, want 2000", std.AmountPaid)
	}

	// student ledger
	var pmts []payment.Payment
	rec = do(t, server, http.MethodGet, fmt.Sprintf("/v1/students/%s/payments", std.ID), token, nil)
	decode(t, rec, &pmts)
	if len(pmts) != 1 {
		t.Errorf("got %d payments, want 1", len(pmts))
	}

	// unknown method is a field error
	rec = do(t, server, http.MethodPost, "/v1/payments", token, echoMap{
		"student_id": std.ID,
		"amount":     100,
		"method":     "barter",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRoleAPI(t *testing.T) {
	server, _ := newTestServer(t)
	token := login(t, server, ownerToken)

	rec := do(t, server, http.MethodPost, "/v1/roles", token, echoMap{"email": "helper@test.test"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var roles []role.Role
	rec = do(t, server, http.MethodGet, "/v1/roles", token, nil)
	decode(t, rec, &roles)
	if len(roles) != 2 { // owner + helper
		t.Errorf("got %d roles, want 2", len(roles))
	}

	// admins cannot revoke their own role
	rec = do(t, server, http.MethodDelete, "/v1/roles/owner@test.test", token, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}

	rec = do(t, server, http.MethodDelete, "/v1/roles/helper@test.test", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestNotificationAPI(t *testing.T) {
	server, _ := newTestServer(t)
	token := login(t, server, ownerToken)

	do(t, server, http.MethodPost, "/v1/students/register", "", registrationBody())

	var notifs []notification.Notification
	rec := do(t, server, http.MethodGet, "/v1/notifications?unread=true", token, nil)
	decode(t, rec, &notifs)
	if len(notifs) != 1 {
		t.Fatalf("got %d unread notifications, want 1", len(notifs))
	}

	rec = do(t, server, http.MethodPut, "/v1/notifications/"+notifs[0].ID+"/read", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = do(t, server, http.MethodGet, "/v1/notifications?unread=true", token, nil)
	decode(t, rec, &notifs)
	if len(notifs) != 0 {
		t.Errorf("got %d unread notifications after read, want 0", len(notifs))
	}

	// the audit trail is exposed
	var entries []activity.Entry
	rec = do(t, server, http.MethodGet, "/v1/activity", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("activity status = %d", rec.Code)
	}
	decode(t, rec, &entries)
	if len(entries) != 1 || entries[0].Action != activity.ActionCreated {
		t.Errorf("entries = %+v", entries)
	}
}

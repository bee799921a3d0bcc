package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/imagifine/internal/common"
	"github.com/dmitrijs2005/imagifine/internal/logging"
	"github.com/dmitrijs2005/imagifine/internal/server/auth"
	"github.com/dmitrijs2005/imagifine/internal/server/config"
	"github.com/dmitrijs2005/imagifine/internal/server/models"
	"github.com/dmitrijs2005/imagifine/internal/server/services"
)

type fakeUserService struct {
	registerOut *services.RegisterResult
	registerErr error

	verifyOut *services.AuthResult
	verifyErr error

	resendErr error

	loginOut *services.AuthResult
	loginErr error

	getOut *models.User
	getErr error

	refreshOut *services.TokenPair
	refreshErr error
}

func (f *fakeUserService) Register(ctx context.Context, username, email, password string) (*services.RegisterResult, error) {
	return f.registerOut, f.registerErr
}

func (f *fakeUserService) VerifyOTP(ctx context.Context, userID, code string) (*services.AuthResult, error) {
	return f.verifyOut, f.verifyErr
}

func (f *fakeUserService) ResendOTP(ctx context.Context, userID string) error {
	return f.resendErr
}

func (f *fakeUserService) Login(ctx context.Context, email, password string) (*services.AuthResult, error) {
	return f.loginOut, f.loginErr
}

func (f *fakeUserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return f.getOut, f.getErr
}

func (f *fakeUserService) RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	return f.refreshOut, f.refreshErr
}

type fakeCreditService struct {
	orderOut *services.OrderResult
	orderErr error

	verifyOut *services.VerifyResult
	verifyErr error

	listOut []*models.Transaction

	detailOut *services.TransactionDetail
	detailErr error

	overwriteOut int64
	overwriteErr error
}

func (f *fakeCreditService) CreateOrder(ctx context.Context, userID, planID string) (*services.OrderResult, error) {
	return f.orderOut, f.orderErr
}

func (f *fakeCreditService) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (*services.VerifyResult, error) {
	return f.verifyOut, f.verifyErr
}

func (f *fakeCreditService) ListTransactions(ctx context.Context, userID string) ([]*models.Transaction, error) {
	return f.listOut, nil
}

func (f *fakeCreditService) GetTransaction(ctx context.Context, userID, id string) (*services.TransactionDetail, error) {
	return f.detailOut, f.detailErr
}

func (f *fakeCreditService) OverwriteCredits(ctx context.Context, userID string, credits int64) (int64, error) {
	return f.overwriteOut, f.overwriteErr
}

type fakeContactService struct {
	submitOut *models.Contact
	submitErr error

	listOut []*models.Contact

	updateOut *models.Contact
	updateErr error
}

func (f *fakeContactService) Submit(ctx context.Context, firstName, lastName, email, query string) (*models.Contact, error) {
	return f.submitOut, f.submitErr
}

func (f *fakeContactService) List(ctx context.Context) ([]*models.Contact, error) {
	return f.listOut, nil
}

func (f *fakeContactService) UpdateStatus(ctx context.Context, id, status string) (*models.Contact, error) {
	return f.updateOut, f.updateErr
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.RateLimitRPS = 1000
	cfg.RateLimitBurst = 1000
	return cfg
}

func newTestServer(us *fakeUserService, cs *fakeCreditService, ct *fakeContactService) *Server {
	if us == nil {
		us = &fakeUserService{}
	}
	if cs == nil {
		cs = &fakeCreditService{}
	}
	if ct == nil {
		ct = &fakeContactService{}
	}
	l := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewServer(testConfig(), l, us, cs, ct)
}

func doRequest(t *testing.T, s *Server, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "198.51.100.7:12345"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func bearerFor(t *testing.T, s *Server, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, s.jwtSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return m
}

func TestLiveness(t *testing.T) {
	s := newTestServer(nil, nil, nil)
	rec := doRequest(t, s, http.MethodGet, "/", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if m := decodeMap(t, rec); m["message"] != "API is running" {
		t.Fatalf("unexpected body: %v", m)
	}
}

func TestRegister_Created(t *testing.T) {
	us := &fakeUserService{registerOut: &services.RegisterResult{UserID: "u1"}}
	s := newTestServer(us, nil, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/auth/register",
		`{"username":"a","email":"a@b.c","password":"pw"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if m := decodeMap(t, rec); m["userId"] != "u1" {
		t.Fatalf("unexpected body: %v", m)
	}
}

func TestRegister_ResendIs200(t *testing.T) {
	us := &fakeUserService{registerOut: &services.RegisterResult{UserID: "u1", Resent: true}}
	s := newTestServer(us, nil, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/auth/register",
		`{"username":"a","email":"a@b.c","password":"pw"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRegister_DuplicateVerified(t *testing.T) {
	us := &fakeUserService{registerErr: common.ErrorAlreadyExists}
	s := newTestServer(us, nil, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/auth/register",
		`{"username":"a","email":"a@b.c","password":"pw"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRegister_MailFailureIs500Generic(t *testing.T) {
	us := &fakeUserService{registerErr: errors.New("smtp timeout to 10.0.0.3")}
	s := newTestServer(us, nil, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/auth/register",
		`{"username":"a","email":"a@b.c","password":"pw"}`, "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.3") {
		t.Fatalf("internal detail leaked to client: %s", rec.Body.String())
	}
}

func TestVerifyOTP_ReturnsTokenAndUser(t *testing.T) {
	us := &fakeUserService{verifyOut: &services.AuthResult{
		Tokens: services.TokenPair{AccessToken: "at", RefreshToken: "rt"},
		User:   &models.User{ID: "u1", Username: "a", Email: "a@b.c", Credits: 10, IsVerified: true},
	}}
	s := newTestServer(us, nil, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/auth/verify-otp",
		`{"userId":"u1","otp":"123456"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	m := decodeMap(t, rec)
	if m["token"] != "at" || m["refreshToken"] != "rt" {
		t.Fatalf("unexpected tokens: %v", m)
	}
	user, ok := m["user"].(map[string]any)
	if !ok || user["id"] != "u1" || user["credits"] != float64(10) {
		t.Fatalf("unexpected user view: %v", m["user"])
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Fatalf("credential leaked in user view")
	}
}

func TestVerifyOTP_Expired(t *testing.T) {
	us := &fakeUserService{verifyErr: common.ErrOTPExpired}
	s := newTestServer(us, nil, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/auth/verify-otp",
		`{"userId":"u1","otp":"123456"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestVerifyOTP_UnknownUser(t *testing.T) {
	us := &fakeUserService{verifyErr: common.ErrorNotFound}
	s := newTestServer(us, nil, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/auth/verify-otp",
		`{"userId":"x","otp":"123456"}`, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	us := &fakeUserService{loginErr: common.ErrInvalidCredentials}
	s := newTestServer(us, nil, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/auth/login",
		`{"email":"a@b.c","password":"bad"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetUser_RequiresToken(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/auth/user", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/auth/user", "", "not-a-jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status = %d, want 401", rec.Code)
	}
}

func TestGetUser_ExpiredToken(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	token, err := auth.GenerateToken("u1", s.jwtSecret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	rec := doRequest(t, s, http.MethodGet, "/api/auth/user", "", token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestGetUser_Success(t *testing.T) {
	us := &fakeUserService{getOut: &models.User{ID: "u1", Username: "a", Credits: 7}}
	s := newTestServer(us, nil, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/auth/user", "", bearerFor(t, s, "u1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRefresh_RotatesTokens(t *testing.T) {
	us := &fakeUserService{refreshOut: &services.TokenPair{AccessToken: "at2", RefreshToken: "rt2"}}
	s := newTestServer(us, nil, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/auth/refresh", `{"refreshToken":"rt1"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if m := decodeMap(t, rec); m["token"] != "at2" || m["refreshToken"] != "rt2" {
		t.Fatalf("unexpected body: %v", m)
	}
}

func TestCreateOrder(t *testing.T) {
	cs := &fakeCreditService{orderOut: &services.OrderResult{OrderID: "order_abc", Amount: 200, Credits: 2}}
	s := newTestServer(nil, cs, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/credits/create-order",
		`{"planId":"basic"}`, bearerFor(t, s, "u1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	m := decodeMap(t, rec)
	if m["orderId"] != "order_abc" || m["amount"] != float64(200) || m["creditQuantity"] != float64(2) {
		t.Fatalf("unexpected body: %v", m)
	}
}

func TestCreateOrder_InvalidPlan(t *testing.T) {
	cs := &fakeCreditService{orderErr: common.ErrInvalidPlan}
	s := newTestServer(nil, cs, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/credits/create-order",
		`{"planId":"platinum"}`, bearerFor(t, s, "u1"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestVerifyPayment(t *testing.T) {
	cs := &fakeCreditService{verifyOut: &services.VerifyResult{Credits: 12, TransactionID: "t1"}}
	s := newTestServer(nil, cs, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/credits/verify-payment",
		`{"orderId":"order_abc","paymentId":"pay_1","signature":"abc"}`, bearerFor(t, s, "u1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	m := decodeMap(t, rec)
	if m["success"] != true || m["credits"] != float64(12) || m["transactionId"] != "t1" {
		t.Fatalf("unexpected body: %v", m)
	}
}

func TestVerifyPayment_BadSignature(t *testing.T) {
	cs := &fakeCreditService{verifyErr: common.ErrInvalidSignature}
	s := newTestServer(nil, cs, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/credits/verify-payment",
		`{"orderId":"order_abc","paymentId":"pay_1","signature":"forged"}`, bearerFor(t, s, "u1"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestVerifyPayment_MissingFields(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/credits/verify-payment",
		`{"orderId":"order_abc"}`, bearerFor(t, s, "u1"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetTransaction_NotFound(t *testing.T) {
	cs := &fakeCreditService{detailErr: common.ErrorNotFound}
	s := newTestServer(nil, cs, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/credits/transaction/t9", "", bearerFor(t, s, "u1"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestOverwriteCredits_AdminGate(t *testing.T) {
	us := &fakeUserService{getOut: &models.User{ID: "u1"}} // not admin
	cs := &fakeCreditService{overwriteOut: 42}
	s := newTestServer(us, cs, nil)

	rec := doRequest(t, s, http.MethodPut, "/api/credits/update",
		`{"credits":42}`, bearerFor(t, s, "u1"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin: status = %d, want 403", rec.Code)
	}

	us.getOut = &models.User{ID: "u1", IsAdmin: true}
	rec = doRequest(t, s, http.MethodPut, "/api/credits/update",
		`{"credits":42}`, bearerFor(t, s, "u1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: status = %d, want 200", rec.Code)
	}
	if m := decodeMap(t, rec); m["credits"] != float64(42) {
		t.Fatalf("unexpected body: %v", m)
	}
}

func TestContactSubmit(t *testing.T) {
	ct := &fakeContactService{submitOut: &models.Contact{ID: "c1", Status: models.ContactStatusNew}}
	s := newTestServer(nil, nil, ct)

	rec := doRequest(t, s, http.MethodPost, "/api/contact/submit",
		`{"firstName":"Ann","email":"ann@example.com","query":"hi"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
}

func TestContactList_AdminOnly(t *testing.T) {
	us := &fakeUserService{getOut: &models.User{ID: "u1"}}
	ct := &fakeContactService{listOut: []*models.Contact{{ID: "c1"}}}
	s := newTestServer(us, nil, ct)

	rec := doRequest(t, s, http.MethodGet, "/api/contact/all", "", bearerFor(t, s, "u1"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin: status = %d, want 403", rec.Code)
	}

	us.getOut = &models.User{ID: "u1", IsAdmin: true}
	rec = doRequest(t, s, http.MethodGet, "/api/contact/all", "", bearerFor(t, s, "u1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("admin: status = %d, want 200", rec.Code)
	}
}

func TestContactStatus_Update(t *testing.T) {
	us := &fakeUserService{getOut: &models.User{ID: "u1", IsAdmin: true}}
	ct := &fakeContactService{updateOut: &models.Contact{ID: "c1", Status: models.ContactStatusResolved}}
	s := newTestServer(us, nil, ct)

	rec := doRequest(t, s, http.MethodPatch, "/api/contact/c1/status",
		`{"status":"resolved"}`, bearerFor(t, s, "u1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 1
	l := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s := NewServer(cfg, l, &fakeUserService{}, &fakeCreditService{}, &fakeContactService{})
	router := s.Router()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:1000"

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status = %d, want 429", rec.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	s := newTestServer(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:12345"
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
}

package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/security/audit"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/security/auth"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/security/middleware"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/service"
)

type fakeUserRepo struct {
	byID    map[string]*domain.User
	byPhone map[string]*domain.User
	seq     int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*domain.User{}, byPhone: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Create(u *domain.User) error {
	if _, exists := f.byPhone[u.Phone]; exists {
		return fmt.Errorf("phone number already registered: %w", domain.ErrConflict)
	}
	f.seq++
	u.ID = fmt.Sprintf("user-%d", f.seq)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.byID[u.ID] = u
	f.byPhone[u.Phone] = u
	return nil
}

func (f *fakeUserRepo) GetByID(id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
}

func (f *fakeUserRepo) GetByPhone(phone string) (*domain.User, error) {
	if u, ok := f.byPhone[phone]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user with phone %s: %w", phone, domain.ErrNotFound)
}

func (f *fakeUserRepo) Verify(id string) (*domain.User, error) {
	u, err := f.GetByID(id)
	if err != nil {
		return nil, err
	}
	u.Verified = true
	return u, nil
}

func (f *fakeUserRepo) ListPendingVerification(page, pageSize int) ([]*domain.User, int, error) {
	pending := []*domain.User{}
	for _, u := range f.byID {
		if !u.Verified {
			pending = append(pending, u)
		}
	}
	return pending, len(pending), nil
}

type userTestServer struct {
	server *httptest.Server
	repo   *fakeUserRepo
	tokens *auth.TokenManager
}

func newUserTestServer(t *testing.T) *userTestServer {
	t.Helper()

	repo := newFakeUserRepo()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	userService := service.NewUserService(repo, nil, nil)
	h := NewUserHandler(userService, tokens, audit.NewLogger(discardLogger()), discardLogger())

	authenticate := middleware.Authenticate(tokens, nil)
	adminOnly := middleware.RequireRoles(nil, domain.RoleAdmin)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/users/register", h.Register)
	mux.HandleFunc("POST /api/v1/users/login", h.Login)
	mux.Handle("GET /api/v1/users/pending/verification", authenticate(adminOnly(http.HandlerFunc(h.PendingVerification))))
	mux.Handle("GET /api/v1/users/{id}", authenticate(http.HandlerFunc(h.GetByID)))
	mux.Handle("PATCH /api/v1/users/{id}/verify", authenticate(adminOnly(http.HandlerFunc(h.Verify))))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &userTestServer{server: server, repo: repo, tokens: tokens}
}

func (ts *userTestServer) post(t *testing.T, path, body, token string) *http.Response {
	t.Helper()
	return ts.do(t, "POST", path, body, token)
}

func (ts *userTestServer) patch(t *testing.T, path, body, token string) *http.Response {
	t.Helper()
	return ts.do(t, "PATCH", path, body, token)
}

func (ts *userTestServer) do(t *testing.T, method, path, body, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) apiResponse {
	t.Helper()
	defer resp.Body.Close()
	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope
}

func TestRegisterEndpoint(t *testing.T) {
	ts := newUserTestServer(t)

	resp := ts.post(t, "/api/v1/users/register",
		`{"name":"Alice","phone":"+250788111222","role":"TENANT","password":"secret1"}`, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	envelope := decodeEnvelope(t, resp)
	if envelope.Status != "success" {
		t.Fatalf("expected success envelope, got %+v", envelope)
	}

	// The password must never appear in any serialized user.
	raw, _ := json.Marshal(envelope.Data)
	if strings.Contains(strings.ToLower(string(raw)), "password") {
		t.Fatalf("password leaked into response: %s", raw)
	}
}

func TestRegisterValidationErrors(t *testing.T) {
	ts := newUserTestServer(t)

	resp := ts.post(t, "/api/v1/users/register", `{"name":"Alice"}`, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	envelope := decodeEnvelope(t, resp)
	if envelope.Status != "error" {
		t.Fatalf("expected error envelope, got %+v", envelope)
	}
	if len(envelope.Errors["phone"]) == 0 || len(envelope.Errors["password"]) == 0 {
		t.Fatalf("expected field errors for phone and password, got %+v", envelope.Errors)
	}
}

func TestRegisterAdminRoleRejected(t *testing.T) {
	ts := newUserTestServer(t)

	resp := ts.post(t, "/api/v1/users/register",
		`{"name":"Mallory","phone":"+250788999888","role":"ADMIN","password":"secret1"}`, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for ADMIN registration, got %d", resp.StatusCode)
	}
}

func TestLoginEndpoint(t *testing.T) {
	ts := newUserTestServer(t)

	resp := ts.post(t, "/api/v1/users/register",
		`{"name":"Alice","phone":"+250788111222","role":"TENANT","password":"secret1"}`, "")
	resp.Body.Close()

	resp = ts.post(t, "/api/v1/users/login", `{"phone":"+250788111222","password":"secret1"}`, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	envelope := decodeEnvelope(t, resp)
	data, _ := json.Marshal(envelope.Data)
	var login struct {
		Token string           `json:"token"`
		User  *domain.UserView `json:"user"`
	}
	if err := json.Unmarshal(data, &login); err != nil {
		t.Fatalf("decode login data: %v", err)
	}
	if login.Token == "" || login.User == nil {
		t.Fatalf("expected token and user, got %s", data)
	}

	claims, err := ts.tokens.ValidateToken(login.Token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.Role != domain.RoleTenant {
		t.Fatalf("expected TENANT claims, got %s", claims.Role)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	ts := newUserTestServer(t)

	resp := ts.post(t, "/api/v1/users/login", `{"phone":"+250788000000","password":"whatever"}`, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestVerifyRequiresPatchVerb(t *testing.T) {
	ts := newUserTestServer(t)

	resp := ts.post(t, "/api/v1/users/register",
		`{"name":"Alice","phone":"+250788111222","role":"TENANT","password":"secret1"}`, "")
	resp.Body.Close()

	adminToken, _ := ts.tokens.GenerateToken("admin-1", domain.RoleAdmin, "")
	resp = ts.post(t, "/api/v1/users/user-1/verify", "", adminToken)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for POST to a PATCH route, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	user, err := ts.repo.GetByID("user-1")
	if err != nil || user.Verified {
		t.Fatalf("POST must not verify the user, got %+v err=%v", user, err)
	}
}

func TestVerifyRequiresAdmin(t *testing.T) {
	ts := newUserTestServer(t)

	resp := ts.post(t, "/api/v1/users/register",
		`{"name":"Alice","phone":"+250788111222","role":"TENANT","password":"secret1"}`, "")
	resp.Body.Close()

	tenantToken, _ := ts.tokens.GenerateToken("user-1", domain.RoleTenant, "+250788111222")
	resp = ts.patch(t, "/api/v1/users/user-1/verify", "", tenantToken)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for tenant, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	adminToken, _ := ts.tokens.GenerateToken("admin-1", domain.RoleAdmin, "")
	resp = ts.patch(t, "/api/v1/users/user-1/verify", "", adminToken)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	user, err := ts.repo.GetByID("user-1")
	if err != nil || !user.Verified {
		t.Fatalf("expected verified user, got %+v err=%v", user, err)
	}
}

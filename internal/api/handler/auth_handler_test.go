package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/busticket/client/internal/api/view"
	"github.com/busticket/client/internal/core/domain"
	"github.com/busticket/client/internal/core/ports"
)

type stubSessions struct{ sess domain.Session }

func (s *stubSessions) Get() domain.Session { return s.sess.Clone() }

type stubAuthService struct {
	loginFn    func(ctx context.Context, email, password string) (*domain.User, error)
	registerFn func(ctx context.Context, in ports.RegisterInput) error
	logouts    int
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(context.Context) { s.logouts++ }

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) error {
	return s.registerFn(ctx, in)
}

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	r, err := view.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e.Renderer = r
	e.Validator = NewValidator()
	return e
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func TestAuthHandler_LoginRedirectsByRole(t *testing.T) {
	cases := []struct {
		role domain.Role
		want string
	}{
		{domain.RoleCustomer, "/"},
		{domain.RoleAdmin, "/admin"},
	}
	for _, tc := range cases {
		e := newTestEcho(t)
		stub := &stubAuthService{loginFn: func(_ context.Context, email, password string) (*domain.User, error) {
			if email != "a@example.com" || password != "pw" {
				t.Fatalf("unexpected credentials %q %q", email, password)
			}
			return &domain.User{ID: "1", Role: tc.role}, nil
		}}
		h := NewAuthHandler(stub, &stubSessions{}, zerolog.Nop())

		rec := httptest.NewRecorder()
		c := e.NewContext(formRequest(http.MethodPost, "/login", url.Values{"email": {"a@example.com"}, "password": {"pw"}}), rec)
		if err := h.Login(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != tc.want {
			t.Fatalf("%s: expected 303 to %s, got %d %s", tc.role, tc.want, rec.Code, rec.Header().Get(echo.HeaderLocation))
		}
	}
}

func TestAuthHandler_LoginFailureRendersForm(t *testing.T) {
	e := newTestEcho(t)
	stub := &stubAuthService{loginFn: func(context.Context, string, string) (*domain.User, error) {
		return nil, domain.NewAuthenticationError(nil)
	}}
	h := NewAuthHandler(stub, &stubSessions{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest(http.MethodPost, "/login", url.Values{"email": {"a@example.com"}, "password": {"bad"}}), rec)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Invalid email or password. Please try again.") {
		t.Fatalf("missing failure message: %s", body)
	}
	if !strings.Contains(body, `value="a@example.com"`) {
		t.Fatalf("email should be kept in the form")
	}
}

func TestAuthHandler_LoginSuperseded(t *testing.T) {
	e := newTestEcho(t)
	stub := &stubAuthService{loginFn: func(context.Context, string, string) (*domain.User, error) {
		return nil, domain.ErrLoginSuperseded
	}}
	h := NewAuthHandler(stub, &stubSessions{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest(http.MethodPost, "/login", url.Values{"email": {"a@example.com"}, "password": {"pw"}}), rec)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newTestEcho(t)
	stub := &stubAuthService{}
	h := NewAuthHandler(stub, &stubSessions{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/logout", nil), rec)
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.logouts != 1 {
		t.Fatalf("expected one logout, got %d", stub.logouts)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/login" {
		t.Fatalf("expected 303 to /login, got %d %s", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestAuthHandler_RegisterSuccess(t *testing.T) {
	e := newTestEcho(t)
	var got ports.RegisterInput
	stub := &stubAuthService{registerFn: func(_ context.Context, in ports.RegisterInput) error {
		got = in
		return nil
	}}
	h := NewAuthHandler(stub, &stubSessions{}, zerolog.Nop())

	form := url.Values{"name": {"Bob"}, "email": {"bob@example.com"}, "password": {"secret1"}, "phone": {"555"}}
	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest(http.MethodPost, "/register", form), rec)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.Name != "Bob" || got.Password != "secret1" || got.Phone != "555" {
		t.Fatalf("unexpected input %+v", got)
	}
	loc, _ := url.Parse(rec.Header().Get(echo.HeaderLocation))
	if rec.Code != http.StatusSeeOther || loc.Path != "/login" || loc.Query().Get("notice") != "Registration successful! Please log in." {
		t.Fatalf("expected 303 to /login with notice, got %d %s", rec.Code, loc)
	}
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	e := newTestEcho(t)
	stub := &stubAuthService{registerFn: func(context.Context, ports.RegisterInput) error {
		t.Fatalf("service must not be called")
		return nil
	}}
	h := NewAuthHandler(stub, &stubSessions{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest(http.MethodPost, "/register", url.Values{"name": {"Bob"}, "email": {"not-an-email"}, "password": {"pw"}}), rec)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "email must be a valid email") {
		t.Fatalf("missing validation message: %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), `value="pw"`) {
		t.Fatalf("password must not be echoed back")
	}
}

func TestAuthHandler_RegisterRejected(t *testing.T) {
	e := newTestEcho(t)
	stub := &stubAuthService{registerFn: func(context.Context, ports.RegisterInput) error {
		return domain.NewRegistrationError("User already exists", nil)
	}}
	h := NewAuthHandler(stub, &stubSessions{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest(http.MethodPost, "/register", url.Values{"name": {"Bob"}, "email": {"bob@example.com"}, "password": {"pw"}}), rec)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "User already exists") {
		t.Fatalf("expected 400 with backend message, got %d", rec.Code)
	}
}

func TestAuthHandler_SessionJSON(t *testing.T) {
	e := newTestEcho(t)
	sessions := &stubSessions{sess: domain.Session{User: &domain.User{ID: "1", Name: "Root", Role: domain.RoleAdmin}, Token: "tok"}}
	h := NewAuthHandler(&stubAuthService{}, sessions, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/session", nil), rec)
	if err := h.SessionJSON(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["authenticated"] != true || resp["isAdmin"] != true {
		t.Fatalf("unexpected response %v", resp)
	}
	if strings.Contains(rec.Body.String(), "tok") {
		t.Fatalf("token must not be exposed")
	}
}

func TestAuthHandler_LoginJSON(t *testing.T) {
	e := newTestEcho(t)
	stub := &stubAuthService{loginFn: func(context.Context, string, string) (*domain.User, error) {
		return &domain.User{ID: "7", Name: "Alice", Role: domain.RoleCustomer}, nil
	}}
	h := NewAuthHandler(stub, &stubSessions{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@example.com","password":"pw"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.LoginJSON(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		User domain.User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if rec.Code != http.StatusOK || resp.User.ID != "7" {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestAuthHandler_LoginJSONFailureReturnsError(t *testing.T) {
	e := newTestEcho(t)
	stub := &stubAuthService{loginFn: func(context.Context, string, string) (*domain.User, error) {
		return nil, domain.NewAuthenticationError(nil)
	}}
	h := NewAuthHandler(stub, &stubSessions{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@example.com","password":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	err := h.LoginJSON(e.NewContext(req, httptest.NewRecorder()))
	if !domain.IsAuthenticationError(err) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
}

func TestAuthHandler_LogoutAndRegisterJSON(t *testing.T) {
	e := newTestEcho(t)
	stub := &stubAuthService{registerFn: func(context.Context, ports.RegisterInput) error { return nil }}
	h := NewAuthHandler(stub, &stubSessions{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	if err := h.LogoutJSON(e.NewContext(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || stub.logouts != 1 {
		t.Fatalf("expected 204 and one logout, got %d %d", rec.Code, stub.logouts)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"name":"Bob","email":"bob@example.com","password":"secret1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	if err := h.RegisterJSON(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"name":"Bob"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	err := h.RegisterJSON(e.NewContext(req, httptest.NewRecorder()))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

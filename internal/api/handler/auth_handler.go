package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/busticket/client/internal/api/metrics"
	"github.com/busticket/client/internal/core/domain"
	"github.com/busticket/client/internal/core/ports"
)

// Messages shown on the auth screens.
const (
	msgLoginFailed      = "Invalid email or password. Please try again."
	msgLoginSuperseded  = "A newer login attempt replaced this one."
	msgRegistered       = "Registration successful! Please log in."
	msgPleaseLogInToBuy = "Please log in to book a ticket."
)

type AuthHandler struct {
	auth     ports.AuthService
	sessions ports.SessionReader
	log      zerolog.Logger
}

func NewAuthHandler(auth ports.AuthService, sessions ports.SessionReader, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, log: log}
}

type loginForm struct {
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password"`
}

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	IsAdmin       bool         `json:"isAdmin"`
	User          *domain.User `json:"user,omitempty"`
	CSRFToken     string       `json:"csrfToken,omitempty"` // sent back as X-CSRF-Token
}

type userResponse struct {
	User *domain.User `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// LoginPage renders GET /login.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login", newPage(c, h.sessions, "Login"))
}

// Login handles the login form. Admins land on the dashboard, everyone else
// on the search page.
func (h *AuthHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	user, err := h.auth.Login(c.Request().Context(), form.Email, form.Password)
	if err != nil {
		page := newPage(c, h.sessions, "Login")
		page.Data = form
		page.Error = msgLoginFailed
		status := http.StatusUnauthorized
		if errors.Is(err, domain.ErrLoginSuperseded) {
			page.Error = msgLoginSuperseded
			status = http.StatusConflict
		}
		recordAuth("login", err)
		return c.Render(status, "login", page)
	}

	recordAuth("login", nil)
	if user.Role == domain.RoleAdmin {
		return c.Redirect(http.StatusSeeOther, "/admin")
	}
	return c.Redirect(http.StatusSeeOther, domain.HomePath)
}

// Logout clears the session and returns to the login screen.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.auth.Logout(c.Request().Context())
	recordAuth("logout", nil)
	return c.Redirect(http.StatusSeeOther, domain.LoginPath)
}

// RegisterPage renders GET /register.
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	page := newPage(c, h.sessions, "Register")
	page.Data = ports.RegisterInput{}
	return c.Render(http.StatusOK, "register", page)
}

// Register handles the registration form. It never signs the user in.
func (h *AuthHandler) Register(c echo.Context) error {
	var in ports.RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	page := newPage(c, h.sessions, "Register")
	page.Data = ports.RegisterInput{Name: in.Name, Email: in.Email, Phone: in.Phone}
	if err := c.Validate(&in); err != nil {
		page.Error = err.Error()
		return c.Render(http.StatusBadRequest, "register", page)
	}

	if err := h.auth.Register(c.Request().Context(), in); err != nil {
		recordAuth("register", err)
		page.Error = registrationMessage(err)
		return c.Render(http.StatusBadRequest, "register", page)
	}

	recordAuth("register", nil)
	return redirect(c, domain.LoginPath, noticeParam, msgRegistered)
}

// SessionJSON reports the current session.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /api/session [get]
func (h *AuthHandler) SessionJSON(c echo.Context) error {
	sess := h.sessions.Get()
	return c.JSON(http.StatusOK, sessionResponse{
		Authenticated: sess.IsAuthenticated(),
		IsAdmin:       sess.IsAdmin(),
		User:          sess.User,
		CSRFToken:     csrfToken(c),
	})
}

// LoginJSON authenticates and establishes the session.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginForm  true  "Login credentials"
// @Success      200   {object}  userResponse
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) LoginJSON(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	user, err := h.auth.Login(c.Request().Context(), form.Email, form.Password)
	recordAuth("login", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// LogoutJSON clears the session. It always succeeds.
//
// @Summary      Logout
// @Tags         session
// @Success      204
// @Router       /api/auth/logout [post]
func (h *AuthHandler) LogoutJSON(c echo.Context) error {
	h.auth.Logout(c.Request().Context())
	recordAuth("logout", nil)
	return c.NoContent(http.StatusNoContent)
}

// RegisterJSON creates an account without signing in.
//
// @Summary      Register
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      ports.RegisterInput  true  "Account details"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/auth/register [post]
func (h *AuthHandler) RegisterJSON(c echo.Context) error {
	var in ports.RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err := h.auth.Register(c.Request().Context(), in)
	recordAuth("register", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, messageResponse{Message: msgRegistered})
}

func registrationMessage(err error) string {
	var regErr *domain.RegistrationError
	if errors.As(err, &regErr) {
		return regErr.Message
	}
	return "registration failed"
}

func recordAuth(op string, err error) {
	result := "success"
	switch {
	case errors.Is(err, domain.ErrLoginSuperseded):
		result = "superseded"
	case err != nil:
		result = "failure"
	}
	metrics.AuthOperationsTotal.WithLabelValues(op, result).Inc()
}

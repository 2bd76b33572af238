// Package backend is the HTTP/JSON client for the remote booking service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/busticket/client/internal/api/metrics"
	"github.com/busticket/client/internal/core/domain"
	"github.com/busticket/client/internal/core/ports"
)

const (
	defaultBaseURL = "http://localhost:8080/api"
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Config captures the settings for talking to the backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RPS limits outbound requests per second. Zero disables the limiter.
	RPS float64
}

// Client implements ports.AuthBackend, ports.BookingBackend and
// ports.AdminBackend over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	sanitizer  *bluemonday.Policy
	log        zerolog.Logger
}

// NewClient builds a Client. A nil httpClient gets one with cfg.Timeout.
func NewClient(httpClient *http.Client, cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), max(1, int(cfg.RPS)))
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    base,
		limiter:    limiter,
		sanitizer:  bluemonday.StrictPolicy(),
		log:        log,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type cancelRequest struct {
	BookingID int64 `json:"bookingId"`
}

// ack is the {"Message": ...} acknowledgement most mutating endpoints return.
// Field matching is case-insensitive so {"message": ...} decodes too.
type ack struct {
	Message string `json:"message"`
}

// Login calls POST /auth/login.
func (c *Client) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	var res ports.LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Register calls POST /auth/register. The success body is ignored.
func (c *Client) Register(ctx context.Context, in ports.RegisterInput) error {
	return c.do(ctx, http.MethodPost, "/auth/register", "", in, nil)
}

// Search calls GET /search. It is the only public booking endpoint.
func (c *Client) Search(ctx context.Context, q ports.SearchQuery) ([]domain.Schedule, error) {
	v := url.Values{}
	v.Set("source", q.Source)
	v.Set("destination", q.Destination)
	v.Set("date", q.Date)

	var schedules []domain.Schedule
	if err := c.do(ctx, http.MethodGet, "/search?"+v.Encode(), "", nil, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (c *Client) Book(ctx context.Context, token string, req domain.BookingRequest) (string, error) {
	var res ack
	if err := c.do(ctx, http.MethodPost, "/book", token, req, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

func (c *Client) Cancel(ctx context.Context, token string, bookingID int64) (string, error) {
	var res ack
	if err := c.do(ctx, http.MethodPost, "/cancel", token, cancelRequest{BookingID: bookingID}, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

func (c *Client) ListBookings(ctx context.Context, token string, userID domain.UserID) ([]domain.Booking, error) {
	var bookings []domain.Booking
	if err := c.do(ctx, http.MethodGet, "/bookings/"+url.PathEscape(userID.String()), token, nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) BookingDetails(ctx context.Context, token string, bookingID int64) (*domain.BookingDetails, error) {
	var details domain.BookingDetails
	if err := c.do(ctx, http.MethodGet, "/booking/"+strconv.FormatInt(bookingID, 10), token, nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (c *Client) CreateResource(ctx context.Context, token, kind string, body any) (string, error) {
	if !domain.ValidResourceKind(kind) {
		return "", domain.ErrInvalidResourceKind
	}
	var res ack
	if err := c.do(ctx, http.MethodPost, "/admin/"+kind, token, body, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

func (c *Client) UpdateResource(ctx context.Context, token, kind string, id int64, body any) (string, error) {
	if !domain.ValidResourceKind(kind) {
		return "", domain.ErrInvalidResourceKind
	}
	var res ack
	if err := c.do(ctx, http.MethodPut, resourcePath(kind, id), token, body, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

func (c *Client) DeleteResource(ctx context.Context, token, kind string, id int64) (string, error) {
	if !domain.ValidResourceKind(kind) {
		return "", domain.ErrInvalidResourceKind
	}
	var res ack
	if err := c.do(ctx, http.MethodDelete, resourcePath(kind, id), token, nil, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

// Ping checks that the backend answers at all; any HTTP response counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/search", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func resourcePath(kind string, id int64) string {
	return "/admin/" + kind + "/" + strconv.FormatInt(id, 10)
}

// do performs one JSON round trip. token, when non-empty, is sent as a
// bearer credential. Non-2xx answers become *ports.APIError.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("backend %s %s: %w", method, endpointLabel(path), err)
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	endpoint := endpointLabel(path)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.BackendRequestDuration.WithLabelValues(method, endpoint, "error").Observe(time.Since(start).Seconds())
		c.log.Error().Err(err).Str("method", method).Str("endpoint", endpoint).Msg("backend request failed")
		return fmt.Errorf("backend %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()
	metrics.BackendRequestDuration.WithLabelValues(method, endpoint, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug().Int("status", resp.StatusCode).Str("method", method).Str("endpoint", endpoint).Msg("backend returned error status")
		return &ports.APIError{StatusCode: resp.StatusCode, Message: c.errorMessage(raw)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// errorMessage extracts {"message": ...} from an error body as plain text.
func (c *Client) errorMessage(raw []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}
	return strings.TrimSpace(c.sanitizer.Sanitize(msg))
}

// endpointLabel strips ids and query strings so metric labels stay bounded.
func endpointLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if i > 0 && p != "" && strings.Trim(p, "0123456789") == "" {
			parts[i] = ":id"
		}
	}
	if len(parts) == 2 && (parts[0] == "bookings" || parts[0] == "booking") {
		parts[1] = ":id"
	}
	return "/" + strings.Join(parts, "/")
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *ports.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

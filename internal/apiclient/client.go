// Package apiclient talks to the storefront backend user contract: login,
// profile, order history and nudge telemetry.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"snackstack/internal/domain"
)

const DefaultBaseURL = "http://localhost:9191"

var (
	// ErrBadCredentials is a 401 from the login endpoint.
	ErrBadCredentials = errors.New("invalid email or password")
	// ErrUnavailable covers transport failures and unexpected statuses.
	ErrUnavailable = errors.New("backend unavailable")
	ErrNotFound    = errors.New("not found")
)

// LoginMessage maps a Login error to the copy shown on the sign-in form.
func LoginMessage(err error) string {
	switch {
	case err == nil:
		return "Login successful"
	case errors.Is(err, ErrBadCredentials):
		return "Invalid email or password"
	}
	return "Unable to reach the server. Please try again later."
}

// ServiceTokenHeader carries the shared secret that authorizes the engine
// to read and report for any customer.
const ServiceTokenHeader = "X-Service-Token"

type Client struct {
	BaseURL string
	HTTP    *http.Client
	// Token is sent as ServiceTokenHeader when set.
	Token string
	// Tries bounds attempts for idempotent reads.
	Tries        uint
	RetryInitial time.Duration
	// Limiter throttles telemetry sends.
	Limiter *rate.Limiter
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		HTTP:         &http.Client{Timeout: 10 * time.Second},
		Tries:        3,
		RetryInitial: 200 * time.Millisecond,
		Limiter:      rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StatusResponse is the {success, message} envelope of login and nudge.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type NudgeRequest struct {
	UserEmail   string `json:"userEmail"`
	ProductName string `json:"productName"`
	NudgeType   string `json:"nudgeType"`
}

// Login is never retried.
func (c *Client) Login(ctx context.Context, email, password string) (StatusResponse, error) {
	var out StatusResponse
	status, err := c.do(ctx, http.MethodPost, "/api/v1/user/login", loginRequest{email, password}, &out)
	if err != nil {
		return StatusResponse{}, err
	}
	switch {
	case status == http.StatusUnauthorized:
		return out, ErrBadCredentials
	case status != http.StatusOK:
		return out, fmt.Errorf("%w: login returned %d", ErrUnavailable, status)
	case !out.Success:
		return out, ErrBadCredentials
	}
	return out, nil
}

func (c *Client) User(ctx context.Context, email string) (domain.Profile, error) {
	var out domain.Profile
	status, err := c.do(ctx, http.MethodGet, "/api/v1/user/"+url.PathEscape(email), nil, &out)
	if err != nil {
		return domain.Profile{}, err
	}
	if err := statusErr("user", status); err != nil {
		return domain.Profile{}, err
	}
	return out, nil
}

// Orders fetches the order history, retrying transport errors and 5xx.
// It satisfies nudge.OrderHistory.
func (c *Client) Orders(ctx context.Context, email string) ([]domain.Order, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.RetryInitial
	bo.MaxInterval = 2 * time.Second

	return backoff.Retry(ctx, func() ([]domain.Order, error) {
		var out []domain.Order
		status, err := c.do(ctx, http.MethodGet, "/api/v1/user/orders/email/"+url.PathEscape(email), nil, &out)
		if err != nil {
			return nil, err
		}
		if status >= 500 {
			return nil, fmt.Errorf("%w: orders returned %d", ErrUnavailable, status)
		}
		if err := statusErr("orders", status); err != nil {
			return nil, backoff.Permanent(err)
		}
		if out == nil {
			out = []domain.Order{}
		}
		return out, nil
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(c.Tries),
	)
}

// SendNudge reports a shown nudge. It waits for the limiter within ctx.
// It satisfies nudge.Telemetry.
func (c *Client) SendNudge(ctx context.Context, email, productName string, kind domain.Kind) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("nudge throttled: %w", err)
		}
	}
	var out StatusResponse
	status, err := c.do(ctx, http.MethodPost, "/api/v1/user/nudge", NudgeRequest{email, productName, kind.String()}, &out)
	if err != nil {
		return err
	}
	return statusErr("nudge", status)
}

func statusErr(op string, status int) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%w: %s returned %d", ErrUnavailable, op, status)
}

// do sends body as JSON and decodes a JSON reply into out. Transport and
// decode failures are wrapped in ErrUnavailable.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set(ServiceTokenHeader, c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusUnauthorized {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return resp.StatusCode, fmt.Errorf("%w: decode %s: %v", ErrUnavailable, path, err)
		}
	}
	return resp.StatusCode, nil
}

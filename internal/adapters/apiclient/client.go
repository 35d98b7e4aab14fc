// Package apiclient implements ports.APIClient against the marketplace REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	domainauth "github.com/educonnect/educonnect-web/internal/domain/auth"
	"github.com/educonnect/educonnect-web/internal/domain/model"
	apperrors "github.com/educonnect/educonnect-web/internal/errors"
	"github.com/educonnect/educonnect-web/internal/ports"
)

const maxResponseBytes = 1 << 20

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. "https://portal.ewan-geniuses.com/api" (required).
	BaseURL string
	// Timeout bounds each request when HTTPClient is nil.
	Timeout time.Duration
	// HTTPClient overrides the default traced client (optional).
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is a thin JSON-over-HTTP client for the marketplace API.
type Client struct {
	base    *url.URL
	http    *http.Client
	logger  *slog.Logger
	extract *extractor
}

var _ ports.APIClient = (*Client)(nil)

// New constructs a Client.
func New(opts Options) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if raw == "" {
		return nil, errors.New("api base URL is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse api base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base URL must be http or https, got %q", base.Scheme)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:    base,
		http:    hc,
		logger:  logger.With("component", "apiclient"),
		extract: newExtractor(),
	}, nil
}

// request describes one API call.
type request struct {
	method string
	path   string
	token  string
	body   any
}

func (r request) op() string { return r.method + " " + r.path }

// do performs the call and returns the decoded response body. Non-JSON bodies decode
// as {"message": <text>}; empty bodies decode as {}.
func (c *Client) do(ctx context.Context, r request) (any, error) {
	var reader io.Reader
	if r.body != nil {
		buf, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", r.op(), err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.base.String()+r.path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", r.op(), err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &apperrors.NetworkError{Op: r.op(), Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.DebugContext(ctx, "close response body", "op", r.op(), "error", cerr)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &apperrors.NetworkError{Op: r.op(), Err: fmt.Errorf("read body: %w", err)}
	}
	data := decodeBody(raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, ok := data.(map[string]any)
		if !ok {
			body = map[string]any{"message": strings.TrimSpace(string(raw))}
		}
		c.logger.DebugContext(ctx, "api request rejected", "op", r.op(), "status", resp.StatusCode)
		return nil, &apperrors.APIError{Status: resp.StatusCode, Body: body}
	}
	return data, nil
}

func decodeBody(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return map[string]any{"message": string(raw)}
	}
	return data
}

func (c *Client) postAuth(ctx context.Context, path string, body any) (any, error) {
	return c.do(ctx, request{method: http.MethodPost, path: "/auth/" + path, body: body})
}

// Register calls POST /auth/register.
func (c *Client) Register(ctx context.Context, in ports.RegisterRequest) (ports.RegisterResponse, error) {
	data, err := c.postAuth(ctx, "register", in)
	if err != nil {
		return ports.RegisterResponse{}, err
	}

	out := ports.RegisterResponse{
		Token:       c.extract.str(exprToken, data),
		UserID:      domainauth.ID(c.extract.str(exprUserID, data)),
		PhoneNumber: domainauth.NormalizePhone(c.extract.str(exprPhone, data)),
		User:        c.profileAt(exprUser, data),
	}
	out.RequiresVerification = c.extract.truthy(exprRequiresVer, data) || out.Token == ""
	return out, nil
}

// Login calls POST /auth/login.
func (c *Client) Login(ctx context.Context, creds ports.Credentials) (ports.TokenResponse, error) {
	data, err := c.postAuth(ctx, "login", creds)
	if err != nil {
		return ports.TokenResponse{}, err
	}
	return c.tokenResponse(data), nil
}

// Logout calls POST /auth/logout with the bearer token.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/auth/logout", token: token})
	return err
}

// ForgotPassword calls POST /auth/forgot-password.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	_, err := c.postAuth(ctx, "forgot-password", map[string]string{"email": email})
	return err
}

// ResendCode calls POST /auth/resend-code, identifying the account by user id, else by phone.
func (c *Client) ResendCode(ctx context.Context, target ports.VerificationTarget) error {
	_, err := c.postAuth(ctx, "resend-code", targetBody(target, map[string]any{}))
	return err
}

// VerifyCode calls POST /auth/verify, identifying the account by user id, else by phone.
func (c *Client) VerifyCode(ctx context.Context, in ports.VerifyRequest) (ports.TokenResponse, error) {
	data, err := c.postAuth(ctx, "verify", targetBody(in.Target, map[string]any{"code": in.Code}))
	if err != nil {
		return ports.TokenResponse{}, err
	}
	return c.tokenResponse(data), nil
}

// GetProfile calls GET /auth/profile and, on any failure, GET /user/profile.
// The fallback's error is the one returned.
func (c *Client) GetProfile(ctx context.Context, token string) (domainauth.Profile, error) {
	data, err := c.do(ctx, request{method: http.MethodGet, path: "/auth/profile", token: token})
	if err != nil {
		c.logger.DebugContext(ctx, "primary profile endpoint failed, trying fallback", "error", err)
		data, err = c.do(ctx, request{method: http.MethodGet, path: "/user/profile", token: token})
		if err != nil {
			return domainauth.Profile{}, err
		}
	}
	p := c.profileAt(exprProfile, data)
	if p == nil {
		return domainauth.Profile{}, &apperrors.AppError{
			Code:    apperrors.ErrCodeUpstream,
			Message: "Invalid response from server",
			Cause:   fmt.Errorf("profile response is %T, not an object", data),
		}
	}
	return *p, nil
}

// List calls GET /{kind}. The bearer header is only sent when token is non-empty.
func (c *Client) List(ctx context.Context, kind model.ListingKind, token string) ([]model.Listing, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("list: unknown kind %q", kind)
	}
	data, err := c.do(ctx, request{method: http.MethodGet, path: "/" + string(kind), token: token})
	if err != nil {
		return nil, err
	}
	items, err := c.extract.listings(data)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return items, nil
}

func (c *Client) tokenResponse(data any) ports.TokenResponse {
	return ports.TokenResponse{
		Token: c.extract.str(exprToken, data),
		User:  c.profileAt(exprUser, data),
	}
}

func (c *Client) profileAt(expr string, data any) *domainauth.Profile {
	obj, ok := c.extract.object(expr, data)
	if !ok {
		return nil
	}
	p := domainauth.ProfileFromMap(obj)
	return &p
}

// targetBody adds exactly one account identifier to body: user_id when known, else phone_number.
func targetBody(t ports.VerificationTarget, body map[string]any) map[string]any {
	if t.UserID != "" {
		body["user_id"] = idValue(t.UserID)
	} else if phone := domainauth.NormalizePhone(t.PhoneNumber); phone != "" {
		body["phone_number"] = phone
	}
	return body
}

// idValue sends canonical integer ids as JSON numbers so they round-trip in the type the API
// issued. Anything else, including "0042", stays a string.
func idValue(id domainauth.ID) any {
	s := id.String()
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || strconv.FormatInt(n, 10) != s {
		return s
	}
	return json.Number(s)
}

package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/educonnect/educonnect-web/internal/domain/auth"
	"github.com/educonnect/educonnect-web/internal/domain/guard"
	"github.com/educonnect/educonnect-web/internal/domain/model"
	apperrors "github.com/educonnect/educonnect-web/internal/errors"
	"github.com/educonnect/educonnect-web/internal/service"
)

// APIHandlers exposes the session and catalogue to page scripts as JSON.
type APIHandlers struct {
	Auth     AuthOperations
	Resolver ProfileResolver
	Catalog  ListingSource
	Logger   *slog.Logger
}

func (h *APIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type sessionResponse struct {
	Authenticated bool             `json:"authenticated"`
	User          *domainauth.User `json:"user,omitempty"`
}

type authResponse struct {
	OK         bool             `json:"ok"`
	User       *domainauth.User `json:"user,omitempty"`
	RedirectTo string           `json:"redirect_to,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Session reports the authentication state, resolving a token-only session first.
// GET /api/session.
func (h *APIHandlers) Session(w http.ResponseWriter, r *http.Request) {
	device, ok := requestDevice(w, r)
	if !ok {
		return
	}
	sess := device.Session.Snapshot()
	if sess.HasToken() && sess.User == nil {
		if _, err := h.Resolver.ResolveProfile(r.Context(), device.ResolveKey(), device.Session); err != nil {
			if !apperrors.IsSessionInvalid(err) {
				writeServiceError(w, err)
				return
			}
		}
		sess = device.Session.Snapshot()
	}
	WriteJSON(w, http.StatusOK, sessionResponse{Authenticated: sess.IsAuthenticated(), User: sess.User})
}

// Login is the JSON variant of the login form.
// POST /api/auth/login.
func (h *APIHandlers) Login(w http.ResponseWriter, r *http.Request) {
	device, ok := requestDevice(w, r)
	if !ok {
		return
	}
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	res := h.Auth.Login(r.Context(), device.Session, req.Email, req.Password)
	h.writeResult(w, res, guard.LoginLanding(userRole(res.User)))
}

// Signup is the JSON variant of the signup form.
// POST /api/auth/signup.
func (h *APIHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	device, ok := requestDevice(w, r)
	if !ok {
		return
	}
	var req signupRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	res := h.Auth.Signup(r.Context(), device.Session, service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     signupRole(req.Role),
	})
	h.writeResult(w, res, guard.DashboardHome(userRole(res.User)))
}

func (h *APIHandlers) writeResult(w http.ResponseWriter, res service.AuthResult, landing string) {
	if !res.OK {
		writeServiceError(w, res.Err)
		return
	}
	WriteJSON(w, http.StatusOK, authResponse{OK: true, User: res.User, RedirectTo: landing})
}

// Logout clears the session.
// POST /api/auth/logout.
func (h *APIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	device, ok := requestDevice(w, r)
	if !ok {
		return
	}
	if err := h.Auth.Logout(r.Context(), device.Session); err != nil {
		h.logger().WarnContext(r.Context(), "logout failed", "error", err)
	}
	WriteJSON(w, http.StatusOK, authResponse{OK: true, RedirectTo: "/login"})
}

// Listings returns a catalogue collection, forwarding the bearer token when one is held.
// GET /api/{kind}.
func (h *APIHandlers) Listings(w http.ResponseWriter, r *http.Request) {
	kind, err := model.ParseListingKind(r.PathValue("kind"))
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
		return
	}
	items, err := h.Catalog.List(r.Context(), kind, GetSessionFromContext(r.Context()).Token)
	if err != nil {
		h.logger().WarnContext(r.Context(), "listing fetch failed", "kind", kind, "error", err)
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": items})
}

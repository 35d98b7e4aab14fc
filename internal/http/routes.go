package httpx

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/educonnect/educonnect-web/internal/domain/guard"
	"github.com/educonnect/educonnect-web/internal/domain/model"
	"github.com/educonnect/educonnect-web/internal/observability/statsd"
	"github.com/educonnect/educonnect-web/internal/ports"
)

// AuthService is what the router needs from service.AuthService.
type AuthService interface {
	AuthOperations
	ProfileResolver
}

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth    AuthService         // Required
	Catalog ListingSource       // Required
	Storage ports.DeviceStorage // Required: per-device session storage

	TemplateFS fs.FS // Required: layout.tmpl, partials/, pages/
	StaticFS   fs.FS // Optional: served under /static/

	// Optional: defaults to guard.DefaultRoutes()
	Routes *guard.RouteTable

	CookieDomain       string
	DeviceCookieName   string
	DeviceCookieMaxAge time.Duration

	CompressionEnabled bool
	CompressionLevel   int

	IsDev   bool
	Metrics statsd.Sink // Optional
	Logger  *slog.Logger
}

// NewRouter creates the HTTP handler: routes wrapped in recovery, logging, optional
// compression, CSRF protection, device sessions and the route guard (outermost first).
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Auth == nil || services.Catalog == nil || services.Storage == nil {
		return nil, errors.New("router: Auth, Catalog and Storage are required")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	renderer, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: services.TemplateFS, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}
	p := &pages{T: renderer, Logger: logger}

	mux := http.NewServeMux()
	registerPageRoutes(mux, &PageHandlers{Catalog: services.Catalog, Pages: p, Logger: logger})
	registerAuthRoutes(mux, &AuthHandlers{Svc: services.Auth, Pages: p, Logger: logger})
	registerAPIRoutes(mux, &APIHandlers{
		Auth:     services.Auth,
		Resolver: services.Auth,
		Catalog:  services.Catalog,
		Logger:   logger,
	})

	health := healthHandler(services.Storage, logger)
	mux.Handle("GET /healthz", health)
	mux.Handle("HEAD /healthz", health)
	if services.StaticFS != nil {
		mux.Handle("GET /static/", staticWithCacheHeaders(
			http.StripPrefix("/static/", http.FileServerFS(services.StaticFS)),
			services.IsDev,
		))
	}

	var handler http.Handler = mux
	handler = Guard(GuardConfig{
		Routes:   services.Routes,
		Resolver: services.Auth,
		Pages:    p,
		Metrics:  services.Metrics,
		Logger:   logger,
	})(handler)
	handler = DeviceSession(DeviceConfig{
		Storage:      services.Storage,
		CookieName:   services.DeviceCookieName,
		CookieDomain: services.CookieDomain,
		MaxAge:       services.DeviceCookieMaxAge,
		Logger:       logger,
	})(handler)
	handler = CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain})(handler)
	if services.CompressionEnabled {
		handler = Compression(CompressionConfig{Level: services.CompressionLevel, Logger: logger})(handler)
	}
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler, nil
}

func registerPageRoutes(mux *http.ServeMux, h *PageHandlers) {
	mux.HandleFunc("GET /{$}", h.Static(PageHome, "EduConnect"))
	mux.HandleFunc("GET /about", h.Static(PageAbout, "About us"))
	mux.HandleFunc("GET /contact", h.Static(PageContact, "Contact"))
	mux.HandleFunc("GET /services", h.Listings(model.ListingServices, "Services"))
	mux.HandleFunc("GET /courses", h.Listings(model.ListingCourses, "Courses"))

	sections := []struct{ pattern, title string }{
		{"/profile", "Profile"},
		{"/settings", "Settings"},
		{"/settings/{section}", "Settings"},
		{"/bookings", "Bookings"},
		{"/sessions", "Sessions"},
		{"/reviews", "Reviews"},
		{"/payments", "Payments"},
		{"/users", "Users"},
		{"/disputes", "Disputes"},
		{guard.DashboardPath, "Dashboard"},
		{guard.DashboardPath + "/{role}", "Dashboard"},
		{guard.DashboardPath + "/{role}/{section}", "Dashboard"},
	}
	for _, s := range sections {
		mux.HandleFunc("GET "+s.pattern, h.Section(s.title))
	}

	mux.HandleFunc("/", h.NotFound)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /login", h.ShowLogin)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /signup", h.ShowSignup)
	mux.HandleFunc("POST /signup", h.Signup)
	mux.HandleFunc("GET /register", h.ShowRegister)
	mux.HandleFunc("POST /register", h.Register)
	mux.HandleFunc("GET /verify-phone", h.ShowVerifyPhone)
	mux.HandleFunc("POST /verify-phone", h.VerifyPhone)
	mux.HandleFunc("POST /verify-phone/resend", h.ResendCode)
	mux.HandleFunc("GET /forgot-password", h.ShowForgotPassword)
	mux.HandleFunc("POST /forgot-password", h.ForgotPassword)
	mux.HandleFunc("GET /logout", h.Logout)
	mux.HandleFunc("POST /logout", h.Logout)
}

func registerAPIRoutes(mux *http.ServeMux, h *APIHandlers) {
	mux.HandleFunc("GET /api/session", h.Session)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/signup", h.Signup)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/{kind}", h.Listings)
}

// staticWithCacheHeaders disables caching in dev mode and allows an hour otherwise.
func staticWithCacheHeaders(handler http.Handler, isDev bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isDev {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		handler.ServeHTTP(w, r)
	})
}

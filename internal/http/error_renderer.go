package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/educonnect/educonnect-web/internal/errors"
)

// pages renders HTML pages and the fixed status views shared by handlers and middleware.
type pages struct {
	T      *TemplateRenderer
	Logger *slog.Logger
}

func (p *pages) logger() *slog.Logger {
	if p != nil && p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// render writes the page, falling back to a plain-text error when the template fails.
func (p *pages) render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any) {
	if p == nil || p.T == nil {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if err := p.T.Render(w, status, page, data); err != nil {
		p.logger().ErrorContext(r.Context(), "template rendering failed",
			"error", err,
			"page", page,
			"path", r.URL.Path,
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// FormErrorOpts contains what renderFormError needs to re-render a form.
type FormErrorOpts struct {
	Page   string
	Meta   PageMeta
	Err    error
	Form   map[string]string
	Extra  map[string]any
	Status int
}

// renderFormError re-renders a form with the error shown inline. Validation errors that name
// a field are attached to that field; everything else becomes the form-level message.
func (p *pages) renderFormError(w http.ResponseWriter, r *http.Request, opts FormErrorOpts) {
	b := NewTemplateData(r, opts.Meta).WithForm(opts.Form)
	if field := apperrors.GetField(opts.Err); field != "" {
		b.WithFieldErrors(map[string]string{field: apperrors.UserMessage(opts.Err)})
	} else {
		b.WithError(apperrors.UserMessage(opts.Err))
	}
	for k, v := range opts.Extra {
		b.With(k, v)
	}
	status := opts.Status
	if status == 0 {
		status = formErrorStatus(opts.Err)
	}
	p.render(w, r, status, opts.Page, b.Build())
}

// formErrorStatus is 422 for rejected input and 503 when the API could not be reached.
func formErrorStatus(err error) int {
	if apperrors.IsNetwork(err) {
		return http.StatusServiceUnavailable
	}
	return http.StatusUnprocessableEntity
}

// notAuthorized renders the fixed "Not authorized" view. It never redirects.
func (p *pages) notAuthorized(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		WriteError(w, ErrorParams{
			Code:    http.StatusForbidden,
			ErrCode: "insufficient_permissions",
			Err:     errors.New("insufficient permissions"),
		})
		return
	}
	data := NewTemplateData(r, PageMeta{Title: "Not authorized", CurrentPage: PageNotAuthorized}).Build()
	p.render(w, r, http.StatusForbidden, PageNotAuthorized, data)
}

// loading renders the retryable view shown while the profile cannot be resolved.
func (p *pages) loading(w http.ResponseWriter, r *http.Request, cause error) {
	msg := apperrors.UserMessage(cause)
	var appErr *apperrors.AppError
	if errors.As(cause, &appErr) && appErr.Message != "" {
		msg = appErr.Message
	}

	w.Header().Set("Retry-After", "5")
	if wantsJSON(r) {
		WriteError(w, ErrorParams{
			Code:    http.StatusServiceUnavailable,
			ErrCode: "profile_unavailable",
			Err:     errors.New(msg),
		})
		return
	}
	data := NewTemplateData(r, PageMeta{Title: "Loading", CurrentPage: PageLoading}).
		With("RetryURL", safeRedirectPath(r.URL.RequestURI())).
		WithError(msg).
		Build()
	p.render(w, r, http.StatusServiceUnavailable, PageLoading, data)
}

// notFound renders the 404 view.
func (p *pages) notFound(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: errors.New("not found")})
		return
	}
	data := NewTemplateData(r, PageMeta{Title: "Page not found", CurrentPage: PageNotFound}).Build()
	p.render(w, r, http.StatusNotFound, PageNotFound, data)
}

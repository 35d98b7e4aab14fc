package httpx

import (
	"maps"
	"net/http"

	domainauth "github.com/educonnect/educonnect-web/internal/domain/auth"
	"github.com/educonnect/educonnect-web/internal/domain/guard"
)

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	CurrentPage string
}

// TemplateDataBuilder provides a fluent API for building template data maps.
type TemplateDataBuilder struct {
	data map[string]any
}

// NewTemplateData creates a new TemplateDataBuilder initialized with basePageData.
func NewTemplateData(r *http.Request, meta PageMeta) *TemplateDataBuilder {
	return &TemplateDataBuilder{data: basePageData(r, meta)}
}

// basePageData constructs the common page data map: session, shell and navigation.
func basePageData(r *http.Request, meta PageMeta) map[string]any {
	sess := GetSessionFromContext(r.Context())
	data := map[string]any{
		"Title":           meta.Title,
		"CurrentPage":     meta.CurrentPage,
		"Path":            r.URL.Path,
		"IsAuthenticated": sess.IsAuthenticated(),
		"Dashboard":       guard.ShellFor(r.URL.Path) == guard.ShellDashboard,
		"Form":            map[string]string{},
		"Errors":          map[string]string{},
		"CSRFToken":       GetCSRFToken(r),
	}
	if sess.User != nil {
		data["User"] = sess.User
		data["Role"] = string(sess.User.Role)
		data["Home"] = guard.LoginLanding(sess.User.Role)
	}
	data["Nav"] = guard.NavigationFor(sess.Role())
	return data
}

// WithError sets a general error message.
func (b *TemplateDataBuilder) WithError(msg string) *TemplateDataBuilder {
	if msg == "" {
		return b
	}
	b.data["Error"] = true
	b.data["ErrorMessage"] = msg
	return b
}

// WithFieldErrors adds field-level validation errors.
func (b *TemplateDataBuilder) WithFieldErrors(errs map[string]string) *TemplateDataBuilder {
	if len(errs) > 0 {
		b.data["Errors"] = errs
	}
	return b
}

// WithNotice sets an informational message.
func (b *TemplateDataBuilder) WithNotice(msg string) *TemplateDataBuilder {
	if msg != "" {
		b.data["Notice"] = msg
	}
	return b
}

// WithForm echoes submitted values back into the form. Password fields are never echoed.
func (b *TemplateDataBuilder) WithForm(values map[string]string) *TemplateDataBuilder {
	form := make(map[string]string, len(values))
	maps.Copy(form, values)
	for _, k := range []string{"password", "password_confirmation"} {
		delete(form, k)
	}
	b.data["Form"] = form
	return b
}

// With adds a custom field to the template data.
func (b *TemplateDataBuilder) With(key string, value any) *TemplateDataBuilder {
	b.data[key] = value
	return b
}

// Build returns the final template data map.
func (b *TemplateDataBuilder) Build() map[string]any {
	return b.data
}

// userRole returns the role of the session's user, or the unknown role.
func userRole(u *domainauth.User) domainauth.Role {
	if u == nil {
		return domainauth.RoleUnknown
	}
	return u.Role
}

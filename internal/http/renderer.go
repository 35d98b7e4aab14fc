package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
)

// Page template names. Each pages/<name>.tmpl defines "content" and is rendered inside
// layout.tmpl.
const (
	PageHome           = "home"
	PageAbout          = "about"
	PageContact        = "contact"
	PageListings       = "listings"
	PageSection        = "section"
	PageLogin          = "login"
	PageSignup         = "signup"
	PageRegister       = "register"
	PageVerifyPhone    = "verify-phone"
	PageForgotPassword = "forgot-password"
	PageLoading        = "loading"
	PageNotAuthorized  = "not-authorized"
	PageNotFound       = "not-found"
)

// TemplateRenderer renders HTML pages. Every page is parsed into its own clone of the
// layout so that each can define "content" independently.
type TemplateRenderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS        // Filesystem containing layout.tmpl, partials/ and pages/ (required)
	Logger     *slog.Logger // Logger for template errors (optional)
}

// NewTemplateRenderer parses the layout, partials and every page template.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base, err := template.New("root").Funcs(templateFuncs()).ParseFS(cfg.TemplateFS, "layout.tmpl", "partials/*.tmpl")
	if err != nil {
		logger.Error("template parsing failed", slog.Any("error", err), slog.String("phase", "layout"))
		return nil, err
	}

	files, err := fs.Glob(cfg.TemplateFS, "pages/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("list page templates: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no page templates found")
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		t, cloneErr := base.Clone()
		if cloneErr != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", file, cloneErr)
		}
		if _, err = t.ParseFS(cfg.TemplateFS, file); err != nil {
			logger.Error("template parsing failed", slog.Any("error", err), slog.String("template", file))
			return nil, err
		}
		pages[strings.TrimSuffix(path.Base(file), ".tmpl")] = t
	}

	return &TemplateRenderer{pages: pages, logger: logger}, nil
}

// Has reports whether a page template with the given name was loaded.
func (r *TemplateRenderer) Has(page string) bool {
	_, ok := r.pages[page]
	return ok
}

// Render executes the page into a buffer and writes it with status.
// Nothing is written when execution fails.
func (r *TemplateRenderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page template %q", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("template execution failed",
			slog.String("template", page),
			slog.Any("error", err),
		)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Debug("failed to write rendered template",
			slog.String("template", page),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		// isActive marks a nav entry for the current path or anything below it.
		"isActive": func(current, target string) bool {
			if target == "/" {
				return current == "/"
			}
			return current == target || strings.HasPrefix(current, target+"/")
		},
		"title": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
	}
}

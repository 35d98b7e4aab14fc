package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/educonnect/educonnect-web/internal/domain/model"
	apperrors "github.com/educonnect/educonnect-web/internal/errors"
)

// ListingSource fetches catalogue collections. The token is optional.
type ListingSource interface {
	List(ctx context.Context, kind model.ListingKind, token string) ([]model.Listing, error)
}

// PageHandlers serves the marketplace pages behind the guard.
type PageHandlers struct {
	Catalog ListingSource
	Pages   *pages
	Logger  *slog.Logger
}

func (h *PageHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Static returns a handler for a page without dynamic content.
func (h *PageHandlers) Static(page, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := NewTemplateData(r, PageMeta{Title: title, CurrentPage: page}).Build()
		h.Pages.render(w, r, http.StatusOK, page, data)
	}
}

// Section returns a handler for a signed-in area. Sub-sections are taken from the
// {section} path value when the pattern has one.
func (h *PageHandlers) Section(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := NewTemplateData(r, PageMeta{Title: title, CurrentPage: PageSection}).
			With("Section", r.PathValue("section")).
			Build()
		h.Pages.render(w, r, http.StatusOK, PageSection, data)
	}
}

// Listings returns a handler that renders a catalogue collection. API failures are shown
// inline; the page itself still renders.
func (h *PageHandlers) Listings(kind model.ListingKind, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b := NewTemplateData(r, PageMeta{Title: title, CurrentPage: PageListings}).With("Kind", string(kind))

		token := GetSessionFromContext(r.Context()).Token
		items, err := h.Catalog.List(r.Context(), kind, token)
		if err != nil {
			h.logger().WarnContext(r.Context(), "listing fetch failed", "kind", kind, "error", err)
			b.WithError(apperrors.UserMessage(err))
		} else {
			b.With("Items", items)
		}
		h.Pages.render(w, r, http.StatusOK, PageListings, b.Build())
	}
}

// NotFound renders the 404 page for unmatched paths.
func (h *PageHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Pages.notFound(w, r)
}

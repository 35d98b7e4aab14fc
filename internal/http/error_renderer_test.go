package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/educonnect/educonnect-web/internal/errors"
)

func TestFormErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable,
		formErrorStatus(&apperrors.NetworkError{Op: "POST /auth/login", Err: context.DeadlineExceeded}))
	assert.Equal(t, http.StatusUnprocessableEntity,
		formErrorStatus(&apperrors.APIError{Status: http.StatusUnauthorized}))
	assert.Equal(t, http.StatusUnprocessableEntity, formErrorStatus(apperrors.Validation("bad")))
}

func TestRenderFormError(t *testing.T) {
	p := newTestPages(t)

	t.Run("field error is attached to the field", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/signup", nil)
		p.renderFormError(rec, r, FormErrorOpts{
			Page: PageSignup,
			Meta: signupMeta,
			Err:  apperrors.ValidationField("name", "Name is required"),
			Form: map[string]string{"email": "a@b.c", "password": "hunter22"},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), `<p class="field-error">Name is required</p>`)
		assert.Contains(t, rec.Body.String(), `value="a@b.c"`)
		assert.NotContains(t, rec.Body.String(), "hunter22")
	})

	t.Run("network error becomes the form message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/login", nil)
		p.renderFormError(rec, r, FormErrorOpts{
			Page: PageLogin,
			Meta: loginMeta,
			Err:  &apperrors.NetworkError{Op: "POST /auth/login", Err: errors.New("refused")},
		})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "Network error")
	})

	t.Run("explicit status wins", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/login", nil)
		p.renderFormError(rec, r, FormErrorOpts{Page: PageLogin, Meta: loginMeta, Err: errors.New("x"), Status: http.StatusOK})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Something went wrong")
	})
}

func TestPages_StatusViews(t *testing.T) {
	p := newTestPages(t)

	tests := []struct {
		name       string
		accept     string
		render     func(w http.ResponseWriter, r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "not authorized html",
			render:     p.notAuthorized,
			wantStatus: http.StatusForbidden,
			wantBody:   "Not authorized",
		},
		{
			name:       "not authorized json",
			accept:     "application/json",
			render:     p.notAuthorized,
			wantStatus: http.StatusForbidden,
			wantBody:   `"error":"insufficient_permissions"`,
		},
		{
			name:       "not found json",
			accept:     "application/json",
			render:     p.notFound,
			wantStatus: http.StatusNotFound,
			wantBody:   `"error":"not_found"`,
		},
		{
			name:       "loading html",
			render:     func(w http.ResponseWriter, r *http.Request) { p.loading(w, r, apperrors.Internal("Still loading")) },
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "Still loading",
		},
		{
			name:   "loading json",
			accept: "application/json",
			render: func(w http.ResponseWriter, r *http.Request) {
				p.loading(w, r, &apperrors.NetworkError{Op: "GET /auth/profile", Err: context.Canceled})
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `"message":"Network error"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/users", nil)
			if tt.accept != "" {
				r.Header.Set("Accept", tt.accept)
			}
			rec := httptest.NewRecorder()
			tt.render(rec, r)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestPages_RenderWithoutRenderer(t *testing.T) {
	var p *pages
	rec := httptest.NewRecorder()
	p.render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusNotFound, PageNotFound, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

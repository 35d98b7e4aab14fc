package httpx

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompression(t *testing.T) {
	body := strings.Repeat("Hello, EduConnect! ", 500)

	tests := []struct {
		name           string
		method         string
		acceptEncoding string
		contentType    string
		status         int
		expectGzip     bool
	}{
		{name: "html accepted", acceptEncoding: "gzip, deflate", contentType: "text/html; charset=utf-8", status: 200, expectGzip: true},
		{name: "json accepted", acceptEncoding: "br, gzip", contentType: "application/json", status: 200, expectGzip: true},
		{name: "gzip not accepted", acceptEncoding: "deflate", contentType: "text/html", status: 200},
		{name: "no header", contentType: "text/html", status: 200},
		{name: "q zero", acceptEncoding: "gzip;q=0, deflate", contentType: "text/html", status: 200},
		{name: "q positive", acceptEncoding: "gzip;q=0.5", contentType: "text/html", status: 200, expectGzip: true},
		{name: "binary type", acceptEncoding: "gzip", contentType: "image/png", status: 200},
		{name: "no content", acceptEncoding: "gzip", contentType: "text/html", status: http.StatusNoContent},
		{name: "head", method: http.MethodHead, acceptEncoding: "gzip", contentType: "text/html", status: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Compression(CompressionConfig{Level: 6})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				if tt.status != http.StatusNoContent {
					_, _ = io.WriteString(w, body)
				}
			}))

			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			r := httptest.NewRequest(method, "/", nil)
			if tt.acceptEncoding != "" {
				r.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			assert.Equal(t, tt.status, w.Code)
			if !tt.expectGzip {
				assert.Empty(t, w.Header().Get("Content-Encoding"))
				return
			}
			assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
			zr, err := gzip.NewReader(w.Body)
			require.NoError(t, err)
			got, err := io.ReadAll(zr)
			require.NoError(t, err)
			assert.Equal(t, body, string(got))
		})
	}
}

func TestCompression_PreEncoded(t *testing.T) {
	h := Compression(CompressionConfig{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		w.Header().Set("Content-Encoding", "br")
		_, _ = io.WriteString(w, "already-compressed")
	}))
	r := httptest.NewRequest(http.MethodGet, "/static/app.css", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, "br", w.Header().Get("Content-Encoding"))
	assert.Equal(t, "already-compressed", w.Body.String())
}

func TestCompression_DetectsContentType(t *testing.T) {
	h := Compression(CompressionConfig{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<!DOCTYPE html><html><body>"+strings.Repeat("x", 100)+"</body></html>")
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
}

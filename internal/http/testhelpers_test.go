package httpx

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	educonnect "github.com/educonnect/educonnect-web"
	"github.com/educonnect/educonnect-web/internal/adapters/memstore"
	authmock "github.com/educonnect/educonnect-web/internal/mocks/auth"
	"github.com/educonnect/educonnect-web/internal/ports"
	"github.com/educonnect/educonnect-web/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func templatesFS(t testing.TB) fs.FS {
	t.Helper()
	sub, err := fs.Sub(educonnect.TemplateFS, "web/templates")
	require.NoError(t, err)
	return sub
}

func newTestPages(t testing.TB) *pages {
	t.Helper()
	r, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: templatesFS(t), Logger: discardLogger()})
	require.NoError(t, err)
	return &pages{T: r, Logger: discardLogger()}
}

// testApp runs the full router against the fake marketplace API and in-memory storage.
type testApp struct {
	t       *testing.T
	API     *authmock.FakeAPI
	Storage *memstore.DeviceStorage
	Auth    *service.AuthService
	Server  *httptest.Server
	Client  *http.Client
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	api := authmock.NewFakeAPI()
	storage := memstore.NewDeviceStorage()
	svc, err := service.NewAuthService(service.AuthServiceOptions{API: api, Logger: discardLogger()})
	require.NoError(t, err)

	static, err := fs.Sub(educonnect.StaticFS, "web/static")
	require.NoError(t, err)

	handler, err := NewRouter(RouterServices{
		Auth:       svc,
		Catalog:    api,
		Storage:    storage,
		TemplateFS: templatesFS(t),
		StaticFS:   static,
		Logger:     discardLogger(),
	})
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(func() {
		srv.Close()
		svc.Wait()
	})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testApp{t: t, API: api, Storage: storage, Auth: svc, Server: srv, Client: client}
}

func (a *testApp) url(path string) string { return a.Server.URL + path }

func (a *testApp) cookie(name string) string {
	u, err := url.Parse(a.Server.URL)
	require.NoError(a.t, err)
	for _, c := range a.Client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// response is a fully read response.
type response struct {
	Status int
	Header http.Header
	Body   string
}

func (a *testApp) do(req *http.Request) response {
	a.t.Helper()
	resp, err := a.Client.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return response{Status: resp.StatusCode, Header: resp.Header, Body: string(body)}
}

func (a *testApp) get(path string) response {
	a.t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.url(path), nil)
	require.NoError(a.t, err)
	return a.do(req)
}

func (a *testApp) getJSON(path string) response {
	a.t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.url(path), nil)
	require.NoError(a.t, err)
	req.Header.Set("Accept", "application/json")
	return a.do(req)
}

// ensureCookies makes one request so the device and CSRF cookies are issued.
func (a *testApp) ensureCookies() {
	a.t.Helper()
	if a.cookie(DefaultCSRFCookieName) == "" || a.cookie(DefaultDeviceCookieName) == "" {
		a.get("/about")
	}
}

func (a *testApp) postForm(path string, values url.Values) response {
	a.t.Helper()
	a.ensureCookies()
	if values == nil {
		values = url.Values{}
	}
	values.Set(DefaultCSRFCookieName, a.cookie(DefaultCSRFCookieName))
	req, err := http.NewRequest(http.MethodPost, a.url(path), strings.NewReader(values.Encode()))
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req)
}

func (a *testApp) postJSON(path, body string) response {
	a.t.Helper()
	a.ensureCookies()
	req, err := http.NewRequest(http.MethodPost, a.url(path), strings.NewReader(body))
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(DefaultCSRFHeaderName, a.cookie(DefaultCSRFCookieName))
	return a.do(req)
}

// deviceStorage returns the storage namespace behind the client's device cookie.
func (a *testApp) deviceStorage() ports.DurableStorage {
	a.t.Helper()
	a.ensureCookies()
	id := a.cookie(DefaultDeviceCookieName)
	require.NotEmpty(a.t, id)
	return a.Storage.ForDevice(id)
}

// seedToken stores a bare token for the client's device, as if the profile was never fetched.
func (a *testApp) seedToken(token string) {
	a.t.Helper()
	require.NoError(a.t, a.deviceStorage().SetItem(context.Background(), ports.KeyAuthToken, token))
}

func (a *testApp) storedToken() string {
	a.t.Helper()
	v, _, err := a.deviceStorage().GetItem(context.Background(), ports.KeyAuthToken)
	require.NoError(a.t, err)
	return v
}

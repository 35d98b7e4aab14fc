package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/educonnect/educonnect-web/internal/domain/auth"
	"github.com/educonnect/educonnect-web/internal/domain/guard"
	"github.com/educonnect/educonnect-web/internal/service"
	"github.com/educonnect/educonnect-web/internal/session"
)

// AuthOperations is the subset of service.AuthService used by the auth handlers.
type AuthOperations interface {
	Login(ctx context.Context, store *session.Store, email, password string) service.AuthResult
	Signup(ctx context.Context, store *session.Store, in service.SignupInput) service.AuthResult
	Register(
		ctx context.Context,
		store *session.Store,
		pending *session.PendingStore,
		in service.RegistrationInput,
	) service.RegisterResult
	Verify(
		ctx context.Context,
		store *session.Store,
		pending *session.PendingStore,
		in service.VerifyInput,
	) service.AuthResult
	ResendCode(ctx context.Context, pending *session.PendingStore, userID domainauth.ID, phone string) service.AuthResult
	ForgotPassword(ctx context.Context, email string) service.AuthResult
	Logout(ctx context.Context, store *session.Store) error
}

// AuthHandlers serves the login, signup, registration, verification and logout pages.
type AuthHandlers struct {
	Svc    AuthOperations
	Pages  *pages
	Logger *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var (
	loginMeta    = PageMeta{Title: "Log in", CurrentPage: PageLogin}
	signupMeta   = PageMeta{Title: "Sign up", CurrentPage: PageSignup}
	registerMeta = PageMeta{Title: "Create your account", CurrentPage: PageRegister}
	verifyMeta   = PageMeta{Title: "Verify your phone", CurrentPage: PageVerifyPhone}
	forgotMeta   = PageMeta{Title: "Forgot password", CurrentPage: PageForgotPassword}
)

// requestDevice returns the request's device, writing a 500 when the middleware is missing.
func requestDevice(w http.ResponseWriter, r *http.Request) (*Device, bool) {
	d, ok := GetDeviceFromContext(r.Context())
	if !ok {
		http.Error(w, "device session unavailable", http.StatusInternalServerError)
	}
	return d, ok
}

// formValues trims the named POST form fields.
func formValues(r *http.Request, names ...string) map[string]string {
	if err := r.ParseForm(); err != nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(names))
	for _, n := range names {
		v := r.PostFormValue(n)
		if !strings.HasPrefix(n, "password") {
			v = strings.TrimSpace(v)
		}
		out[n] = v
	}
	return out
}

// ShowLogin renders the login form.
// GET /login?redirect_uri=<optional_path>.
func (h *AuthHandlers) ShowLogin(w http.ResponseWriter, r *http.Request) {
	data := NewTemplateData(r, loginMeta).
		With("RedirectURI", redirectParam(r.URL.Query().Get("redirect_uri"))).
		Build()
	h.Pages.render(w, r, http.StatusOK, PageLogin, data)
}

// Login authenticates with email and password, then returns to the captured path or the
// role's landing page.
// POST /login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	device, ok := requestDevice(w, r)
	if !ok {
		return
	}
	form := formValues(r, "email", "password", "redirect_uri")
	redirectURI := redirectParam(form["redirect_uri"])

	res := h.Svc.Login(r.Context(), device.Session, form["email"], form["password"])
	if !res.OK {
		h.Pages.renderFormError(w, r, FormErrorOpts{
			Page:  PageLogin,
			Meta:  loginMeta,
			Err:   res.Err,
			Form:  form,
			Extra: map[string]any{"RedirectURI": redirectURI},
		})
		return
	}

	target := guard.LoginLanding(userRole(res.User))
	if redirectURI != "" {
		target = redirectURI
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// ShowSignup renders the short signup form.
// GET /signup.
func (h *AuthHandlers) ShowSignup(w http.ResponseWriter, r *http.Request) {
	data := NewTemplateData(r, signupMeta).
		WithForm(map[string]string{"role": string(domainauth.RoleStudent)}).
		Build()
	h.Pages.render(w, r, http.StatusOK, PageSignup, data)
}

// Signup creates an account from name, email, password and a student/teacher choice.
// POST /signup.
func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	device, ok := requestDevice(w, r)
	if !ok {
		return
	}
	form := formValues(r, "name", "email", "password", "role")

	res := h.Svc.Signup(r.Context(), device.Session, service.SignupInput{
		Name:     form["name"],
		Email:    form["email"],
		Password: form["password"],
		Role:     signupRole(form["role"]),
	})
	if !res.OK {
		h.Pages.renderFormError(w, r, FormErrorOpts{Page: PageSignup, Meta: signupMeta, Err: res.Err, Form: form})
		return
	}
	http.Redirect(w, r, guard.DashboardHome(userRole(res.User)), http.StatusSeeOther)
}

// signupRole accepts only the two self-service roles.
func signupRole(raw string) domainauth.Role {
	if domainauth.Role(raw) == domainauth.RoleTeacher {
		return domainauth.RoleTeacher
	}
	return domainauth.RoleStudent
}

// ShowRegister renders the full registration form.
// GET /register.
func (h *AuthHandlers) ShowRegister(w http.ResponseWriter, r *http.Request) {
	h.Pages.render(w, r, http.StatusOK, PageRegister, NewTemplateData(r, registerMeta).Build())
}

// Register creates an account and either logs in or hands over to phone verification.
// POST /register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	device, ok := requestDevice(w, r)
	if !ok {
		return
	}
	form := formValues(r,
		"first_name", "last_name", "email", "phone", "gender", "nationality",
		"password", "password_confirmation", "accept_terms",
	)

	res := h.Svc.Register(r.Context(), device.Session, device.Pending, service.RegistrationInput{
		FirstName:            form["first_name"],
		LastName:             form["last_name"],
		Email:                form["email"],
		LocalPhone:           form["phone"],
		Gender:               form["gender"],
		Nationality:          form["nationality"],
		Password:             form["password"],
		PasswordConfirmation: form["password_confirmation"],
		AcceptTerms:          form["accept_terms"] != "",
	})
	switch {
	case !res.OK:
		h.Pages.renderFormError(w, r, FormErrorOpts{Page: PageRegister, Meta: registerMeta, Err: res.Err, Form: form})
	case res.RequiresVerification:
		http.Redirect(w, r, "/verify-phone", http.StatusSeeOther)
	default:
		http.Redirect(w, r, guard.DashboardHome(userRole(res.User)), http.StatusSeeOther)
	}
}

// verifyData builds the verify page data around the pending record, if any.
func (h *AuthHandlers) verifyData(r *http.Request, device *Device) *TemplateDataBuilder {
	b := NewTemplateData(r, verifyMeta)
	if rec, found := device.Pending.Peek(r.Context()); found {
		b.With("Pending", rec)
	}
	return b
}

// ShowVerifyPhone renders the code entry form for the pending registration.
// GET /verify-phone.
func (h *AuthHandlers) ShowVerifyPhone(w http.ResponseWriter, r *http.Request) {
	device, ok := requestDevice(w, r)
	if !ok {
		return
	}
	h.Pages.render(w, r, http.StatusOK, PageVerifyPhone, h.verifyData(r, device).Build())
}

// VerifyPhone submits the code. Explicit user_id/phone_number fields win over the pending record.
// POST /verify-phone.
func (h *AuthHandlers) VerifyPhone(w http.ResponseWriter, r *http.Request) {
	device, ok := requestDevice(w, r)
	if !ok {
		return
	}
	form := formValues(r, "code", "user_id", "phone_number")

	res := h.Svc.Verify(r.Context(), device.Session, device.Pending, service.VerifyInput{
		UserID: domainauth.ID(form["user_id"]),
		Phone:  form["phone_number"],
		Code:   form["code"],
	})
	if !res.OK {
		extra := map[string]any{}
		if rec, found := device.Pending.Peek(r.Context()); found {
			extra["Pending"] = rec
		}
		h.Pages.renderFormError(w, r, FormErrorOpts{
			Page:  PageVerifyPhone,
			Meta:  verifyMeta,
			Err:   res.Err,
			Form:  form,
			Extra: extra,
		})
		return
	}
	http.Redirect(w, r, guard.DashboardHome(userRole(res.User)), http.StatusSeeOther)
}

// ResendCode asks for a new verification code.
// POST /verify-phone/resend.
func (h *AuthHandlers) ResendCode(w http.ResponseWriter, r *http.Request) {
	device, ok := requestDevice(w, r)
	if !ok {
		return
	}
	form := formValues(r, "user_id", "phone_number")

	res := h.Svc.ResendCode(r.Context(), device.Pending, domainauth.ID(form["user_id"]), form["phone_number"])
	b := h.verifyData(r, device)
	status := http.StatusOK
	if res.OK {
		b.WithNotice("A new verification code has been sent.")
	} else {
		b.WithError(res.Error)
		status = formErrorStatus(res.Err)
	}
	h.Pages.render(w, r, status, PageVerifyPhone, b.Build())
}

// ShowForgotPassword renders the reset request form.
// GET /forgot-password.
func (h *AuthHandlers) ShowForgotPassword(w http.ResponseWriter, r *http.Request) {
	h.Pages.render(w, r, http.StatusOK, PageForgotPassword, NewTemplateData(r, forgotMeta).Build())
}

// ForgotPassword requests a reset email.
// POST /forgot-password.
func (h *AuthHandlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	form := formValues(r, "email")
	res := h.Svc.ForgotPassword(r.Context(), form["email"])
	if !res.OK {
		h.Pages.renderFormError(w, r, FormErrorOpts{Page: PageForgotPassword, Meta: forgotMeta, Err: res.Err, Form: form})
		return
	}
	data := NewTemplateData(r, forgotMeta).
		WithNotice("If an account exists for that email, a reset link is on its way.").
		Build()
	h.Pages.render(w, r, http.StatusOK, PageForgotPassword, data)
}

// Logout clears the session and returns to the login page. The remote revocation runs in
// the background.
// GET|POST /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	device, ok := requestDevice(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Logout(r.Context(), device.Session); err != nil {
		h.logger().WarnContext(r.Context(), "logout failed", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// redirectParam returns the sanitized return path, or "" when none was captured.
func redirectParam(raw string) string {
	if raw == "" {
		return ""
	}
	if p := safeRedirectPath(raw); p != "/" {
		return p
	}
	return ""
}

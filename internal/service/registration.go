package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	domainauth "github.com/educonnect/educonnect-web/internal/domain/auth"
	apperrors "github.com/educonnect/educonnect-web/internal/errors"
	"github.com/educonnect/educonnect-web/internal/ports"
	"github.com/educonnect/educonnect-web/internal/session"
	"github.com/educonnect/educonnect-web/internal/validation"
)

const (
	// countryCallingCode is prefixed to the local number entered on the registration form.
	countryCallingCode = "966"
	// registrationRoleID is the numeric role sent for self-registered accounts.
	registrationRoleID = 2
	minPasswordLength  = 6
)

var (
	localPhonePattern = regexp.MustCompile(`^5\d{8}$`)
	codePattern       = regexp.MustCompile(`^\d{4,}$`)
)

// RegistrationInput is the full registration form.
type RegistrationInput struct {
	FirstName            string
	LastName             string
	Email                string
	LocalPhone           string // nine digits starting with 5, without the country code
	Gender               string
	Nationality          string
	Password             string
	PasswordConfirmation string
	AcceptTerms          bool
}

// Validate checks the form and reports the first failing field in display order.
func (in RegistrationInput) Validate() error {
	return validation.New().
		Check("accept_terms", in.AcceptTerms, "You must accept the Terms & Conditions").
		Check("first_name", strings.TrimSpace(in.FirstName) != "" && strings.TrimSpace(in.LastName) != "",
			"First and last name are required").
		Validate("email", in.Email, validation.Required("Email is required")).
		Validate("password", in.Password,
			validation.MinLength(minPasswordLength, "Password must be at least 6 characters")).
		Validate("password_confirmation", in.PasswordConfirmation,
			validation.Equals(in.Password, "Passwords do not match")).
		Validate("phone", in.LocalPhone,
			validation.Pattern(localPhonePattern, "Phone must be 9 digits and start with 5 (e.g. 5XXXXXXXX)")).
		Err()
}

func (in RegistrationInput) request() ports.RegisterRequest {
	return ports.RegisterRequest{
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		Email:       strings.TrimSpace(in.Email),
		PhoneNumber: countryCallingCode + strings.TrimSpace(in.LocalPhone),
		Gender:      in.Gender,
		Nationality: in.Nationality,
		RoleID:      registrationRoleID,
		Password:    in.Password,
	}
}

// RegisterResult extends AuthResult with the verification hand-off.
type RegisterResult struct {
	AuthResult
	RequiresVerification bool
	Pending              domainauth.PendingVerification
}

// Register creates an account. When the API issues a token the user is logged in; otherwise
// the pending verification record is written for the verify page.
func (s *AuthService) Register(
	ctx context.Context,
	store *session.Store,
	pending *session.PendingStore,
	in RegistrationInput,
) (res RegisterResult) {
	defer s.observe("register", time.Now(), func() error { return res.Err })
	if err := in.Validate(); err != nil {
		return RegisterResult{AuthResult: failed(err)}
	}

	req := in.request()
	resp, err := s.api.Register(ctx, req)
	if err != nil {
		s.logger.InfoContext(ctx, "registration rejected", "error", err)
		return RegisterResult{AuthResult: failed(err)}
	}

	if resp.Token != "" && !resp.RequiresVerification {
		return RegisterResult{AuthResult: s.establish(ctx, store, resp.Token, resp.User, domainauth.RoleUnknown)}
	}

	rec := domainauth.PendingVerification{
		UserID:      resp.UserID,
		PhoneNumber: resp.PhoneNumber,
	}
	if rec.PhoneNumber == "" {
		rec.PhoneNumber = req.PhoneNumber
	}
	if saveErr := pending.Save(ctx, rec); saveErr != nil {
		s.logger.WarnContext(ctx, "persist pending verification failed", "error", saveErr)
	}
	return RegisterResult{
		AuthResult:           AuthResult{OK: true},
		RequiresVerification: true,
		Pending:              rec,
	}
}

// VerifyInput carries the code and the optional explicit target from the verify form.
type VerifyInput struct {
	UserID domainauth.ID
	Phone  string
	Code   string
}

// Verify confirms the phone code. Missing target fields fall back to the pending record.
func (s *AuthService) Verify(
	ctx context.Context,
	store *session.Store,
	pending *session.PendingStore,
	in VerifyInput,
) (res AuthResult) {
	defer s.observe("verify", time.Now(), func() error { return res.Err })
	code := strings.TrimSpace(in.Code)
	if !codePattern.MatchString(code) {
		return failed(apperrors.ValidationField("code", "Enter the verification code"))
	}

	target := s.verificationTarget(ctx, pending, in.UserID, in.Phone)
	if target.UserID == "" && target.PhoneNumber == "" {
		return failed(apperrors.Validation("Missing verification details. Please register again."))
	}

	resp, err := s.api.VerifyCode(ctx, ports.VerifyRequest{Code: code, Target: target})
	if err != nil {
		s.logger.InfoContext(ctx, "verification rejected", "error", err)
		return failed(err)
	}
	if resp.Token == "" {
		return failed(&apperrors.AppError{
			Code:    apperrors.ErrCodeUpstream,
			Message: "Verification succeeded but no token was returned",
		})
	}

	if delErr := pending.Delete(ctx); delErr != nil {
		s.logger.WarnContext(ctx, "delete pending verification failed", "error", delErr)
	}
	return s.establish(ctx, store, resp.Token, resp.User, domainauth.RoleUnknown)
}

// ResendCode asks the API to send a new code to the target, falling back to the pending record.
func (s *AuthService) ResendCode(
	ctx context.Context,
	pending *session.PendingStore,
	userID domainauth.ID,
	phone string,
) AuthResult {
	target := s.verificationTarget(ctx, pending, userID, phone)
	if target.UserID == "" && target.PhoneNumber == "" {
		return failed(apperrors.Validation("Missing verification details. Please register again."))
	}
	if err := s.api.ResendCode(ctx, target); err != nil {
		s.logger.InfoContext(ctx, "resend code rejected", "error", err)
		return failed(err)
	}
	return succeeded(nil)
}

// ForgotPassword requests a password reset email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) AuthResult {
	email = strings.TrimSpace(email)
	if email == "" {
		return failed(apperrors.ValidationField("email", "Email is required"))
	}
	if err := s.api.ForgotPassword(ctx, email); err != nil {
		s.logger.InfoContext(ctx, "forgot password rejected", "error", err)
		return failed(err)
	}
	return succeeded(nil)
}

// verificationTarget picks the account from the form values, then the pending record.
// A user id wins over a phone number so exactly one identifier reaches the API.
func (s *AuthService) verificationTarget(
	ctx context.Context,
	pending *session.PendingStore,
	userID domainauth.ID,
	phone string,
) ports.VerificationTarget {
	id := domainauth.ID(strings.TrimSpace(userID.String()))
	phone = domainauth.NormalizePhone(phone)
	if id == "" {
		if rec, ok := pending.Peek(ctx); ok {
			id = rec.UserID
			if phone == "" {
				phone = rec.PhoneNumber
			}
		}
	}
	if id != "" {
		return ports.VerificationTarget{UserID: id}
	}
	return ports.VerificationTarget{PhoneNumber: phone}
}

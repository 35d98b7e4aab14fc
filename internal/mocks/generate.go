// Package mocks provides mock implementations of the ports used by the auth service and handlers.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks. To regenerate mocks
// after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	api := mocks.NewMockAPIClient(ctrl)
//	api.EXPECT().Login(gomock.Any(), gomock.Any()).Return(ports.TokenResponse{Token: "t"}, nil)
package mocks

// Generate mock for APIClient interface from internal/ports package.
// This creates MockAPIClient with methods for all APIClient interface methods:
// Register, Login, Logout, ForgotPassword, ResendCode, VerifyCode, GetProfile, List
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=api_client_mock.go github.com/educonnect/educonnect-web/internal/ports APIClient

// Package auth implements login for the single operator account configured
// through the environment. There is no user table; the API protects one
// database and one admin credential is enough.
package auth

import (
	"context"
	"errors"
	"fmt"

	pkgauth "github.com/matiasleandrokruk/sqlpilot/pkg/auth"
)

// ErrInvalidCredentials is returned by Login for any credential failure.
// A single error for both unknown user and wrong password avoids leaking
// which one was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// RoleAdmin is the only role issued; every authenticated caller may query.
const RoleAdmin = "admin"

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Result is returned after a successful Login.
type Result struct {
	Token  string
	UserID string
	Role   string
}

// Service validates credentials against the configured admin account.
type Service struct {
	adminUser         string
	adminPasswordHash string
}

// NewService creates a Service for the given admin username and bcrypt hash.
func NewService(adminUser, adminPasswordHash string) *Service {
	return &Service{adminUser: adminUser, adminPasswordHash: adminPasswordHash}
}

// Login verifies credentials and returns a signed JWT.
func (s *Service) Login(_ context.Context, input LoginInput) (*Result, error) {
	if s.adminUser == "" || s.adminPasswordHash == "" {
		return nil, fmt.Errorf("auth: admin credentials not configured")
	}
	if input.Username != s.adminUser {
		return nil, ErrInvalidCredentials
	}
	if !pkgauth.VerifyPassword(s.adminPasswordHash, input.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := pkgauth.GenerateJWT(input.Username, RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("auth: generate JWT: %w", err)
	}

	return &Result{Token: token, UserID: input.Username, Role: RoleAdmin}, nil
}

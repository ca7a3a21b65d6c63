// Package auth wraps the Firebase Auth credential surface (Identity Toolkit)
// used for email/password sign-in and account creation. This is the client
// half of Firebase Auth; no admin-side token or user management is performed
// by this app.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// Identity is the authenticated user as reported by the auth provider. The
// UID is the permanent join key into the profile and record collections.
type Identity struct {
	UID         string
	DisplayName string
	Email       string
	PhotoURL    *string
	IDToken     string
}

// Auth errors, mapped from Identity Toolkit error codes. Each maps to a
// specific user-facing message; none is retried.
var (
	ErrUserNotFound  = errors.New("no account exists for this email")
	ErrWrongPassword = errors.New("incorrect password")
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrEmailInUse    = errors.New("email is already registered")
	ErrWeakPassword  = errors.New("password is too weak")
)

// Provider is the credential-auth surface the session store depends on.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignUp(ctx context.Context, displayName, email, password string) (*Identity, error)
}

// Client implements Provider against the Identity Toolkit relying-party API.
type Client struct {
	svc *identitytoolkit.Service
}

// NewClient builds an Identity Toolkit client authenticated by the Firebase
// web API key.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("apiKey is required")
	}
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("identitytoolkit.NewService: %w", err)
	}
	return &Client{svc: svc}, nil
}

// SignIn verifies an email/password pair and returns the resolved identity.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	resp, err := c.svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapIdentityToolkitError(err)
	}

	identity := &Identity{
		UID:         resp.LocalId,
		DisplayName: resp.DisplayName,
		Email:       resp.Email,
		IDToken:     resp.IdToken,
	}
	if resp.PhotoUrl != "" {
		photo := resp.PhotoUrl
		identity.PhotoURL = &photo
	}
	return identity, nil
}

// SignUp creates a new account and sets its display name on the auth profile.
func (c *Client) SignUp(ctx context.Context, displayName, email, password string) (*Identity, error) {
	resp, err := c.svc.Relyingparty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapIdentityToolkitError(err)
	}

	_, err = c.svc.Relyingparty.SetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{
		IdToken:           resp.IdToken,
		DisplayName:       displayName,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		// The account exists at this point; surface the profile-update
		// failure rather than pretending sign-up failed outright.
		return nil, fmt.Errorf("account created but display name update failed: %w", mapIdentityToolkitError(err))
	}

	return &Identity{
		UID:         resp.LocalId,
		DisplayName: displayName,
		Email:       email,
		IDToken:     resp.IdToken,
	}, nil
}

// mapIdentityToolkitError translates Identity Toolkit error codes into the
// package sentinels. Unrecognized failures pass through unchanged.
func mapIdentityToolkitError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	switch {
	case strings.HasPrefix(gerr.Message, "EMAIL_NOT_FOUND"):
		return fmt.Errorf("%w: %v", ErrUserNotFound, err)
	case strings.HasPrefix(gerr.Message, "INVALID_PASSWORD"):
		return fmt.Errorf("%w: %v", ErrWrongPassword, err)
	case strings.HasPrefix(gerr.Message, "INVALID_EMAIL"):
		return fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	case strings.HasPrefix(gerr.Message, "EMAIL_EXISTS"):
		return fmt.Errorf("%w: %v", ErrEmailInUse, err)
	case strings.HasPrefix(gerr.Message, "WEAK_PASSWORD"):
		return fmt.Errorf("%w: %v", ErrWeakPassword, err)
	default:
		return err
	}
}

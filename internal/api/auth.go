package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/threateye/threateye-cli/internal/errors"
	"github.com/threateye/threateye-cli/internal/session"
)

// Fallback messages shown when the server gives no usable error field.
const (
	fallbackLogin  = "Login failed"
	fallbackVerify = "Verification failed. Please check your code."
	fallbackResend = "Failed to resend code."
)

// LoginRequest is the body of POST /api/auth/login/
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the success payload of POST /api/auth/login/
type LoginResult struct {
	User  *session.User `json:"user"`
	Token string        `json:"token"`
}

// FieldErrors is the field-keyed error envelope the auth service returns on
// validation failure. Message resolves the displayed text with a fixed
// precedence so callers never duck-type the response shape.
type FieldErrors struct {
	Email          []string `json:"email"`
	Password       []string `json:"password"`
	NonFieldErrors []string `json:"non_field_errors"`
	Err            string   `json:"error"`
}

// Message returns the first available error in precedence order:
// email, password, non-field, generic, then the fallback string.
func (f *FieldErrors) Message() string {
	switch {
	case len(f.Email) > 0:
		return f.Email[0]
	case len(f.Password) > 0:
		return f.Password[0]
	case len(f.NonFieldErrors) > 0:
		return f.NonFieldErrors[0]
	case f.Err != "":
		return f.Err
	default:
		return fallbackLogin
	}
}

// Login authenticates against POST /api/auth/login/. On success the token
// is attached to the client for subsequent calls. On a server rejection the
// returned error is an AUTH-coded ClientError whose message follows the
// FieldErrors precedence; transport failures come back NET-coded.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/login/", LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	if !isSuccess(resp) {
		return nil, errors.New(errors.ErrCodeAuthLoginFailed, loginErrorMessage(resp))
	}

	var result LoginResult
	if err := decodeBody(resp, &result); err != nil {
		return nil, err
	}
	if result.User == nil || result.Token == "" {
		return nil, errors.New(errors.ErrCodeNetBadResponse, "login response missing user or token")
	}

	c.SetToken(result.Token)
	return &result, nil
}

func loginErrorMessage(resp *http.Response) string {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil || len(data) == 0 {
		return fallbackLogin
	}

	var fieldErrs FieldErrors
	if err := json.Unmarshal(data, &fieldErrs); err != nil {
		return fallbackLogin
	}
	return fieldErrs.Message()
}

// VerifyEmail submits a 6-digit code to POST /api/auth/verify-email/.
func (c *Client) VerifyEmail(ctx context.Context, email, code string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/verify-email/", map[string]string{
		"email": email,
		"code":  code,
	})
	if err != nil {
		return err
	}

	if !isSuccess(resp) {
		return errors.New(errors.ErrCodeAuthVerifyFailed, readErrorBody(resp, fallbackVerify))
	}

	return decodeBody(resp, nil)
}

// ResendVerification re-triggers code issuance via POST /api/auth/resend-verification/.
func (c *Client) ResendVerification(ctx context.Context, email string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/resend-verification/", map[string]string{
		"email": email,
	})
	if err != nil {
		return err
	}

	if !isSuccess(resp) {
		return errors.New(errors.ErrCodeAuthResendFailed, readErrorBody(resp, fallbackResend))
	}

	return decodeBody(resp, nil)
}

// Profile fetches the authenticated user's profile via GET /api/auth/profile/.
func (c *Client) Profile(ctx context.Context) (*session.User, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/auth/profile/", nil)
	if err != nil {
		return nil, err
	}

	if !isSuccess(resp) {
		return nil, errors.New(errors.ErrCodeAuthTokenInvalid, "failed to fetch profile").
			WithSuggestion("The stored token may be expired; run 'threateye login' again")
	}

	var user session.User
	if err := decodeBody(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

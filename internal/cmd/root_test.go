package cmd

import (
	goerrors "errors"
	"testing"

	"github.com/threateye/threateye-cli/internal/errors"
	"github.com/threateye/threateye-cli/internal/exitcode"
	"github.com/threateye/threateye-cli/internal/session"
)

func TestCommandsRegistered(t *testing.T) {
	want := []string{
		"login", "logout", "verify", "resend",
		"status", "dashboard", "plans", "subscribe", "confirm", "version",
	}

	registered := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range want {
		if !registered[name] {
			t.Errorf("Expected command %q to be registered", name)
		}
	}
}

// TestSessionGuardsCarryAuthCodes tests that the session guards return
// coded errors that map to the auth exit code
func TestSessionGuardsCarryAuthCodes(t *testing.T) {
	store, err := session.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	a := &app{store: store}

	_, err = a.requireSession()
	if err == nil {
		t.Fatal("Expected an error without a session")
	}
	var cliErr *errors.ClientError
	if !goerrors.As(err, &cliErr) || cliErr.Code != errors.ErrCodeAuthNotLoggedIn {
		t.Errorf("Expected %s, got %v", errors.ErrCodeAuthNotLoggedIn, err)
	}
	if got := exitcode.DetermineExitCode(err); got != exitcode.AuthError {
		t.Errorf("Expected exit code %d, got %d", exitcode.AuthError, got)
	}

	if err := store.Set(&session.Session{
		User:  &session.User{ID: 2, Email: "bo@example.com", IsVerified: false},
		Token: "tok-2",
	}); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	_, err = a.requireVerifiedSession()
	if err == nil {
		t.Fatal("Expected an error for an unverified session")
	}
	if !goerrors.As(err, &cliErr) || cliErr.Code != errors.ErrCodeAuthVerificationNeeded {
		t.Errorf("Expected %s, got %v", errors.ErrCodeAuthVerificationNeeded, err)
	}
	if got := exitcode.DetermineExitCode(err); got != exitcode.AuthError {
		t.Errorf("Expected exit code %d, got %d", exitcode.AuthError, got)
	}
}

func TestVerifyRejectsBadCodes(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{name: "too short", code: "12345"},
		{name: "too long", code: "1234567"},
		{name: "letters", code: "12a456"},
		{name: "empty", code: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := verifyCmd.RunE(verifyCmd, []string{tt.code})
			if err == nil {
				t.Errorf("Expected error for code %q", tt.code)
			}
		})
	}
}

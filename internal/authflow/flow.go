package authflow

import (
	stderrors "errors"
	"strings"
	"time"

	"github.com/threateye/threateye-cli/internal/api"
	"github.com/threateye/threateye-cli/internal/errors"
	"github.com/threateye/threateye-cli/internal/log"
	"github.com/threateye/threateye-cli/internal/session"
)

// State identifies where the user is in the authentication flow
type State int

const (
	// StateLoggedOut means no session exists
	StateLoggedOut State = iota
	// StateAuthenticating means a login request is outstanding
	StateAuthenticating
	// StateVerificationPending means the session exists but the email is
	// not yet verified; only the verification screen is reachable
	StateVerificationPending
	// StateAuthenticated means the session is fully established
	StateAuthenticated
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateVerificationPending:
		return "verification-pending"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "logged-out"
	}
}

// CodeLength is the exact number of digits a verification code carries
const CodeLength = 6

const (
	noticeTTL           = 5 * time.Second
	verifyRedirectDelay = 1500 * time.Millisecond
)

// NoticeKind distinguishes banner styling
type NoticeKind int

const (
	// NoticeError is a dismissible error banner
	NoticeError NoticeKind = iota
	// NoticeSuccess is a success banner
	NoticeSuccess
)

// Notice is a transient user-visible message. A zero ExpiresAt means the
// notice persists until the state machine replaces it (used for the
// verification-success message, which stays up until the redirect fires).
type Notice struct {
	Text      string
	Kind      NoticeKind
	ExpiresAt time.Time
}

// tokenBinder receives the session token when it changes
type tokenBinder interface {
	SetToken(token string)
}

// entitlementBinder is the slice of the entitlement gate the flow drives:
// session destruction must invalidate any cached decision.
type entitlementBinder interface {
	tokenBinder
	Invalidate()
}

// Flow drives login and the email-verification sub-flow. It owns all
// Session mutation: no other component calls the store's Set, Patch or
// Clear.
//
// Network calls follow a Begin/Apply protocol so the flow itself never
// blocks: Begin marks the operation in flight and hands back the current
// generation; the caller performs the request however it likes and feeds
// the outcome to Apply together with that generation. Apply discards the
// outcome when the generation moved on (the session was torn down while
// the request was outstanding), which keeps late responses from mutating
// state that no longer exists.
type Flow struct {
	store  *session.Store
	client tokenBinder
	gate   entitlementBinder
	logger *log.Logger
	now    func() time.Time

	state State
	gen   uint64

	loginInFlight  bool
	verifyInFlight bool
	resendInFlight bool

	// verification attempt, only meaningful in StateVerificationPending
	email      string
	code       string
	redirectAt time.Time

	notice *Notice
}

// New creates a Flow over the given store, binding the client and gate to
// whatever session the store rehydrated.
func New(store *session.Store, client tokenBinder, gate entitlementBinder) *Flow {
	f := &Flow{
		store:  store,
		client: client,
		gate:   gate,
		logger: log.DefaultLogger().WithGroup("authflow"),
		now:    time.Now,
	}

	if sess := store.Current(); sess.Valid() {
		f.bindToken(sess.Token)
		if sess.User.IsVerified {
			f.state = StateAuthenticated
		} else {
			f.state = StateVerificationPending
			f.email = sess.User.Email
		}
	}

	return f
}

// State returns the current flow state
func (f *Flow) State() State {
	return f.state
}

// Session returns a snapshot of the current session
func (f *Flow) Session() *session.Session {
	return f.store.Current()
}

// Notice returns the current banner, or nil
func (f *Flow) Notice() *Notice {
	return f.notice
}

// VerificationEmail returns the email the pending verification targets
func (f *Flow) VerificationEmail() string {
	return f.email
}

// Code returns the digits entered so far
func (f *Flow) Code() string {
	return f.code
}

// LoginInFlight reports whether a login request is outstanding
func (f *Flow) LoginInFlight() bool {
	return f.loginInFlight
}

// VerifyInFlight reports whether a verify request is outstanding
func (f *Flow) VerifyInFlight() bool {
	return f.verifyInFlight
}

// ResendInFlight reports whether a resend request is outstanding
func (f *Flow) ResendInFlight() bool {
	return f.resendInFlight
}

// BeginLogin marks a login as in flight. ok is false while another login is
// outstanding or the flow is past the login screen.
func (f *Flow) BeginLogin() (gen uint64, ok bool) {
	if f.loginInFlight || f.state != StateLoggedOut {
		return 0, false
	}

	f.loginInFlight = true
	f.state = StateAuthenticating
	f.notice = nil
	return f.gen, true
}

// ApplyLogin feeds the outcome of a login request back into the flow.
func (f *Flow) ApplyLogin(gen uint64, result *api.LoginResult, err error) {
	if gen != f.gen || !f.loginInFlight {
		// The session was torn down while the request was outstanding.
		f.logger.Debug("discarding stale login response")
		return
	}
	f.loginInFlight = false

	if err != nil {
		f.state = StateLoggedOut
		f.setNotice(displayMessage(err), NoticeError, noticeTTL)
		return
	}

	sess := &session.Session{User: result.User, Token: result.Token}
	if storeErr := f.store.Set(sess); storeErr != nil {
		f.logger.WithError(storeErr).Warn("failed to persist session")
		f.state = StateLoggedOut
		f.setNotice("Could not save your session. Please try again.", NoticeError, noticeTTL)
		return
	}

	f.bindToken(result.Token)

	if result.User.IsVerified {
		f.state = StateAuthenticated
		f.logger.Debug("login complete", "email", result.User.Email)
		return
	}

	f.state = StateVerificationPending
	f.email = result.User.Email
	f.code = ""
	f.logger.Debug("login requires verification", "email", result.User.Email)
}

// AppendCode adds one digit to the verification code. Non-digit input is
// discarded at entry time; the buffer never grows past the code length.
func (f *Flow) AppendCode(r rune) {
	if f.state != StateVerificationPending {
		return
	}
	if r < '0' || r > '9' {
		return
	}
	if len(f.code) >= CodeLength {
		return
	}
	f.code += string(r)
}

// DeleteCodeDigit removes the last entered digit
func (f *Flow) DeleteCodeDigit() {
	if len(f.code) > 0 {
		f.code = f.code[:len(f.code)-1]
	}
}

// SetCode replaces the code buffer, discarding non-digits and truncating to
// the code length. Used by the non-interactive CLI path.
func (f *Flow) SetCode(input string) {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' && b.Len() < CodeLength {
			b.WriteRune(r)
		}
	}
	f.code = b.String()
}

// CanVerify reports whether a verify submission is currently possible
func (f *Flow) CanVerify() bool {
	return f.state == StateVerificationPending &&
		!f.verifyInFlight &&
		len(f.code) == CodeLength
}

// BeginVerify marks a verification as in flight. The code is validated
// locally first: anything but exactly 6 digits is rejected without a
// network call.
func (f *Flow) BeginVerify() (gen uint64, email, code string, ok bool) {
	if !f.CanVerify() {
		return 0, "", "", false
	}

	f.verifyInFlight = true
	return f.gen, f.email, f.code, true
}

// ApplyVerify feeds the outcome of a verification request back into the
// flow. Success flips the persisted verification flag and arms a short
// redirect delay so the success banner can render before the transition.
func (f *Flow) ApplyVerify(gen uint64, err error) {
	if gen != f.gen || !f.verifyInFlight {
		f.logger.Debug("discarding stale verify response")
		return
	}
	f.verifyInFlight = false

	if err != nil {
		f.setNotice(displayMessage(err), NoticeError, noticeTTL)
		return
	}

	if patchErr := f.store.Patch(func(u *session.User) { u.IsVerified = true }); patchErr != nil {
		f.logger.WithError(patchErr).Warn("failed to persist verification flag")
		f.setNotice("Could not save your session. Please try again.", NoticeError, noticeTTL)
		return
	}

	// The success banner has no expiry: it stays until the transition.
	f.notice = &Notice{Text: "Email verified successfully! Redirecting...", Kind: NoticeSuccess}
	f.redirectAt = f.now().Add(verifyRedirectDelay)
	f.logger.Debug("verification complete", "email", f.email)
}

// BeginResend marks a resend as in flight. Resend is independent of a
// pending verify but must not run concurrently with itself.
func (f *Flow) BeginResend() (gen uint64, email string, ok bool) {
	if f.state != StateVerificationPending || f.resendInFlight {
		return 0, "", false
	}

	f.resendInFlight = true
	return f.gen, f.email, true
}

// ApplyResend feeds the outcome of a resend request back into the flow.
func (f *Flow) ApplyResend(gen uint64, err error) {
	if gen != f.gen || !f.resendInFlight {
		f.logger.Debug("discarding stale resend response")
		return
	}
	f.resendInFlight = false

	if err != nil {
		f.setNotice(displayMessage(err), NoticeError, noticeTTL)
		return
	}

	f.setNotice("Verification code resent! Check your email.", NoticeSuccess, noticeTTL)
}

// Advance performs time-driven transitions: the verification-success
// redirect once its delay has passed.
func (f *Flow) Advance(now time.Time) {
	if f.state == StateVerificationPending && !f.redirectAt.IsZero() && !now.Before(f.redirectAt) {
		f.state = StateAuthenticated
		f.email = ""
		f.code = ""
		f.redirectAt = time.Time{}
		f.notice = nil
	}
}

// ExpireNotices drops any notice past its display lifetime
func (f *Flow) ExpireNotices(now time.Time) {
	if f.notice != nil && !f.notice.ExpiresAt.IsZero() && now.After(f.notice.ExpiresAt) {
		f.notice = nil
	}
}

// Logout destroys the session and returns to the logged-out state.
func (f *Flow) Logout() {
	f.teardown()
}

// CancelVerification abandons the verification sub-flow. The half-verified
// session is destroyed, matching the "back to login" semantics.
func (f *Flow) CancelVerification() {
	f.teardown()
}

// teardown clears the session and bumps the generation so any response
// still in flight is discarded when it arrives.
func (f *Flow) teardown() {
	_ = f.store.Clear()
	f.bindToken("")
	if f.gate != nil {
		f.gate.Invalidate()
	}

	f.gen++
	f.loginInFlight = false
	f.verifyInFlight = false
	f.resendInFlight = false

	f.state = StateLoggedOut
	f.email = ""
	f.code = ""
	f.redirectAt = time.Time{}
	f.notice = nil
	f.logger.Debug("session torn down")
}

func (f *Flow) bindToken(token string) {
	if f.client != nil {
		f.client.SetToken(token)
	}
	if f.gate != nil {
		f.gate.SetToken(token)
	}
}

func (f *Flow) setNotice(text string, kind NoticeKind, ttl time.Duration) {
	f.notice = &Notice{Text: text, Kind: kind, ExpiresAt: f.now().Add(ttl)}
}

// displayMessage maps an error to user-facing banner text. Server-provided
// messages pass through; transport failures collapse to a generic retry
// prompt, never a raw stack trace.
func displayMessage(err error) string {
	var cliErr *errors.ClientError
	if stderrors.As(err, &cliErr) {
		if strings.HasPrefix(string(cliErr.Code), "NET-") {
			return "Network error. Please try again."
		}
		return cliErr.Message
	}
	return "Network error. Please try again."
}

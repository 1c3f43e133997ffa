package entitlement

import (
	"context"
	"strings"
	"time"

	"github.com/threateye/threateye-cli/internal/api"
	"github.com/threateye/threateye-cli/internal/log"
)

// Status classifies the outcome of a subscription check
type Status int

const (
	// StatusUnknown means no resolve has completed for the current session
	StatusUnknown Status = iota
	// StatusActive means the subscription service confirmed an active license
	StatusActive
	// StatusInactive means the service answered with a non-active status
	StatusInactive
	// StatusError means the check itself failed; access stays denied
	StatusError
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusInactive:
		return "inactive"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Allowed reports whether the status unlocks protected content. Only a
// confirmed active subscription does; unknown and error fail closed.
func (s Status) Allowed() bool {
	return s == StatusActive
}

// Decision is the resolved entitlement for one session token
type Decision struct {
	Status Status

	// RawStatus preserves the literal server status string for display
	// ("pending", "expired", "cancelled", "none", ...).
	RawStatus string

	// Plan details, present when the subscription is active
	PlanName           string
	MaxUsers           int
	EmailAlertsEnabled bool
	EndDate            *time.Time

	ResolvedAt time.Time
}

// DisplayStatus returns the status text shown on the restricted dashboard
func (d Decision) DisplayStatus() string {
	switch d.Status {
	case StatusError:
		return "STATUS CHECK FAILED"
	case StatusUnknown:
		return "CHECKING"
	default:
		if d.RawStatus == "" {
			return strings.ToUpper(d.Status.String())
		}
		return strings.ToUpper(d.RawStatus)
	}
}

// statusClient is the slice of the API client the gate needs
type statusClient interface {
	SubscriptionStatus(ctx context.Context) (*api.StatusResult, error)
}

// Gate is the sole authority for unlocking the protected dashboard. A
// decision is cached for the session token it was resolved with and is
// never reused across sessions.
//
// The gate has a single writer: all methods must be called from one
// goroutine (the TUI update loop, or the CLI main). Callers that fetch the
// subscription status on another goroutine hand the raw result back via
// Apply together with the token the request was issued for; Apply discards
// results whose token no longer matches, so a response that crosses a
// logout or a re-login can never land in the wrong session's cache.
type Gate struct {
	client statusClient
	token  string
	cached *Decision
	logger *log.Logger
	now    func() time.Time
}

// NewGate creates a gate bound to the given client
func NewGate(client statusClient) *Gate {
	return &Gate{
		client: client,
		logger: log.DefaultLogger().WithGroup("entitlement"),
		now:    time.Now,
	}
}

// SetToken binds the gate to a session token. A token change drops any
// cached decision; an empty token means logged out.
func (g *Gate) SetToken(token string) {
	if g.token != token {
		g.cached = nil
	}
	g.token = token
}

// Invalidate drops the cached decision. Called on logout and after events
// that may have changed the subscription (e.g. a completed purchase).
func (g *Gate) Invalidate() {
	g.cached = nil
}

// Token returns the token the gate is currently bound to
func (g *Gate) Token() string {
	return g.token
}

// Cached returns the decision cached for the current token, if any
func (g *Gate) Cached() (Decision, bool) {
	if g.token == "" || g.cached == nil {
		return Decision{Status: StatusUnknown}, false
	}
	return *g.cached, true
}

// Apply feeds a fetched subscription status back into the gate. token must
// be the token the request was issued for; when it no longer matches the
// bound token the result is discarded and ok is false. A fetch error yields
// a fail-closed Error decision that is never cached, so the next resolve
// retries.
func (g *Gate) Apply(token string, result *api.StatusResult, err error) (Decision, bool) {
	if token == "" || token != g.token {
		g.logger.Debug("discarding entitlement result for replaced session")
		return Decision{Status: StatusUnknown}, false
	}

	if err != nil {
		g.logger.WithError(err).Debug("subscription check failed")
		return Decision{Status: StatusError, ResolvedAt: g.now()}, true
	}

	decision := Decision{
		RawStatus:  result.Status,
		ResolvedAt: g.now(),
	}

	if strings.EqualFold(result.Status, "active") {
		decision.Status = StatusActive
		decision.PlanName = result.Plan
		decision.MaxUsers = result.MaxUsers
		decision.EmailAlertsEnabled = result.EmailAlertsEnabled
		decision.EndDate = result.EndDate
	} else {
		decision.Status = StatusInactive
	}

	g.logger.Debug("subscription resolved", "status", result.Status)
	g.cached = &decision
	return decision, true
}

// Resolve returns the entitlement decision for the current token, reusing
// the cached value when present. Without a token it answers Unknown
// immediately and issues no network call.
func (g *Gate) Resolve(ctx context.Context) Decision {
	if g.token == "" {
		return Decision{Status: StatusUnknown}
	}

	if g.cached != nil {
		return *g.cached
	}

	return g.Refresh(ctx)
}

// Refresh bypasses the cache and asks the subscription service again. The
// token is captured before the call so a session replaced mid-flight (the
// fetch may unwind arbitrary callbacks) never receives the old session's
// decision.
func (g *Gate) Refresh(ctx context.Context) Decision {
	token := g.token
	if token == "" {
		return Decision{Status: StatusUnknown}
	}

	result, err := g.client.SubscriptionStatus(ctx)
	decision, _ := g.Apply(token, result, err)
	return decision
}

package routeguard

import (
	"github.com/threateye/threateye-cli/internal/session"
)

// Route identifies a screen the client can show
type Route int

const (
	// RouteLogin is the email/password screen
	RouteLogin Route = iota
	// RouteVerify is the email-verification screen
	RouteVerify
	// RouteDashboard is the protected dashboard
	RouteDashboard
	// RoutePlans is the subscription plan listing
	RoutePlans
	// RoutePaymentSuccess is the payment-redirect success screen
	RoutePaymentSuccess
	// RoutePaymentFailed is the payment-redirect failure screen
	RoutePaymentFailed
)

// String returns the route name
func (r Route) String() string {
	switch r {
	case RouteLogin:
		return "login"
	case RouteVerify:
		return "verify"
	case RouteDashboard:
		return "dashboard"
	case RoutePlans:
		return "plans"
	case RoutePaymentSuccess:
		return "payment-success"
	case RoutePaymentFailed:
		return "payment-failed"
	default:
		return "unknown"
	}
}

// Resolve maps a requested route to the one the session permits. It is a
// pure function: no side effects, no mutation, no network.
//
//   - no session: only login is reachable
//   - unverified session: only the verification screen is reachable
//   - verified session: dashboard, plans and payment-result screens are
//     reachable; login and verify redirect to the dashboard
func Resolve(sess *session.Session, requested Route) Route {
	if !sess.Valid() {
		return RouteLogin
	}

	if !sess.User.IsVerified {
		return RouteVerify
	}

	switch requested {
	case RouteDashboard, RoutePlans, RoutePaymentSuccess, RoutePaymentFailed:
		return requested
	default:
		return RouteDashboard
	}
}

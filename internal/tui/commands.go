package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/threateye/threateye-cli/internal/api"
)

// requestTimeout bounds each background API call issued by the TUI.
const requestTimeout = 30 * time.Second

// tickMsg drives notice expiry and the delayed verify redirect
type tickMsg time.Time

// loginResultMsg carries the login outcome together with the flow
// generation it belongs to; stale results are discarded by the flow.
type loginResultMsg struct {
	gen    uint64
	result *api.LoginResult
	err    error
}

type verifyResultMsg struct {
	gen uint64
	err error
}

type resendResultMsg struct {
	gen uint64
	err error
}

// entitlementMsg carries a raw subscription status bound to the token the
// request was issued for. The gate is only touched on the update thread:
// the command performs the fetch and the model feeds the result through
// Gate.Apply, which drops it when the session has changed since.
type entitlementMsg struct {
	token  string
	result *api.StatusResult
	err    error
}

type plansMsg struct {
	plans []api.Plan
	err   error
}

type initiateMsg struct {
	paymentURL string
	err        error
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func submitLogin(client *api.Client, gen uint64, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		result, err := client.Login(ctx, email, password)
		return loginResultMsg{gen: gen, result: result, err: err}
	}
}

func submitVerify(client *api.Client, gen uint64, email, code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := client.VerifyEmail(ctx, email, code)
		return verifyResultMsg{gen: gen, err: err}
	}
}

func submitResend(client *api.Client, gen uint64, email string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := client.ResendVerification(ctx, email)
		return resendResultMsg{gen: gen, err: err}
	}
}

func fetchEntitlement(client *api.Client, token string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		result, err := client.SubscriptionStatus(ctx)
		return entitlementMsg{token: token, result: result, err: err}
	}
}

func fetchPlans(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		plans, err := client.Plans(ctx)
		return plansMsg{plans: plans, err: err}
	}
}

func initiatePurchase(client *api.Client, planID int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		paymentURL, err := client.InitiateSubscription(ctx, planID)
		return initiateMsg{paymentURL: paymentURL, err: err}
	}
}

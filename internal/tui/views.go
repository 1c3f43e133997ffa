package tui

import (
	"fmt"
	"strings"

	"github.com/threateye/threateye-cli/internal/authflow"
	"github.com/threateye/threateye-cli/internal/entitlement"
	"github.com/threateye/threateye-cli/internal/routeguard"
	"github.com/threateye/threateye-cli/internal/subscription"
)

// View renders the current screen
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.route {
	case routeguard.RouteLogin:
		body = m.viewLogin()
	case routeguard.RouteVerify:
		body = m.viewVerify()
	case routeguard.RouteDashboard:
		body = m.viewDashboard()
	case routeguard.RoutePlans:
		body = m.viewPlans()
	case routeguard.RoutePaymentSuccess:
		body = m.viewPaymentResult(true)
	case routeguard.RoutePaymentFailed:
		body = m.viewPaymentResult(false)
	}

	return m.styles.Border.Render(body) + "\n"
}

func (m Model) viewNotice() string {
	notice := m.flow.Notice()
	if notice == nil {
		return ""
	}
	if notice.Kind == authflow.NoticeSuccess {
		return m.styles.Success.Render(notice.Text) + "\n\n"
	}
	return m.styles.Error.Render(notice.Text) + "\n\n"
}

func (m Model) viewLogin() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("ThreatEye"))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render("Sign in to your account"))
	b.WriteString("\n\n")
	b.WriteString(m.viewNotice())

	b.WriteString(m.styles.Label.Render("Email"))
	b.WriteString("\n")
	b.WriteString(m.emailInput.View())
	b.WriteString("\n\n")
	b.WriteString(m.styles.Label.Render("Password"))
	b.WriteString("\n")
	b.WriteString(m.passwordInput.View())
	b.WriteString("\n")

	if m.flow.LoginInFlight() {
		b.WriteString("\n" + m.spinner.View() + " Signing in...")
	}

	b.WriteString(m.styles.Help.Render("tab: switch field • enter: sign in • ctrl+c: quit"))
	return b.String()
}

func (m Model) viewVerify() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Verify your email"))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render(
		fmt.Sprintf("We sent a %d-digit code to %s", authflow.CodeLength, m.flow.VerificationEmail())))
	b.WriteString("\n\n")
	b.WriteString(m.viewNotice())

	b.WriteString(m.styles.CodeDigits.Render(renderCode(m.flow.Code())))
	b.WriteString("\n")

	switch {
	case m.flow.VerifyInFlight():
		b.WriteString("\n" + m.spinner.View() + " Verifying...")
	case m.flow.ResendInFlight():
		b.WriteString("\n" + m.spinner.View() + " Resending code...")
	}

	help := "r: resend code • esc: back to sign in • ctrl+c: quit"
	if m.flow.CanVerify() {
		help = "enter: verify • " + help
	}
	b.WriteString(m.styles.Help.Render(help))
	return b.String()
}

// renderCode pads typed digits with placeholders up to the code length
func renderCode(code string) string {
	cells := make([]string, 0, authflow.CodeLength)
	for _, r := range code {
		cells = append(cells, string(r))
	}
	for len(cells) < authflow.CodeLength {
		cells = append(cells, "_")
	}
	return strings.Join(cells, " ")
}

func (m Model) viewDashboard() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("ThreatEye Dashboard"))
	b.WriteString("\n")
	b.WriteString(m.viewNotice())

	sess := m.flow.Session()
	if sess.Valid() {
		b.WriteString(m.styles.Label.Render("Signed in as "))
		b.WriteString(m.styles.Value.Render(sess.User.DisplayName()))
		b.WriteString("\n\n")
	}

	if !m.resolved {
		b.WriteString(m.spinner.View() + " Checking subscription...")
		b.WriteString(m.styles.Help.Render("l: log out • ctrl+c: quit"))
		return b.String()
	}

	if m.decision.Status.Allowed() {
		b.WriteString(m.styles.ActiveTag.Render("ACTIVE"))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Label.Render("Plan: "))
		b.WriteString(m.styles.Value.Render(m.decision.PlanName))
		b.WriteString("\n")
		b.WriteString(m.styles.Label.Render("Seats: "))
		b.WriteString(m.styles.Value.Render(fmt.Sprintf("%d Users Allowed", m.decision.MaxUsers)))
		b.WriteString("\n")
		if m.decision.EmailAlertsEnabled {
			b.WriteString(m.styles.Label.Render("Email alerts: "))
			b.WriteString(m.styles.Value.Render("enabled"))
			b.WriteString("\n")
		}
		if m.decision.EndDate != nil {
			b.WriteString(m.styles.Label.Render("Renews: "))
			b.WriteString(m.styles.Value.Render(m.decision.EndDate.Format("2006-01-02")))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString("Threat monitoring is live. Alerts will appear here as they arrive.\n")
	} else {
		b.WriteString(m.styles.LockedTag.Render(m.decision.DisplayStatus()))
		b.WriteString("\n\n")
		if m.decision.Status == entitlement.StatusError {
			b.WriteString(m.styles.Warning.Render("We could not confirm your subscription."))
			b.WriteString("\n")
			b.WriteString("Access stays locked until the check succeeds. Press r to retry.\n")
		} else {
			b.WriteString("An active subscription is required to view threat data.\n")
			b.WriteString("Press p to browse plans.\n")
		}
	}

	b.WriteString(m.styles.Help.Render("p: plans • r: refresh • l: log out • q: quit"))
	return b.String()
}

func (m Model) viewPlans() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Subscription Plans"))
	b.WriteString("\n")

	switch {
	case m.plansLoading:
		b.WriteString(m.spinner.View() + " Loading plans...")
	case m.plansErr != "":
		b.WriteString(m.styles.Error.Render(m.plansErr))
	case len(m.plans) == 0:
		b.WriteString(m.styles.Muted.Render("No plans available."))
	default:
		for i, plan := range m.plans {
			line := fmt.Sprintf("%s  %s  %s",
				plan.DisplayName,
				subscription.FormatPrice(plan),
				subscription.FormatSeats(plan))
			if i == m.planCursor {
				b.WriteString(m.styles.Selected.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}

	if m.paymentURL != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Label.Render("Complete your purchase at:"))
		b.WriteString("\n")
		b.WriteString(m.styles.Value.Render(m.paymentURL))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render("↑/↓: select • enter: purchase • esc: dashboard"))
	return b.String()
}

func (m Model) viewPaymentResult(success bool) string {
	var b strings.Builder
	if success {
		b.WriteString(m.styles.Success.Render("Payment Successful"))
		b.WriteString("\n\n")
		if m.callback != nil && m.callback.TxnID != "" {
			b.WriteString(m.styles.Label.Render("Transaction: "))
			b.WriteString(m.styles.Value.Render(m.callback.TxnID))
			b.WriteString("\n")
		}
		b.WriteString("Your subscription is being activated.\n")
		b.WriteString(m.styles.Help.Render("enter: go to dashboard"))
	} else {
		b.WriteString(m.styles.Error.Render("Payment Failed"))
		b.WriteString("\n\n")
		if m.callback != nil && m.callback.ErrMsg != "" {
			b.WriteString(m.callback.ErrMsg)
			b.WriteString("\n")
		}
		b.WriteString(m.styles.Help.Render("esc: back to plans • enter: dashboard"))
	}
	return b.String()
}

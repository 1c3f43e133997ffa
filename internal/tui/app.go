package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/threateye/threateye-cli/internal/api"
	"github.com/threateye/threateye-cli/internal/authflow"
	"github.com/threateye/threateye-cli/internal/entitlement"
	"github.com/threateye/threateye-cli/internal/routeguard"
	"github.com/threateye/threateye-cli/internal/subscription"
)

// Model is the root TUI state. It holds the current route and delegates all
// session and entitlement decisions to the flow and the gate; the views
// themselves contain no bypass path.
type Model struct {
	flow   *authflow.Flow
	gate   *entitlement.Gate
	client *api.Client

	route routeguard.Route

	// Login screen
	emailInput    textinput.Model
	passwordInput textinput.Model
	loginFocus    int

	// Dashboard entitlement state
	decision            entitlement.Decision
	resolved            bool
	entitlementInFlight bool

	// Plans screen
	plans            []api.Plan
	plansLoading     bool
	plansErr         string
	planCursor       int
	paymentURL       string
	initiateInFlight bool

	initCmd tea.Cmd

	// Payment result screen
	callback *subscription.CallbackResult

	spinner  spinner.Model
	width    int
	height   int
	quitting bool
	styles   Styles
}

// NewModel creates the root model, landing on whatever route the guard
// permits for the rehydrated session.
func NewModel(flow *authflow.Flow, gate *entitlement.Gate, client *api.Client) Model {
	return NewModelAt(flow, gate, client, routeguard.RouteDashboard, nil)
}

// NewModelAt creates the root model requesting a specific initial route,
// still subject to the guard (used by the confirm command to land on a
// payment-result screen).
func NewModelAt(flow *authflow.Flow, gate *entitlement.Gate, client *api.Client, requested routeguard.Route, callback *subscription.CallbackResult) Model {
	email := textinput.New()
	email.Placeholder = "you@company.com"
	email.CharLimit = 128
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		flow:          flow,
		gate:          gate,
		client:        client,
		emailInput:    email,
		passwordInput: password,
		spinner:       sp,
		styles:        DefaultStyles(),
		callback:      callback,
	}
	m.route = routeguard.Resolve(flow.Session(), requested)
	// The on-mount command is captured here so the in-flight bookkeeping
	// enterRoute performs survives into the returned model.
	m.initCmd = m.enterRoute()
	return m
}

// Route returns the screen currently shown
func (m Model) Route() routeguard.Route {
	return m.route
}

// Init starts the tick loop and any initial data load
func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.spinner.Tick, m.initCmd)
}

// navigate requests a route change; the guard has the final word, and
// entering a route may kick off its data load.
func (m *Model) navigate(requested routeguard.Route) tea.Cmd {
	next := routeguard.Resolve(m.flow.Session(), requested)
	if next == m.route {
		return nil
	}
	m.route = next
	return m.enterRoute()
}

// enterRoute performs the on-mount work for the current route
func (m *Model) enterRoute() tea.Cmd {
	switch m.route {
	case routeguard.RouteDashboard:
		// Entitlement starts unknown on every fresh mount; never assume
		// active without a confirmed decision for this token.
		m.resolved = false
		m.decision = entitlement.Decision{}
		if sess := m.flow.Session(); sess.Valid() {
			if cached, ok := m.gate.Cached(); ok {
				m.decision = cached
				m.resolved = true
				return nil
			}
			m.entitlementInFlight = true
			return fetchEntitlement(m.client, sess.Token)
		}
	case routeguard.RoutePlans:
		m.plansLoading = true
		m.plansErr = ""
		m.paymentURL = ""
		m.planCursor = 0
		m.initiateInFlight = false
		return fetchPlans(m.client)
	}
	return nil
}

// Update handles messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		now := time.Time(msg)
		m.flow.ExpireNotices(now)
		m.flow.Advance(now)
		// A completed verification redirect changes the permitted route.
		cmd := m.navigate(m.route)
		return m, tea.Batch(tick(), cmd)

	case loginResultMsg:
		m.flow.ApplyLogin(msg.gen, msg.result, msg.err)
		m.passwordInput.SetValue("")
		cmd := m.navigate(m.route)
		return m, cmd

	case verifyResultMsg:
		m.flow.ApplyVerify(msg.gen, msg.err)
		return m, nil

	case resendResultMsg:
		m.flow.ApplyResend(msg.gen, msg.err)
		return m, nil

	case entitlementMsg:
		m.entitlementInFlight = false
		// The gate applies the result on this thread and discards it when
		// the token it was fetched for is no longer the bound one.
		if decision, ok := m.gate.Apply(msg.token, msg.result, msg.err); ok {
			m.decision = decision
			m.resolved = true
		}
		return m, nil

	case plansMsg:
		m.plansLoading = false
		if msg.err != nil {
			m.plansErr = msg.err.Error()
			return m, nil
		}
		m.plans = msg.plans
		return m, nil

	case initiateMsg:
		m.initiateInFlight = false
		if msg.err != nil {
			m.plansErr = msg.err.Error()
			return m, nil
		}
		m.paymentURL = msg.paymentURL
		return m, nil
	}

	return m, nil
}

// handleKey dispatches keyboard input to the current screen
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.route {
	case routeguard.RouteLogin:
		return m.handleLoginKey(msg)
	case routeguard.RouteVerify:
		return m.handleVerifyKey(msg)
	case routeguard.RouteDashboard:
		return m.handleDashboardKey(msg)
	case routeguard.RoutePlans:
		return m.handlePlansKey(msg)
	case routeguard.RoutePaymentSuccess, routeguard.RoutePaymentFailed:
		return m.handlePaymentResultKey(msg)
	}
	return m, nil
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.loginFocus = 1 - m.loginFocus
		if m.loginFocus == 0 {
			m.emailInput.Focus()
			m.passwordInput.Blur()
		} else {
			m.emailInput.Blur()
			m.passwordInput.Focus()
		}
		return m, nil

	case "enter":
		if m.loginFocus == 0 {
			// Move to the password field first.
			m.loginFocus = 1
			m.emailInput.Blur()
			m.passwordInput.Focus()
			return m, nil
		}

		email := m.emailInput.Value()
		password := m.passwordInput.Value()
		if email == "" || password == "" {
			return m, nil
		}

		gen, ok := m.flow.BeginLogin()
		if !ok {
			return m, nil
		}
		return m, submitLogin(m.client, gen, email, password)

	case "q":
		// Plain text inputs own the character; fall through to typing.
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.emailInput, cmd = m.emailInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

func (m Model) handleVerifyKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		gen, email, code, ok := m.flow.BeginVerify()
		if !ok {
			return m, nil
		}
		return m, submitVerify(m.client, gen, email, code)

	case "r":
		gen, email, ok := m.flow.BeginResend()
		if !ok {
			return m, nil
		}
		return m, submitResend(m.client, gen, email)

	case "esc":
		m.flow.CancelVerification()
		return m, m.navigate(routeguard.RouteLogin)

	case "backspace":
		m.flow.DeleteCodeDigit()
		return m, nil
	}

	// Digit entry: the flow discards everything else.
	for _, r := range msg.Runes {
		m.flow.AppendCode(r)
	}
	return m, nil
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "p":
		return m, m.navigate(routeguard.RoutePlans)

	case "r":
		// Explicit refresh bypasses the cached decision. Self-exclusive:
		// a refresh already in flight absorbs the keypress.
		if m.entitlementInFlight {
			return m, nil
		}
		if sess := m.flow.Session(); sess.Valid() {
			m.resolved = false
			m.gate.Invalidate()
			m.entitlementInFlight = true
			return m, fetchEntitlement(m.client, sess.Token)
		}
		return m, nil

	case "l":
		m.flow.Logout()
		return m, m.navigate(routeguard.RouteLogin)

	case "q":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handlePlansKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.planCursor > 0 {
			m.planCursor--
		}
	case "down", "j":
		if m.planCursor < len(m.plans)-1 {
			m.planCursor++
		}
	case "enter":
		// One purchase at a time: a second enter while the initiation is
		// outstanding (or already answered) must not open another payment
		// session at the provider.
		if m.planCursor < len(m.plans) && m.paymentURL == "" && !m.initiateInFlight {
			m.initiateInFlight = true
			return m, initiatePurchase(m.client, m.plans[m.planCursor].ID)
		}
	case "esc":
		return m, m.navigate(routeguard.RouteDashboard)
	}
	return m, nil
}

func (m Model) handlePaymentResultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m, m.navigate(routeguard.RouteDashboard)
	case "esc":
		if m.route == routeguard.RoutePaymentFailed {
			return m, m.navigate(routeguard.RoutePlans)
		}
		return m, m.navigate(routeguard.RouteDashboard)
	}
	return m, nil
}

// Run starts the TUI program
func Run(flow *authflow.Flow, gate *entitlement.Gate, client *api.Client) error {
	p := tea.NewProgram(NewModel(flow, gate, client), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RunAt starts the TUI program on a specific requested route
func RunAt(flow *authflow.Flow, gate *entitlement.Gate, client *api.Client, requested routeguard.Route, callback *subscription.CallbackResult) error {
	p := tea.NewProgram(NewModelAt(flow, gate, client, requested, callback), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

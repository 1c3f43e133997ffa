package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/threateye/threateye-cli/internal/api"
	"github.com/threateye/threateye-cli/internal/authflow"
	"github.com/threateye/threateye-cli/internal/config"
	"github.com/threateye/threateye-cli/internal/entitlement"
	"github.com/threateye/threateye-cli/internal/errors"
	"github.com/threateye/threateye-cli/internal/log"
	"github.com/threateye/threateye-cli/internal/session"
)

var rootCmd = &cobra.Command{
	Use:   "threateye",
	Short: "Network security monitoring client",
	Long: `threateye is the terminal client for the ThreatEye network security
platform. It manages your session, verifies your email, checks your
subscription entitlement and opens the threat dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
}

// app is the wired application: configuration, durable session store, API
// client, entitlement gate and the auth flow bound together.
type app struct {
	cfg    *config.Config
	store  *session.Store
	client *api.Client
	gate   *entitlement.Gate
	flow   *authflow.Flow
}

// buildApp loads the configuration and wires the shared components. Every
// command goes through here so they all see the same session and the same
// gating rules.
func buildApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetString("api-url"); v != "" {
		cfg.APIBaseURL = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(cfg.LogLevel)
	log.SetDefaultLogger(log.New(logCfg))

	store, err := session.Open(cfg.StateDir)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.APIBaseURL)
	gate := entitlement.NewGate(client)
	flow := authflow.New(store, client, gate)

	return &app{cfg: cfg, store: store, client: client, gate: gate, flow: flow}, nil
}

// requireSession returns the current session or a not-logged-in error
func (a *app) requireSession() (*session.Session, error) {
	sess := a.store.Current()
	if !sess.Valid() {
		return nil, errors.NewNotLoggedInError()
	}
	return sess, nil
}

// requireVerifiedSession additionally demands a verified email
func (a *app) requireVerifiedSession() (*session.Session, error) {
	sess, err := a.requireSession()
	if err != nil {
		return nil, err
	}
	if !sess.User.IsVerified {
		return nil, errors.NewVerificationNeededError(sess.User.Email)
	}
	return sess, nil
}

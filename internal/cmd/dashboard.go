package cmd

import (
	"github.com/spf13/cobra"

	"github.com/threateye/threateye-cli/internal/tui"
)

// dashboardCmd opens the interactive dashboard
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive threat dashboard",
	Long: `Open the interactive terminal dashboard.

The dashboard enforces the full access chain: you must be logged in,
your email must be verified, and your subscription must be confirmed
active before threat data is shown. Unauthenticated users are taken to
the sign-in screen instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd)
		if err != nil {
			return err
		}
		return tui.Run(app.flow, app.gate, app.client)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

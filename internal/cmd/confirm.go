package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/threateye/threateye-cli/internal/routeguard"
	"github.com/threateye/threateye-cli/internal/subscription"
	"github.com/threateye/threateye-cli/internal/tui"
)

var confirmInteractive bool

// confirmCmd interprets the payment provider's redirect URL
var confirmCmd = &cobra.Command{
	Use:   "confirm <redirect-url>",
	Short: "Confirm a payment redirect",
	Long: `Interpret the URL the payment provider redirected you to after a
subscription purchase.

A redirect carrying a 'txn' parameter is a successful payment; one
carrying an 'error' parameter (or neither) is a failure. The outcome is
display-only; the subscription itself is activated server-side and
picked up by the next entitlement check.

Examples:
  threateye confirm 'https://threateye.example.com/payment/success?txn=abc123'
  threateye confirm --interactive 'https://threateye.example.com/payment/failed?error=Cancelled'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := subscription.ParseCallback(args[0])
		if err != nil {
			return err
		}

		app, err := buildApp(cmd)
		if err != nil {
			return err
		}

		if confirmInteractive {
			route := routeguard.RoutePaymentFailed
			if result.Success {
				route = routeguard.RoutePaymentSuccess
			}
			return tui.RunAt(app.flow, app.gate, app.client, route, result)
		}

		if result.Success {
			fmt.Println("Payment successful!")
			fmt.Printf("Transaction: %s\n", result.TxnID)
			fmt.Println("Your subscription is being activated; run 'threateye status' to check.")
			return nil
		}

		fmt.Println("Payment failed.")
		fmt.Println(result.ErrMsg)
		fmt.Println("Run 'threateye plans' to try again.")
		return nil
	},
}

func init() {
	confirmCmd.Flags().BoolVar(&confirmInteractive, "interactive", false, "show the result in the dashboard UI")
	rootCmd.AddCommand(confirmCmd)
}

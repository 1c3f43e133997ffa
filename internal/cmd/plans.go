package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/threateye/threateye-cli/internal/errors"
	"github.com/threateye/threateye-cli/internal/subscription"
)

// plansCmd lists the available subscription plans
var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List available subscription plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd)
		if err != nil {
			return err
		}

		plans, err := app.client.Plans(cmd.Context())
		if err != nil {
			return err
		}

		if len(plans) == 0 {
			fmt.Println("No plans available.")
			return nil
		}

		for _, plan := range plans {
			fmt.Printf("[%d] %s\n", plan.ID, plan.DisplayName)
			fmt.Printf("    %s\n", subscription.FormatPrice(plan))
			fmt.Printf("    %s\n", subscription.FormatSeats(plan))
			fmt.Printf("    %s\n", subscription.FormatAlerts(plan))
			fmt.Println()
		}
		fmt.Println("Use 'threateye subscribe <plan-id>' to purchase a plan.")
		return nil
	},
}

// subscribeCmd starts a purchase and prints the payment URL
var subscribeCmd = &cobra.Command{
	Use:   "subscribe <plan-id>",
	Short: "Start a subscription purchase",
	Long: `Start a subscription purchase for the given plan.

The platform responds with a payment provider URL. Open it in a browser
to complete the payment; the provider will redirect to a confirmation
URL which you can pass to 'threateye confirm'.

Examples:
  threateye subscribe 2
  threateye subscribe --plan 2`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("plan")
		if len(args) > 0 {
			raw = args[0]
		}
		if raw == "" {
			return errors.NewPlanUnknownError(raw)
		}
		planID, err := strconv.Atoi(raw)
		if err != nil {
			return errors.NewPlanUnknownError(raw)
		}

		app, err := buildApp(cmd)
		if err != nil {
			return err
		}

		if _, err := app.requireVerifiedSession(); err != nil {
			return err
		}

		plans, err := app.client.Plans(cmd.Context())
		if err != nil {
			return err
		}
		plan, found := subscription.FindPlan(plans, planID)
		if !found {
			return errors.NewPlanUnknownError(raw)
		}

		fmt.Printf("Purchasing: %s (%s)\n", plan.DisplayName, subscription.FormatPrice(plan))

		paymentURL, err := app.client.InitiateSubscription(cmd.Context(), plan.ID)
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Println("Complete your payment at:")
		fmt.Println("  " + paymentURL)
		fmt.Println()
		fmt.Println("Afterwards, run 'threateye confirm <redirect-url>' with the URL")
		fmt.Println("the payment provider sent you back to.")
		return nil
	},
}

func init() {
	subscribeCmd.Flags().String("plan", "", "Plan id to purchase")

	rootCmd.AddCommand(plansCmd)
	rootCmd.AddCommand(subscribeCmd)
}

package cmd

import (
	"encoding/json"
	goerrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/threateye/threateye-cli/internal/entitlement"
	"github.com/threateye/threateye-cli/internal/errors"
)

var statusJSON bool

// statusCmd shows the session and the entitlement decision
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show login and subscription status",
	Long: `Show the current session and subscription entitlement.

The subscription check is performed live against the platform. If the
check cannot be completed, access is reported as locked; an unreachable
server never unlocks anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd)
		if err != nil {
			return err
		}

		sess := app.store.Current()
		if !sess.Valid() {
			if statusJSON {
				return printJSON(map[string]any{"logged_in": false})
			}
			fmt.Println("Not logged in.")
			fmt.Println("Use 'threateye login' to sign in.")
			return nil
		}

		if !sess.User.IsVerified {
			if statusJSON {
				return printJSON(map[string]any{
					"logged_in": true,
					"email":     sess.User.Email,
					"verified":  false,
				})
			}
			fmt.Printf("Logged in as: %s\n", sess.User.Email)
			fmt.Println("Email: not verified")
			fmt.Println("Run 'threateye verify <code>' to finish signing in.")
			return nil
		}

		// A live profile fetch catches tokens the server has expired. The
		// fetched user is display-only; the durable session is the flow's
		// to mutate, not ours.
		user, err := app.client.Profile(cmd.Context())
		if err != nil {
			var cliErr *errors.ClientError
			if goerrors.As(err, &cliErr) && cliErr.Code == errors.ErrCodeAuthTokenInvalid {
				if statusJSON {
					return printJSON(map[string]any{
						"logged_in": false,
						"reason":    "token expired",
					})
				}
				fmt.Printf("Logged in as: %s\n", sess.User.Email)
				fmt.Println("Your session has expired. Run 'threateye login' to sign in again.")
				return nil
			}
			return err
		}

		decision := app.gate.Resolve(cmd.Context())

		if statusJSON {
			out := map[string]any{
				"logged_in":    true,
				"email":        user.Email,
				"verified":     user.IsVerified,
				"subscription": decision.DisplayStatus(),
				"unlocked":     decision.Status.Allowed(),
			}
			if decision.Status.Allowed() {
				out["plan"] = decision.PlanName
				out["max_users"] = decision.MaxUsers
				if decision.EndDate != nil {
					out["end_date"] = decision.EndDate.Format("2006-01-02")
				}
			}
			return printJSON(out)
		}

		fmt.Printf("Logged in as: %s\n", user.DisplayName())
		fmt.Println("Email: verified")
		fmt.Printf("Subscription: %s\n", decision.DisplayStatus())

		switch {
		case decision.Status.Allowed():
			fmt.Printf("Plan: %s (%d users)\n", decision.PlanName, decision.MaxUsers)
			if decision.EndDate != nil {
				fmt.Printf("Renews: %s\n", decision.EndDate.Format("2006-01-02"))
			}
		case decision.Status == entitlement.StatusError:
			fmt.Println("The subscription check failed; access stays locked until it succeeds.")
		default:
			fmt.Println("An active subscription is required. See 'threateye plans'.")
		}
		return nil
	},
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

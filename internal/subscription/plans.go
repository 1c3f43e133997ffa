package subscription

import (
	"fmt"

	"github.com/threateye/threateye-cli/internal/api"
)

// FormatPrice renders a plan price as shown on the plans screen
func FormatPrice(plan api.Plan) string {
	return fmt.Sprintf("Rs. %s / month", plan.Price)
}

// FormatSeats renders the seat allowance line for a plan
func FormatSeats(plan api.Plan) string {
	return fmt.Sprintf("%d Users Allowed", plan.MaxUsers)
}

// FormatAlerts renders the email-alerts line for a plan
func FormatAlerts(plan api.Plan) string {
	if plan.EmailAlertsEnabled {
		return "Email Alerts Included"
	}
	return "No Email Alerts"
}

// FindPlan returns the plan with the given id
func FindPlan(plans []api.Plan, id int) (api.Plan, bool) {
	for _, plan := range plans {
		if plan.ID == id {
			return plan, true
		}
	}
	return api.Plan{}, false
}

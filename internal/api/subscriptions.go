package api

import (
	"context"
	"net/http"
	"time"

	"github.com/threateye/threateye-cli/internal/errors"
)

// Plan describes a subscription plan as returned by GET /subscriptions/plans/.
type Plan struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	DisplayName        string `json:"display_name"`
	Price              string `json:"price"`
	MaxUsers           int    `json:"max_users"`
	EmailAlertsEnabled bool   `json:"email_alerts_enabled"`
}

// StatusResult is the payload of GET /subscriptions/status/. Status carries
// the literal server string ("active", "pending", "expired", "cancelled",
// "none", ...); Plan fields are flattened by the server next to it.
type StatusResult struct {
	Status             string     `json:"status"`
	Plan               string     `json:"plan"`
	MaxUsers           int        `json:"max_users"`
	EmailAlertsEnabled bool       `json:"email_alerts"`
	StartDate          *time.Time `json:"start_date"`
	EndDate            *time.Time `json:"end_date"`
}

// SubscriptionStatus queries the subscription service for the current
// session's entitlement. Bearer-authenticated.
func (c *Client) SubscriptionStatus(ctx context.Context) (*StatusResult, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/subscriptions/status/", nil)
	if err != nil {
		return nil, err
	}

	if !isSuccess(resp) {
		return nil, errors.New(errors.ErrCodeSubStatusFailed,
			readErrorBody(resp, "failed to fetch subscription status"))
	}

	var result StatusResult
	if err := decodeBody(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Plans lists the available subscription plans.
func (c *Client) Plans(ctx context.Context) ([]Plan, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/subscriptions/plans/", nil)
	if err != nil {
		return nil, err
	}

	if !isSuccess(resp) {
		return nil, errors.New(errors.ErrCodeSubPlansFailed,
			readErrorBody(resp, "failed to fetch plans"))
	}

	var plans []Plan
	if err := decodeBody(resp, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// initiateResponse is the payload of POST /subscriptions/initiate/.
type initiateResponse struct {
	PaymentURL string `json:"payment_url"`
	Error      string `json:"error"`
	Details    string `json:"details"`
}

// InitiateSubscription starts a purchase for the given plan and returns the
// payment provider URL the user must visit to complete it.
func (c *Client) InitiateSubscription(ctx context.Context, planID int) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/subscriptions/initiate/", map[string]int{
		"plan_id": planID,
	})
	if err != nil {
		return "", err
	}

	var result initiateResponse
	ok := isSuccess(resp)
	if decodeErr := decodeBody(resp, &result); decodeErr != nil && ok {
		return "", decodeErr
	}

	if !ok || result.PaymentURL == "" {
		msg := result.Error
		if msg == "" {
			msg = "payment initiation failed"
		}
		clientErr := errors.New(errors.ErrCodeSubInitiateFailed, msg)
		if result.Details != "" {
			clientErr = clientErr.WithSuggestion("Details: " + result.Details)
		}
		return "", clientErr
	}

	return result.PaymentURL, nil
}

package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threateye/threateye-cli/internal/errors"
)

func TestSubscriptionStatus(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/subscriptions/status/", r.URL.Path)
		require.Equal(t, "Bearer t1", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{
			"status": "active",
			"plan": "Professional Plan",
			"max_users": 20,
			"email_alerts": true,
			"start_date": "2025-06-01T00:00:00+00:00",
			"end_date": null
		}`))
	}))

	client := NewClient(server.URL)
	client.SetToken("t1")

	result, err := client.SubscriptionStatus(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "active", result.Status)
	assert.Equal(t, "Professional Plan", result.Plan)
	assert.Equal(t, 20, result.MaxUsers)
	assert.True(t, result.EmailAlertsEnabled)
	require.NotNil(t, result.StartDate)
	assert.Nil(t, result.EndDate)
}

func TestSubscriptionStatusNonActive(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"none"}`))
	}))

	client := NewClient(server.URL)
	client.SetToken("t1")

	result, err := client.SubscriptionStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "none", result.Status)
}

func TestSubscriptionStatusServerError(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"Organization not found"}`))
	}))

	client := NewClient(server.URL)
	client.SetToken("t1")

	_, err := client.SubscriptionStatus(context.Background())
	require.Error(t, err)

	var cliErr *errors.ClientError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, errors.ErrCodeSubStatusFailed, cliErr.Code)
	assert.Equal(t, "Organization not found", cliErr.Message)
}

func TestPlans(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/subscriptions/plans/", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id":1,"display_name":"Basic Plan","price":"999.00","max_users":5,"email_alerts_enabled":false},
			{"id":2,"display_name":"Professional Plan","price":"2999.00","max_users":20,"email_alerts_enabled":true}
		]`))
	}))

	client := NewClient(server.URL)
	plans, err := client.Plans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 2)

	assert.Equal(t, "Basic Plan", plans[0].DisplayName)
	assert.Equal(t, "999.00", plans[0].Price)
	assert.Equal(t, 5, plans[0].MaxUsers)
	assert.False(t, plans[0].EmailAlertsEnabled)
	assert.True(t, plans[1].EmailAlertsEnabled)
}

func TestInitiateSubscription(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/subscriptions/initiate/", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"payment_url":"https://pay.example/epayment?pidx=abc"}`))
	}))

	client := NewClient(server.URL)
	client.SetToken("t1")

	url, err := client.InitiateSubscription(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/epayment?pidx=abc", url)
}

func TestInitiateSubscriptionFailure(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{
			name:    "server error with details",
			status:  http.StatusInternalServerError,
			body:    `{"error":"Payment initiation failed","details":"gateway timeout"}`,
			wantMsg: "Payment initiation failed",
		},
		{
			name:    "no organization",
			status:  http.StatusForbidden,
			body:    `{"error":"User does not belong to any organization. Please contact support or create an organization."}`,
			wantMsg: "User does not belong to any organization. Please contact support or create an organization.",
		},
		{
			name:    "success status without payment url",
			status:  http.StatusOK,
			body:    `{}`,
			wantMsg: "payment initiation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))

			client := NewClient(server.URL)
			_, err := client.InitiateSubscription(context.Background(), 1)
			require.Error(t, err)

			var cliErr *errors.ClientError
			require.ErrorAs(t, err, &cliErr)
			assert.Equal(t, errors.ErrCodeSubInitiateFailed, cliErr.Code)
			assert.Equal(t, tt.wantMsg, cliErr.Message)
		})
	}
}

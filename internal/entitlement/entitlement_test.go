package entitlement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threateye/threateye-cli/internal/api"
	"github.com/threateye/threateye-cli/internal/errors"
)

// fakeStatusClient counts calls and serves a scripted response
type fakeStatusClient struct {
	result *api.StatusResult
	err    error
	calls  int
}

func (f *fakeStatusClient) SubscriptionStatus(ctx context.Context) (*api.StatusResult, error) {
	f.calls++
	return f.result, f.err
}

func TestResolveActive(t *testing.T) {
	client := &fakeStatusClient{result: &api.StatusResult{
		Status:             "active",
		Plan:               "Professional Plan",
		MaxUsers:           20,
		EmailAlertsEnabled: true,
	}}

	gate := NewGate(client)
	gate.SetToken("t1")

	decision := gate.Resolve(context.Background())

	assert.Equal(t, StatusActive, decision.Status)
	assert.True(t, decision.Status.Allowed())
	assert.Equal(t, "Professional Plan", decision.PlanName)
	assert.Equal(t, 20, decision.MaxUsers)
	assert.Equal(t, "ACTIVE", decision.DisplayStatus())
}

func TestResolveInactivePreservesRawStatus(t *testing.T) {
	for _, raw := range []string{"pending", "expired", "cancelled", "none", "inactive"} {
		t.Run(raw, func(t *testing.T) {
			gate := NewGate(&fakeStatusClient{result: &api.StatusResult{Status: raw}})
			gate.SetToken("t1")

			decision := gate.Resolve(context.Background())

			assert.Equal(t, StatusInactive, decision.Status)
			assert.False(t, decision.Status.Allowed())
			assert.Equal(t, raw, decision.RawStatus)
		})
	}
}

func TestResolveTransportFailureFailsClosed(t *testing.T) {
	client := &fakeStatusClient{err: errors.NewNetworkError(context.DeadlineExceeded)}
	gate := NewGate(client)
	gate.SetToken("t1")

	decision := gate.Resolve(context.Background())

	assert.Equal(t, StatusError, decision.Status)
	assert.False(t, decision.Status.Allowed(), "a failed check must never grant access")
	assert.NotEqual(t, StatusInactive, decision.Status, "error is distinct from inactive")
	assert.Equal(t, "STATUS CHECK FAILED", decision.DisplayStatus())
}

func TestResolveWithoutTokenIssuesNoCall(t *testing.T) {
	client := &fakeStatusClient{result: &api.StatusResult{Status: "active"}}
	gate := NewGate(client)

	decision := gate.Resolve(context.Background())

	assert.Equal(t, StatusUnknown, decision.Status)
	assert.False(t, decision.Status.Allowed())
	assert.Equal(t, 0, client.calls, "no token means no network call")
}

func TestResolveCachesPerToken(t *testing.T) {
	client := &fakeStatusClient{result: &api.StatusResult{Status: "active"}}
	gate := NewGate(client)
	gate.SetToken("t1")

	gate.Resolve(context.Background())
	gate.Resolve(context.Background())
	assert.Equal(t, 1, client.calls)

	// A token change must drop the cache.
	gate.SetToken("t2")
	gate.Resolve(context.Background())
	assert.Equal(t, 2, client.calls)
}

func TestInvalidateDropsCache(t *testing.T) {
	client := &fakeStatusClient{result: &api.StatusResult{Status: "active"}}
	gate := NewGate(client)
	gate.SetToken("t1")

	gate.Resolve(context.Background())
	gate.Invalidate()
	gate.Resolve(context.Background())

	assert.Equal(t, 2, client.calls)
}

func TestRefreshBypassesCache(t *testing.T) {
	client := &fakeStatusClient{result: &api.StatusResult{Status: "pending"}}
	gate := NewGate(client)
	gate.SetToken("t1")

	first := gate.Resolve(context.Background())
	require.Equal(t, StatusInactive, first.Status)

	client.result = &api.StatusResult{Status: "active", Plan: "Basic Plan"}
	second := gate.Refresh(context.Background())

	assert.Equal(t, StatusActive, second.Status)
	assert.Equal(t, 2, client.calls)

	// The refreshed decision becomes the new cache.
	third := gate.Resolve(context.Background())
	assert.Equal(t, StatusActive, third.Status)
	assert.Equal(t, 2, client.calls)
}

// hookStatusClient runs a callback during the first status call,
// simulating a session change while the request is in flight
type hookStatusClient struct {
	first *api.StatusResult
	then  *api.StatusResult
	hook  func()
	calls int
}

func (h *hookStatusClient) SubscriptionStatus(ctx context.Context) (*api.StatusResult, error) {
	h.calls++
	if h.calls == 1 {
		h.hook()
		return h.first, nil
	}
	return h.then, nil
}

func TestRefreshDiscardsResultForReplacedSession(t *testing.T) {
	client := &hookStatusClient{
		first: &api.StatusResult{Status: "active", Plan: "Professional Plan"},
		then:  &api.StatusResult{Status: "none"},
	}
	gate := NewGate(client)
	gate.SetToken("t1")

	// While t1's check is in flight the user logs out and a second
	// account logs in.
	client.hook = func() {
		gate.SetToken("")
		gate.Invalidate()
		gate.SetToken("t2")
	}

	decision := gate.Refresh(context.Background())
	assert.Equal(t, StatusUnknown, decision.Status, "t1's result must not be applied to t2")
	assert.False(t, decision.Status.Allowed())

	_, ok := gate.Cached()
	require.False(t, ok, "a discarded result must not be cached")

	// t2 resolves with its own fresh call.
	second := gate.Resolve(context.Background())
	assert.Equal(t, StatusInactive, second.Status)
	assert.Equal(t, "none", second.RawStatus)
	assert.Equal(t, 2, client.calls)
}

func TestApplyStaleTokenDropped(t *testing.T) {
	gate := NewGate(&fakeStatusClient{})
	gate.SetToken("t2")

	decision, ok := gate.Apply("t1", &api.StatusResult{Status: "active"}, nil)

	assert.False(t, ok)
	assert.Equal(t, StatusUnknown, decision.Status)
	_, cached := gate.Cached()
	assert.False(t, cached)
}

func TestApplyErrorNotCached(t *testing.T) {
	gate := NewGate(&fakeStatusClient{})
	gate.SetToken("t1")

	decision, ok := gate.Apply("t1", nil, errors.NewNetworkError(context.DeadlineExceeded))

	assert.True(t, ok)
	assert.Equal(t, StatusError, decision.Status)
	_, cached := gate.Cached()
	assert.False(t, cached, "transient failures must be retried, not remembered")
}

func TestLogoutScenario(t *testing.T) {
	client := &fakeStatusClient{result: &api.StatusResult{Status: "active"}}
	gate := NewGate(client)
	gate.SetToken("t1")

	require.True(t, gate.Resolve(context.Background()).Status.Allowed())

	gate.SetToken("")
	gate.Invalidate()

	decision := gate.Resolve(context.Background())
	assert.Equal(t, StatusUnknown, decision.Status)
	assert.Equal(t, 1, client.calls)
}

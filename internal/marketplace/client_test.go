package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldpilot/dispatch-api/internal/matching"
	"github.com/fieldpilot/dispatch-api/pkg/config"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(config.MarketplaceConfig{
		BaseURL: server.URL,
		Token:   "test-token",
		Timeout: 5 * time.Second,
	}, nil, nil)
	return client, server
}

func TestClientListAvailable(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v2/workorders/available", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":"wo-100","title":"Router swap","timezone":"America/Chicago","schedule_mode":"exact","schedule_start":"2025-03-10T15:00:00Z","estimated_hours":2,"pay_type":"fixed","pay_base":175}]}`))
	})
	client, server := newTestClient(handler)
	defer server.Close()

	orders, err := client.ListAvailable(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "wo-100", orders[0].ID)
	assert.Equal(t, "fixed", orders[0].PayType)
	assert.Equal(t, 175.0, orders[0].PayBase)
}

func TestClientRequestEscapesID(t *testing.T) {
	var gotPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	})
	client, server := newTestClient(handler)
	defer server.Close()

	require.NoError(t, client.Request(context.Background(), "wo/weird id"))
	assert.Equal(t, "/v2/workorders/wo%2Fweird%20id/request", gotPath)
}

func TestClientSendCounterOfferBody(t *testing.T) {
	var got map[string]interface{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})
	client, server := newTestClient(handler)
	defer server.Close()

	offer := matching.CounterOffer{
		Payment: &matching.PaymentProposal{Type: "fixed", BaseAmount: 150},
		Note:    "Counter-offer: pay adjusted to configured minimum rates.",
	}
	require.NoError(t, client.SendCounterOffer(context.Background(), "wo-100", offer))

	payment, ok := got["payment"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "fixed", payment["type"])
	assert.Equal(t, 150.0, payment["base_amount"])
}

func TestClientSurfacesAPIError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"provider suspended"}`))
	})
	client, server := newTestClient(handler)
	defer server.Close()

	err := client.Accept(context.Background(), "wo-100")
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "provider suspended")
}

func TestClientRecordsCalls(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	recorder := &stubRecorder{}
	client := NewClient(config.MarketplaceConfig{BaseURL: server.URL}, nil, recorder)

	_, err := client.ListAssigned(context.Background())
	require.NoError(t, err)
	require.Len(t, recorder.calls, 1)
	assert.Equal(t, "/v2/workorders/assigned", recorder.calls[0].endpoint)
	assert.Equal(t, http.StatusOK, recorder.calls[0].status)
}

type recordedCall struct {
	endpoint string
	status   int
}

type stubRecorder struct {
	calls []recordedCall
}

func (s *stubRecorder) RecordMarketplaceCall(endpoint string, status int, elapsed time.Duration) {
	s.calls = append(s.calls, recordedCall{endpoint: endpoint, status: status})
}

package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKhaltiInitiate(t *testing.T) {
	var gotAuth string
	var gotPayload khaltiInitiatePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/epayment/initiate/", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"pidx":        "pidx-abc",
			"payment_url": "https://test-pay.khalti.com/?pidx=pidx-abc",
		})
	}))
	defer srv.Close()

	client := NewKhaltiClient(srv.URL, "secret-key", "https://shop.example/return", "https://shop.example")
	res, err := client.Initiate(context.Background(), &InitiateRequest{
		AmountCents: 100000,
		OrderID:     "booking-5",
		OrderName:   "Kathmandu Jazz Night",
	})
	require.NoError(t, err)

	assert.Equal(t, "Key secret-key", gotAuth)
	assert.Equal(t, uint32(100000), gotPayload.Amount)
	assert.Equal(t, "booking-5", gotPayload.PurchaseOrderID)
	assert.Equal(t, "https://shop.example/return", gotPayload.ReturnURL)
	assert.Equal(t, "pidx-abc", res.TransactionID)
	assert.Equal(t, "https://test-pay.khalti.com/?pidx=pidx-abc", res.PaymentURL)
}

func TestKhaltiInitiateErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid token."})
	}))
	defer srv.Close()

	client := NewKhaltiClient(srv.URL, "bad-key", "", "")
	_, err := client.Initiate(context.Background(), &InitiateRequest{AmountCents: 1000, OrderID: "booking-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid token.")
}

func TestKhaltiInitiateMissingPidx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"payment_url": "https://x"})
	}))
	defer srv.Close()

	client := NewKhaltiClient(srv.URL, "key", "", "")
	_, err := client.Initiate(context.Background(), &InitiateRequest{AmountCents: 1000, OrderID: "booking-1"})
	assert.Error(t, err)
}

func TestKhaltiInitiateWithoutSecret(t *testing.T) {
	client := NewKhaltiClient("https://dev.khalti.com/api/v2", "", "", "")
	_, err := client.Initiate(context.Background(), &InitiateRequest{AmountCents: 1000, OrderID: "booking-1"})
	assert.Error(t, err)
}

func TestMockGatewayAlwaysSucceeds(t *testing.T) {
	g := NewMockGateway()
	res, err := g.Initiate(context.Background(), &InitiateRequest{AmountCents: 1000, OrderID: "booking-9"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.TransactionID)
	assert.Contains(t, res.PaymentURL, "booking-9")
}

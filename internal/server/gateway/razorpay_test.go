package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/imagifine/internal/common"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *RazorpayClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRazorpayClient(srv.URL, "key_id", "key_secret", 5*time.Second)
}

func TestCreateOrder_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key_id", user)
		assert.Equal(t, "key_secret", pass)

		var req createOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(200), req.Amount)
		assert.Equal(t, "INR", req.Currency)
		assert.Equal(t, "u1", req.Notes.UserID)

		json.NewEncoder(w).Encode(Order{
			ID:       "order_abc",
			Amount:   req.Amount,
			Currency: req.Currency,
			Status:   "created",
			Notes:    req.Notes,
		})
	})

	order, err := c.CreateOrder(context.Background(), OrderRequest{
		Amount:   200,
		Currency: "INR",
		Receipt:  "receipt_1",
		Notes:    OrderNotes{UserID: "u1", Credits: 2, PlanID: "basic"},
	})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, int64(200), order.Amount)
	assert.Equal(t, int64(2), order.Notes.Credits)
}

func TestCreateOrder_GatewayError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"auth failed"}`, http.StatusUnauthorized)
	})

	_, err := c.CreateOrder(context.Background(), OrderRequest{Amount: 200, Currency: "INR"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrGatewayUnavailable), "got %v", err)
}

func TestFetchPayment_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payments/pay_1", r.URL.Path)

		json.NewEncoder(w).Encode(Payment{
			ID: "pay_1", OrderID: "order_abc", Amount: 200, Status: "captured", Method: "card",
		})
	})

	p, err := c.FetchPayment(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.Equal(t, "order_abc", p.OrderID)
	assert.Equal(t, "captured", p.Status)
}

func TestFetchPayment_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewRazorpayClient(srv.URL, "k", "s", time.Second)
	_, err := c.FetchPayment(context.Background(), "pay_x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrGatewayUnavailable), "got %v", err)
}

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/imagifine/internal/common"
)

// RazorpayClient talks to the Razorpay Orders/Payments REST API using basic
// auth. Calls are bounded by the underlying http.Client timeout; a call that
// never returns leaves the ledger entry pending for later reconciliation.
type RazorpayClient struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
}

func NewRazorpayClient(baseURL, keyID, keySecret string, timeout time.Duration) *RazorpayClient {
	return &RazorpayClient{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		client:    &http.Client{Timeout: timeout},
	}
}

type createOrderRequest struct {
	Amount   int64      `json:"amount"`
	Currency string     `json:"currency"`
	Receipt  string     `json:"receipt"`
	Notes    OrderNotes `json:"notes"`
}

func (c *RazorpayClient) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {

	body, err := json.Marshal(createOrderRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding order request: %w", err)
	}

	order := &Order{}
	if err := c.do(ctx, http.MethodPost, "/v1/orders", bytes.NewReader(body), order); err != nil {
		return nil, err
	}

	return order, nil
}

func (c *RazorpayClient) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {

	payment := &Payment{}
	path := "/v1/payments/" + url.PathEscape(paymentID)
	if err := c.do(ctx, http.MethodGet, path, nil, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

func (c *RazorpayClient) do(ctx context.Context, method, path string, body io.Reader, out any) error {

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: building request: %v", common.ErrGatewayUnavailable, err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d: %s", common.ErrGatewayUnavailable, resp.StatusCode, detail)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", common.ErrGatewayUnavailable, err)
	}

	return nil
}

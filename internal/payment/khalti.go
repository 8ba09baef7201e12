package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// KhaltiClient talks to the Khalti ePayment API.  Initiation is a
// single POST; the customer finishes checkout on Khalti's side and the
// gateway reports back through the payment callback endpoint.
type KhaltiClient struct {
	baseURL    string
	secretKey  string
	returnURL  string
	websiteURL string
	httpClient *http.Client
}

// NewKhaltiClient builds a client for the given API base (e.g.
// https://dev.khalti.com/api/v2).  secretKey may be empty; Initiate
// then refuses to start transactions instead of sending doomed
// requests.
func NewKhaltiClient(baseURL, secretKey, returnURL, websiteURL string) *KhaltiClient {
	return &KhaltiClient{
		baseURL:    baseURL,
		secretKey:  secretKey,
		returnURL:  returnURL,
		websiteURL: websiteURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type khaltiInitiatePayload struct {
	ReturnURL         string `json:"return_url"`
	WebsiteURL        string `json:"website_url"`
	Amount            uint32 `json:"amount"`
	PurchaseOrderID   string `json:"purchase_order_id"`
	PurchaseOrderName string `json:"purchase_order_name"`
}

type khaltiInitiateResult struct {
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"payment_url"`
	Detail     string `json:"detail"` // set on error responses
}

// Initiate starts a Khalti checkout.  The amount is already in paisa.
// The returned TransactionID is Khalti's pidx, which later callbacks
// reference.
func (k *KhaltiClient) Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResponse, error) {
	if k.secretKey == "" {
		return nil, errors.New("khalti: secret key not configured")
	}
	payload := khaltiInitiatePayload{
		ReturnURL:         k.returnURL,
		WebsiteURL:        k.websiteURL,
		Amount:            req.AmountCents,
		PurchaseOrderID:   req.OrderID,
		PurchaseOrderName: req.OrderName,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, k.baseURL+"/epayment/initiate/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Key "+k.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := k.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("khalti: initiate request: %w", err)
	}
	defer resp.Body.Close()

	var result khaltiInitiateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil && resp.StatusCode < 300 {
		return nil, fmt.Errorf("khalti: decode response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if result.Detail != "" {
			return nil, fmt.Errorf("khalti: initiate failed: %s (status %d)", result.Detail, resp.StatusCode)
		}
		return nil, fmt.Errorf("khalti: initiate failed with status %d", resp.StatusCode)
	}
	if result.Pidx == "" {
		return nil, errors.New("khalti: response missing pidx")
	}
	return &InitiateResponse{TransactionID: result.Pidx, PaymentURL: result.PaymentURL}, nil
}

/*
payment.go - Payment processor client

PURPOSE:
  The engine's obligation ends at producing the checkout request body; the
  processor itself is an external collaborator behind the PaymentClient
  interface. The HTTP implementation posts the body to the configured
  endpoint and hands back the processor's session id.

WIRE CONTRACT:
  Request:  { items: [{name, price, quantity}], delivery_fee,
              customer_email, metadata }
            with price and delivery_fee in integer minor units (cents).
  Response: { sessionId } on success, { error } with a 4xx status on
  rejection.
*/
package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PaymentRequest is the checkout-session request body.
type PaymentRequest struct {
	Items         []LineItem        `json:"items"`
	DeliveryFee   int64             `json:"delivery_fee"`
	CustomerEmail string            `json:"customer_email"`
	Metadata      map[string]string `json:"metadata"`
}

// PaymentClient creates a processor checkout session and returns its id.
type PaymentClient interface {
	CreateSession(ctx context.Context, req PaymentRequest) (string, error)
}

// =============================================================================
// HTTP CLIENT
// =============================================================================

// HTTPPaymentClient posts checkout sessions to a JSON endpoint.
type HTTPPaymentClient struct {
	EndpointURL string
	Client      *http.Client
}

func NewHTTPPaymentClient(endpointURL string) *HTTPPaymentClient {
	return &HTTPPaymentClient{
		EndpointURL: endpointURL,
		Client:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPPaymentClient) CreateSession(ctx context.Context, req PaymentRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.EndpointURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("payment endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &errBody) == nil && errBody.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrPaymentRejected, errBody.Error)
		}
		return "", fmt.Errorf("%w: status %s", ErrPaymentRejected, resp.Status)
	}

	var out struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode payment response: %w", err)
	}
	if out.SessionID == "" {
		return "", fmt.Errorf("%w: no session id returned", ErrPaymentRejected)
	}
	return out.SessionID, nil
}

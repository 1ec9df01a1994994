package vtpass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	// SandboxURL is the VTpass sandbox API base URL.
	SandboxURL = "https://sandbox.vtpass.com/api"
	// LiveURL is the VTpass production API base URL.
	LiveURL = "https://vtpass.com/api"
)

// Client is a minimal HTTP client for the VTpass VTU API.
type Client struct {
	http      *resty.Client
	apiKey    string
	secretKey string
	publicKey string
	debug     bool
}

// NewClient constructs a VTpass client. POST calls authenticate with the api and
// secret keys; GET calls use the api and public keys.
func NewClient(baseURL, apiKey, secretKey, publicKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = SandboxURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
		apiKey:    apiKey,
		secretKey: secretKey,
		publicKey: publicKey,
		debug:     os.Getenv("ENV") == "development",
	}
}

// Pay purchases a product. The same RequestID must be reused when retrying so
// VTpass can detect duplicates.
func (c *Client) Pay(ctx context.Context, req PayRequest) (*PayResponse, error) {
	var resp PayResponse
	if err := c.post(ctx, "/pay", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Requery fetches the current state of an earlier payment.
func (c *Client) Requery(ctx context.Context, requestID string) (*PayResponse, error) {
	var resp PayResponse
	if err := c.post(ctx, "/requery", RequeryRequest{RequestID: requestID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Balance returns the merchant wallet balance.
func (c *Client) Balance(ctx context.Context) (*BalanceResponse, error) {
	r, err := c.http.R().
		SetContext(ctx).
		SetHeader("api-key", c.apiKey).
		SetHeader("public-key", c.publicKey).
		Get("/balance")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if r.IsError() {
		return nil, &APIError{StatusCode: r.StatusCode(), Body: string(r.Body())}
	}
	var resp BalanceResponse
	if err := json.Unmarshal(r.Body(), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}

// post sends body as JSON and decodes the JSON reply into result.
// Non-2xx replies are returned as *APIError.
func (c *Client) post(ctx context.Context, endpoint string, body any, result any) error {
	if c.debug {
		log.Debug().
			Str("endpoint", endpoint).
			Interface("request", body).
			Msg("[VTPASS] Outgoing request")
	}

	r, err := c.http.R().
		SetContext(ctx).
		SetHeader("api-key", c.apiKey).
		SetHeader("secret-key", c.secretKey).
		SetBody(body).
		Post(endpoint)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("endpoint", endpoint).
			Int("status_code", r.StatusCode()).
			RawJSON("response", r.Body()).
			Msg("[VTPASS] Incoming response")
	}

	if r.StatusCode() != http.StatusOK {
		return &APIError{StatusCode: r.StatusCode(), Body: string(r.Body())}
	}
	if err := json.Unmarshal(r.Body(), result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// APIError is a non-2xx HTTP reply.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vtpass: http %d", e.StatusCode)
}

// Temporary reports whether retrying the same request may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

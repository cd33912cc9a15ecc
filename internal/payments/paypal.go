package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client is a thin wrapper over the PayPal Checkout Orders API: create an
// order for a donation amount, then capture it. Access tokens come from the
// client-credentials grant and are cached until shortly before expiry.
type Client struct {
	hc       *http.Client
	baseURL  string
	id       string
	secret   string
	currency string

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

func New(baseURL, clientID, clientSecret, currency string) *Client {
	if currency == "" {
		currency = "CAD"
	}
	return &Client{
		hc:       &http.Client{Timeout: 10 * time.Second},
		baseURL:  strings.TrimRight(baseURL, "/"),
		id:       clientID,
		secret:   clientSecret,
		currency: currency,
	}
}

func (c *Client) Configured() bool { return c.id != "" && c.secret != "" }

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExp) {
		return c.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/oauth2/token", strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.id, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if res.StatusCode >= 400 {
		return "", fmt.Errorf("payments: token request failed (status=%d)", res.StatusCode)
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("payments: empty access token")
	}
	c.token = out.AccessToken
	c.tokenExp = time.Now().Add(time.Duration(out.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}

// CreateOrder opens a capture-intent order and returns its ID.
func (c *Client) CreateOrder(ctx context.Context, amount string) (string, error) {
	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{
			{"amount": map[string]string{"currency_code": c.currency, "value": amount}},
		},
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// CaptureOrder captures a previously approved order and returns the raw
// capture result for the caller to relay.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	var out json.RawMessage
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", orderID)
	if err := c.do(ctx, http.MethodPost, path, map[string]any{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	jb, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(jb))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode >= 400 {
		return fmt.Errorf("payments: %s %s failed (status=%d): %s", method, path, res.StatusCode, b)
	}
	if out != nil {
		return json.Unmarshal(b, out)
	}
	return nil
}

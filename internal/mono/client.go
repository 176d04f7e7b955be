// Package mono is a thin client for the monobank personal API: the
// client-info call used to map IBANs to internal account ids, and the
// statements call.
package mono

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.monobank.ua"

// Client calls the monobank personal API with a fixed per-request retry
// budget. There is no backoff: the importer paces itself with a fixed delay
// between account fetches.
type Client struct {
	token   string
	retries int
	base    string
	hc      *http.Client
}

// AccountInfo is one account in the client-info response.
type AccountInfo struct {
	ID   string `json:"id"`
	IBAN string `json:"iban"`
}

// ClientInfo is the subset of the client-info response the importer needs.
type ClientInfo struct {
	Accounts []AccountInfo `json:"accounts"`
}

// Statement is one raw statement record as reported by the API. Amount is
// in kopiykas, Time is a unix timestamp in seconds.
type Statement struct {
	ID          string `json:"id"`
	Time        int64  `json:"time"`
	Description string `json:"description"`
	MCC         int    `json:"mcc"`
	Amount      int64  `json:"amount"`
}

// New creates a Client. retries is the number of attempts per request; zero
// or negative means a single attempt.
func New(token string, retries int) *Client {
	if retries < 1 {
		retries = 1
	}
	return &Client{
		token:   token,
		retries: retries,
		base:    DefaultBaseURL,
		hc:      &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWithBaseURL creates a Client against a non-default endpoint.
func NewWithBaseURL(token string, retries int, baseURL string) *Client {
	c := New(token, retries)
	c.base = baseURL
	return c
}

// ClientInfo fetches the account list for the token.
func (c *Client) ClientInfo(ctx context.Context) (*ClientInfo, error) {
	var info ClientInfo
	if err := c.get(ctx, "/personal/client-info", &info); err != nil {
		return nil, fmt.Errorf("requesting client info: %w", err)
	}
	return &info, nil
}

// Statements fetches the raw statements of one account for a time range.
func (c *Client) Statements(ctx context.Context, accountID string, from, to time.Time) ([]Statement, error) {
	path := fmt.Sprintf("/personal/statement/%s/%d/%d", accountID, from.Unix(), to.Unix())
	var stmts []Statement
	if err := c.get(ctx, path, &stmts); err != nil {
		return nil, fmt.Errorf("requesting statements: %w", err)
	}
	return stmts, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if err := c.doGet(ctx, path, out); err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return err
			}
			continue
		}
		return nil
	}
	return lastErr
}

func (c *Client) doGet(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Token", c.token)

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("GET %s: decoding response: %w", path, err)
	}
	return nil
}

package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the public aggregator endpoint.
const DefaultBaseURL = "https://api.relay.link"

// APIError is a non-2xx answer from the aggregator with a decoded message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("relay: %s (status %d)", e.Message, e.Status)
}

// Client talks to the Relay routing aggregator.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates an aggregator client. An empty baseURL selects the public
// endpoint.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chains fetches the supported chain list. Icons are derived from the chain
// name since the API does not supply them.
func (c *Client) Chains(ctx context.Context) ([]Chain, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/chains", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chains: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp)
	}

	var body struct {
		Chains []Chain `json:"chains"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode chains: %w", err)
	}

	for i := range body.Chains {
		body.Chains[i].Icon = fmt.Sprintf("https://icons.llamao.fi/icons/chains/rsz_%s?w=48&h=48", body.Chains[i].Name)
	}
	return body.Chains, nil
}

// Currencies fetches tokens for a chain (0 means all chains). A non-empty
// term switches to search mode: fewer results, unverified tokens allowed.
func (c *Client) Currencies(ctx context.Context, chainID int64, term string) ([]Currency, error) {
	body := map[string]interface{}{
		"limit":    100,
		"verified": true,
	}
	if chainID != 0 {
		body["chainIds"] = []int64{chainID}
	}
	if term != "" {
		body["term"] = term
		body["limit"] = 20
		body["verified"] = false
	}

	var currencies []Currency
	if err := c.postJSON(ctx, "/currencies/v2", body, &currencies); err != nil {
		return nil, err
	}
	return currencies, nil
}

// Quote requests a route for the given trade. A non-2xx answer comes back as
// *APIError carrying the aggregator's message.
func (c *Client) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	var quote Quote
	if err := c.postJSON(ctx, "/quote", req, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// UserBalance probes the user's balance of a currency by asking for a small
// dummy quote and reading the userBalance field from the reply. It returns
// the atomic amount as a string, "0" on any failure.
func (c *Client) UserBalance(ctx context.Context, chainID int64, currency, user string) string {
	// Route to Base, or to Optimism when Base is the origin.
	destChainID := int64(8453)
	if chainID == 8453 {
		destChainID = 10
	}

	quote, err := c.Quote(ctx, QuoteRequest{
		User:                user,
		OriginChainID:       chainID,
		DestinationChainID:  destChainID,
		OriginCurrency:      currency,
		DestinationCurrency: "0x0000000000000000000000000000000000000000",
		Amount:              "100000",
		TradeType:           "EXACT_INPUT",
		Recipient:           user,
	})
	if err != nil {
		c.log.Debug("balance probe failed",
			zap.Int64("chainId", chainID),
			zap.String("currency", currency),
			zap.Error(err))
		return "0"
	}
	if quote.UserBalance == "" {
		return "0"
	}
	return quote.UserBalance
}

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.apiError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode relay response: %w", err)
	}
	return nil
}

func (c *Client) apiError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Message == "" {
		body.Message = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: body.Message}
}

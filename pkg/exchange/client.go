package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	oneclick "github.com/defuse-protocol/one-click-sdk-go"
	"github.com/shopspring/decimal"
)

// TradeRequest describes a fixed-rate deposit-address trade.
type TradeRequest struct {
	FromToken string
	FromChain string
	ToToken   string
	ToChain   string
	Amount    string
	Recipient string
	RefundTo  string
}

// Trade is a created trade: the user funds DepositAddress and the exchange
// delivers to the recipient.
type Trade struct {
	DepositAddress string
	AmountIn       string
	AmountOut      string
	Deadline       time.Time
}

// Client wraps the 1Click deposit-address exchange API.
type Client struct {
	client *oneclick.APIClient
	ctx    context.Context
}

// NewClient creates an authenticated exchange client.
func NewClient(jwtToken string) *Client {
	config := oneclick.NewConfiguration()
	ctx := context.WithValue(context.Background(), oneclick.ContextAccessToken, jwtToken)
	return &Client{
		client: oneclick.NewAPIClient(config),
		ctx:    ctx,
	}
}

// SupportedTokens retrieves all tokens the exchange can trade.
func (c *Client) SupportedTokens() ([]oneclick.TokenResponse, error) {
	resp, httpResp, err := c.client.OneClickAPI.GetTokens(c.ctx).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get tokens: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != 200 {
		return nil, fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}
	return resp, nil
}

// FindToken searches for a token by symbol, optionally pinned to a chain.
func (c *Client) FindToken(symbol, chain string) (*oneclick.TokenResponse, error) {
	tokens, err := c.SupportedTokens()
	if err != nil {
		return nil, err
	}

	symbol = strings.ToUpper(symbol)
	chain = strings.ToLower(chain)

	for _, token := range tokens {
		if strings.ToUpper(token.GetSymbol()) != symbol {
			continue
		}
		if chain != "" && strings.ToLower(token.GetBlockchain()) != chain {
			continue
		}
		return &token, nil
	}

	if chain != "" {
		return nil, fmt.Errorf("token '%s' not found on chain '%s'", symbol, chain)
	}
	return nil, fmt.Errorf("token '%s' not found", symbol)
}

// CreateTrade asks the exchange for a quote with a real deposit address.
func (c *Client) CreateTrade(req TradeRequest) (*Trade, error) {
	sourceToken, err := c.FindToken(req.FromToken, req.FromChain)
	if err != nil {
		return nil, fmt.Errorf("source token error: %w", err)
	}
	destToken, err := c.FindToken(req.ToToken, req.ToChain)
	if err != nil {
		return nil, fmt.Errorf("destination token error: %w", err)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	atomicAmount := amount.Shift(int32(sourceToken.GetDecimals())).Truncate(0).String()

	if req.Recipient == "" {
		return nil, fmt.Errorf("recipient address is required")
	}
	refundTo := req.RefundTo
	if refundTo == "" {
		refundTo = req.Recipient
	}

	deadline := time.Now().Add(24 * time.Hour)

	quoteReq := oneclick.NewQuoteRequest(
		false,                    // dry - false to get a real deposit address
		"EXACT_INPUT",            // swapType
		100,                      // slippageTolerance (1%)
		sourceToken.GetAssetId(), // originAsset
		"ORIGIN_CHAIN",           // depositType
		destToken.GetAssetId(),   // destinationAsset
		atomicAmount,             // amount in smallest unit
		refundTo,                 // refundTo
		"ORIGIN_CHAIN",           // refundType
		req.Recipient,            // recipient
		"DESTINATION_CHAIN",      // recipientType
		deadline,                 // deadline
	)

	resp, httpResp, err := c.client.OneClickAPI.GetQuote(c.ctx).QuoteRequest(*quoteReq).Execute()
	if err != nil {
		return nil, c.quoteError(httpResp, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}
	if resp == nil {
		return nil, fmt.Errorf("empty quote response")
	}

	quote := resp.GetQuote()
	return &Trade{
		DepositAddress: quote.GetDepositAddress(),
		AmountIn:       quote.GetAmountInFormatted(),
		AmountOut:      quote.GetAmountOutFormatted(),
		Deadline:       deadline,
	}, nil
}

// Status returns the raw execution status for a deposit address.
func (c *Client) Status(depositAddress string) (string, error) {
	resp, httpResp, err := c.client.OneClickAPI.GetExecutionStatus(c.ctx).DepositAddress(depositAddress).Execute()
	if err != nil {
		return "", fmt.Errorf("failed to get status: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != 200 {
		return "", fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}
	return resp.GetStatus(), nil
}

// SubmitDepositTx reports the deposit transaction hash, which speeds up
// detection on the exchange side.
func (c *Client) SubmitDepositTx(depositAddress, txHash string) error {
	req := oneclick.NewSubmitDepositTxRequest(depositAddress, txHash)

	_, httpResp, err := c.client.OneClickAPI.SubmitDepositTx(c.ctx).SubmitDepositTxRequest(*req).Execute()
	if err != nil {
		return fmt.Errorf("failed to submit deposit: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != 200 && httpResp.StatusCode != 201 {
		return fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}
	return nil
}

// quoteError digs the actual message out of an error response body.
func (c *Client) quoteError(httpResp *http.Response, err error) error {
	if httpResp == nil {
		return fmt.Errorf("failed to get quote from API: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, readErr := io.ReadAll(httpResp.Body)
	if readErr != nil || len(bodyBytes) == 0 {
		return fmt.Errorf("failed to get quote from API (status: %d): %w", httpResp.StatusCode, err)
	}

	var errorResp map[string]interface{}
	if jsonErr := json.Unmarshal(bodyBytes, &errorResp); jsonErr == nil {
		if message, ok := errorResp["message"].(string); ok {
			return fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, message)
		}
		if errs, ok := errorResp["errors"]; ok {
			return fmt.Errorf("API error (status %d): %v", httpResp.StatusCode, errs)
		}
	}
	return fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(bodyBytes))
}

package relay

import "encoding/json"

// Chain is one network the aggregator can route through.
type Chain struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Icon        string `json:"icon,omitempty"`
}

// Currency is a token (or native asset) on a specific chain. The wire format
// nests logo and verification under a metadata object; decoding flattens it.
type Currency struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
	ChainID  int64  `json:"chainId"`
	LogoURI  string `json:"logoURI,omitempty"`
	Verified bool   `json:"verified,omitempty"`
}

// UnmarshalJSON flattens the metadata wrapper the currencies endpoint and
// quote details both use.
func (c *Currency) UnmarshalJSON(b []byte) error {
	var raw struct {
		Address  string `json:"address"`
		Symbol   string `json:"symbol"`
		Name     string `json:"name"`
		Decimals int    `json:"decimals"`
		ChainID  int64  `json:"chainId"`
		Metadata struct {
			LogoURI  string `json:"logoURI"`
			Verified bool   `json:"verified"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	c.Address = raw.Address
	c.Symbol = raw.Symbol
	c.Name = raw.Name
	c.Decimals = raw.Decimals
	c.ChainID = raw.ChainID
	c.LogoURI = raw.Metadata.LogoURI
	c.Verified = raw.Metadata.Verified
	return nil
}

// QuoteRequest is the body of a quote call. Amount is in atomic units of the
// origin currency. Recipient may differ from User.
type QuoteRequest struct {
	User                string `json:"user"`
	OriginChainID       int64  `json:"originChainId"`
	DestinationChainID  int64  `json:"destinationChainId"`
	OriginCurrency      string `json:"originCurrency"`
	DestinationCurrency string `json:"destinationCurrency"`
	Amount              string `json:"amount"`
	TradeType           string `json:"tradeType"`
	Recipient           string `json:"recipient,omitempty"`
}

// QuoteSide describes one side of the quoted trade.
type QuoteSide struct {
	Currency        Currency `json:"currency"`
	Amount          string   `json:"amount"`
	AmountFormatted string   `json:"amountFormatted"`
	AmountUsd       string   `json:"amountUsd"`
}

// Details summarizes a quote for display.
type Details struct {
	CurrencyIn  QuoteSide `json:"currencyIn"`
	CurrencyOut QuoteSide `json:"currencyOut"`
	Rate        string    `json:"rate"`
}

// Quote is the aggregator's answer: the display details plus the ordered
// steps the user must execute. UserBalance is only populated on quote calls
// used as balance probes.
type Quote struct {
	Steps       []Step          `json:"steps"`
	Fees        json.RawMessage `json:"fees,omitempty"`
	Details     Details         `json:"details"`
	UserBalance string          `json:"userBalance,omitempty"`
}

// Step is one stage of a quote's execution. Steps are ordered and must run
// sequentially; later steps can depend on chain state earlier ones produce.
type Step struct {
	ID          string     `json:"id"`
	Action      string     `json:"action"`
	Description string     `json:"description"`
	Kind        string     `json:"kind"`
	Items       []StepItem `json:"items"`
}

// ItemStatusComplete marks items that need no execution.
const ItemStatusComplete = "complete"

// StepItem is one transaction within a step. Data keeps the raw payload; its
// structural shape decides which chain family it targets (see Payload).
type StepItem struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

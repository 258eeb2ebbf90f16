package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the CoinMarketCap quotes endpoint.
const DefaultBaseURL = "https://pro-api.coinmarketcap.com"

const cacheTTL = 60 * time.Second

// Service fetches USD spot prices for display, caching each answer for a
// minute. On a fetch failure the stale cached value is served; with nothing
// cached the price is zero. Display prices are never worth failing a
// command over.
type Service struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *zap.Logger

	mu        sync.Mutex
	cached    map[string]float64
	fetchedAt time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) Option {
	return func(s *Service) { s.baseURL = strings.TrimSuffix(url, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(s *Service) { s.http = h }
}

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New creates a price service. An empty API key disables fetching; every
// lookup then returns zero.
func New(apiKey string, opts ...Option) *Service {
	s := &Service{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     zap.NewNop(),
		cached:  make(map[string]float64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// USD returns the spot prices for the given symbols. Missing or failed
// symbols come back as zero.
func (s *Service) USD(ctx context.Context, symbols ...string) map[string]float64 {
	out := make(map[string]float64, len(symbols))

	s.mu.Lock()
	fresh := time.Since(s.fetchedAt) < cacheTTL
	missing := false
	for _, symbol := range symbols {
		symbol = strings.ToUpper(symbol)
		price, ok := s.cached[symbol]
		out[symbol] = price
		if !ok {
			missing = true
		}
	}
	s.mu.Unlock()

	if s.apiKey == "" || (fresh && !missing) {
		return out
	}

	fetched, err := s.fetch(ctx, symbols)
	if err != nil {
		s.log.Debug("price fetch failed", zap.Error(err))
		return out
	}

	s.mu.Lock()
	for symbol, price := range fetched {
		s.cached[symbol] = price
	}
	s.fetchedAt = time.Now()
	for _, symbol := range symbols {
		symbol = strings.ToUpper(symbol)
		out[symbol] = s.cached[symbol]
	}
	s.mu.Unlock()

	return out
}

func (s *Service) fetch(ctx context.Context, symbols []string) (map[string]float64, error) {
	upper := make([]string, len(symbols))
	for i, symbol := range symbols {
		upper[i] = strings.ToUpper(symbol)
	}

	url := fmt.Sprintf("%s/v2/cryptocurrency/quotes/latest?symbol=%s", s.baseURL, strings.Join(upper, ","))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-CMC_PRO_API_KEY", s.apiKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price API returned status code %d", resp.StatusCode)
	}

	var body struct {
		Data map[string][]struct {
			Quote struct {
				USD struct {
					Price float64 `json:"price"`
				} `json:"USD"`
			} `json:"quote"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode price response: %w", err)
	}

	prices := make(map[string]float64, len(body.Data))
	for symbol, entries := range body.Data {
		if len(entries) > 0 {
			prices[symbol] = entries[0].Quote.USD.Price
		}
	}
	return prices, nil
}

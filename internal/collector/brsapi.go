package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"MarketCourier/internal/model"
)

// DefaultBrsURL is the public gold/currency endpoint of BrsApi.
const DefaultBrsURL = "https://BrsApi.ir/Api/Market/Gold_Currency.php"

// FeedCategories are the provider sections merged into one symbol namespace.
var FeedCategories = []string{"gold", "currency", "cryptocurrency"}

var (
	ErrMissingCategory = errors.New("feed response missing category")
	ErrEmptyFeed       = errors.New("feed returned no prices")
	ErrMalformedItem   = errors.New("malformed feed item")
)

// BrsFetcher implements Fetcher against the BrsApi market endpoint.
type BrsFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewBrsFetcher creates a new fetcher with optional proxy support.
func NewBrsFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *BrsFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = DefaultBrsURL
	}
	return &BrsFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *BrsFetcher) Name() string { return "brsapi" }

// brsItem is one entry of a provider category. Prices arrive either as JSON
// numbers or as quoted strings depending on the instrument.
type brsItem struct {
	Symbol string              `json:"symbol"`
	Name   string              `json:"name"`
	Price  decimal.NullDecimal `json:"price"`
	Unit   string              `json:"unit"`
}

func (f *BrsFetcher) FetchPrices(ctx context.Context) ([]model.PriceRecord, error) {
	u, err := url.Parse(f.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("key", f.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; MarketCourier/1.0)")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch prices: status %d, body: %.200s", resp.StatusCode, string(body))
	}
	return decodeFeed(body)
}

// decodeFeed flattens the category-partitioned payload in FeedCategories order.
func decodeFeed(body []byte) ([]model.PriceRecord, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	var records []model.PriceRecord
	for _, cat := range FeedCategories {
		section, ok := raw[cat]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingCategory, cat)
		}
		var items []brsItem
		if err := json.Unmarshal(section, &items); err != nil {
			return nil, fmt.Errorf("decode %s: %w", cat, err)
		}
		for i, it := range items {
			if it.Symbol == "" || !it.Price.Valid {
				return nil, fmt.Errorf("%w: %s[%d]", ErrMalformedItem, cat, i)
			}
			records = append(records, model.PriceRecord{
				Symbol: it.Symbol,
				Name:   it.Name,
				Price:  it.Price.Decimal.InexactFloat64(),
				Unit:   it.Unit,
			})
		}
	}
	if len(records) == 0 {
		return nil, ErrEmptyFeed
	}
	return records, nil
}

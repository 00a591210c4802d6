package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// FixerClient fetches the latest rates snapshot from a fixer.io style API.
// The free plan serves every rate against one fixed base currency.
type FixerClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewFixerClient(baseURL, apiKey string, httpClient *http.Client) (*FixerClient, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("fixer base url is required")
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("parse fixer base url: %w", err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &FixerClient{
		baseURL:    trimmed,
		apiKey:     apiKey,
		httpClient: httpClient,
	}, nil
}

type latestResponse struct {
	Success bool                       `json:"success"`
	Base    string                     `json:"base"`
	Rates   map[string]decimal.Decimal `json:"rates"`
	Error   struct {
		Code int    `json:"code"`
		Type string `json:"type"`
	} `json:"error"`
}

// FetchRates returns the current snapshot keyed by upper-case ISO code.
// The base currency is included with rate 1 so lookups never special-case it.
func (c *FixerClient) FetchRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	reqURL := fmt.Sprintf("%s/latest?access_key=%s", c.baseURL, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create rates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute rates request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read rates response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected rates status %d", resp.StatusCode)
	}

	var parsed latestResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode rates response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("rates api error: code=%d type=%s", parsed.Error.Code, parsed.Error.Type)
	}
	if len(parsed.Rates) == 0 {
		return nil, fmt.Errorf("rates api returned no rates")
	}

	rates := make(map[string]decimal.Decimal, len(parsed.Rates)+1)
	for iso, rate := range parsed.Rates {
		rates[strings.ToUpper(iso)] = rate
	}
	if base := strings.ToUpper(strings.TrimSpace(parsed.Base)); base != "" {
		if _, ok := rates[base]; !ok {
			rates[base] = decimal.NewFromInt(1)
		}
	}

	return rates, nil
}

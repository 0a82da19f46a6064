package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var currencyCodePattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

// Rate is the normalized currency lookup shape: how many units of To one
// unit of From buys.
type Rate struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Rate float64 `json:"rate"`
}

func normalizeCurrencyPair(q Query) (string, string, error) {
	from := strings.ToUpper(strings.TrimSpace(q.From))
	to := strings.ToUpper(strings.TrimSpace(q.To))
	if !currencyCodePattern.MatchString(from) {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, q.From)
	}
	if !currencyCodePattern.MatchString(to) {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, q.To)
	}
	return from, to, nil
}

// ERAPI fetches live rates from the open.er-api.com v6 endpoint.
type ERAPI struct {
	BaseURL string
	client  *http.Client
}

func NewERAPI(baseURL string, timeout time.Duration) *ERAPI {
	return &ERAPI{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (e *ERAPI) Name() string { return "er-api" }

type erAPIResponse struct {
	Result    string             `json:"result"`
	ErrorType string             `json:"error-type"`
	Rates     map[string]float64 `json:"rates"`
}

func (e *ERAPI) Fetch(ctx context.Context, q Query) (any, error) {
	from, to, err := normalizeCurrencyPair(q)
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/v6/latest/%s", e.BaseURL, url.PathEscape(from))
	var resp erAPIResponse
	if err := getJSON(ctx, e.client, reqURL, &resp); err != nil {
		return nil, fmt.Errorf("latest %s: %w", from, err)
	}
	if resp.Result != "success" {
		if resp.ErrorType == "unsupported-code" {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, from)
		}
		return nil, fmt.Errorf("latest %s: result=%s error=%s", from, resp.Result, resp.ErrorType)
	}

	rate, ok := resp.Rates[to]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, to)
	}
	return Rate{From: from, To: to, Rate: rate}, nil
}

// Frankfurter is the fallback rate backend (ECB reference rates, so a
// narrower currency set than the primary).
type Frankfurter struct {
	BaseURL string
	client  *http.Client
}

func NewFrankfurter(baseURL string, timeout time.Duration) *Frankfurter {
	return &Frankfurter{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (f *Frankfurter) Name() string { return "frankfurter" }

type frankfurterResponse struct {
	Rates map[string]float64 `json:"rates"`
}

func (f *Frankfurter) Fetch(ctx context.Context, q Query) (any, error) {
	from, to, err := normalizeCurrencyPair(q)
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/latest?from=%s&to=%s", f.BaseURL, url.QueryEscape(from), url.QueryEscape(to))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	// Frankfurter answers 404 for currency codes outside the ECB set.
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s or %s", ErrUnsupportedCurrency, from, to)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var parsed frankfurterResponse
	if err := decodeJSON(resp, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	rate, ok := parsed.Rates[to]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, to)
	}
	return Rate{From: from, To: to, Rate: rate}, nil
}

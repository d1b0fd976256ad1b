package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ProviderPageSpeed is the quota accounting name for the performance scanner.
const ProviderPageSpeed = "pagespeed"

const defaultPageSpeedTimeout = 45 * time.Second

// maxPageSpeedBodyBytes caps response reads; reports can be large.
const maxPageSpeedBodyBytes = 4 << 20

// PageSpeedAdapter scans a website's performance through the PageSpeed
// Insights HTTP API and normalizes the score to 0-100.
type PageSpeedAdapter struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewPageSpeedAdapter creates the performance scanner adapter.
func NewPageSpeedAdapter(endpoint, apiKey string, timeout time.Duration) *PageSpeedAdapter {
	if timeout <= 0 {
		timeout = defaultPageSpeedTimeout
	}
	return &PageSpeedAdapter{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name identifies the provider.
func (a *PageSpeedAdapter) Name() string {
	return ProviderPageSpeed
}

// pageSpeedResponse is the subset of the API response we read.
type pageSpeedResponse struct {
	LighthouseResult struct {
		Categories struct {
			Performance struct {
				Score float64 `json:"score"` // 0.0 - 1.0
			} `json:"performance"`
		} `json:"categories"`
	} `json:"lighthouseResult"`
	ID string `json:"id"`
}

// Attempt runs one performance scan against the target URL.
func (a *PageSpeedAdapter) Attempt(ctx context.Context, target Target) Outcome {
	if target.URL == "" {
		return Fatal("target has no URL")
	}

	reqURL, err := a.buildURL(target.URL)
	if err != nil {
		return Fatal(fmt.Sprintf("invalid target URL %q: %v", target.URL, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return Fatal("failed to build request: " + err.Error())
	}

	resp, err := a.client.Do(req)
	if err != nil {
		// Transport errors and timeouts are transient.
		return Retry("pagespeed request failed: " + err.Error())
	}
	defer resp.Body.Close()

	switch ClassifyHTTPStatus(resp.StatusCode) {
	case StatusRetryable:
		return Retry(fmt.Sprintf("pagespeed returned HTTP %d", resp.StatusCode))
	case StatusFatal:
		return Fatal(fmt.Sprintf("pagespeed returned HTTP %d", resp.StatusCode))
	case StatusSuccess:
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSpeedBodyBytes))
	if err != nil {
		return Retry("failed to read pagespeed response: " + err.Error())
	}

	var parsed pageSpeedResponse
	if unmarshalErr := json.Unmarshal(body, &parsed); unmarshalErr != nil {
		return Fatal("malformed pagespeed response: " + unmarshalErr.Error())
	}

	score := int(parsed.LighthouseResult.Categories.Performance.Score * 100)
	if score < 0 || score > 100 {
		return Fatal(fmt.Sprintf("pagespeed score out of range: %d", score))
	}

	return Succeed(map[string]any{
		"score":      score,
		"report_url": "https://pagespeed.web.dev/report?url=" + url.QueryEscape(target.URL),
	})
}

// buildURL assembles the API request URL.
func (a *PageSpeedAdapter) buildURL(targetURL string) (string, error) {
	if _, err := url.ParseRequestURI(targetURL); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("url", targetURL)
	params.Set("category", "performance")
	if a.apiKey != "" {
		params.Set("key", a.apiKey)
	}

	return a.endpoint + "?" + params.Encode(), nil
}

// Package discovery finds businesses for a location query by fanning
// out across multiple data sources with retry, deduplication, and a
// synthetic fallback when every source fails.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/domain"
	"github.com/brianlapp/local-business-health-checker-sub001/internal/provider"
)

// Source is one discovery provider. Endpoints are URL variants for the
// same provider, tried in order within a single attempt.
type Source interface {
	Name() string
	Endpoints() []string
	// Attempt queries one endpoint variant. Records are only meaningful
	// when the outcome status is success.
	Attempt(ctx context.Context, query, endpoint string) ([]domain.DiscoveryResult, provider.Outcome)
}

const defaultSourceTimeout = 20 * time.Second

// maxSourceBodyBytes caps response reads from discovery endpoints.
const maxSourceBodyBytes = 2 << 20

// HTTPSource queries a JSON-over-HTTP business directory endpoint.
// The expected payload is a flat array of {name, website, phone}.
type HTTPSource struct {
	name      string
	endpoints []string
	client    *http.Client
}

// NewHTTPSource creates a discovery source over plain HTTP endpoints.
func NewHTTPSource(name string, endpoints []string) *HTTPSource {
	return &HTTPSource{
		name:      name,
		endpoints: endpoints,
		client:    &http.Client{Timeout: defaultSourceTimeout},
	}
}

// Name identifies the source.
func (s *HTTPSource) Name() string {
	return s.name
}

// Endpoints returns the URL variants for this source.
func (s *HTTPSource) Endpoints() []string {
	return s.endpoints
}

// sourceRecord is the wire format for one directory entry.
type sourceRecord struct {
	Name    string `json:"name"`
	Website string `json:"website"`
	Phone   string `json:"phone"`
}

// Attempt queries one endpoint variant for the location query.
func (s *HTTPSource) Attempt(
	ctx context.Context,
	query, endpoint string,
) ([]domain.DiscoveryResult, provider.Outcome) {
	reqURL := endpoint + "?" + url.Values{"q": {query}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, provider.Fatal("failed to build request: " + err.Error())
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, provider.Retry(fmt.Sprintf("%s request failed: %v", s.name, err))
	}
	defer resp.Body.Close()

	switch provider.ClassifyHTTPStatus(resp.StatusCode) {
	case provider.StatusRetryable:
		return nil, provider.Retry(fmt.Sprintf("%s returned HTTP %d", s.name, resp.StatusCode))
	case provider.StatusFatal:
		return nil, provider.Fatal(fmt.Sprintf("%s returned HTTP %d", s.name, resp.StatusCode))
	case provider.StatusSuccess:
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBodyBytes))
	if err != nil {
		return nil, provider.Retry(fmt.Sprintf("%s read failed: %v", s.name, err))
	}

	var records []sourceRecord
	if unmarshalErr := json.Unmarshal(body, &records); unmarshalErr != nil {
		return nil, provider.Fatal(fmt.Sprintf("%s returned malformed payload: %v", s.name, unmarshalErr))
	}

	results := make([]domain.DiscoveryResult, 0, len(records))
	for _, rec := range records {
		if rec.Name == "" {
			continue
		}
		results = append(results, domain.DiscoveryResult{
			Name:    rec.Name,
			Website: rec.Website,
			Phone:   rec.Phone,
			Source:  s.name,
		})
	}

	return results, provider.Succeed(nil)
}

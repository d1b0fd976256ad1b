package discovery

import (
	"fmt"
	"strings"

	"github.com/brianlapp/local-business-health-checker-sub001/internal/domain"
)

// SampleSource marks synthetic records so they are never mistaken for
// real provider data.
const SampleSource = "sample"

// sampleTemplates are the business archetypes used for fallback data.
var sampleTemplates = []struct {
	name  string
	slug  string
	phone string
}{
	{"Main Street Bakery", "mainstreetbakery", "555-0101"},
	{"Harbor View Dental", "harborviewdental", "555-0102"},
	{"Cedar Lane Auto Repair", "cedarlaneauto", "555-0103"},
	{"Bluebird Cafe", "bluebirdcafe", "555-0104"},
	{"Summit Physical Therapy", "summitpt", "555-0105"},
}

// SampleResults returns a non-empty synthetic result set for a query.
// Used only when every discovery source has failed.
func SampleResults(query string) []domain.DiscoveryResult {
	location := strings.TrimSpace(query)
	results := make([]domain.DiscoveryResult, 0, len(sampleTemplates))

	for _, tmpl := range sampleTemplates {
		results = append(results, domain.DiscoveryResult{
			Name:    fmt.Sprintf("%s (%s)", tmpl.name, location),
			Website: fmt.Sprintf("https://www.%s.example.com", tmpl.slug),
			Phone:   tmpl.phone,
			Source:  SampleSource,
		})
	}

	return results
}

package domain

// DiscoveryResult is one business candidate returned by a discovery
// source.
type DiscoveryResult struct {
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Source  string `json:"source"`
}

// DiscoveryOutcome is the merged result of a discovery run. Synthetic is
// true when every source failed and sample data was substituted; the
// per-source errors are carried alongside either way.
type DiscoveryOutcome struct {
	Results      []DiscoveryResult `json:"results"`
	Synthetic    bool              `json:"synthetic"`
	SourceErrors []string          `json:"source_errors,omitempty"`
}

package types

// SourceStatus is the per-source entry of the aggregator's status report.
// For blocked sources ManualURL carries a search link the user can open by
// hand, so a blocked source always leaves something actionable behind.
type SourceStatus struct {
	Source    string `json:"source"`
	OK        bool   `json:"ok"`
	Reason    string `json:"reason,omitempty"`
	ManualURL string `json:"manual_url,omitempty"`
	Count     int    `json:"count"`
}

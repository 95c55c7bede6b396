// Package mcp exposes the error pool to LLM agents over the Model Context
// Protocol. Tool responses are JSON manifests sized for a model context:
// list first, drill into one group for full traces.
package mcp

// PoolManifest is the response of the list_error_groups tool.
type PoolManifest struct {
	GroupCount  int            `json:"group_count"`
	RecordCount int            `json:"record_count"`
	Overflow    bool           `json:"overflow"`
	Groups      []GroupSummary `json:"groups"`
	GeneratedAt string         `json:"generated_at"`
}

// GroupSummary is one row of the manifest.
type GroupSummary struct {
	Key       string `json:"key"`
	Message   string `json:"message"`
	Count     int    `json:"count"`
	Blame     string `json:"blame"`
	Read      bool   `json:"read"`
	Submitted bool   `json:"submitted"`
}

// GroupDetails is the response of the get_group_details tool.
type GroupDetails struct {
	Key     string          `json:"key"`
	Blame   string          `json:"blame"`
	Info    string          `json:"info"`
	Notice  string          `json:"notice,omitempty"`
	Records []RecordDetails `json:"records"`
}

// RecordDetails is one occurrence within a group, newest first.
type RecordDetails struct {
	ID             string `json:"id"`
	Message        string `json:"message"`
	Trace          string `json:"trace"`
	Date           string `json:"date,omitempty"`
	AdditionalInfo string `json:"additional_info,omitempty"`
}

// SubmissionResult is the response of the submit_group tool.
type SubmissionResult struct {
	Key      string `json:"key"`
	Status   string `json:"status"`
	URL      string `json:"url,omitempty"`
	LinkText string `json:"link_text,omitempty"`
}

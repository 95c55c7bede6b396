package contracts

// ReportEvent is the wire form of a captured failure published by remote
// processes. Published to: faultline.reports.raw. Key: {source}.
type ReportEvent struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	Throwable Throwable `json:"throwable"`
	// Timestamp is RFC 3339; the ingestion agent falls back to arrival time
	// when it is absent or malformed.
	Timestamp      string            `json:"timestamp"`
	AdditionalInfo string            `json:"additional_info,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// SubmissionEvent records a completed report submission.
// Published to: faultline.reports.submitted. Key: {record_id}.
type SubmissionEvent struct {
	RecordID    string              `json:"record_id"`
	Fingerprint string              `json:"fingerprint"`
	PluginID    PluginID            `json:"plugin_id,omitempty"`
	Result      SubmittedReportInfo `json:"result"`
	Timestamp   string              `json:"timestamp"`
}

// Broker topic names.
const (
	// TopicReportsRaw carries ReportEvent payloads from capturing processes.
	TopicReportsRaw = "faultline.reports.raw"

	// TopicReportsSubmitted carries SubmissionEvent payloads.
	TopicReportsSubmitted = "faultline.reports.submitted"
)

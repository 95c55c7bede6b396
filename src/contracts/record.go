package contracts

import "time"

// SubmissionStatus is the outcome reported by a submitter.
type SubmissionStatus string

const (
	SubmissionNew       SubmissionStatus = "new"
	SubmissionDuplicate SubmissionStatus = "duplicate"
	SubmissionFailed    SubmissionStatus = "failed"
)

// SubmittedReportInfo describes the result of submitting a report.
type SubmittedReportInfo struct {
	Status   SubmissionStatus `json:"status"`
	URL      string           `json:"url,omitempty"`
	LinkText string           `json:"link_text,omitempty"`
}

// Attachment is an extra file captured alongside a failure. Only included
// attachments travel with a submitted report.
type Attachment struct {
	Name     string `json:"name"`
	Content  []byte `json:"content,omitempty"`
	Included bool   `json:"included"`
}

// ErrorRecord is one captured fatal failure. Records are owned by the pool
// and shared by pointer; identity comparisons (selection, read marking) are
// pointer comparisons. The mutable flags are only touched from the
// coordination goroutine via the setters below.
type ErrorRecord struct {
	ID             string
	Message        string
	Throwable      Throwable
	Date           time.Time
	AdditionalInfo string
	AssigneeID     string
	Attachments    []Attachment

	read       bool
	submitting bool
	submitted  *SubmittedReportInfo
}

// IsRead reports whether the record has been seen by the operator.
func (r *ErrorRecord) IsRead() bool { return r.read }

// SetRead marks the record read or unread.
func (r *ErrorRecord) SetRead(read bool) { r.read = read }

// IsSubmitting reports whether a submission is in flight for this record.
func (r *ErrorRecord) IsSubmitting() bool { return r.submitting }

// SetSubmitting flags an in-flight submission.
func (r *ErrorRecord) SetSubmitting(submitting bool) { r.submitting = submitting }

// IsSubmitted reports whether a submission has completed.
func (r *ErrorRecord) IsSubmitted() bool { return r.submitted != nil }

// SubmissionInfo returns the completed submission result, or nil.
func (r *ErrorRecord) SubmissionInfo() *SubmittedReportInfo { return r.submitted }

// SetSubmitted records the submission result.
func (r *ErrorRecord) SetSubmitted(info *SubmittedReportInfo) { r.submitted = info }

// IncludedAttachments returns the attachments flagged for submission.
func (r *ErrorRecord) IncludedAttachments() []Attachment {
	var included []Attachment
	for _, a := range r.Attachments {
		if a.Included {
			included = append(included, a)
		}
	}
	return included
}

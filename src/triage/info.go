package triage

import (
	"fmt"
	"strings"

	"faultline-agent/src/contracts"
)

// InfoLine assembles the status line for the selected group: blame text,
// date, duplicate count, and submission or unread state. Empty for overflow
// records, which carry their message in the details pane instead.
func (s *Session) InfoLine() string {
	group := s.SelectedGroup()
	if group == nil {
		return ""
	}
	record := group.Head()
	if record.Throwable.Category == contracts.CategoryTooManyErrors {
		return ""
	}

	var b strings.Builder
	b.WriteString(s.Blame(record))
	if !record.Date.IsZero() {
		fmt.Fprintf(&b, " Occurred %s", record.Date.Format("Jan 2 15:04"))
		if n := group.Count(); n > 1 {
			fmt.Fprintf(&b, " (%d times)", n)
		}
		b.WriteString(".")
	}

	switch {
	case record.IsSubmitted():
		b.WriteString(" ")
		AppendSubmissionInfo(record.SubmissionInfo(), &b)
	case record.IsSubmitting():
		b.WriteString(" Submitting...")
	case !record.IsRead():
		b.WriteString(" Unread.")
	}
	return b.String()
}

// AppendSubmissionInfo writes a submission result in display form.
func AppendSubmissionInfo(info *contracts.SubmittedReportInfo, out *strings.Builder) {
	switch {
	case info.Status == contracts.SubmissionFailed:
		out.WriteString("Submission failed.")
	case info.URL != "" && info.LinkText != "":
		fmt.Fprintf(out, "Submitted as %s (%s).", info.LinkText, info.URL)
		if info.Status == contracts.SubmissionDuplicate {
			out.WriteString(" Duplicate report.")
		}
	default:
		out.WriteString("Submitted.")
	}
}

// ForeignPluginNotice returns contact guidance when the selected failure
// belongs to a third-party plugin that has no submitter of its own. ok is
// false when no notice applies.
func (s *Session) ForeignPluginNotice() (notice string, ok bool) {
	record := s.Selected()
	if record == nil || s.SubmitterFor(record) != nil {
		return "", false
	}
	id, attributed := s.resolver.Resolve(&record.Throwable)
	if !attributed {
		return "", false
	}
	descriptor, known := s.lookupDescriptor(id)
	if !known || descriptor.VendorDeveloped {
		return "", false
	}

	vendor := descriptor.Vendor
	contact := descriptor.ContactInfo()
	switch {
	case vendor == "" && contact == "":
		return "The error is caused by a third-party plugin. Contact the plugin vendor.", true
	case vendor == "":
		return fmt.Sprintf("The error is caused by a third-party plugin. Contact %s.", contact), true
	case contact == "":
		return fmt.Sprintf("The error is caused by a third-party plugin. Contact %s.", vendor), true
	default:
		return fmt.Sprintf("The error is caused by a third-party plugin. Contact %s (%s).", vendor, contact), true
	}
}

// DetailsText renders the details pane body for the selected group.
func (s *Session) DetailsText() string {
	record := s.Selected()
	if record == nil {
		return ""
	}
	if record.Throwable.Category == contracts.CategoryTooManyErrors {
		return record.Throwable.Message
	}
	return record.Message + "\n" + record.Throwable.Text()
}

// Package submit resolves and drives report submitters. A submitter is
// registered per plugin; failures of unknown or vendor-developed plugins
// fall back to the core submitter, foreign-plugin failures without their own
// submitter get none (the vendor contact is surfaced instead).
package submit

import (
	"context"

	"faultline-agent/src/attribution"
	"faultline-agent/src/contracts"
)

// Event is one record's payload inside a submitted report. A report for a
// group carries one event per duplicate, head first.
type Event struct {
	Message       string                 `json:"message"`
	ThrowableText string                 `json:"throwable_text"`
	Attachments   []contracts.Attachment `json:"attachments,omitempty"`
}

// Submitter delivers a report to wherever a plugin's failures are tracked.
type Submitter interface {
	// Name is the action text shown to the operator ("Report to Vendor").
	Name() string
	// PluginID is the plugin whose failures this submitter handles; the
	// core submitter returns contracts.CorePluginID.
	PluginID() contracts.PluginID
	// Submit starts an asynchronous submission, reporting completion via
	// onComplete (invoked from a worker goroutine; the caller marshals back
	// to its own loop). Returns whether the submission was started.
	Submit(ctx context.Context, events []Event, additionalInfo string, onComplete func(contracts.SubmittedReportInfo)) bool
}

// CredentialStore supplies the optional reporter identity. Reports go out
// anonymously when no credentials are stored.
type CredentialStore interface {
	Username() (string, bool)
}

// AnonymousCredentials is a CredentialStore with no stored identity.
type AnonymousCredentials struct{}

func (AnonymousCredentials) Username() (string, bool) { return "", false }

// Registry resolves the submitter responsible for a throwable.
type Registry struct {
	submitters []Submitter
	plugins    contracts.PluginRegistry
	resolver   *attribution.Resolver
}

// NewRegistry creates a submitter registry.
func NewRegistry(plugins contracts.PluginRegistry, resolver *attribution.Resolver, submitters ...Submitter) *Registry {
	return &Registry{submitters: submitters, plugins: plugins, resolver: resolver}
}

// For returns the submitter for the given throwable, or nil when the failure
// cannot be reported (overflow records, abstract-method linkage failures,
// and foreign plugins without a registered submitter).
func (r *Registry) For(t *contracts.Throwable) Submitter {
	if t == nil ||
		t.Category == contracts.CategoryTooManyErrors ||
		t.Category == contracts.CategoryAbstractMethod {
		return nil
	}

	pluginID, attributed := r.resolver.Resolve(t)
	if !attributed {
		return r.coreSubmitter()
	}

	descriptor, known := r.lookupDescriptor(pluginID)
	if !known {
		return r.coreSubmitter()
	}
	for _, s := range r.submitters {
		if s.PluginID() == pluginID {
			return s
		}
	}
	if descriptor.VendorDeveloped {
		return r.coreSubmitter()
	}
	return nil
}

func (r *Registry) coreSubmitter() Submitter {
	for _, s := range r.submitters {
		if s.PluginID() == "" || s.PluginID() == contracts.CorePluginID {
			return s
		}
	}
	return nil
}

// lookupDescriptor shields submitter resolution from registry faults the
// same way attribution does.
func (r *Registry) lookupDescriptor(id contracts.PluginID) (d *contracts.PluginDescriptor, ok bool) {
	defer func() {
		if recover() != nil {
			d, ok = nil, false
		}
	}()
	return r.plugins.Descriptor(id)
}

// EventsForGroup builds the report payload for a group, head record first.
func EventsForGroup(group []*contracts.ErrorRecord) []Event {
	events := make([]Event, 0, len(group))
	for _, record := range group {
		events = append(events, Event{
			Message:       record.Message,
			ThrowableText: record.Throwable.Text(),
			Attachments:   record.IncludedAttachments(),
		})
	}
	return events
}

package contracts

// PluginID identifies an installed plugin. The empty value means "no plugin"
// (a core/platform failure).
type PluginID string

// CorePluginID identifies the platform itself for submitter resolution.
const CorePluginID PluginID = "core"

// PluginDescriptor is the registry's metadata for an installed plugin.
type PluginDescriptor struct {
	ID          PluginID `json:"id"`
	Name        string   `json:"name"`
	Vendor      string   `json:"vendor,omitempty"`
	VendorURL   string   `json:"vendor_url,omitempty"`
	VendorEmail string   `json:"vendor_email,omitempty"`
	// VendorDeveloped marks plugins shipped by the platform vendor; their
	// failures fall back to the core report submitter.
	VendorDeveloped bool `json:"vendor_developed"`
}

// ContactInfo returns the vendor's preferred contact target, URL first.
func (d *PluginDescriptor) ContactInfo() string {
	if d.VendorURL != "" {
		return d.VendorURL
	}
	return d.VendorEmail
}

// PluginRegistry resolves class names to the plugin that owns them. The
// registry is an external collaborator; callers must tolerate lookups that
// fail or panic (attribution degrades to "no match").
type PluginRegistry interface {
	// IsPluginClass reports whether the class belongs to any plugin.
	IsPluginClass(className string) bool
	// PluginByClassName returns the owning plugin, if any.
	PluginByClassName(className string) (PluginID, bool)
	// Descriptor returns metadata for a plugin, if installed.
	Descriptor(id PluginID) (*PluginDescriptor, bool)
}

// Package registry provides a static PluginRegistry backed by a plugin
// manifest. The monitored application exports its installed plugins (IDs,
// vendor metadata, and owned class-name prefixes) and the agent resolves
// attribution queries against that snapshot.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"faultline-agent/src/config"
	"faultline-agent/src/contracts"
)

// Entry is one plugin in the manifest.
type Entry struct {
	Descriptor contracts.PluginDescriptor `json:"descriptor"`
	// ClassPrefixes are the package/class-name prefixes the plugin owns,
	// e.g. "com.vendor.widget.".
	ClassPrefixes []string `json:"class_prefixes"`
}

// StaticRegistry resolves class names by longest owning prefix. Immutable
// after construction, therefore safe for concurrent lookups.
type StaticRegistry struct {
	entries     []Entry
	descriptors map[contracts.PluginID]*contracts.PluginDescriptor
}

// NewStaticRegistry builds a registry from manifest entries.
func NewStaticRegistry(entries []Entry) *StaticRegistry {
	r := &StaticRegistry{
		entries:     entries,
		descriptors: make(map[contracts.PluginID]*contracts.PluginDescriptor),
	}
	for i := range r.entries {
		// Longest prefix first so the most specific plugin wins.
		sort.Slice(r.entries[i].ClassPrefixes, func(a, b int) bool {
			return len(r.entries[i].ClassPrefixes[a]) > len(r.entries[i].ClassPrefixes[b])
		})
		d := r.entries[i].Descriptor
		r.descriptors[d.ID] = &d
	}
	return r
}

// LoadFromFile reads a JSON plugin manifest.
func LoadFromFile(path string) (*StaticRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", config.ErrManifestBroken, path, err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", config.ErrManifestBroken, path, err)
	}
	return NewStaticRegistry(entries), nil
}

// IsPluginClass reports whether any plugin owns the class name.
func (r *StaticRegistry) IsPluginClass(className string) bool {
	_, ok := r.owner(className)
	return ok
}

// PluginByClassName returns the plugin owning the class name.
func (r *StaticRegistry) PluginByClassName(className string) (contracts.PluginID, bool) {
	return r.owner(className)
}

// Descriptor returns the metadata for an installed plugin.
func (r *StaticRegistry) Descriptor(id contracts.PluginID) (*contracts.PluginDescriptor, bool) {
	d, ok := r.descriptors[id]
	return d, ok
}

func (r *StaticRegistry) owner(className string) (contracts.PluginID, bool) {
	if className == "" {
		return "", false
	}
	best := ""
	var bestID contracts.PluginID
	for _, entry := range r.entries {
		for _, prefix := range entry.ClassPrefixes {
			if strings.HasPrefix(className, prefix) && len(prefix) > len(best) {
				best = prefix
				bestID = entry.Descriptor.ID
			}
		}
	}
	if best == "" {
		return "", false
	}
	return bestID, true
}

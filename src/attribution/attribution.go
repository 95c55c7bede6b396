// Package attribution determines which installed plugin, if any, is
// responsible for a captured failure. Resolution walks a fixed-priority rule
// list; the first rule that produces a plugin wins. A failure no rule can
// attribute is treated as a core/platform failure.
package attribution

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"faultline-agent/src/contracts"
	"faultline-agent/src/logger"
)

// Resolver attributes throwables against a plugin registry. Resolution is a
// pure read-only query: registry faults degrade to "no attribution" instead
// of propagating.
type Resolver struct {
	registry contracts.PluginRegistry
	log      logger.Logger
	rules    []rule
}

// rule pairs a throwable predicate with its plugin extractor. Rules are
// evaluated in slice order; ordering is a deliberate priority policy.
type rule struct {
	name    string
	resolve func(*Resolver, *contracts.Throwable) (contracts.PluginID, bool)
}

// NewResolver creates a Resolver over the given registry.
func NewResolver(registry contracts.PluginRegistry, log logger.Logger) *Resolver {
	r := &Resolver{registry: registry, log: log}
	r.rules = []rule{
		{name: "plugin-exception", resolve: (*Resolver).fromPluginException},
		{name: "stack-frames", resolve: (*Resolver).fromStackFrames},
		{name: "no-such-method", resolve: (*Resolver).fromNoSuchMethod},
		{name: "class-not-found", resolve: (*Resolver).fromClassNotFound},
		{name: "abstract-method", resolve: (*Resolver).fromAbstractMethod},
		{name: "extension-failure", resolve: (*Resolver).fromExtensionFailure},
	}
	return r
}

// Resolve returns the plugin responsible for the throwable. The second
// result is false when the failure belongs to the core platform.
func (r *Resolver) Resolve(t *contracts.Throwable) (contracts.PluginID, bool) {
	if t == nil {
		return "", false
	}
	for _, rule := range r.rules {
		if id, ok := r.safely(rule, t); ok {
			r.log.Debug("attributed to plugin %s via %s rule", id, rule.name)
			return id, true
		}
	}
	return "", false
}

// safely runs one rule, swallowing registry panics so a single malformed
// record cannot take down the pipeline.
func (r *Resolver) safely(rl rule, t *contracts.Throwable) (id contracts.PluginID, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("registry lookup failed in %s rule: %v", rl.name, rec)
			id, ok = "", false
		}
	}()
	return rl.resolve(r, t)
}

// Rule 1: a structured plugin exception names its plugin directly.
func (r *Resolver) fromPluginException(t *contracts.Throwable) (contracts.PluginID, bool) {
	if t.Category == contracts.CategoryPluginException && t.PluginID != "" {
		return t.PluginID, true
	}
	return "", false
}

// Rule 2: scan stack frames top to bottom for the first plugin-owned class.
// A seen-set avoids re-querying repeated class names.
func (r *Resolver) fromStackFrames(t *contracts.Throwable) (contracts.PluginID, bool) {
	visited := make(map[string]bool)
	for _, frame := range t.Frames {
		className := frame.ClassName
		if className == "" || visited[className] {
			continue
		}
		visited[className] = true
		if r.registry.IsPluginClass(className) {
			if id, ok := r.registry.PluginByClassName(className); ok {
				return id, true
			}
		}
	}
	return "", false
}

// Rule 3: a no-such-method message names the missing method; rebuild a
// candidate class name by concatenating the identifier-start tokens of the
// period-delimited message and ask the registry about it.
func (r *Resolver) fromNoSuchMethod(t *contracts.Throwable) (contracts.PluginID, bool) {
	if t.Category != contracts.CategoryNoSuchMethod || t.Message == "" {
		return "", false
	}
	var className strings.Builder
	for _, token := range strings.Split(t.Message, ".") {
		first, _ := utf8.DecodeRuneInString(token)
		if token != "" && isIdentifierStart(first) {
			className.WriteString(token)
		}
	}
	return r.registry.PluginByClassName(className.String())
}

// Rule 4: a class-not-found message is the unresolvable class name itself.
func (r *Resolver) fromClassNotFound(t *contracts.Throwable) (contracts.PluginID, bool) {
	if t.Category != contracts.CategoryClassNotFound || t.Message == "" {
		return "", false
	}
	if r.registry.IsPluginClass(t.Message) {
		return r.registry.PluginByClassName(t.Message)
	}
	return "", false
}

// Rule 5: an abstract-method message carries a method signature like
// "x.y.Foo.bar(Ljava/lang/Object;)"; strip the argument list, then the
// method name, leaving the class token "x.y.Foo".
func (r *Resolver) fromAbstractMethod(t *contracts.Throwable) (contracts.PluginID, bool) {
	if t.Category != contracts.CategoryAbstractMethod || t.Message == "" {
		return "", false
	}
	s := t.Message
	pos := strings.Index(s, "(")
	if pos < 0 {
		return "", false
	}
	s = s[:pos]
	pos = strings.LastIndex(s, ".")
	if pos < 0 {
		return "", false
	}
	s = s[:pos]
	if r.registry.IsPluginClass(s) {
		return r.registry.PluginByClassName(s)
	}
	return "", false
}

// Rule 6: an extension instantiation failure names the extension class.
func (r *Resolver) fromExtensionFailure(t *contracts.Throwable) (contracts.PluginID, bool) {
	if t.Category != contracts.CategoryExtensionFailure || t.ExtensionClass == "" {
		return "", false
	}
	if r.registry.IsPluginClass(t.ExtensionClass) {
		return r.registry.PluginByClassName(t.ExtensionClass)
	}
	return "", false
}

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '$'
}

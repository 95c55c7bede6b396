// Package contracts defines the shared types exchanged between the pool,
// grouping, attribution, and reporting components.
package contracts

import (
	"fmt"
	"strings"
)

// ThrowableCategory tags the failure shape a throwable was captured with.
// Attribution rules dispatch on this tag instead of nested type checks.
type ThrowableCategory string

const (
	// CategoryGeneric is any failure without a more specific shape.
	CategoryGeneric ThrowableCategory = "generic"
	// CategoryPluginException carries an explicit plugin identifier.
	CategoryPluginException ThrowableCategory = "plugin-exception"
	// CategoryNoSuchMethod is a missing-method linkage failure.
	CategoryNoSuchMethod ThrowableCategory = "no-such-method"
	// CategoryClassNotFound is a missing-class load failure; its message is
	// the class name that could not be resolved.
	CategoryClassNotFound ThrowableCategory = "class-not-found"
	// CategoryAbstractMethod is an abstract-method linkage failure; its
	// message contains the unimplemented method signature.
	CategoryAbstractMethod ThrowableCategory = "abstract-method"
	// CategoryExtensionFailure is an extension-point instantiation failure.
	CategoryExtensionFailure ThrowableCategory = "extension-failure"
	// CategoryTooManyErrors is the synthetic overflow record the pool
	// appends when it stops accepting new fatals.
	CategoryTooManyErrors ThrowableCategory = "too-many-errors"
)

// StackFrame is a single frame of a captured stack trace.
type StackFrame struct {
	ClassName string `json:"class_name"`
	Method    string `json:"method"`
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
}

func (f StackFrame) String() string {
	if f.File != "" {
		return fmt.Sprintf("at %s.%s(%s:%d)", f.ClassName, f.Method, f.File, f.Line)
	}
	return fmt.Sprintf("at %s.%s", f.ClassName, f.Method)
}

// Throwable is the captured failure carried by an ErrorRecord. It is a plain
// value: attribution and fingerprinting are pure functions over it.
type Throwable struct {
	Category ThrowableCategory `json:"category"`
	// Type is the failure's class/type name as reported by the runtime.
	Type    string       `json:"type"`
	Message string       `json:"message"`
	Frames  []StackFrame `json:"frames"`
	// PluginID is set only for CategoryPluginException.
	PluginID PluginID `json:"plugin_id,omitempty"`
	// ExtensionClass is set only for CategoryExtensionFailure.
	ExtensionClass string `json:"extension_class,omitempty"`
}

// Text renders the throwable the way it is fingerprinted and displayed:
// header line followed by one frame per line. Identical failures must render
// to identical text, so the format has no timestamps or addresses.
func (t *Throwable) Text() string {
	var b strings.Builder
	b.WriteString(t.Type)
	if t.Message != "" {
		b.WriteString(": ")
		b.WriteString(t.Message)
	}
	for _, f := range t.Frames {
		b.WriteString("\n\t")
		b.WriteString(f.String())
	}
	return b.String()
}

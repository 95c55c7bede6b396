// Package sanitize cleans trace text captured from terminal-attached
// processes. Stack traces that pass through a console can pick up ANSI color
// sequences and CI timing markers; both must be stripped before
// fingerprinting, or identical failures hash differently.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// ciTimestampMarker matches CI log timing markers (\x1b_bk;t=...\x07) that
// ansi.Strip leaves behind on some terminals.
var ciTimestampMarker = regexp.MustCompile(`\x1b_bk;t=[0-9]+\x07`)

// TraceText strips escape sequences and normalizes line endings so the
// result is stable fingerprint input.
func TraceText(s string) string {
	s = ciTimestampMarker.ReplaceAllString(s, "")
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimRight(s, "\n")
}

// Line cleans a single display line without touching interior newlines.
func Line(s string) string {
	s = ciTimestampMarker.ReplaceAllString(s, "")
	s = ansi.Strip(s)
	return strings.TrimSpace(s)
}

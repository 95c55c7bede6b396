package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// VisualWidth returns the display width of text, accounting for multi-byte characters
func VisualWidth(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate truncates text to maxLen visual characters with optional ellipsis
func Truncate(s string, maxLen int, ellipsis bool) string {
	s = strings.TrimSpace(s)
	if maxLen <= 0 {
		return ""
	}
	if VisualWidth(s) > maxLen {
		if ellipsis && maxLen > 3 {
			return runewidth.Truncate(s, maxLen-3, "") + "..."
		}
		return runewidth.Truncate(s, maxLen, "")
	}
	return s
}

// TruncateAndPad truncates text with optional ellipsis and pads to exact width.
// Used for table cells to maintain consistent column widths.
func TruncateAndPad(s string, width int, ellipsis bool) string {
	s = Truncate(s, width, ellipsis)
	if w := VisualWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// Wrap wraps text to the specified width, breaking on word boundaries when
// possible. Words longer than width are broken mid-word.
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var result strings.Builder
	lineLength := 0
	for _, word := range words {
		wordLen := VisualWidth(word)

		if wordLen > width {
			if lineLength > 0 {
				result.WriteString("\n")
				lineLength = 0
			}
			for len(word) > 0 {
				chunk := runewidth.Truncate(word, width, "")
				result.WriteString(chunk)

				// Drop the emitted chunk rune-by-rune so multi-cell runes
				// don't get split.
				chunkWidth := VisualWidth(chunk)
				runeCount := 0
				currentWidth := 0
				for _, r := range word {
					if currentWidth >= chunkWidth {
						break
					}
					runeCount++
					currentWidth += runewidth.RuneWidth(r)
				}
				runes := []rune(word)
				if runeCount < len(runes) {
					word = string(runes[runeCount:])
					result.WriteString("\n")
				} else {
					word = ""
				}
			}
			lineLength = 0
			continue
		}

		switch {
		case lineLength == 0:
			result.WriteString(word)
			lineLength = wordLen
		case lineLength+1+wordLen <= width:
			result.WriteString(" ")
			result.WriteString(word)
			lineLength += 1 + wordLen
		default:
			result.WriteString("\n")
			result.WriteString(word)
			lineLength = wordLen
		}
	}

	return result.String()
}

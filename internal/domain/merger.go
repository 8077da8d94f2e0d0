package domain

import (
	"strings"

	m "github.com/mouse-blink/mend/internal/model"
)

// Merge produces the new file content for one resolved candidate. It is a
// pure function: no I/O, and content outside the matched window is never
// touched.
func Merge(current string, cand m.Candidate, before, after string) string {
	switch cand.Tier {
	case m.TierWholeFile:
		return after
	case m.TierAppend:
		return mergeAppend(current, cand.LineOffset, after)
	case m.TierExact:
		return mergeOccurrence(current, cand.LineOffset, before, after)
	case m.TierTrimmed:
		return mergeOccurrence(current, cand.LineOffset, strings.TrimSpace(before), after)
	default:
		return mergeSplice(current, cand.LineOffset, before, after)
	}
}

// mergeOccurrence replaces the substring occurrence starting on the
// candidate's line. Working on the raw string keeps any trailing content on
// the boundary line byte-for-byte intact.
func mergeOccurrence(current string, lineOffset int, needle, after string) string {
	if needle == "" {
		return current
	}

	lineStart := byteOffsetOfLine(splitLines(current), lineOffset)
	if lineStart > len(current) {
		lineStart = len(current)
	}

	idx := strings.Index(current[lineStart:], needle)
	if idx < 0 {
		// The occurrence moved since location; fall back to a line splice.
		return mergeSplice(current, lineOffset, needle, after)
	}

	pos := lineStart + idx

	return current[:pos] + after + current[pos+len(needle):]
}

// mergeSplice replaces lineCount(before) lines starting at lineOffset with
// the lines of after.
func mergeSplice(current string, lineOffset int, before, after string) string {
	lines := splitLines(current)

	if lineOffset < 0 {
		lineOffset = 0
	}

	if lineOffset > len(lines) {
		lineOffset = len(lines)
	}

	end := lineOffset + lineCount(before)
	if end > len(lines) {
		end = len(lines)
	}

	merged := make([]string, 0, len(lines))
	merged = append(merged, lines[:lineOffset]...)
	merged = append(merged, splitLines(after)...)
	merged = append(merged, lines[end:]...)

	return strings.Join(merged, "\n") + trailingNewline(current)
}

// trailingNewline preserves a terminal newline across a line-based rebuild.
func trailingNewline(current string) string {
	if strings.HasSuffix(current, "\n") {
		return "\n"
	}

	return ""
}

// mergeAppend inserts after the terminator line the locator picked, or
// concatenates with a blank separator when the insertion point is the end of
// the file.
func mergeAppend(current string, lineOffset int, after string) string {
	lines := splitLines(current)

	if lineOffset >= len(lines) {
		if current == "" {
			return after
		}

		return current + "\n\n" + after
	}

	if lineOffset < 0 {
		lineOffset = 0
	}

	merged := make([]string, 0, len(lines)+lineCount(after)+1)
	merged = append(merged, lines[:lineOffset]...)
	merged = append(merged, "")
	merged = append(merged, splitLines(after)...)
	merged = append(merged, lines[lineOffset:]...)

	return strings.Join(merged, "\n") + trailingNewline(current)
}

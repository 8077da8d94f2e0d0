// Package domain contains the core suggestion matching and merging logic.
package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldLine normalizes a single line for loose comparison: leading and
// trailing whitespace is trimmed, inner whitespace runs collapse to one
// space, letters are lower-cased and diacritics are stripped. Model output
// frequently re-states code with drifted indentation, casing or accented
// identifiers; folded comparison absorbs all three.
func FoldLine(line string) string {
	return strings.ToLower(collapseSpaces(strings.TrimSpace(stripDiacritics(line))))
}

// FoldText folds every line of text and rejoins them with newlines.
func FoldText(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = FoldLine(line)
	}

	return strings.Join(lines, "\n")
}

// stripDiacritics removes combining marks so "á" compares equal to "a".
func stripDiacritics(s string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(stripper, s)
	if err != nil {
		return s
	}

	return out
}

// collapseSpaces replaces runs of spaces and tabs with a single space.
func collapseSpaces(s string) string {
	var b strings.Builder

	inSpace := false

	for _, r := range s {
		if r == ' ' || r == '\t' {
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}

			continue
		}

		b.WriteRune(r)
		inSpace = false
	}

	return b.String()
}

// splitLines splits text into logical lines, dropping the empty trailing
// element produced by a terminal newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}

// lineCount returns the number of logical lines in text.
func lineCount(text string) int {
	return len(splitLines(text))
}

// foldLines folds each logical line of text.
func foldLines(text string) []string {
	lines := splitLines(text)
	folded := make([]string, len(lines))

	for i, line := range lines {
		folded[i] = FoldLine(line)
	}

	return folded
}

// lineOffsetOfByte returns the zero-based line index containing byte pos.
func lineOffsetOfByte(text string, pos int) int {
	if pos <= 0 {
		return 0
	}

	if pos > len(text) {
		pos = len(text)
	}

	return strings.Count(text[:pos], "\n")
}

// byteOffsetOfLine returns the byte offset where line idx starts in the
// content reconstructed from lines.
func byteOffsetOfLine(lines []string, idx int) int {
	offset := 0
	for i := 0; i < idx && i < len(lines); i++ {
		offset += len(lines[i]) + 1 // +1 for newline
	}

	return offset
}

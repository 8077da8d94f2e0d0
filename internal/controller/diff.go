package controller

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// RenderDiff renders a line-oriented diff between the proposed before and
// after snippets, using "-"/"+" prefixes so the output survives non-ANSI
// terminals and log files.
func RenderDiff(before, after string) string {
	dmp := diffmatchpatch.New()

	beforeRunes, afterRunes, lines := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(beforeRunes, afterRunes, false), lines)

	var b strings.Builder

	for _, diff := range diffs {
		if diff.Text == "" {
			continue
		}

		prefix := "  "

		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffEqual:
		}

		for _, line := range strings.Split(strings.TrimSuffix(diff.Text, "\n"), "\n") {
			b.WriteString(prefix)
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	return b.String()
}

// colorizeDiff styles RenderDiff output for terminal display. The "-"/"+"
// prefixes stay in place so the text reads the same with colors stripped.
func colorizeDiff(diff string) string {
	var b strings.Builder

	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "- "):
			b.WriteString(removedStyle.Render(line))
		case strings.HasPrefix(line, "+ "):
			b.WriteString(addedStyle.Render(line))
		default:
			b.WriteString(line)
		}

		b.WriteByte('\n')
	}

	return b.String()
}

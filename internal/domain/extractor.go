package domain

import (
	"fmt"
	"regexp"
	"strings"

	m "github.com/mouse-blink/mend/internal/model"
)

// Raw model output carries proposed changes in [CODE_CHANGE] blocks:
//
//	[CODE_CHANGE]
//	FILE: path/to/file
//	ACTION: replace
//	ORIGINAL:
//	```
//	old code
//	```
//	MODIFIED:
//	```
//	new code
//	```
//	EXPLANATION: why
//	[/CODE_CHANGE]
//
// Anything malformed is flagged invalid individually; one bad block never
// aborts its siblings. Responses without any structured block fall back to
// bare triple-fenced snippets, treated as anonymous after-texts in
// extraction order.

var (
	changeBlockPattern = regexp.MustCompile(`(?is)\[CODE_CHANGE\](.*?)\[/CODE_CHANGE\]`)
	filePattern        = regexp.MustCompile(`(?i)FILE:[ \t]*(.+)`)
	actionPattern      = regexp.MustCompile(`(?i)ACTION:[ \t]*(\w+)`)
	explanationPattern = regexp.MustCompile(`(?is)EXPLANATION:[ \t]*(.+?)(?:\[|\z)`)
	fencePattern       = regexp.MustCompile("(?s)```([^\\n`]*)\\n(.*?)```")
)

// FencedBlock is one anonymous code block extracted from unstructured output.
type FencedBlock struct {
	Language string
	Code     string
}

// ExtractChanges parses every [CODE_CHANGE] block from raw model output.
func ExtractChanges(response string) []m.CodeChange {
	blockMatches := changeBlockPattern.FindAllStringSubmatch(response, -1)
	changes := make([]m.CodeChange, 0, len(blockMatches))

	for _, match := range blockMatches {
		changes = append(changes, parseChangeBlock(match[1]))
	}

	return changes
}

// ExtractFencedBlocks pulls bare ```lang fenced blocks from output that has
// no structured change markers.
func ExtractFencedBlocks(response string) []FencedBlock {
	matches := fencePattern.FindAllStringSubmatch(response, -1)
	blocks := make([]FencedBlock, 0, len(matches))

	for _, match := range matches {
		code := strings.TrimSpace(match[2])
		if code == "" {
			continue
		}

		language := strings.TrimSpace(match[1])
		if language == "" {
			language = "plaintext"
		}

		blocks = append(blocks, FencedBlock{Language: language, Code: code})
	}

	return blocks
}

func parseChangeBlock(block string) m.CodeChange {
	change := m.CodeChange{
		Action: m.ActionReplace,
		Valid:  true,
	}

	if match := filePattern.FindStringSubmatch(block); match != nil {
		change.FilePath = m.Path(strings.TrimSpace(match[1]))
	}

	if match := actionPattern.FindStringSubmatch(block); match != nil {
		change.Action = m.ChangeAction(strings.ToLower(match[1]))
	}

	change.OriginalCode = extractLabeledCode(block, "ORIGINAL")

	change.NewCode = extractLabeledCode(block, "MODIFIED")
	if change.NewCode == "" {
		change.NewCode = extractLabeledCode(block, "NEW_CODE")
	}

	change.AnchorCode = extractLabeledCode(block, "ANCHOR")

	if match := explanationPattern.FindStringSubmatch(block); match != nil {
		change.Explanation = strings.TrimSpace(match[1])
	}

	validateChange(&change)

	return change
}

func validateChange(change *m.CodeChange) {
	switch change.Action {
	case m.ActionReplace:
		if change.OriginalCode == "" {
			change.Valid = false
			change.ValidationError = "missing ORIGINAL code for replace action"
		}

		if change.NewCode == "" {
			change.Valid = false
			change.ValidationError = "missing MODIFIED code for replace action"
		}
	case m.ActionInsertAfter, m.ActionInsertBefore:
		if change.AnchorCode == "" {
			change.Valid = false
			change.ValidationError = fmt.Sprintf("missing ANCHOR code for %s action", change.Action)
		}

		if change.NewCode == "" {
			change.Valid = false
			change.ValidationError = "missing NEW_CODE"
		}
	case m.ActionDelete:
		if change.OriginalCode == "" {
			change.Valid = false
			change.ValidationError = "missing ORIGINAL code for delete action"
		}
	default:
		change.Valid = false
		change.ValidationError = fmt.Sprintf("unsupported action: %s", change.Action)
	}
}

// extractLabeledCode pulls the fenced payload following "LABEL:". A block
// without fences is accepted up to the next upper-case label.
func extractLabeledCode(block, label string) string {
	fenced := regexp.MustCompile(`(?is)` + label + ":\\s*```[^\\n]*\\n(.*?)```")
	if match := fenced.FindStringSubmatch(block); match != nil {
		return strings.TrimSpace(match[1])
	}

	bare := regexp.MustCompile(`(?s)` + label + `:\s*\n([^\[]+?)(?:\n[A-Z_]+:|\z)`)
	if match := bare.FindStringSubmatch(block); match != nil {
		return strings.TrimSpace(match[1])
	}

	return ""
}

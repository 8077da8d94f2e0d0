package domain

import (
	"fmt"
	"strings"

	m "github.com/mouse-blink/mend/internal/model"
)

// ValidateChange checks whether a change can be applied to the current
// content without ambiguity. It is advisory: the locator's tier chain can
// still place a change this reports as not found, but then with weaker
// confidence the caller should surface to the user.
func ValidateChange(change m.CodeChange, current string) m.Validation {
	if !change.Valid {
		return m.Validation{Err: change.ValidationError}
	}

	switch change.Action {
	case m.ActionReplace, m.ActionDelete:
		return validateReplace(change, current)
	case m.ActionInsertAfter, m.ActionInsertBefore:
		return validateInsert(change, current)
	}

	return m.Validation{Err: fmt.Sprintf("unsupported action: %s", change.Action)}
}

func validateReplace(change m.CodeChange, current string) m.Validation {
	if change.OriginalCode == "" {
		return m.Validation{Err: "no original code given"}
	}

	if strings.Contains(current, change.OriginalCode) {
		count := strings.Count(current, change.OriginalCode)
		if count == 1 {
			return m.Validation{CanApply: true, MatchCount: 1, Preview: "exactly one match, safe to apply"}
		}

		return m.Validation{MatchCount: count, Err: fmt.Sprintf("ambiguous: %d matches", count)}
	}

	if strings.Contains(FoldText(current), FoldText(strings.TrimSpace(change.OriginalCode))) {
		return m.Validation{CanApply: true, MatchCount: 1, Preview: "normalized match, whitespace drift"}
	}

	result := m.Validation{Err: "original code not found in file"}

	// Point at a partial match to help diagnose a stale suggestion.
	head := change.OriginalCode
	if len(head) > 50 {
		head = head[:50]
	}

	if strings.Contains(current, head) {
		result.Err += " (but its beginning is present)"
	}

	return result
}

func validateInsert(change m.CodeChange, current string) m.Validation {
	if change.AnchorCode == "" {
		return m.Validation{Err: "no anchor code given"}
	}

	if !strings.Contains(current, change.AnchorCode) {
		return m.Validation{Err: "anchor code not found"}
	}

	count := strings.Count(current, change.AnchorCode)
	if count > 1 {
		return m.Validation{MatchCount: count, Err: fmt.Sprintf("ambiguous anchor: %d matches", count)}
	}

	return m.Validation{
		CanApply:   true,
		MatchCount: 1,
		Preview:    fmt.Sprintf("insert %s anchor", strings.ReplaceAll(string(change.Action), "_", " ")),
	}
}

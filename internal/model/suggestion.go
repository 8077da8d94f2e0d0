// Package model defines the data structures for suggestion matching and merging.
package model

// Path represents a file system path.
type Path string

// Tier identifies the matching stage that located a candidate. Tiers are
// totally ordered by confidence: a lower value means stronger evidence that
// the candidate points at the region the model meant.
type Tier int

const (
	// TierWholeFile replaces the entire file content.
	TierWholeFile Tier = iota + 1
	// TierExact is a verbatim substring match of the proposed before-text.
	TierExact
	// TierTrimmed is an exact match after trimming the before-text.
	TierTrimmed
	// TierWindow matches the first N normalized lines of the before-text.
	TierWindow
	// TierWindow3 matches the first three normalized lines.
	TierWindow3
	// TierTwoLine matches the first two normalized lines.
	TierTwoLine
	// TierLiteral matches on a distinctive quoted or numeric literal.
	TierLiteral
	// TierFirstLine matches the normalized first line exactly.
	TierFirstLine
	// TierFirstLinePrefix matches on a 60% prefix of the first line.
	TierFirstLinePrefix
	// TierAppend is the guaranteed fallback: insert at end of file.
	TierAppend
	// TierManual marks a position chosen by the user, not by matching.
	TierManual
)

// String returns the tier name used in logs and UI labels.
func (t Tier) String() string {
	switch t {
	case TierWholeFile:
		return "whole-file"
	case TierExact:
		return "exact"
	case TierTrimmed:
		return "trimmed"
	case TierWindow:
		return "window"
	case TierWindow3:
		return "window-3"
	case TierTwoLine:
		return "two-line"
	case TierLiteral:
		return "literal"
	case TierFirstLine:
		return "first-line"
	case TierFirstLinePrefix:
		return "first-line-prefix"
	case TierAppend:
		return "append"
	case TierManual:
		return "manual"
	}

	return "unknown"
}

// MatchMode selects how many candidates a location search reports.
type MatchMode int

const (
	// FirstMatch stops at the first candidate of the strongest tier.
	FirstMatch MatchMode = iota
	// EnumerateAll reports every candidate found by the strongest tier
	// that yields at least one, for interactive disambiguation.
	EnumerateAll
)

// Candidate is a located position plus the tier that produced it.
type Candidate struct {
	LineOffset int
	Tier       Tier
}

// SuggestionState tracks where a suggestion is in its lifecycle.
type SuggestionState string

const (
	// StatePending is the initial state after creation.
	StatePending SuggestionState = "pending"
	// StateNavigating means the user is cycling through candidates.
	StateNavigating SuggestionState = "navigating"
	// StateManualOverride means the user placed the change by hand.
	StateManualOverride SuggestionState = "manual"
	// StateApplied means the change was merged into the file.
	StateApplied SuggestionState = "applied"
	// StateSkipped means the user dismissed the change.
	StateSkipped SuggestionState = "skipped"
)

// Suggestion is a pending proposal to replace one text region of a file with
// model-provided text, together with its candidate locations.
//
// BaseText is the file content snapshot taken when the suggestion was
// created; it is refreshed only by apply or a manual override. Candidates is
// never empty: when no match exists it holds a single TierAppend entry.
type Suggestion struct {
	ID             string
	FilePath       Path
	BaseText       string
	ProposedBefore string
	ProposedAfter  string
	Candidates     []Candidate
	SelectedIndex  int
	State          SuggestionState
	Applied        bool
}

// Selected returns the currently selected candidate.
func (s Suggestion) Selected() Candidate {
	if s.SelectedIndex < 0 || s.SelectedIndex >= len(s.Candidates) {
		return Candidate{Tier: TierAppend}
	}

	return s.Candidates[s.SelectedIndex]
}

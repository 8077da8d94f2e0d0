package model

// ChangeAction describes what a proposed change does to the target file.
type ChangeAction string

const (
	// ActionReplace swaps the original code for the new code.
	ActionReplace ChangeAction = "replace"
	// ActionInsertAfter inserts the new code after the anchor code.
	ActionInsertAfter ChangeAction = "insert_after"
	// ActionInsertBefore inserts the new code before the anchor code.
	ActionInsertBefore ChangeAction = "insert_before"
	// ActionDelete removes the original code.
	ActionDelete ChangeAction = "delete"
)

// CodeChange is one proposed change extracted from raw model output.
// A change that fails structural validation keeps its parsed fields but is
// flagged invalid so siblings in the same batch still go through.
type CodeChange struct {
	FilePath        Path
	Action          ChangeAction
	OriginalCode    string
	NewCode         string
	AnchorCode      string
	Explanation     string
	Valid           bool
	ValidationError string
}

// Validation reports whether a change can be applied to the current content
// and how ambiguous the application would be.
type Validation struct {
	CanApply   bool
	MatchCount int
	Err        string
	Preview    string
}

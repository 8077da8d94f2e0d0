package model

import "time"

// Snapshot is one entry in a file's edit history.
type Snapshot struct {
	Content string
	Ordinal int
}

// ChangeRecord is the audit entry persisted after a change is applied.
type ChangeRecord struct {
	SuggestionID string    `yaml:"suggestion_id"`
	FilePath     Path      `yaml:"file_path"`
	Action       string    `yaml:"action"`
	Tier         string    `yaml:"tier"`
	LineOffset   int       `yaml:"line_offset"`
	Explanation  string    `yaml:"explanation,omitempty"`
	AppliedAt    time.Time `yaml:"applied_at"`
}

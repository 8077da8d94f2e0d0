package adapter

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	m "github.com/mouse-blink/mend/internal/model"
)

// ChangelogStore persists the audit trail of applied changes.
type ChangelogStore interface {
	AppendRecords(path m.Path, records []m.ChangeRecord) error
	LoadRecords(path m.Path) ([]m.ChangeRecord, error)
}

type changelogStore struct{}

// NewChangelogStore creates a YAML-backed ChangelogStore.
func NewChangelogStore() ChangelogStore {
	return &changelogStore{}
}

// AppendRecords adds records to the changelog at path, creating it when
// missing.
func (c *changelogStore) AppendRecords(path m.Path, records []m.ChangeRecord) error {
	if len(records) == 0 {
		return nil
	}

	existing, err := c.LoadRecords(path)
	if err != nil {
		return err
	}

	existing = append(existing, records...)

	data, err := yaml.Marshal(existing)
	if err != nil {
		return fmt.Errorf("failed to marshal changelog: %w", err)
	}

	if err := os.WriteFile(string(path), data, fileWritePerm); err != nil {
		return fmt.Errorf("failed to write changelog %s: %w", path, err)
	}

	return nil
}

// LoadRecords reads the changelog at path. A missing file is an empty log.
func (c *changelogStore) LoadRecords(path m.Path) ([]m.ChangeRecord, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read changelog %s: %w", path, err)
	}

	var records []m.ChangeRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse changelog %s: %w", path, err)
	}

	return records, nil
}

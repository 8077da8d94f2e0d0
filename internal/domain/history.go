package domain

import (
	"errors"
	"log/slog"

	m "github.com/mouse-blink/mend/internal/model"
	"github.com/mouse-blink/mend/pkg"
)

// DefaultHistoryLimit caps how many content snapshots a history keeps before
// evicting the oldest.
const DefaultHistoryLimit = 100

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// History is a bounded, branch-truncating undo/redo stack over full file
// contents. Pushing while the cursor sits before the last snapshot discards
// the redo branch.
type History struct {
	snapshots pkg.CappedList[m.Snapshot]
	cursor    int
	ordinal   int
}

// NewHistory creates a History keeping at most limit snapshots. A
// non-positive limit falls back to DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	return &History{
		snapshots: pkg.NewCappedList[m.Snapshot](limit),
		cursor:    -1,
	}
}

// Push records content as the newest snapshot. Pushing content equal to the
// snapshot at the cursor is a no-op so repeated saves of an unchanged file
// do not pollute the stack.
func (h *History) Push(content string) {
	if h.cursor >= 0 {
		if current, err := h.snapshots.At(h.cursor); err == nil && current.Content == content {
			return
		}
	}

	if h.cursor < h.snapshots.Len()-1 {
		h.snapshots.TruncateFrom(h.cursor + 1)
	}

	h.ordinal++
	evicted := h.snapshots.Append(m.Snapshot{Content: content, Ordinal: h.ordinal})
	h.cursor = h.snapshots.Len() - 1

	if evicted > 0 {
		slog.Debug("evicted oldest history snapshots", "evicted", evicted)
	}
}

// Undo steps the cursor back and returns that snapshot's content.
func (h *History) Undo() (string, error) {
	if !h.CanUndo() {
		return "", ErrNothingToUndo
	}

	h.cursor--

	snap, err := h.snapshots.At(h.cursor)
	if err != nil {
		return "", err
	}

	return snap.Content, nil
}

// Redo steps the cursor forward and returns that snapshot's content.
func (h *History) Redo() (string, error) {
	if !h.CanRedo() {
		return "", ErrNothingToRedo
	}

	h.cursor++

	snap, err := h.snapshots.At(h.cursor)
	if err != nil {
		return "", err
	}

	return snap.Content, nil
}

// CanUndo reports whether a snapshot exists before the cursor.
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo reports whether a snapshot exists after the cursor.
func (h *History) CanRedo() bool {
	return h.cursor < h.snapshots.Len()-1
}

// Len returns the number of retained snapshots.
func (h *History) Len() int {
	return h.snapshots.Len()
}

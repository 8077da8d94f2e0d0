package domain

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mouse-blink/mend/internal/adapter"
	m "github.com/mouse-blink/mend/internal/model"
)

// ErrNoSuggestion is returned by session operations when the queue is empty.
var ErrNoSuggestion = errors.New("no pending suggestion")

// Session owns the queue of pending suggestions for one open file and the
// state transitions between their creation and their application or
// dismissal. One session exists per open file; all operations run on the
// caller's goroutine.
type Session interface {
	// Add queues a suggestion.
	Add(sug m.Suggestion)

	// Len reports the number of pending suggestions.
	Len() int

	// Current returns the suggestion at the head of the queue.
	Current() (m.Suggestion, bool)

	// Next cyclically advances the current suggestion's selected candidate.
	Next()

	// Prev cyclically retreats the current suggestion's selected candidate.
	Prev()

	// SetManualPosition replaces the current suggestion's candidates with a
	// single user-chosen position. This is the only operation besides Apply
	// that refreshes the suggestion's base text.
	SetManualPosition(lineOffset int, current string)

	// Resync re-derives the displayed candidate when current has diverged
	// from the suggestion's base text. Idempotent when nothing diverged.
	Resync(current string)

	// Apply merges the selected candidate into current, forwards the result
	// to the file store and records it in history. On a store error the
	// suggestion stays queued so the user can retry.
	Apply(current string) (string, error)

	// Skip dismisses the current suggestion without touching content.
	Skip()

	// History exposes the undo/redo stack backing this session.
	History() *History
}

type session struct {
	file    m.Path
	locator Locator
	history *History
	store   adapter.FileStore
	queue   []m.Suggestion
}

// NewSession creates a Session for one file.
func NewSession(file m.Path, locator Locator, history *History, store adapter.FileStore) Session {
	return &session{
		file:    file,
		locator: locator,
		history: history,
		store:   store,
	}
}

// NewSuggestion locates candidates for a (before, after) pair against
// current and builds a pending suggestion. The second return is false when
// the duplicate guard decided the change is already present.
func NewSuggestion(file m.Path, current, before, after string, locator Locator) (m.Suggestion, bool) {
	candidates := locator.Locate(current, before, after, m.EnumerateAll)
	if len(candidates) == 0 {
		return m.Suggestion{}, false
	}

	return m.Suggestion{
		ID:             uuid.NewString(),
		FilePath:       file,
		BaseText:       current,
		ProposedBefore: before,
		ProposedAfter:  after,
		Candidates:     candidates,
		SelectedIndex:  0,
		State:          m.StatePending,
	}, true
}

// Recompute returns a copy of sug with its displayed candidate re-derived
// against current. The base text is deliberately left alone (only Apply and
// a manual override refresh it), so recomputing against unchanged content is
// a no-op.
func Recompute(locator Locator, sug m.Suggestion, current string) m.Suggestion {
	if current == sug.BaseText || len(sug.Candidates) == 0 {
		return sug
	}

	cand, ok := locator.Relocate(current, sug.ProposedBefore)
	if !ok {
		return sug
	}

	candidates := make([]m.Candidate, len(sug.Candidates))
	copy(candidates, sug.Candidates)
	candidates[sug.SelectedIndex].LineOffset = cand.LineOffset

	sug.Candidates = candidates

	return sug
}

func (s *session) Add(sug m.Suggestion) {
	s.queue = append(s.queue, sug)
}

func (s *session) Len() int {
	return len(s.queue)
}

func (s *session) Current() (m.Suggestion, bool) {
	if len(s.queue) == 0 {
		return m.Suggestion{}, false
	}

	return s.queue[0], true
}

func (s *session) Next() {
	s.cycle(1)
}

func (s *session) Prev() {
	s.cycle(-1)
}

func (s *session) cycle(step int) {
	if len(s.queue) == 0 {
		return
	}

	sug := &s.queue[0]
	count := len(sug.Candidates)
	if count == 0 {
		return
	}

	sug.SelectedIndex = ((sug.SelectedIndex+step)%count + count) % count
	sug.State = m.StateNavigating
}

func (s *session) SetManualPosition(lineOffset int, current string) {
	if len(s.queue) == 0 {
		return
	}

	sug := &s.queue[0]
	sug.Candidates = []m.Candidate{{LineOffset: lineOffset, Tier: m.TierManual}}
	sug.SelectedIndex = 0
	sug.BaseText = current
	sug.State = m.StateManualOverride
}

func (s *session) Resync(current string) {
	if len(s.queue) == 0 {
		return
	}

	s.queue[0] = Recompute(s.locator, s.queue[0], current)
}

func (s *session) Apply(current string) (string, error) {
	if len(s.queue) == 0 {
		return "", ErrNoSuggestion
	}

	sug := &s.queue[0]
	cand := sug.Selected()
	merged := Merge(current, cand, sug.ProposedBefore, sug.ProposedAfter)

	if err := s.store.Save(s.file, merged); err != nil {
		// The suggestion stays queued; the caller may fix the store and
		// apply again.
		return "", fmt.Errorf("failed to save %s: %w", s.file, err)
	}

	s.history.Push(merged)

	sug.State = m.StateApplied
	sug.Applied = true

	slog.Debug("applied suggestion", "id", sug.ID, "file", s.file, "tier", cand.Tier.String(), "line", cand.LineOffset)

	s.queue = s.queue[1:]

	return merged, nil
}

func (s *session) Skip() {
	if len(s.queue) == 0 {
		return
	}

	s.queue[0].State = m.StateSkipped
	s.queue = s.queue[1:]
}

func (s *session) History() *History {
	return s.history
}

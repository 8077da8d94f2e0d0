package domain

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mouse-blink/mend/internal/adapter"
	m "github.com/mouse-blink/mend/internal/model"
)

// PreviewItem pairs an extracted change with its validation verdict and the
// candidate positions the locator found for it.
type PreviewItem struct {
	Change     m.CodeChange
	Validation m.Validation
	Candidates []m.Candidate
	Content    string
}

// ApplyArgs configures a non-interactive apply run.
type ApplyArgs struct {
	// Response is the raw model output to extract changes from.
	Response string
	// TargetFile, when set, overrides the FILE: path of every change and is
	// the fallback target for bare fenced blocks.
	TargetFile m.Path
	// Journal, when set, receives an audit record per applied change.
	Journal m.Path
	// Threads bounds how many files are processed concurrently.
	Threads int
}

// Workflow wires the extractor, locator, merger and stores into the
// operations the CLI exposes.
type Workflow interface {
	// Preview extracts and validates changes without touching any file.
	Preview(ctx context.Context, response string, target m.Path) ([]PreviewItem, error)

	// Apply extracts changes and applies each one at its strongest
	// candidate, saving after every successful merge.
	Apply(ctx context.Context, args ApplyArgs) ([]m.ChangeRecord, error)

	// BuildSession extracts the changes aimed at one file into an
	// interactive review session. It returns the session and the file's
	// current content.
	BuildSession(ctx context.Context, response string, file m.Path) (Session, string, error)
}

type workflow struct {
	store        adapter.FileStore
	changelog    adapter.ChangelogStore
	locator      Locator
	historyLimit int
}

// NewWorkflow creates a Workflow with the provided dependencies.
func NewWorkflow(store adapter.FileStore, changelog adapter.ChangelogStore, locator Locator, historyLimit int) Workflow {
	return &workflow{
		store:        store,
		changelog:    changelog,
		locator:      locator,
		historyLimit: historyLimit,
	}
}

// extractAll parses structured change blocks, falling back to bare fenced
// snippets targeted at the override file when no block is present. A change
// without a FILE path is invalid unless the override supplies one.
func extractAll(response string, target m.Path) []m.CodeChange {
	changes := ExtractChanges(response)

	for i := range changes {
		if target != "" {
			changes[i].FilePath = target
			continue
		}

		if changes[i].FilePath == "" && changes[i].Valid {
			changes[i].Valid = false
			changes[i].ValidationError = "missing FILE path"
		}
	}

	if len(changes) > 0 || target == "" {
		return changes
	}

	for _, block := range ExtractFencedBlocks(response) {
		changes = append(changes, m.CodeChange{
			FilePath: target,
			Action:   m.ActionReplace,
			NewCode:  block.Code,
			Valid:    true,
		})
	}

	return changes
}

// changePair maps a change to the (before, after) snippet pair the locator
// and merger understand. Anchored inserts re-state the anchor so a plain
// replace produces the insertion.
func changePair(change m.CodeChange) (before, after string) {
	switch change.Action {
	case m.ActionInsertAfter:
		return change.AnchorCode, change.AnchorCode + "\n" + change.NewCode
	case m.ActionInsertBefore:
		return change.AnchorCode, change.NewCode + "\n" + change.AnchorCode
	case m.ActionDelete:
		return change.OriginalCode, ""
	default:
		return change.OriginalCode, change.NewCode
	}
}

func (w *workflow) Preview(ctx context.Context, response string, target m.Path) ([]PreviewItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	changes := extractAll(response, target)
	items := make([]PreviewItem, 0, len(changes))

	for _, change := range changes {
		item := PreviewItem{Change: change}

		if !change.Valid {
			item.Validation = m.Validation{Err: change.ValidationError}
			items = append(items, item)

			continue
		}

		content, err := w.store.Load(change.FilePath)
		if err != nil {
			item.Validation = m.Validation{Err: err.Error()}
			items = append(items, item)

			continue
		}

		item.Content = content
		item.Validation = ValidateChange(change, content)

		before, after := changePair(change)
		item.Candidates = w.locator.Locate(content, before, after, m.EnumerateAll)

		items = append(items, item)
	}

	return items, nil
}

func (w *workflow) Apply(ctx context.Context, args ApplyArgs) ([]m.ChangeRecord, error) {
	changes := extractAll(args.Response, args.TargetFile)
	if len(changes) == 0 {
		return nil, fmt.Errorf("no code changes found in response")
	}

	// Group by file, preserving extraction order within each file.
	order := make([]m.Path, 0, len(changes))
	byFile := make(map[m.Path][]m.CodeChange)

	for _, change := range changes {
		if _, seen := byFile[change.FilePath]; !seen {
			order = append(order, change.FilePath)
		}

		byFile[change.FilePath] = append(byFile[change.FilePath], change)
	}

	group, ctx := errgroup.WithContext(ctx)

	threads := args.Threads
	if threads <= 0 {
		threads = 1
	}

	group.SetLimit(threads)

	var mu sync.Mutex

	var records []m.ChangeRecord

	for _, file := range order {
		group.Go(func() error {
			recs, err := w.applyFile(ctx, file, byFile[file])

			mu.Lock()
			records = append(records, recs...)
			mu.Unlock()

			return err
		})
	}

	if err := group.Wait(); err != nil {
		return records, err
	}

	if args.Journal != "" {
		if err := w.changelog.AppendRecords(args.Journal, records); err != nil {
			return records, fmt.Errorf("failed to journal applied changes: %w", err)
		}
	}

	return records, nil
}

// applyFile applies the file's changes in extraction order, saving once per
// successful merge. Invalid and already-applied changes are skipped
// individually; they never abort their siblings.
func (w *workflow) applyFile(ctx context.Context, file m.Path, changes []m.CodeChange) ([]m.ChangeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	applicable := make([]m.CodeChange, 0, len(changes))

	for _, change := range changes {
		if !change.Valid {
			slog.Warn("discarding malformed change", "file", file, "error", change.ValidationError)
			continue
		}

		applicable = append(applicable, change)
	}

	if len(applicable) == 0 {
		return nil, nil
	}

	content, err := w.store.Load(file)
	if err != nil {
		return nil, err
	}

	var records []m.ChangeRecord

	for _, change := range applicable {
		before, after := changePair(change)

		cands := w.locator.Locate(content, before, after, m.FirstMatch)
		if len(cands) == 0 {
			slog.Info("change already applied", "file", file)
			continue
		}

		merged := Merge(content, cands[0], before, after)

		if err := w.store.Save(file, merged); err != nil {
			return records, fmt.Errorf("failed to save %s: %w", file, err)
		}

		content = merged

		records = append(records, m.ChangeRecord{
			SuggestionID: uuid.NewString(),
			FilePath:     file,
			Action:       string(change.Action),
			Tier:         cands[0].Tier.String(),
			LineOffset:   cands[0].LineOffset,
			Explanation:  change.Explanation,
			AppliedAt:    time.Now().UTC(),
		})
	}

	return records, nil
}

func (w *workflow) BuildSession(ctx context.Context, response string, file m.Path) (Session, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	content, err := w.store.Load(file)
	if err != nil {
		return nil, "", err
	}

	history := NewHistory(w.historyLimit)
	history.Push(content)

	sess := NewSession(file, w.locator, history, w.store)

	for _, change := range extractAll(response, file) {
		if !change.Valid {
			slog.Warn("discarding malformed change", "file", file, "error", change.ValidationError)
			continue
		}

		before, after := changePair(change)

		sug, ok := NewSuggestion(file, content, before, after, w.locator)
		if !ok {
			slog.Info("change already applied", "file", file)
			continue
		}

		sess.Add(sug)
	}

	return sess, content, nil
}

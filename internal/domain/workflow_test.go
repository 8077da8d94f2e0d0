package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/mouse-blink/mend/internal/model"
)

type fakeChangelog struct {
	records map[m.Path][]m.ChangeRecord
}

func newFakeChangelog() *fakeChangelog {
	return &fakeChangelog{records: map[m.Path][]m.ChangeRecord{}}
}

func (f *fakeChangelog) AppendRecords(path m.Path, records []m.ChangeRecord) error {
	f.records[path] = append(f.records[path], records...)
	return nil
}

func (f *fakeChangelog) LoadRecords(path m.Path) ([]m.ChangeRecord, error) {
	return f.records[path], nil
}

func newTestWorkflow(files map[m.Path]string) (Workflow, *fakeFileStore, *fakeChangelog) {
	store := newFakeFileStore()
	for path, content := range files {
		store.files[path] = content
	}

	changelog := newFakeChangelog()

	return NewWorkflow(store, changelog, NewLocator(""), 10), store, changelog
}

func replaceResponse(file, original, modified string) string {
	return changeBlock(
		"FILE: "+file,
		"ACTION: replace",
		"ORIGINAL:",
		fence,
		original,
		fence,
		"MODIFIED:",
		fence,
		modified,
		fence,
	)
}

func TestWorkflowApply(t *testing.T) {
	ctx := context.Background()

	t.Run("applies a replace and updates the file", func(t *testing.T) {
		wf, store, _ := newTestWorkflow(map[m.Path]string{
			"main.src": "header\nx := 1\nfooter\n",
		})

		records, err := wf.Apply(ctx, ApplyArgs{Response: replaceResponse("main.src", "x := 1", "x := 2")})
		require.NoError(t, err)
		require.Len(t, records, 1)

		assert.Equal(t, m.Path("main.src"), records[0].FilePath)
		assert.Equal(t, "replace", records[0].Action)
		assert.Equal(t, "exact", records[0].Tier)
		assert.Equal(t, 1, records[0].LineOffset)
		assert.Equal(t, "header\nx := 2\nfooter\n", store.files["main.src"])
	})

	t.Run("later changes see earlier ones in the same file", func(t *testing.T) {
		wf, store, _ := newTestWorkflow(map[m.Path]string{
			"main.src": "a := 1\nb := 2\n",
		})

		response := replaceResponse("main.src", "a := 1", "a := 10") +
			replaceResponse("main.src", "b := 2", "b := 20")

		records, err := wf.Apply(ctx, ApplyArgs{Response: response})
		require.NoError(t, err)
		assert.Len(t, records, 2)
		assert.Equal(t, "a := 10\nb := 20\n", store.files["main.src"])
	})

	t.Run("malformed changes are skipped, valid siblings applied", func(t *testing.T) {
		wf, store, _ := newTestWorkflow(map[m.Path]string{
			"main.src": "header\nx := 1\nfooter\n",
		})

		malformed := changeBlock(
			"FILE: main.src",
			"ACTION: replace",
			"ORIGINAL:",
			fence,
			"x := 1",
			fence,
		)

		records, err := wf.Apply(ctx, ApplyArgs{Response: malformed + replaceResponse("main.src", "x := 1", "x := 2")})
		require.NoError(t, err)
		assert.Len(t, records, 1)
		assert.Equal(t, "header\nx := 2\nfooter\n", store.files["main.src"])
	})

	t.Run("change without a file path is discarded, siblings applied", func(t *testing.T) {
		wf, store, _ := newTestWorkflow(map[m.Path]string{
			"main.src": "header\nx := 1\nfooter\n",
		})

		pathless := changeBlock(
			"ACTION: replace",
			"ORIGINAL:",
			fence,
			"header",
			fence,
			"MODIFIED:",
			fence,
			"HEADER",
			fence,
		)

		records, err := wf.Apply(ctx, ApplyArgs{Response: pathless + replaceResponse("main.src", "x := 1", "x := 2")})
		require.NoError(t, err)
		assert.Len(t, records, 1)
		assert.Equal(t, "header\nx := 2\nfooter\n", store.files["main.src"])
	})

	t.Run("target file rescues a change without a file path", func(t *testing.T) {
		wf, store, _ := newTestWorkflow(map[m.Path]string{
			"main.src": "header\nx := 1\nfooter\n",
		})

		pathless := changeBlock(
			"ACTION: replace",
			"ORIGINAL:",
			fence,
			"x := 1",
			fence,
			"MODIFIED:",
			fence,
			"x := 2",
			fence,
		)

		records, err := wf.Apply(ctx, ApplyArgs{Response: pathless, TargetFile: "main.src"})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "header\nx := 2\nfooter\n", store.files["main.src"])
	})

	t.Run("already-applied changes are skipped without error", func(t *testing.T) {
		wf, store, _ := newTestWorkflow(map[m.Path]string{
			"main.src": "x := 2\n",
		})

		records, err := wf.Apply(ctx, ApplyArgs{Response: replaceResponse("main.src", "x := 1", "x := 2")})
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Equal(t, "x := 2\n", store.files["main.src"])
	})

	t.Run("target file overrides the stated path", func(t *testing.T) {
		wf, store, _ := newTestWorkflow(map[m.Path]string{
			"actual.src": "header\nx := 1\nfooter\n",
		})

		records, err := wf.Apply(ctx, ApplyArgs{
			Response:   replaceResponse("stated.src", "x := 1", "x := 2"),
			TargetFile: "actual.src",
		})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "header\nx := 2\nfooter\n", store.files["actual.src"])
	})

	t.Run("journal receives one record per applied change", func(t *testing.T) {
		wf, _, changelog := newTestWorkflow(map[m.Path]string{
			"main.src": "header\nx := 1\nfooter\n",
		})

		_, err := wf.Apply(ctx, ApplyArgs{
			Response: replaceResponse("main.src", "x := 1", "x := 2"),
			Journal:  "changes.yaml",
		})
		require.NoError(t, err)

		logged, err := changelog.LoadRecords("changes.yaml")
		require.NoError(t, err)
		require.Len(t, logged, 1)
		assert.Equal(t, "replace", logged[0].Action)
		assert.NotEmpty(t, logged[0].SuggestionID)
		assert.False(t, logged[0].AppliedAt.IsZero())
	})

	t.Run("insert actions restate their anchor", func(t *testing.T) {
		wf, store, _ := newTestWorkflow(map[m.Path]string{
			"main.src": "header\nanchor line\nfooter\n",
		})

		response := changeBlock(
			"FILE: main.src",
			"ACTION: insert_after",
			"ANCHOR:",
			fence,
			"anchor line",
			fence,
			"NEW_CODE:",
			fence,
			"inserted line",
			fence,
		)

		records, err := wf.Apply(ctx, ApplyArgs{Response: response})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "header\nanchor line\ninserted line\nfooter\n", store.files["main.src"])
	})

	t.Run("bare fenced blocks apply against the target file", func(t *testing.T) {
		wf, store, _ := newTestWorkflow(map[m.Path]string{
			"main.src": "old content\n",
		})

		response := "Here you go:\n\n" + fence + "\nold content plus this\n" + fence + "\n"

		records, err := wf.Apply(ctx, ApplyArgs{Response: response, TargetFile: "main.src"})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Contains(t, store.files["main.src"], "old content plus this")
	})

	t.Run("response without changes is an error", func(t *testing.T) {
		wf, _, _ := newTestWorkflow(nil)

		_, err := wf.Apply(ctx, ApplyArgs{Response: "no changes here"})
		assert.Error(t, err)
	})
}

func TestWorkflowPreview(t *testing.T) {
	ctx := context.Background()

	t.Run("reports validation and candidates without writing", func(t *testing.T) {
		wf, store, _ := newTestWorkflow(map[m.Path]string{
			"main.src": "header\nx := 1\nfooter\n",
		})

		items, err := wf.Preview(ctx, replaceResponse("main.src", "x := 1", "x := 2"), "")
		require.NoError(t, err)
		require.Len(t, items, 1)

		assert.True(t, items[0].Validation.CanApply)
		require.Len(t, items[0].Candidates, 1)
		assert.Equal(t, m.TierExact, items[0].Candidates[0].Tier)
		assert.Equal(t, "header\nx := 1\nfooter\n", store.files["main.src"])
		assert.Equal(t, 0, store.saves)
	})

	t.Run("change without a file path surfaces as a validation error", func(t *testing.T) {
		wf, _, _ := newTestWorkflow(nil)

		pathless := changeBlock(
			"ACTION: replace",
			"ORIGINAL:",
			fence,
			"x := 1",
			fence,
			"MODIFIED:",
			fence,
			"x := 2",
			fence,
		)

		items, err := wf.Preview(ctx, pathless, "")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Contains(t, items[0].Validation.Err, "missing FILE path")
	})

	t.Run("unreadable file surfaces as a validation error", func(t *testing.T) {
		wf, _, _ := newTestWorkflow(nil)

		items, err := wf.Preview(ctx, replaceResponse("ghost.src", "x", "y"), "")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.NotEmpty(t, items[0].Validation.Err)
	})
}

func TestWorkflowBuildSession(t *testing.T) {
	ctx := context.Background()

	t.Run("queues one suggestion per applicable change", func(t *testing.T) {
		wf, _, _ := newTestWorkflow(map[m.Path]string{
			"main.src": "a := 1\nb := 2\n",
		})

		response := replaceResponse("main.src", "a := 1", "a := 10") +
			replaceResponse("main.src", "b := 2", "b := 20")

		sess, content, err := wf.BuildSession(ctx, response, "main.src")
		require.NoError(t, err)
		assert.Equal(t, "a := 1\nb := 2\n", content)
		assert.Equal(t, 2, sess.Len())
	})

	t.Run("already-applied changes never enter the queue", func(t *testing.T) {
		wf, _, _ := newTestWorkflow(map[m.Path]string{
			"main.src": "a := 10\n",
		})

		sess, _, err := wf.BuildSession(ctx, replaceResponse("main.src", "a := 1", "a := 10"), "main.src")
		require.NoError(t, err)
		assert.Equal(t, 0, sess.Len())
	})

	t.Run("session history starts from the loaded content", func(t *testing.T) {
		wf, _, _ := newTestWorkflow(map[m.Path]string{
			"main.src": "start\na := 1\nend\n",
		})

		sess, content, err := wf.BuildSession(ctx, replaceResponse("main.src", "a := 1", "a := 10"), "main.src")
		require.NoError(t, err)

		merged, err := sess.Apply(content)
		require.NoError(t, err)
		require.Equal(t, "start\na := 10\nend\n", merged)

		undone, err := sess.History().Undo()
		require.NoError(t, err)
		assert.Equal(t, content, undone)
	})
}

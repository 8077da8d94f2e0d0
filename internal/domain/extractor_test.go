package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/mouse-blink/mend/internal/model"
)

const fence = "```"

func changeBlock(lines ...string) string {
	return "[CODE_CHANGE]\n" + strings.Join(lines, "\n") + "\n[/CODE_CHANGE]\n"
}

func TestExtractChanges(t *testing.T) {
	t.Run("parses a complete replace block", func(t *testing.T) {
		response := "Here is the fix:\n\n" + changeBlock(
			"FILE: src/main.calc",
			"ACTION: replace",
			"ORIGINAL:",
			fence,
			"x := 1",
			fence,
			"MODIFIED:",
			fence,
			"x := 2",
			fence,
			"EXPLANATION: off by one",
		)

		changes := ExtractChanges(response)
		require.Len(t, changes, 1)

		change := changes[0]
		assert.True(t, change.Valid)
		assert.Equal(t, m.Path("src/main.calc"), change.FilePath)
		assert.Equal(t, m.ActionReplace, change.Action)
		assert.Equal(t, "x := 1", change.OriginalCode)
		assert.Equal(t, "x := 2", change.NewCode)
		assert.Equal(t, "off by one", change.Explanation)
	})

	t.Run("parses insert and delete actions", func(t *testing.T) {
		response := changeBlock(
			"FILE: a.src",
			"ACTION: insert_after",
			"ANCHOR:",
			fence,
			"anchor line",
			fence,
			"NEW_CODE:",
			fence,
			"inserted line",
			fence,
		) + changeBlock(
			"FILE: a.src",
			"ACTION: delete",
			"ORIGINAL:",
			fence,
			"doomed line",
			fence,
		)

		changes := ExtractChanges(response)
		require.Len(t, changes, 2)

		assert.True(t, changes[0].Valid)
		assert.Equal(t, m.ActionInsertAfter, changes[0].Action)
		assert.Equal(t, "anchor line", changes[0].AnchorCode)
		assert.Equal(t, "inserted line", changes[0].NewCode)

		assert.True(t, changes[1].Valid)
		assert.Equal(t, m.ActionDelete, changes[1].Action)
		assert.Equal(t, "doomed line", changes[1].OriginalCode)
	})

	t.Run("a malformed block is flagged without discarding its siblings", func(t *testing.T) {
		response := changeBlock(
			"FILE: good.src",
			"ACTION: replace",
			"ORIGINAL:",
			fence,
			"old",
			fence,
			"MODIFIED:",
			fence,
			"new",
			fence,
		) + changeBlock(
			"FILE: bad.src",
			"ACTION: replace",
			"ORIGINAL:",
			fence,
			"old only, no modified section",
			fence,
		)

		changes := ExtractChanges(response)
		require.Len(t, changes, 2)

		assert.True(t, changes[0].Valid)
		assert.False(t, changes[1].Valid)
		assert.Contains(t, changes[1].ValidationError, "MODIFIED")
	})

	t.Run("unknown action is invalid", func(t *testing.T) {
		response := changeBlock(
			"FILE: a.src",
			"ACTION: transmogrify",
			"ORIGINAL:",
			fence,
			"old",
			fence,
		)

		changes := ExtractChanges(response)
		require.Len(t, changes, 1)
		assert.False(t, changes[0].Valid)
		assert.Contains(t, changes[0].ValidationError, "unsupported action")
	})

	t.Run("missing file path is left empty", func(t *testing.T) {
		response := changeBlock(
			"ACTION: replace",
			"ORIGINAL:",
			fence,
			"old",
			fence,
			"MODIFIED:",
			fence,
			"new",
			fence,
		)

		changes := ExtractChanges(response)
		require.Len(t, changes, 1)
		assert.Equal(t, m.Path(""), changes[0].FilePath)
	})

	t.Run("prose without blocks yields nothing", func(t *testing.T) {
		assert.Empty(t, ExtractChanges("I could not find any problem with the code."))
	})
}

func TestExtractFencedBlocks(t *testing.T) {
	t.Run("collects bare fenced snippets with their language", func(t *testing.T) {
		response := "Try this:\n\n" + fence + "sql\nSELECT 1;\n" + fence + "\n\nor this:\n\n" + fence + "\nSELECT 2;\n" + fence + "\n"

		blocks := ExtractFencedBlocks(response)
		require.Len(t, blocks, 2)

		assert.Equal(t, "sql", blocks[0].Language)
		assert.Equal(t, "SELECT 1;", blocks[0].Code)
		assert.Equal(t, "plaintext", blocks[1].Language)
		assert.Equal(t, "SELECT 2;", blocks[1].Code)
	})

	t.Run("empty fenced blocks are dropped", func(t *testing.T) {
		response := fence + "\n\n" + fence + "\n"
		assert.Empty(t, ExtractFencedBlocks(response))
	})
}

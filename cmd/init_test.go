package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCmd(t *testing.T) {
	t.Run("writes a default config file into the working directory", func(t *testing.T) {
		root, _ := newTestRoot(t, &fakeWorkflow{}, newInitCmd())

		root.SetArgs([]string{"init"})
		require.NoError(t, root.Execute())

		cwd, err := os.Getwd()
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(cwd, configFileName))
		require.NoError(t, err)

		content := string(data)
		assert.Contains(t, content, "match")
		assert.Contains(t, content, "history")
	})

	t.Run("refuses to overwrite an existing config", func(t *testing.T) {
		root, _ := newTestRoot(t, &fakeWorkflow{}, newInitCmd())

		root.SetArgs([]string{"init"})
		require.NoError(t, root.Execute())

		root.SetArgs([]string{"init"})
		assert.Error(t, root.Execute())
	})
}

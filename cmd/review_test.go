package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mouse-blink/mend/internal/domain"
)

func TestReviewCmd(t *testing.T) {
	t.Run("empty session reports nothing to review", func(t *testing.T) {
		sess := domain.NewSession("target.src", domain.NewLocator(""), domain.NewHistory(10), fakeCmdStore{})
		wf := &fakeWorkflow{session: sess, content: "content\n"}

		root, buf := newTestRoot(t, wf, newReviewCmd())

		path := writeResponseFile(t, "no structured changes in here")

		root.SetArgs([]string{"review", path, "--file", "target.src"})
		require.NoError(t, root.Execute())

		assert.Contains(t, buf.String(), "Nothing to review")
	})

	t.Run("missing target without extractable changes is an error", func(t *testing.T) {
		wf := &fakeWorkflow{}
		root, _ := newTestRoot(t, wf, newReviewCmd())

		path := writeResponseFile(t, "prose only, no change blocks")

		root.SetArgs([]string{"review", path})
		assert.Error(t, root.Execute())
	})
}

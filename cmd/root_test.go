package cmd

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/spf13/cobra"

	"github.com/mouse-blink/mend/internal/controller"
	"github.com/mouse-blink/mend/internal/domain"
	m "github.com/mouse-blink/mend/internal/model"
)

// fakeWorkflow records the arguments commands pass to the domain layer.
type fakeWorkflow struct {
	applyArgs    domain.ApplyArgs
	applyRecords []m.ChangeRecord
	applyErr     error

	previewResponse string
	previewTarget   m.Path
	previewItems    []domain.PreviewItem

	session domain.Session
	content string
}

func (f *fakeWorkflow) Preview(_ context.Context, response string, target m.Path) ([]domain.PreviewItem, error) {
	f.previewResponse = response
	f.previewTarget = target

	return f.previewItems, nil
}

func (f *fakeWorkflow) Apply(_ context.Context, args domain.ApplyArgs) ([]m.ChangeRecord, error) {
	f.applyArgs = args
	return f.applyRecords, f.applyErr
}

func (f *fakeWorkflow) BuildSession(_ context.Context, _ string, file m.Path) (domain.Session, string, error) {
	if f.session == nil {
		return nil, "", fmt.Errorf("no session configured for %s", file)
	}

	return f.session, f.content, nil
}

// fakeCmdStore satisfies the FileStore interface without touching the disk,
// so flushStore in command RunE functions succeeds repeatedly.
type fakeCmdStore struct{}

func (fakeCmdStore) Load(path m.Path) (string, error) {
	return "", fmt.Errorf("no such file: %s", path)
}

func (fakeCmdStore) Save(m.Path, string) error { return nil }

func (fakeCmdStore) Close(context.Context) error { return nil }

// newTestRoot builds a fresh command tree wired to the fake workflow and
// returns the root plus its captured output buffer.
func newTestRoot(t *testing.T, wf domain.Workflow, subcommands ...*cobra.Command) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	t.Chdir(t.TempDir())

	root := baseRootCmd()
	configureRootFlags(root)

	for _, sub := range subcommands {
		root.AddCommand(sub)
	}

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)

	origWorkflow, origStore, origUI := workflow, store, ui
	workflow = wf
	store = fakeCmdStore{}
	ui = controller.NewSimpleUI(root)

	t.Cleanup(func() {
		workflow, store, ui = origWorkflow, origStore, origUI
	})

	return root, &buf
}

func TestRootCmd(t *testing.T) {
	root, buf := newTestRoot(t, &fakeWorkflow{})
	root.SetArgs(nil)

	err := root.Execute()
	if err != nil {
		t.Fatalf("root command failed: %v", err)
	}

	out := buf.String()
	if !bytes.Contains([]byte(out), []byte("mend")) {
		t.Errorf("expected help output mentioning mend, got %q", out)
	}
}

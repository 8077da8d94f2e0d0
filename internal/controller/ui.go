// Package controller provides output adapters for displaying suggestion
// previews and apply results.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mouse-blink/mend/internal/domain"
	m "github.com/mouse-blink/mend/internal/model"
)

// UI defines the interface for displaying extraction previews and apply
// results. Implementations can use different output methods (simple text,
// TUI, etc).
type UI interface {
	DisplayPreview(ctx context.Context, items []domain.PreviewItem) error
	DisplayApplied(ctx context.Context, records []m.ChangeRecord) error
}

// IsTTY reports whether the writer is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

// NewUI picks the UI implementation for the environment. Diff output is
// colorized only on an interactive terminal; the interactive review has its
// own bubbletea program.
func NewUI(cmd *cobra.Command, tty bool) UI {
	ui := NewSimpleUI(cmd)
	ui.color = tty

	return ui
}

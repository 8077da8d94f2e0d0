package controller

import (
	"bytes"
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mouse-blink/mend/internal/domain"
	m "github.com/mouse-blink/mend/internal/model"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd   *cobra.Command
	color bool
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayPreview prints one table of extracted changes plus a diff block per
// valid change.
func (s *SimpleUI) DisplayPreview(ctx context.Context, items []domain.PreviewItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(items) == 0 {
		s.printf("No code changes found.\n")
		return nil
	}

	s.printf("\n%s", renderPreviewTable(items))

	for i, item := range items {
		if !item.Change.Valid || item.Validation.Err != "" {
			continue
		}

		diff := RenderDiff(item.Change.OriginalCode, item.Change.NewCode)
		if s.color {
			diff = colorizeDiff(diff)
		}

		s.printf("\nChange %d (%s):\n%s", i+1, item.Change.FilePath, diff)
	}

	return nil
}

func renderPreviewTable(items []domain.PreviewItem) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"#", "File", "Action", "Candidates", "Tier", "Status"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
	})

	applicable := 0

	for i, item := range items {
		status := "ok"

		switch {
		case !item.Change.Valid:
			status = item.Change.ValidationError
		case item.Validation.Err != "":
			status = item.Validation.Err
		default:
			applicable++
		}

		tier := "-"
		if len(item.Candidates) > 0 {
			tier = item.Candidates[0].Tier.String()
		}

		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			string(item.Change.FilePath),
			string(item.Change.Action),
			fmt.Sprintf("%d", len(item.Candidates)),
			tier,
			status,
		})
	}

	table.SetFooter([]string{
		"", "", "",
		fmt.Sprintf("%d", len(items)),
		"",
		fmt.Sprintf("%d applicable", applicable),
	})

	table.Render()

	return buf.String()
}

// DisplayApplied prints the audit table of applied changes.
func (s *SimpleUI) DisplayApplied(ctx context.Context, records []m.ChangeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(records) == 0 {
		s.printf("Nothing applied.\n")
		return nil
	}

	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"File", "Action", "Tier", "Line"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	for _, record := range records {
		table.Append([]string{
			string(record.FilePath),
			record.Action,
			record.Tier,
			fmt.Sprintf("%d", record.LineOffset),
		})
	}

	table.Render()

	s.printf("\n%s", buf.String())
	s.printf("Applied %d change(s)\n", len(records))

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

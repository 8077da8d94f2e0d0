package cmd

import (
	"context"

	"github.com/spf13/cobra"

	m "github.com/mouse-blink/mend/internal/model"
)

var previewFileFlag string

// previewCmd represents the preview command.
var previewCmd = newPreviewCmd()

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview [response-file]",
		Short: "Show extracted changes and their candidate positions",
		Long: `Extract the code changes from a model response, validate each one against
the current file content and list the candidate positions per change. No
file is modified.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			response, err := readResponse(cmd, args)
			if err != nil {
				return err
			}

			items, err := workflow.Preview(ctx, response, m.Path(previewFileFlag))
			if err != nil {
				return err
			}

			return ui.DisplayPreview(ctx, items)
		},
	}

	cmd.Flags().StringVarP(&previewFileFlag, fileFlagName, "f", "", "target file overriding the FILE: path of every change")

	return cmd
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

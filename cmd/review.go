package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mouse-blink/mend/internal/controller"
	"github.com/mouse-blink/mend/internal/domain"
	m "github.com/mouse-blink/mend/internal/model"
)

var reviewFileFlag string

// reviewCmd represents the review command.
var reviewCmd = newReviewCmd()

func newReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review [response-file]",
		Short: "Review proposed changes interactively",
		Long: `Walk through the proposed changes one by one: cycle through candidate
positions, place a change manually, apply or skip it, and undo applied
changes, all inside an interactive terminal session.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			response, err := readResponse(cmd, args)
			if err != nil {
				return err
			}

			target := m.Path(reviewFileFlag)
			if target == "" {
				changes := domain.ExtractChanges(response)
				if len(changes) == 0 {
					return fmt.Errorf("no code changes found; pass --file for bare snippets")
				}

				target = changes[0].FilePath
				if target == "" {
					return fmt.Errorf("first change names no file; pass --file to set the target")
				}
			}

			sess, content, err := workflow.BuildSession(ctx, response, target)
			if err != nil {
				return err
			}

			if sess.Len() == 0 {
				cmd.Println("Nothing to review: every change is already applied or malformed.")
				return nil
			}

			result, err := controller.RunReview(sess, store, target, content, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			cmd.Printf("Review finished: %d applied, %d skipped\n", result.Applied, result.Skipped)

			return flushStore(ctx)
		},
	}

	cmd.Flags().StringVarP(&reviewFileFlag, fileFlagName, "f", "", "file to review changes against")

	return cmd
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

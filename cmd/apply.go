package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mouse-blink/mend/internal/domain"
	m "github.com/mouse-blink/mend/internal/model"
)

var applyFileFlag string
var applyThreadsFlag int
var applyJournalFlag bool

// applyCmd represents the apply command.
var applyCmd = newApplyCmd()

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply [response-file]",
		Short: "Apply model-proposed changes without confirmation",
		Long: `Extract every code change from the model response and apply each one at
its strongest candidate position. Reads from stdin when no file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			response, err := readResponse(cmd, args)
			if err != nil {
				return err
			}

			journal := m.Path("")
			if applyJournalFlag {
				journal = m.Path(viper.GetString(journalConfigKey))
			}

			records, err := workflow.Apply(ctx, domain.ApplyArgs{
				Response:   response,
				TargetFile: m.Path(applyFileFlag),
				Journal:    journal,
				Threads:    viper.GetInt(threadsConfigKey),
			})
			if err != nil {
				return err
			}

			if err := ui.DisplayApplied(ctx, records); err != nil {
				return err
			}

			return flushStore(ctx)
		},
	}

	configureApplyFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func configureApplyFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&applyFileFlag, fileFlagName, "f", "", "target file overriding the FILE: path of every change")
	cmd.Flags().IntVarP(&applyThreadsFlag, threadsFlagName, "t", viper.GetInt(threadsConfigKey), "number of files processed in parallel")
	bindFlagToConfig(cmd.Flags().Lookup(threadsFlagName), threadsConfigKey)
	cmd.Flags().BoolVar(&applyJournalFlag, "log-changes", false, "record applied changes in the journal")
}

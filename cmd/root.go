// Package cmd provides the root command and CLI setup for mend.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mouse-blink/mend/internal/adapter"
	"github.com/mouse-blink/mend/internal/controller"
	"github.com/mouse-blink/mend/internal/domain"
)

var store adapter.FileStore
var changelog adapter.ChangelogStore
var locator domain.Locator
var workflow domain.Workflow
var ui controller.UI

// journalFlag is a root-level flag pointing at the applied-change log.
var journalFlag string

// verboseFlag raises the log level to debug.
var verboseFlag bool

// storeFlushTimeout bounds how long a command waits for pending writes when
// it finishes.
const storeFlushTimeout = 5 * time.Second

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	store = adapter.NewLocalFileStore()
	changelog = adapter.NewChangelogStore()
	locator = domain.NewLocator(viper.GetString(terminatorConfigKey))
	workflow = domain.NewWorkflow(store, changelog, locator, viper.GetInt(historyLimitKey))
}

const rootLongDescription = `Mend merges code changes proposed by a language model into your source
files. The model's stated "before" text rarely matches the file exactly, so
mend locates the intended region through a chain of increasingly loose
matching tiers (exact, whitespace-folded, line windows, literals) and falls
back to appending at the end of the program when nothing matches.

Feed it a file containing the raw model response; changes are carried in
[CODE_CHANGE] blocks or bare triple-fenced snippets.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mend",
		Short: "Merge model-proposed code changes into source files",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger("", verboseFlag || viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&journalFlag, journalFlagName, "j",
			viper.GetString(journalConfigKey),
			"path of the applied-change journal",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(journalFlagName), journalConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", viper.GetBool(logVerboseKey), "log at debug level")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// flushStore waits for the file store's pending asynchronous writes.
func flushStore(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, storeFlushTimeout)
	defer cancel()

	return store.Close(ctx)
}

// readResponse loads the model response from the argument file, or from
// standard input when the argument is missing or "-".
func readResponse(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read response from stdin: %w", err)
		}

		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read response file: %w", err)
	}

	return string(data), nil
}

package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/YaroslavMizgirev/shelf/internal/config"
	"github.com/YaroslavMizgirev/shelf/pkg/core"
)

var (
	verbose    bool
	libDir     string
	catalog    string
	adapter    string
	strict     bool
	versioning bool
	readOnly   bool
	message    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shelf",
	Short: "A personal book catalog kept in a plain delimited text file",
	Long: `shelf manages a catalog of books stored as one comma-delimited text file
(lib.csv by default). Every change rewrites the file, optionally committing
it to Git or appending a snapshot to an SQLite log.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
		slog.SetDefault(logger)

		// The message replaces the generated change reason of every write.
		if message != "" {
			cmd.SetContext(context.WithValue(cmd.Context(), core.ChangeReasonKey, message))
		}
		return config.LoadEnv()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fatal("Error", err)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVarP(&libDir, "dir", "C", "", "Library directory (default: $SHELF_DIR, the enclosing library or the working directory)")
	flags.StringVar(&catalog, "catalog", "", "Catalog document name (default lib.csv)")
	flags.StringVar(&adapter, "adapter", "", "Storage adapter: fs or sqlite")
	flags.BoolVar(&strict, "strict", false, "Reject malformed years and read flags instead of defaulting them")
	flags.BoolVar(&versioning, "versioning", true, "Commit every change to Git (fs adapter)")
	flags.BoolVar(&readOnly, "read-only", false, "Open the library without writing to it")
	flags.StringVarP(&message, "message", "m", "", "Change reason recorded in the history")
}

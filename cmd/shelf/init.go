package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YaroslavMizgirev/shelf"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a shelf library",
	Long: `Initialize a library in the selected directory: create it, set up Git
(unless --versioning=false) and write an empty catalog when none exists.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openLibrary(cmd, shelf.WithAutoInit(true))
		if err != nil {
			return err
		}
		defer svc.Close()

		if len(svc.Books()) == 0 {
			if err := svc.Flush(cmd.Context()); err != nil {
				return fmt.Errorf("failed to write catalog: %w", err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized shelf library with %d books (%s)\n", len(svc.Books()), svc.Document())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

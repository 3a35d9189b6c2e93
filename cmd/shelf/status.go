package main

import (
	"encoding/json"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the service and its storage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openLibrary(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		report := map[string]any{
			svc.ComponentType(): svc.State(),
		}
		if comp, ok := svc.Repository().(introspection.Component); ok {
			if in, ok := comp.(introspection.Introspectable); ok {
				report[comp.ComponentType()] = in.State()
			}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the recorded changes of the catalog",
	Long:  `History shows the Git commits (fs adapter) or stored snapshots (sqlite adapter) of the catalog, newest first.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openLibrary(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		revs, err := svc.History(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(revs) == 0 {
			fmt.Fprintln(out, "No history.")
			return nil
		}

		rows := make([][]string, 0, len(revs))
		for _, r := range revs {
			when := ""
			if !r.When.IsZero() {
				when = r.When.Local().Format("2006-01-02 15:04:05")
			}
			rows = append(rows, []string{r.ID, when, r.Reason})
		}
		fmt.Fprintln(out, renderTable([]string{"Revision", "When", "Change"}, rows, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

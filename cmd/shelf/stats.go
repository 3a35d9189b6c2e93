package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count read and unread books",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openLibrary(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		st := svc.Stats()
		rows := [][]string{
			{"Total", strconv.Itoa(st.Total)},
			{"Read", strconv.Itoa(st.Read)},
			{"Unread", strconv.Itoa(st.Unread)},
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, renderTable([]string{"Books", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
		if types := svc.Types(); len(types) > 0 {
			fmt.Fprintf(out, "Types: %s\n", strings.Join(types, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

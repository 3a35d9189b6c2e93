package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YaroslavMizgirev/shelf/pkg/core"
)

var (
	listJSON   bool
	listSearch string
	listType   string
	listRead   bool
	listUnread bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the books in the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if listRead && listUnread {
			return fmt.Errorf("--read and --unread are mutually exclusive")
		}

		svc, err := openLibrary(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		q := core.Query{Search: listSearch, Type: listType}
		switch {
		case listRead:
			q.Read = core.ReadDone
		case listUnread:
			q.Read = core.ReadUnread
		}
		books := svc.Filter(q)

		out := cmd.OutOrStdout()
		if listJSON {
			if books == nil {
				books = []core.Book{}
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(books)
		}

		if len(books) == 0 {
			fmt.Fprintln(out, "No books found.")
			return nil
		}

		rows := make([][]string, 0, len(books))
		for _, b := range books {
			rows = append(rows, []string{
				b.ID,
				b.Title,
				strings.Join(b.Authors, ", "),
				strconv.Itoa(b.Year),
				b.Type,
				storageLabel(b.Storage),
				readMark(b.IsRead),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"ID", "Title", "Authors", "Year", "Type", "Storage", "Read"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
		))
		return nil
	},
}

func storageLabel(s core.Storage) string {
	if s.Path == "" {
		return s.Name
	}
	return s.Name + " (" + s.Path + ")"
}

func readMark(read bool) string {
	if read {
		return "yes"
	}
	return "no"
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Only books whose title or authors contain this text")
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "Only books of this type")
	listCmd.Flags().BoolVar(&listRead, "read", false, "Only books already read")
	listCmd.Flags().BoolVar(&listUnread, "unread", false, "Only books not read yet")
	rootCmd.AddCommand(listCmd)
}

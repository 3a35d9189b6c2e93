package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/YaroslavMizgirev/shelf/pkg/core"
)

// bookFlags holds the fields shared by add and edit.
type bookFlags struct {
	id          string
	title       string
	authors     string
	year        int
	edition     string
	storageName string
	storagePath string
	read        bool
	kind        string
}

func (f *bookFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "Title")
	fs.StringVar(&f.authors, "authors", "", "Authors, comma separated")
	fs.IntVar(&f.year, "year", 0, "Publication year (default: current year)")
	fs.StringVar(&f.edition, "edition", "", "Edition")
	fs.StringVar(&f.storageName, "storage", "", "Where the book is kept")
	fs.StringVar(&f.storagePath, "path", "", "Location inside the storage")
	fs.BoolVar(&f.read, "read", false, "Mark as read")
	fs.StringVar(&f.kind, "type", "", "Type (novel, reference, ...)")
}

// apply copies the flags that were set onto b.
func (f *bookFlags) apply(fs *pflag.FlagSet, b core.Book) core.Book {
	if fs.Changed("title") {
		b.Title = f.title
	}
	if fs.Changed("authors") {
		b.Authors = splitList(f.authors)
	}
	if fs.Changed("year") {
		b.Year = f.year
	}
	if fs.Changed("edition") {
		b.Edition = f.edition
	}
	if fs.Changed("storage") {
		b.Storage.Name = f.storageName
	}
	if fs.Changed("path") {
		b.Storage.Path = f.storagePath
	}
	if fs.Changed("read") {
		b.IsRead = f.read
	}
	if fs.Changed("type") {
		b.Type = f.kind
	}
	return b
}

// splitList splits a comma separated list, dropping blank entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var addFlags bookFlags

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a book to the catalog",
	Example: `  shelf add --title "Good Omens" --authors "Terry Pratchett, Neil Gaiman" --year 1990 --type Novel`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openLibrary(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		b := addFlags.apply(cmd.Flags(), core.Book{ID: addFlags.id})
		b, err = svc.Add(cmd.Context(), b)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added book %s: %s\n", b.ID, b.Title)
		return nil
	},
}

var editFlags bookFlags

var editCmd = &cobra.Command{
	Use:     "edit [id]",
	Aliases: []string{"update"},
	Short:   "Change fields of a book",
	Long:    `Edit replaces the fields given as flags and keeps the others.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openLibrary(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		current, err := svc.BeginEdit(args[0])
		if err != nil {
			return err
		}
		updated := editFlags.apply(cmd.Flags(), current)
		ok, err := svc.Update(cmd.Context(), args[0], updated)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", core.ErrNotFound, args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated book %s\n", args[0])
		return nil
	},
}

func init() {
	addFlags.register(addCmd.Flags())
	addCmd.Flags().StringVar(&addFlags.id, "id", "", "Explicit id (default: generated)")
	_ = addCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(addCmd)

	editFlags.register(editCmd.Flags())
	rootCmd.AddCommand(editCmd)
}

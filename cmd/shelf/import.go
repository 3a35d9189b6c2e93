package main

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/YaroslavMizgirev/shelf/pkg/adapters/fs"
	"github.com/YaroslavMizgirev/shelf/pkg/core"
)

var importMerge bool

var importCmd = &cobra.Command{
	Use:   "import [pattern]",
	Short: "Replace the catalog with a CSV, JSON or YAML file",
	Long: `Import reads a catalog file and replaces the current collection with it.
The format follows the extension: .csv, .json, .yaml or .yml.

The argument may be a glob pattern (e.g. "backups/**/*.json"). Without
--merge it must match exactly one file; with --merge the books of every
matching file are appended to the collection instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandPattern(args[0])
		if err != nil {
			return err
		}
		if !importMerge && len(files) > 1 {
			return fmt.Errorf("%q matches %d files; use --merge to combine them", args[0], len(files))
		}

		svc, err := openLibrary(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		out := cmd.OutOrStdout()
		if !importMerge {
			data, format, err := readForeign(files[0])
			if err != nil {
				return err
			}
			books, err := svc.ImportForeign(cmd.Context(), data, format)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Imported %d books from %s\n", len(books), files[0])
			return nil
		}

		var decoded []core.Book
		for _, f := range files {
			data, format, err := readForeign(f)
			if err != nil {
				return err
			}
			books, err := svc.Decode(data, format)
			if err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}
			decoded = append(decoded, books...)
		}
		err = svc.WithBatch(cmd.Context(), func(b *core.Batch) error {
			for _, book := range decoded {
				b.Add(book)
			}
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Merged %d books from %d files\n", len(decoded), len(files))
		return nil
	},
}

// expandPattern resolves a glob. A pattern without matches is an error.
func expandPattern(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no file matches %q", pattern)
	}
	return matches, nil
}

func readForeign(path string) ([]byte, core.Format, error) {
	format, err := fs.FormatFromFilename(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, format, nil
}

func init() {
	importCmd.Flags().BoolVar(&importMerge, "merge", false, "Append the books instead of replacing the collection")
	rootCmd.AddCommand(importCmd)
}

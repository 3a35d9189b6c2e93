package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YaroslavMizgirev/shelf/pkg/adapters/fs"
	"github.com/YaroslavMizgirev/shelf/pkg/core"
)

// BackupFile is the file written by `export --backup`.
const BackupFile = "book-library-backup.json"

var (
	exportFormat string
	exportOutput string
	exportBackup bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the catalog as CSV, JSON or YAML",
	Long: `Export encodes the collection. Without --output it goes to standard output.
The format defaults to the output extension, then to csv. --backup writes a
JSON backup to ` + BackupFile + `.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportBackup {
			exportOutput = BackupFile
			exportFormat = "json"
		}

		format, err := exportFormatFor(exportFormat, exportOutput)
		if err != nil {
			return err
		}

		svc, err := openLibrary(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		data, err := svc.Export(format)
		if err != nil {
			return err
		}

		if exportOutput == "" || exportOutput == "-" {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(data), "\n"))
			return err
		}
		if err := os.WriteFile(exportOutput, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", exportOutput, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d books to %s\n", len(svc.Books()), exportOutput)
		return nil
	},
}

func exportFormatFor(name, output string) (core.Format, error) {
	switch strings.ToLower(name) {
	case "csv":
		return core.FormatDialect, nil
	case "json":
		return core.FormatJSON, nil
	case "yaml", "yml":
		return core.FormatYAML, nil
	case "":
		if output == "" || output == "-" {
			return core.FormatDialect, nil
		}
		return fs.FormatFromFilename(output)
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, name)
	}
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "csv, json or yaml")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: standard output)")
	exportCmd.Flags().BoolVar(&exportBackup, "backup", false, "Write a JSON backup to "+BackupFile)
	rootCmd.AddCommand(exportCmd)
}

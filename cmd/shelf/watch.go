package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	source "github.com/YaroslavMizgirev/shelf/pkg/adapters/lifecycle"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload the catalog whenever it changes on disk",
	Long:  `Watch keeps the catalog loaded and reports every external change until interrupted.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := openLibrary(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		events, err := svc.Watch(ctx)
		if err != nil {
			return err
		}
		src := source.NewSource(events)
		if err := src.Start(ctx); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Watching %s (%d books). Press Ctrl+C to stop.\n", svc.Document(), len(svc.Books()))
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-src.Events():
				if !ok {
					if ctx.Err() != nil {
						return nil
					}
					return errors.New("watcher stopped")
				}
				st := svc.Stats()
				fmt.Fprintf(out, "%s: %d books, %d read\n", e, st.Total, st.Read)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

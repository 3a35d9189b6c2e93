package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/YaroslavMizgirev/shelf"
	"github.com/YaroslavMizgirev/shelf/internal/config"
	"github.com/YaroslavMizgirev/shelf/pkg/core"
)

// resolveConfig finds the library and merges its settings.
// Precedence: flags, then environment, then shelf.yaml.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	dir := libDir
	if dir == "" {
		dir = os.Getenv(config.EnvDir)
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
		if root, err := shelf.FindRoot(wd); err == nil {
			dir = root
		}
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("catalog") {
		cfg.Catalog = catalog
	}
	if flags.Changed("adapter") {
		cfg.Adapter = adapter
	}
	if flags.Changed("strict") {
		cfg.Strict = strict
	}
	if flags.Changed("versioning") {
		v := versioning
		cfg.Versioning = &v
	}
	if flags.Changed("read-only") {
		cfg.ReadOnly = readOnly
	}
	return cfg, nil
}

// libraryOptions turns resolved settings into service options.
func libraryOptions(cmd *cobra.Command, cfg config.Config, assumeYes bool) []shelf.Option {
	opts := []shelf.Option{
		shelf.WithLogger(slog.Default()),
		shelf.WithCatalog(cfg.Catalog),
		shelf.WithStrict(cfg.Strict),
		shelf.WithReadOnly(cfg.ReadOnly),
		shelf.WithConfirmer(&prompt{in: cmd.InOrStdin(), out: cmd.OutOrStdout(), assumeYes: assumeYes}),
	}
	if cfg.Adapter != "" {
		opts = append(opts, shelf.WithAdapter(cfg.Adapter))
	}
	if cfg.SystemDir != "" {
		opts = append(opts, shelf.WithSystemDir(cfg.SystemDir))
	}
	if cfg.Versioning != nil {
		opts = append(opts, shelf.WithVersioning(*cfg.Versioning))
	}
	return opts
}

// openLibrary opens the library and loads its catalog. A missing catalog
// document is an empty library.
func openLibrary(cmd *cobra.Command, extra ...shelf.Option) (*core.Service, error) {
	return openLibraryWith(cmd, false, extra...)
}

func openLibraryWith(cmd *cobra.Command, assumeYes bool, extra ...shelf.Option) (*core.Service, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}

	opts := append(libraryOptions(cmd, cfg, assumeYes), extra...)
	svc, err := shelf.New(cfg.Dir, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}

	if err := loadCatalog(cmd.Context(), svc); err != nil {
		_ = svc.Close()
		return nil, err
	}
	return svc, nil
}

func loadCatalog(ctx context.Context, svc *core.Service) error {
	err := svc.Load(ctx)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("catalog not found, starting empty", "catalog", svc.Document())
		return nil
	}
	return err
}

// prompt asks on the terminal before destructive operations.
type prompt struct {
	in        io.Reader
	out       io.Writer
	assumeYes bool
}

// Confirm implements core.Confirmer. Without a terminal to ask it declines.
func (p *prompt) Confirm(ctx context.Context, msg string) bool {
	if p.assumeYes {
		return true
	}
	if f, ok := p.in.(*os.File); ok && !isTerminal(f) {
		slog.Warn("cannot ask for confirmation without a terminal; use --yes")
		return false
	}

	fmt.Fprintf(p.out, "%s [y/N]: ", msg)
	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

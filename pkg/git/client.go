package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Client runs git commands inside the library directory.
// It does not lock: callers serialize writes themselves.
type Client struct {
	WorkDir string
	Logger  *slog.Logger
}

// NewClient creates a new git client for the given working directory.
func NewClient(workDir string, logger *slog.Logger) *Client {
	return &Client{
		WorkDir: workDir,
		Logger:  logger,
	}
}

// IsInstalled checks if git is available in the system path.
func IsInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// IsRepo reports whether WorkDir is the root of a git repository.
func (c *Client) IsRepo() bool {
	info, err := os.Stat(filepath.Join(c.WorkDir, ".git"))
	return err == nil && info.IsDir()
}

// Run executes a raw git command in the working directory.
func (c *Client) Run(ctx context.Context, args ...string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("git: no command")
	}
	if c.Logger != nil {
		c.Logger.Debug("executing git", "args", args, "dir", c.WorkDir)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.WorkDir

	out, err := cmd.CombinedOutput()
	output := string(out)

	if err != nil {
		return output, fmt.Errorf("git %s failed: %w\nOutput: %s", args[0], err, output)
	}

	return strings.TrimSpace(output), nil
}

// Init initializes a new git repository. Re-running it is harmless.
func (c *Client) Init(ctx context.Context) error {
	_, err := c.Run(ctx, "init")
	return err
}

// Add adds files to the stage.
func (c *Client) Add(ctx context.Context, files ...string) error {
	if len(files) == 0 {
		return nil
	}
	_, err := c.Run(ctx, append([]string{"add", "--"}, files...)...)
	return err
}

// Changed reports whether files differ from the last commit, staged or not.
func (c *Client) Changed(ctx context.Context, files ...string) (bool, error) {
	out, err := c.Run(ctx, append([]string{"status", "--porcelain", "--"}, files...)...)
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// Commit records staged changes with an author local to this repository,
// so commits work on machines without a global git identity.
func (c *Client) Commit(ctx context.Context, msg string) error {
	_, err := c.Run(ctx,
		"-c", "user.name=shelf",
		"-c", "user.email=shelf@localhost",
		"commit", "-m", msg,
	)
	return err
}

// Entry is one commit from the log.
type Entry struct {
	Hash    string
	When    time.Time
	Subject string
}

// Log returns the commits touching file, newest first.
func (c *Client) Log(ctx context.Context, file string) ([]Entry, error) {
	out, err := c.Run(ctx, "log", "--format=%h%x09%ct%x09%s", "--", file)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}

	var entries []Entry
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}
		e := Entry{Hash: parts[0], Subject: parts[2]}
		if sec, err := strconv.ParseInt(parts[1], 10, 64); err == nil {
			e.When = time.Unix(sec, 0)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

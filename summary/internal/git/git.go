// Package git runs the git commands that publish generated files.
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner executes a git subcommand in a directory and returns its combined
// output.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) ([]byte, error)
}

// ExecRunner runs the git binary found on PATH.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Author identifies the committer of generated commits.
type Author struct {
	Name  string
	Email string
}

// DefaultAuthor is used when no author is configured.
var DefaultAuthor = Author{
	Name:  "Upptime Bot",
	Email: "73812536+upptime-bot@users.noreply.github.com",
}

// Repo is a working copy at Dir.
type Repo struct {
	Dir    string
	Author Author
	runner Runner
}

// New returns a Repo using r, or ExecRunner when r is nil. Empty author
// fields fall back to DefaultAuthor.
func New(dir string, author Author, r Runner) *Repo {
	if r == nil {
		r = ExecRunner{}
	}
	if author.Name == "" {
		author.Name = DefaultAuthor.Name
	}
	if author.Email == "" {
		author.Email = DefaultAuthor.Email
	}
	return &Repo{Dir: dir, Author: author, runner: r}
}

func (g *Repo) run(ctx context.Context, args ...string) ([]byte, error) {
	out, err := g.runner.Run(ctx, g.Dir, args...)
	if err != nil {
		return out, fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return out, nil
}

// Pull fetches and merges the upstream branch.
func (g *Repo) Pull(ctx context.Context) error {
	_, err := g.run(ctx, "pull")
	return err
}

// Commit stages paths and commits them with message. It reports false when
// nothing was staged.
func (g *Repo) Commit(ctx context.Context, message string, paths ...string) (bool, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	if _, err := g.run(ctx, append([]string{"add", "--"}, paths...)...); err != nil {
		return false, err
	}

	// diff --quiet exits 1 when the index differs from HEAD.
	_, err := g.runner.Run(ctx, g.Dir, "diff", "--cached", "--quiet")
	if err == nil {
		slog.Info("git: nothing to commit", "message", message)
		return false, nil
	}
	var exitErr interface{ ExitCode() int }
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
		return false, fmt.Errorf("git diff: %w", err)
	}

	_, err = g.run(ctx,
		"-c", "user.name="+g.Author.Name,
		"-c", "user.email="+g.Author.Email,
		"commit", "-m", message)
	if err != nil {
		return false, err
	}
	slog.Info("git: committed", "message", message)
	return true, nil
}

// Push pushes the current branch.
func (g *Repo) Push(ctx context.Context) error {
	_, err := g.run(ctx, "push")
	return err
}

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/upstatus/upstatus/pkg/logging"
	"github.com/upstatus/upstatus/summary/internal/config"
	"github.com/upstatus/upstatus/summary/internal/generate"
	"github.com/upstatus/upstatus/summary/internal/git"
	"github.com/upstatus/upstatus/summary/internal/github"
	"github.com/upstatus/upstatus/summary/internal/history"
)

func main() {
	configPath := flag.String("config", ".upptimerc.yml", "path to config file")
	root := flag.String("root", ".", "repository root")
	envFile := flag.String("env", ".env", "optional .env file")
	watch := flag.Bool("watch", false, "re-run whenever the config file changes")
	skipGit := flag.Bool("skip-git", false, "write files without pulling, committing or pushing")
	flag.Parse()

	if err := config.LoadEnv(*envFile); err != nil {
		slog.Error("failed to load env file", "err", err)
		os.Exit(1)
	}

	path := *configPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(*root, path)
	}
	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		slog.Error("failed to configure logging", "err", err)
		os.Exit(1)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	owner, repo := cfg.OwnerRepo()
	slog.Info("upstatus-summary starting",
		"config", path,
		"repo", owner+"/"+repo,
		"sites", len(cfg.Sites),
		"history_backend", cfg.History.Backend,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, *root, *skipGit); err != nil {
		slog.Error("summary run failed", "err", err)
		if !*watch {
			closer.Close()
			os.Exit(1)
		}
	}
	if !*watch {
		return
	}

	slog.Info("watching config for changes", "path", path)
	err = config.Watch(ctx, path, func(updated *config.Config) {
		slog.Info("config reloaded", "sites", len(updated.Sites))
		if err := run(ctx, updated, *root, *skipGit); err != nil {
			slog.Error("summary run failed", "err", err)
		}
	})
	if err != nil {
		slog.Error("config watcher stopped", "err", err)
	}
	slog.Info("upstatus-summary shutting down")
}

// run wires one generator pass from cfg.
func run(ctx context.Context, cfg *config.Config, root string, skipGit bool) error {
	store, err := history.Open(ctx, cfg.History, root)
	if err != nil {
		return err
	}
	defer store.Close()

	var gh generate.GitHub
	if token := config.GitHubToken(); token != "" {
		gh = github.New(token)
	} else {
		slog.Warn("no GH_PAT or GITHUB_TOKEN set, skipping GitHub API steps")
	}

	var repo generate.Git
	if !skipGit {
		repo = git.New(root, git.Author{
			Name:  cfg.CommitMessages.CommitAuthorName,
			Email: cfg.CommitMessages.CommitAuthorEmail,
		}, nil)
	}

	_, err = generate.New(cfg, root, store, gh, repo).Run(ctx)
	return err
}

package generate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/upstatus/upstatus/summary/internal/config"
	"github.com/upstatus/upstatus/summary/internal/driver"
	"github.com/upstatus/upstatus/summary/internal/github"
	"github.com/upstatus/upstatus/summary/internal/history"
	"github.com/upstatus/upstatus/summary/internal/report"
	"github.com/upstatus/upstatus/summary/internal/workflows"
)

// GitHub is the subset of the GitHub API a run needs.
type GitHub interface {
	OwnerProfile(ctx context.Context, login string) (github.Profile, error)
	UpdateRepository(ctx context.Context, owner, repo string, u github.RepoUpdate) error
	CleanupIssues(ctx context.Context, owner, repo string) (int, error)
}

// Git publishes the generated files.
type Git interface {
	Pull(ctx context.Context) error
	Commit(ctx context.Context, message string, paths ...string) (bool, error)
	Push(ctx context.Context) error
}

// Generator runs the summary pipeline for one repository checkout.
type Generator struct {
	cfg     *config.Config
	root    string
	history history.Reader
	gh      GitHub
	git     Git
	now     func() time.Time
}

// New returns a Generator writing under root. gh and git may be nil.
func New(cfg *config.Config, root string, r history.Reader, gh GitHub, git Git) *Generator {
	return &Generator{cfg: cfg, root: root, history: r, gh: gh, git: git, now: time.Now}
}

// Run executes one pass. Per-site read failures are logged and reflected in
// the result; the run fails only when no site history could be read or a
// file or git step fails.
func (g *Generator) Run(ctx context.Context) (*driver.Result, error) {
	runID := uuid.NewString()
	log := slog.With("run_id", runID)
	owner, repo := g.cfg.OwnerRepo()
	log.Info("generate: run started", "repo", owner+"/"+repo, "sites", len(g.cfg.Sites))

	d := driver.New(g.history, driver.AggregatorFor(g.cfg.Downtime)).WithClock(g.now)
	res, err := d.Run(ctx, g.cfg.Sites)
	if err != nil {
		return res, fmt.Errorf("generate: %w", err)
	}
	if err := res.Err(); err != nil {
		log.Warn("generate: some sites had unreadable history", "err", err)
	}

	rd := report.NewReadme(g.cfg, owner, repo)
	readmePath := filepath.Join(g.root, report.ReadmeFile)
	doc, err := os.ReadFile(readmePath)
	readmeFound := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return res, fmt.Errorf("generate: read readme: %w", err)
	}
	if !readmeFound {
		log.Warn("generate: README not found, skipping", "path", readmePath)
	}

	var rendered string
	if readmeFound {
		if g.gh != nil && !rd.IsTemplate() && report.NeedsOwnerProfile(string(doc)) {
			g.resolveOwnerName(ctx, log, rd, owner)
		}
		rendered = rd.Render(string(doc), res.Sites, res.Fleet)
	}

	if g.gh != nil && !rd.IsTemplate() {
		if err := g.gh.UpdateRepository(ctx, owner, repo, g.repoUpdate(rd)); err != nil {
			log.Warn("generate: repository metadata not updated", "err", err)
		}
	}

	if g.git != nil {
		if err := g.git.Pull(ctx); err != nil {
			return res, fmt.Errorf("generate: %w", err)
		}
	}

	if readmeFound {
		if err := os.WriteFile(readmePath, []byte(rendered), 0o644); err != nil {
			return res, fmt.Errorf("generate: write readme: %w", err)
		}
	}
	if err := report.WriteGitAttributes(g.root); err != nil {
		return res, fmt.Errorf("generate: %w", err)
	}
	if err := g.commit(ctx, g.cfg.CommitMessages.ReadmeContent, report.ReadmeFile, report.GitAttributesFile); err != nil {
		return res, err
	}

	changed, err := workflows.Fix(g.root)
	if err != nil {
		return res, fmt.Errorf("generate: %w", err)
	}
	if len(changed) > 0 {
		log.Info("generate: workflows patched", "files", changed)
	}

	if err := report.WriteSummary(g.root, res.Sites); err != nil {
		return res, fmt.Errorf("generate: %w", err)
	}
	if err := report.WriteBadges(g.root, res.Sites); err != nil {
		return res, fmt.Errorf("generate: %w", err)
	}
	if err := report.WriteMetrics(g.root, res.Sites); err != nil {
		return res, fmt.Errorf("generate: %w", err)
	}
	if err := g.commit(ctx, g.cfg.CommitMessages.SummaryJSON,
		report.SummaryFile, report.MetricsFile, report.APIDir, workflows.Dir); err != nil {
		return res, err
	}
	if g.git != nil {
		if err := g.git.Push(ctx); err != nil {
			return res, fmt.Errorf("generate: %w", err)
		}
	}

	if g.gh != nil && !g.cfg.SkipDeleteIssues {
		n, err := g.gh.CleanupIssues(ctx, owner, repo)
		if err != nil {
			log.Warn("generate: issue cleanup failed", "err", err)
		} else {
			log.Info("generate: issues cleaned up", "deleted", n)
		}
	}

	log.Info("generate: run finished",
		"fleet", res.Fleet.Status(),
		"up", res.Fleet.Up,
		"degraded", res.Fleet.Degraded,
		"down", res.Fleet.Down,
	)
	return res, nil
}

// resolveOwnerName links the owner's profile name, or the login, to their
// blog, or to the status website.
func (g *Generator) resolveOwnerName(ctx context.Context, log *slog.Logger, rd *report.Readme, owner string) {
	p, err := g.gh.OwnerProfile(ctx, owner)
	if err != nil {
		log.Warn("generate: owner profile unavailable", "owner", owner, "err", err)
		return
	}
	rd.OwnerName = ownerLink(owner, rd.Website, p)
}

func ownerLink(owner, website string, p github.Profile) string {
	name, link := p.Name, p.Blog
	if name == "" {
		name = owner
	}
	if link == "" {
		link = website
	}
	return fmt.Sprintf("[%s](%s)", name, link)
}

func (g *Generator) repoUpdate(rd *report.Readme) github.RepoUpdate {
	return github.RepoUpdate{
		Description:     fmt.Sprintf("📈 Uptime monitor and status page for %s, powered by @upptime", report.PlainName(rd.OwnerName)),
		Homepage:        rd.Website,
		Topics:          github.DefaultTopics,
		SkipDescription: g.cfg.SkipDescriptionUpdate,
		SkipTopics:      g.cfg.SkipTopicsUpdate,
		SkipHomepage:    g.cfg.SkipHomepageUpdate,
	}
}

func (g *Generator) commit(ctx context.Context, message string, paths ...string) error {
	if g.git == nil {
		return nil
	}
	var present []string
	for _, p := range paths {
		if _, err := os.Stat(filepath.Join(g.root, p)); err == nil {
			present = append(present, p)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if _, err := g.git.Commit(ctx, message, present...); err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	return nil
}

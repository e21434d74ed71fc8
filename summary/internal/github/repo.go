package github

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	gh "github.com/google/go-github/v66/github"
)

// DefaultTopics are added to the repository topics when missing.
var DefaultTopics = []string{"uptime-monitor", "status-page", "upptime"}

// MarkerTopic marks a repository whose topics were already set up. Once it is
// present, topics are left alone even if other defaults were removed.
const MarkerTopic = "upptime"

// RepoUpdate describes the metadata to fill in.
type RepoUpdate struct {
	// Description is set only when the repository has none.
	Description string
	// Homepage is set only when the repository has none.
	Homepage string
	// Topics are merged into the existing topics unless MarkerTopic is
	// already among them.
	Topics []string

	SkipDescription bool
	SkipTopics      bool
	SkipHomepage    bool
}

// UpdateRepository applies u to owner/repo. Existing descriptions and
// homepages are never overwritten.
func (c *Client) UpdateRepository(ctx context.Context, owner, repo string, u RepoUpdate) error {
	current, _, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return fmt.Errorf("github: get repo %s/%s: %w", owner, repo, err)
	}

	if current.GetDescription() == "" && !u.SkipDescription && u.Description != "" {
		if _, _, err := c.gh.Repositories.Edit(ctx, owner, repo, &gh.Repository{Description: gh.String(u.Description)}); err != nil {
			return fmt.Errorf("github: update description: %w", err)
		}
		slog.Info("github: description updated", "repo", owner+"/"+repo)
	}

	if !u.SkipTopics && !slices.Contains(current.Topics, MarkerTopic) {
		merged := MergeTopics(current.Topics, u.Topics)
		if _, _, err := c.gh.Repositories.ReplaceAllTopics(ctx, owner, repo, merged); err != nil {
			return fmt.Errorf("github: replace topics: %w", err)
		}
		slog.Info("github: topics updated", "repo", owner+"/"+repo, "topics", merged)
	}

	if current.GetHomepage() == "" && !u.SkipHomepage && u.Homepage != "" {
		if _, _, err := c.gh.Repositories.Edit(ctx, owner, repo, &gh.Repository{Homepage: gh.String(u.Homepage)}); err != nil {
			return fmt.Errorf("github: update homepage: %w", err)
		}
		slog.Info("github: homepage updated", "repo", owner+"/"+repo)
	}
	return nil
}

// MergeTopics appends the missing extra topics to existing, keeping order
// and dropping duplicates.
func MergeTopics(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing)+len(extra))
	out := make([]string, 0, len(existing)+len(extra))
	for _, list := range [][]string{existing, extra} {
		for _, t := range list {
			if seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

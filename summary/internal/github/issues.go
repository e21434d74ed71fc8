package github

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gh "github.com/google/go-github/v66/github"
)

// Issue cleanup parameters.
const (
	StatusLabel     = "status"
	CleanupPageSize = 10
	FlapThreshold   = 15 * time.Minute
)

const deleteIssueMutation = `mutation deleteIssue($issueId: ID!) {
  deleteIssue(input: {issueId: $issueId}) {
    clientMutationId
  }
}`

// ShouldDelete reports whether issue was opened for an outage that resolved
// within FlapThreshold and received only the automatic comment.
func ShouldDelete(issue *gh.Issue) bool {
	closed := issue.GetClosedAt()
	if closed.IsZero() {
		return false
	}
	open := closed.Sub(issue.GetCreatedAt().Time)
	return open < FlapThreshold && issue.GetComments() == 1
}

// CleanupIssues deletes the recently closed status issues matching
// ShouldDelete and returns how many were deleted. Only listing errors are
// returned; failed deletions are logged.
func (c *Client) CleanupIssues(ctx context.Context, owner, repo string) (int, error) {
	issues, _, err := c.gh.Issues.ListByRepo(ctx, owner, repo, &gh.IssueListByRepoOptions{
		State:       "closed",
		Labels:      []string{StatusLabel},
		ListOptions: gh.ListOptions{PerPage: CleanupPageSize},
	})
	if err != nil {
		return 0, fmt.Errorf("github: list closed issues: %w", err)
	}
	slog.Info("github: found recently closed issues", "count", len(issues))

	deleted := 0
	for _, issue := range issues {
		if !ShouldDelete(issue) {
			continue
		}
		err := c.graphql(ctx, deleteIssueMutation, map[string]interface{}{"issueId": issue.GetNodeID()})
		if err != nil {
			slog.Error("github: delete issue failed",
				"number", issue.GetNumber(), "node_id", issue.GetNodeID(), "err", err)
			continue
		}
		slog.Info("github: deleted issue", "number", issue.GetNumber())
		deleted++
	}
	return deleted, nil
}

// Package github wraps the GitHub calls made after a summary run.
//
// Client is built on go-github with a bearer-token RoundTripper:
//   - OwnerProfile(login) resolves the display name and blog of the owner
//   - UpdateRepository fills an empty description or homepage and adds the
//     default topics, each step skippable from configuration
//   - CleanupIssues deletes closed "status" issues that were closed within
//     15 minutes of being opened and carry exactly one comment; deletion goes
//     through the GraphQL deleteIssue mutation because REST has no endpoint
//     for it
//
// Errors from individual deletions are logged and do not stop the cleanup.
package github

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv loads KEY=VALUE pairs from the given .env files into the process
// environment. Variables already set are not overridden. Missing files are
// ignored.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load env %q: %w", p, err)
		}
	}
	return nil
}

// OwnerRepo returns the repository coordinates. GITHUB_REPOSITORY
// (owner/repo) takes precedence over the owner and repo keys.
func (c *Config) OwnerRepo() (owner, repo string) {
	if v := os.Getenv("GITHUB_REPOSITORY"); v != "" {
		if o, r, ok := strings.Cut(v, "/"); ok && o != "" && r != "" {
			return o, r
		}
	}
	return c.Owner, c.Repo
}

// GitHubToken returns GH_PAT, falling back to GITHUB_TOKEN.
func GitHubToken() string {
	if v := os.Getenv("GH_PAT"); v != "" {
		return v
	}
	return os.Getenv("GITHUB_TOKEN")
}

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"github.com/upstatus/upstatus/pkg/logging"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultStartComment    = "<!--start: status pages-->"
	DefaultEndComment      = "<!--end: status pages-->"
	DefaultHistoryDir      = "history"
	DefaultSQLitePath      = "history/history.db"
	DefaultRedisKeyPrefix  = "upstatus:history:"
	DefaultCheckInterval   = 5 * time.Minute
	DefaultMaxResponseTime = 60000 // ms
	DefaultReadmeMessage   = ":pencil: Update summary in README [skip ci] [upptime]"
	DefaultSummaryMessage  = ":card_file_box: Update status summary [skip ci] [upptime]"
)

// Downtime estimation policies.
const (
	PolicyGap      = "gap"
	PolicyInterval = "interval"
)

// History backends.
const (
	BackendYAML     = "yaml"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// ErrNoSites is returned when the configuration lists no sites.
var ErrNoSites = errors.New("no sites configured")

// Config is the generator configuration. Keys follow the camelCase names used
// by existing .upptimerc.yml files.
type Config struct {
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`

	// Sites is processed in file order; output order matches it.
	Sites []Site `yaml:"sites"`

	StatusWebsite StatusWebsite `yaml:"status-website"`

	// I18n overrides README labels. Missing keys fall back to English defaults.
	I18n I18n `yaml:"i18n"`

	SummaryStartHTMLComment string `yaml:"summaryStartHtmlComment"`
	SummaryEndHTMLComment   string `yaml:"summaryEndHtmlComment"`

	SkipPoweredByReadme   bool `yaml:"skipPoweredByReadme"`
	SkipDescriptionUpdate bool `yaml:"skipDescriptionUpdate"`
	SkipTopicsUpdate      bool `yaml:"skipTopicsUpdate"`
	SkipHomepageUpdate    bool `yaml:"skipHomepageUpdate"`
	SkipDeleteIssues      bool `yaml:"skipDeleteIssues"`

	CommitMessages CommitMessages `yaml:"commitMessages"`

	History  HistoryConfig   `yaml:"history"`
	Downtime DowntimeConfig  `yaml:"downtime"`
	Log      logging.Options `yaml:"log"`
}

// Site describes one monitored endpoint.
type Site struct {
	Name string `yaml:"name"`

	// URL may contain $SECRET placeholders; such URLs are never linked.
	URL string `yaml:"url"`

	// Slug defaults to the slugified Name.
	Slug string `yaml:"slug"`

	// Icon overrides the favicon derived from the URL host.
	Icon string `yaml:"icon"`

	// MaxResponseTime is the latency in ms above which a successful check
	// counts as degraded. Defaults to DefaultMaxResponseTime.
	MaxResponseTime int `yaml:"maxResponseTime"`

	// ExpectedStatusCodes lists acceptable HTTP codes. Empty means 200–399.
	ExpectedStatusCodes []int `yaml:"expectedStatusCodes"`
}

// StatusWebsite holds settings of the generated status website.
type StatusWebsite struct {
	// CNAME replaces the default <owner>.github.io/<repo> address.
	CNAME string `yaml:"cname"`
}

// CommitMessages configures git commit messages and author.
type CommitMessages struct {
	ReadmeContent     string `yaml:"readmeContent"`
	SummaryJSON       string `yaml:"summaryJson"`
	CommitAuthorName  string `yaml:"commitAuthorName"`
	CommitAuthorEmail string `yaml:"commitAuthorEmail"`
}

// HistoryConfig selects where measurements are read from.
type HistoryConfig struct {
	// Backend is one of: yaml | sqlite | postgres | redis.
	Backend string `yaml:"backend"`

	// Dir holds <slug>.yml files for the yaml backend, relative to the repo root.
	Dir string `yaml:"dir"`

	// Path is the SQLite database file, relative to the repo root.
	Path string `yaml:"path"`

	// DSNEnv names the environment variable holding the postgres DSN or redis URL.
	DSNEnv string `yaml:"dsnEnv"`

	// KeyPrefix prefixes the per-slug sorted set key for the redis backend.
	KeyPrefix string `yaml:"keyPrefix"`
}

// DSN returns the connection string resolved from the environment.
func (h HistoryConfig) DSN() string {
	if h.DSNEnv == "" {
		return ""
	}
	return os.Getenv(h.DSNEnv)
}

// DowntimeConfig selects how daily minutes of downtime are estimated.
type DowntimeConfig struct {
	// Policy is one of: gap | interval.
	Policy string `yaml:"policy"`

	// CheckInterval is the probe period assumed by the interval policy.
	CheckInterval time.Duration `yaml:"checkInterval"`
}

// StartComment returns the configured summary start marker or the default.
func (c *Config) StartComment() string {
	if c.SummaryStartHTMLComment != "" {
		return c.SummaryStartHTMLComment
	}
	return DefaultStartComment
}

// EndComment returns the configured summary end marker or the default.
func (c *Config) EndComment() string {
	if c.SummaryEndHTMLComment != "" {
		return c.SummaryEndHTMLComment
	}
	return DefaultEndComment
}

// Website returns the status website address.
func (c *Config) Website() string {
	if c.StatusWebsite.CNAME != "" {
		return "https://" + c.StatusWebsite.CNAME
	}
	return fmt.Sprintf("https://%s.github.io/%s", c.Owner, c.Repo)
}

// Load reads and parses the YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	normalize(cfg)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		History: HistoryConfig{
			Backend:   BackendYAML,
			Dir:       DefaultHistoryDir,
			Path:      DefaultSQLitePath,
			KeyPrefix: DefaultRedisKeyPrefix,
		},
		Downtime: DowntimeConfig{
			Policy:        PolicyGap,
			CheckInterval: DefaultCheckInterval,
		},
		CommitMessages: CommitMessages{
			ReadmeContent: DefaultReadmeMessage,
			SummaryJSON:   DefaultSummaryMessage,
		},
	}
}

// normalize fills per-site derived fields.
func normalize(cfg *Config) {
	for i := range cfg.Sites {
		s := &cfg.Sites[i]
		if s.Slug == "" {
			s.Slug = slug.Make(s.Name)
		}
		if s.MaxResponseTime == 0 {
			s.MaxResponseTime = DefaultMaxResponseTime
		}
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if len(cfg.Sites) == 0 {
		return ErrNoSites
	}
	seen := make(map[string]int, len(cfg.Sites))
	for i, s := range cfg.Sites {
		if s.Name == "" {
			return fmt.Errorf("sites[%d]: name is required", i)
		}
		if s.URL == "" {
			return fmt.Errorf("sites[%d] %q: url is required", i, s.Name)
		}
		if s.Slug == "" {
			return fmt.Errorf("sites[%d] %q: cannot derive a slug from the name", i, s.Name)
		}
		if j, dup := seen[s.Slug]; dup {
			return fmt.Errorf("sites[%d] %q: slug %q already used by sites[%d]", i, s.Name, s.Slug, j)
		}
		seen[s.Slug] = i
		if s.MaxResponseTime < 0 {
			return fmt.Errorf("sites[%d] %q: maxResponseTime must not be negative", i, s.Name)
		}
		for _, code := range s.ExpectedStatusCodes {
			if code < 100 || code > 599 {
				return fmt.Errorf("sites[%d] %q: expected status code %d out of range", i, s.Name, code)
			}
		}
	}
	switch cfg.History.Backend {
	case BackendYAML, BackendSQLite:
	case BackendPostgres, BackendRedis:
		if cfg.History.DSNEnv == "" {
			return fmt.Errorf("history.dsnEnv is required for backend %q", cfg.History.Backend)
		}
	default:
		return fmt.Errorf("history.backend %q unknown: want yaml|sqlite|postgres|redis", cfg.History.Backend)
	}
	switch cfg.Downtime.Policy {
	case PolicyGap, PolicyInterval:
	default:
		return fmt.Errorf("downtime.policy %q unknown: want gap|interval", cfg.Downtime.Policy)
	}
	if cfg.Downtime.CheckInterval <= 0 {
		return fmt.Errorf("downtime.checkInterval must be positive")
	}
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return err
	}
	return nil
}

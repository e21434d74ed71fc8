// Package config loads and watches the generator configuration (.upptimerc.yml).
//
// Top-level types:
//   - Config: owner, repo, sites [], status-website, i18n, summary markers,
//     skip* flags, commitMessages, history, downtime, log
//   - Site: name, url, slug, icon, maxResponseTime, expectedStatusCodes
//   - HistoryConfig: backend (yaml|sqlite|postgres|redis), dir, path, dsnEnv,
//     keyPrefix; DSN() resolves the connection string from the environment
//   - DowntimeConfig: policy (gap|interval), checkInterval
//
// Load(path) reads the YAML file, applies defaults, derives missing slugs from
// site names, then validates. A file without sites fails with ErrNoSites.
//
// LoadEnv reads .env files with godotenv; OwnerRepo and GitHubToken resolve
// GITHUB_REPOSITORY and GH_PAT / GITHUB_TOKEN.
//
// Watch(ctx, path, onChange) uses fsnotify and re-adds the watch after every
// event so atomic-save editors keep working.
package config

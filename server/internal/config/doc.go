// Package config loads the status server configuration from the `server:`
// section of server.yaml.
//
// Config fields:
//   - HTTPPort: port for the REST API, /metrics and the WebSocket hub (default 8080)
//   - SummaryFile: summary.json written by the generator (default history/summary.json)
//   - BroadcastInterval: WebSocket push period (default 5s)
//   - CORS.AllowedOrigins: origins allowed by the API (default "*")
//   - Auth: optional API key ("apikey" mode, key read from key_env)
//   - Alerts: status-change webhooks (slack | teams | http) and cooldown
//   - Log: level, format and optional rotating file
//
// Load(path) applies defaults before unmarshalling, then validates.
package config

// Package alerts turns site status changes between summary reloads into
// notifications. A site going down fires a critical alert, a site becoming
// degraded fires a warning, and a return to up resolves the open alert.
// Alerts are delivered to Slack, Teams or generic HTTP webhooks.
package alerts

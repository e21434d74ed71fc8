package config

// I18n maps README label keys to translated strings.
type I18n map[string]string

var defaultI18n = map[string]string{
	"url":                   "URL",
	"status":                "Status",
	"history":               "History",
	"responseTime":          "Response Time",
	"uptime":                "Uptime",
	"up":                    "🟩 Up",
	"degraded":              "🟨 Degraded",
	"down":                  "🟥 Down",
	"unknown":               "⬜ Unknown",
	"ms":                    "ms",
	"responseTimeGraphAlt":  "Response time graph",
	"responseTimeDay":       "24-hour response time",
	"responseTimeWeek":      "7-day response time",
	"responseTimeMonth":     "30-day response time",
	"responseTimeYear":      "1-year response time",
	"uptimeDay":             "24-hour uptime",
	"uptimeWeek":            "7-day uptime",
	"uptimeMonth":           "30-day uptime",
	"uptimeYear":            "1-year uptime",
	"liveStatus":            "Live Status",
	"liveStatusHtmlComment": "<!--live status-->",
	"allSystemsOperational": "🟩 All systems operational",
	"degradedPerformance":   "🟨 Degraded performance",
	"completeOutage":        "🟥 Complete outage",
	"partialOutage":         "🟧 Partial outage",
}

// Get returns the configured label for key, or the built-in default.
func (i I18n) Get(key string) string {
	if v, ok := i[key]; ok && v != "" {
		return v
	}
	return defaultI18n[key]
}

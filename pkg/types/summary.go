package types

// SiteSummary is the per-site record written to history/summary.json.
// Uptime fields are percentages in [0, 100] with two decimals; time fields
// are mean response times in whole milliseconds.
type SiteSummary struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Icon   string `json:"icon"`
	Slug   string `json:"slug"`
	Status Status `json:"status"`

	Uptime      float64 `json:"uptime"`
	UptimeDay   float64 `json:"uptimeDay"`
	UptimeWeek  float64 `json:"uptimeWeek"`
	UptimeMonth float64 `json:"uptimeMonth"`
	UptimeYear  float64 `json:"uptimeYear"`

	Time      int64 `json:"time"`
	TimeDay   int64 `json:"timeDay"`
	TimeWeek  int64 `json:"timeWeek"`
	TimeMonth int64 `json:"timeMonth"`
	TimeYear  int64 `json:"timeYear"`

	DailyMinutesDown int64 `json:"dailyMinutesDown"`
}

// TallySummaries counts the statuses of sites.
func TallySummaries(sites []SiteSummary) Tally {
	var t Tally
	for _, s := range sites {
		t.Add(s.Status)
	}
	return t
}

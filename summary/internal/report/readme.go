package report

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/upstatus/upstatus/pkg/types"
	"github.com/upstatus/upstatus/summary/internal/config"
)

// Markers and literals of the upptime README template.
const (
	TemplateRepo       = "upptime/upptime"
	LiveStatusComment  = "<!--live status-->"
	descriptionStart   = "<!--start: description-->"
	descriptionEnd     = "<!--end: description-->"
	docsStart          = "<!--start: docs-->"
	docsEnd            = "<!--end: docs-->"
	logoStart          = "<!--start: logo-->"
	logoEnd            = "<!--end: logo-->"
	templateCopyright  = "[MIT](./LICENSE) © [Koj](https://koj.co)"
	licenseHeading     = "## 📄 License\n\n- Code: [MIT](./LICENSE)"
	licenseWithPowered = "## 📄 License\n\n- Powered by: [Upptime](https://github.com/upptime/upptime)\n- Code: [MIT](./LICENSE)"
)

var badgeRe = regexp.MustCompile(`upptime/upptime/(workflows|actions)`)

// Readme renders the generated parts of README.md.
type Readme struct {
	Owner   string
	Repo    string
	Website string
	I18n    config.I18n

	StartComment string
	EndComment   string

	SkipPoweredBy bool

	// OwnerName is the markdown link used for the owner in the description
	// and copyright, e.g. "[Acme](https://acme.io)".
	OwnerName string
}

// NewReadme builds a Readme from the configuration and resolved coordinates.
func NewReadme(cfg *config.Config, owner, repo string) *Readme {
	website := cfg.Website()
	return &Readme{
		Owner:         owner,
		Repo:          repo,
		Website:       website,
		I18n:          cfg.I18n,
		StartComment:  cfg.StartComment(),
		EndComment:    cfg.EndComment(),
		SkipPoweredBy: cfg.SkipPoweredByReadme,
		OwnerName:     fmt.Sprintf("[%s](%s)", owner, website),
	}
}

// IsTemplate reports whether the target repository is the template itself.
func (r *Readme) IsTemplate() bool {
	return r.Owner+"/"+r.Repo == TemplateRepo
}

// NeedsOwnerProfile reports whether doc still carries template text that
// should name the owner, in which case the caller should resolve OwnerName
// from the owner's GitHub profile before Render.
func NeedsOwnerProfile(doc string) bool {
	return strings.Contains(doc, templateCopyright) || strings.Contains(doc, descriptionStart)
}

// Render returns doc with the status table, template customisation (outside
// the template repository) and live status line applied.
func (r *Readme) Render(doc string, pages []types.SiteSummary, tally types.Tally) string {
	if out, ok := ReplaceRegion(doc, r.StartComment, r.EndComment, "\n"+r.Table(pages)+"\n"); ok {
		doc = out
	}
	if !r.IsTemplate() {
		doc = r.customize(doc)
	}
	return r.LiveStatus(doc, tally)
}

// Table renders the status table including its header comments.
func (r *Readme) Table(pages []types.SiteSummary) string {
	i := r.I18n
	var b strings.Builder
	b.WriteString("<!-- This summary is generated by upstatus -->\n")
	b.WriteString("<!-- Do not edit this manually, your changes will be overwritten -->\n")
	b.WriteString("<!-- prettier-ignore -->\n")
	fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
		i.Get("url"), i.Get("status"), i.Get("history"), i.Get("responseTime"), i.Get("uptime"))
	b.WriteString("| --- | ------ | ------- | ------------- | ------ |")
	for _, p := range pages {
		b.WriteString("\n")
		b.WriteString(r.row(p))
	}
	return b.String()
}

func (r *Readme) row(p types.SiteSummary) string {
	i := r.I18n
	name := fmt.Sprintf("[%s](%s)", p.Name, p.URL)
	if strings.Contains(p.URL, "$") {
		name = p.Name
	}
	history := fmt.Sprintf("https://github.com/%s/%s/commits/HEAD/history/%s.yml", r.Owner, r.Repo, p.Slug)
	page := fmt.Sprintf("%s/history/%s", r.Website, p.Slug)

	responseBadges := []string{
		r.badge(page, i.Get("responseTime"), fmtMs(p.Time), p.Slug, "response-time"),
		r.badge(page, i.Get("responseTimeDay"), fmtMs(p.TimeDay), p.Slug, "response-time-day"),
		r.badge(page, i.Get("responseTimeWeek"), fmtMs(p.TimeWeek), p.Slug, "response-time-week"),
		r.badge(page, i.Get("responseTimeMonth"), fmtMs(p.TimeMonth), p.Slug, "response-time-month"),
		r.badge(page, i.Get("responseTimeYear"), fmtMs(p.TimeYear), p.Slug, "response-time-year"),
	}
	uptimeBadges := []string{
		r.badge(page, i.Get("uptime"), FormatPercent(p.Uptime), p.Slug, "uptime"),
		r.badge(page, i.Get("uptimeDay"), FormatPercent(p.UptimeDay), p.Slug, "uptime-day"),
		r.badge(page, i.Get("uptimeWeek"), FormatPercent(p.UptimeWeek), p.Slug, "uptime-week"),
		r.badge(page, i.Get("uptimeMonth"), FormatPercent(p.UptimeMonth), p.Slug, "uptime-month"),
		r.badge(page, i.Get("uptimeYear"), FormatPercent(p.UptimeYear), p.Slug, "uptime-year"),
	}

	return fmt.Sprintf(
		"| <img alt=\"\" src=\"%s\" height=\"13\"> %s | %s | [%s.yml](%s) | "+
			"<details><summary><img alt=\"%s\" src=\"./graphs/%s/response-time-week.png\" height=\"20\"> %d%s</summary><br>%s</details> | "+
			"<details><summary><a href=\"%s\">%s</a></summary>%s</details>",
		p.Icon, name, r.statusLabel(p.Status), p.Slug, history,
		i.Get("responseTimeGraphAlt"), p.Slug, p.TimeWeek, i.Get("ms"), strings.Join(responseBadges, "<br>"),
		page, FormatPercent(p.UptimeWeek), strings.Join(uptimeBadges, "<br>"),
	)
}

// badge links a shields.io endpoint badge served from the repository's api/ directory.
func (r *Readme) badge(page, label, value, slug, file string) string {
	endpoint := fmt.Sprintf("https%%3A%%2F%%2Fraw.githubusercontent.com%%2F%s%%2F%s%%2FHEAD%%2Fapi%%2F%s%%2F%s.json",
		r.Owner, r.Repo, slug, file)
	return fmt.Sprintf("<a href=\"%s\"><img alt=\"%s %s\" src=\"https://img.shields.io/endpoint?url=%s\"></a>",
		page, label, value, endpoint)
}

func (r *Readme) statusLabel(s types.Status) string {
	switch s {
	case types.StatusUp:
		return r.I18n.Get("up")
	case types.StatusDegraded:
		return r.I18n.Get("degraded")
	case types.StatusDown:
		return r.I18n.Get("down")
	default:
		return r.I18n.Get("unknown")
	}
}

// customize applies the one-time cleanup of template README content.
func (r *Readme) customize(doc string) string {
	i := r.I18n
	hasDescription := strings.Contains(doc, descriptionStart)
	liveHeading := "## [📈 " + i.Get("liveStatus") + "]"

	lines := strings.Split(doc, "\n")
	out := make([]string, 0, len(lines))
	for idx, line := range lines {
		switch {
		case idx == 0 && strings.Contains(line, "https://upptime.js.org"):
			line = fmt.Sprintf("# [📈 %s](%s): %s **%s**",
				i.Get("liveStatus"), r.Website, i.Get("liveStatusHtmlComment"), i.Get("allSystemsOperational"))
		case strings.Contains(line, "[![Summary CI](https://github.com") && hasDescription:
			line += fmt.Sprintf("\n\nWith [Upptime](https://upptime.js.org), you can get your own unlimited and free uptime monitor and status page, powered entirely by a GitHub repository. "+
				"We use [Issues](https://github.com/%[1]s/%[2]s/issues) as incident reports, [Actions](https://github.com/%[1]s/%[2]s/actions) as uptime monitors, and [Pages](%[3]s) for the status page.",
				r.Owner, r.Repo, r.Website)
		}
		if strings.HasPrefix(line, liveHeading) {
			continue
		}
		out = append(out, line)
	}
	doc = strings.Join(out, "\n")

	doc, _ = ReplaceBlock(doc, docsStart, docsEnd, fmt.Sprintf("[**Visit our status website →**](%s)", r.Website))
	doc, _ = ReplaceBlock(doc, logoStart, logoEnd, "")

	if NeedsOwnerProfile(doc) {
		doc, _ = ReplaceBlock(doc, descriptionStart, descriptionEnd, fmt.Sprintf(
			"This repository contains the open-source uptime monitor and status page for %s, powered by [Upptime](https://github.com/upptime/upptime).",
			r.OwnerName))
		doc = strings.Replace(doc, templateCopyright, "[MIT](./LICENSE) © "+r.OwnerName, 1)
		if !r.SkipPoweredBy {
			doc = strings.Replace(doc, licenseHeading, licenseWithPowered, 1)
		}
	}

	return badgeRe.ReplaceAllString(doc, r.Owner+"/"+r.Repo+"/$1")
}

// LiveStatus rewrites every line carrying the live status marker with the
// fleet status label.
func (r *Readme) LiveStatus(doc string, tally types.Tally) string {
	label := r.fleetLabel(tally.Status())
	lines := strings.Split(doc, "\n")
	for idx, line := range lines {
		if before, _, found := strings.Cut(line, LiveStatusComment); found {
			lines[idx] = fmt.Sprintf("%s%s **%s**", before, LiveStatusComment, label)
		}
	}
	return strings.Join(lines, "\n")
}

func (r *Readme) fleetLabel(s types.FleetStatus) string {
	switch s {
	case types.FleetDegraded:
		return r.I18n.Get("degradedPerformance")
	case types.FleetComplete:
		return r.I18n.Get("completeOutage")
	case types.FleetPartial:
		return r.I18n.Get("partialOutage")
	default:
		return r.I18n.Get("allSystemsOperational")
	}
}

// PlainName strips the link from a markdown "[name](url)" owner name.
func PlainName(ownerName string) string {
	name, _, _ := strings.Cut(ownerName, "]")
	return strings.TrimPrefix(name, "[")
}

// FormatPercent renders an uptime value as "99.95%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

func fmtMs(v int64) string {
	return fmt.Sprintf("%d", v)
}

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	sm "github.com/dmitrijs2005/airpass/internal/server/models"
	"github.com/dmitrijs2005/airpass/internal/server/risk"
)

var (
	colorLow      = lipgloss.Color("#95E1A3")
	colorModerate = lipgloss.Color("#FFE66D")
	colorHigh     = lipgloss.Color("#FF6B6B")
	colorMuted    = lipgloss.Color("#888888")
	colorPrimary  = lipgloss.Color("#4ECDC4")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	tipStyle    = lipgloss.NewStyle().PaddingLeft(2)
)

func levelStyle(level string) lipgloss.Style {
	switch level {
	case risk.Low:
		return lipgloss.NewStyle().Foreground(colorLow)
	case risk.Moderate:
		return lipgloss.NewStyle().Foreground(colorModerate)
	case risk.High:
		return lipgloss.NewStyle().Bold(true).Foreground(colorHigh)
	}
	return lipgloss.NewStyle()
}

func renderLevel(level string) string {
	return levelStyle(level).Render(level)
}

func renderSummary(s *sm.ExposureSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Score %d (%s)  +%d points  streak %d (best %d)",
		s.Score, renderLevel(s.RiskLevel), s.Points, s.Streak, s.BestStreak)
	for _, tip := range s.Tips {
		b.WriteString("\n" + tipStyle.Render("• "+tip))
	}
	return b.String()
}

func renderPassport(v *sm.PassportView) string {
	if v.Profile == nil {
		return "No passport yet. Use 'log' to record your first exposure."
	}
	p := v.Profile

	var b strings.Builder
	title := "Air Passport"
	if p.Nickname != "" {
		title += " · " + p.Nickname
	}
	if p.HomeCity != "" {
		title += " (" + p.HomeCity + ")"
	}
	b.WriteString(headerStyle.Render(title) + "\n")
	fmt.Fprintf(&b, "Points %d  streak %d  best %d\n", p.Points, p.Streak, p.BestStreak)
	if v.AverageScore != nil {
		fmt.Fprintf(&b, "Average score %d\n", *v.AverageScore)
	}
	if len(v.Exposures) == 0 {
		b.WriteString(mutedStyle.Render("No exposures logged yet."))
		return b.String()
	}
	b.WriteString(mutedStyle.Render("Recent exposures:"))
	for _, e := range v.Exposures {
		name := e.LocationName
		if name == "" {
			name = fmt.Sprintf("%.4f, %.4f", e.Lat, e.Lon)
		}
		fmt.Fprintf(&b, "\n  %s  %-24s %3d %s", formatMillis(e.Timestamp), name, e.Score, renderLevel(e.RiskLevel))
	}
	return b.String()
}

func renderInsights(v *sm.InsightsView) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Insights") + "\n")
	fmt.Fprintf(&b, "Clean-air streak %d day(s), from %d sample(s)", v.CleanStreak, v.SampleCount)
	if len(v.Trend) == 0 {
		return b.String()
	}
	b.WriteString("\n" + mutedStyle.Render("Daily average score:"))
	for _, p := range v.Trend {
		bar := strings.Repeat("█", (p.Average+9)/10)
		fmt.Fprintf(&b, "\n  %s %3d %s", p.Day, p.Average, levelStyle(risk.Level(p.Average)).Render(bar))
	}
	return b.String()
}

func renderHealth(hp *sm.HealthProfile) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Health profile"))
	if !hp.IsComplete {
		b.WriteString(" " + mutedStyle.Render("(incomplete)"))
	}
	if hp.Age != nil {
		fmt.Fprintf(&b, "\n  age: %d", *hp.Age)
	}
	for _, kv := range [][2]string{
		{"gender", hp.Gender},
		{"activity", hp.ActivityLevel},
		{"outdoor exposure", hp.OutdoorExposure},
		{"sensitivity", hp.Sensitivity},
		{"conditions", strings.Join(hp.Conditions, ", ")},
	} {
		if kv[1] != "" {
			fmt.Fprintf(&b, "\n  %s: %s", kv[0], kv[1])
		}
	}
	return b.String()
}

func renderReadings(list []*sm.AirQualityReading) string {
	if len(list) == 0 {
		return "No readings recorded."
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("Air-quality history"))
	for _, r := range list {
		fmt.Fprintf(&b, "\n  %s  AQI %3d %-10s %s", formatMillis(r.Timestamp), r.AQI, renderLevel(r.RiskLevel), r.LocationName)
	}
	return b.String()
}

func renderDays(days []sm.DaySummary) string {
	if len(days) == 0 {
		return "No readings in that period."
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("Daily summary"))
	for _, d := range days {
		fmt.Fprintf(&b, "\n  %s  avg %3d  max %3d  (%d samples)", d.Date, d.AverageAQI, d.MaxAQI, d.Samples)
	}
	return b.String()
}

func renderExport(e *sm.HistoryExport) string {
	s := fmt.Sprintf("%s  %s  %d row(s)  %s", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Status, e.Rows, e.StorageKey)
	if e.URL != "" {
		s += "\n  " + e.URL
		if e.ExpiresAt != nil {
			s += mutedStyle.Render(" (link valid until " + e.ExpiresAt.Local().Format("15:04") + ")")
		}
	}
	return s
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

// internal/extract/alerts.go
package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Alert is one actionable condition detected in a research answer.
type Alert struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type alertRule struct {
	alertType string
	pattern   *regexp.Regexp
}

var weatherAlertRules = []alertRule{
	{"drought", regexp.MustCompile(`(?i)\b(drought|dry spell|water (?:shortage|stress)|below[- ]average rain)`)},
	{"flood", regexp.MustCompile(`(?i)\b(flood\w*|heavy rain\w*|waterlogg\w*|excessive (?:rain|precipitation))`)},
	{"storm", regexp.MustCompile(`(?i)\b(storm|cyclone|hurricane|strong wind|hail)`)},
	{"temperature", regexp.MustCompile(`(?i)\b(heat ?wave|frost|extreme (?:heat|cold)|temperature (?:spike|drop))`)},
	{"pest", regexp.MustCompile(`(?i)\b(locust|armyworm|pest outbreak|infestation risk)`)},
}

var priceAlertRules = []alertRule{
	{"price_increase", regexp.MustCompile(`(?i)\b(price\w*\s+(?:(?:are|is|have|has)\s+)?(?:ris\w+|surg\w+|increas\w+|climb\w+)|(?:rising|surging|higher)\s+prices?)`)},
	{"price_decrease", regexp.MustCompile(`(?i)\b(price\w*\s+(?:(?:are|is|have|has)\s+)?(?:fall\w+|drop\w+|declin\w+|decreas\w+)|(?:falling|dropping|lower)\s+prices?)`)},
	{"volatility", regexp.MustCompile(`(?i)\b(volatil\w+|price swing|fluctuat\w+)`)},
	{"shortage", regexp.MustCompile(`(?i)\b(shortage|scarcity|supply (?:constraint|disruption|deficit))`)},
	{"surplus", regexp.MustCompile(`(?i)\b(surplus|oversupply|glut|bumper harvest)`)},
}

var highSeverityPattern = regexp.MustCompile(`(?i)\b(severe|critical|urgent|emergency|extreme|major)\b`)

// WeatherAlerts detects weather risk conditions in research text, at most
// one alert per condition type.
func WeatherAlerts(text string) []Alert {
	return detectAlerts(text, weatherAlertRules)
}

// PriceAlerts detects market price conditions in research text, at most
// one alert per condition type.
func PriceAlerts(text string) []Alert {
	return detectAlerts(text, priceAlertRules)
}

func detectAlerts(text string, rules []alertRule) []Alert {
	var alerts []Alert
	for _, rule := range rules {
		loc := rule.pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		alerts = append(alerts, Alert{
			Type:     rule.alertType,
			Severity: severityAround(text, loc[0]),
			Message:  snippetAround(text, loc[0]),
		})
	}
	return alerts
}

// severityAround inspects the sentence neighborhood of a match for
// escalating language.
func severityAround(text string, pos int) string {
	start := runeFloor(text, pos-80)
	end := runeCeil(text, pos+80)
	if highSeverityPattern.MatchString(text[start:end]) {
		return "high"
	}
	return "medium"
}

// snippetAround returns a trimmed excerpt centered on the match for the
// alert message.
func snippetAround(text string, pos int) string {
	start := runeFloor(text, pos-40)
	end := runeCeil(text, pos+120)
	snippet := strings.TrimSpace(strings.ReplaceAll(text[start:end], "\n", " "))
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(text) {
		snippet = snippet + "..."
	}
	return snippet
}

// runeFloor clamps pos into [0, len(text)] and walks back to the nearest
// rune start so byte slicing never splits a multi-byte character.
func runeFloor(text string, pos int) int {
	if pos < 0 {
		return 0
	}
	if pos >= len(text) {
		return len(text)
	}
	for pos > 0 && !utf8.RuneStart(text[pos]) {
		pos--
	}
	return pos
}

// runeCeil clamps pos into [0, len(text)] and walks forward to the
// nearest rune start.
func runeCeil(text string, pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(text) {
		return len(text)
	}
	for pos < len(text) && !utf8.RuneStart(text[pos]) {
		pos++
	}
	return pos
}

// internal/extract/extractor.go

// Package extract pulls structured fields out of free-text provider
// answers with ordered regex rules. It never fails: when nothing matches,
// fields keep their documented defaults.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// StructuredAnalysis is the parsed form of a crop-image analysis answer.
// QualityScore is nil when the answer carries no usable score; a present
// zero means the answer really scored zero.
type StructuredAnalysis struct {
	HealthStatus    string   `json:"health_status"`
	QualityScore    *float64 `json:"quality_score"`
	QualityGrade    string   `json:"quality_grade"`
	GrowthStage     string   `json:"growth_stage"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
	Confidence      float64  `json:"confidence"`
}

var (
	healthPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)health\s*(?:status)?\s*[:\-]\s*([a-z ]+)`),
		regexp.MustCompile(`(?i)\b(excellent|good|fair|poor|critical)\b\s+(?:overall\s+)?(?:health|condition)`),
		regexp.MustCompile(`(?i)(?:crop|plant)s?\s+(?:appear|look|are)\s+(healthy|unhealthy|stressed|diseased)`),
	}

	scorePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)quality\s*score\s*[:\-]?\s*(\d{1,3}(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)score\s*(?:of)?\s*[:\-]?\s*(\d{1,3}(?:\.\d+)?)\s*(?:/|out of)\s*100`),
		regexp.MustCompile(`(?i)(\d{1,3}(?:\.\d+)?)\s*(?:/|out of)\s*100`),
	}

	// Market grades are A, B, or C only; anything else in the answer is
	// left unextracted.
	gradePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)grade\s*[:\-]?\s*([A-C])\b`),
		regexp.MustCompile(`(?i)\b([A-C])[- ]grade\b`),
	}

	issueRules = []struct {
		label   string
		pattern *regexp.Regexp
	}{
		{"pest infestation", regexp.MustCompile(`(?i)\b(?:pest|insect|aphid|weevil|borer|caterpillar)s?\b`)},
		{"disease symptoms", regexp.MustCompile(`(?i)\b(?:disease|blight|rot|mold|mould|fungal|fungus|mildew|wilt)\b`)},
		{"nutrient deficiency", regexp.MustCompile(`(?i)\b(?:deficien\w+|yellowing|chlorosis|stunted)\b`)},
		{"physical damage", regexp.MustCompile(`(?i)\b(?:damage|bruis\w+|crack\w+|lesion|wound)\w*\b`)},
	}

	// growthLadder is checked in maturity order; the first stage mentioned
	// wins.
	growthLadder = []string{"seedling", "vegetative", "flowering", "fruiting", "mature", "harvest"}

	// actionVerbPattern marks a sentence as actionable advice.
	actionVerbPattern = regexp.MustCompile(`(?i)\b(apply|use|spray|water|fertilize|prune|harvest|treat|monitor|ensure|consider|increase|reduce|inspect|remove|irrigate|improve|avoid|rotate)\b`)

	sentenceSplitPattern = regexp.MustCompile(`[.!?\n]+`)
	listMarkerPattern    = regexp.MustCompile(`^\s*[-*\d]+[.)]?\s*`)
)

// ParseAnalysis extracts structured crop analysis fields from free text.
func ParseAnalysis(text string) StructuredAnalysis {
	result := StructuredAnalysis{
		HealthStatus: "assessment needed",
		GrowthStage:  "undetermined",
	}

	matched := 0

	for _, p := range healthPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			result.HealthStatus = strings.ToLower(strings.TrimSpace(m[1]))
			matched++
			break
		}
	}

	for _, p := range scorePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			if score, err := strconv.ParseFloat(m[1], 64); err == nil && score >= 0 && score <= 100 {
				result.QualityScore = &score
				matched++
				break
			}
		}
	}

	for _, p := range gradePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			result.QualityGrade = strings.ToUpper(strings.TrimSpace(m[1]))
			matched++
			break
		}
	}

	lower := strings.ToLower(text)
	for _, stage := range growthLadder {
		if strings.Contains(lower, stage) {
			result.GrowthStage = stage
			matched++
			break
		}
	}

	// One entry per issue category regardless of how often it is mentioned,
	// in rule order.
	for _, rule := range issueRules {
		if rule.pattern.MatchString(text) {
			result.Issues = append(result.Issues, rule.label)
		}
	}
	if len(result.Issues) > 0 {
		matched++
	}

	result.Recommendations = extractRecommendations(text)
	if len(result.Recommendations) > 0 {
		matched++
	}

	// Six rule families feed the extraction; confidence is the matched
	// share, clamped to [0,1].
	result.Confidence = float64(matched) / 6.0
	if result.Confidence > 1 {
		result.Confidence = 1
	}

	return result
}

// extractRecommendations keeps sentences carrying an action verb, in
// source order, capped at five. List numbering is stripped.
func extractRecommendations(text string) []string {
	var out []string
	for _, sentence := range sentenceSplitPattern.Split(text, -1) {
		sentence = strings.TrimSpace(listMarkerPattern.ReplaceAllString(sentence, ""))
		if len(sentence) < 10 || !actionVerbPattern.MatchString(sentence) {
			continue
		}
		out = append(out, sentence)
		if len(out) == 5 {
			break
		}
	}
	return out
}

// CountInsights counts numbered list items in a research answer.
func CountInsights(text string) int {
	return len(regexp.MustCompile(`(?m)^\s*\d+\.`).FindAllString(text, -1))
}

// CountReports counts forward-looking statements in a research answer.
func CountReports(text string) int {
	return len(regexp.MustCompile(`(?i)\b(forecast|outlook|prediction|warning)\b`).FindAllString(text, -1))
}

// CountOpportunities counts opportunity mentions, capped at 20 so a
// repetitive answer cannot inflate the aggregate.
func CountOpportunities(text string) int {
	n := len(regexp.MustCompile(`(?i)\b(opportunit\w+|demand|export|buyer)\b`).FindAllString(text, -1))
	if n > 20 {
		return 20
	}
	return n
}

// TradeOpportunities extracts up to ten numbered lines from a trade
// research answer, stripped of their numbering.
func TradeOpportunities(text string) []string {
	var out []string
	for _, m := range regexp.MustCompile(`(?m)^\s*\d+[.)]\s*(.{10,300})`).FindAllStringSubmatch(text, -1) {
		out = append(out, strings.TrimSpace(m[1]))
		if len(out) == 10 {
			break
		}
	}
	return out
}

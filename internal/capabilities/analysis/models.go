// internal/capabilities/analysis/models.go
package analysis

import (
	"time"

	"agrimarket-ai/internal/extract"
)

// Analysis sub-types.
const (
	TypeGeneral        = "general"
	TypeHealth         = "health"
	TypeQuality        = "quality"
	TypePest           = "pest"
	TypeMarketResearch = "market_research"
)

// AnalysisRequest asks for an assessment of a crop image.
type AnalysisRequest struct {
	ImageURL     string `json:"imageUrl"`
	AnalysisType string `json:"analysisType,omitempty"`
}

func (r AnalysisRequest) params() map[string]interface{} {
	return map[string]interface{}{
		"imageUrl":     r.ImageURL,
		"analysisType": r.AnalysisType,
	}
}

// AnalysisResult carries the raw provider answer plus the structured
// fields extracted from it.
type AnalysisResult struct {
	AnalysisType  string                     `json:"analysis_type"`
	RawText       string                     `json:"raw_text"`
	Structured    extract.StructuredAnalysis `json:"structured"`
	MarketContext *MarketContext             `json:"market_context,omitempty"`
	Source        string                     `json:"source"` // "generated" or "cache"
	Model         string                     `json:"model,omitempty"`
	EstimatedCost float64                    `json:"estimated_cost"`
	GeneratedAt   time.Time                  `json:"generated_at"`
}

// MarketContext is the research half of a market_research analysis: the
// crop identified in the image plus current market conditions for it.
type MarketContext struct {
	IdentifiedCrop string   `json:"identified_crop"`
	Summary        string   `json:"summary"`
	Citations      []string `json:"citations,omitempty"`
	InsightCount   int      `json:"insight_count"`
}

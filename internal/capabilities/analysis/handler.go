// internal/capabilities/analysis/handler.go

// Package analysis assesses crop images through the vision model and,
// for market research, enriches the assessment with live research data.
package analysis

import (
	"context"
	"strings"
	"time"

	"agrimarket-ai/internal/cache"
	"agrimarket-ai/internal/common/errors"
	"agrimarket-ai/internal/common/logger"
	"agrimarket-ai/internal/common/metrics"
	"agrimarket-ai/internal/common/providers"
	"agrimarket-ai/internal/common/validation"
	"agrimarket-ai/internal/cost"
	"agrimarket-ai/internal/extract"
	"agrimarket-ai/internal/router"
)

// Handler orchestrates crop-image analysis requests.
type Handler struct {
	vision   providers.VisionAnalyzer
	research providers.Researcher
	store    *cache.Store
	logger   logger.Logger
}

func NewHandler(vision providers.VisionAnalyzer, research providers.Researcher, store *cache.Store, log logger.Logger) *Handler {
	return &Handler{
		vision:   vision,
		research: research,
		store:    store,
		logger:   log.With(map[string]interface{}{"capability": "analysis"}),
	}
}

// Analyze runs the requested analysis over a crop image. Plain analyses
// are a single vision call; market_research chains crop identification,
// live market research, and the visual assessment into one composite
// result with its own, shorter-lived cache policy.
func (h *Handler) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	if req.AnalysisType == "" {
		req.AnalysisType = TypeGeneral
	}

	params := req.params()
	if err := validation.ValidatePayload(router.CapabilityImageAnalysis, params); err != nil {
		metrics.CapabilityRequests.WithLabelValues(router.CapabilityImageAnalysis, "invalid").Inc()
		return nil, errors.NewInvalidPayloadError(err.Error())
	}

	kind := "image_analysis"
	if req.AnalysisType == TypeMarketResearch {
		kind = "market_research"
	}

	key := cache.Key(cache.NamespaceImageAnalysis, kind, params)
	var cached AnalysisResult
	if h.store.Get(ctx, cache.NamespaceImageAnalysis, key, &cached) {
		cached.Source = "cache"
		metrics.CapabilityRequests.WithLabelValues(router.CapabilityImageAnalysis, "cache_hit").Inc()
		return &cached, nil
	}

	var result *AnalysisResult
	var err error
	if req.AnalysisType == TypeMarketResearch {
		result, err = h.marketResearch(ctx, req)
	} else {
		result, err = h.visualAnalysis(ctx, req)
	}
	if err != nil {
		metrics.CapabilityRequests.WithLabelValues(router.CapabilityImageAnalysis, "error").Inc()
		return nil, err
	}

	h.store.Set(ctx, cache.NamespaceImageAnalysis, key, result, cache.TTLFor(kind))
	metrics.CapabilityRequests.WithLabelValues(router.CapabilityImageAnalysis, "success").Inc()
	return result, nil
}

func (h *Handler) visualAnalysis(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	prompt, ok := analysisPrompts[req.AnalysisType]
	if !ok {
		prompt = analysisPrompts[TypeGeneral]
	}

	res, err := h.vision.AnalyzeImage(ctx, req.ImageURL, prompt)
	if err != nil {
		h.logger.Error("vision analysis failed", map[string]interface{}{
			"analysis_type": req.AnalysisType,
			"error":         err.Error(),
		})
		return nil, errors.NewAnalysisUnavailableError(req.AnalysisType, err)
	}

	estimated := cost.Estimate(res.Usage)
	cost.Record("generative", estimated)

	return &AnalysisResult{
		AnalysisType:  req.AnalysisType,
		RawText:       res.Text,
		Structured:    extract.ParseAnalysis(res.Text),
		Source:        "generated",
		Model:         res.Model,
		EstimatedCost: estimated,
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

// marketResearch identifies the crop, researches its market, then runs
// the visual quality assessment. The identification and assessment calls
// must succeed; research degradation leaves the market context partially
// filled rather than failing the whole analysis.
func (h *Handler) marketResearch(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	identified, err := h.vision.AnalyzeImage(ctx, req.ImageURL, cropIdentificationPrompt)
	if err != nil {
		return nil, errors.NewAnalysisUnavailableError(TypeMarketResearch, err)
	}
	crop := strings.TrimSpace(identified.Text)
	if crop == "" {
		crop = "the pictured produce"
	}

	totalCost := cost.Estimate(identified.Usage)

	marketCtx := &MarketContext{IdentifiedCrop: crop}
	research, err := h.research.Research(ctx, marketResearchPrompt(crop, ""))
	if err != nil {
		h.logger.Warn("market research degraded to visual-only analysis", map[string]interface{}{
			"crop":  crop,
			"error": err.Error(),
		})
	} else {
		marketCtx.Summary = research.Text
		marketCtx.Citations = research.Citations
		marketCtx.InsightCount = extract.CountInsights(research.Text)
		totalCost += cost.EstimateResearch()
		cost.Record("research", cost.EstimateResearch())
	}

	assessment, err := h.vision.AnalyzeImage(ctx, req.ImageURL, analysisPrompts[TypeQuality])
	if err != nil {
		return nil, errors.NewAnalysisUnavailableError(TypeMarketResearch, err)
	}
	totalCost += cost.Estimate(assessment.Usage)
	cost.Record("generative", cost.Estimate(identified.Usage)+cost.Estimate(assessment.Usage))

	return &AnalysisResult{
		AnalysisType:  TypeMarketResearch,
		RawText:       assessment.Text,
		Structured:    extract.ParseAnalysis(assessment.Text),
		MarketContext: marketCtx,
		Source:        "generated",
		Model:         assessment.Model,
		EstimatedCost: totalCost,
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

// internal/capabilities/intelligence/handler.go

// Package intelligence builds composite location reports by fanning out
// concurrent research calls across market, weather, price, and trade
// facets, then persisting and alerting on the aggregate.
package intelligence

import (
	"context"
	"fmt"
	"sync"
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

// AlertPublisher pushes detected alert conditions to subscribers.
// Publishing is best-effort; failures never affect the report.
type AlertPublisher interface {
	PublishJSON(ctx context.Context, subject string, payload interface{}) error
}

// Handler orchestrates location-intelligence requests.
type Handler struct {
	research providers.Researcher
	store    *cache.Store
	reports  *ReportStore
	alerts   AlertPublisher
	logger   logger.Logger
	now      func() time.Time
}

// NewHandler builds the intelligence orchestrator. reports and alerts may
// be nil when persistence or alerting is not configured.
func NewHandler(research providers.Researcher, store *cache.Store, reports *ReportStore, alerts AlertPublisher, log logger.Logger) *Handler {
	return &Handler{
		research: research,
		store:    store,
		reports:  reports,
		alerts:   alerts,
		logger:   log.With(map[string]interface{}{"capability": "intelligence"}),
		now:      time.Now,
	}
}

var facets = []string{FacetMarket, FacetWeather, FacetPrice, FacetTrade}

// Report fans out all four facets concurrently and always returns a
// complete aggregate: facets that fail are replaced with degraded
// placeholders. The aggregate is persisted and alert conditions are
// published after assembly, both best-effort.
func (h *Handler) Report(ctx context.Context, req IntelligenceRequest) (*LocationReport, error) {
	if err := validation.ValidatePayload(router.CapabilityLocationIntelligence, req.params()); err != nil {
		metrics.CapabilityRequests.WithLabelValues(router.CapabilityLocationIntelligence, "invalid").Inc()
		return nil, errors.NewInvalidPayloadError(err.Error())
	}

	results := make(map[string]*FacetReport, len(facets))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, facet := range facets {
		wg.Add(1)
		go func(facet string) {
			defer wg.Done()
			report := h.facet(ctx, facet, req)
			mu.Lock()
			results[facet] = report
			mu.Unlock()
		}(facet)
	}
	wg.Wait()

	report := &LocationReport{
		Location:    req.Location,
		Crops:       req.Crops,
		Market:      results[FacetMarket],
		Weather:     results[FacetWeather],
		Price:       results[FacetPrice],
		Trade:       results[FacetTrade],
		GeneratedAt: h.now().UTC(),
	}
	for _, f := range report.Facets() {
		if f.Source == "generated" {
			report.EstimatedCost += cost.EstimateResearch()
		}
	}

	h.persist(ctx, report)
	h.publishAlerts(ctx, report)

	metrics.CapabilityRequests.WithLabelValues(router.CapabilityLocationIntelligence, "success").Inc()
	return report, nil
}

// facet resolves one facet through its own cache key, so a regenerated
// report reuses fresh facets individually. Freshness is governed by the
// stored per-facet TTL alone; the key carries no time component.
func (h *Handler) facet(ctx context.Context, facet string, req IntelligenceRequest) *FacetReport {
	params := req.params()
	params["facet"] = facet

	key := cache.Key(cache.NamespaceMarket, facet, params)
	var cached FacetReport
	if h.store.Get(ctx, cache.NamespaceMarket, key, &cached) {
		cached.Source = "cache"
		return &cached
	}

	res, err := h.research.Research(ctx, facetPrompt(facet, req.Location, req.Crops))
	if err != nil {
		h.logger.Warn("facet degraded", map[string]interface{}{
			"facet":    facet,
			"location": req.Location,
			"error":    err.Error(),
		})
		now := h.now().UTC()
		return &FacetReport{
			Facet:       facet,
			Source:      "unavailable",
			Degraded:    true,
			GeneratedAt: now,
			NextUpdate:  now.Add(cache.TTLFor(facet)),
		}
	}

	cost.Record("research", cost.EstimateResearch())

	now := h.now().UTC()
	report := &FacetReport{
		Facet:            facet,
		Summary:          res.Text,
		Citations:        res.Citations,
		InsightCount:     extract.CountInsights(res.Text),
		ReportCount:      extract.CountReports(res.Text),
		OpportunityCount: extract.CountOpportunities(res.Text),
		Source:           "generated",
		GeneratedAt:      now,
		NextUpdate:       now.Add(cache.TTLFor(facet)),
	}

	switch facet {
	case FacetWeather:
		report.Alerts = extract.WeatherAlerts(res.Text)
	case FacetPrice:
		report.Alerts = extract.PriceAlerts(res.Text)
	case FacetTrade:
		report.Opportunities = extract.TradeOpportunities(res.Text)
	}

	h.store.Set(ctx, cache.NamespaceMarket, key, report, cache.TTLFor(facet))
	return report
}

func (h *Handler) persist(ctx context.Context, report *LocationReport) {
	if h.reports == nil {
		return
	}
	if err := h.reports.Save(ctx, report); err != nil {
		h.logger.Error("report persistence failed", map[string]interface{}{
			"location": report.Location,
			"error":    err.Error(),
		})
	}
}

func (h *Handler) publishAlerts(ctx context.Context, report *LocationReport) {
	if h.alerts == nil {
		return
	}
	alerts := report.AllAlerts()
	if len(alerts) == 0 {
		return
	}

	subject := fmt.Sprintf("Agricultural alerts for %s", report.Location)
	payload := map[string]interface{}{
		"location":     report.Location,
		"alerts":       alerts,
		"generated_at": report.GeneratedAt,
	}
	if err := h.alerts.PublishJSON(ctx, subject, payload); err != nil {
		h.logger.Warn("alert publish failed", map[string]interface{}{
			"location": report.Location,
			"error":    err.Error(),
		})
	}
}

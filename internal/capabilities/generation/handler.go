// internal/capabilities/generation/handler.go

// Package generation produces product descriptions and marketing copy
// through the generative text provider, with read-through caching.
package generation

import (
	"context"
	"time"

	"agrimarket-ai/internal/cache"
	"agrimarket-ai/internal/common/errors"
	"agrimarket-ai/internal/common/logger"
	"agrimarket-ai/internal/common/metrics"
	"agrimarket-ai/internal/common/providers"
	"agrimarket-ai/internal/common/validation"
	"agrimarket-ai/internal/cost"
	"agrimarket-ai/internal/router"
)

// Handler orchestrates text-generation requests.
type Handler struct {
	text   providers.TextGenerator
	store  *cache.Store
	logger logger.Logger
}

func NewHandler(text providers.TextGenerator, store *cache.Store, log logger.Logger) *Handler {
	return &Handler{
		text:   text,
		store:  store,
		logger: log.With(map[string]interface{}{"capability": "generation"}),
	}
}

// GenerateDescription returns a product description, serving a cached copy
// when a fresh one exists for the same product parameters.
func (h *Handler) GenerateDescription(ctx context.Context, req DescriptionRequest) (*ContentResult, error) {
	params := req.params()
	if err := validation.ValidatePayload(router.CapabilityTextDescription, params); err != nil {
		metrics.CapabilityRequests.WithLabelValues(router.CapabilityTextDescription, "invalid").Inc()
		return nil, errors.NewInvalidPayloadError(err.Error())
	}

	key := cache.Key(cache.NamespaceContent, "description", params)
	if cached := h.fromCache(ctx, key); cached != nil {
		metrics.CapabilityRequests.WithLabelValues(router.CapabilityTextDescription, "cache_hit").Inc()
		return cached, nil
	}

	result, err := h.generate(ctx, descriptionPrompt(req), "description", key)
	if err != nil {
		metrics.CapabilityRequests.WithLabelValues(router.CapabilityTextDescription, "error").Inc()
		return nil, err
	}

	metrics.CapabilityRequests.WithLabelValues(router.CapabilityTextDescription, "success").Inc()
	return result, nil
}

// GenerateMarketingCopy returns promotional copy for the requested copy
// type. Distinct copy types cache independently.
func (h *Handler) GenerateMarketingCopy(ctx context.Context, req MarketingCopyRequest) (*ContentResult, error) {
	if req.CopyType == "" {
		req.CopyType = CopyTypeGeneral
	}

	params := req.params()
	if err := validation.ValidatePayload(router.CapabilityMarketingCopy, params); err != nil {
		metrics.CapabilityRequests.WithLabelValues(router.CapabilityMarketingCopy, "invalid").Inc()
		return nil, errors.NewInvalidPayloadError(err.Error())
	}

	key := cache.Key(cache.NamespaceContent, "marketing_copy", params)
	if cached := h.fromCache(ctx, key); cached != nil {
		metrics.CapabilityRequests.WithLabelValues(router.CapabilityMarketingCopy, "cache_hit").Inc()
		return cached, nil
	}

	result, err := h.generate(ctx, marketingCopyPrompt(req), "marketing_copy", key)
	if err != nil {
		metrics.CapabilityRequests.WithLabelValues(router.CapabilityMarketingCopy, "error").Inc()
		return nil, err
	}

	metrics.CapabilityRequests.WithLabelValues(router.CapabilityMarketingCopy, "success").Inc()
	return result, nil
}

func (h *Handler) fromCache(ctx context.Context, key string) *ContentResult {
	var cached ContentResult
	if h.store.Get(ctx, cache.NamespaceContent, key, &cached) {
		cached.Source = "cache"
		return &cached
	}
	return nil
}

func (h *Handler) generate(ctx context.Context, prompt, kind, key string) (*ContentResult, error) {
	res, err := h.text.GenerateText(ctx, prompt)
	if err != nil {
		h.logger.Error("text generation failed", map[string]interface{}{
			"kind":  kind,
			"error": err.Error(),
		})
		return nil, errors.NewGenerationFailedError(err)
	}

	estimated := cost.Estimate(res.Usage)
	cost.Record("generative", estimated)

	result := &ContentResult{
		Content:       res.Text,
		Source:        "generated",
		Model:         res.Model,
		Usage:         res.Usage,
		EstimatedCost: estimated,
		GeneratedAt:   time.Now().UTC(),
	}

	h.store.Set(ctx, cache.NamespaceContent, key, result, cache.TTLFor(kind))

	h.logger.Info("content generated", map[string]interface{}{
		"kind":           kind,
		"model":          res.Model,
		"estimated_cost": estimated,
		"units":          res.Usage.TotalUnits(),
	})

	return result, nil
}

// internal/capabilities/image/handler.go

// Package image resolves product images through a tier-aware chain of
// AI generation, stock-photo search, and a final manual-upload fallback.
package image

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"agrimarket-ai/internal/cache"
	"agrimarket-ai/internal/common/errors"
	"agrimarket-ai/internal/common/logger"
	"agrimarket-ai/internal/common/metrics"
	"agrimarket-ai/internal/common/providers"
	"agrimarket-ai/internal/common/validation"
	"agrimarket-ai/internal/cost"
	"agrimarket-ai/internal/router"
)

// Resolution states. Every request walks a subset of these and ends in
// exactly one terminal outcome.
type state int

const (
	stateGenerate state = iota
	stateSearch
	stateDone
)

// Handler runs the image resolution chain.
type Handler struct {
	images  providers.ImageGenerator
	stock   providers.StockSearcher
	hosting providers.ImageHost
	store   *cache.Store
	logger  logger.Logger
}

func NewHandler(images providers.ImageGenerator, stock providers.StockSearcher, hosting providers.ImageHost, store *cache.Store, log logger.Logger) *Handler {
	return &Handler{
		images:  images,
		stock:   stock,
		hosting: hosting,
		store:   store,
		logger:  log.With(map[string]interface{}{"capability": "image"}),
	}
}

// Resolve returns a product image for the request's tier. Paying tiers
// enter at AI generation and fall back to stock search; free tiers go
// straight to stock search. When every source fails the result is the
// upload_required terminal, which is an answer, not an error, and is
// never cached.
func (h *Handler) Resolve(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	params := req.params()
	if err := validation.ValidatePayload(router.CapabilityProductImage, params); err != nil {
		metrics.CapabilityRequests.WithLabelValues(router.CapabilityProductImage, "invalid").Inc()
		return nil, errors.NewInvalidPayloadError(err.Error())
	}

	// Tier is part of the identity: a free caller must never be served a
	// result another tier's chain produced.
	keyParams := req.params()
	keyParams["tier"] = req.Tier
	key := cache.Key(cache.NamespaceProductImage, "product_image", keyParams)
	var cached ImageResult
	if h.store.Get(ctx, cache.NamespaceProductImage, key, &cached) {
		cached.Source = SourceCache
		metrics.CapabilityRequests.WithLabelValues(router.CapabilityProductImage, "cache_hit").Inc()
		return &cached, nil
	}

	current := stateSearch
	if router.AllowsAIGeneration(req.Tier) {
		current = stateGenerate
	}

	var result *ImageResult
	for current != stateDone {
		switch current {
		case stateGenerate:
			if generated, ok := h.tryGenerate(ctx, req); ok {
				result = generated
				current = stateDone
			} else {
				current = stateSearch
			}
		case stateSearch:
			if found, ok := h.trySearch(ctx, req); ok {
				result = found
			}
			current = stateDone
		}
	}

	if result == nil {
		result = &ImageResult{
			Source:      SourceUploadRequired,
			GeneratedAt: time.Now().UTC(),
		}
		metrics.CapabilityRequests.WithLabelValues(router.CapabilityProductImage, "upload_required").Inc()
		return result, nil
	}

	h.store.Set(ctx, cache.NamespaceProductImage, key, result, cache.TTLFor("product_image"))
	metrics.CapabilityRequests.WithLabelValues(router.CapabilityProductImage, "success").Inc()
	return result, nil
}

// tryGenerate runs AI generation plus the hosting upload. A failed upload
// counts as a failed generation so the chain can still fall back to stock.
func (h *Handler) tryGenerate(ctx context.Context, req ImageRequest) (*ImageResult, bool) {
	res, err := h.images.GenerateImage(ctx, imagePrompt(req))
	if err != nil {
		h.logger.Warn("image generation failed, falling back to stock search", map[string]interface{}{
			"product": req.ProductName,
			"error":   err.Error(),
		})
		return nil, false
	}

	publicID := fmt.Sprintf("product_%s", uuid.NewString())
	hostedURL, err := h.hosting.Upload(ctx, *res.Image, publicID)
	if err != nil {
		h.logger.Warn("hosting upload failed, falling back to stock search", map[string]interface{}{
			"product": req.ProductName,
			"error":   err.Error(),
		})
		return nil, false
	}

	estimated := cost.Estimate(res.Usage)
	cost.Record("generative", estimated)

	return &ImageResult{
		URL:           hostedURL,
		Images:        []ImageCandidate{{URL: hostedURL, Relevance: 1.0}},
		Source:        SourceAIGenerated,
		Model:         res.Model,
		EstimatedCost: estimated,
		GeneratedAt:   time.Now().UTC(),
	}, true
}

// trySearch looks for a relevant stock photo. Zero candidates or only
// irrelevant ones both mean no answer from this source.
func (h *Handler) trySearch(ctx context.Context, req ImageRequest) (*ImageResult, bool) {
	query := searchQuery(req)
	photos, err := h.stock.Search(ctx, query)
	if err != nil {
		h.logger.Warn("stock photo search failed", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return nil, false
	}

	accepted := acceptedCandidates(query, photos)
	if len(accepted) == 0 {
		h.logger.Info("no relevant stock photo found", map[string]interface{}{
			"query":      query,
			"candidates": len(photos),
		})
		return nil, false
	}

	return &ImageResult{
		URL:         accepted[0].URL,
		Images:      accepted,
		Source:      SourceStockVerified,
		GeneratedAt: time.Now().UTC(),
	}, true
}

func searchQuery(req ImageRequest) string {
	return strings.TrimSpace(req.ProductName + " " + req.Category + " agriculture")
}

func imagePrompt(req ImageRequest) string {
	style := req.Style
	if style == "" {
		style = "professional product photography"
	}
	background := req.Background
	if background == "" {
		background = "clean neutral background"
	}
	return fmt.Sprintf(
		"Generate a %s image of %s (%s) on a %s, well lit, suitable for an agricultural marketplace listing.",
		style, req.ProductName, req.Category, background,
	)
}

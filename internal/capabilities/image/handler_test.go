// internal/capabilities/image/handler_test.go
package image

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrimarket-ai/internal/cache"
	svcerrors "agrimarket-ai/internal/common/errors"
	"agrimarket-ai/internal/common/logger"
	"agrimarket-ai/internal/common/providers"
	"agrimarket-ai/internal/router"
)

type fakeImageGenerator struct {
	calls int
	fail  bool
}

func (f *fakeImageGenerator) GenerateImage(ctx context.Context, prompt string) (*providers.Result, error) {
	f.calls++
	if f.fail {
		return nil, providers.ErrCallFailed
	}
	return &providers.Result{
		Image: &providers.ImageData{Bytes: []byte("png"), MIMEType: "image/png"},
		Usage: providers.Usage{PromptUnits: 100},
		Model: "gemini-2.0-flash-exp",
	}, nil
}

type fakeStockSearcher struct {
	calls  int
	fail   bool
	photos []providers.StockPhoto
}

func (f *fakeStockSearcher) Search(ctx context.Context, query string) ([]providers.StockPhoto, error) {
	f.calls++
	if f.fail {
		return nil, providers.ErrCallFailed
	}
	return f.photos, nil
}

type fakeImageHost struct {
	calls int
	fail  bool
}

func (f *fakeImageHost) Upload(ctx context.Context, image providers.ImageData, publicID string) (string, error) {
	f.calls++
	if f.fail {
		return "", providers.ErrCallFailed
	}
	return fmt.Sprintf("https://cdn.example.com/%s.png", publicID), nil
}

func relevantPhotos() []providers.StockPhoto {
	return []providers.StockPhoto{
		{
			URL:            "https://img.example.com/tomatoes",
			ThumbURL:       "https://img.example.com/tomatoes-thumb",
			Description:    "fresh tomatoes agriculture harvest",
			Photographer:   "Ada",
			AttributionURL: "https://photos.example.com/ada",
			Quality:        0.8,
		},
		{
			URL:         "https://img.example.com/unrelated",
			Description: "city skyline at night",
			Quality:     0.9,
		},
	}
}

func newTestHandler(t *testing.T, gen *fakeImageGenerator, stock *fakeStockSearcher, host *fakeImageHost) *Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := cache.NewStore(client, logger.NewTestLogger(t))
	return NewHandler(gen, stock, host, store, logger.NewTestLogger(t))
}

func request(tier string) ImageRequest {
	return ImageRequest{ProductName: "Tomatoes", Category: "vegetables", Tier: tier}
}

func TestResolve_PremiumGeneratesAndUploads(t *testing.T) {
	gen := &fakeImageGenerator{}
	stock := &fakeStockSearcher{photos: relevantPhotos()}
	host := &fakeImageHost{}
	handler := newTestHandler(t, gen, stock, host)

	result, err := handler.Resolve(context.Background(), request(router.TierPremium))
	require.NoError(t, err)

	assert.Equal(t, SourceAIGenerated, result.Source)
	assert.Contains(t, result.URL, "https://cdn.example.com/product_")
	require.Len(t, result.Images, 1)
	assert.Equal(t, result.URL, result.Primary().URL)
	assert.Equal(t, "gemini-2.0-flash-exp", result.Model)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 1, host.calls)
	assert.Equal(t, 0, stock.calls)
}

func TestResolve_PremiumFallsBackToStockOnGenerationFailure(t *testing.T) {
	gen := &fakeImageGenerator{fail: true}
	stock := &fakeStockSearcher{photos: relevantPhotos()}
	host := &fakeImageHost{}
	handler := newTestHandler(t, gen, stock, host)

	result, err := handler.Resolve(context.Background(), request(router.TierPremium))
	require.NoError(t, err)

	assert.Equal(t, SourceStockVerified, result.Source)
	assert.Equal(t, "https://img.example.com/tomatoes", result.URL)
	primary := result.Primary()
	require.NotNil(t, primary)
	require.NotNil(t, primary.Attribution)
	assert.Equal(t, "Ada", primary.Attribution.Photographer)
	assert.GreaterOrEqual(t, primary.Relevance, 0.35)
	// The irrelevant skyline candidate is discarded by verification.
	assert.Len(t, result.Images, 1)
	assert.Equal(t, 0, host.calls)
}

func TestResolve_UploadFailureCountsAsGenerationFailure(t *testing.T) {
	gen := &fakeImageGenerator{}
	stock := &fakeStockSearcher{photos: relevantPhotos()}
	host := &fakeImageHost{fail: true}
	handler := newTestHandler(t, gen, stock, host)

	result, err := handler.Resolve(context.Background(), request(router.TierEnterprise))
	require.NoError(t, err)

	assert.Equal(t, SourceStockVerified, result.Source)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 1, host.calls)
	assert.Equal(t, 1, stock.calls)
}

func TestResolve_FreeTierNeverCallsGeneration(t *testing.T) {
	gen := &fakeImageGenerator{}
	stock := &fakeStockSearcher{photos: relevantPhotos()}
	host := &fakeImageHost{}
	handler := newTestHandler(t, gen, stock, host)

	result, err := handler.Resolve(context.Background(), request(router.TierFree))
	require.NoError(t, err)

	assert.Equal(t, SourceStockVerified, result.Source)
	assert.Equal(t, 0, gen.calls)
	assert.Equal(t, 0, host.calls)
}

func TestResolve_FreeTierEmptyCatalogueEndsInUploadRequired(t *testing.T) {
	gen := &fakeImageGenerator{}
	stock := &fakeStockSearcher{photos: nil}
	host := &fakeImageHost{}
	handler := newTestHandler(t, gen, stock, host)

	result, err := handler.Resolve(context.Background(), request(router.TierFree))
	require.NoError(t, err)

	assert.Equal(t, SourceUploadRequired, result.Source)
	assert.Empty(t, result.URL)
	assert.Empty(t, result.Images)
	assert.Nil(t, result.Primary())
	assert.Equal(t, 0, gen.calls)
}

func TestResolve_IrrelevantCandidatesEndInUploadRequired(t *testing.T) {
	gen := &fakeImageGenerator{}
	stock := &fakeStockSearcher{photos: []providers.StockPhoto{
		{URL: "https://img.example.com/skyline", Description: "city skyline at night", Quality: 1.0},
	}}
	host := &fakeImageHost{}
	handler := newTestHandler(t, gen, stock, host)

	result, err := handler.Resolve(context.Background(), request(router.TierBasic))
	require.NoError(t, err)

	assert.Equal(t, SourceUploadRequired, result.Source)
}

func TestResolve_EverySourceFailingStillTerminates(t *testing.T) {
	tiers := []string{router.TierFree, router.TierBasic, router.TierPremium, router.TierEnterprise}
	for _, tier := range tiers {
		t.Run(tier, func(t *testing.T) {
			gen := &fakeImageGenerator{fail: true}
			stock := &fakeStockSearcher{fail: true}
			host := &fakeImageHost{}
			handler := newTestHandler(t, gen, stock, host)

			result, err := handler.Resolve(context.Background(), request(tier))
			require.NoError(t, err)
			assert.Equal(t, SourceUploadRequired, result.Source)
		})
	}
}

func TestResolve_SuccessIsCached(t *testing.T) {
	gen := &fakeImageGenerator{}
	stock := &fakeStockSearcher{photos: relevantPhotos()}
	host := &fakeImageHost{}
	handler := newTestHandler(t, gen, stock, host)

	first, err := handler.Resolve(context.Background(), request(router.TierPremium))
	require.NoError(t, err)
	require.Equal(t, SourceAIGenerated, first.Source)

	second, err := handler.Resolve(context.Background(), request(router.TierPremium))
	require.NoError(t, err)
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, first.URL, second.URL)
	assert.Equal(t, 1, gen.calls)
}

func TestResolve_UploadRequiredIsNeverCached(t *testing.T) {
	gen := &fakeImageGenerator{}
	stock := &fakeStockSearcher{photos: nil}
	host := &fakeImageHost{}
	handler := newTestHandler(t, gen, stock, host)

	first, err := handler.Resolve(context.Background(), request(router.TierFree))
	require.NoError(t, err)
	require.Equal(t, SourceUploadRequired, first.Source)

	// Catalogue recovers; a cached upload_required must not mask it.
	stock.photos = relevantPhotos()
	second, err := handler.Resolve(context.Background(), request(router.TierFree))
	require.NoError(t, err)
	assert.Equal(t, SourceStockVerified, second.Source)
}

func TestResolve_TierIsPartOfCacheIdentity(t *testing.T) {
	gen := &fakeImageGenerator{}
	stock := &fakeStockSearcher{photos: relevantPhotos()}
	host := &fakeImageHost{}
	handler := newTestHandler(t, gen, stock, host)

	premium, err := handler.Resolve(context.Background(), request(router.TierPremium))
	require.NoError(t, err)
	require.Equal(t, SourceAIGenerated, premium.Source)

	// A free caller must not be served the premium chain's cached result.
	free, err := handler.Resolve(context.Background(), request(router.TierFree))
	require.NoError(t, err)
	assert.Equal(t, SourceStockVerified, free.Source)
}

func TestResolve_InvalidPayload(t *testing.T) {
	handler := newTestHandler(t, &fakeImageGenerator{}, &fakeStockSearcher{}, &fakeImageHost{})

	_, err := handler.Resolve(context.Background(), ImageRequest{ProductName: "Tomatoes"})
	require.Error(t, err)

	var svcErr *svcerrors.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, svcerrors.ErrCodeInvalidPayload, svcErr.Code)
}

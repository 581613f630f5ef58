// internal/capabilities/generation/handler_test.go
package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrimarket-ai/internal/cache"
	svcerrors "agrimarket-ai/internal/common/errors"
	"agrimarket-ai/internal/common/logger"
	"agrimarket-ai/internal/common/providers"
)

type fakeTextGenerator struct {
	calls  int
	result *providers.Result
	err    error
	prompt string
}

func (f *fakeTextGenerator) GenerateText(ctx context.Context, prompt string) (*providers.Result, error) {
	f.calls++
	f.prompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestHandler(t *testing.T, gen *fakeTextGenerator) *Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := cache.NewStore(client, logger.NewTestLogger(t))
	return NewHandler(gen, store, logger.NewTestLogger(t))
}

func TestGenerateDescription_Success(t *testing.T) {
	gen := &fakeTextGenerator{
		result: &providers.Result{
			Text:  "Fresh organic cassava straight from the farm.",
			Usage: providers.Usage{PromptUnits: 1_000_000, CompletionUnits: 1_000_000},
			Model: "gemini-2.0-flash",
		},
	}
	handler := newTestHandler(t, gen)

	result, err := handler.GenerateDescription(context.Background(), DescriptionRequest{
		Name:      "Cassava",
		Category:  "tubers",
		IsOrganic: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Fresh organic cassava straight from the farm.", result.Content)
	assert.Equal(t, "generated", result.Source)
	assert.Equal(t, "gemini-2.0-flash", result.Model)
	assert.InDelta(t, 0.375, result.EstimatedCost, 1e-9)
	assert.False(t, result.GeneratedAt.IsZero())
}

func TestGenerateDescription_AppliesPromptDefaults(t *testing.T) {
	gen := &fakeTextGenerator{result: &providers.Result{Text: "ok"}}
	handler := newTestHandler(t, gen)

	_, err := handler.GenerateDescription(context.Background(), DescriptionRequest{
		Name:     "Plantain",
		Category: "fruits",
	})
	require.NoError(t, err)

	assert.Contains(t, gen.prompt, "West Africa")
	assert.Contains(t, gen.prompt, "Recent")
	assert.Contains(t, gen.prompt, "High quality, fresh produce")
	assert.Contains(t, gen.prompt, "Organic: No")
}

func TestGenerateDescription_SecondCallHitsCache(t *testing.T) {
	gen := &fakeTextGenerator{result: &providers.Result{Text: "cached description"}}
	handler := newTestHandler(t, gen)
	req := DescriptionRequest{Name: "Yam", Category: "tubers"}

	first, err := handler.GenerateDescription(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "generated", first.Source)

	second, err := handler.GenerateDescription(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "cache", second.Source)
	assert.Equal(t, "cached description", second.Content)
	assert.Equal(t, 1, gen.calls)
}

func TestGenerateDescription_DifferentParamsBypassCache(t *testing.T) {
	gen := &fakeTextGenerator{result: &providers.Result{Text: "anything"}}
	handler := newTestHandler(t, gen)

	_, err := handler.GenerateDescription(context.Background(), DescriptionRequest{Name: "Yam", Category: "tubers"})
	require.NoError(t, err)
	_, err = handler.GenerateDescription(context.Background(), DescriptionRequest{Name: "Yam", Category: "tubers", IsOrganic: true})
	require.NoError(t, err)

	assert.Equal(t, 2, gen.calls)
}

func TestGenerateDescription_InvalidPayload(t *testing.T) {
	gen := &fakeTextGenerator{result: &providers.Result{Text: "unused"}}
	handler := newTestHandler(t, gen)

	_, err := handler.GenerateDescription(context.Background(), DescriptionRequest{Name: "Yam"})
	require.Error(t, err)

	var svcErr *svcerrors.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, svcerrors.ErrCodeInvalidPayload, svcErr.Code)
	assert.False(t, svcErr.Retryable)
	assert.Equal(t, 0, gen.calls)
}

func TestGenerateDescription_ProviderFailure(t *testing.T) {
	gen := &fakeTextGenerator{err: providers.ErrTimeout}
	handler := newTestHandler(t, gen)

	_, err := handler.GenerateDescription(context.Background(), DescriptionRequest{Name: "Yam", Category: "tubers"})
	require.Error(t, err)

	var svcErr *svcerrors.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, svcerrors.ErrCodeGenerationFailed, svcErr.Code)
	assert.True(t, errors.Is(err, providers.ErrTimeout))
}

func TestGenerateMarketingCopy_CopyTypesCacheIndependently(t *testing.T) {
	gen := &fakeTextGenerator{result: &providers.Result{Text: "copy"}}
	handler := newTestHandler(t, gen)

	_, err := handler.GenerateMarketingCopy(context.Background(), MarketingCopyRequest{
		Name: "Tomatoes", Category: "vegetables", CopyType: CopyTypeSocialMedia,
	})
	require.NoError(t, err)
	_, err = handler.GenerateMarketingCopy(context.Background(), MarketingCopyRequest{
		Name: "Tomatoes", Category: "vegetables", CopyType: CopyTypeEmailCampaign,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, gen.calls)
}

func TestGenerateMarketingCopy_DefaultsToGeneral(t *testing.T) {
	gen := &fakeTextGenerator{result: &providers.Result{Text: "copy"}}
	handler := newTestHandler(t, gen)

	_, err := handler.GenerateMarketingCopy(context.Background(), MarketingCopyRequest{
		Name: "Tomatoes", Category: "vegetables",
	})
	require.NoError(t, err)
	assert.Contains(t, gen.prompt, "general marketing use")
}

func TestGenerateMarketingCopy_RejectsUnknownCopyType(t *testing.T) {
	gen := &fakeTextGenerator{result: &providers.Result{Text: "unused"}}
	handler := newTestHandler(t, gen)

	_, err := handler.GenerateMarketingCopy(context.Background(), MarketingCopyRequest{
		Name: "Tomatoes", Category: "vegetables", CopyType: "skywriting",
	})
	require.Error(t, err)

	var svcErr *svcerrors.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, svcerrors.ErrCodeInvalidPayload, svcErr.Code)
	assert.Equal(t, 0, gen.calls)
}

// internal/common/providers/stockphoto.go
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"agrimarket-ai/internal/common/config"
	"agrimarket-ai/internal/common/logger"
	"agrimarket-ai/internal/common/metrics"
)

// StockPhotoClient searches the stock-photo catalogue for candidate
// product images.
type StockPhotoClient struct {
	cfg    config.StockPhotoConfig
	client *http.Client
	logger logger.Logger
}

func NewStockPhotoClient(cfg config.StockPhotoConfig, log logger.Logger) *StockPhotoClient {
	return &StockPhotoClient{
		cfg:    cfg,
		client: &http.Client{},
		logger: log.With(map[string]interface{}{"provider": "stock_photo"}),
	}
}

// Search returns up to PerPage landscape-oriented candidates for the query,
// in catalogue relevance order. An empty result slice is a valid answer,
// not an error.
func (c *StockPhotoClient) Search(ctx context.Context, query string) ([]StockPhoto, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.Timeout)*time.Millisecond)
	defer cancel()

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", fmt.Sprintf("%d", c.cfg.PerPage))
	params.Set("orientation", "landscape")

	start := time.Now()
	defer func() {
		metrics.ProviderCallDuration.WithLabelValues("stock_photo").Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/search/photos?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCallFailed, err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.cfg.AccessKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			metrics.ProviderCalls.WithLabelValues("stock_photo", "timeout").Inc()
			return nil, ErrTimeout
		}
		metrics.ProviderCalls.WithLabelValues("stock_photo", "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrCallFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderCalls.WithLabelValues("stock_photo", "error").Inc()
		return nil, fmt.Errorf("%w: status %d", ErrCallFailed, resp.StatusCode)
	}

	var parsed struct {
		Results []struct {
			URLs struct {
				Regular string `json:"regular"`
				Full    string `json:"full"`
				Thumb   string `json:"thumb"`
			} `json:"urls"`
			Description    string `json:"description"`
			AltDescription string `json:"alt_description"`
			Likes          int    `json:"likes"`
			User           struct {
				Name  string `json:"name"`
				Links struct {
					HTML string `json:"html"`
				} `json:"links"`
			} `json:"user"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.ProviderCalls.WithLabelValues("stock_photo", "error").Inc()
		return nil, fmt.Errorf("%w: decode error: %v", ErrCallFailed, err)
	}

	photos := make([]StockPhoto, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		desc := r.Description
		if desc == "" {
			desc = r.AltDescription
		}
		photos = append(photos, StockPhoto{
			URL:            r.URLs.Regular,
			FullURL:        r.URLs.Full,
			ThumbURL:       r.URLs.Thumb,
			Description:    desc,
			Photographer:   r.User.Name,
			AttributionURL: r.User.Links.HTML,
			Likes:          r.Likes,
			Quality:        qualityScore(r.Likes),
		})
	}

	metrics.ProviderCalls.WithLabelValues("stock_photo", "success").Inc()
	return photos, nil
}

// qualityScore maps like counts onto [0,1] with diminishing returns past a
// few hundred likes.
func qualityScore(likes int) float64 {
	if likes <= 0 {
		return 0
	}
	score := float64(likes) / 500.0
	if score > 1 {
		return 1
	}
	return score
}

// internal/common/providers/hosting.go
package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"agrimarket-ai/internal/common/config"
	"agrimarket-ai/internal/common/logger"
	"agrimarket-ai/internal/common/metrics"
)

// HostingClient uploads generated images to the hosting provider and
// returns durable public URLs.
type HostingClient struct {
	cfg    config.HostingConfig
	client *http.Client
	logger logger.Logger
}

func NewHostingClient(cfg config.HostingConfig, log logger.Logger) *HostingClient {
	return &HostingClient{
		cfg:    cfg,
		client: &http.Client{},
		logger: log.With(map[string]interface{}{"provider": "hosting"}),
	}
}

// Upload pushes image bytes under publicID and returns the hosted URL.
func (c *HostingClient) Upload(ctx context.Context, image ImageData, publicID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.Timeout)*time.Millisecond)
	defer cancel()

	body, _ := json.Marshal(map[string]interface{}{
		"file":      fmt.Sprintf("data:%s;base64,%s", image.MIMEType, base64.StdEncoding.EncodeToString(image.Bytes)),
		"public_id": publicID,
		"folder":    c.cfg.Folder,
	})

	start := time.Now()
	defer func() {
		metrics.ProviderCallDuration.WithLabelValues("hosting").Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/image/upload", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCallFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.APIKey, c.cfg.APISecret)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			metrics.ProviderCalls.WithLabelValues("hosting", "timeout").Inc()
			return "", ErrTimeout
		}
		metrics.ProviderCalls.WithLabelValues("hosting", "error").Inc()
		return "", fmt.Errorf("%w: %v", ErrCallFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderCalls.WithLabelValues("hosting", "error").Inc()
		return "", fmt.Errorf("%w: status %d", ErrCallFailed, resp.StatusCode)
	}

	var parsed struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.ProviderCalls.WithLabelValues("hosting", "error").Inc()
		return "", fmt.Errorf("%w: decode error: %v", ErrCallFailed, err)
	}

	if parsed.SecureURL == "" {
		metrics.ProviderCalls.WithLabelValues("hosting", "error").Inc()
		return "", fmt.Errorf("%w: upload returned no url", ErrCallFailed)
	}

	metrics.ProviderCalls.WithLabelValues("hosting", "success").Inc()
	return parsed.SecureURL, nil
}

// internal/common/providers/generative.go
package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"agrimarket-ai/internal/common/config"
	"agrimarket-ai/internal/common/logger"
	"agrimarket-ai/internal/common/metrics"
)

// GenerativeClient talks to the generative provider's text, vision, and
// image-generation models over HTTP. It implements TextGenerator,
// VisionAnalyzer, and ImageGenerator.
type GenerativeClient struct {
	cfg    config.GenerativeConfig
	client *http.Client
	logger logger.Logger
}

func NewGenerativeClient(cfg config.GenerativeConfig, log logger.Logger) *GenerativeClient {
	return &GenerativeClient{
		cfg: cfg,
		// No client-level timeout; cancellation is context-driven.
		client: &http.Client{},
		logger: log.With(map[string]interface{}{"provider": "generative"}),
	}
}

func (c *GenerativeClient) timeout() time.Duration {
	return time.Duration(c.cfg.Timeout) * time.Millisecond
}

// GenerateText sends a prompt to the text model and returns the raw answer.
func (c *GenerativeClient) GenerateText(ctx context.Context, prompt string) (*Result, error) {
	body := map[string]interface{}{
		"model":  c.cfg.TextModel,
		"prompt": prompt,
	}

	var resp struct {
		Text  string `json:"text"`
		Usage *struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}

	if err := c.post(ctx, "/v1/generate", body, &resp); err != nil {
		return nil, err
	}

	usage := Usage{
		PromptUnits:     estimateUnits(prompt),
		CompletionUnits: estimateUnits(resp.Text),
	}
	if resp.Usage != nil {
		usage = Usage{
			PromptUnits:     resp.Usage.PromptTokens,
			CompletionUnits: resp.Usage.CompletionTokens,
		}
	}

	return &Result{
		Text:  resp.Text,
		Usage: usage,
		Model: c.cfg.TextModel,
	}, nil
}

// AnalyzeImage fetches the image, inlines it as base64, and asks the vision
// model the given prompt about it.
func (c *GenerativeClient) AnalyzeImage(ctx context.Context, imageURL, prompt string) (*Result, error) {
	image, err := c.fetchImage(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"model":  c.cfg.TextModel,
		"prompt": prompt,
		"inline_data": map[string]interface{}{
			"data":      base64.StdEncoding.EncodeToString(image.Bytes),
			"mime_type": image.MIMEType,
		},
	}

	var resp struct {
		Text  string `json:"text"`
		Usage *struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}

	if err := c.post(ctx, "/v1/analyze", body, &resp); err != nil {
		return nil, err
	}

	usage := Usage{
		PromptUnits:     estimateUnits(prompt),
		CompletionUnits: estimateUnits(resp.Text),
	}
	if resp.Usage != nil {
		usage = Usage{
			PromptUnits:     resp.Usage.PromptTokens,
			CompletionUnits: resp.Usage.CompletionTokens,
		}
	}

	return &Result{
		Text:  resp.Text,
		Usage: usage,
		Model: c.cfg.TextModel,
	}, nil
}

// GenerateImage asks the image model for a rendered image. The provider may
// legitimately answer with no image part, which is reported as a call
// failure so the resolution chain can fall back.
func (c *GenerativeClient) GenerateImage(ctx context.Context, prompt string) (*Result, error) {
	body := map[string]interface{}{
		"model":               c.cfg.ImageModel,
		"prompt":              prompt,
		"response_modalities": []string{"Text", "Image"},
	}

	var resp struct {
		ImageBase64 string `json:"image_base64"`
		MIMEType    string `json:"mime_type"`
	}

	if err := c.post(ctx, "/v1/generate-image", body, &resp); err != nil {
		return nil, err
	}

	if resp.ImageBase64 == "" {
		return nil, fmt.Errorf("%w: response contained no image data", ErrCallFailed)
	}

	raw, err := base64.StdEncoding.DecodeString(resp.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %v", ErrCallFailed, err)
	}

	mime := resp.MIMEType
	if mime == "" {
		mime = "image/png"
	}

	return &Result{
		Image: &ImageData{Bytes: raw, MIMEType: mime},
		Usage: Usage{PromptUnits: estimateUnits(prompt)},
		Model: c.cfg.ImageModel,
	}, nil
}

func (c *GenerativeClient) fetchImage(ctx context.Context, imageURL string) (*ImageData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCallFailed, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: fetch image: %v", ErrCallFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch image status %d", ErrCallFailed, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read image: %v", ErrCallFailed, err)
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/jpeg"
	}

	return &ImageData{Bytes: raw, MIMEType: mime}, nil
}

// post issues a JSON POST with the provider timeout and bounded retry on
// transient failures.
func (c *GenerativeClient) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	body, _ := json.Marshal(payload)

	start := time.Now()
	defer func() {
		metrics.ProviderCallDuration.WithLabelValues("generative").Observe(time.Since(start).Seconds())
	}()

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				metrics.ProviderCalls.WithLabelValues("generative", "timeout").Inc()
				return ErrTimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewBuffer(body))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCallFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("x-api-key", c.cfg.APIKey)
		}

		resp, lastErr = c.client.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			metrics.ProviderCalls.WithLabelValues("generative", "timeout").Inc()
			return ErrTimeout
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			metrics.ProviderCalls.WithLabelValues("generative", "timeout").Inc()
			return ErrTimeout
		}
		metrics.ProviderCalls.WithLabelValues("generative", "error").Inc()
		return fmt.Errorf("%w: %v", ErrCallFailed, lastErr)
	}

	if resp == nil {
		metrics.ProviderCalls.WithLabelValues("generative", "error").Inc()
		return fmt.Errorf("%w: no successful response after retries", ErrCallFailed)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.ProviderCalls.WithLabelValues("generative", "error").Inc()
		return fmt.Errorf("%w: decode error: %v", ErrCallFailed, err)
	}

	metrics.ProviderCalls.WithLabelValues("generative", "success").Inc()
	return nil
}

// estimateUnits approximates token counts as length/4 when the provider
// reports no usage metadata.
func estimateUnits(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}

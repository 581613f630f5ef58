// internal/common/providers/research.go
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"agrimarket-ai/internal/common/config"
	"agrimarket-ai/internal/common/logger"
	"agrimarket-ai/internal/common/metrics"
)

// ResearchClient talks to the web-augmented research provider. Research
// calls run against a longer deadline than plain generation because the
// provider searches live sources before answering.
type ResearchClient struct {
	cfg    config.ResearchConfig
	client *http.Client
	logger logger.Logger
}

func NewResearchClient(cfg config.ResearchConfig, log logger.Logger) *ResearchClient {
	return &ResearchClient{
		cfg:    cfg,
		client: &http.Client{},
		logger: log.With(map[string]interface{}{"provider": "research"}),
	}
}

// Research sends a research prompt and returns the answer with source
// citations when the provider reports them.
func (c *ResearchClient) Research(ctx context.Context, prompt string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.Timeout)*time.Millisecond)
	defer cancel()

	body, _ := json.Marshal(map[string]interface{}{
		"model": c.cfg.Model,
		"messages": []map[string]string{
			{
				"role":    "system",
				"content": "You are an agricultural market intelligence analyst. Provide current, factual, regionally specific information with concrete figures where available.",
			},
			{"role": "user", "content": prompt},
		},
	})

	start := time.Now()
	defer func() {
		metrics.ProviderCallDuration.WithLabelValues("research").Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCallFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			metrics.ProviderCalls.WithLabelValues("research", "timeout").Inc()
			return nil, ErrTimeout
		}
		metrics.ProviderCalls.WithLabelValues("research", "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrCallFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderCalls.WithLabelValues("research", "error").Inc()
		return nil, fmt.Errorf("%w: status %d", ErrCallFailed, resp.StatusCode)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Citations []string `json:"citations"`
		Usage     *struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.ProviderCalls.WithLabelValues("research", "error").Inc()
		return nil, fmt.Errorf("%w: decode error: %v", ErrCallFailed, err)
	}

	if len(parsed.Choices) == 0 {
		metrics.ProviderCalls.WithLabelValues("research", "error").Inc()
		return nil, fmt.Errorf("%w: empty choices", ErrCallFailed)
	}

	text := parsed.Choices[0].Message.Content

	usage := Usage{
		PromptUnits:     estimateUnits(prompt),
		CompletionUnits: estimateUnits(text),
	}
	if parsed.Usage != nil {
		usage = Usage{
			PromptUnits:     parsed.Usage.PromptTokens,
			CompletionUnits: parsed.Usage.CompletionTokens,
		}
	}

	metrics.ProviderCalls.WithLabelValues("research", "success").Inc()

	return &Result{
		Text:      text,
		Citations: parsed.Citations,
		Usage:     usage,
		Model:     c.cfg.Model,
	}, nil
}

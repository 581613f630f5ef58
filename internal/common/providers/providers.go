// internal/common/providers/providers.go
package providers

import (
	"context"
	"errors"
)

var (
	ErrTimeout    = errors.New("PROVIDER_TIMEOUT")
	ErrCallFailed = errors.New("PROVIDER_ERROR")
)

// Usage carries the prompt/completion unit counts for one provider call.
// When a provider does not report real usage the caller estimates it from
// text length.
type Usage struct {
	PromptUnits     int `json:"prompt_units"`
	CompletionUnits int `json:"completion_units"`
}

// TotalUnits returns the combined unit count.
func (u Usage) TotalUnits() int {
	return u.PromptUnits + u.CompletionUnits
}

// ImageData is a raw image payload plus its MIME type.
type ImageData struct {
	Bytes    []byte
	MIMEType string
}

// Result is the immutable outcome of exactly one provider call.
type Result struct {
	Text      string
	Image     *ImageData
	Citations []string
	Usage     Usage
	Model     string
}

// StockPhoto is one ranked candidate from the stock-photo provider.
type StockPhoto struct {
	URL            string  `json:"url"`
	FullURL        string  `json:"full_url"`
	ThumbURL       string  `json:"thumb_url"`
	Description    string  `json:"description"`
	Photographer   string  `json:"photographer"`
	AttributionURL string  `json:"attribution_url"`
	Likes          int     `json:"likes"`
	Quality        float64 `json:"quality"`
}

// TextGenerator produces free text from a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (*Result, error)
}

// VisionAnalyzer answers a prompt about an image.
type VisionAnalyzer interface {
	AnalyzeImage(ctx context.Context, imageURL, prompt string) (*Result, error)
}

// ImageGenerator produces a raw image from a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (*Result, error)
}

// Researcher runs a web-augmented research prompt and returns text plus
// citations.
type Researcher interface {
	Research(ctx context.Context, prompt string) (*Result, error)
}

// StockSearcher returns ranked stock-photo candidates for a query.
type StockSearcher interface {
	Search(ctx context.Context, query string) ([]StockPhoto, error)
}

// ImageHost uploads raw image bytes and returns a durable URL.
type ImageHost interface {
	Upload(ctx context.Context, image ImageData, publicID string) (string, error)
}

// Set bundles every external capability endpoint the orchestrators need.
// It is constructed once at process start and passed explicitly; there is
// no ambient global lookup.
type Set struct {
	Text     TextGenerator
	Vision   VisionAnalyzer
	Images   ImageGenerator
	Research Researcher
	Stock    StockSearcher
	Hosting  ImageHost
}

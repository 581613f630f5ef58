// internal/capabilities/image/models.go
package image

import "time"

// Terminal outcomes of an image resolution.
const (
	SourceAIGenerated    = "ai_generated"
	SourceStockVerified  = "stock_verified"
	SourceUploadRequired = "upload_required"
	SourceCache          = "cache"
)

// ImageRequest asks for a product image for a marketplace listing.
type ImageRequest struct {
	ProductName string `json:"productName"`
	Category    string `json:"category"`
	Style       string `json:"style,omitempty"`
	Background  string `json:"background,omitempty"`
	Tier        string `json:"tier,omitempty"`
}

func (r ImageRequest) params() map[string]interface{} {
	return map[string]interface{}{
		"productName": r.ProductName,
		"category":    r.Category,
		"style":       r.Style,
		"background":  r.Background,
	}
}

// Attribution credits the photographer of a stock photo.
type Attribution struct {
	Photographer string `json:"photographer,omitempty"`
	ProfileURL   string `json:"profile_url,omitempty"`
}

// ImageCandidate is one accepted image, best first.
type ImageCandidate struct {
	URL         string       `json:"url"`
	ThumbURL    string       `json:"thumb_url,omitempty"`
	Descriptor  string       `json:"descriptor,omitempty"`
	Relevance   float64      `json:"relevance"`
	Attribution *Attribution `json:"attribution,omitempty"`
}

// ImageResult is the outcome of the resolution chain. Source is always
// exactly one terminal state; Images is empty only for upload_required,
// and the first element is the primary image.
type ImageResult struct {
	URL           string           `json:"url,omitempty"`
	Images        []ImageCandidate `json:"images"`
	Source        string           `json:"source"`
	Model         string           `json:"model,omitempty"`
	EstimatedCost float64          `json:"estimated_cost"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

// Primary returns the first candidate, or nil for upload_required.
func (r *ImageResult) Primary() *ImageCandidate {
	if len(r.Images) == 0 {
		return nil
	}
	return &r.Images[0]
}

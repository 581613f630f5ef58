// internal/capabilities/generation/models.go
package generation

import (
	"time"

	"agrimarket-ai/internal/common/providers"
)

// Marketing copy variants.
const (
	CopyTypeSocialMedia    = "social_media"
	CopyTypeEmailCampaign  = "email_campaign"
	CopyTypeProductListing = "product_listing"
	CopyTypeGeneral        = "general"
)

// DescriptionRequest asks for a product description.
type DescriptionRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Origin      string `json:"origin,omitempty"`
	IsOrganic   bool   `json:"isOrganic,omitempty"`
	HarvestDate string `json:"harvestDate,omitempty"`
	Features    string `json:"features,omitempty"`
}

func (r DescriptionRequest) params() map[string]interface{} {
	return map[string]interface{}{
		"name":        r.Name,
		"category":    r.Category,
		"origin":      r.Origin,
		"isOrganic":   r.IsOrganic,
		"harvestDate": r.HarvestDate,
		"features":    r.Features,
	}
}

// MarketingCopyRequest asks for promotional copy of a particular type.
type MarketingCopyRequest struct {
	Name           string `json:"name"`
	Category       string `json:"category"`
	Benefits       string `json:"benefits,omitempty"`
	TargetAudience string `json:"targetAudience,omitempty"`
	CopyType       string `json:"copyType,omitempty"`
}

func (r MarketingCopyRequest) params() map[string]interface{} {
	return map[string]interface{}{
		"name":           r.Name,
		"category":       r.Category,
		"benefits":       r.Benefits,
		"targetAudience": r.TargetAudience,
		"copyType":       r.CopyType,
	}
}

// ContentResult is the outcome of a text-generation request, whether it
// came from the provider or the cache.
type ContentResult struct {
	Content       string          `json:"content"`
	Source        string          `json:"source"` // "generated" or "cache"
	Model         string          `json:"model,omitempty"`
	Usage         providers.Usage `json:"usage"`
	EstimatedCost float64         `json:"estimated_cost"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

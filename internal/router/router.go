// internal/router/router.go

// Package router decides which provider chain serves a capability request
// for a given subscription tier. The plan is an ordered list; the caller
// tries each source until one succeeds.
package router

import "fmt"

// Capability kinds the engine serves.
const (
	CapabilityTextDescription      = "text_description"
	CapabilityMarketingCopy        = "marketing_copy"
	CapabilityProductImage         = "product_image"
	CapabilityImageAnalysis        = "image_analysis"
	CapabilityLocationIntelligence = "location_intelligence"
)

// Subscription tiers.
const (
	TierFree       = "free"
	TierBasic      = "basic"
	TierPremium    = "premium"
	TierEnterprise = "enterprise"
)

// Source identifies one provider capability in a resolution plan.
type Source string

const (
	SourceGenerative Source = "generative"
	SourceAIImage    Source = "ai_image"
	SourceStock      Source = "stock_photo"
	SourceVision     Source = "vision"
	SourceResearch   Source = "research"
)

// Plan returns the ordered provider sources for a capability and tier.
// Product images are the only tier-sensitive capability: paying tiers get
// AI generation with stock search as fallback, free tiers go straight to
// stock search and never trigger paid image generation.
func Plan(capability, tier string) ([]Source, error) {
	switch capability {
	case CapabilityTextDescription, CapabilityMarketingCopy:
		return []Source{SourceGenerative}, nil
	case CapabilityImageAnalysis:
		return []Source{SourceVision}, nil
	case CapabilityLocationIntelligence:
		return []Source{SourceResearch}, nil
	case CapabilityProductImage:
		switch tier {
		case TierPremium, TierEnterprise:
			return []Source{SourceAIImage, SourceStock}, nil
		case TierFree, TierBasic, "":
			return []Source{SourceStock}, nil
		default:
			// Unrecognized tiers get the cheapest chain.
			return []Source{SourceStock}, nil
		}
	default:
		return nil, fmt.Errorf("unknown capability: %s", capability)
	}
}

// AllowsAIGeneration reports whether a tier may invoke paid image
// generation.
func AllowsAIGeneration(tier string) bool {
	return tier == TierPremium || tier == TierEnterprise
}

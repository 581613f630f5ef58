// internal/capabilities/generation/prompts.go
package generation

import "fmt"

// Defaults substituted for omitted optional fields so prompts stay fully
// formed.
const (
	defaultOrigin   = "West Africa"
	defaultHarvest  = "Recent"
	defaultFeatures = "High quality, fresh produce"
	defaultAudience = "Health-conscious consumers and restaurants"
)

func descriptionPrompt(req DescriptionRequest) string {
	origin := req.Origin
	if origin == "" {
		origin = defaultOrigin
	}
	harvest := req.HarvestDate
	if harvest == "" {
		harvest = defaultHarvest
	}
	features := req.Features
	if features == "" {
		features = defaultFeatures
	}
	organic := "No"
	if req.IsOrganic {
		organic = "Yes"
	}

	return fmt.Sprintf(`Write a compelling product description for an agricultural marketplace listing.

Product: %s
Category: %s
Origin: %s
Organic: %s
Harvest date: %s
Key features: %s

The description should be 100-150 words, highlight freshness and origin, and appeal to buyers sourcing quality produce. Do not use markdown formatting.`,
		req.Name, req.Category, origin, organic, harvest, features)
}

func marketingCopyPrompt(req MarketingCopyRequest) string {
	audience := req.TargetAudience
	if audience == "" {
		audience = defaultAudience
	}
	benefits := req.Benefits
	if benefits == "" {
		benefits = defaultFeatures
	}

	var format string
	switch req.CopyType {
	case CopyTypeSocialMedia:
		format = "Write a short, energetic social media post (under 280 characters) with 2-3 relevant hashtags."
	case CopyTypeEmailCampaign:
		format = "Write an email campaign section with a subject line, a greeting, and two short persuasive paragraphs."
	case CopyTypeProductListing:
		format = "Write punchy product listing copy: a headline plus 3-4 bullet-style selling points."
	default:
		format = "Write versatile promotional copy of 50-80 words suitable for general marketing use."
	}

	return fmt.Sprintf(`Create marketing copy for an agricultural product.

Product: %s
Category: %s
Key benefits: %s
Target audience: %s

%s`, req.Name, req.Category, benefits, audience, format)
}

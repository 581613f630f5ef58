// internal/cache/keys.go
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Cache namespaces. Each namespace carries its own volatility policy.
const (
	NamespaceContent       = "ai_content"
	NamespaceImageAnalysis = "image_analysis"
	NamespaceMarket        = "market_analysis"
	NamespaceProductImage  = "product_image"
)

// TTL policy per content kind. Fast-moving facets expire sooner.
const (
	TTLDescription    = 24 * time.Hour
	TTLMarketingCopy  = 12 * time.Hour
	TTLProductImage   = 7 * 24 * time.Hour
	TTLImageAnalysis  = 2 * time.Hour
	TTLMarketResearch = 4 * time.Hour
	TTLMarketFacet    = 4 * time.Hour
	TTLWeatherFacet   = 3 * time.Hour
	TTLPriceFacet     = 2 * time.Hour
	TTLTradeFacet     = 12 * time.Hour
)

var kindTTLs = map[string]time.Duration{
	"description":     TTLDescription,
	"marketing_copy":  TTLMarketingCopy,
	"product_image":   TTLProductImage,
	"image_analysis":  TTLImageAnalysis,
	"market_research": TTLMarketResearch,
	"market":          TTLMarketFacet,
	"weather":         TTLWeatherFacet,
	"price":           TTLPriceFacet,
	"trade":           TTLTradeFacet,
}

// TTLFor returns the freshness window for a content kind. Unknown kinds get
// the shortest window so stale data never outlives a known policy.
func TTLFor(kind string) time.Duration {
	if ttl, ok := kindTTLs[kind]; ok {
		return ttl
	}
	return TTLPriceFacet
}

// Key derives a deterministic cache key from a namespace, a content kind,
// and the identifying parameters. Parameters are serialized with sorted
// keys so logically equal inputs always hash identically regardless of map
// iteration order.
func Key(namespace, kind string, params map[string]interface{}) string {
	return fmt.Sprintf("%s:%s:%s", namespace, kind, hashParams(params))
}

func hashParams(params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([]interface{}, 0, len(keys)*2)
	for _, k := range keys {
		ordered = append(ordered, k, params[k])
	}

	raw, _ := json.Marshal(ordered)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

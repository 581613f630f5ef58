// internal/capabilities/image/relevance.go
package image

import (
	"sort"
	"strings"

	"agrimarket-ai/internal/common/providers"
)

// relevanceThreshold is the minimum score a stock photo must reach to be
// served in place of the requested product image.
const relevanceThreshold = 0.35

// relevanceScore combines query/description token overlap with catalogue
// quality metadata. Overlap dominates; quality breaks ties between
// equally relevant candidates.
func relevanceScore(query string, photo providers.StockPhoto) float64 {
	overlap := tokenOverlap(query, photo.Description)
	return overlap*0.8 + photo.Quality*0.2
}

// acceptedCandidates scores every photo, discards those below the
// threshold, and returns the survivors best first.
func acceptedCandidates(query string, photos []providers.StockPhoto) []ImageCandidate {
	var accepted []ImageCandidate
	for _, p := range photos {
		score := relevanceScore(query, p)
		if score < relevanceThreshold {
			continue
		}
		accepted = append(accepted, ImageCandidate{
			URL:        p.URL,
			ThumbURL:   p.ThumbURL,
			Descriptor: p.Description,
			Relevance:  score,
			Attribution: &Attribution{
				Photographer: p.Photographer,
				ProfileURL:   p.AttributionURL,
			},
		})
	}
	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Relevance > accepted[j].Relevance
	})
	return accepted
}

func tokenOverlap(query, description string) float64 {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return 0
	}

	descTokens := make(map[string]struct{})
	for _, tok := range tokenize(description) {
		descTokens[tok] = struct{}{}
	}

	matched := 0
	for _, tok := range queryTokens {
		if _, ok := descTokens[tok]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}

func tokenize(s string) []string {
	var out []string
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		tok = strings.Trim(tok, ".,;:!?()[]\"'")
		if len(tok) > 2 {
			out = append(out, tok)
		}
	}
	return out
}

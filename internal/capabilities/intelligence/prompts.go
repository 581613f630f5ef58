// internal/capabilities/intelligence/prompts.go
package intelligence

import (
	"fmt"
	"strings"
)

func cropsClause(crops []string) string {
	if len(crops) == 0 {
		return "the main crops traded locally"
	}
	return strings.Join(crops, ", ")
}

func facetPrompt(facet, location string, crops []string) string {
	switch facet {
	case FacetMarket:
		return fmt.Sprintf(`Provide current agricultural market analysis for %s covering %s:
1. Overall market conditions and notable shifts
2. Supply and demand balance
3. Key buyer activity
Present the findings as a numbered list with concrete figures where available.`, location, cropsClause(crops))

	case FacetWeather:
		return fmt.Sprintf(`Summarize current and near-term weather conditions affecting agriculture in %s:
1. Current conditions and 7-day outlook
2. Rainfall versus seasonal norms
3. Any drought, flood, storm, or temperature risks to %s
Flag any severe conditions explicitly.`, location, cropsClause(crops))

	case FacetPrice:
		return fmt.Sprintf(`Report current prices for %s in %s markets:
1. Wholesale and retail price ranges per unit
2. Week-over-week and month-over-month movement
3. Shortages, surpluses, or unusual volatility
Use concrete figures and note the currency.`, cropsClause(crops), location)

	case FacetTrade:
		return fmt.Sprintf(`Identify current trade opportunities for farmers in %s dealing in %s:
1. Active buyers and offtake programs
2. Export or cross-border demand
3. Price premiums for quality or certification
Present each opportunity as a numbered line.`, location, cropsClause(crops))

	default:
		return fmt.Sprintf("Provide agricultural intelligence for %s.", location)
	}
}

// internal/capabilities/intelligence/models.go
package intelligence

import (
	"time"

	"agrimarket-ai/internal/extract"
)

// Intelligence facets fanned out per location request.
const (
	FacetMarket  = "market"
	FacetWeather = "weather"
	FacetPrice   = "price"
	FacetTrade   = "trade"
)

// IntelligenceRequest asks for a composite intelligence report covering a
// location and, optionally, specific crops.
type IntelligenceRequest struct {
	Location string   `json:"location"`
	Crops    []string `json:"crops,omitempty"`
}

func (r IntelligenceRequest) params() map[string]interface{} {
	p := map[string]interface{}{"location": r.Location}
	if len(r.Crops) > 0 {
		p["crops"] = r.Crops
	}
	return p
}

// FacetReport is one facet's contribution to the composite. A degraded
// facet carries zero counts and Degraded=true instead of failing the
// whole report.
type FacetReport struct {
	Facet            string          `json:"facet"`
	Summary          string          `json:"summary,omitempty"`
	Citations        []string        `json:"citations,omitempty"`
	InsightCount     int             `json:"insight_count"`
	ReportCount      int             `json:"report_count"`
	OpportunityCount int             `json:"opportunity_count"`
	Opportunities    []string        `json:"opportunities,omitempty"`
	Alerts           []extract.Alert `json:"alerts,omitempty"`
	Source           string          `json:"source"` // "generated", "cache", or "unavailable"
	Degraded         bool            `json:"degraded,omitempty"`
	GeneratedAt      time.Time       `json:"generated_at"`
	NextUpdate       time.Time       `json:"next_update"`
}

// LocationReport aggregates all four facets. It is always fully
// populated; individual facets may be degraded placeholders.
type LocationReport struct {
	Location      string       `json:"location"`
	Crops         []string     `json:"crops,omitempty"`
	Market        *FacetReport `json:"market"`
	Weather       *FacetReport `json:"weather"`
	Price         *FacetReport `json:"price"`
	Trade         *FacetReport `json:"trade"`
	EstimatedCost float64      `json:"estimated_cost"`
	GeneratedAt   time.Time    `json:"generated_at"`
}

// Facets returns the facet reports in stable order.
func (r *LocationReport) Facets() []*FacetReport {
	return []*FacetReport{r.Market, r.Weather, r.Price, r.Trade}
}

// AllAlerts collects every alert across facets.
func (r *LocationReport) AllAlerts() []extract.Alert {
	var alerts []extract.Alert
	for _, f := range r.Facets() {
		alerts = append(alerts, f.Alerts...)
	}
	return alerts
}

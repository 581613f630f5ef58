// internal/common/validation/schema.go
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// capabilitySchemas maps a capability kind to the JSON schema its payload
// must satisfy before any provider call is attempted.
var capabilitySchemas = map[string]map[string]interface{}{
	"text_description": {
		"type":     "object",
		"required": []interface{}{"name", "category"},
		"properties": map[string]interface{}{
			"name":        map[string]interface{}{"type": "string", "minLength": 1},
			"category":    map[string]interface{}{"type": "string", "minLength": 1},
			"origin":      map[string]interface{}{"type": "string"},
			"isOrganic":   map[string]interface{}{"type": "boolean"},
			"harvestDate": map[string]interface{}{"type": "string"},
			"features":    map[string]interface{}{"type": "string"},
		},
	},
	"marketing_copy": {
		"type":     "object",
		"required": []interface{}{"name", "category"},
		"properties": map[string]interface{}{
			"name":           map[string]interface{}{"type": "string", "minLength": 1},
			"category":       map[string]interface{}{"type": "string", "minLength": 1},
			"benefits":       map[string]interface{}{"type": "string"},
			"targetAudience": map[string]interface{}{"type": "string"},
			"copyType": map[string]interface{}{
				"type": "string",
				"enum": []interface{}{"social_media", "email_campaign", "product_listing", "general"},
			},
		},
	},
	"product_image": {
		"type":     "object",
		"required": []interface{}{"productName", "category"},
		"properties": map[string]interface{}{
			"productName": map[string]interface{}{"type": "string", "minLength": 1},
			"category":    map[string]interface{}{"type": "string", "minLength": 1},
			"style":       map[string]interface{}{"type": "string"},
			"background":  map[string]interface{}{"type": "string"},
		},
	},
	"image_analysis": {
		"type":     "object",
		"required": []interface{}{"imageUrl"},
		"properties": map[string]interface{}{
			"imageUrl": map[string]interface{}{"type": "string", "minLength": 1},
			"analysisType": map[string]interface{}{
				"type": "string",
				"enum": []interface{}{"general", "health", "quality", "pest", "market_research"},
			},
		},
	},
	"location_intelligence": {
		"type":     "object",
		"required": []interface{}{"location"},
		"properties": map[string]interface{}{
			"location": map[string]interface{}{"type": "string", "minLength": 1},
			"crops": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
		},
	},
}

// ValidatePayload checks a capability payload against the capability's
// schema. Unknown capability kinds fail closed.
func ValidatePayload(capability string, payload map[string]interface{}) error {
	schemaMap, ok := capabilitySchemas[capability]
	if !ok {
		return fmt.Errorf("unknown capability kind: %s", capability)
	}

	schemaLoader := gojsonschema.NewGoLoader(schemaMap)
	documentLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("payload validation failed: %v", errs)
	}

	return nil
}

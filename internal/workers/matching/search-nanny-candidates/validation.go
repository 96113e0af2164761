// internal/workers/matching/search-nanny-candidates/validation.go
package searchnannycandidates

import "cuidly-workers/internal/common/validation"

var inputSchema = validation.MustCompile(`{
	"type": "object",
	"properties": {
		"familyId": {"type": ["integer", "null"], "minimum": 1},
		"location": {
			"type": ["object", "null"],
			"required": ["latitude", "longitude"],
			"properties": {
				"latitude":  {"type": "number", "minimum": -90, "maximum": 90},
				"longitude": {"type": "number", "minimum": -180, "maximum": 180}
			}
		},
		"radiusKm":        {"type": ["number", "null"], "minimum": 0},
		"nannyTypes":      {"type": ["array", "null"], "items": {"type": "string"}},
		"contractRegimes": {"type": ["array", "null"], "items": {"type": "string"}},
		"availability": {
			"type": ["array", "null"],
			"items": {
				"type": "object",
				"required": ["day", "shift"],
				"properties": {
					"day":   {"type": "string"},
					"shift": {"type": "string"}
				}
			}
		},
		"hasPets":       {"type": ["boolean", "null"]},
		"maxHourlyRate": {"type": ["number", "null"], "minimum": 0},
		"excludeIds":    {"type": ["array", "null"], "items": {"type": "integer"}},
		"size":          {"type": "integer", "minimum": 0, "maximum": 500}
	}
}`)

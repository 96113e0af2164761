// internal/workers/matching/rank-candidates/validation.go
package rankcandidates

import "cuidly-workers/internal/common/validation"

var inputSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["jobId"],
	"properties": {
		"jobId":             {"type": "integer", "minimum": 1},
		"nannyIds":          {"type": ["array", "null"], "items": {"type": "integer", "minimum": 1}, "maxItems": 1000},
		"maxItems":          {"type": "integer", "minimum": 0},
		"includeIneligible": {"type": "boolean"}
	}
}`)

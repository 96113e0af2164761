// internal/workers/matching/calculate-match-score/validation.go
package calculatematchscore

import "cuidly-workers/internal/common/validation"

var inputSchema = validation.MustCompile(`{
	"type": "object",
	"properties": {
		"jobId":    {"type": ["integer", "null"], "minimum": 1},
		"nannyId":  {"type": ["integer", "null"], "minimum": 1},
		"job":      {"type": ["object", "null"]},
		"family":   {"type": ["object", "null"]},
		"children": {"type": ["array", "null"], "items": {"type": "object"}},
		"nanny":    {"type": ["object", "null"]}
	},
	"anyOf": [
		{"required": ["jobId"]},
		{"required": ["job", "family"]}
	]
}`)

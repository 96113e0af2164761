// internal/workers/subscription/get-plan-limits/validation.go
package getplanlimits

import "cuidly-workers/internal/common/validation"

var inputSchema = validation.MustCompile(`{
	"type": "object",
	"properties": {
		"nannyId":  {"type": ["integer", "null"]},
		"familyId": {"type": ["integer", "null"]}
	}
}`)

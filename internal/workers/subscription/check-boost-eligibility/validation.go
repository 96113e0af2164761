// internal/workers/subscription/check-boost-eligibility/validation.go
package checkboosteligibility

import "cuidly-workers/internal/common/validation"

var inputSchema = validation.MustCompile(`{
	"type": "object",
	"properties": {
		"nannyId":  {"type": ["integer", "null"]},
		"familyId": {"type": ["integer", "null"]}
	}
}`)

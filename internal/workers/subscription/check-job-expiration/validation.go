// internal/workers/subscription/check-job-expiration/validation.go
package checkjobexpiration

import "cuidly-workers/internal/common/validation"

var inputSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["jobId"],
	"properties": {
		"jobId": {"type": "integer", "minimum": 1}
	}
}`)

// internal/workers/subscription/check-conversation-limit/validation.go
package checkconversationlimit

import "cuidly-workers/internal/common/validation"

var inputSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["jobId"],
	"properties": {
		"nannyId":     {"type": ["integer", "null"]},
		"familyId":    {"type": ["integer", "null"]},
		"jobId":       {"type": "integer", "minimum": 1},
		"recipientId": {"type": ["integer", "null"], "minimum": 1}
	}
}`)

// internal/workers/subscription/check-message-permission/validation.go
package checkmessagepermission

import "cuidly-workers/internal/common/validation"

var inputSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["conversationId"],
	"properties": {
		"nannyId":        {"type": ["integer", "null"]},
		"familyId":       {"type": ["integer", "null"]},
		"conversationId": {"type": "integer", "minimum": 1}
	}
}`)

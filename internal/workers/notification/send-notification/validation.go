// internal/workers/notification/send-notification/validation.go
package sendnotification

import "cuidly-workers/internal/common/validation"

var inputSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["notificationType"],
	"properties": {
		"nannyId":          {"type": ["integer", "null"]},
		"familyId":         {"type": ["integer", "null"]},
		"notificationType": {"type": "string", "minLength": 1},
		"priority":         {"type": "string", "enum": ["low", "normal", "high"]},
		"metadata":         {"type": ["object", "null"]}
	}
}`)

// internal/workers/subscription/invalidate-subscription-cache/validation.go
package invalidatesubscriptioncache

import "cuidly-workers/internal/common/validation"

var inputSchema = validation.MustCompile(`{
	"type": "object",
	"properties": {
		"nannyId":  {"type": ["integer", "null"]},
		"familyId": {"type": ["integer", "null"]}
	}
}`)

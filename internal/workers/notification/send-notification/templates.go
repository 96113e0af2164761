// internal/workers/notification/send-notification/templates.go
package sendnotification

import (
	"fmt"
	"regexp"
	"strings"
)

type template struct {
	Subject string
	Body    string
}

var templates = map[string]template{
	TypeJobExpiring: {
		Subject: "Sua vaga expira em breve",
		Body:    "Olá, {{name}}! Sua vaga expira em {{daysRemaining}} dia(s). Assine o Cuidly Plus para manter suas vagas abertas por 30 dias.",
	},
	TypeJobExpired: {
		Subject: "Sua vaga expirou",
		Body:    "Olá, {{name}}! Sua vaga expirou e não recebe mais candidaturas. Você pode publicar uma nova vaga quando quiser.",
	},
	TypeJobLimitReached: {
		Subject: "Limite de vagas atingido",
		Body:    "Olá, {{name}}! Você atingiu o limite de {{jobLimit}} vaga(s) ativa(s) do seu plano.",
	},
	TypeConversationLimitReached: {
		Subject: "Limite de conversas atingido",
		Body:    "Olá, {{name}}! Sua vaga atingiu o limite de conversas do plano gratuito. Assine o Cuidly Plus para conversar com mais babás.",
	},
	TypeFamilyReplied: {
		Subject: "A família respondeu sua mensagem",
		Body:    "Olá, {{name}}! A família respondeu sua mensagem e você já pode continuar a conversa.",
	},
	TypeBoostAvailable: {
		Subject: "Seu boost está disponível",
		Body:    "Olá, {{name}}! Seu boost já está disponível novamente. Use-o para destacar seu perfil.",
	},
	TypePlanDowngraded: {
		Subject: "Seu plano mudou",
		Body:    "Olá, {{name}}! Sua assinatura terminou e sua conta voltou para o plano gratuito.",
	},
}

var placeholder = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// render fills {{key}} placeholders from data. Keys without a value render
// as empty strings.
func render(tmpl string, data map[string]interface{}) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		key := placeholder.FindStringSubmatch(m)[1]
		v, ok := data[key]
		if !ok || v == nil {
			return ""
		}
		if f, ok := v.(float64); ok && f == float64(int64(f)) {
			return fmt.Sprintf("%d", int64(f))
		}
		return strings.TrimSpace(fmt.Sprint(v))
	})
}

// Package i18n resolves the response language from the Accept-Language
// header and translates API message codes. Supported: en (default), es, pt.
package i18n

import "strings"

const defaultLang = "en"

var supported = map[string]bool{"en": true, "es": true, "pt": true}

// DetectLanguage picks the first supported language from an Accept-Language
// header value, falling back to English.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		lang := strings.ToLower(strings.TrimSpace(part))
		if i := strings.IndexAny(lang, "-;"); i >= 0 {
			lang = lang[:i]
		}
		if supported[lang] {
			return lang
		}
	}
	return defaultLang
}

var translations = map[string]map[string]string{
	"en": {
		"required":            "Required",
		"client_required":     "Please select a client first.",
		"client_not_selected": "A client must be selected before saving.",
		"invalid_json":        "The request body is not valid JSON.",
		"unauthorized":        "You must be signed in.",
		"plan_limit_reached":  "Free plan limit reached. Upgrade to add more clients.",
		"ai_failed":           "Failed to get AI suggestions.",
		"ai_busy":             "An autofill request is already running.",
		"save_failed":         "Could not save the invoice.",
		"not_found":           "Not found.",
	},
	"es": {
		"required":            "Obligatorio",
		"client_required":     "Seleccione primero un cliente.",
		"client_not_selected": "Debe seleccionar un cliente antes de guardar.",
		"invalid_json":        "El cuerpo de la petición no es JSON válido.",
		"unauthorized":        "Debe iniciar sesión.",
		"plan_limit_reached":  "Límite del plan gratuito alcanzado. Mejore su plan para añadir más clientes.",
		"ai_failed":           "No se pudieron obtener sugerencias de IA.",
		"ai_busy":             "Ya hay una solicitud de autocompletado en curso.",
		"save_failed":         "No se pudo guardar la factura.",
		"not_found":           "No encontrado.",
	},
	"pt": {
		"required":            "Obrigatório",
		"client_required":     "Selecione primeiro um cliente.",
		"client_not_selected": "É necessário selecionar um cliente antes de guardar.",
		"invalid_json":        "O corpo do pedido não é JSON válido.",
		"unauthorized":        "É necessário iniciar sessão.",
		"plan_limit_reached":  "Limite do plano gratuito atingido. Faça upgrade para adicionar mais clientes.",
		"ai_failed":           "Não foi possível obter sugestões de IA.",
		"ai_busy":             "Já existe um pedido de preenchimento automático em curso.",
		"save_failed":         "Não foi possível guardar a fatura.",
		"not_found":           "Não encontrado.",
	},
}

// T translates a message code. Unknown language falls back to English;
// unknown code falls back to the code itself so callers never lose signal.
func T(lang, code string) string {
	if m, ok := translations[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := translations[defaultLang][code]; ok {
		return s
	}
	return code
}

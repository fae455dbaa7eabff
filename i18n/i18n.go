// Package i18n holds the translated user-facing messages (fr, en).
package i18n

import (
	"context"
	"strings"
)

// DefaultLang is used when nothing better is known.
const DefaultLang = "fr"

type ctxKey struct{}

var messages = map[string]map[string]string{
	"fr": {
		"required":                     "Requis",
		"must_be_positive":             "Doit être positif",
		"out_of_range":                 "Hors limites",
		"invalid_date":                 "Date invalide",
		"invalid_value":                "Valeur invalide",
		"unauthorized":                 "Non authentifié",
		"invalid_credentials":          "Email ou mot de passe invalide",
		"logged_out":                   "Déconnecté",
		"not_found":                    "Ressource introuvable",
		"organization_not_found":       "Organisation introuvable",
		"document_not_found":           "Document introuvable",
		"schedule_line_not_found":      "Échéance introuvable",
		"validation_failed":            "Les données envoyées sont invalides",
		"schedule_percentage_mismatch": "La somme des pourcentages doit être égale à 100%",
		"schedule_empty":               "L'échéancier doit contenir au moins une échéance",
		"invalid_status":               "Statut invalide",
		"schedule_locked":              "L'échéancier est en cours de modification, réessayez",
		"internal_error":               "Une erreur interne est survenue",
		"bad_request":                  "Requête invalide",
		"schedule_saved":               "Échéancier enregistré",
		"schedule_status_updated":      "Statut de l'échéance mis à jour",
		"template_created":             "Modèle créé",
	},
	"en": {
		"required":                     "Required",
		"must_be_positive":             "Must be positive",
		"out_of_range":                 "Out of range",
		"invalid_date":                 "Invalid date",
		"invalid_value":                "Invalid value",
		"unauthorized":                 "Unauthorized",
		"invalid_credentials":          "Invalid email or password",
		"logged_out":                   "Logged out",
		"not_found":                    "Resource not found",
		"organization_not_found":       "Organization not found",
		"document_not_found":           "Document not found",
		"schedule_line_not_found":      "Schedule line not found",
		"validation_failed":            "The given data was invalid",
		"schedule_percentage_mismatch": "Percentages must add up to 100%",
		"schedule_empty":               "The schedule needs at least one installment",
		"invalid_status":               "Invalid status",
		"schedule_locked":              "The schedule is being modified, retry later",
		"internal_error":               "An internal error occurred",
		"bad_request":                  "Malformed request",
		"schedule_saved":               "Payment schedule saved",
		"schedule_status_updated":      "Installment status updated",
		"template_created":             "Template created",
	},
}

// DetectLanguage picks fr or en from an Accept-Language header.
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		base, _, _ := strings.Cut(strings.ToLower(tag), "-")
		if _, ok := messages[base]; ok {
			return base
		}
	}
	return DefaultLang
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := messages[lang]
	return ok
}

// T translates code into lang, falling back to French and then to the code itself.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[DefaultLang][code]; ok {
		return s
	}
	return code
}

// WithLang stores the request language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFrom returns the language stored by WithLang, or DefaultLang.
func LangFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return DefaultLang
}

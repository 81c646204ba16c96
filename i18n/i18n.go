// Package i18n translates the machine codes returned by the API into French or English.
package i18n

import "strings"

const DefaultLang = "fr"

var dict = map[string]map[string]string{
	"fr": {
		// validation
		"required":             "Requis",
		"too_long":             "Trop long",
		"too_short":            "Trop court",
		"invalid_email":        "Adresse e-mail invalide",
		"must_be_non_negative": "Doit être positif ou nul",
		"must_be_positive":     "Doit être strictement positif",
		"invalid_choice":       "Valeur non autorisée",
		"unknown_currency":     "Devise inconnue",
		"unknown_client":       "Client inconnu",
		"accounting_currency":  "Le taux de la devise comptable est fixe",
		"invalid_period":       "Période invalide",
		"email_taken":          "Adresse e-mail déjà utilisée",
		// errors
		"validation_failed":    "Données invalides",
		"not_found":            "Introuvable",
		"unauthorized":         "Authentification requise",
		"invalid_credentials":  "Identifiants invalides",
		"invalid_json":         "Requête JSON invalide",
		"quote_locked":         "Le devis n'est plus modifiable",
		"client_in_use":        "Client utilisé par des devis",
		"backup_corrupt":       "Sauvegarde corrompue",
		"backup_user_mismatch": "Sauvegarde d'un autre utilisateur",
		"internal_error":       "Erreur interne",
		// quote document
		"quote":        "Devis",
		"client":       "Client",
		"date":         "Date",
		"valid_until":  "Valable jusqu'au",
		"description":  "Désignation",
		"origin":       "Origine",
		"quantity":     "Qté",
		"unit_price":   "P.U.",
		"line_total":   "Total",
		"total":        "Total",
		"down_payment": "Acompte",
		"balance_due":  "Reste à payer",
		"notes":        "Notes",
		"status":       "Statut",
		"draft":        "Brouillon",
		"sent":         "Envoyé",
		"accepted":     "Accepté",
		"rejected":     "Refusé",
	},
	"en": {
		"required":             "Required",
		"too_long":             "Too long",
		"too_short":            "Too short",
		"invalid_email":        "Invalid email address",
		"must_be_non_negative": "Must be zero or more",
		"must_be_positive":     "Must be greater than zero",
		"invalid_choice":       "Value not allowed",
		"unknown_currency":     "Unknown currency",
		"unknown_client":       "Unknown client",
		"accounting_currency":  "The accounting currency rate is fixed",
		"invalid_period":       "Invalid period",
		"email_taken":          "Email already in use",

		"validation_failed":    "Invalid data",
		"not_found":            "Not found",
		"unauthorized":         "Authentication required",
		"invalid_credentials":  "Invalid credentials",
		"invalid_json":         "Invalid JSON request",
		"quote_locked":         "The quote can no longer be changed",
		"client_in_use":        "Client is used by quotes",
		"backup_corrupt":       "Corrupt backup",
		"backup_user_mismatch": "Backup belongs to another user",
		"internal_error":       "Internal error",

		"quote":        "Quote",
		"client":       "Client",
		"date":         "Date",
		"valid_until":  "Valid until",
		"description":  "Description",
		"origin":       "Origin",
		"quantity":     "Qty",
		"unit_price":   "Unit price",
		"line_total":   "Total",
		"total":        "Total",
		"down_payment": "Down payment",
		"balance_due":  "Balance due",
		"notes":        "Notes",
		"status":       "Status",
		"draft":        "Draft",
		"sent":         "Sent",
		"accepted":     "Accepted",
		"rejected":     "Rejected",
	},
}

// DetectLanguage picks the first supported language of an Accept-Language
// header, falling back to French.
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag, _, _ := strings.Cut(part, ";")
		base, _, _ := strings.Cut(strings.TrimSpace(tag), "-")
		if lang := strings.ToLower(base); Supported(lang) {
			return lang
		}
	}
	return DefaultLang
}

// Supported reports whether lang has a dictionary.
func Supported(lang string) bool {
	_, ok := dict[lang]
	return ok
}

// T translates code into lang, then French, then returns the code itself.
func T(lang, code string) string {
	if s, ok := dict[lang][code]; ok {
		return s
	}
	if s, ok := dict[DefaultLang][code]; ok {
		return s
	}
	return code
}

// Messages translates every value of codes, keeping the keys.
func Messages(lang string, codes map[string]string) map[string]string {
	out := make(map[string]string, len(codes))
	for k, code := range codes {
		out[k] = T(lang, code)
	}
	return out
}

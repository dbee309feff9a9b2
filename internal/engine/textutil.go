package engine

import "strings"

func normaliseLanguage(candidate, fallback string) string {
	if trimmed := strings.TrimSpace(candidate); trimmed != "" {
		return strings.ToLower(trimmed)
	}
	if trimmed := strings.TrimSpace(fallback); trimmed != "" {
		return strings.ToLower(trimmed)
	}
	return LanguageAuto
}

// isAutoLanguage reports whether lang requests detection.
func isAutoLanguage(lang string) bool {
	return strings.EqualFold(strings.TrimSpace(lang), LanguageAuto) || strings.TrimSpace(lang) == ""
}

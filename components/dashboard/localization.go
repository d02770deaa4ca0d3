package dashboard

import "strings"

// ResolveLocalizedValue selects the best translation for locale and falls back to
// the supplied value. Keys are matched case-insensitively, and language-region
// pairs (`th-th`) fall back to their base language (`th`) when present.
func ResolveLocalizedValue(values map[string]string, locale, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	for _, candidate := range localeCandidates(locale) {
		for key, value := range values {
			if strings.EqualFold(key, candidate) && value != "" {
				return value
			}
		}
	}
	return fallback
}

// LabelFor returns the item label for locale, falling back to Label.
func (item MenuItem) LabelFor(locale string) string {
	return ResolveLocalizedValue(item.LabelLocalized, locale, item.Label)
}

func localeCandidates(locale string) []string {
	locale = normalizeLocale(locale)
	if locale == "" {
		return []string{"default"}
	}
	candidates := []string{locale}
	if idx := strings.IndexAny(locale, "-_"); idx > 0 {
		candidates = append(candidates, locale[:idx])
	}
	return append(candidates, "default")
}

func normalizeLocale(locale string) string {
	return strings.TrimSpace(strings.ToLower(locale))
}

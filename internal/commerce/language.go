package commerce

import (
	"context"
	"strings"

	slogctx "github.com/veqryn/slog-context"
)

type LanguageCode string

const (
	LanguageEN LanguageCode = "EN"
	LanguageES LanguageCode = "ES"
)

// LanguageFromLocale maps a storefront locale to the commerce language code.
// Unknown locales fall back to English.
func LanguageFromLocale(ctx context.Context, locale string) LanguageCode {
	base, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(locale)), "-")
	switch base {
	case "en":
		return LanguageEN
	case "es":
		return LanguageES
	default:
		slogctx.Warn(ctx, "Language not defined, defaulting to English", "locale", locale)
		return LanguageEN
	}
}

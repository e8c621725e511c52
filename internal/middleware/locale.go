package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-quiz/internal/i18n"
)

// Locale resolves the request language from ?lang= or Accept-Language and
// stores it under i18n.ContextKeyLocale.
func Locale(tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := c.Query("lang")
		if lang == "" {
			lang = preferredLanguage(c.GetHeader("Accept-Language"), tr)
		}
		lang = tr.Resolve(lang)

		c.Set(i18n.ContextKeyLocale, lang)
		c.Header("Content-Language", lang)
		c.Next()
	}
}

// preferredLanguage returns the first Accept-Language entry the translator
// supports. Entries are taken in header order; q weights are ignored.
func preferredLanguage(header string, tr *i18n.Translator) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" || tag == "*" {
			continue
		}
		normalized := strings.ToLower(strings.ReplaceAll(tag, "_", "-"))
		resolved := tr.Resolve(tag)
		if normalized == resolved || strings.HasPrefix(normalized, resolved+"-") {
			return resolved
		}
	}
	return ""
}

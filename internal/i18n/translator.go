// Package i18n resolves display strings by key for the supported locales.
package i18n

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/fr"
	"github.com/go-playground/locales/id"
	ut "github.com/go-playground/universal-translator"
)

// ContextKeyLocale is the Gin context key holding the negotiated locale.
const ContextKeyLocale = "locale"

// Translator looks up catalog messages and falls back to a caller-provided
// string when a key or locale has no entry.
type Translator struct {
	uni           *ut.UniversalTranslator
	defaultLocale string
}

// New builds a Translator over en, id and fr with the built-in catalogs loaded.
// defaultLocale is used for unsupported languages; it falls back to en.
func New(defaultLocale string) (*Translator, error) {
	english := en.New()
	uni := ut.New(english, english, id.New(), fr.New())

	t := &Translator{uni: uni, defaultLocale: "en"}
	if _, ok := uni.GetTranslator(defaultLocale); ok {
		t.defaultLocale = defaultLocale
	}

	for locale, messages := range catalogs {
		trans, ok := uni.GetTranslator(locale)
		if !ok {
			return nil, fmt.Errorf("locale %q not registered", locale)
		}
		for key, text := range messages {
			if err := trans.Add(key, text, true); err != nil {
				return nil, fmt.Errorf("add %s/%s: %w", locale, key, err)
			}
		}
	}
	return t, nil
}

// Universal exposes the underlying translator set, e.g. for validator translations.
func (t *Translator) Universal() *ut.UniversalTranslator { return t.uni }

// Supported reports the locales with a catalog.
func (t *Translator) Supported() []string {
	out := make([]string, 0, len(catalogs))
	for _, l := range []locales.Translator{en.New(), id.New(), fr.New()} {
		out = append(out, l.Locale())
	}
	return out
}

// Resolve maps a language tag such as "fr-CA" or "id_ID" to a supported
// locale, or the default locale.
func (t *Translator) Resolve(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(lang, "_", "-")))
	if lang == "" {
		return t.defaultLocale
	}
	if _, ok := t.uni.GetTranslator(lang); ok {
		return lang
	}
	if base, _, found := strings.Cut(lang, "-"); found {
		if _, ok := t.uni.GetTranslator(base); ok {
			return base
		}
	}
	return t.defaultLocale
}

// Translator returns the ut.Translator for lang after resolution.
func (t *Translator) Translator(lang string) ut.Translator {
	trans, _ := t.uni.GetTranslator(t.Resolve(lang))
	return trans
}

// T returns the message for key in lang. When the key is missing, fallback is
// used instead. Params replace {0}, {1}, ... in either case.
func (t *Translator) T(lang, key, fallback string, params ...string) string {
	locale := t.Resolve(lang)
	text, ok := catalogs[locale][key]
	if !ok || placeholders(text) > len(params) {
		return substitute(fallback, params)
	}
	trans, _ := t.uni.GetTranslator(locale)
	msg, err := trans.T(key, params...)
	if err != nil || msg == "" {
		return substitute(fallback, params)
	}
	return msg
}

// placeholders counts the {n} parameters text expects.
func placeholders(text string) int {
	n := 0
	for strings.Contains(text, "{"+strconv.Itoa(n)+"}") {
		n++
	}
	return n
}

func substitute(text string, params []string) string {
	for i, p := range params {
		text = strings.ReplaceAll(text, "{"+strconv.Itoa(i)+"}", p)
	}
	return text
}

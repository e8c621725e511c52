package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"
	id_translations "github.com/go-playground/validator/v10/translations/id"
	"github.com/stemsi/exstem-quiz/internal/i18n"
)

// translator resolves the request locale to a field-error translator.
var translator *i18n.Translator

// Setup registers the validator with en, id and fr translations on Gin's binding engine.
// Call once during application startup.
func Setup(tr *i18n.Translator) error {
	translator = tr

	v, ok := binding.Validator.Engine().(*govalidator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}

	// Use JSON tag name (or form tag for query binding) in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if tag == "" {
			tag = fld.Tag.Get("form")
		}
		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	register := map[string]func(*govalidator.Validate, ut.Translator) error{
		"en": en_translations.RegisterDefaultTranslations,
		"id": id_translations.RegisterDefaultTranslations,
		"fr": fr_translations.RegisterDefaultTranslations,
	}
	for locale, fn := range register {
		trans, found := tr.Universal().GetTranslator(locale)
		if !found {
			continue
		}
		if err := fn(v, trans); err != nil {
			return err
		}
	}
	return nil
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name to human-readable error message in lang. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error, lang string) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if translator == nil {
				fields[fe.Field()] = fe.Error()
				continue
			}
			fields[fe.Field()] = fe.Translate(translator.Translator(lang))
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err, c.GetString(i18n.ContextKeyLocale))
	}
	return nil
}

// BindQuery binds and validates query parameters into dst.
func BindQuery(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindQuery(dst); err != nil {
		return TranslateErrors(err, c.GetString(i18n.ContextKeyLocale))
	}
	return nil
}

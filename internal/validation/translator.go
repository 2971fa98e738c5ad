package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh_Hant_TW"
	ut "github.com/go-playground/universal-translator"
	"golang.org/x/text/language"

	"github.com/deppfellow/profile-api/internal/errs"
)

// Supported locales, as named by go-playground/locales.
const (
	LocaleEnglish            = "en"
	LocaleTraditionalChinese = "zh_Hant_TW"
)

// Message templates per locale. {0} is always the field path.
var templates = map[string]map[string]string{
	LocaleEnglish: {
		"required":  "{0} is required",
		"type":      "{0} must be of type {1}",
		"pattern":   `{0} must match pattern "{1}"`,
		"malformed": "{0} is not valid JSON",
		"min":       "{0} must be at least {1}",
		"min_len":   "{0} must be at least {1} characters",
		"max":       "{0} must not exceed {1}",
		"max_len":   "{0} must not exceed {1} characters",
		"len":       "{0} must be {1}",
		"len_len":   "{0} must be {1} characters long",
		"oneof":     "{0} must be one of: {1}",
		"email":     "{0} must be a valid email address",
		"uuid":      "{0} must be a valid UUID",
		"uuid4":     "{0} must be a valid UUID",
		"base64":    "{0} must be valid base64 data",
		"url":       "{0} must be a valid URL",
		"default":   "{0} failed the {1} check",
	},
	LocaleTraditionalChinese: {
		"required":  "{0} 為必填欄位",
		"type":      "{0} 的型別必須是 {1}",
		"pattern":   `{0} 必須符合格式 "{1}"`,
		"malformed": "{0} 不是有效的 JSON",
		"min":       "{0} 必須大於或等於 {1}",
		"min_len":   "{0} 長度至少需要 {1} 個字元",
		"max":       "{0} 必須小於或等於 {1}",
		"max_len":   "{0} 長度不可超過 {1} 個字元",
		"len":       "{0} 必須等於 {1}",
		"len_len":   "{0} 長度必須為 {1} 個字元",
		"oneof":     "{0} 必須是下列其中之一: {1}",
		"email":     "{0} 必須是有效的電子郵件地址",
		"uuid":      "{0} 必須是有效的 UUID",
		"uuid4":     "{0} 必須是有效的 UUID",
		"base64":    "{0} 必須是有效的 base64 資料",
		"url":       "{0} 必須是有效的網址",
		"default":   "{0} 未通過 {1} 檢查",
	},
}

// Translator renders field error messages in the client's language.
// It is built once at startup and only read afterwards.
type Translator struct {
	uni     *ut.UniversalTranslator
	matcher language.Matcher
	locales []string
}

var defaultTranslator = MustNewTranslator()

// NewTranslator registers every template for every supported locale.
func NewTranslator() (*Translator, error) {
	english := en.New()
	uni := ut.New(english, english, zh_Hant_TW.New())

	for locale, messages := range templates {
		trans, found := uni.GetTranslator(locale)
		if !found {
			return nil, fmt.Errorf("translator for locale %s not found", locale)
		}
		for key, text := range messages {
			if err := trans.Add(key, text, false); err != nil {
				return nil, fmt.Errorf("register %s/%s: %w", locale, key, err)
			}
		}
	}

	return &Translator{
		uni: uni,
		// Order matters: the first tag is the fallback.
		matcher: language.NewMatcher([]language.Tag{
			language.English,
			language.TraditionalChinese,
		}),
		locales: []string{LocaleEnglish, LocaleTraditionalChinese},
	}, nil
}

// MustNewTranslator is NewTranslator for package initialization.
func MustNewTranslator() *Translator {
	t, err := NewTranslator()
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultTranslator returns the shared translator.
func DefaultTranslator() *Translator {
	return defaultTranslator
}

// Locale picks the best supported locale for an Accept-Language header.
// English when nothing matches.
func (t *Translator) Locale(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return LocaleEnglish
	}

	_, index := language.MatchStrings(t.matcher, acceptLanguage)
	if index < 0 || index >= len(t.locales) {
		return LocaleEnglish
	}
	return t.locales[index]
}

// Message renders template key in locale, falling back to English.
func (t *Translator) Message(locale, key string, params ...string) string {
	if trans, found := t.uni.GetTranslator(locale); found {
		if msg, err := trans.T(key, params...); err == nil {
			return msg
		}
	}

	if trans, found := t.uni.GetTranslator(LocaleEnglish); found {
		if msg, err := trans.T(key, params...); err == nil {
			return msg
		}
	}

	if len(params) > 0 {
		return params[0] + " is invalid"
	}
	return "invalid value"
}

// Localize returns a copy of fieldErrors with messages rendered in locale.
// Errors without a template (e.g. custom struct checks) are kept as is.
func (t *Translator) Localize(locale string, fieldErrors []errs.FieldError) []errs.FieldError {
	if len(fieldErrors) == 0 {
		return fieldErrors
	}

	out := make([]errs.FieldError, len(fieldErrors))
	for i, fe := range fieldErrors {
		out[i] = fe
		if fe.Template != "" {
			out[i].Error = t.Message(locale, fe.Template, fe.Params...)
		}
	}
	return out
}

// LocalizeError localizes the field errors of a validation failure.
// Any other error is returned untouched.
func (t *Translator) LocalizeError(locale string, err error) error {
	httpErr := errs.From(err)
	if httpErr == nil || httpErr.Kind != errs.KindValidationFailed || len(httpErr.Errors) == 0 {
		return err
	}

	localized := t.Localize(locale, httpErr.Errors)
	out := httpErr.WithMessage(localized[0].Error)
	out.Errors = localized
	return out
}

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/profile-api/internal/errs"
)

func TestTranslator_Locale(t *testing.T) {
	tr := DefaultTranslator()

	assert.Equal(t, LocaleEnglish, tr.Locale(""))
	assert.Equal(t, LocaleEnglish, tr.Locale("en-US,en;q=0.9"))
	assert.Equal(t, LocaleTraditionalChinese, tr.Locale("zh-TW,zh;q=0.9"))
	assert.Equal(t, LocaleEnglish, tr.Locale("de-DE"))
}

func TestTranslator_Localize(t *testing.T) {
	result := Validate([]Rule{Field("username", KindString).Required()}, map[string]any{})
	require.Len(t, result.Errors, 1)

	localized := DefaultTranslator().Localize(LocaleTraditionalChinese, result.Errors)
	assert.Equal(t, "username 為必填欄位", localized[0].Error)
	assert.Equal(t, "required", localized[0].Reason)

	// The input slice is not modified.
	assert.Equal(t, "username is required", result.Errors[0].Error)
}

func TestTranslator_LocalizeError(t *testing.T) {
	tr := DefaultTranslator()
	err := errs.NewValidationFailedError([]errs.FieldError{
		newFieldError("password", "required", ""),
	})

	localized := errs.From(tr.LocalizeError(LocaleTraditionalChinese, err))
	assert.Equal(t, "password 為必填欄位", localized.Message)
	assert.Equal(t, "password 為必填欄位", localized.Errors[0].Error)

	other := errs.NewUnauthorizedError("Unauthorized", false)
	assert.Same(t, other, tr.LocalizeError(LocaleTraditionalChinese, other))
}

func TestTranslator_UnknownTemplateFallsBack(t *testing.T) {
	assert.Equal(t, "x is invalid", DefaultTranslator().Message(LocaleEnglish, "nope", "x"))
}

package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-formkit/pkg/model"
)

// Metadata keys naming translation keys on a field.
const (
	LabelKey       = "labelKey"
	PlaceholderKey = "placeholderKey"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when no
// translator is configured.
var ErrMissingTranslator = errors.New("render: translator is not configured")

// Translator resolves a key for a locale.
type Translator interface {
	Translate(locale, key string) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string) (string, error)

// Translate calls the underlying function.
func (fn TranslatorFunc) Translate(locale, key string) (string, error) {
	return fn(locale, key)
}

// MissingTranslationHandler picks the text used when a key cannot be
// translated.
type MissingTranslationHandler func(locale, key, fallback string, err error) string

// LocalizeTemplate translates field labels and placeholders that carry a
// labelKey or placeholderKey in their metadata. Missing translations keep
// the existing text, or the key when the text is empty.
func LocalizeTemplate(tpl *model.FormTemplate, locale string, t Translator, onMissing MissingTranslationHandler) {
	if tpl == nil {
		return
	}
	if onMissing == nil {
		onMissing = keepFallback
	}
	for i := range tpl.Fields {
		field := &tpl.Fields[i]
		if key := strings.TrimSpace(field.Metadata[LabelKey]); key != "" {
			field.Label = translate(locale, key, field.Label, t, onMissing)
		}
		if key := strings.TrimSpace(field.Metadata[PlaceholderKey]); key != "" {
			field.Placeholder = translate(locale, key, field.Placeholder, t, onMissing)
		}
	}
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	if t == nil {
		return onMissing(locale, key, fallback, ErrMissingTranslator)
	}
	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	return onMissing(locale, key, fallback, err)
}

func keepFallback(_, key, fallback string, _ error) string {
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

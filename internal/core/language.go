package core

import (
	"fmt"
	"strings"
)

// DefaultLanguage is used for ingestion when the requested language is not supported.
const DefaultLanguage = "en"

// SupportedLanguages lists the language codes the pipeline accepts, in display order.
var SupportedLanguages = []string{"en", "es", "pt"}

const unsupportedLanguageMessage = "I communicate in English, Spanish, and Portuguese. " +
	"Could you please rephrase your question in one of these languages?"

// UnsupportedLanguageError is returned by every pipeline entry point when the
// requested language is outside SupportedLanguages.
type UnsupportedLanguageError struct {
	Language string
	Message  string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language %q", e.Language)
}

// ValidateLanguage lower-cases and trims language and checks it against
// SupportedLanguages.
func ValidateLanguage(language string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(language))
	for _, supported := range SupportedLanguages {
		if normalized == supported {
			return normalized, nil
		}
	}
	return "", &UnsupportedLanguageError{Language: normalized, Message: unsupportedLanguageMessage}
}

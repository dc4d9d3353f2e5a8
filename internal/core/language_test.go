package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLanguage(t *testing.T) {
	for _, in := range []string{"en", "ES", " pt ", "\tEn\n"} {
		lang, err := ValidateLanguage(in)
		require.NoError(t, err, in)
		assert.Contains(t, SupportedLanguages, lang)
	}
}

func TestValidateLanguageRejects(t *testing.T) {
	for _, in := range []string{"fr", " DE ", "", "english", "pt-BR"} {
		_, err := ValidateLanguage(in)
		var unsupported *UnsupportedLanguageError
		require.True(t, errors.As(err, &unsupported), in)
		assert.NotContains(t, unsupported.Language, " ")
		assert.Equal(t, unsupportedLanguageMessage, unsupported.Message)
	}

	_, err := ValidateLanguage(" DE ")
	var unsupported *UnsupportedLanguageError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "de", unsupported.Language)
}

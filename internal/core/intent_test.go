package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsGreeting(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"hello", true},
		{"  Hola  ", true},
		{"Olá", true},
		{"good morning", true},
		{"Buenas noches", true},
		{"hey there!", true},
		{"oi, bom dia", true},
		{"hi, what's your experience with Python?", false},
		{"Tell me about your backend experience", false},
		{"what projects did you build", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGreeting(tt.query))
		})
	}
}

func TestIsOffTopic(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"what's the weather today?", true},
		{"Can you give me a RECIPE FOR lasagna", true},
		{"¿Cuál es el precio del bitcoin?", true},
		{"quem ganhou o jogo ontem?", true},
		{"debug this for me please", true},
		{"Tell me about your backend experience", false},
		{"¿Qué tecnologías usás?", false},
		{"Quais projetos você fez?", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOffTopic(tt.query))
		})
	}
}

func TestPhraseTablesCoverEveryLanguage(t *testing.T) {
	for _, lang := range SupportedLanguages {
		assert.NotEmpty(t, greetingPhrases[lang], lang)
		assert.NotEmpty(t, offTopicIndicators[lang], lang)
	}
}

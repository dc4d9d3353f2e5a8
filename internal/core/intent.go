package core

import "strings"

// greetingPhrases and offTopicIndicators are grouped by language for
// maintenance only; matching always runs against every language.
var greetingPhrases = map[string][]string{
	"en": {"hi", "hello", "hey", "good morning", "good afternoon", "good evening"},
	"es": {"hola", "buenos días", "buenas tardes", "buenas noches"},
	"pt": {"ola", "olá", "bom dia", "boa tarde", "boa noite"},
}

var offTopicIndicators = map[string][]string{
	"en": {
		"weather", "recipe for", "cook a", "bake a",
		"movie recommendation", "what movie", "what series",
		"game recommendation", "sports score", "who won the game",
		"write this code", "debug this", "fix this code", "solve this problem for me",
		"stock price", "bitcoin price", "crypto price",
		"news about", "latest news", "current events",
	},
	"es": {
		"clima", "pronóstico", "pronostico", "receta para", "receta de", "cocinar un", "hornear un",
		"recomendación de película", "recomendacion de pelicula", "qué película", "que pelicula",
		"qué serie", "que serie", "recomendación de juego", "recomendacion de juego",
		"resultado del partido", "marcador", "quién ganó", "quien gano",
		"escribe este código", "escribe este codigo", "escribime un", "depurar esto",
		"arregla este código", "arregla este codigo", "resuelve este problema", "resolvé este",
		"precio de las acciones", "cotización", "cotizacion", "precio del bitcoin", "precio de cripto",
		"noticias sobre", "últimas noticias", "ultimas noticias", "actualidad",
	},
	"pt": {
		"previsão do tempo", "previsao do tempo", "receita para", "receita de", "cozinhar um", "assar um",
		"recomendação de filme", "recomendacao de filme", "qual filme", "qual série", "qual serie",
		"recomendação de jogo", "recomendacao de jogo", "placar", "resultado do jogo", "quem ganhou",
		"escreva este código", "escreva este codigo", "debugar isso", "depurar isso",
		"conserte este código", "conserta esse codigo", "arrumar esse", "resolva este problema",
		"preço da ação", "preco da acao", "cotação", "cotacao", "preço do bitcoin", "preco do bitcoin",
		"notícias sobre", "noticias sobre", "últimas notícias", "ultimas noticias", "atualidades",
	},
}

// IsGreeting reports whether query is a bare greeting: either exactly one of
// the known phrases, or a short message (three words or fewer) containing one.
func IsGreeting(query string) bool {
	lowered := strings.ToLower(strings.TrimSpace(query))
	short := len(strings.Fields(query)) <= 3
	for _, phrases := range greetingPhrases {
		for _, phrase := range phrases {
			if lowered == phrase {
				return true
			}
			if short && strings.Contains(lowered, phrase) {
				return true
			}
		}
	}
	return false
}

// IsOffTopic reports whether query contains any known off-topic indicator.
// False negatives are expected; generation is grounded in retrieved context anyway.
func IsOffTopic(query string) bool {
	lowered := strings.ToLower(query)
	for _, indicators := range offTopicIndicators {
		for _, indicator := range indicators {
			if strings.Contains(lowered, indicator) {
				return true
			}
		}
	}
	return false
}

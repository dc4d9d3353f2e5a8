package core

// Outcome is the way a single pipeline execution was resolved.
type Outcome int

const (
	OutcomeAnswer Outcome = iota
	OutcomeGreeting
	OutcomeOffTopic
	OutcomeNoContext
	OutcomeEmbeddingFailure
	OutcomeGenerationFailure
	OutcomeUnsupportedLanguage
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAnswer:
		return "answer"
	case OutcomeGreeting:
		return "greeting"
	case OutcomeOffTopic:
		return "off_topic"
	case OutcomeNoContext:
		return "no_context"
	case OutcomeEmbeddingFailure:
		return "embedding_failure"
	case OutcomeGenerationFailure:
		return "generation_failure"
	case OutcomeUnsupportedLanguage:
		return "unsupported_language"
	default:
		return "unknown"
	}
}

var staticMessages = map[Outcome]map[string]string{
	OutcomeGreeting: {
		"en": "Hi! I'm MatIAs, Matías Estigarribia's digital twin. \n\n" +
			"I'm here to answer your questions about my professional experience, technical skills, projects, and background. " +
			"Whether you're a recruiter, a potential client, or just curious about my work, feel free to ask me anything!\n\n" +
			"What would you like to know?",
		"es": "¡Hola! Soy MatIAs, el gemelo digital de Matías Estigarribia.\n\n" +
			"Estoy aquí para responder tus preguntas sobre mi experiencia profesional, habilidades técnicas, proyectos y trayectoria. " +
			"No importa si sos reclutador, cliente potencial, o simplemente un entusiasta curioso por mi trabajo, ¡preguntame lo que quieras!\n\n" +
			"¿Qué te gustaría saber?",
		"pt": "Olá! Sou MatIAs, o gêmeo digital de Matías Estigarribia.\n\n" +
			"Estou aqui para responder as suas perguntas sobre minha experiência profissional, habilidades técnicas, projetos e trajetória. " +
			"Seja você recrutador, cliente em potencial, ou apenas curioso sobre meu trabalho, fique à vontade para perguntar!\n\n" +
			"O que você gostaria de saber?",
	},
	OutcomeOffTopic: {
		"en": "That's an interesting topic, but I'm here to discuss my professional work and experience. What would you like to know about my background or projects?",
		"es": "Es un tema interesante, pero estoy aquí para hablar sobre mi trabajo y experiencia profesional. ¿Qué te gustaría saber sobre mi trayectoria o proyectos?",
		"pt": "É um tópico interessante, mas estou aqui para discutir meu trabalho e experiência profissional. O que você gostaria de saber sobre minha trajetória ou projetos?",
	},
	OutcomeEmbeddingFailure: {
		"en": "I'm having trouble processing your question right now. Could you try rephrasing it?",
		"es": "Estoy teniendo problemas para procesar tu pregunta ahora. ¿Podrías reformularla?",
		"pt": "Estou tendo problemas para processar sua pergunta agora. Poderia reformulá-la?",
	},
	OutcomeNoContext: {
		"en": "I don't have specific information about that in my knowledge base. Please reach out through my contact form and I'll be happy to provide more details.",
		"es": "No tengo información específica sobre eso en mi base de conocimientos. Por favor contactame a través de mi formulario y estaré encantado de brindarte más detalles.",
		"pt": "Não tenho informações específicas sobre isso em minha base de conhecimento. Por favor, entre em contato através do meu formulário e terei prazer em fornecer mais detalhes.",
	},
	OutcomeGenerationFailure: {
		"en": "I apologize, but I'm experiencing technical difficulties right now. Please try again in a moment, or contact me directly through my contact form.",
		"es": "Disculpá, pero estoy experimentando dificultades técnicas en este momento. Por favor intentá nuevamente en un momento, o contactame directamente a través de mi formulario.",
		"pt": "Desculpe, mas estou enfrentando dificuldades técnicas no momento. Por favor, tente novamente em um momento, ou entre em contato diretamente através do meu formulário.",
	},
}

// StaticMessage returns the fixed reply for outcome in language, falling back
// to English. It returns "" for outcomes without a fixed reply.
func StaticMessage(outcome Outcome, language string) string {
	byLanguage, ok := staticMessages[outcome]
	if !ok {
		return ""
	}
	if msg, ok := byLanguage[language]; ok {
		return msg
	}
	return byLanguage[DefaultLanguage]
}

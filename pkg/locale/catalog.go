package locale

// QuickAction is a predefined prompt offered on an empty conversation.
type QuickAction struct {
	Label  string
	Prompt string
}

type Catalog struct {
	Language     string
	Title        string
	Placeholder  string
	Welcome      string
	WelcomeHint  string
	QuickActions []QuickAction
	ErrorBanner  string
	Copied       string
	ToggleOpen   string
	ToggleClosed string
	Thinking     string
	Unavailable  string
	Suggestions  string
	NewChat      string
	Help         string
}

var catalogs = map[string]Catalog{
	English: {
		Language:    English,
		Title:       "Agency assistant",
		Placeholder: "Ask about our services, rates or campaigns…",
		Welcome:     "Hi! How can we help you today?",
		WelcomeHint: "Pick a topic or type your question.",
		QuickActions: []QuickAction{
			{Label: "Services", Prompt: "What services do you offer?"},
			{Label: "Rates", Prompt: "What are your rates?"},
			{Label: "Contact", Prompt: "How can I contact you?"},
		},
		ErrorBanner:  "Something went wrong. Please try again.",
		Copied:       "Copied!",
		ToggleOpen:   "Close chat",
		ToggleClosed: "Chat with us",
		Thinking:     "Thinking…",
		Unavailable:  "Chat is unavailable right now.",
		Suggestions:  "Suggestions",
		NewChat:      "New chat",
		Help:         "enter send • alt+enter newline • alt+1-3 pick • ctrl+y copy • ctrl+n new chat • esc close",
	},
	Spanish: {
		Language:    Spanish,
		Title:       "Asistente de la agencia",
		Placeholder: "Pregunta por nuestros servicios, tarifas o campañas…",
		Welcome:     "¡Hola! ¿En qué podemos ayudarte hoy?",
		WelcomeHint: "Elige un tema o escribe tu pregunta.",
		QuickActions: []QuickAction{
			{Label: "Servicios", Prompt: "¿Qué servicios ofrecen?"},
			{Label: "Tarifas", Prompt: "¿Cuáles son sus tarifas?"},
			{Label: "Contacto", Prompt: "¿Cómo los contacto?"},
		},
		ErrorBanner:  "Algo salió mal. Inténtalo de nuevo.",
		Copied:       "¡Copiado!",
		ToggleOpen:   "Cerrar chat",
		ToggleClosed: "Chatea con nosotros",
		Thinking:     "Pensando…",
		Unavailable:  "El chat no está disponible en este momento.",
		Suggestions:  "Sugerencias",
		NewChat:      "Nuevo chat",
		Help:         "enter enviar • alt+enter salto • alt+1-3 elegir • ctrl+y copiar • ctrl+n nuevo chat • esc cerrar",
	},
}

// CatalogFor returns the strings for lang, matched with Match.
func CatalogFor(lang string) Catalog {
	return catalogs[Match(lang)]
}

package devserver

import (
	"strings"

	"github.com/go-go-golems/concierge/pkg/chat"
)

// FailTrigger in the last user message makes the stub fail mid-reply.
const FailTrigger = "#fail"

type canned struct {
	keywords []string
	en, es   string
}

var cannedReplies = []canned{
	{
		keywords: []string{"rate", "price", "pricing", "cost", "tarifa", "precio", "costo"},
		en: "Our campaign packages start at **$500 per month**. Pricing depends on:\n" +
			"- channel mix\n- audience size\n- creative production\n\n" +
			"See the [rate card](https://example.com/rates) for details.\n\n" +
			"[SUGGESTIONS]\n- What is included in the base package?\n- Do you offer discounts?\n- Book a call",
		es: "Nuestros paquetes de campaña empiezan en **$500 al mes**. El precio depende de:\n" +
			"- la mezcla de canales\n- el tamaño de la audiencia\n- la producción creativa\n\n" +
			"Consulta la [tarifa](https://example.com/rates) para más detalles.\n\n" +
			"[SUGGESTIONS]\n- ¿Qué incluye el paquete base?\n- ¿Ofrecen descuentos?\n- Agendar una llamada",
	},
	{
		keywords: []string{"service", "offer", "do you do", "servicio", "ofrecen"},
		en: "We run three kinds of work:\n" +
			"1. Paid media buying\n2. Social content production\n3. Influencer partnerships\n\n" +
			"Each one is handled by a *dedicated* team.\n\n" +
			"[SUGGESTIONS]\n1. Tell me about paid media\n2. Show past campaigns\n3. Talk to sales",
		es: "Trabajamos en tres áreas:\n" +
			"1. Compra de medios pagados\n2. Producción de contenido social\n3. Alianzas con influencers\n\n" +
			"Cada una la lleva un equipo *dedicado*.\n\n" +
			"[SUGGESTIONS]\n1. Cuéntame de medios pagados\n2. Ver campañas anteriores\n3. Hablar con ventas",
	},
	{
		keywords: []string{"contact", "call", "email", "contacto", "llamada", "correo"},
		en: "You can reach the team at `hello@example.com` or book a slot on our " +
			"[calendar](https://example.com/book).\n\n" +
			"[SUGGESTIONS]\n- What are your office hours?\n- Where are you located?",
		es: "Puedes escribir a `hello@example.com` o reservar un espacio en nuestro " +
			"[calendario](https://example.com/book).\n\n" +
			"[SUGGESTIONS]\n- ¿Cuál es su horario?\n- ¿Dónde están ubicados?",
	},
}

const (
	fallbackEN = "Thanks for your message! I can help with **rates**, *services* and getting in touch.\n\n" +
		"[SUGGESTIONS]\n- What are your rates?\n- What services do you offer?\n- How can I contact you?"
	fallbackES = "¡Gracias por tu mensaje! Puedo ayudarte con **tarifas**, *servicios* y formas de contacto.\n\n" +
		"[SUGGESTIONS]\n- ¿Cuáles son sus tarifas?\n- ¿Qué servicios ofrecen?\n- ¿Cómo los contacto?"
)

// Reply picks the canned reply for req and reports whether the stub should
// fail after the first chunk.
func Reply(req chat.Request) (string, bool) {
	last := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == chat.RoleUser {
			last = strings.ToLower(req.Messages[i].Content)
			break
		}
	}
	spanish := strings.HasPrefix(strings.ToLower(req.Language), "es")
	fail := strings.Contains(last, FailTrigger)

	for _, c := range cannedReplies {
		for _, kw := range c.keywords {
			if strings.Contains(last, kw) {
				if spanish {
					return c.es, fail
				}
				return c.en, fail
			}
		}
	}
	if spanish {
		return fallbackES, fail
	}
	return fallbackEN, fail
}

// Chunks splits text word by word; concatenating the chunks gives text back.
func Chunks(text string) []string {
	var out []string
	for _, c := range strings.SplitAfter(text, " ") {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

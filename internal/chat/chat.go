// Package chat implements the storefront's keyword-matching assistant. It is
// deliberately not a language model: queries are bucketed on keywords and
// answered with fixed store copy.
package chat

import "strings"

const storeInfo = `📍 **Mathallen Malmö**
Lantmannagatan 59, 214 48 Malmö
Tel: 040-92 44 20

📍 **Mathallen Lugnet**
Lugna gatan 2, 211 60 Malmö
Tel: 040-92 44 20

🕐 **Öppettider:** Alla dagar 07:00 - 22:00`

var responses = map[string]string{
	"greeting": "Hej och välkommen till Mathallen! 👋 Jag är din virtuella assistent. Hur kan jag hjälpa dig idag?",
	"hours":    "Vi har öppet alla dagar mellan 07:00 och 22:00. Välkommen in!\n" + storeInfo,
	"location": "Du hittar oss på två platser i Malmö:\n" + storeInfo,
	"contact":  "Du kan nå oss på telefon 040-92 44 20. Här är våra butiker:\n" + storeInfo,
	"default":  "Tack för din fråga! Välkommen till Mathallen - din lokala stormarknad i Malmö med färska produkter, bra priser och veckans bästa erbjudanden.\n" + storeInfo,
}

var keywordBuckets = []struct {
	response string
	keywords []string
}{
	{"greeting", []string{"hej", "hallå", "tjena", "hejsan", "god dag", "hello", "hi", "morsning"}},
	{"hours", []string{"öppet", "öppna", "stänger", "öppettider", "tider", "timmar", "när"}},
	{"location", []string{"var", "hitta", "adress", "ligger", "vägen", "karta", "plats"}},
	{"contact", []string{"kontakt", "telefon", "ring", "nummer", "nå", "mail", "mejl"}},
}

// Respond returns the assistant's answer for a visitor query. Very short
// queries get the greeting.
func Respond(query string) string {
	query = strings.ToLower(strings.TrimSpace(query))
	if len(query) < 2 {
		return responses["greeting"]
	}

	for _, bucket := range keywordBuckets {
		for _, kw := range bucket.keywords {
			if strings.Contains(query, kw) {
				return responses[bucket.response]
			}
		}
	}

	return responses["default"]
}

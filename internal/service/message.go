package service

import (
	"fmt"
	"math/rand"
	"strings"

	"immosearch/internal/model"
)

// Message type constants
const (
	MessageNoResults = "no_results"
	MessageResults   = "results"
)

var noResultMessages = []string{
	"Nu am gasit %s %s care sa corespunda criteriilor tale. Incearca sa largesti aria de cautare sau sa ajustezi filtrele.",
	"Hmm, nu am gasit nimic. Poate incerci cu alte criterii sau intr-o alta zona?",
	"Din pacate, nu exista %s %s disponibile cu aceste filtre. Vrei sa incercam altceva?",
	"Momentan nu apar %s %s care sa se potriveasca. Pot extinde cautarea daca vrei.",
}

var introPhrases = []string{
	"Am gasit %d %s",
	"Sunt %d %s disponibile",
	"Iata %d %s",
	"Am identificat %d %s",
	"Afisez %d %s potrivite pentru cautarea ta",
}

var refineSuggestions = []string{
	" Poti rafina cautarea specificand zona exacta sau intervalul de pret.",
	" Incearca sa adaugi mai multe detalii pentru rezultate mai precise.",
	" Spune-mi daca vrei sa filtrez dupa numarul de camere sau alte facilitati.",
	" Daca doresti, pot exclude agentiile sau afisa doar anunturi cu fotografii.",
}

var fewResultEncouragements = []string{
	" Arata bine! Verifica rezultatele de mai jos.",
	" Iata ce am gasit pentru tine.",
	" Sunt putine rezultate, dar pot extinde aria de cautare daca doresti.",
}

// BuildAssistantMessage produces the conversational summary shown above the
// result list. Wording varies per call; the bucket (message type) is
// determined only by the result count.
func BuildAssistantMessage(state *model.FilterState, total int) (string, string) {
	propertyNoun := "proprietati"
	if state.PropertyType != nil {
		switch *state.PropertyType {
		case "Apartamente":
			propertyNoun = "apartamente"
		case "Case":
			propertyNoun = "case"
		case "Garsoniera":
			propertyNoun = "garsoniere"
		}
	}

	transaction := ""
	if state.Transaction != nil {
		switch *state.Transaction {
		case "Inchiriere":
			transaction = "de inchiriat"
		case "Vanzare":
			transaction = "de vanzare"
		}
	}

	if total == 0 {
		template := noResultMessages[rand.Intn(len(noResultMessages))]
		if strings.Contains(template, "%s") {
			return fmt.Sprintf(template, propertyNoun, transaction), MessageNoResults
		}
		return template, MessageNoResults
	}

	parts := []string{fmt.Sprintf(introPhrases[rand.Intn(len(introPhrases))], total, propertyNoun)}

	if transaction != "" {
		parts = append(parts, transaction)
	}

	var locationParts []string
	if state.Location != nil && *state.Location != "" {
		locationParts = append(locationParts, *state.Location)
	}
	if state.City != nil && *state.City != "" {
		locationParts = append(locationParts, *state.City)
	}
	if len(locationParts) > 0 {
		parts = append(parts, "in "+strings.Join(locationParts, ", "))
	}

	switch {
	case state.PriceMin != nil && state.PriceMax != nil:
		parts = append(parts, fmt.Sprintf("intre %d si %d EUR", *state.PriceMin, *state.PriceMax))
	case state.PriceMin != nil:
		parts = append(parts, fmt.Sprintf("de la %d EUR", *state.PriceMin))
	case state.PriceMax != nil:
		parts = append(parts, fmt.Sprintf("pana la %d EUR", *state.PriceMax))
	}

	if state.Rooms != nil {
		parts = append(parts, fmt.Sprintf("cu %d camere", *state.Rooms))
	}

	var featureStrs []string
	if state.Features["animale"] == model.FeatureWant {
		featureStrs = append(featureStrs, "pet friendly")
	}
	if state.Features["parcare"] == model.FeatureWant {
		featureStrs = append(featureStrs, "cu parcare")
	}
	if state.Features["mobilat"] == model.FeatureWant {
		featureStrs = append(featureStrs, "mobilat")
	}
	if len(featureStrs) > 0 {
		parts = append(parts, strings.Join(featureStrs, ", "))
	}

	message := strings.Join(parts, " ") + "."

	if total > 50 {
		message += refineSuggestions[rand.Intn(len(refineSuggestions))]
	} else if total <= 10 {
		message += fewResultEncouragements[rand.Intn(len(fewResultEncouragements))]
	}

	return message, MessageResults
}

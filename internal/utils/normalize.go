package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Canonical values as they appear in the listing index.
const (
	TransactionSale = "Vanzare"
	TransactionRent = "Inchiriere"

	PropertyApartment = "Apartamente"
	PropertyHouse     = "Case"
	PropertyStudio    = "Garsoniera"
	PropertyLand      = "Terenuri"
)

// knownCities maps lowercase, diacritic-free city spellings to the region
// value stored in the listing location_1 field.
var knownCities = map[string]string{
	"bucuresti":   "Bucuresti",
	"bucharest":   "Bucuresti",
	"timisoara":   "Timis",
	"cluj":        "Cluj",
	"cluj-napoca": "Cluj",
	"iasi":        "Iasi",
	"constanta":   "Constanta",
	"brasov":      "Brasov",
	"sibiu":       "Sibiu",
	"oradea":      "Bihor",
	"craiova":     "Dolj",
	"arad":        "Arad",
	"ploiesti":    "Prahova",
}

var titleCaser = cases.Title(language.Und)

// StripDiacritics removes combining marks: a-breve -> a, i-circumflex -> i,
// s-comma -> s, t-comma -> t.
func StripDiacritics(text string) string {
	if text == "" {
		return text
	}
	decomposed := norm.NFD.String(text)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeCity maps a city name to the canonical region value. Unknown
// cities are passed through title-cased rather than rejected, so searches in
// smaller towns still work best-effort.
func NormalizeCity(city string) string {
	if strings.TrimSpace(city) == "" {
		return ""
	}

	key := strings.ToLower(StripDiacritics(strings.TrimSpace(city)))
	if canonical, ok := knownCities[key]; ok {
		return canonical
	}

	return titleCaser.String(strings.ToLower(strings.TrimSpace(city)))
}

// NormalizeTransaction maps transaction synonyms to a canonical value.
// Unrecognized input returns "" and the caller keeps the prior value.
func NormalizeTransaction(transaction string) string {
	t := strings.ToLower(StripDiacritics(strings.TrimSpace(transaction)))

	switch t {
	case "vanzare", "vand", "cumpar", "cumparare":
		return TransactionSale
	case "inchiriere", "inchiriez", "chirie":
		return TransactionRent
	}

	return ""
}

// NormalizePropertyType maps property type synonyms to a canonical value.
// Unrecognized input returns "".
func NormalizePropertyType(propertyType string) string {
	p := strings.ToLower(StripDiacritics(strings.TrimSpace(propertyType)))

	switch p {
	case "apartament", "apartamente", "ap":
		return PropertyApartment
	case "casa", "case", "vila", "vile":
		return PropertyHouse
	case "garsoniera", "garsoniere", "studio":
		return PropertyStudio
	case "teren", "terenuri":
		return PropertyLand
	}

	return ""
}

// ValidateRooms accepts only room counts the index actually tags (1..5).
func ValidateRooms(rooms int) (int, bool) {
	if rooms < 1 || rooms > 5 {
		return 0, false
	}
	return rooms, true
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripDiacritics(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "romanian diacritics", input: "Brașov", expected: "Brasov"},
		{name: "comma-below letters", input: "știință", expected: "stiinta"},
		{name: "breve and circumflex", input: "Râmnicu Vâlcea", expected: "Ramnicu Valcea"},
		{name: "no diacritics", input: "Bucuresti", expected: "Bucuresti"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripDiacritics(tt.input))
		})
	}
}

func TestNormalizeCity(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "known city", input: "bucuresti", expected: "Bucuresti"},
		{name: "english spelling", input: "Bucharest", expected: "Bucuresti"},
		{name: "with diacritics", input: "Timișoara", expected: "Timis"},
		{name: "maps to region", input: "oradea", expected: "Bihor"},
		{name: "cluj long form", input: "Cluj-Napoca", expected: "Cluj"},
		{name: "unknown city passes through title-cased", input: "pitesti", expected: "Pitesti"},
		{name: "blank", input: "   ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeCity(tt.input))
		})
	}
}

func TestNormalizeTransaction(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "sale", input: "vanzare", expected: TransactionSale},
		{name: "sale with diacritics", input: "Vânzare", expected: TransactionSale},
		{name: "buy synonym", input: "cumpar", expected: TransactionSale},
		{name: "rent", input: "inchiriere", expected: TransactionRent},
		{name: "rent synonym", input: "chirie", expected: TransactionRent},
		{name: "unknown", input: "leasing", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTransaction(tt.input))
		})
	}
}

func TestNormalizePropertyType(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "apartment singular", input: "apartament", expected: PropertyApartment},
		{name: "apartment short", input: "ap", expected: PropertyApartment},
		{name: "house", input: "casa", expected: PropertyHouse},
		{name: "villa", input: "vila", expected: PropertyHouse},
		{name: "studio english", input: "studio", expected: PropertyStudio},
		{name: "studio with diacritics", input: "garsonieră", expected: PropertyStudio},
		{name: "land", input: "teren", expected: PropertyLand},
		{name: "unknown", input: "birou", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePropertyType(tt.input))
		})
	}
}

func TestValidateRooms(t *testing.T) {
	tests := []struct {
		name  string
		input int
		want  int
		valid bool
	}{
		{name: "one room", input: 1, want: 1, valid: true},
		{name: "five rooms", input: 5, want: 5, valid: true},
		{name: "zero rejected", input: 0, valid: false},
		{name: "negative rejected", input: -2, valid: false},
		{name: "too many rejected", input: 6, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, valid := ValidateRooms(tt.input)
			assert.Equal(t, tt.valid, valid)
			if tt.valid {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

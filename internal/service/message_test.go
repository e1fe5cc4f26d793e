package service

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"immosearch/internal/model"
)

func TestBuildAssistantMessage_NoResults(t *testing.T) {
	state := model.NewFilterState()
	state.PropertyType = strPtr("Apartamente")
	state.Transaction = strPtr("Inchiriere")

	msg, msgType := BuildAssistantMessage(state, 0)

	assert.Equal(t, MessageNoResults, msgType)
	assert.NotEmpty(t, msg)
}

func TestBuildAssistantMessage_MentionsFilters(t *testing.T) {
	state := model.NewFilterState()
	state.PropertyType = strPtr("Apartamente")
	state.Transaction = strPtr("Inchiriere")
	state.Location = strPtr("Titan")
	state.City = strPtr("Bucuresti")
	state.Rooms = intPtr(2)
	state.PriceMin = intPtr(300)
	state.PriceMax = intPtr(700)
	state.Features["parcare"] = model.FeatureWant

	msg, msgType := BuildAssistantMessage(state, 23)

	assert.Equal(t, MessageResults, msgType)
	assert.Contains(t, msg, "23")
	assert.Contains(t, msg, "apartamente")
	assert.Contains(t, msg, "de inchiriat")
	assert.Contains(t, msg, "Titan")
	assert.Contains(t, msg, "Bucuresti")
	assert.Contains(t, msg, "intre 300 si 700 EUR")
	assert.Contains(t, msg, "cu 2 camere")
	assert.Contains(t, msg, "cu parcare")
}

func TestBuildAssistantMessage_PriceBoundWording(t *testing.T) {
	tests := []struct {
		name     string
		min, max *int
		want     string
	}{
		{name: "max only", max: intPtr(700), want: "pana la 700 EUR"},
		{name: "min only", min: intPtr(500), want: "de la 500 EUR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := model.NewFilterState()
			state.PriceMin = tt.min
			state.PriceMax = tt.max

			msg, _ := BuildAssistantMessage(state, 5)
			assert.Contains(t, msg, tt.want)
		})
	}
}

func TestBuildAssistantMessage_Buckets(t *testing.T) {
	state := model.NewFilterState()

	// The wording varies per call but the bucket only depends on the count
	for _, total := range []int{0, 5, 30, 120} {
		t.Run(strconv.Itoa(total), func(t *testing.T) {
			msg, msgType := BuildAssistantMessage(state, total)
			assert.NotEmpty(t, msg)
			if total == 0 {
				assert.Equal(t, MessageNoResults, msgType)
			} else {
				assert.Equal(t, MessageResults, msgType)
				assert.Contains(t, msg, strconv.Itoa(total))
			}
		})
	}
}

func TestBuildAssistantMessage_LargeResultSetSuggestsRefinement(t *testing.T) {
	state := model.NewFilterState()
	msg, _ := BuildAssistantMessage(state, 200)

	found := false
	for _, suggestion := range refineSuggestions {
		if strings.Contains(msg, strings.TrimSpace(suggestion)) {
			found = true
		}
	}
	assert.True(t, found, "expected a refinement suggestion in %q", msg)
}

package service

import (
	"fmt"
	"regexp"
	"strings"

	"immosearch/internal/model"
)

// featurePattern holds the phrase material for one tracked feature: a
// positive blob fed into the similarity clause when the feature is wanted,
// and the negative spellings listings actually use to deny it.
type featurePattern struct {
	positiveBoost    string
	negativePatterns []string
}

// Phrases collected from the live dataset; listings deny a feature in many
// spellings and only exact phrase exclusion catches them.
var featurePatterns = map[string]featurePattern{
	"animale": {
		positiveBoost: "accepta animale pet friendly pisici caini animale de companie se accepta animal",
		negativePatterns: []string{
			"nu se accepta animale",
			"nu se acceptă animale",
			"nu accept animale",
			"nu accepta animale",
			"nu acceptam animale",
			"fara animale",
			"fără animale",
			"exclus animale",
			"nu se accepta animale de companie",
			"nu accept animale de companie",
			"nu sunt acceptate animale",
			"nu se acceptă animale de companie",
		},
	},
	"fumatori": {
		positiveBoost: "fumatori acceptati se poate fuma accept fumatori",
		negativePatterns: []string{
			"nu accept fumatori",
			"nu accept fumători",
			"fara fumatori",
			"fără fumători",
			"nefumatori",
			"non fumatori",
			"nu se fumeaza",
			"interzis fumatul",
			"exclus fumatori",
		},
	},
	"parcare": {
		positiveBoost: "loc parcare garaj parcare inclusa parcare subterana boxa",
		negativePatterns: []string{
			"fara parcare",
			"fără parcare",
			"nu are parcare",
		},
	},
	"mobilat": {
		positiveBoost: "mobilat complet utilat mobilat modern complet mobilat",
		negativePatterns: []string{
			"nemobilat",
			"neutilat",
			"fara mobila",
			"fără mobilă",
			"gol",
		},
	},
	"centrala": {
		positiveBoost: "centrala proprie centrala termica incalzire autonoma",
		negativePatterns: []string{
			"fara centrala",
			"încălzire centralizată",
		},
	},
}

// resultProjection is the fixed field list returned for every hit.
var resultProjection = []string{
	"driver_title", "name", "description", "price", "currency",
	"location_1", "location_2", "location_3", "coordinates",
	"ad_url", "ad_id", "categories", "attributes",
	"src_images", "images", "decrypted_phone", "source", "ad_source",
	"valid_from", "user_name", "is_agent",
}

var sectorNumberRe = regexp.MustCompile(`(\d+)`)

// QueryBuilder compiles merged filter state into an engine query plan.
// Pure: same state and pagination always compile to the same plan.
type QueryBuilder struct {
	embeddingModelID string
	neuralK          int
}

// NewQueryBuilder creates a query builder bound to the embedding model used
// by the engine's similarity clause.
func NewQueryBuilder(embeddingModelID string, neuralK int) *QueryBuilder {
	return &QueryBuilder{
		embeddingModelID: embeddingModelID,
		neuralK:          neuralK,
	}
}

// Build compiles the filter state into a hybrid query plan
func (b *QueryBuilder) Build(state *model.FilterState, size, offset int) *model.QueryPlan {
	var must, should, mustNot []model.Clause

	if state.Location != nil && *state.Location != "" {
		must = append(must, b.locationClause(*state.Location))
	}

	if state.City != nil && *state.City != "" {
		must = append(must, termClause("location_1", *state.City))
	}

	if state.Transaction != nil && *state.Transaction != "" {
		must = append(must, termClause("categories", *state.Transaction))
	}

	if state.PropertyType != nil && *state.PropertyType != "" {
		must = append(must, termClause("categories", *state.PropertyType))
	}

	if state.Rooms != nil {
		must = append(must, roomsClause(*state.Rooms))
	}

	if clause, ok := priceClause(state.PriceMin, state.PriceMax); ok {
		must = append(must, clause)
	}

	// Each keyword is its own group: keywords AND with each other while the
	// title/description alternatives inside a group OR
	for _, kw := range state.Keywords {
		must = append(must, shouldGroup(
			matchClause("driver_title", kw, 2.0),
			matchClause("description", kw, 1.0),
		))
	}

	// Features: WANT boosts similarity and hard-filters explicit denials;
	// EXCLUDE only lures the similarity clause toward negative phrasing
	var neuralTexts []string
	for _, key := range model.FeatureKeys {
		pattern, known := featurePatterns[key]
		if !known {
			continue
		}
		switch state.Features[key] {
		case model.FeatureWant:
			neuralTexts = append(neuralTexts, pattern.positiveBoost)
			for _, phrase := range pattern.negativePatterns {
				mustNot = append(mustNot, model.Clause{
					"match_phrase": map[string]any{"description": phrase},
				})
			}
		case model.FeatureExclude:
			limit := len(pattern.negativePatterns)
			if limit > 3 {
				limit = 3
			}
			neuralTexts = append(neuralTexts, pattern.negativePatterns[:limit]...)
		}
	}

	if len(neuralTexts) > 0 {
		should = append(should, model.Clause{
			"neural": map[string]any{
				"listing_vector": map[string]any{
					"query_text": strings.Join(neuralTexts, " "),
					"model_id":   b.embeddingModelID,
					"k":          b.neuralK,
				},
			},
		})
	}

	if state.ExcludeAgencies {
		mustNot = append(mustNot, termClause("is_agent", "true"))
	}

	// An empty filter set must still return results
	if len(must) == 0 {
		must = []model.Clause{{"match_all": map[string]any{}}}
	}

	boolQuery := model.BoolQuery{
		Must:    must,
		MustNot: mustNot,
	}
	if len(should) > 0 {
		// Scoring-only: the similarity clause ranks, never filters
		zero := 0
		boolQuery.Should = should
		boolQuery.MinimumShouldMatch = &zero
	}

	return &model.QueryPlan{
		Size:   size,
		From:   offset,
		Query:  model.QueryPlanQuery{Bool: boolQuery},
		Source: resultProjection,
	}
}

// locationClause builds the location group. Bucharest sectors are tagged
// with two literal spellings ("Sector 3" / "Sectorul 3"), so sector queries
// compile to an exact two-way alternation; everything else is a boosted
// neighborhood group that also reaches into title and description, which
// lets "Pallady" match "Theodor Pallady".
func (b *QueryBuilder) locationClause(location string) model.Clause {
	if strings.Contains(strings.ToLower(location), "sector") {
		if match := sectorNumberRe.FindString(location); match != "" {
			return shouldGroup(
				termClause("location_2", fmt.Sprintf("Sector %s", match)),
				termClause("location_2", fmt.Sprintf("Sectorul %s", match)),
			)
		}
	}

	return shouldGroup(
		model.Clause{"term": map[string]any{
			"location_3": map[string]any{"value": location, "boost": 3.0},
		}},
		model.Clause{"match": map[string]any{
			"location_3": map[string]any{"query": location, "fuzziness": "AUTO", "boost": 2.5},
		}},
		matchClause("driver_title", location, 2.0),
		matchClause("description", location, 1.0),
	)
}

// roomsClause maps the room count to a category tag. One-room listings are
// tagged either "1 camere" or "Garsoniera".
func roomsClause(rooms int) model.Clause {
	if rooms == 1 {
		return shouldGroup(
			termClause("categories", "1 camere"),
			termClause("categories", "Garsoniera"),
		)
	}
	return termClause("categories", fmt.Sprintf("%d camere", rooms))
}

func priceClause(priceMin, priceMax *int) (model.Clause, bool) {
	bounds := map[string]any{}
	if priceMin != nil {
		bounds["gte"] = *priceMin
	}
	if priceMax != nil {
		bounds["lte"] = *priceMax
	}
	if len(bounds) == 0 {
		return nil, false
	}
	return model.Clause{"range": map[string]any{"price": bounds}}, true
}

func termClause(field, value string) model.Clause {
	return model.Clause{"term": map[string]any{field: value}}
}

func matchClause(field, query string, boost float64) model.Clause {
	return model.Clause{"match": map[string]any{
		field: map[string]any{"query": query, "boost": boost},
	}}
}

// shouldGroup wraps alternatives in a bool group where at least one must hit
func shouldGroup(clauses ...model.Clause) model.Clause {
	return model.Clause{"bool": map[string]any{
		"should":               clauses,
		"minimum_should_match": 1,
	}}
}

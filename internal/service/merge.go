package service

import (
	"math"
	"sort"
	"strings"

	"immosearch/internal/model"
	"immosearch/internal/utils"
)

// agencyExclusionPhrases are "private sellers only" spellings detected
// directly in the raw utterance, independent of what the model extracted.
// Matching is done on the case-folded, diacritic-free query.
var agencyExclusionPhrases = []string{
	"fara agentii",
	"fara agentie",
	"fara agenti",
	"doar particulari",
	"nu agenti",
	"particulari",
	"private only",
	"no agents",
}

// MergeDelta merges one turn's extracted intent into the prior session
// state. The delta is the raw, unvalidated model output: fields absent from
// it never change the prior state, and values that fail normalization are
// discarded field-locally. A nil delta (extraction failed this turn) yields
// a copy of the prior state.
//
// uiOverride, when non-nil, is authoritative for the agency exclusion flag
// and the override value is what gets persisted.
func MergeDelta(prior *model.FilterState, delta map[string]any, rawQuery string, uiOverride *bool) *model.FilterState {
	result := prior.Clone()

	if v, ok := deltaString(delta, "location"); ok {
		result.Location = strPtr(utils.StripDiacritics(v))
	}

	if v, ok := deltaString(delta, "city"); ok {
		if city := utils.NormalizeCity(v); city != "" {
			result.City = strPtr(city)
		}
	}

	if v, ok := deltaString(delta, "transaction"); ok {
		if tx := utils.NormalizeTransaction(v); tx != "" {
			result.Transaction = strPtr(tx)
		}
	}

	if v, ok := deltaString(delta, "property_type"); ok {
		if pt := utils.NormalizePropertyType(v); pt != "" {
			result.PropertyType = strPtr(pt)
		}
	}

	if v, ok := deltaInt(delta, "rooms"); ok {
		if rooms, valid := utils.ValidateRooms(v); valid {
			result.Rooms = &rooms
		}
	}

	if v, ok := deltaInt(delta, "price_min"); ok && v >= 0 {
		result.PriceMin = &v
	}
	if v, ok := deltaInt(delta, "price_max"); ok && v >= 0 {
		result.PriceMax = &v
	}

	// Keywords only ever grow within a session
	if raw, ok := delta["keywords"].([]any); ok {
		result.Keywords = unionKeywords(result.Keywords, raw)
	}

	// Features: an explicit null clears, a missing key leaves the prior
	// value untouched
	if features, ok := delta["features"].(map[string]any); ok {
		for _, key := range model.FeatureKeys {
			raw, mentioned := features[key]
			if !mentioned {
				continue
			}
			switch raw {
			case string(model.FeatureWant):
				result.Features[key] = model.FeatureWant
			case string(model.FeatureExclude):
				result.Features[key] = model.FeatureExclude
			case nil:
				result.Features[key] = model.FeatureUnset
			}
		}
	}

	// Agency exclusion is sticky: the model or the raw text can turn it on,
	// but only an explicit UI override turns it off again.
	if v, ok := delta["exclude_agencies"].(bool); ok && v {
		result.ExcludeAgencies = true
	}
	if queryAsksPrivateOnly(rawQuery) {
		result.ExcludeAgencies = true
	}
	if uiOverride != nil {
		result.ExcludeAgencies = *uiOverride
	}

	return result
}

func queryAsksPrivateOnly(rawQuery string) bool {
	q := strings.ToLower(utils.StripDiacritics(rawQuery))
	for _, phrase := range agencyExclusionPhrases {
		if strings.Contains(q, phrase) {
			return true
		}
	}
	return false
}

// deltaString reports a non-empty string value for key.
func deltaString(delta map[string]any, key string) (string, bool) {
	v, ok := delta[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// deltaInt reports an integral numeric value for key. JSON numbers arrive
// as float64; fractional values are rejected rather than rounded.
func deltaInt(delta map[string]any, key string) (int, bool) {
	switch v := delta[key].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func unionKeywords(existing []string, raw []any) []string {
	set := make(map[string]struct{}, len(existing)+len(raw))
	for _, kw := range existing {
		set[kw] = struct{}{}
	}
	for _, item := range raw {
		kw, ok := item.(string)
		if !ok {
			continue
		}
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		set[kw] = struct{}{}
	}

	merged := make([]string, 0, len(set))
	for kw := range set {
		merged = append(merged, kw)
	}
	// Sorted so merged state is deterministic for identical inputs
	sort.Strings(merged)
	return merged
}

func strPtr(v string) *string {
	return &v
}

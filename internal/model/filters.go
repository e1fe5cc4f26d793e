package model

// FeatureState is the tri-state preference for a single listing feature.
// The empty string means the feature was never established in the session;
// it marshals as "" and is treated the same as a missing key.
type FeatureState string

const (
	FeatureUnset   FeatureState = ""
	FeatureWant    FeatureState = "WANT"
	FeatureExclude FeatureState = "EXCLUDE"
)

// FeatureKeys lists the five tracked features in a fixed order so that
// compiled queries are deterministic for identical filter state.
var FeatureKeys = []string{"animale", "fumatori", "parcare", "mobilat", "centrala"}

// FilterState is the persisted conversational memory for one
// (user_id, session_id) pair. Scalar fields are pointers: nil means the
// field was never established in this session.
type FilterState struct {
	Location        *string                 `json:"location"`
	City            *string                 `json:"city"`
	Transaction     *string                 `json:"transaction"`
	PropertyType    *string                 `json:"property_type"`
	Rooms           *int                    `json:"rooms"`
	PriceMin        *int                    `json:"price_min"`
	PriceMax        *int                    `json:"price_max"`
	Keywords        []string                `json:"keywords"`
	Features        map[string]FeatureState `json:"features"`
	ExcludeAgencies bool                    `json:"exclude_agencies"`
}

// NewFilterState returns an empty filter state with all five feature keys
// present and unset.
func NewFilterState() *FilterState {
	features := make(map[string]FeatureState, len(FeatureKeys))
	for _, key := range FeatureKeys {
		features[key] = FeatureUnset
	}
	return &FilterState{
		Keywords: []string{},
		Features: features,
	}
}

// Clone returns a deep copy. Merging always starts from a copy so a failed
// turn can never corrupt the loaded state.
func (s *FilterState) Clone() *FilterState {
	if s == nil {
		return NewFilterState()
	}
	out := &FilterState{
		Location:        copyString(s.Location),
		City:            copyString(s.City),
		Transaction:     copyString(s.Transaction),
		PropertyType:    copyString(s.PropertyType),
		Rooms:           copyInt(s.Rooms),
		PriceMin:        copyInt(s.PriceMin),
		PriceMax:        copyInt(s.PriceMax),
		Keywords:        make([]string, len(s.Keywords)),
		Features:        make(map[string]FeatureState, len(FeatureKeys)),
		ExcludeAgencies: s.ExcludeAgencies,
	}
	copy(out.Keywords, s.Keywords)
	for _, key := range FeatureKeys {
		out.Features[key] = s.Features[key]
	}
	return out
}

// QueryHistoryEntry is one remembered utterance in a session.
type QueryHistoryEntry struct {
	Query     string `json:"q"`
	Timestamp string `json:"ts"`
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

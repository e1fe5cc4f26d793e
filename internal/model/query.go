package model

// SearchRequest represents a natural language search request
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	Size  int    `json:"size,omitempty"`
	Offset int   `json:"offset,omitempty"`
	// ExcludeAgencies is the UI toggle. nil = rely on query parsing,
	// true = always hide agency listings, false = always show them.
	ExcludeAgencies *bool `json:"exclude_agencies,omitempty"`
}

// Clause is a single engine query clause, kept as a generic JSON object the
// same way the engine consumes it.
type Clause map[string]any

// BoolQuery holds the three clause groups of a compiled hybrid query.
type BoolQuery struct {
	Must               []Clause `json:"must"`
	Should             []Clause `json:"should,omitempty"`
	MustNot            []Clause `json:"must_not,omitempty"`
	MinimumShouldMatch *int     `json:"minimum_should_match,omitempty"`
}

// QueryPlan is a fully compiled search query. It is built fresh per request
// and never mutated afterwards; it is echoed back to the caller so that
// pagination can reuse it without re-extraction.
type QueryPlan struct {
	Size   int            `json:"size"`
	From   int            `json:"from"`
	Query  QueryPlanQuery `json:"query"`
	Source []string       `json:"_source"`
}

// QueryPlanQuery wraps the bool query under the engine's expected key.
type QueryPlanQuery struct {
	Bool BoolQuery `json:"bool"`
}

// Hit is one raw engine hit.
type Hit struct {
	ID     string         `json:"_id"`
	Score  float64        `json:"_score"`
	Source map[string]any `json:"_source"`
}

// EngineResponse is the subset of the engine search response the service
// consumes.
type EngineResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []Hit    `json:"hits"`
	} `json:"hits"`
	Took int64 `json:"took"`
}

// SearchResponse is the caller-facing search result envelope.
type SearchResponse struct {
	Success       bool           `json:"success"`
	Query         string         `json:"query"`
	ParsedFilters *FilterState   `json:"parsed_filters"`
	Total         int            `json:"total"`
	Results       []SearchResult `json:"results"`
	SessionID     string         `json:"session_id"`
	UserID        string         `json:"user_id"`
	Message       string         `json:"message"`
	MessageType   string         `json:"message_type"`
	QueryPlan     *QueryPlan     `json:"query_plan,omitempty"`
	Took          int64          `json:"took_ms"`
}

// SessionInfo describes one session's stored state.
type SessionInfo struct {
	UserID     string       `json:"user_id"`
	SessionID  string       `json:"session_id"`
	Filters    *FilterState `json:"filters"`
	QueryCount int          `json:"query_count"`
	CreatedAt  string       `json:"created_at,omitempty"`
	UpdatedAt  string       `json:"updated_at,omitempty"`
}

// SessionSummary is one row in the per-user session listing.
type SessionSummary struct {
	SessionID  string `json:"session_id"`
	QueryCount int    `json:"query_count"`
	LastQuery  string `json:"last_query,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// HistoryItem is one entry of a session's query history as exposed over HTTP.
type HistoryItem struct {
	Query     string `json:"query"`
	Timestamp string `json:"timestamp"`
}

// UserInfo describes the authenticated caller.
type UserInfo struct {
	UserID      string   `json:"user_id"`
	Username    string   `json:"username,omitempty"`
	Email       string   `json:"email,omitempty"`
	Name        string   `json:"name,omitempty"`
	Roles       []string `json:"roles"`
	Groups      []string `json:"groups"`
	IsAnonymous bool     `json:"is_anonymous"`
}

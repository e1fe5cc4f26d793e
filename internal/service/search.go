package service

import (
	"context"
	"log"
	"time"

	"immosearch/internal/model"
)

// SessionStore is the persistence boundary for conversational filter state.
// Implementations own history capping and timestamps.
type SessionStore interface {
	Get(ctx context.Context, userID, sessionID string) (*model.FilterState, error)
	Put(ctx context.Context, userID, sessionID string, state *model.FilterState, query string) error
}

// SearchService runs the per-request pipeline: load prior state, extract
// this turn's intent, merge, persist, compile, execute, format.
type SearchService struct {
	sessions  SessionStore
	extractor *IntentExtractor
	builder   *QueryBuilder
	engine    *OpenSearchClient
}

// NewSearchService creates a new search service
func NewSearchService(
	sessions SessionStore,
	extractor *IntentExtractor,
	builder *QueryBuilder,
	engine *OpenSearchClient,
) *SearchService {
	return &SearchService{
		sessions:  sessions,
		extractor: extractor,
		builder:   builder,
		engine:    engine,
	}
}

// Search handles one conversational turn. Everything that can be locally
// absorbed is absorbed: a failed state load starts fresh, a failed
// extraction keeps the prior state, a failed persist still answers with the
// merged state. Only a failed engine call is fatal for the request.
func (s *SearchService) Search(ctx context.Context, userID, sessionID string, req *model.SearchRequest) (*model.SearchResponse, error) {
	startTime := time.Now()

	prior, err := s.sessions.Get(ctx, userID, sessionID)
	if err != nil {
		log.Printf("Warning: session load failed for %s/%s, starting fresh: %v", userID, sessionID, err)
		prior = nil
	}
	if prior == nil {
		prior = model.NewFilterState()
	}

	delta := s.extractor.Extract(ctx, req.Query, prior)

	merged := MergeDelta(prior, delta, req.Query, req.ExcludeAgencies)

	if err := s.sessions.Put(ctx, userID, sessionID, merged, req.Query); err != nil {
		// Best-effort: the response still reflects the merged state, a later
		// turn may simply not see this one
		log.Printf("Warning: session save failed for %s/%s: %v", userID, sessionID, err)
	}

	plan := s.builder.Build(merged, req.Size, req.Offset)

	engineResp, err := s.engine.Search(ctx, plan)
	if err != nil {
		return nil, err
	}

	maxScore := 0.0
	if engineResp.Hits.MaxScore != nil {
		maxScore = *engineResp.Hits.MaxScore
	}

	results := make([]model.SearchResult, 0, len(engineResp.Hits.Hits))
	for _, hit := range engineResp.Hits.Hits {
		results = append(results, FormatResult(hit, maxScore))
	}

	total := engineResp.Hits.Total.Value
	message, messageType := BuildAssistantMessage(merged, total)

	return &model.SearchResponse{
		Success:       true,
		Query:         req.Query,
		ParsedFilters: merged,
		Total:         total,
		Results:       results,
		SessionID:     sessionID,
		UserID:        userID,
		Message:       message,
		MessageType:   messageType,
		QueryPlan:     plan,
		Took:          time.Since(startTime).Milliseconds(),
	}, nil
}

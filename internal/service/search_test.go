package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immosearch/internal/config"
	"immosearch/internal/model"
)

// memoryStore is an in-memory SessionStore for pipeline tests.
type memoryStore struct {
	states  map[string]*model.FilterState
	failGet bool
	failPut bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{states: map[string]*model.FilterState{}}
}

func (m *memoryStore) Get(_ context.Context, userID, sessionID string) (*model.FilterState, error) {
	if m.failGet {
		return nil, errors.New("store down")
	}
	return m.states[userID+"/"+sessionID], nil
}

func (m *memoryStore) Put(_ context.Context, userID, sessionID string, state *model.FilterState, _ string) error {
	if m.failPut {
		return errors.New("store down")
	}
	m.states[userID+"/"+sessionID] = state
	return nil
}

func fakeEngine(t *testing.T, status int, resp string, lastPlan **model.QueryPlan) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/real-estate-*/_search", r.URL.Path)

		if lastPlan != nil {
			var plan model.QueryPlan
			require.NoError(t, json.NewDecoder(r.Body).Decode(&plan))
			*lastPlan = &plan
		}

		w.WriteHeader(status)
		w.Write([]byte(resp))
	}))
}

func newTestEngine(url string) *OpenSearchClient {
	return NewOpenSearchClient(&config.OpenSearchConfig{
		URL:       url,
		Index:     "real-estate-*",
		VerifySSL: true,
		Timeout:   5,
	})
}

const engineHitsResponse = `{
	"took": 12,
	"hits": {
		"total": {"value": 2},
		"max_score": 8.0,
		"hits": [
			{"_id": "a", "_score": 8.0, "_source": {"driver_title": "Apartament Titan", "price": 650, "is_agent": "false"}},
			{"_id": "b", "_score": 4.0, "_source": {"driver_title": "Garsoniera Titan", "price": 400, "is_agent": "true"}}
		]
	}
}`

func TestSearch_FullTurn(t *testing.T) {
	ollama := fakeOllama(t, `{"location": "Titan", "rooms": 2, "transaction": "inchiriere"}`, http.StatusOK)
	defer ollama.Close()

	var lastPlan *model.QueryPlan
	engine := fakeEngine(t, http.StatusOK, engineHitsResponse, &lastPlan)
	defer engine.Close()

	store := newMemoryStore()
	svc := NewSearchService(
		store,
		newTestExtractor(ollama.URL),
		newTestBuilder(),
		newTestEngine(engine.URL),
	)

	resp, err := svc.Search(context.Background(), "user-1", "sess-1", &model.SearchRequest{
		Query: "apartament 2 camere de inchiriat in Titan",
		Size:  25,
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, 100, resp.Results[0].Score)
	assert.Equal(t, 50, resp.Results[1].Score)
	assert.Equal(t, "sess-1", resp.SessionID)
	assert.Equal(t, "user-1", resp.UserID)
	assert.Equal(t, MessageResults, resp.MessageType)
	assert.NotNil(t, resp.QueryPlan)
	assert.NotEmpty(t, resp.Message)

	// Merged state reflects the extracted intent
	require.NotNil(t, resp.ParsedFilters)
	assert.Equal(t, "Titan", *resp.ParsedFilters.Location)
	assert.Equal(t, 2, *resp.ParsedFilters.Rooms)
	assert.Equal(t, "Inchiriere", *resp.ParsedFilters.Transaction)

	// State was persisted for the next turn
	saved := store.states["user-1/sess-1"]
	require.NotNil(t, saved)
	assert.Equal(t, "Titan", *saved.Location)

	// The engine received the compiled plan
	require.NotNil(t, lastPlan)
	assert.Equal(t, 25, lastPlan.Size)
}

func TestSearch_SecondTurnRefines(t *testing.T) {
	ollama := fakeOllama(t, `{"price_max": 700}`, http.StatusOK)
	defer ollama.Close()

	engine := fakeEngine(t, http.StatusOK, engineHitsResponse, nil)
	defer engine.Close()

	store := newMemoryStore()
	prior := model.NewFilterState()
	prior.Location = strPtr("Titan")
	prior.Rooms = intPtr(2)
	store.states["user-1/sess-1"] = prior

	svc := NewSearchService(store, newTestExtractor(ollama.URL), newTestBuilder(), newTestEngine(engine.URL))

	resp, err := svc.Search(context.Background(), "user-1", "sess-1", &model.SearchRequest{
		Query: "dar cu maxim 700 euro",
	})
	require.NoError(t, err)

	assert.Equal(t, "Titan", *resp.ParsedFilters.Location)
	assert.Equal(t, 2, *resp.ParsedFilters.Rooms)
	assert.Equal(t, 700, *resp.ParsedFilters.PriceMax)
}

func TestSearch_ExtractionFailureKeepsPriorState(t *testing.T) {
	ollama := fakeOllama(t, "", http.StatusInternalServerError)
	defer ollama.Close()

	engine := fakeEngine(t, http.StatusOK, engineHitsResponse, nil)
	defer engine.Close()

	store := newMemoryStore()
	prior := model.NewFilterState()
	prior.Location = strPtr("Titan")
	store.states["u/s"] = prior

	svc := NewSearchService(store, newTestExtractor(ollama.URL), newTestBuilder(), newTestEngine(engine.URL))

	resp, err := svc.Search(context.Background(), "u", "s", &model.SearchRequest{Query: "ceva"})
	require.NoError(t, err)
	assert.Equal(t, "Titan", *resp.ParsedFilters.Location)
}

func TestSearch_StoreFailuresDegrade(t *testing.T) {
	ollama := fakeOllama(t, `{"location": "Titan"}`, http.StatusOK)
	defer ollama.Close()

	engine := fakeEngine(t, http.StatusOK, engineHitsResponse, nil)
	defer engine.Close()

	store := newMemoryStore()
	store.failGet = true
	store.failPut = true

	svc := NewSearchService(store, newTestExtractor(ollama.URL), newTestBuilder(), newTestEngine(engine.URL))

	resp, err := svc.Search(context.Background(), "u", "s", &model.SearchRequest{Query: "in Titan"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Titan", *resp.ParsedFilters.Location)
}

func TestSearch_EngineFailureIsFatal(t *testing.T) {
	ollama := fakeOllama(t, `{}`, http.StatusOK)
	defer ollama.Close()

	engine := fakeEngine(t, http.StatusServiceUnavailable, `{"error": "cluster down"}`, nil)
	defer engine.Close()

	svc := NewSearchService(newMemoryStore(), newTestExtractor(ollama.URL), newTestBuilder(), newTestEngine(engine.URL))

	_, err := svc.Search(context.Background(), "u", "s", &model.SearchRequest{Query: "ceva"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestSearch_UIOverrideReachesState(t *testing.T) {
	ollama := fakeOllama(t, `{"exclude_agencies": true}`, http.StatusOK)
	defer ollama.Close()

	engine := fakeEngine(t, http.StatusOK, engineHitsResponse, nil)
	defer engine.Close()

	svc := NewSearchService(newMemoryStore(), newTestExtractor(ollama.URL), newTestBuilder(), newTestEngine(engine.URL))

	off := false
	resp, err := svc.Search(context.Background(), "u", "s", &model.SearchRequest{
		Query:           "fara agentii",
		ExcludeAgencies: &off,
	})
	require.NoError(t, err)
	assert.False(t, resp.ParsedFilters.ExcludeAgencies)
}

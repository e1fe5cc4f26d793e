package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"immosearch/internal/model"
	"immosearch/internal/utils"
)

// IntentExtractor turns one utterance into a raw intent delta using the
// language model. The model is an untrusted text source: its output is
// repaired before parsing and validated downstream by the merge engine, and
// any failure degrades to "no change this turn" instead of surfacing.
type IntentExtractor struct {
	llm *OllamaClient
}

// NewIntentExtractor creates a new intent extractor
func NewIntentExtractor(llm *OllamaClient) *IntentExtractor {
	return &IntentExtractor{llm: llm}
}

const intentPromptTemplate = `You are a Romanian real estate search parser. Parse the user's query into structured JSON.

CURRENT SEARCH CONTEXT (from previous queries in this conversation):
%s

USER QUERY: "%s"

CRITICAL RULES:
1. ALWAYS preserve ALL existing context values, EXCEPT the fields explicitly mentioned in the new query
2. If user mentions a NEW location (e.g., "sector 3", "Titan", "Pallady"), UPDATE the location field - keep all other filters
3. If user says "acum vreau", "dar in", "pe alea din", "doar in", "schimba" - this MODIFIES only that specific filter
4. For features (animale, fumatori, parcare, mobilat, centrala):
   - "WANT" = user wants this feature
   - "EXCLUDE" = user doesn't want this
   - null = not mentioned, keep existing value
5. For exclude_agencies:
   - Set to true if user says: "fara agentii", "doar particulari", "nu agenti", "private only", "no agents"
   - Keep existing value if not mentioned

EXAMPLES of REFINEMENT queries (keep all context, change only what's mentioned):
- Context has "location": "Sector 1" -> Query: "acum vreau din sector 3" -> Output: "location": "Sector 3" (keep ALL other fields!)
- Context has "price_max": 800 -> Query: "dar cu maxim 600 euro" -> Output: "price_max": 600 (keep ALL other fields!)
- Context has rooms: null -> Query: "cu 2 camere" -> Output: "rooms": 2 (keep ALL other fields!)

OUTPUT FORMAT (JSON only - include ALL fields, preserve context for unchanged fields):
{
  "location": "neighborhood/sector or null if not mentioned at all",
  "city": "city name or null",
  "transaction": "Vanzare" or "Inchiriere" or null,
  "property_type": "Apartamente" or "Case" or "Garsoniera" or null,
  "rooms": number or null,
  "price_min": number or null,
  "price_max": number or null,
  "keywords": ["array of terms like: modern, balcon, renovat, vedere"],
  "features": {
    "animale": "WANT" or "EXCLUDE" or null,
    "fumatori": "WANT" or "EXCLUDE" or null,
    "parcare": "WANT" or "EXCLUDE" or null,
    "mobilat": "WANT" or "EXCLUDE" or null,
    "centrala": "WANT" or "EXCLUDE" or null
  },
  "exclude_agencies": true or false
}

Parse and output ONLY valid JSON:`

// BuildPrompt constructs the instruction prompt for one turn, embedding the
// serialized prior state and the verbatim utterance.
func (e *IntentExtractor) BuildPrompt(utterance string, prior *model.FilterState) string {
	context, err := json.MarshalIndent(prior, "", "  ")
	if err != nil {
		context = []byte("{}")
	}
	return fmt.Sprintf(intentPromptTemplate, string(context), utterance)
}

// Extract invokes the model and parses the completion into a raw delta.
// On any failure (network, timeout, malformed output, non-object result) it
// returns nil: the merge engine treats a nil delta as "no change this turn".
func (e *IntentExtractor) Extract(ctx context.Context, utterance string, prior *model.FilterState) map[string]any {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" || e.llm == nil {
		return nil
	}

	prompt := e.BuildPrompt(utterance, prior)

	completion, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		log.Printf("Warning: intent extraction failed, keeping prior state: %v", err)
		return nil
	}

	var delta map[string]any
	if err := utils.ParseModelJSON(completion, &delta); err != nil {
		log.Printf("Warning: could not parse model output, keeping prior state: %v", err)
		return nil
	}

	return delta
}

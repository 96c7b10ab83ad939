package tracker

import (
	"sync"
)

// Cost computes the prompt and completion cost for a token count pair
// against per-1k-token rates: rate * tokens / 1000. It is a pure function;
// no rounding is applied, callers round only for display. Zero tokens
// yields zero cost.
func Cost(promptTokens, completionTokens int, promptRatePer1k, completionRatePer1k float64) (promptCost, completionCost float64) {
	promptCost = promptRatePer1k * float64(promptTokens) / 1000
	completionCost = completionRatePer1k * float64(completionTokens) / 1000
	return promptCost, completionCost
}

// RateCard holds the per-1k-token pricing for a model.
type RateCard struct {
	PromptCostPer1k     float64
	CompletionCostPer1k float64
	Currency            string
}

// RateCardRegistry maps model identifiers to their rate cards.
// Registering a model twice replaces its card.
type RateCardRegistry struct {
	cards map[string]RateCard
	mu    sync.RWMutex
}

// NewRateCardRegistry creates an empty rate card registry.
func NewRateCardRegistry() *RateCardRegistry {
	return &RateCardRegistry{
		cards: make(map[string]RateCard),
	}
}

// Register sets the rate card for a model, replacing any existing card.
// An empty currency defaults to USD.
func (r *RateCardRegistry) Register(modelID string, promptCostPer1k, completionCostPer1k float64, currency string) {
	if currency == "" {
		currency = "USD"
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.cards[modelID] = RateCard{
		PromptCostPer1k:     promptCostPer1k,
		CompletionCostPer1k: completionCostPer1k,
		Currency:            currency,
	}
}

// Lookup returns the rate card for a model and whether one is registered.
func (r *RateCardRegistry) Lookup(modelID string) (RateCard, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	card, ok := r.cards[modelID]
	return card, ok
}

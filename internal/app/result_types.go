package app

import "recon-engine/internal/core"

// SuggestionListResult is returned by ListSuggestions.
type SuggestionListResult struct {
	Status      string            `json:"status,omitempty"`
	Suggestions []core.Suggestion `json:"suggestions"`
}

// DecisionResult is returned by suggestion approve/reject.
type DecisionResult struct {
	SuggestionID string             `json:"suggestion_id"`
	Decision     core.MatchDecision `json:"decision"`
}

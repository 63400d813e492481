package core

import "encoding/json"

// TokenEstimator estimates the token footprint of a message history. The
// exact estimator is injectable; precision is an implementation detail, not
// a contract. The engine and compactor only rely on estimates being
// monotone in content size.
type TokenEstimator func(history []Message) int

// charsPerToken is the fixed characters-per-token heuristic used by the
// default estimator.
const charsPerToken = 4

// EstimateTokens is the default estimator: serialized character count
// divided by a fixed characters-per-token ratio. Parts that fail to
// serialize contribute nothing rather than failing the estimate.
func EstimateTokens(history []Message) int {
	chars := 0
	for _, m := range history {
		chars += len(m.Role)
		for _, p := range m.Parts {
			if b, err := json.Marshal(p); err == nil {
				chars += len(b)
			}
		}
	}
	return chars / charsPerToken
}

package ledger

import "time"

// PriceSample is one observation of a token's market state.
type PriceSample struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Liquidity float64   `json:"liquidity"`
}

// TokenRecord is the full per-token state owned by the Store. Address is the
// primary key and never changes; FirstSeen, InitialPrice and InitialLiquidity
// are set once (the initial fields from the first non-zero price observation).
// NotifiedMultiples is the set of price-multiple milestones already announced,
// kept sorted ascending; it only ever grows.
type TokenRecord struct {
	Address           string        `json:"address"`
	Symbol            string        `json:"symbol"`
	FirstSeen         time.Time     `json:"first_seen"`
	InitialPrice      float64       `json:"initial_price"`
	InitialLiquidity  float64       `json:"initial_liquidity"`
	History           []PriceSample `json:"price_history"`
	HighestPrice      float64       `json:"highest_price"`
	LowestPrice       float64       `json:"lowest_price"`
	CurrentPrice      float64       `json:"current_price"`
	LastUpdated       time.Time     `json:"last_updated"`
	NotifiedMultiples []int         `json:"notified_multiples"`
}

// HasMilestone reports whether milestone m was already announced.
func (r *TokenRecord) HasMilestone(m int) bool {
	for _, n := range r.NotifiedMultiples {
		if n == m {
			return true
		}
	}
	return false
}

// clone returns a deep copy so callers can read without holding locks.
func (r *TokenRecord) clone() TokenRecord {
	cp := *r
	cp.History = make([]PriceSample, len(r.History))
	copy(cp.History, r.History)
	cp.NotifiedMultiples = make([]int, len(r.NotifiedMultiples))
	copy(cp.NotifiedMultiples, r.NotifiedMultiples)
	return cp
}

package models

import "time"

// TokenRecordRow is the persisted form of one tracked token. History and the
// notified milestone set are stored as jsonb blobs; the row is keyed by the
// token address so each save is a single-row upsert.
type TokenRecordRow struct {
	Address           string    `gorm:"primaryKey"`           // Token contract address
	Symbol            string    `gorm:"not null"`             // Ticker symbol, "Unknown" when absent
	FirstSeen         time.Time `gorm:"not null"`             // First observation timestamp
	InitialPrice      float64   `gorm:"not null"`             // First non-zero observed price
	InitialLiquidity  float64   `gorm:"not null"`             // Liquidity at initial price
	CurrentPrice      float64   `gorm:"not null"`             // Latest observed price
	HighestPrice      float64   `gorm:"not null"`             // All-time observed high
	LowestPrice       float64   `gorm:"not null"`             // All-time observed non-zero low
	PriceHistory      string    `gorm:"type:jsonb;not null"`  // Bounded sample window
	NotifiedMultiples string    `gorm:"type:jsonb;not null"`  // Milestone multiples already alerted
	LastUpdated       time.Time `gorm:"autoUpdateTime:false"` // Set by the ledger, not by gorm
}

package database

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Q872/base-sniper-monitor/monitor/internal/ledger"
	"github.com/Q872/base-sniper-monitor/monitor/internal/models"
)

// TokenStore backs the ledger with postgres. Every Save is a single-row
// upsert keyed by address, so one token's write never touches another's row.
type TokenStore struct {
	db *gorm.DB
}

func NewTokenStore(db *gorm.DB) *TokenStore {
	return &TokenStore{db: db}
}

func (t *TokenStore) LoadAll(ctx context.Context) (map[string]*ledger.TokenRecord, error) {
	var rows []models.TokenRecordRow
	if err := t.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load token records: %w", err)
	}

	records := make(map[string]*ledger.TokenRecord, len(rows))
	for _, row := range rows {
		rec, err := rowToRecord(&row)
		if err != nil {
			return nil, fmt.Errorf("decode token record %s: %w", row.Address, err)
		}
		records[rec.Address] = rec
	}
	return records, nil
}

func (t *TokenStore) Save(ctx context.Context, rec *ledger.TokenRecord) error {
	row, err := recordToRow(rec)
	if err != nil {
		return fmt.Errorf("encode token record %s: %w", rec.Address, err)
	}

	err = t.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		UpdateAll: true,
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("save token record %s: %w", rec.Address, err)
	}
	return nil
}

func recordToRow(rec *ledger.TokenRecord) (*models.TokenRecordRow, error) {
	samples := rec.History
	if samples == nil {
		samples = []ledger.PriceSample{}
	}
	history, err := json.Marshal(samples)
	if err != nil {
		return nil, err
	}
	multiples := rec.NotifiedMultiples
	if multiples == nil {
		multiples = []int{}
	}
	notified, err := json.Marshal(multiples)
	if err != nil {
		return nil, err
	}

	return &models.TokenRecordRow{
		Address:           rec.Address,
		Symbol:            rec.Symbol,
		FirstSeen:         rec.FirstSeen,
		InitialPrice:      rec.InitialPrice,
		InitialLiquidity:  rec.InitialLiquidity,
		CurrentPrice:      rec.CurrentPrice,
		HighestPrice:      rec.HighestPrice,
		LowestPrice:       rec.LowestPrice,
		PriceHistory:      string(history),
		NotifiedMultiples: string(notified),
		LastUpdated:       rec.LastUpdated,
	}, nil
}

func rowToRecord(row *models.TokenRecordRow) (*ledger.TokenRecord, error) {
	rec := &ledger.TokenRecord{
		Address:          row.Address,
		Symbol:           row.Symbol,
		FirstSeen:        row.FirstSeen,
		InitialPrice:     row.InitialPrice,
		InitialLiquidity: row.InitialLiquidity,
		CurrentPrice:     row.CurrentPrice,
		HighestPrice:     row.HighestPrice,
		LowestPrice:      row.LowestPrice,
		LastUpdated:      row.LastUpdated,
	}
	if err := json.Unmarshal([]byte(row.PriceHistory), &rec.History); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(row.NotifiedMultiples), &rec.NotifiedMultiples); err != nil {
		return nil, err
	}
	return rec, nil
}

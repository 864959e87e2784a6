package ledger

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/Q872/base-sniper-monitor/shared/logger"
	"go.uber.org/zap"
)

const lockStripes = 64

// Persister is the durable backend for token records. Save is called after
// every mutation while the per-address lock is still held, so a slow backend
// delays that address only.
type Persister interface {
	LoadAll(ctx context.Context) (map[string]*TokenRecord, error)
	Save(ctx context.Context, rec *TokenRecord) error
}

// Store owns every TokenRecord. All read-modify-write access is serialized
// per address through a stripe of mutexes, so concurrent upserts for the same
// token both survive while distinct tokens proceed in parallel.
type Store struct {
	mu      sync.RWMutex // guards the records map structure
	records map[string]*TokenRecord

	stripes [lockStripes]sync.Mutex

	historyCap int
	persister  Persister
	log        *logger.Logger
}

// NewStore builds a Store and hydrates it from the persister. A missing or
// corrupted backing store degrades to an empty ledger with a warning; it
// never fails the caller. persister may be nil for in-memory operation.
func NewStore(ctx context.Context, historyCap int, persister Persister, log *logger.Logger) *Store {
	s := &Store{
		records:    make(map[string]*TokenRecord),
		historyCap: historyCap,
		persister:  persister,
		log:        log,
	}
	if persister == nil {
		log.Warn("Ledger persistence not configured, running in-memory only")
		return s
	}

	loaded, err := persister.LoadAll(ctx)
	if err != nil {
		log.Warn("Failed to load token ledger, starting from an empty collection", zap.Error(err))
		return s
	}
	s.records = loaded
	log.Info("Token ledger loaded", zap.Int("tokens", len(loaded)))
	return s
}

func (s *Store) stripe(address string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(address))
	return &s.stripes[h.Sum32()%lockStripes]
}

// Upsert records one price sample for the token, creating the record on first
// observation. It returns a snapshot of the record after the update.
func (s *Store) Upsert(ctx context.Context, address, symbol string, price, liquidity float64, now time.Time) TokenRecord {
	lock := s.stripe(address)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	rec, ok := s.records[address]
	s.mu.RUnlock()

	if !ok {
		rec = &TokenRecord{
			Address:      address,
			Symbol:       symbol,
			FirstSeen:    now,
			HighestPrice: price,
			LowestPrice:  price,
		}
		s.mu.Lock()
		s.records[address] = rec
		s.mu.Unlock()
	}

	if symbol != "" {
		rec.Symbol = symbol
	}

	// The initial fields wait for the first non-zero price; a listing may be
	// observed before its pool has a quote.
	if rec.InitialPrice == 0 && price > 0 {
		rec.InitialPrice = price
		rec.InitialLiquidity = liquidity
	}

	rec.History = append(rec.History, PriceSample{Timestamp: now, Price: price, Liquidity: liquidity})
	if len(rec.History) > s.historyCap {
		rec.History = rec.History[len(rec.History)-s.historyCap:]
	}

	if price > rec.HighestPrice {
		rec.HighestPrice = price
	}
	if price < rec.LowestPrice || (rec.LowestPrice == 0 && price > 0) {
		rec.LowestPrice = price
	}
	rec.CurrentPrice = price
	rec.LastUpdated = now

	s.persist(ctx, rec)
	return rec.clone()
}

// CommitMilestone marks milestone m as announced for the token. Callers only
// commit after the notification actually went out; an uncommitted crossing is
// retried on the next cycle.
func (s *Store) CommitMilestone(ctx context.Context, address string, m int) {
	lock := s.stripe(address)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	rec, ok := s.records[address]
	s.mu.RUnlock()
	if !ok {
		s.log.Warn("CommitMilestone for unknown token", zap.String("address", address), zap.Int("milestone", m))
		return
	}
	if rec.HasMilestone(m) {
		return
	}
	rec.NotifiedMultiples = append(rec.NotifiedMultiples, m)
	sort.Ints(rec.NotifiedMultiples)
	s.persist(ctx, rec)
}

// Snapshot returns a copy of the record, if present.
func (s *Store) Snapshot(address string) (TokenRecord, bool) {
	lock := s.stripe(address)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	rec, ok := s.records[address]
	s.mu.RUnlock()
	if !ok {
		return TokenRecord{}, false
	}
	return rec.clone(), true
}

// Len reports how many tokens the ledger tracks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Performer pairs a record snapshot with its total return since first
// observation, for the read-side queries.
type Performer struct {
	Record         TokenRecord
	TotalReturnPct float64
}

// TopPerformers returns up to limit tokens ordered by total return
// descending. Tokens without an initial price yet are excluded.
func (s *Store) TopPerformers(limit int) []Performer {
	performers := make([]Performer, 0, s.Len())
	for _, addr := range s.addresses() {
		rec, ok := s.Snapshot(addr)
		if !ok || rec.InitialPrice <= 0 {
			continue
		}
		total := (rec.CurrentPrice - rec.InitialPrice) / rec.InitialPrice * 100
		performers = append(performers, Performer{Record: rec, TotalReturnPct: total})
	}
	sort.Slice(performers, func(i, j int) bool {
		return performers[i].TotalReturnPct > performers[j].TotalReturnPct
	})
	if limit > 0 && len(performers) > limit {
		performers = performers[:limit]
	}
	return performers
}

// RecentTokens returns tokens first seen within the window, newest first.
func (s *Store) RecentTokens(window time.Duration, now time.Time) []TokenRecord {
	cutoff := now.Add(-window)
	recent := make([]TokenRecord, 0)
	for _, addr := range s.addresses() {
		rec, ok := s.Snapshot(addr)
		if !ok || rec.FirstSeen.Before(cutoff) {
			continue
		}
		recent = append(recent, rec)
	}
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].FirstSeen.After(recent[j].FirstSeen)
	})
	return recent
}

func (s *Store) addresses() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	addrs := make([]string, 0, len(s.records))
	for addr := range s.records {
		addrs = append(addrs, addr)
	}
	return addrs
}

func (s *Store) persist(ctx context.Context, rec *TokenRecord) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(ctx, rec); err != nil {
		s.log.Warn("Failed to persist token record, in-memory state retained",
			zap.String("address", rec.Address), zap.Error(err))
	}
}

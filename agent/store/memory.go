package store

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore keeps records in process memory. It backs local runs
// without a database and buffers writes the database rejected. Inserts
// with a known id replace the stored record.
type MemoryStore struct {
	mu         sync.RWMutex
	marketData []MarketDataPoint
	reports    []Report
	queries    []QueryRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) InsertMarketData(_ context.Context, rec *MarketDataPoint) error {
	if rec == nil {
		return ErrNilRecord
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.marketData {
		if m.marketData[i].ID == rec.ID {
			m.marketData[i] = rec.clone()
			return nil
		}
	}
	m.marketData = append(m.marketData, rec.clone())
	return nil
}

func (m *MemoryStore) MarketData(_ context.Context, f MarketDataFilter) ([]MarketDataPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MarketDataPoint, 0)
	for _, rec := range m.marketData {
		if !matchMarketData(rec, f) {
			continue
		}
		out = append(out, rec.clone())
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryStore) InsertReport(_ context.Context, rec *Report) error {
	if rec == nil {
		return ErrNilRecord
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.reports {
		if m.reports[i].ID == rec.ID {
			m.reports[i] = rec.clone()
			return nil
		}
	}
	m.reports = append(m.reports, rec.clone())
	return nil
}

func (m *MemoryStore) Reports(_ context.Context, f ReportFilter) ([]Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Report, 0)
	for _, rec := range m.reports {
		if !matchReport(rec, f) {
			continue
		}
		out = append(out, rec.clone())
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryStore) InsertQuery(_ context.Context, rec *QueryRecord) error {
	if rec == nil {
		return ErrNilRecord
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.queries {
		if m.queries[i].ID == rec.ID {
			m.queries[i] = rec.clone()
			return nil
		}
	}
	m.queries = append(m.queries, rec.clone())
	return nil
}

func (m *MemoryStore) Queries(_ context.Context, f QueryFilter) ([]QueryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]QueryRecord, 0)
	for _, rec := range m.queries {
		if !matchQuery(rec, f) {
			continue
		}
		out = append(out, rec.clone())
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

func matchMarketData(rec MarketDataPoint, f MarketDataFilter) bool {
	if f.ID != "" && rec.ID != f.ID {
		return false
	}
	if f.Sector != "" && rec.Sector != f.Sector {
		return false
	}
	if f.Country != "" && rec.Country != f.Country {
		return false
	}
	if f.DataPoint != "" && rec.DataPoint != f.DataPoint {
		return false
	}
	if f.CustomKeyword != "" && !containsFold(rec.CustomKeyword, f.CustomKeyword) {
		return false
	}
	return true
}

func matchReport(rec Report, f ReportFilter) bool {
	if f.ID != "" && rec.ID != f.ID {
		return false
	}
	if f.Sector != "" && rec.Sector != f.Sector {
		return false
	}
	if f.Country != "" && rec.Country != f.Country {
		return false
	}
	if f.FinancialProduct != "" && rec.FinancialProduct != f.FinancialProduct {
		return false
	}
	if f.CustomKeyword != "" && !containsFold(rec.CustomKeyword, f.CustomKeyword) {
		return false
	}
	return true
}

func matchQuery(rec QueryRecord, f QueryFilter) bool {
	if f.ID != "" && rec.ID != f.ID {
		return false
	}
	if f.Intent != "" && rec.Intent != f.Intent {
		return false
	}
	if f.AgentType != "" && rec.AgentType != f.AgentType {
		return false
	}
	if f.CustomKeyword != "" && !containsFold(rec.CustomKeyword, f.CustomKeyword) {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

package store

import (
	"context"
	"testing"
)

func TestMemoryStoreFiltersMarketData(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore()
	ctx := context.Background()
	seed := []MarketDataPoint{
		{ID: "a", Sector: "Healthcare", Country: "France", CustomKeyword: "medical equipment"},
		{ID: "b", Sector: "Healthcare", Country: "Germany"},
		{ID: "c", Sector: "Energy", Country: "France"},
	}
	for i := range seed {
		if err := m.InsertMarketData(ctx, &seed[i]); err != nil {
			t.Fatalf("InsertMarketData() error = %v", err)
		}
	}

	got, err := m.MarketData(ctx, MarketDataFilter{Sector: "Healthcare", Country: "France"})
	if err != nil {
		t.Fatalf("MarketData() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("MarketData() = %#v, want single record a", got)
	}
}

func TestMemoryStoreKeywordMatchIsCaseInsensitiveSubstring(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore()
	ctx := context.Background()
	rec := MarketDataPoint{ID: "a", Sector: "Technology", CustomKeyword: "Electric Vehicles"}
	if err := m.InsertMarketData(ctx, &rec); err != nil {
		t.Fatalf("InsertMarketData() error = %v", err)
	}

	got, err := m.MarketData(ctx, MarketDataFilter{CustomKeyword: "electric"})
	if err != nil {
		t.Fatalf("MarketData() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("MarketData() returned %d records, want 1", len(got))
	}
}

func TestMemoryStoreInsertReplacesExistingID(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore()
	ctx := context.Background()
	first := MarketDataPoint{ID: "a", Sector: "Energy", Value: "old"}
	second := MarketDataPoint{ID: "a", Sector: "Energy", Value: "new"}
	if err := m.InsertMarketData(ctx, &first); err != nil {
		t.Fatalf("InsertMarketData() error = %v", err)
	}
	if err := m.InsertMarketData(ctx, &second); err != nil {
		t.Fatalf("InsertMarketData() error = %v", err)
	}

	got, err := m.MarketData(ctx, MarketDataFilter{Sector: "Energy"})
	if err != nil {
		t.Fatalf("MarketData() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("MarketData() returned %d records, want 1", len(got))
	}
	if got[0].Value != "new" {
		t.Fatalf("MarketData()[0].Value = %q, want %q", got[0].Value, "new")
	}
}

func TestMemoryStoreLimitCapsResults(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore()
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		rec := MarketDataPoint{ID: id, Sector: "Retail"}
		if err := m.InsertMarketData(ctx, &rec); err != nil {
			t.Fatalf("InsertMarketData() error = %v", err)
		}
	}

	got, err := m.MarketData(ctx, MarketDataFilter{Sector: "Retail", Limit: 2})
	if err != nil {
		t.Fatalf("MarketData() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("MarketData() returned %d records, want 2", len(got))
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore()
	ctx := context.Background()
	rec := QueryRecord{ID: "q1", Intent: "question_answering", Metadata: map[string]any{"k": "v"}}
	if err := m.InsertQuery(ctx, &rec); err != nil {
		t.Fatalf("InsertQuery() error = %v", err)
	}

	got, err := m.Queries(ctx, QueryFilter{ID: "q1"})
	if err != nil {
		t.Fatalf("Queries() error = %v", err)
	}
	got[0].Metadata["k"] = "mutated"

	again, err := m.Queries(ctx, QueryFilter{ID: "q1"})
	if err != nil {
		t.Fatalf("Queries() error = %v", err)
	}
	if again[0].Metadata["k"] != "v" {
		t.Fatalf("stored metadata mutated through read result: %v", again[0].Metadata)
	}
}

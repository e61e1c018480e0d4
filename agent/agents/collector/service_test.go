package collector

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/contract"
	llmx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/llm"
	storex "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/store"
)

type fakeCompleter struct {
	responses []string
	err       error
	calls     []contractx.CompletionRequest
	idx       int
}

func (f *fakeCompleter) Complete(_ context.Context, req contractx.CompletionRequest) (string, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return "", f.err
	}
	if f.idx >= len(f.responses) {
		return "", errors.New("no fake response left")
	}
	resp := f.responses[f.idx]
	f.idx++
	return resp, nil
}

func fixedClock() time.Time {
	return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
}

func newTestStore(t *testing.T) *storex.RecordStore {
	t.Helper()
	return storex.New(context.Background(), storex.Config{},
		storex.WithBackend("memory", storex.NewMemoryStore()),
		storex.WithClock(fixedClock),
	)
}

func newTestService(t *testing.T, fake *fakeCompleter, st storex.Store) *Service {
	t.Helper()
	params := llmx.ModelParams{Model: "gpt-4o", Temperature: 0.2, MaxTokens: 2000}
	svc, err := New(fake, st, params, "collector prompt", WithClock(fixedClock))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return svc
}

func TestCollectStoresParsedPoints(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{
		responses: []string{"```json\n[\n  {\"name\": \"market_size\", \"value\": \"€5.2 billion\", \"source\": \"Example Report\", \"date\": \"2023\"},\n  {\"name\": \"key_players\", \"value\": [\"Acme\", \"Globex\"], \"source\": \"Industry Survey\", \"date\": 2023}\n]\n```"},
	}
	st := newTestStore(t)
	svc := newTestService(t, fake, st)

	res, err := svc.Collect(context.Background(), contractx.DataCollectionRequest{
		Sector:        "Technology",
		Country:       "France",
		CustomKeyword: "electric vehicles",
	})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if res.Placeholder != nil {
		t.Fatalf("Collect().Placeholder = %+v, want nil", res.Placeholder)
	}
	if len(res.Collected) != 2 {
		t.Fatalf("Collect() stored %d points, want 2", len(res.Collected))
	}
	first := res.Collected[0]
	if first.ID == "" {
		t.Fatal("stored point has no id")
	}
	if first.Date != "2023-01-01T00:00:00" {
		t.Fatalf("stored date = %q, want normalized ISO", first.Date)
	}
	if first.CustomKeyword != "electric vehicles" {
		t.Fatalf("stored keyword = %q, want %q", first.CustomKeyword, "electric vehicles")
	}
	second := res.Collected[1]
	if second.Value != `["Acme", "Globex"]` {
		t.Fatalf("structured value = %q, want compact JSON", second.Value)
	}

	if len(fake.calls) != 1 {
		t.Fatalf("completer called %d times, want 1", len(fake.calls))
	}
	call := fake.calls[0]
	if call.Messages[0].Content != "collector prompt" {
		t.Fatalf("system prompt = %q", call.Messages[0].Content)
	}
	if !strings.Contains(call.Messages[1].Content, "for the Technology sector in France") {
		t.Fatalf("user prompt missing scope: %q", call.Messages[1].Content)
	}
	if !strings.Contains(call.Messages[1].Content, "specifically regarding electric vehicles") {
		t.Fatalf("user prompt missing keyword clause: %q", call.Messages[1].Content)
	}
}

func TestCollectRejectsMissingSector(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{}
	svc := newTestService(t, fake, newTestStore(t))

	_, err := svc.Collect(context.Background(), contractx.DataCollectionRequest{Country: "France"})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Collect() error = %v, want ErrValidation", err)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("completer called %d times, want 0", len(fake.calls))
	}
}

func TestCollectMalformedOutputCarriesRawResponse(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{responses: []string{"I could not find any data, sorry."}}
	st := newTestStore(t)
	svc := newTestService(t, fake, st)

	_, err := svc.Collect(context.Background(), contractx.DataCollectionRequest{Sector: "Energy"})
	if !errors.Is(err, contractx.ErrMalformedOutput) {
		t.Fatalf("Collect() error = %v, want ErrMalformedOutput", err)
	}

	var malformed *contractx.MalformedOutputError
	if !errors.As(err, &malformed) {
		t.Fatalf("Collect() error = %T, want MalformedOutputError", err)
	}
	if malformed.Raw != "I could not find any data, sorry." {
		t.Fatalf("MalformedOutputError.Raw = %q", malformed.Raw)
	}

	stored, err := st.MarketData(context.Background(), storex.MarketDataFilter{Sector: "Energy"})
	if err != nil {
		t.Fatalf("MarketData() error = %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("stored %d points after parse failure, want 0", len(stored))
	}
}

func TestCollectDegradesToPlaceholderOnCompletionFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{err: errors.New("gateway timeout")}
	st := newTestStore(t)
	svc := newTestService(t, fake, st)

	res, err := svc.Collect(context.Background(), contractx.DataCollectionRequest{
		Sector:  "Energy",
		Country: "France",
	})
	if err != nil {
		t.Fatalf("Collect() error = %v, want placeholder result", err)
	}
	if res.Placeholder == nil {
		t.Fatal("Collect().Placeholder = nil, want tagged placeholder")
	}
	if len(res.Collected) != 2 {
		t.Fatalf("placeholder stored %d points, want 2", len(res.Collected))
	}
	if res.Collected[0].Value != "€5.2 billion for Energy in France" {
		t.Fatalf("placeholder value = %q", res.Collected[0].Value)
	}
	if res.Collected[0].Metadata[storex.MetaSynthetic] != "true" {
		t.Fatalf("placeholder metadata = %v, want synthetic tag", res.Collected[0].Metadata)
	}
	if res.Collected[0].Date != "2024-01-01T00:00:00" {
		t.Fatalf("placeholder date = %q, want current year normalized", res.Collected[0].Date)
	}
}

func TestCollectSkipsPointsMissingNameOrValue(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{
		responses: []string{`[{"name":"market_size","value":"€1 billion","source":"S","date":"2024"},{"name":"","value":"orphan"},{"name":"growth_rate","value":""}]`},
	}
	svc := newTestService(t, fake, newTestStore(t))

	res, err := svc.Collect(context.Background(), contractx.DataCollectionRequest{Sector: "Retail"})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(res.Collected) != 1 {
		t.Fatalf("Collect() stored %d points, want 1", len(res.Collected))
	}
	if res.Collected[0].DataPoint != "market_size" {
		t.Fatalf("stored point = %q, want market_size", res.Collected[0].DataPoint)
	}
}

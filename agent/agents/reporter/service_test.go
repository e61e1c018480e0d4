package reporter

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

type completion struct {
	text string
	err  error
}

type fakeCompleter struct {
	script []completion
	calls  []contractx.CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req contractx.CompletionRequest) (string, error) {
	f.calls = append(f.calls, req)
	if len(f.script) == 0 {
		return "", errors.New("no scripted completion left")
	}
	next := f.script[0]
	f.script = f.script[1:]
	return next.text, next.err
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
	reportParams := llmx.ModelParams{Model: "gpt-4o", Temperature: 0.5, MaxTokens: 4000}
	summaryParams := llmx.ModelParams{Model: "gpt-4o-mini", Temperature: 0.5, MaxTokens: 1000}
	svc, err := New(fake, st, reportParams, summaryParams, "reporter prompt", "summarizer prompt")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return svc
}

func seedMarketData(t *testing.T, st *storex.RecordStore, points ...storex.MarketDataPoint) {
	t.Helper()
	for i := range points {
		if err := st.InsertMarketData(context.Background(), &points[i]); err != nil {
			t.Fatalf("InsertMarketData() error = %v", err)
		}
	}
}

func TestGenerateProducesReportFromStoredData(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	seedMarketData(t, st,
		storex.MarketDataPoint{Sector: "Technology", Country: "Germany", DataPoint: "growth_rate", Value: "8.5% annually", Source: "Tech Report", Date: "2023"},
		storex.MarketDataPoint{Sector: "Technology", Country: "Germany", DataPoint: "market_size", Value: "€120 billion", Source: "Eurostat", Date: "2024"},
	)
	fake := &fakeCompleter{script: []completion{{text: "report body"}, {text: "short summary"}}}
	svc := newTestService(t, fake, st)

	res, err := svc.Generate(context.Background(), contractx.ReportRequest{
		Sector:  "Technology",
		Country: "Germany",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if res.Placeholder != nil {
		t.Fatalf("Generate().Placeholder = %+v, want nil", res.Placeholder)
	}
	if res.Report.Title != "Market Report: Technology Sector in Germany" {
		t.Fatalf("report title = %q", res.Report.Title)
	}
	if res.Report.Content != "report body" || res.Report.Summary != "short summary" {
		t.Fatalf("report payload = %+v", res.Report)
	}
	if res.StoredReport == nil {
		t.Fatal("Generate().StoredReport = nil, want stored record")
	}
	if res.StoredReport.FinancialProduct != "General" {
		t.Fatalf("stored financial product = %q, want General", res.StoredReport.FinancialProduct)
	}
	if got := res.StoredReport.Metadata["data_points"]; got != 2 {
		t.Fatalf("stored data_points = %v, want 2", got)
	}

	if len(fake.calls) != 2 {
		t.Fatalf("completer called %d times, want 2", len(fake.calls))
	}
	report := fake.calls[0]
	if report.Model != "gpt-4o" {
		t.Fatalf("report completion model = %q", report.Model)
	}
	if report.Messages[0].Content != "reporter prompt" {
		t.Fatalf("report system prompt = %q", report.Messages[0].Content)
	}
	user := report.Messages[1].Content
	if !strings.Contains(user, "Generate a comprehensive market report for the Technology sector in Germany") {
		t.Fatalf("report user prompt missing query: %q", user)
	}
	if !strings.Contains(user, "## Growth Rate") || !strings.Contains(user, "## Market Size") {
		t.Fatalf("report user prompt missing grouped headings: %q", user)
	}
	if !strings.Contains(user, "- Value: 8.5% annually\n  Source: Tech Report\n  Date: 2023-01-01T00:00:00") {
		t.Fatalf("report user prompt missing data block: %q", user)
	}
	summary := fake.calls[1]
	if summary.Model != "gpt-4o-mini" {
		t.Fatalf("summary completion model = %q", summary.Model)
	}
	if summary.Messages[1].Content != "report body" {
		t.Fatalf("summary user prompt = %q, want report content", summary.Messages[1].Content)
	}
}

func TestGenerateRejectsMissingSector(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{}
	svc := newTestService(t, fake, newTestStore(t))

	_, err := svc.Generate(context.Background(), contractx.ReportRequest{Country: "Germany"})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Generate() error = %v, want ErrValidation", err)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("completer called %d times, want 0", len(fake.calls))
	}
}

func TestGenerateReturnsNoDataErrorWithoutCompletion(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{}
	svc := newTestService(t, fake, newTestStore(t))

	_, err := svc.Generate(context.Background(), contractx.ReportRequest{
		Sector:        "Healthcare",
		CustomKeyword: "robotics",
	})
	if !errors.Is(err, contractx.ErrNoData) {
		t.Fatalf("Generate() error = %v, want ErrNoData", err)
	}
	if !strings.Contains(err.Error(), "even after fallback") {
		t.Fatalf("Generate() error = %q, want fallback wording", err)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("completer called %d times, want 0", len(fake.calls))
	}
}

func TestGenerateWidensSearchWhenKeywordMatchesNothing(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	seedMarketData(t, st,
		storex.MarketDataPoint{Sector: "Healthcare", DataPoint: "market_size", Value: "€45 billion", Source: "Health Association", Date: "2023"},
	)
	fake := &fakeCompleter{script: []completion{{text: "report body"}, {text: "short summary"}}}
	svc := newTestService(t, fake, st)

	res, err := svc.Generate(context.Background(), contractx.ReportRequest{
		Sector:        "Healthcare",
		CustomKeyword: "robotics",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if res.Report.Title != "Market Report: Healthcare Sector (robotics)" {
		t.Fatalf("report title = %q", res.Report.Title)
	}
	if res.StoredReport.CustomKeyword != "robotics" {
		t.Fatalf("stored keyword = %q, want robotics", res.StoredReport.CustomKeyword)
	}
	if !strings.Contains(fake.calls[0].Messages[1].Content, "€45 billion") {
		t.Fatalf("widened search did not feed data into prompt: %q", fake.calls[0].Messages[1].Content)
	}
}

func TestGenerateContinuesWhenSummaryFails(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	seedMarketData(t, st,
		storex.MarketDataPoint{Sector: "Energy", DataPoint: "growth_rate", Value: "4%", Source: "S", Date: "2024"},
	)
	fake := &fakeCompleter{script: []completion{{text: "report body"}, {err: errors.New("rate limited")}}}
	svc := newTestService(t, fake, st)

	res, err := svc.Generate(context.Background(), contractx.ReportRequest{Sector: "Energy"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Placeholder != nil {
		t.Fatalf("Generate().Placeholder = %+v, want nil", res.Placeholder)
	}
	if res.Report.Summary != "Error generating summary." {
		t.Fatalf("summary = %q, want degraded message", res.Report.Summary)
	}
	if res.StoredReport == nil || res.StoredReport.Summary != "Error generating summary." {
		t.Fatalf("stored report = %+v, want degraded summary", res.StoredReport)
	}
}

func TestGenerateDegradesToPlaceholderOnContentFailure(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	seedMarketData(t, st,
		storex.MarketDataPoint{Sector: "Energy", Country: "France", DataPoint: "growth_rate", Value: "4%", Source: "S", Date: "2024"},
	)
	fake := &fakeCompleter{script: []completion{{err: errors.New("gateway timeout")}}}
	svc := newTestService(t, fake, st)

	res, err := svc.Generate(context.Background(), contractx.ReportRequest{Sector: "Energy", Country: "France"})
	if err != nil {
		t.Fatalf("Generate() error = %v, want placeholder result", err)
	}
	if res.Placeholder == nil {
		t.Fatal("Generate().Placeholder = nil, want tagged placeholder")
	}
	if !strings.Contains(res.Placeholder.Reason, "completion failed") {
		t.Fatalf("placeholder reason = %q", res.Placeholder.Reason)
	}
	if !strings.Contains(res.Report.Content, "Synthetic placeholder report") {
		t.Fatalf("placeholder content = %q", res.Report.Content)
	}
	if res.StoredReport == nil {
		t.Fatal("placeholder report was not stored")
	}
	if res.StoredReport.Metadata[storex.MetaSynthetic] != "true" {
		t.Fatalf("placeholder metadata = %v, want synthetic tag", res.StoredReport.Metadata)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("completer called %d times, want 1 (no summary attempt)", len(fake.calls))
	}
}

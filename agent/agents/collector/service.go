package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/contract"
	llmx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/llm"
	storex "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/store"
)

// Service collects market data points through the completion service
// and persists each parsed point as one record.
type Service struct {
	completer contractx.Completer
	store     storex.Store
	params    llmx.ModelParams
	prompt    string
	now       func() time.Time
}

var _ contractx.DataCollector = (*Service)(nil)

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(completer contractx.Completer, st storex.Store, params llmx.ModelParams, systemPrompt string, opts ...Option) (*Service, error) {
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if st == nil {
		return nil, errors.New("record store is required")
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: collector system prompt", contractx.ErrPromptMissing)
	}

	s := &Service{
		completer: completer,
		store:     st,
		params:    params,
		prompt:    systemPrompt,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *Service) Collect(ctx context.Context, req contractx.DataCollectionRequest) (*contractx.CollectionResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	raw, err := s.completer.Complete(ctx, s.params.NewRequest(s.prompt, buildCollectionPrompt(req)))
	if err != nil {
		log.Warn().Err(err).Str("sector", req.Sector).Msg("collection completion failed, fabricating placeholder data")
		return s.placeholderResult(ctx, req, err), nil
	}

	points, err := parseDataPoints(raw)
	if err != nil {
		return nil, err
	}

	stored := make([]storex.MarketDataPoint, 0, len(points))
	for _, p := range points {
		name := strings.TrimSpace(p.Name)
		value := rawToString(p.Value)
		if name == "" || value == "" {
			continue
		}
		rec := storex.MarketDataPoint{
			Sector:        req.Sector,
			Country:       req.Country,
			DataPoint:     name,
			Value:         value,
			Source:        defaultString(strings.TrimSpace(p.Source), "LLM Response"),
			Date:          rawToString(p.Date),
			CustomKeyword: req.CustomKeyword,
		}
		if err := s.store.InsertMarketData(ctx, &rec); err != nil {
			log.Warn().Err(err).Str("data_point", name).Msg("skipping data point that failed to store")
			continue
		}
		stored = append(stored, rec)
	}

	log.Info().Str("sector", req.Sector).Int("collected", len(points)).Int("stored", len(stored)).Msg("data collection finished")
	return &contractx.CollectionResult{Query: req, Collected: stored}, nil
}

// placeholderResult fabricates two clearly marked data points so a
// multi-step workflow still has something to report on after a
// completion failure. The records carry metadata["synthetic"]="true".
func (s *Service) placeholderResult(ctx context.Context, req contractx.DataCollectionRequest, cause error) *contractx.CollectionResult {
	year := strconv.Itoa(s.now().Year())
	scope := req.Sector
	if req.Country != "" {
		scope += " in " + req.Country
	}

	points := []storex.MarketDataPoint{
		{
			Sector:        req.Sector,
			Country:       req.Country,
			DataPoint:     "market_size",
			Value:         fmt.Sprintf("€5.2 billion for %s", scope),
			Source:        "Synthetic Placeholder",
			Date:          year,
			CustomKeyword: req.CustomKeyword,
			Metadata:      map[string]any{storex.MetaSynthetic: "true"},
		},
		{
			Sector:        req.Sector,
			Country:       req.Country,
			DataPoint:     "growth_rate",
			Value:         "4.7% annual growth",
			Source:        "Synthetic Placeholder",
			Date:          year,
			CustomKeyword: req.CustomKeyword,
			Metadata:      map[string]any{storex.MetaSynthetic: "true"},
		},
	}

	stored := make([]storex.MarketDataPoint, 0, len(points))
	for i := range points {
		if err := s.store.InsertMarketData(ctx, &points[i]); err != nil {
			log.Warn().Err(err).Str("data_point", points[i].DataPoint).Msg("skipping placeholder point that failed to store")
			continue
		}
		stored = append(stored, points[i])
	}

	return &contractx.CollectionResult{
		Query:       req,
		Collected:   stored,
		Placeholder: &contractx.Placeholder{Reason: fmt.Sprintf("completion failed: %v", cause)},
	}
}

type dataPoint struct {
	Name   string          `json:"name"`
	Value  json.RawMessage `json:"value"`
	Source string          `json:"source"`
	Date   json.RawMessage `json:"date"`
}

func parseDataPoints(raw string) ([]dataPoint, error) {
	cleaned := llmx.StripFences(raw)
	if cleaned == "" {
		return nil, &contractx.MalformedOutputError{Detail: "completion response is empty", Raw: raw}
	}

	var points []dataPoint
	if err := json.Unmarshal([]byte(cleaned), &points); err != nil {
		return nil, &contractx.MalformedOutputError{Detail: "expected a JSON array of data points", Raw: raw}
	}
	return points, nil
}

// rawToString keeps string values as-is and serializes structured
// values (models like to emit key_players as an array) to compact JSON.
func rawToString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return string(trimmed)
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func buildCollectionPrompt(req contractx.DataCollectionRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Collect key market data points (e.g., market_size, growth_rate, key_players, market_trends) for the %s sector", req.Sector)
	if req.Country != "" {
		fmt.Fprintf(&b, " in %s", req.Country)
	}
	if req.FinancialProduct != "" {
		fmt.Fprintf(&b, ", focusing on %s products", req.FinancialProduct)
	}
	if req.CustomKeyword != "" {
		fmt.Fprintf(&b, ", specifically regarding %s", req.CustomKeyword)
	}
	b.WriteString(".\n\n")
	b.WriteString(`Your response MUST be ONLY a valid JSON list of objects. Each object should represent a data point and have the following keys: "name" (string, e.g., "market_size"), "value" (string), "source" (string, cite your source), and "date" (string, YYYY-MM-DD or year).

DO NOT include any introductory text, explanations, apologies, or markdown formatting like ` + "```json" + `. ONLY output the raw JSON list starting with [ and ending with ].

Example of the exact expected format:
[
  {
    "name": "market_size",
    "value": "€5.2 billion",
    "source": "Example Report 2024",
    "date": "2024"
  },
  {
    "name": "growth_rate",
    "value": "4.7% CAGR",
    "source": "Market Analysis Inc.",
    "date": "2024-01-15"
  }
]`)
	return b.String()
}

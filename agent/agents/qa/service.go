package qa

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/contract"
	llmx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/llm"
	storex "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/store"
)

// Service answers questions grounded on stored reports and market data.
// The completion only ever sees context assembled from the record store,
// so an empty store is a hard error rather than a hallucinated answer.
type Service struct {
	completer contractx.Completer
	store     storex.Store
	params    llmx.ModelParams
	prompt    string
}

var _ contractx.QAAgent = (*Service)(nil)

func New(completer contractx.Completer, st storex.Store, params llmx.ModelParams, systemPrompt string) (*Service, error) {
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if st == nil {
		return nil, errors.New("record store is required")
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: qa system prompt", contractx.ErrPromptMissing)
	}

	return &Service{completer: completer, store: st, params: params, prompt: systemPrompt}, nil
}

func (s *Service) Answer(ctx context.Context, req contractx.QARequest) (*contractx.AnswerResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	reports, err := s.store.Reports(ctx, storex.ReportFilter{
		Sector:           req.Sector,
		Country:          req.Country,
		FinancialProduct: req.FinancialProduct,
		CustomKeyword:    req.CustomKeyword,
	})
	if err != nil {
		return nil, err
	}
	marketData, err := s.store.MarketData(ctx, storex.MarketDataFilter{
		Sector:        req.Sector,
		Country:       req.Country,
		CustomKeyword: req.CustomKeyword,
	})
	if err != nil {
		return nil, err
	}

	if len(reports) == 0 && len(marketData) == 0 {
		msg := "no market data or reports found for the specified parameters"
		if req.CustomKeyword != "" {
			msg += fmt.Sprintf(" '%s'", req.CustomKeyword)
		}
		return nil, fmt.Errorf("%w: %s", contractx.ErrNoData, msg)
	}

	var contextBlock strings.Builder
	if md := formatMarketData(marketData); md != "" {
		fmt.Fprintf(&contextBlock, "# Market Data\n\n%s\n\n", md)
	}
	if rep := formatReports(reports); rep != "" {
		fmt.Fprintf(&contextBlock, "# Reports\n\n%s", rep)
	}

	user := fmt.Sprintf("Question: %s\n\nHere is the relevant market information:\n\n%s", req.Question, contextBlock.String())
	answer, err := s.completer.Complete(ctx, s.params.NewRequest(s.prompt, user))
	if err != nil {
		return nil, err
	}

	result := &contractx.AnswerResult{
		Query:          req,
		Answer:         answer,
		ReportsUsed:    make([]contractx.ReportRef, 0, len(reports)),
		MarketDataUsed: len(marketData),
	}
	reportIDs := make([]string, 0, len(reports))
	for _, r := range reports {
		result.ReportsUsed = append(result.ReportsUsed, contractx.ReportRef{ID: r.ID, Title: r.Title})
		reportIDs = append(reportIDs, r.ID)
	}
	dataIDs := make([]string, 0, len(marketData))
	for _, d := range marketData {
		dataIDs = append(dataIDs, d.ID)
	}

	rec := storex.QueryRecord{
		QueryText:     req.Question,
		Entities:      entities(req),
		Intent:        string(contractx.IntentQuestionAnswering),
		Response:      answer,
		AgentType:     string(contractx.AgentTypeQA),
		CustomKeyword: req.CustomKeyword,
		Metadata: map[string]any{
			"reports_used":     reportIDs,
			"market_data_used": dataIDs,
		},
	}
	if err := s.store.InsertQuery(ctx, &rec); err != nil {
		log.Warn().Err(err).Msg("skipping question audit record that failed to store")
	} else {
		result.StoredQuery = &rec
	}

	log.Info().Int("reports", len(reports)).Int("market_data", len(marketData)).Msg("question answered")
	return result, nil
}

func entities(req contractx.QARequest) map[string]string {
	out := make(map[string]string)
	for key, value := range map[string]string{
		"sector":            req.Sector,
		"country":           req.Country,
		"financial_product": req.FinancialProduct,
		"custom_keyword":    req.CustomKeyword,
		"report_id":         req.ReportID,
	} {
		if value != "" {
			out[key] = value
		}
	}
	return out
}

func formatReports(reports []storex.Report) string {
	if len(reports) == 0 {
		return ""
	}
	var b strings.Builder
	for i, r := range reports {
		fmt.Fprintf(&b, "## Report %d: %s\n\n", i+1, r.Title)
		if r.Summary != "" {
			fmt.Fprintf(&b, "### Summary\n%s\n\n", r.Summary)
		}
		fmt.Fprintf(&b, "### Content\n%s\n\n", r.Content)
		if i < len(reports)-1 {
			b.WriteString("---\n\n")
		}
	}
	return b.String()
}

type dataGroup struct {
	sector  string
	country string
	keyword string
	order   []string
	points  map[string]storex.MarketDataPoint
}

// formatMarketData groups points by sector and country. Within a group a
// later point with the same data point name replaces the earlier one.
func formatMarketData(points []storex.MarketDataPoint) string {
	if len(points) == 0 {
		return ""
	}

	groupOrder := make([]string, 0)
	groups := make(map[string]*dataGroup)
	for _, p := range points {
		key := p.Sector + "_" + p.Country
		g, ok := groups[key]
		if !ok {
			g = &dataGroup{
				sector:  p.Sector,
				country: p.Country,
				keyword: p.CustomKeyword,
				points:  make(map[string]storex.MarketDataPoint),
			}
			groups[key] = g
			groupOrder = append(groupOrder, key)
		}
		if _, seen := g.points[p.DataPoint]; !seen {
			g.order = append(g.order, p.DataPoint)
		}
		g.points[p.DataPoint] = p
	}

	var b strings.Builder
	for _, key := range groupOrder {
		g := groups[key]
		title := g.sector
		if g.country != "" {
			title += " in " + g.country
		}
		if g.keyword != "" {
			title += " - " + g.keyword
		}
		fmt.Fprintf(&b, "## %s\n\n", title)
		for _, name := range g.order {
			p := g.points[name]
			fmt.Fprintf(&b, "### %s\nValue: %s\nSource: %s\nDate: %s\n\n", titleWords(name), p.Value, p.Source, p.Date)
		}
		b.WriteString("---\n\n")
	}
	return b.String()
}

func titleWords(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		if len(runes) > 0 {
			runes[0] = unicode.ToUpper(runes[0])
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

package reporter

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

// Service synthesizes market reports from stored data points. Report
// content and the executive summary are two separate completions so the
// summary can run on a cheaper model.
type Service struct {
	completer     contractx.Completer
	store         storex.Store
	reportParams  llmx.ModelParams
	summaryParams llmx.ModelParams
	reportPrompt  string
	summaryPrompt string
}

var _ contractx.ReportGenerator = (*Service)(nil)

func New(completer contractx.Completer, st storex.Store, reportParams, summaryParams llmx.ModelParams, reportPrompt, summaryPrompt string) (*Service, error) {
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if st == nil {
		return nil, errors.New("record store is required")
	}
	if strings.TrimSpace(reportPrompt) == "" {
		return nil, fmt.Errorf("%w: reporter system prompt", contractx.ErrPromptMissing)
	}
	if strings.TrimSpace(summaryPrompt) == "" {
		return nil, fmt.Errorf("%w: summarizer system prompt", contractx.ErrPromptMissing)
	}

	return &Service{
		completer:     completer,
		store:         st,
		reportParams:  reportParams,
		summaryParams: summaryParams,
		reportPrompt:  reportPrompt,
		summaryPrompt: summaryPrompt,
	}, nil
}

func (s *Service) Generate(ctx context.Context, req contractx.ReportRequest) (*contractx.ReportResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	filter := storex.MarketDataFilter{
		Sector:        req.Sector,
		Country:       req.Country,
		CustomKeyword: req.CustomKeyword,
	}
	marketData, err := s.store.MarketData(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(marketData) == 0 && req.CustomKeyword != "" {
		log.Debug().Str("custom_keyword", req.CustomKeyword).Msg("no data for keyword, widening search without it")
		filter.CustomKeyword = ""
		marketData, err = s.store.MarketData(ctx, filter)
		if err != nil {
			return nil, err
		}
	}
	if len(marketData) == 0 {
		return nil, fmt.Errorf("%w: no market data found for the specified parameters, even after fallback", contractx.ErrNoData)
	}

	title := buildReportTitle(req)
	userPrompt := buildReportQuery(req) + "\n\nHere is the market data to use:\n\n" + formatMarketData(marketData)

	content, err := s.completer.Complete(ctx, s.reportParams.NewRequest(s.reportPrompt, userPrompt))
	if err != nil {
		log.Warn().Err(err).Str("sector", req.Sector).Msg("report completion failed, fabricating placeholder report")
		return s.placeholderResult(ctx, req, title, len(marketData), err), nil
	}

	summary, err := s.completer.Complete(ctx, s.summaryParams.NewRequest(s.summaryPrompt, content))
	if err != nil {
		log.Warn().Err(err).Msg("summary completion failed")
		summary = "Error generating summary."
	}

	rec := storex.Report{
		Title:            title,
		Sector:           req.Sector,
		Country:          req.Country,
		FinancialProduct: req.FinancialProduct,
		Content:          content,
		Summary:          summary,
		CustomKeyword:    req.CustomKeyword,
		Metadata:         map[string]any{"data_points": len(marketData)},
	}
	if err := s.store.InsertReport(ctx, &rec); err != nil {
		return nil, err
	}

	log.Info().Str("title", title).Int("data_points", len(marketData)).Msg("report generated")
	return &contractx.ReportResult{
		Query:        req,
		Report:       contractx.ReportPayload{Title: title, Content: content, Summary: summary},
		StoredReport: &rec,
	}, nil
}

// placeholderResult fabricates a clearly marked report so a multi-step
// workflow still has a report to answer questions against after a
// completion failure.
func (s *Service) placeholderResult(ctx context.Context, req contractx.ReportRequest, title string, dataPoints int, cause error) *contractx.ReportResult {
	scope := req.Sector
	if req.Country != "" {
		scope += " in " + req.Country
	}
	content := fmt.Sprintf("Synthetic placeholder report for the %s market. Report generation failed, so this document contains no real analysis. The stored market data for this query remains available for a later retry.", scope)
	summary := "Synthetic placeholder summary; report generation failed."

	rec := storex.Report{
		Title:            title,
		Sector:           req.Sector,
		Country:          req.Country,
		FinancialProduct: req.FinancialProduct,
		Content:          content,
		Summary:          summary,
		CustomKeyword:    req.CustomKeyword,
		Metadata: map[string]any{
			"data_points":        dataPoints,
			storex.MetaSynthetic: "true",
		},
	}
	result := &contractx.ReportResult{
		Query:       req,
		Report:      contractx.ReportPayload{Title: title, Content: content, Summary: summary},
		Placeholder: &contractx.Placeholder{Reason: fmt.Sprintf("completion failed: %v", cause)},
	}
	if err := s.store.InsertReport(ctx, &rec); err != nil {
		log.Warn().Err(err).Msg("skipping placeholder report that failed to store")
		return result
	}
	result.StoredReport = &rec
	return result
}

func buildReportTitle(req contractx.ReportRequest) string {
	title := fmt.Sprintf("Market Report: %s Sector", req.Sector)
	if req.Country != "" {
		title += fmt.Sprintf(" in %s", req.Country)
	}
	if req.FinancialProduct != "" {
		title += fmt.Sprintf(" - %s Products", req.FinancialProduct)
	}
	if req.CustomKeyword != "" {
		title += fmt.Sprintf(" (%s)", req.CustomKeyword)
	}
	return title
}

func buildReportQuery(req contractx.ReportRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a comprehensive market report for the %s sector", req.Sector)
	if req.Country != "" {
		fmt.Fprintf(&b, " in %s", req.Country)
	}
	if req.FinancialProduct != "" {
		fmt.Fprintf(&b, ", focusing on %s products", req.FinancialProduct)
	}
	if req.CustomKeyword != "" {
		fmt.Fprintf(&b, ", with specific emphasis on %s", req.CustomKeyword)
	}
	return b.String()
}

// formatMarketData groups points by data point name, first-seen order,
// and renders them as the markdown block the report prompt consumes.
func formatMarketData(points []storex.MarketDataPoint) string {
	order := make([]string, 0)
	grouped := make(map[string][]storex.MarketDataPoint)
	for _, p := range points {
		if _, ok := grouped[p.DataPoint]; !ok {
			order = append(order, p.DataPoint)
		}
		grouped[p.DataPoint] = append(grouped[p.DataPoint], p)
	}

	var b strings.Builder
	for _, name := range order {
		fmt.Fprintf(&b, "## %s\n\n", titleWords(name))
		for _, p := range grouped[name] {
			fmt.Fprintf(&b, "- Value: %s\n  Source: %s\n  Date: %s\n\n", p.Value, p.Source, p.Date)
		}
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

package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Seed loads a small demonstration dataset so the query surfaces have
// something to show on a fresh install. It is a no-op as soon as any
// records exist.
func Seed(ctx context.Context, rs *RecordStore) error {
	marketData, err := rs.MarketData(ctx, MarketDataFilter{Limit: 1})
	if err != nil {
		return fmt.Errorf("probe market data: %w", err)
	}
	reports, err := rs.Reports(ctx, ReportFilter{Limit: 1})
	if err != nil {
		return fmt.Errorf("probe reports: %w", err)
	}
	queries, err := rs.Queries(ctx, QueryFilter{Limit: 1})
	if err != nil {
		return fmt.Errorf("probe queries: %w", err)
	}
	if len(marketData) > 0 || len(reports) > 0 || len(queries) > 0 {
		log.Debug().Msg("records already present, skipping sample data")
		return nil
	}

	year := rs.now().Year()

	marketDataSamples := []MarketDataPoint{
		{
			Sector:    "Healthcare",
			Country:   "France",
			DataPoint: "market_size",
			Value:     "€45 billion",
			Source:    "French Healthcare Association",
			Metadata:  map[string]any{MetaCustomKeyword: "medical equipment"},
		},
		{
			Sector:    "Technology",
			Country:   "Germany",
			DataPoint: "growth_rate",
			Value:     "8.5% annually",
			Source:    fmt.Sprintf("German Tech Report %d", year),
			Metadata:  map[string]any{MetaCustomKeyword: "software"},
		},
		{
			Sector:    "Transportation",
			Country:   "UK",
			DataPoint: "key_players",
			Value:     "British Airways, EasyJet, Virgin Atlantic",
			Source:    "UK Aviation Authority",
			Metadata:  map[string]any{MetaCustomKeyword: "airlines"},
		},
		{
			Sector:    "Industrial Equipment",
			Country:   "US",
			DataPoint: "market_trends",
			Value:     "Increasing automation and IoT integration",
			Source:    "US Manufacturing Report",
			Metadata:  map[string]any{MetaCustomKeyword: "automation"},
		},
		{
			Sector:    "Energy",
			Country:   "France",
			DataPoint: "regulatory_factors",
			Value:     fmt.Sprintf("New carbon tax implementation in %d", year),
			Source:    "French Energy Ministry",
			Metadata:  map[string]any{MetaCustomKeyword: "renewable"},
		},
	}
	for i := range marketDataSamples {
		if err := rs.InsertMarketData(ctx, &marketDataSamples[i]); err != nil {
			return fmt.Errorf("seed market data: %w", err)
		}
	}

	reportSamples := []Report{
		{
			Title:            "Healthcare Equipment Market Analysis",
			Sector:           "Healthcare",
			Country:          "France",
			FinancialProduct: "Leasing",
			Content:          "The French healthcare equipment market has shown significant growth in the past year, with hospitals investing in new diagnostic equipment. Leasing options are becoming more popular due to budget constraints and the rapid pace of technological advancement.",
			Summary:          "Growth in French healthcare equipment leasing market driven by technological advancements.",
			Metadata:         map[string]any{MetaCustomKeyword: "medical equipment"},
		},
		{
			Title:            "Software Industry Financing Trends",
			Sector:           "Technology",
			Country:          "Germany",
			FinancialProduct: "Loan",
			Content:          "German software companies are increasingly turning to specialized loans to fund their expansion. The market is growing at 8.5% annually, with particular strength in enterprise software and cybersecurity solutions.",
			Summary:          "German software companies prefer specialized loans for expansion financing.",
			Metadata:         map[string]any{MetaCustomKeyword: "software"},
		},
		{
			Title:            "UK Airline Fleet Renewal Strategies",
			Sector:           "Transportation",
			Country:          "UK",
			FinancialProduct: "SALB (Sale and Lease Back)",
			Content:          "UK airlines are utilizing Sale and Lease Back arrangements to optimize their balance sheets while upgrading their fleets. This strategy has become particularly important in the post-pandemic recovery phase.",
			Summary:          "UK airlines leverage SALB arrangements for fleet modernization and balance sheet optimization.",
			Metadata:         map[string]any{MetaCustomKeyword: "airlines"},
		},
	}
	for i := range reportSamples {
		if err := rs.InsertReport(ctx, &reportSamples[i]); err != nil {
			return fmt.Errorf("seed reports: %w", err)
		}
	}

	querySamples := []QueryRecord{
		{
			QueryText: "What is the market size for medical equipment in France?",
			Entities:  map[string]string{},
			Intent:    "data_collection",
			Response:  "The market size for medical equipment in France is approximately €45 billion according to the French Healthcare Association.",
			AgentType: "data_collection",
			Metadata:  map[string]any{MetaCustomKeyword: "medical equipment"},
		},
		{
			QueryText: "Generate a report on software financing options in Germany",
			Entities:  map[string]string{},
			Intent:    "report_generation",
			Response:  "Report generated on software financing options in Germany. The market is growing at 8.5% annually with specialized loans being the preferred financing method.",
			AgentType: "report_generation",
			Metadata:  map[string]any{MetaCustomKeyword: "software"},
		},
		{
			QueryText: "Create a workflow for analyzing airline leasing opportunities in the UK",
			Entities:  map[string]string{},
			Intent:    "workflow_builder",
			Response:  "Workflow created for analyzing airline leasing opportunities in the UK, focusing on SALB arrangements which are popular for fleet modernization.",
			AgentType: "workflow_builder",
			Metadata:  map[string]any{MetaCustomKeyword: "airlines"},
		},
	}
	for i := range querySamples {
		if err := rs.InsertQuery(ctx, &querySamples[i]); err != nil {
			return fmt.Errorf("seed queries: %w", err)
		}
	}

	log.Info().
		Int("market_data", len(marketDataSamples)).
		Int("reports", len(reportSamples)).
		Int("queries", len(querySamples)).
		Msg("sample data populated")
	return nil
}

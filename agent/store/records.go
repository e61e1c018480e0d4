package store

import (
	"maps"
	"time"

	"github.com/uptrace/bun"
)

// MarketDataPoint is one named observation about a sector. The date is
// always ISO-8601 once stored; the value stays a string and may hold
// serialized structured data such as a key-player list.
type MarketDataPoint struct {
	bun.BaseModel `bun:"table:market_data,alias:md"`

	ID            string         `bun:"id,pk" json:"id"`
	Sector        string         `bun:"sector,notnull" json:"sector"`
	Country       string         `bun:"country" json:"country,omitempty"`
	DataPoint     string         `bun:"data_point" json:"data_point"`
	Value         string         `bun:"value" json:"value"`
	Source        string         `bun:"source" json:"source"`
	Date          string         `bun:"date" json:"date"`
	CustomKeyword string         `bun:"custom_keyword" json:"custom_keyword,omitempty"`
	Metadata      map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time      `bun:"created_at,notnull" json:"created_at"`
}

type Report struct {
	bun.BaseModel `bun:"table:reports,alias:r"`

	ID               string         `bun:"id,pk" json:"id"`
	Title            string         `bun:"title" json:"title"`
	Sector           string         `bun:"sector,notnull" json:"sector"`
	Country          string         `bun:"country" json:"country,omitempty"`
	FinancialProduct string         `bun:"financial_product" json:"financial_product"`
	Content          string         `bun:"content" json:"content"`
	Summary          string         `bun:"summary" json:"summary"`
	CustomKeyword    string         `bun:"custom_keyword" json:"custom_keyword,omitempty"`
	Metadata         map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	CreatedAt        time.Time      `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt        time.Time      `bun:"updated_at,notnull" json:"updated_at"`
}

// QueryRecord is the audit trail of orchestrator and agent invocations.
// It is write-once; nothing reads it back except reporting surfaces.
type QueryRecord struct {
	bun.BaseModel `bun:"table:queries,alias:q"`

	ID            string            `bun:"id,pk" json:"id"`
	QueryText     string            `bun:"query_text" json:"query_text"`
	Entities      map[string]string `bun:"entities,type:jsonb" json:"entities,omitempty"`
	Intent        string            `bun:"intent" json:"intent"`
	Response      string            `bun:"response" json:"response,omitempty"`
	AgentType     string            `bun:"agent_type" json:"agent_type,omitempty"`
	CustomKeyword string            `bun:"custom_keyword" json:"custom_keyword,omitempty"`
	Metadata      map[string]any    `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time         `bun:"created_at,notnull" json:"created_at"`
}

type MarketDataFilter struct {
	ID            string
	Sector        string
	Country       string
	DataPoint     string
	CustomKeyword string
	Limit         int
}

type ReportFilter struct {
	ID               string
	Sector           string
	Country          string
	FinancialProduct string
	CustomKeyword    string
	Limit            int
}

type QueryFilter struct {
	ID            string
	Intent        string
	AgentType     string
	CustomKeyword string
	Limit         int
}

func (r MarketDataPoint) clone() MarketDataPoint {
	r.Metadata = maps.Clone(r.Metadata)
	return r
}

func (r Report) clone() Report {
	r.Metadata = maps.Clone(r.Metadata)
	return r
}

func (r QueryRecord) clone() QueryRecord {
	r.Entities = maps.Clone(r.Entities)
	r.Metadata = maps.Clone(r.Metadata)
	return r
}

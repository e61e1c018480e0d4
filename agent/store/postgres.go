package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// PostgresStore persists records in Postgres through bun.
type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(dsn string) *PostgresStore {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return &PostgresStore{db: bun.NewDB(sqldb, pgdialect.New())}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureSchema creates the record tables when they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	models := []any{
		(*MarketDataPoint)(nil),
		(*Report)(nil),
		(*QueryRecord)(nil),
	}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) InsertMarketData(ctx context.Context, rec *MarketDataPoint) error {
	_, err := s.db.NewInsert().Model(rec).On("CONFLICT (id) DO NOTHING").Exec(ctx)
	return err
}

func (s *PostgresStore) MarketData(ctx context.Context, f MarketDataFilter) ([]MarketDataPoint, error) {
	recs := make([]MarketDataPoint, 0)
	q := s.db.NewSelect().Model(&recs)
	if f.ID != "" {
		q = q.Where("id = ?", f.ID)
	}
	if f.Sector != "" {
		q = q.Where("sector = ?", f.Sector)
	}
	if f.Country != "" {
		q = q.Where("country = ?", f.Country)
	}
	if f.DataPoint != "" {
		q = q.Where("data_point = ?", f.DataPoint)
	}
	if f.CustomKeyword != "" {
		q = q.Where("custom_keyword ILIKE ?", "%"+f.CustomKeyword+"%")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *PostgresStore) InsertReport(ctx context.Context, rec *Report) error {
	_, err := s.db.NewInsert().Model(rec).On("CONFLICT (id) DO NOTHING").Exec(ctx)
	return err
}

func (s *PostgresStore) Reports(ctx context.Context, f ReportFilter) ([]Report, error) {
	recs := make([]Report, 0)
	q := s.db.NewSelect().Model(&recs)
	if f.ID != "" {
		q = q.Where("id = ?", f.ID)
	}
	if f.Sector != "" {
		q = q.Where("sector = ?", f.Sector)
	}
	if f.Country != "" {
		q = q.Where("country = ?", f.Country)
	}
	if f.FinancialProduct != "" {
		q = q.Where("financial_product = ?", f.FinancialProduct)
	}
	if f.CustomKeyword != "" {
		q = q.Where("custom_keyword ILIKE ?", "%"+f.CustomKeyword+"%")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *PostgresStore) InsertQuery(ctx context.Context, rec *QueryRecord) error {
	_, err := s.db.NewInsert().Model(rec).On("CONFLICT (id) DO NOTHING").Exec(ctx)
	return err
}

func (s *PostgresStore) Queries(ctx context.Context, f QueryFilter) ([]QueryRecord, error) {
	recs := make([]QueryRecord, 0)
	q := s.db.NewSelect().Model(&recs)
	if f.ID != "" {
		q = q.Where("id = ?", f.ID)
	}
	if f.Intent != "" {
		q = q.Where("intent = ?", f.Intent)
	}
	if f.AgentType != "" {
		q = q.Where("agent_type = ?", f.AgentType)
	}
	if f.CustomKeyword != "" {
		q = q.Where("custom_keyword ILIKE ?", "%"+f.CustomKeyword+"%")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return recs, nil
}

package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrSectorRequired = errors.New("sector is required")
	ErrNilRecord      = errors.New("record is nil")
)

const (
	defaultQueryLimit  = 100
	defaultPingTimeout = 5 * time.Second

	backendPostgres = "postgres"
	backendMemory   = "memory"

	// MetaCustomKeyword mirrors the custom_keyword column inside the
	// metadata bag so either side can be queried.
	MetaCustomKeyword = "custom_keyword"
	// MetaSynthetic marks records fabricated as placeholders when a
	// model call failed.
	MetaSynthetic = "synthetic"
)

// Store is the persistence contract shared by the backends and the
// RecordStore that fronts them.
type Store interface {
	InsertMarketData(ctx context.Context, rec *MarketDataPoint) error
	MarketData(ctx context.Context, f MarketDataFilter) ([]MarketDataPoint, error)
	InsertReport(ctx context.Context, rec *Report) error
	Reports(ctx context.Context, f ReportFilter) ([]Report, error)
	InsertQuery(ctx context.Context, rec *QueryRecord) error
	Queries(ctx context.Context, f QueryFilter) ([]QueryRecord, error)
}

type Config struct {
	DSN         string        `envconfig:"DSN" split_words:"true"`
	QueryLimit  int           `envconfig:"QUERY_LIMIT" split_words:"true" default:"100"`
	PingTimeout time.Duration `envconfig:"PING_TIMEOUT" split_words:"true" default:"5s"`
}

// Option customizes a RecordStore.
type Option func(*RecordStore)

func WithClock(now func() time.Time) Option {
	return func(s *RecordStore) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(s *RecordStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithBackend pins the authoritative backend instead of probing the
// configured DSN.
func WithBackend(name string, backend Store) Option {
	return func(s *RecordStore) {
		if backend != nil {
			s.backend = backend
			s.backendName = name
		}
	}
}

// RecordStore fronts the authoritative backend picked at startup. It
// stamps ids, timestamps and normalized dates onto inserts, and when
// the backend rejects a write it buffers the record in memory so the
// caller never sees the failure. Reads merge buffered records back in,
// deduplicated by id with the backend winning.
type RecordStore struct {
	backend     Store
	backendName string
	buffer      *MemoryStore
	limit       int
	now         func() time.Time
	newID       func() string
}

func New(ctx context.Context, cfg Config, opts ...Option) *RecordStore {
	s := &RecordStore{
		buffer: NewMemoryStore(),
		limit:  cfg.QueryLimit,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	if s.limit <= 0 {
		s.limit = defaultQueryLimit
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.backend == nil {
		s.backend, s.backendName = selectBackend(ctx, cfg)
	}
	return s
}

func selectBackend(ctx context.Context, cfg Config) (Store, string) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		log.Info().Msg("no database configured, using in-memory store")
		return NewMemoryStore(), backendMemory
	}

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pg := NewPostgresStore(dsn)
	if err := pg.Ping(probeCtx); err != nil {
		log.Warn().Err(err).Msg("database unreachable, using in-memory store")
		return NewMemoryStore(), backendMemory
	}
	if err := pg.EnsureSchema(probeCtx); err != nil {
		log.Warn().Err(err).Msg("schema setup failed, using in-memory store")
		return NewMemoryStore(), backendMemory
	}
	log.Info().Str("backend", backendPostgres).Msg("record store ready")
	return pg, backendPostgres
}

// Backend reports which backend won the startup probe.
func (s *RecordStore) Backend() string {
	return s.backendName
}

func (s *RecordStore) InsertMarketData(ctx context.Context, rec *MarketDataPoint) error {
	if rec == nil {
		return ErrNilRecord
	}
	if strings.TrimSpace(rec.Sector) == "" {
		return ErrSectorRequired
	}
	s.stampMarketData(rec)
	if err := s.backend.InsertMarketData(ctx, rec); err != nil {
		log.Warn().Err(err).Str("table", "market_data").Str("backend", s.backendName).Msg("write failed, buffering record in memory")
		return s.buffer.InsertMarketData(ctx, rec)
	}
	log.Debug().Str("table", "market_data").Str("backend", s.backendName).Str("id", rec.ID).Msg("record stored")
	return nil
}

func (s *RecordStore) MarketData(ctx context.Context, f MarketDataFilter) ([]MarketDataPoint, error) {
	if f.Limit <= 0 {
		f.Limit = s.limit
	}
	primary, err := s.backend.MarketData(ctx, f)
	if err != nil {
		log.Warn().Err(err).Str("table", "market_data").Str("backend", s.backendName).Msg("read failed, serving buffered records")
		primary = nil
	}
	buffered, _ := s.buffer.MarketData(ctx, f)
	merged := mergeByID(primary, buffered, func(r MarketDataPoint) string { return r.ID }, f.Limit)
	log.Debug().Str("table", "market_data").Str("backend", s.backendName).Int("count", len(merged)).Msg("records read")
	return merged, nil
}

func (s *RecordStore) InsertReport(ctx context.Context, rec *Report) error {
	if rec == nil {
		return ErrNilRecord
	}
	if strings.TrimSpace(rec.Sector) == "" {
		return ErrSectorRequired
	}
	s.stampReport(rec)
	if err := s.backend.InsertReport(ctx, rec); err != nil {
		log.Warn().Err(err).Str("table", "reports").Str("backend", s.backendName).Msg("write failed, buffering record in memory")
		return s.buffer.InsertReport(ctx, rec)
	}
	log.Debug().Str("table", "reports").Str("backend", s.backendName).Str("id", rec.ID).Msg("record stored")
	return nil
}

func (s *RecordStore) Reports(ctx context.Context, f ReportFilter) ([]Report, error) {
	if f.Limit <= 0 {
		f.Limit = s.limit
	}
	primary, err := s.backend.Reports(ctx, f)
	if err != nil {
		log.Warn().Err(err).Str("table", "reports").Str("backend", s.backendName).Msg("read failed, serving buffered records")
		primary = nil
	}
	buffered, _ := s.buffer.Reports(ctx, f)
	merged := mergeByID(primary, buffered, func(r Report) string { return r.ID }, f.Limit)
	log.Debug().Str("table", "reports").Str("backend", s.backendName).Int("count", len(merged)).Msg("records read")
	return merged, nil
}

func (s *RecordStore) InsertQuery(ctx context.Context, rec *QueryRecord) error {
	if rec == nil {
		return ErrNilRecord
	}
	s.stampQuery(rec)
	if err := s.backend.InsertQuery(ctx, rec); err != nil {
		log.Warn().Err(err).Str("table", "queries").Str("backend", s.backendName).Msg("write failed, buffering record in memory")
		return s.buffer.InsertQuery(ctx, rec)
	}
	log.Debug().Str("table", "queries").Str("backend", s.backendName).Str("id", rec.ID).Msg("record stored")
	return nil
}

func (s *RecordStore) Queries(ctx context.Context, f QueryFilter) ([]QueryRecord, error) {
	if f.Limit <= 0 {
		f.Limit = s.limit
	}
	primary, err := s.backend.Queries(ctx, f)
	if err != nil {
		log.Warn().Err(err).Str("table", "queries").Str("backend", s.backendName).Msg("read failed, serving buffered records")
		primary = nil
	}
	buffered, _ := s.buffer.Queries(ctx, f)
	merged := mergeByID(primary, buffered, func(r QueryRecord) string { return r.ID }, f.Limit)
	log.Debug().Str("table", "queries").Str("backend", s.backendName).Int("count", len(merged)).Msg("records read")
	return merged, nil
}

func (s *RecordStore) stampMarketData(rec *MarketDataPoint) {
	if rec.ID == "" {
		rec.ID = s.newID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	rec.Date = NormalizeDate(rec.Date, s.now)
	rec.CustomKeyword, rec.Metadata = mirrorKeyword(rec.CustomKeyword, rec.Metadata, nil)
}

func (s *RecordStore) stampReport(rec *Report) {
	if rec.ID == "" {
		rec.ID = s.newID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}
	if strings.TrimSpace(rec.FinancialProduct) == "" {
		rec.FinancialProduct = "General"
	}
	rec.CustomKeyword, rec.Metadata = mirrorKeyword(rec.CustomKeyword, rec.Metadata, nil)
}

func (s *RecordStore) stampQuery(rec *QueryRecord) {
	if rec.ID == "" {
		rec.ID = s.newID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	rec.CustomKeyword, rec.Metadata = mirrorKeyword(rec.CustomKeyword, rec.Metadata, rec.Entities)
}

// mirrorKeyword keeps the custom_keyword column and the metadata bag in
// agreement, preferring the column, then metadata, then entities.
func mirrorKeyword(kw string, meta map[string]any, entities map[string]string) (string, map[string]any) {
	kw = strings.TrimSpace(kw)
	if kw == "" {
		if v, ok := meta[MetaCustomKeyword].(string); ok {
			kw = strings.TrimSpace(v)
		}
	}
	if kw == "" && entities != nil {
		kw = strings.TrimSpace(entities[MetaCustomKeyword])
	}
	if kw == "" {
		return "", meta
	}
	if meta == nil {
		meta = map[string]any{}
	}
	meta[MetaCustomKeyword] = kw
	return kw, meta
}

func mergeByID[T any](primary, buffered []T, id func(T) string, limit int) []T {
	merged := make([]T, 0, len(primary)+len(buffered))
	seen := make(map[string]struct{}, len(primary))
	for _, rec := range primary {
		seen[id(rec)] = struct{}{}
		merged = append(merged, rec)
	}
	for _, rec := range buffered {
		if _, dup := seen[id(rec)]; dup {
			continue
		}
		merged = append(merged, rec)
	}
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

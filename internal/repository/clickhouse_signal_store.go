package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"AlgoReport/internal/domain/models"
	domrepo "AlgoReport/internal/domain/repository"
	pkgch "AlgoReport/pkg/clickhouse"
	applogger "AlgoReport/pkg/logger"
)

const signalColumns = `run_id, symbol, source, traffic, bar_time, close, ema20, ema50, rsi14, atr14,
        p, r1, r2, s1, s2, entry, exit, stop, conclusion, error, created_at`

// CHSignalStore implements SignalStore backed by ClickHouse.
type CHSignalStore struct {
	ch       *pkgch.Client
	db       *sql.DB
	database string
	table    string
	l        *applogger.Logger
}

var _ domrepo.SignalStore = (*CHSignalStore)(nil)

func NewCHSignalStore(ch *pkgch.Client, database string) *CHSignalStore {
	return &CHSignalStore{ch: ch, db: ch.DB(), database: database, table: database + ".signal_history", l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (s *CHSignalStore) SetLogger(l *applogger.Logger) { s.l = l }

// SchemaStatements returns the idempotent DDL for the history table.
func SchemaStatements(database string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.signal_history (
            run_id     String,
            symbol     LowCardinality(String),
            source     LowCardinality(String),
            traffic    LowCardinality(String),
            bar_time   Nullable(DateTime64(3, 'UTC')),
            close      Nullable(Float64),
            ema20      Nullable(Float64),
            ema50      Nullable(Float64),
            rsi14      Nullable(Float64),
            atr14      Nullable(Float64),
            p          Nullable(Float64),
            r1         Nullable(Float64),
            r2         Nullable(Float64),
            s1         Nullable(Float64),
            s2         Nullable(Float64),
            entry      Nullable(Float64),
            exit       Nullable(Float64),
            stop       Nullable(Float64),
            conclusion String,
            error      String,
            created_at DateTime64(3, 'UTC')
        ) ENGINE = MergeTree
        ORDER BY (symbol, created_at)`, database),
	}
}

func (s *CHSignalStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, SchemaStatements(s.database))
}

// StoreBatch inserts all records in one block.
func (s *CHSignalStore) StoreBatch(ctx context.Context, recs []models.SignalRecord) error {
	if len(recs) == 0 {
		return nil
	}
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s)", s.table, signalColumns))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, recordArgs(r)...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append %s: %w", r.Symbol, err)
		}
	}
	if err := tx.Commit(); err != nil {
		s.l.Error("clickhouse store_signals commit error", applogger.Int("rows", len(recs)), applogger.Error(err))
		return fmt.Errorf("commit batch: %w", err)
	}

	s.l.Info("clickhouse store_signals ok",
		applogger.String("table", s.table),
		applogger.Int("rows", len(recs)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

// Query returns the newest records, optionally for one symbol.
func (s *CHSignalStore) Query(ctx context.Context, symbol string, limit int) ([]models.SignalRecord, error) {
	q := fmt.Sprintf(`
        SELECT %s
        FROM %s
        WHERE (? = '' OR symbol = ?)
        ORDER BY created_at DESC
        LIMIT ?
    `, signalColumns, s.table)

	rows, err := s.db.QueryContext(ctx, q, symbol, symbol, limit)
	if err != nil {
		s.l.Error("clickhouse query_signals error", applogger.String("symbol", symbol), applogger.Error(err))
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	out := make([]models.SignalRecord, 0, limit)
	for rows.Next() {
		var (
			r       models.SignalRecord
			barTime *time.Time
		)
		if err := rows.Scan(&r.RunID, &r.Symbol, &r.Source, &r.Traffic, &barTime,
			&r.Close, &r.EMA20, &r.EMA50, &r.RSI14, &r.ATR14,
			&r.P, &r.R1, &r.R2, &r.S1, &r.S2,
			&r.Entry, &r.Exit, &r.Stop, &r.Conclusion, &r.Error, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		if barTime != nil {
			r.BarTime = barTime.UTC()
		}
		r.CreatedAt = r.CreatedAt.UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHSignalStore) Health(ctx context.Context) error { return s.ch.Health(ctx) }

func (s *CHSignalStore) Close() error { return s.ch.Close() }

// recordArgs lists insert arguments in signalColumns order; a zero bar time is stored as NULL.
func recordArgs(r models.SignalRecord) []interface{} {
	var barTime *time.Time
	if !r.BarTime.IsZero() {
		t := r.BarTime.UTC()
		barTime = &t
	}
	return []interface{}{
		r.RunID, r.Symbol, r.Source, r.Traffic, barTime,
		r.Close, r.EMA20, r.EMA50, r.RSI14, r.ATR14,
		r.P, r.R1, r.R2, r.S1, r.S2,
		r.Entry, r.Exit, r.Stop, r.Conclusion, r.Error, r.CreatedAt.UTC(),
	}
}

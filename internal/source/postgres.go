package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is the secondary data store, queried only when the primary API is
// unreachable or returns no rows. Each view maps to one table mirroring the
// backend's schema.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgres connects to the fallback store and verifies connectivity.
func NewPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Postgres{pool: pool, logger: logger}, nil
}

// QueryView selects all rows for a view with its natural order and limit,
// serialized row-wise as JSON so every view table shares one scan path.
func (p *Postgres) QueryView(ctx context.Context, q FallbackQuery) ([]json.RawMessage, error) {
	// q comes from the fixed per-view query table, not from user input.
	sql := fmt.Sprintf(`SELECT row_to_json(t) FROM %s t`, q.Table)
	if q.OrderBy != "" {
		sql += fmt.Sprintf(` ORDER BY %s`, q.OrderBy)
		if q.Desc {
			sql += ` DESC`
		}
	}
	if q.Limit > 0 {
		sql += fmt.Sprintf(` LIMIT %d`, q.Limit)
	}

	rows, err := p.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("postgres: query %s: %w", q.Table, err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("postgres: scan %s row: %w", q.Table, err)
		}
		out = append(out, json.RawMessage(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: read %s rows: %w", q.Table, err)
	}

	return out, nil
}

// Health checks store connectivity.
func (p *Postgres) Health(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

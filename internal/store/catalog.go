package store

import (
	"context"
	"database/sql"
	"fmt"

	"townhall/api/internal/catalog"
)

// PostgresCatalog serves seed records from the catalog_polls and
// catalog_options tables. It never writes.
type PostgresCatalog struct {
	db *sql.DB
}

func NewPostgresCatalog(db *sql.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

func (c *PostgresCatalog) LoadSeedPolls(ctx context.Context) ([]catalog.RawRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, title, likes, dislikes, area_scope
		FROM catalog_polls
		ORDER BY position ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list catalog polls: %w", err)
	}
	defer rows.Close()

	records := make([]catalog.RawRecord, 0)
	index := make(map[string]int)
	for rows.Next() {
		var rec catalog.RawRecord
		var likes, dislikes sql.NullInt64
		if err := rows.Scan(&rec.ID, &rec.Title, &likes, &dislikes, &rec.AreaScope); err != nil {
			return nil, fmt.Errorf("scan catalog poll: %w", err)
		}
		rec.Likes = nullableInt(likes)
		rec.Dislikes = nullableInt(dislikes)
		index[rec.ID] = len(records)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog polls: %w", err)
	}

	if err := c.attachOptions(ctx, records, index); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *PostgresCatalog) attachOptions(ctx context.Context, records []catalog.RawRecord, index map[string]int) error {
	rows, err := c.db.QueryContext(ctx, `
		SELECT poll_id, id, label, votes
		FROM catalog_options
		ORDER BY poll_id ASC, position ASC, id ASC
	`)
	if err != nil {
		return fmt.Errorf("list catalog options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pollID string
		var opt catalog.RawOption
		var votes sql.NullInt64
		if err := rows.Scan(&pollID, &opt.ID, &opt.Label, &votes); err != nil {
			return fmt.Errorf("scan catalog option: %w", err)
		}
		opt.Votes = nullableInt(votes)
		i, ok := index[pollID]
		if !ok {
			continue
		}
		records[i].Options = append(records[i].Options, opt)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate catalog options: %w", err)
	}
	return nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

// Ping reports whether the catalog database is reachable.
func (c *PostgresCatalog) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

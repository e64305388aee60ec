package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink/internal/shortlink"
)

// PostgresRegistry is a PostgreSQL implementation of shortlink.Registry.
//
// Schema:
//
//	CREATE TABLE short_links (
//	    code        TEXT PRIMARY KEY,
//	    target_url  TEXT NOT NULL,
//	    owner_id    TEXT NOT NULL,
//	    created_at  TIMESTAMPTZ NOT NULL,
//	    click_count BIGINT NOT NULL DEFAULT 0
//	);
//	CREATE INDEX short_links_owner_idx ON short_links (owner_id, created_at DESC);
type PostgresRegistry struct {
	pool *pgxpool.Pool
}

// NewPostgresRegistry creates a PostgreSQL-backed registry.
func NewPostgresRegistry(pool *pgxpool.Pool) *PostgresRegistry {
	return &PostgresRegistry{pool: pool}
}

// Insert relies on the primary key for the insert-if-absent primitive:
// ON CONFLICT DO NOTHING plus the affected-row count tells winners from losers.
func (p *PostgresRegistry) Insert(ctx context.Context, link *shortlink.ShortLink) error {
	query := `
		INSERT INTO short_links (code, target_url, owner_id, created_at, click_count)
		VALUES ($1, $2, $3, $4, 0)
		ON CONFLICT (code) DO NOTHING
	`

	tag, err := p.pool.Exec(ctx, query,
		string(link.Code),
		link.TargetURL,
		string(link.OwnerID),
		link.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert short link: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return shortlink.ErrCodeExists
	}

	return nil
}

func (p *PostgresRegistry) GetByCode(ctx context.Context, code shortlink.Code) (*shortlink.ShortLink, error) {
	query := `
		SELECT code, target_url, owner_id, created_at, click_count
		FROM short_links
		WHERE code = $1
	`

	return p.scanOne(p.pool.QueryRow(ctx, query, string(code)))
}

func (p *PostgresRegistry) GetByOwnerAndTarget(
	ctx context.Context, owner shortlink.OwnerID, targetURL string,
) (*shortlink.ShortLink, error) {
	query := `
		SELECT code, target_url, owner_id, created_at, click_count
		FROM short_links
		WHERE owner_id = $1 AND target_url = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	return p.scanOne(p.pool.QueryRow(ctx, query, string(owner), targetURL))
}

func (p *PostgresRegistry) ListByOwner(ctx context.Context, owner shortlink.OwnerID) ([]*shortlink.ShortLink, error) {
	query := `
		SELECT code, target_url, owner_id, created_at, click_count
		FROM short_links
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := p.pool.Query(ctx, query, string(owner))
	if err != nil {
		return nil, fmt.Errorf("list short links: %w", err)
	}
	defer rows.Close()

	var links []*shortlink.ShortLink

	for rows.Next() {
		var link shortlink.ShortLink

		err = rows.Scan(&link.Code, &link.TargetURL, &link.OwnerID, &link.CreatedAt, &link.ClickCount)
		if err != nil {
			return nil, fmt.Errorf("scan short link: %w", err)
		}

		links = append(links, &link)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return links, nil
}

// IncrementClicks pushes the read-modify-write into the database so
// concurrent increments on one code serialize on the row, never losing one.
func (p *PostgresRegistry) IncrementClicks(ctx context.Context, code shortlink.Code) error {
	query := `
		UPDATE short_links
		SET click_count = click_count + 1
		WHERE code = $1
	`

	tag, err := p.pool.Exec(ctx, query, string(code))
	if err != nil {
		return fmt.Errorf("increment clicks: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return shortlink.ErrNotFound
	}

	return nil
}

func (p *PostgresRegistry) scanOne(row pgx.Row) (*shortlink.ShortLink, error) {
	var link shortlink.ShortLink

	err := row.Scan(&link.Code, &link.TargetURL, &link.OwnerID, &link.CreatedAt, &link.ClickCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortlink.ErrNotFound
		}

		return nil, err
	}

	return &link, nil
}

// Compile-time check.
var _ shortlink.Registry = (*PostgresRegistry)(nil)

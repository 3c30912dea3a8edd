package vector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/newsmesh/newsgraph/internal/models"
)

// PGIndex is the pgvector-backed semantic index. Articles and their
// embeddings live in a single table with an HNSW cosine index.
type PGIndex struct {
	pool   *pgxpool.Pool
	dim    int
	logger *slog.Logger
}

// NewPGIndex connects to Postgres, ensures the pgvector extension and the
// articles table exist, and returns the index. The embedding column is sized
// to dim at creation; a later dimension change needs a reindex.
func NewPGIndex(ctx context.Context, dsn string, dim int, logger *slog.Logger) (*PGIndex, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse vector dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect vector index: %w", err)
	}

	idx := &PGIndex{pool: pool, dim: dim, logger: logger}
	if err := idx.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("vector index ready", "dim", dim)
	return idx, nil
}

func (x *PGIndex) initSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS articles (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			source TEXT NOT NULL,
			url TEXT,
			published TIMESTAMPTZ NOT NULL,
			embedding vector(%d) NOT NULL
		)`, x.dim),
		`CREATE INDEX IF NOT EXISTS articles_embedding_idx
			ON articles USING hnsw (embedding vector_cosine_ops)`,
		`CREATE INDEX IF NOT EXISTS articles_published_idx
			ON articles (published DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := x.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init vector schema: %w", wrapPGError(err))
		}
	}
	return nil
}

// Close releases the connection pool.
func (x *PGIndex) Close() {
	x.pool.Close()
}

// Wipe drops all indexed articles. Used by tests and the reset command.
func (x *PGIndex) Wipe(ctx context.Context) error {
	if _, err := x.pool.Exec(ctx, `TRUNCATE articles`); err != nil {
		return fmt.Errorf("wipe vector index: %w", wrapPGError(err))
	}
	return nil
}

func (x *PGIndex) Dimension() int { return x.dim }

func (x *PGIndex) Upsert(ctx context.Context, a models.Article) error {
	if err := checkDimension(x.dim, a.Embedding); err != nil {
		return err
	}

	sql := `
		INSERT INTO articles (id, title, content, source, url, published, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			source = EXCLUDED.source,
			url = EXCLUDED.url,
			published = EXCLUDED.published,
			embedding = EXCLUDED.embedding
	`
	_, err := x.pool.Exec(ctx, sql,
		a.ID, a.Title, a.Content, a.Source, a.URL, a.PublishedAt.UTC(), pgvector.NewVector(a.Embedding))
	if err != nil {
		return fmt.Errorf("upsert article: %w", wrapPGError(err))
	}
	return nil
}

func (x *PGIndex) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := x.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM articles WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check article exists: %w", wrapPGError(err))
	}
	return exists, nil
}

func (x *PGIndex) Get(ctx context.Context, id string) (*models.Article, error) {
	sql := `SELECT id, title, content, source, url, published, embedding FROM articles WHERE id = $1`

	var a models.Article
	var emb pgvector.Vector
	err := x.pool.QueryRow(ctx, sql, id).Scan(
		&a.ID, &a.Title, &a.Content, &a.Source, &a.URL, &a.PublishedAt, &emb)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", wrapPGError(err))
	}
	a.Embedding = emb.Slice()
	return &a, nil
}

func (x *PGIndex) Search(ctx context.Context, embedding []float32, threshold float64, limit int) ([]Hit, error) {
	if err := checkDimension(x.dim, embedding); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", models.ErrInvalidArgument)
	}

	start := time.Now()
	sql := `
		SELECT id, title, content, source, url, published,
			1 - (embedding <=> $1) AS similarity
		FROM articles
		WHERE 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1, published DESC, id
		LIMIT $3
	`
	rows, err := x.pool.Query(ctx, sql, pgvector.NewVector(embedding), threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", wrapPGError(err))
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(
			&h.Article.ID, &h.Article.Title, &h.Article.Content,
			&h.Article.Source, &h.Article.URL, &h.Article.PublishedAt,
			&h.Similarity); err != nil {
			return nil, fmt.Errorf("scan similarity row: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("similarity search: %w", wrapPGError(err))
	}

	x.logger.Debug("vector search", "hits", len(hits), "threshold", threshold, "took", time.Since(start))
	return hits, nil
}

func (x *PGIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := x.pool.QueryRow(ctx, `SELECT count(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count articles: %w", wrapPGError(err))
	}
	return n, nil
}

var _ Index = (*PGIndex)(nil)

// wrapPGError maps driver failures onto the engine's error taxonomy.
func wrapPGError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", models.ErrTimeout, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08: connection exceptions.
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" {
			return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
		}
	}
	return err
}

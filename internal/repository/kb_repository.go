package repository

import (
	"context"

	"keasy-ai/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var chunkColumns = []string{"id", "doc_id", "chunk_title", "content", "tags", "updated_at", "source_url"}

type KbRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewKbRepository(db *pgxpool.Pool, logger *zap.Logger) *KbRepository {
	return &KbRepository{
		db:     db,
		logger: logger,
	}
}

// Insert stores one chunk. Used by the seeding tool only; the answer
// pipeline never writes.
func (r *KbRepository) Insert(ctx context.Context, c *models.KbChunk) error {
	q := squirrel.Insert("kb_chunks").
		Columns(chunkColumns...).
		Values(c.ID, c.DocID, c.ChunkTitle, c.Content, c.Tags, c.UpdatedAt, c.SourceURL).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := q.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// SearchContent performs full-text search over chunk content.
func (r *KbRepository) SearchContent(ctx context.Context, query string, limit int) ([]models.KbChunk, error) {
	q := squirrel.Select(chunkColumns...).
		From("kb_chunks").
		Where(squirrel.Expr("to_tsvector('english', content) @@ websearch_to_tsquery('english', ?)", query)).
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	return r.queryChunks(ctx, q)
}

// SearchTitle is the fallback substring match over chunk titles.
func (r *KbRepository) SearchTitle(ctx context.Context, query string, limit int) ([]models.KbChunk, error) {
	q := squirrel.Select(chunkColumns...).
		From("kb_chunks").
		Where(squirrel.ILike{"chunk_title": "%" + query + "%"}).
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	return r.queryChunks(ctx, q)
}

// GetByDocID returns chunks belonging to one knowledge document.
func (r *KbRepository) GetByDocID(ctx context.Context, docID string, limit int) ([]models.KbChunk, error) {
	q := squirrel.Select(chunkColumns...).
		From("kb_chunks").
		Where(squirrel.Eq{"doc_id": docID}).
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	return r.queryChunks(ctx, q)
}

// SearchByTags returns chunks sharing at least one tag, excluding the seed
// document itself.
func (r *KbRepository) SearchByTags(ctx context.Context, tags []string, excludeDocID string, limit int) ([]models.KbChunk, error) {
	q := squirrel.Select(chunkColumns...).
		From("kb_chunks").
		Where(squirrel.Expr("tags && ?", tags)).
		Where(squirrel.NotEq{"doc_id": excludeDocID}).
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	return r.queryChunks(ctx, q)
}

// SearchByDocType returns chunks whose doc_id carries the given type prefix,
// excluding the seed document.
func (r *KbRepository) SearchByDocType(ctx context.Context, docType models.DocType, excludeDocID string, limit int) ([]models.KbChunk, error) {
	q := squirrel.Select(chunkColumns...).
		From("kb_chunks").
		Where(squirrel.Like{"doc_id": string(docType) + ":%"}).
		Where(squirrel.NotEq{"doc_id": excludeDocID}).
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	return r.queryChunks(ctx, q)
}

func (r *KbRepository) queryChunks(ctx context.Context, q squirrel.SelectBuilder) ([]models.KbChunk, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanChunks(rows)
}

func scanChunks(rows pgx.Rows) ([]models.KbChunk, error) {
	var results []models.KbChunk
	for rows.Next() {
		var c models.KbChunk
		if err := rows.Scan(
			&c.ID, &c.DocID, &c.ChunkTitle, &c.Content, &c.Tags, &c.UpdatedAt, &c.SourceURL,
		); err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

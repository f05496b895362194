package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"ytbrain/internal/core"
	"ytbrain/internal/models"
)

// PostgresStore persists chunks and embeddings in a pgvector-enabled
// Postgres, so indexes survive restarts. Selected with VECTOR_STORE=postgres.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// Upsert replaces the video's chunk set in a single transaction, so a
// concurrent reader sees the old rows or the new rows but never both.
func (p *PostgresStore) Upsert(ctx context.Context, videoID string, chunks []models.TranscriptChunk) error {
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM transcript_chunks WHERE video_id = $1`, videoID); err != nil {
		_ = tx.Rollback()
		return err
	}

	const q = `
		INSERT INTO transcript_chunks
			(id, video_id, position, start_time, text, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		vec := pgvector.NewVector(ch.Embedding)
		if _, err := stmt.ExecContext(ctx,
			uuid.NewString(), videoID, ch.Position, ch.StartTime, ch.Text, vec,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Search finds the top-k similar chunks within one video. pgvector's <=>
// operator is cosine distance, so score = 1 - distance; ordering by distance
// then position keeps ties deterministic.
func (p *PostgresStore) Search(ctx context.Context, videoID string, queryVec []float32, k int) ([]models.RetrievalResult, error) {
	ok, err := p.Has(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrIndexNotFound, videoID)
	}

	const q = `
		SELECT video_id, position, start_time, text, embedding <=> $2 AS distance
		FROM transcript_chunks
		WHERE video_id = $1
		ORDER BY embedding <=> $2 ASC, position ASC
		LIMIT $3
	`
	vec := pgvector.NewVector(queryVec)
	rows, err := p.db.QueryContext(ctx, q, videoID, vec, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RetrievalResult
	for rows.Next() {
		var (
			ch       models.TranscriptChunk
			distance float64
		)
		if err := rows.Scan(&ch.VideoID, &ch.Position, &ch.StartTime, &ch.Text, &distance); err != nil {
			return nil, err
		}
		out = append(out, models.RetrievalResult{Chunk: ch, Score: 1 - distance})
	}
	return out, rows.Err()
}

func (p *PostgresStore) Chunks(ctx context.Context, videoID string) ([]models.TranscriptChunk, error) {
	const q = `
		SELECT video_id, position, start_time, text
		FROM transcript_chunks
		WHERE video_id = $1
		ORDER BY position ASC
	`
	rows, err := p.db.QueryContext(ctx, q, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TranscriptChunk
	for rows.Next() {
		var ch models.TranscriptChunk
		if err := rows.Scan(&ch.VideoID, &ch.Position, &ch.StartTime, &ch.Text); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrIndexNotFound, videoID)
	}
	return out, nil
}

func (p *PostgresStore) Has(ctx context.Context, videoID string) (bool, error) {
	var exists bool
	err := p.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM transcript_chunks WHERE video_id = $1)`, videoID,
	).Scan(&exists)
	return exists, err
}

var _ VectorStore = (*PostgresStore)(nil)

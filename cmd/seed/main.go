package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"keasy-ai/internal/models"
	"keasy-ai/internal/repository"
	"keasy-ai/pkg/config"
	"keasy-ai/pkg/logger"
	"keasy-ai/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS kb_chunks (
    id UUID PRIMARY KEY,
    doc_id TEXT NOT NULL,
    chunk_title TEXT NOT NULL,
    content TEXT NOT NULL,
    tags TEXT[] NOT NULL DEFAULT '{}',
    updated_at TIMESTAMPTZ NOT NULL,
    source_url TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS kb_chunks_content_fts
    ON kb_chunks USING GIN (to_tsvector('english', content));
CREATE INDEX IF NOT EXISTS kb_chunks_doc_id ON kb_chunks (doc_id);
CREATE INDEX IF NOT EXISTS kb_chunks_tags ON kb_chunks USING GIN (tags);
`

// seedChunk is the on-disk shape of one knowledge base passage.
type seedChunk struct {
	DocID      string   `json:"doc_id"`
	ChunkTitle string   `json:"chunk_title"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	SourceURL  string   `json:"source_url"`
}

func main() {
	var chunksFile string
	flag.StringVar(&chunksFile, "chunks", "cmd/seed/chunks.json", "path to the chunks JSON file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	if !cfg.Database.Enabled() {
		appLogger.Fatal("Knowledge base credentials missing, nothing to seed")
	}

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to knowledge base", zap.Error(err))
	}
	defer db.Close()

	if _, err := db.Exec(ctx, schema); err != nil {
		appLogger.Fatal("Failed to create schema", zap.Error(err))
	}

	data, err := os.ReadFile(chunksFile)
	if err != nil {
		appLogger.Fatal("Failed to read chunks file", zap.String("path", chunksFile), zap.Error(err))
	}

	var chunks []seedChunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		appLogger.Fatal("Failed to parse chunks file", zap.Error(err))
	}

	repo := repository.NewKbRepository(db, appLogger)

	inserted := 0
	for _, c := range chunks {
		chunk := &models.KbChunk{
			ID:         uuid.New(),
			DocID:      c.DocID,
			ChunkTitle: c.ChunkTitle,
			Content:    c.Content,
			Tags:       c.Tags,
			UpdatedAt:  time.Now().UTC(),
			SourceURL:  c.SourceURL,
		}
		if chunk.Tags == nil {
			chunk.Tags = []string{}
		}
		if err := repo.Insert(ctx, chunk); err != nil {
			appLogger.Error("Failed to insert chunk",
				zap.String("doc_id", c.DocID),
				zap.Error(err),
			)
			continue
		}
		inserted++
	}

	appLogger.Info("Seeding completed",
		zap.Int("inserted", inserted),
		zap.Int("total", len(chunks)),
	)
}

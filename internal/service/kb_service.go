package service

import (
	"context"

	"keasy-ai/internal/dto"
	"keasy-ai/internal/models"
	"keasy-ai/pkg/config"

	"go.uber.org/zap"
)

// KbStore is the repository surface the gateway needs. A nil store means
// the knowledge base is disabled by configuration.
type KbStore interface {
	SearchContent(ctx context.Context, query string, limit int) ([]models.KbChunk, error)
	SearchTitle(ctx context.Context, query string, limit int) ([]models.KbChunk, error)
	GetByDocID(ctx context.Context, docID string, limit int) ([]models.KbChunk, error)
	SearchByTags(ctx context.Context, tags []string, excludeDocID string, limit int) ([]models.KbChunk, error)
	SearchByDocType(ctx context.Context, docType models.DocType, excludeDocID string, limit int) ([]models.KbChunk, error)
}

// relatedSeedLimit caps how many chunks of the followed document seed the
// related-items lookup.
const relatedSeedLimit = 3

// KbService wraps the chunk store with query normalization, the title-match
// fallback, and relevance ranking. Store errors are never fatal: the
// pipeline degrades to zero results.
type KbService struct {
	store  KbStore
	logger *zap.Logger
}

func NewKbService(store KbStore, logger *zap.Logger) *KbService {
	return &KbService{
		store:  store,
		logger: logger,
	}
}

// GetKbResults searches chunk content with the normalized query, falls back
// to a title substring match on zero rows, and returns the chunks ranked by
// token-overlap score.
func (s *KbService) GetKbResults(ctx context.Context, query string, keasy config.KeasyConfig) []models.ScoredChunk {
	if s.store == nil {
		s.logger.Warn("Knowledge base is disabled, skipping search")
		return nil
	}

	searchQuery := NormalizeKbQuery(query)
	if searchQuery == "" {
		searchQuery = query
	}

	chunks, err := s.store.SearchContent(ctx, searchQuery, keasy.MaxKbChunks)
	if err != nil {
		s.logger.Error("KB content search failed", zap.Error(err))
		return nil
	}

	if len(chunks) == 0 {
		chunks, err = s.store.SearchTitle(ctx, searchQuery, keasy.MaxKbChunks)
		if err != nil {
			s.logger.Error("KB title search failed", zap.Error(err))
			return nil
		}
	}

	ranked := RankChunks(query, chunks)

	s.logger.Info("Knowledge search completed",
		zap.Int("results", len(ranked)),
	)
	return ranked
}

// GetRelatedForDoc builds the related-items list for the acknowledgement
// follow-up flow: chunks sharing any tag with the followed document,
// supplemented by chunks of the same document type when short.
func (s *KbService) GetRelatedForDoc(ctx context.Context, docID string, keasy config.KeasyConfig) []dto.RelatedItem {
	if s.store == nil {
		s.logger.Warn("Knowledge base is disabled, skipping related lookup")
		return nil
	}

	seeds, err := s.store.GetByDocID(ctx, docID, relatedSeedLimit)
	if err != nil {
		s.logger.Error("KB doc lookup failed", zap.String("doc_id", docID), zap.Error(err))
		return nil
	}
	if len(seeds) == 0 {
		return nil
	}

	tagSet := make(map[string]struct{})
	var tags []string
	for _, seed := range seeds {
		for _, t := range seed.Tags {
			if _, dup := tagSet[t]; dup {
				continue
			}
			tagSet[t] = struct{}{}
			tags = append(tags, t)
		}
	}

	var related []models.KbChunk
	if len(tags) > 0 {
		related, err = s.store.SearchByTags(ctx, tags, docID, keasy.MaxKbChunks)
		if err != nil {
			s.logger.Error("KB tag search failed", zap.Error(err))
			related = nil
		}
	}

	if len(related) < keasy.MaxKbChunks {
		if docType, _, ok := models.SplitDocID(docID); ok {
			more, err := s.store.SearchByDocType(ctx, docType, docID, keasy.MaxKbChunks)
			if err != nil {
				s.logger.Error("KB doc-type search failed", zap.Error(err))
			} else {
				related = append(related, more...)
			}
		}
	}

	seen := make(map[string]struct{})
	var items []dto.RelatedItem
	for _, c := range related {
		if _, dup := seen[c.DocID]; dup {
			continue
		}
		seen[c.DocID] = struct{}{}

		link, label := LinkForDoc(c.DocID)
		items = append(items, dto.RelatedItem{
			DocID: c.DocID,
			Title: c.ChunkTitle,
			Link:  link,
			Label: label,
		})
		if len(items) >= keasy.MaxKbChunks {
			break
		}
	}
	return items
}

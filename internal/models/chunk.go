package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mode is the terminal routing decision of the answer pipeline.
type Mode string

const (
	ModeKB      Mode = "kb"
	ModeWeb     Mode = "web"
	ModeGeneral Mode = "general"
	ModeRefuse  Mode = "refuse"
)

// DocType is the prefix of a composite doc_id, e.g. "guide" in "guide:42".
type DocType string

const (
	DocTypeGuide        DocType = "guide"
	DocTypeJob          DocType = "job"
	DocTypeCommunity    DocType = "community"
	DocTypeProfessional DocType = "professional"
)

// KbChunk is one retrievable knowledge base passage. Chunks are fetched
// fresh per request and never mutated by the pipeline.
type KbChunk struct {
	ID         uuid.UUID `db:"id"`
	DocID      string    `db:"doc_id"`
	ChunkTitle string    `db:"chunk_title"`
	Content    string    `db:"content"`
	Tags       []string  `db:"tags"`
	UpdatedAt  time.Time `db:"updated_at"`
	SourceURL  string    `db:"source_url"`
}

// ScoredChunk pairs a chunk with its token-overlap relevance in [0,1].
type ScoredChunk struct {
	KbChunk
	Score float64
}

// SplitDocID splits a composite doc_id of the form "<type>:<id>". ok is
// false when the value has no prefix or an empty part.
func SplitDocID(docID string) (typ DocType, id string, ok bool) {
	idx := strings.Index(docID, ":")
	if idx <= 0 || idx == len(docID)-1 {
		return "", "", false
	}
	return DocType(docID[:idx]), docID[idx+1:], true
}

// WebSource is one web-search result used to ground a web-mode answer.
type WebSource struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"-"`
}

// Domain returns the host portion of the source URL, for citation display.
func (s WebSource) Domain() string {
	u := s.URL
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
	}
	if i := strings.IndexAny(u, "/?#"); i >= 0 {
		u = u[:i]
	}
	return u
}

package service

import (
	"testing"

	"keasy-ai/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKbQuery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"drops stop words and short tokens", "What is the Keasy pricing guide?", "pricing"},
		{"splits on non-alphanumerics", "visa/extension(renewal)", "visa extension renewal"},
		{"dedupes", "visa visa VISA extension", "visa extension"},
		{"all stop words", "what is the", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKbQuery(tt.in))
		})
	}
}

func chunkWith(title, content string) models.KbChunk {
	return models.KbChunk{ChunkTitle: title, Content: content}
}

func TestScoreChunk(t *testing.T) {
	tests := []struct {
		name  string
		query string
		chunk models.KbChunk
		want  float64
	}{
		{"all tokens in title", "visa extension", chunkWith("Visa extension basics", "unrelated"), 1.0},
		{"token in content only", "visa", chunkWith("Paperwork", "apply for a visa at immigration"), 0.5},
		{"half title half miss", "visa lottery", chunkWith("Visa basics", "nothing else"), 0.5},
		{"no overlap", "kimchi recipe", chunkWith("Visa basics", "immigration office"), 0},
		{"empty token list", "what is the", chunkWith("Visa basics", "immigration office"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ScoreChunk(tt.query, tt.chunk), 1e-9)
		})
	}
}

func TestRankChunksStableOrder(t *testing.T) {
	chunks := []models.KbChunk{
		chunkWith("Unrelated", "nothing"),
		chunkWith("Visa extension", "first tied chunk about visa extension"),
		chunkWith("Visa extension", "second tied chunk about visa extension"),
	}

	ranked := RankChunks("visa extension", chunks)

	assert.Len(t, ranked, 3)
	assert.Equal(t, "first tied chunk about visa extension", ranked[0].Content)
	assert.Equal(t, "second tied chunk about visa extension", ranked[1].Content)
	assert.Equal(t, "Unrelated", ranked[2].ChunkTitle)
	assert.Greater(t, ranked[0].Score, ranked[2].Score)
	assert.Equal(t, ranked[0].Score, ranked[1].Score)
}

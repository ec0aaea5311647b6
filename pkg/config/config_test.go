package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func baseKeasy() KeasyConfig {
	return KeasyConfig{
		KbMinScore:         0.5,
		KbMinResults:       1,
		MaxKbChunks:        5,
		MaxWebResults:      3,
		MaxWebSnippetChars: 1200,
		WebFetchTimeout:    8 * time.Second,
		MaxQueryLength:     200,
	}
}

func TestMergeNilOverrides(t *testing.T) {
	base := baseKeasy()

	assert.Equal(t, base, base.Merge(nil))
}

func TestMergeAppliesOnlySetFields(t *testing.T) {
	base := baseKeasy()

	minScore := 0.8
	maxChunks := 2
	merged := base.Merge(&KeasyOverrides{
		KbMinScore:  &minScore,
		MaxKbChunks: &maxChunks,
	})

	assert.Equal(t, 0.8, merged.KbMinScore)
	assert.Equal(t, 2, merged.MaxKbChunks)
	assert.Equal(t, base.KbMinResults, merged.KbMinResults)
	assert.Equal(t, base.MaxWebResults, merged.MaxWebResults)

	// base is untouched
	assert.Equal(t, 0.5, base.KbMinScore)
	assert.Equal(t, 5, base.MaxKbChunks)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Keasy.KbMinScore)
	assert.Equal(t, 1, cfg.Keasy.KbMinResults)
	assert.Equal(t, 5, cfg.Keasy.MaxKbChunks)
	assert.Equal(t, 3, cfg.Keasy.MaxWebResults)
	assert.Equal(t, 1200, cfg.Keasy.MaxWebSnippetChars)
	assert.Equal(t, 8*time.Second, cfg.Keasy.WebFetchTimeout)
	assert.Equal(t, 200, cfg.Keasy.MaxQueryLength)
	assert.False(t, cfg.Keasy.WebFallbackEnabled)
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.AppEnv)
	assert.Equal(t, 6, cfg.QuoteMinLength)
	assert.Equal(t, 15, cfg.KeywordTopN)
	assert.Equal(t, 3, cfg.QueryTopK)
	assert.InDelta(t, 0.55, cfg.MatchMinScore, 1e-9)
	assert.Equal(t, 1, cfg.MatchSpanBefore)
	assert.Equal(t, 1, cfg.MatchSpanAfter)
}

func TestLoad_InvalidMatchScore(t *testing.T) {
	t.Setenv("MATCH_MIN_SCORE", "1.5")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_OverridesFromEnv(t *testing.T) {
	t.Setenv("KEYWORD_TOP_N", "30")
	t.Setenv("QUERY_TOP_K", "5")
	t.Setenv("GOOGLE_CSE_DOMAINS", "site:whitehouse.gov,site:congress.gov")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.KeywordTopN)
	assert.Equal(t, 5, cfg.QueryTopK)
	assert.Equal(t, []string{"site:whitehouse.gov", "site:congress.gov"}, cfg.GoogleCSEDomains)
}

package config

import (
	"testing"

	"recon-engine/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 70.0, cfg.AutoMatchThreshold)
	assert.Equal(t, 40.0, cfg.SuggestThreshold)
	assert.Equal(t, 0.6, cfg.CreditorThreshold)
	assert.Equal(t, 60, cfg.DateWindowDays)
	assert.Equal(t, 200, cfg.MaxCandidates)
	assert.Equal(t, "Rechnung", cfg.FallbackPaymentMethod)

	rc := cfg.ReconcilerConfig()
	assert.Equal(t, core.Thresholds{AutoMatch: 70, Suggest: 40}, rc.Thresholds)
	assert.IsType(t, core.TokenSimilarity{}, rc.Similarity)

	ac := cfg.AccountConfig()
	assert.Equal(t, core.AccountRange{Start: 10000, End: 69999}, ac.DedicatedRange)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RECON_AUTO_MATCH_THRESHOLD", "80")
	t.Setenv("RECON_SUGGEST_THRESHOLD", " 50 ")
	t.Setenv("RECON_SIMILARITY", "levenshtein")
	t.Setenv("RECON_DEDICATED_RANGE_START", "20000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 80.0, cfg.AutoMatchThreshold)
	assert.Equal(t, 50.0, cfg.SuggestThreshold)
	assert.Equal(t, 20000, cfg.AccountConfig().DedicatedRange.Start)
	assert.IsType(t, core.LevenshteinSimilarity{}, cfg.ReconcilerConfig().Similarity)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"suggest above auto", map[string]string{"RECON_SUGGEST_THRESHOLD": "75"}},
		{"auto above 100", map[string]string{"RECON_AUTO_MATCH_THRESHOLD": "101"}},
		{"creditor zero", map[string]string{"RECON_CREDITOR_THRESHOLD": "0"}},
		{"creditor above one", map[string]string{"RECON_CREDITOR_THRESHOLD": "1.5"}},
		{"empty range", map[string]string{"RECON_DEDICATED_RANGE_START": "70000"}},
		{"no workers", map[string]string{"RECON_WORKERS": "0"}},
		{"not a number", map[string]string{"RECON_MAX_CANDIDATES": "many"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

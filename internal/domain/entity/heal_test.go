package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }

func TestHealResponse_TopLevelWinsOverDebug(t *testing.T) {
	resp := &HealResponse{
		ValidationStatus: strPtr(ValidationValid),
		CacheHit:         boolPtr(true),
		HistoryHits:      intPtr(5),
		Debug: &HealDebug{
			ValidationStatus: strPtr(ValidationNoSafeMatch),
			CacheHit:         boolPtr(false),
			HistoryHits:      intPtr(1),
		},
	}

	assert.Equal(t, ValidationValid, resp.ResolvedValidationStatus())
	assert.True(t, resp.ResolvedCacheHit())
	assert.Equal(t, 5, resp.ResolvedHistoryHits())
}

func TestHealResponse_FallsBackToDebug(t *testing.T) {
	resp := &HealResponse{
		Debug: &HealDebug{
			ValidationStatus: strPtr(ValidationNoSafeMatch),
			ValidationReason: strPtr("low confidence"),
			CacheHit:         boolPtr(true),
			CacheSourceID:    strPtr("snap-9"),
			HistoryAssisted:  boolPtr(true),
			HistoryHits:      intPtr(3),
			UIChangeLevel:    strPtr("MAJOR_CHANGE"),
		},
	}

	assert.Equal(t, ValidationNoSafeMatch, resp.ResolvedValidationStatus())
	assert.Equal(t, "low confidence", resp.ResolvedValidationReason())
	assert.True(t, resp.ResolvedCacheHit())
	assert.Equal(t, "snap-9", resp.ResolvedCacheSourceID())
	assert.True(t, resp.ResolvedHistoryAssisted())
	assert.Equal(t, 3, resp.ResolvedHistoryHits())
	assert.Equal(t, UIChangeMajor, resp.ResolvedUIChangeLevel())
}

func TestHealResponse_ZeroValueDefaults(t *testing.T) {
	resp := &HealResponse{}

	assert.Empty(t, resp.ChosenSelector())
	assert.Nil(t, resp.TopCandidate())
	assert.Empty(t, resp.ResolvedValidationStatus())
	assert.False(t, resp.ResolvedCacheHit())
	assert.Equal(t, UIChangeUnknown, resp.ResolvedUIChangeLevel())
}

func TestHealResponse_ExplicitFalseBeatsDebugTrue(t *testing.T) {
	resp := &HealResponse{
		CacheHit: boolPtr(false),
		Debug:    &HealDebug{CacheHit: boolPtr(true)},
	}
	assert.False(t, resp.ResolvedCacheHit())
}

func TestHealResponse_DecodesBackendPayload(t *testing.T) {
	payload := `{
		"chosen": "[data-testid=\"submit\"]",
		"candidates": [
			{"selector": "[data-testid=\"submit\"]", "xpath": "/html/body/form/button[1]", "score": 0.93, "tag": "button", "text": "Submit"},
			{"selector": "#submit", "score": 0.71}
		],
		"validation_status": "VALID",
		"debug": {"engine": "hybrid", "cache_hit": true, "processing_time_ms": 182.4}
	}`

	var resp HealResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))

	assert.Equal(t, `[data-testid="submit"]`, resp.ChosenSelector())
	require.NotNil(t, resp.TopCandidate())
	assert.Equal(t, "/html/body/form/button[1]", resp.TopCandidate().XPath)
	assert.Equal(t, 0.93, resp.TopCandidate().Score)
	assert.Equal(t, ValidationValid, resp.ResolvedValidationStatus())
	assert.True(t, resp.ResolvedCacheHit())
}

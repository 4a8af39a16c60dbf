package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")

	cfg := LoadConfig()

	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, 0.09, cfg.TaxRate)
	assert.Equal(t, 0.0, cfg.ServiceFeeRate)
	assert.False(t, cfg.PassThroughProcessorFee)
	assert.Equal(t, 0.50, cfg.MinChargeAmount)
	assert.Equal(t, 24*time.Hour, cfg.IntentTTL)
	assert.Equal(t, 15*time.Minute, cfg.SweepInterval)
	assert.False(t, cfg.ReorderUseCurrentPrice)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("TAX_RATE", "0.0825")
	t.Setenv("PASS_THROUGH_PROCESSOR_FEE", "true")
	t.Setenv("INTENT_TTL", "1h")
	t.Setenv("REORDER_USE_CURRENT_PRICE", "true")

	cfg := LoadConfig()

	assert.Equal(t, 0.0825, cfg.TaxRate)
	assert.True(t, cfg.PassThroughProcessorFee)
	assert.Equal(t, time.Hour, cfg.IntentTTL)
	assert.True(t, cfg.ReorderUseCurrentPrice)
}

func TestEnvHelpers_IgnoreMalformedValues(t *testing.T) {
	t.Setenv("TAX_RATE", "not-a-number")
	t.Setenv("PASS_THROUGH_PROCESSOR_FEE", "yes-please")
	t.Setenv("INTENT_TTL", "soon")

	assert.Equal(t, 0.09, envFloat("TAX_RATE", 0.09))
	assert.False(t, envBool("PASS_THROUGH_PROCESSOR_FEE", false))
	assert.Equal(t, 24*time.Hour, envDuration("INTENT_TTL", 24*time.Hour))
}

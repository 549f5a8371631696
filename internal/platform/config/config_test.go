package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func newTestViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg := fromViper(newTestViper(nil))

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3, cfg.HTTPMaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.HTTPInitialBackoff)
	assert.Equal(t, 24*time.Hour, cfg.RefreshCooldown)
	assert.Equal(t, 100, cfg.UpsertBatchSize)
	assert.Equal(t, []string{"transactions"}, cfg.PlaidProducts)
	assert.Equal(t, "sandbox", cfg.PlaidEnv)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestFromViper_Overrides(t *testing.T) {
	cfg := fromViper(newTestViper(map[string]any{
		"PLAID_PRODUCTS":       "transactions, investments",
		"KAFKA_BROKERS":        "k1:9092,k2:9092",
		"HTTP_INITIAL_BACKOFF": "250ms",
		"UPSERT_BATCH_SIZE":    0,
		"TELLER_API_BASE_URL":  "https://api.teller.io/",
		"REFRESH_TIMEOUT":      "garbage",
	}))

	assert.Equal(t, []string{"transactions", "investments"}, cfg.PlaidProducts)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 250*time.Millisecond, cfg.HTTPInitialBackoff)
	assert.Equal(t, 100, cfg.UpsertBatchSize)
	assert.Equal(t, "https://api.teller.io", cfg.TellerAPIBaseURL)
	assert.Equal(t, 2*time.Minute, cfg.RefreshTimeout)
}

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JejuNetwork/certkit/core/config"
)

type sweepConfig struct {
	RenewalDays   int           `env:"TEST_CFG_RENEWAL_DAYS" envDefault:"30"`
	SweepInterval time.Duration `env:"TEST_CFG_SWEEP_INTERVAL" envDefault:"1h"`
}

type directoryConfig struct {
	URL string `env:"TEST_CFG_DIRECTORY_URL" envDefault:"https://example.test/dir"`
}

func TestLoadDefaults(t *testing.T) {
	var cfg sweepConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, 30, cfg.RenewalDays)
	assert.Equal(t, time.Hour, cfg.SweepInterval)
}

func TestLoadCachesPerType(t *testing.T) {
	var first sweepConfig
	require.NoError(t, config.Load(&first))

	// Environment changes after the first load are invisible: the type is
	// cached for the process lifetime.
	t.Setenv("TEST_CFG_RENEWAL_DAYS", "7")
	var second sweepConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, first, second)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TEST_CFG_DIRECTORY_URL", "https://other.test/dir")

	var cfg directoryConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "https://other.test/dir", cfg.URL)
}

func TestLoadNilTarget(t *testing.T) {
	var cfg *sweepConfig
	assert.Error(t, config.Load(cfg))
}

func TestMustLoad(t *testing.T) {
	assert.NotPanics(t, func() {
		var cfg sweepConfig
		config.MustLoad(&cfg)
	})
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port    int      `env:"TEST_CFG_PORT" envDefault:"8080"`
	Host    string   `env:"TEST_CFG_HOST" envDefault:"localhost"`
	Debug   bool     `env:"TEST_CFG_DEBUG" envDefault:"false"`
	TTL     Duration `env:"TEST_CFG_TTL" envDefault:"3600"`
	Origins []string `env:"TEST_CFG_ORIGINS" envSeparator:","`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "localhost", cfg.Host)
	assert.False(t, cfg.Debug)
	assert.Equal(t, time.Hour, cfg.TTL.Std())
	assert.Empty(t, cfg.Origins)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_HOST", "0.0.0.0")
	t.Setenv("TEST_CFG_DEBUG", "true")
	t.Setenv("TEST_CFG_TTL", "15m")
	t.Setenv("TEST_CFG_ORIGINS", "http://a.test,http://b.test")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 15*time.Minute, cfg.TTL.Std())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Origins)
}

func TestLoadFrom_Map(t *testing.T) {
	var cfg testConfig
	require.NoError(t, LoadFrom(&cfg, map[string]string{"TEST_CFG_PORT": "7000", "TEST_CFG_TTL": "604800"}))

	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.TTL.Std())
}

type requiredConfig struct {
	APIKey string `env:"TEST_CFG_API_KEY,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg requiredConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestDuration_Invalid(t *testing.T) {
	var d Duration
	assert.Error(t, d.UnmarshalText([]byte("soon")))
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	assert.Equal(t, ":8080", v.GetString("api.listen_address"))
	assert.Equal(t, 10*time.Second, v.GetDuration("api.read_timeout"))

	assert.Equal(t, 50000, v.GetInt("cache.l1_max_entries"))
	assert.Equal(t, false, v.GetBool("cache.l2_enabled"))

	assert.Equal(t, 3.0, v.GetFloat64("classifier.simple_threshold"))
	assert.Equal(t, 8.0, v.GetFloat64("classifier.complex_threshold"))

	assert.Equal(t, 700, v.GetInt("dispatch.default_timeout_ms"))
	assert.Equal(t, 50, v.GetInt("dispatch.min_timeout_ms"))
	assert.Equal(t, 2000, v.GetInt("dispatch.max_timeout_ms"))
	assert.Equal(t, 3, v.GetInt("dispatch.hybrid_overfetch_factor"))
	assert.Equal(t, true, v.GetBool("dispatch.coalesce_in_flight"))

	assert.Equal(t, "http://localhost:9200", v.GetString("engine.simple.endpoint"))
	assert.Equal(t, "http://localhost:9300", v.GetString("engine.complex.endpoint"))
}

func TestEnvVarOverrides(t *testing.T) {
	dir, err := os.MkdirTemp("", "search-gateway-config-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	configPath := filepath.Join(dir, "config.yaml")
	configContent := `
api:
  listen_address: ":9090"
engine:
  simple:
    endpoint: "http://from-file:9200"
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("SEARCHGW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	os.Setenv("SEARCHGW_ENGINE_COMPLEX_ENDPOINT", "http://from-env:9300")
	defer os.Unsetenv("SEARCHGW_ENGINE_COMPLEX_ENDPOINT")

	require.NoError(t, v.ReadInConfig())

	assert.Equal(t, ":9090", v.GetString("api.listen_address"))
	assert.Equal(t, "http://from-file:9200", v.GetString("engine.simple.endpoint"))
	assert.Equal(t, "http://from-env:9300", v.GetString("engine.complex.endpoint"))
}

func TestLoad_TenantOverridesFromFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "search-gateway-config-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	configPath := filepath.Join(dir, "config.yaml")
	configContent := `
tenant:
  overrides:
    acme-corp:
      dedicated: true
      index_name: "acme-corp-index"
      shard_count: 6
      replica_count: 2
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	os.Setenv("SEARCHGW_CONFIG_FILE", configPath)
	defer os.Unsetenv("SEARCHGW_CONFIG_FILE")

	cfg, err := Load()
	require.NoError(t, err)

	override, ok := cfg.Tenant.Overrides["acme-corp"]
	require.True(t, ok)
	assert.True(t, override.Dedicated)
	assert.Equal(t, "acme-corp-index", override.IndexName)
	assert.Equal(t, 6, override.ShardCount)
	assert.Equal(t, 2, override.ReplicaCount)
}

func TestLoad_NoConfigFileFallsBackToDefaults(t *testing.T) {
	os.Setenv("SEARCHGW_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	defer os.Unsetenv("SEARCHGW_CONFIG_FILE")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.API.ListenAddress)
	assert.Equal(t, 700, cfg.Dispatch.DefaultTimeoutMs)
	assert.Equal(t, 3.0, cfg.Classifier.SimpleThreshold)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cf, err := LoadConfig(viper.New(), "")
	require.NoError(t, err)

	require.Equal(t, "8080", cf.ServerPort)
	require.Equal(t, 5*time.Second, cf.UpstreamTimeout)
	require.Equal(t, "200", cf.ShippingFee)
	require.Equal(t, 2*time.Minute, cf.CheckoutLockTTL)
	require.False(t, cf.LegacyPlacementResponse)
	require.Empty(t, cf.KafkaBrokers)
	require.Empty(t, cf.ElasticURL)
	require.Equal(t, "storefront-logs", cf.ElasticLogIndex)
	require.Equal(t, 15*time.Minute, cf.ServiceTokenTTL)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.env")
	content := "SERVER_PORT=9090\nUPSTREAM_TIMEOUT=2s\nLEGACY_PLACEMENT_RESPONSE=true\nKAFKA_BROKERS=kafka-1:9092,kafka-2:9092\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cf, err := LoadConfig(viper.New(), path)
	require.NoError(t, err)

	require.Equal(t, "9090", cf.ServerPort)
	require.Equal(t, 2*time.Second, cf.UpstreamTimeout)
	require.True(t, cf.LegacyPlacementResponse)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cf.KafkaBrokers)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.env")
	require.NoError(t, os.WriteFile(path, []byte("SERVER_PORT=9090\n"), 0o600))
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("RECOVERY_GRACE", "45s")

	cf, err := LoadConfig(viper.New(), path)
	require.NoError(t, err)

	require.Equal(t, "7070", cf.ServerPort)
	require.Equal(t, 45*time.Second, cf.RecoveryGrace)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

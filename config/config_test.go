package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 4096, cfg.RingCapacity)
	assert.Equal(t, 300000, cfg.SymbolTableReserve)
	assert.Equal(t, 8, cfg.PartitionsPerTopic)
	assert.Equal(t, 65536, cfg.RouterQueueCapacity)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "localhost:9092", cfg.Bus.BootstrapServers)
	assert.Equal(t, "1", cfg.Bus.Acks)
}

func TestLoad_OverridesDefaultsFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pitch-ingest.yaml")
	yaml := `
udp_receivers:
  - bind_ip: "0.0.0.0"
    bind_port: 31337
    cpu_affinity_core: 2
ring_capacity: 8192
log_level: debug
bus:
  bootstrap_servers: "broker1:9092,broker2:9092"
  acks: all
  topics:
    - market-data
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.UDPReceivers, 1)
	assert.Equal(t, "0.0.0.0", cfg.UDPReceivers[0].BindIP)
	assert.Equal(t, 31337, cfg.UDPReceivers[0].BindPort)
	assert.Equal(t, 2, cfg.UDPReceivers[0].CPUAffinityCore)

	assert.Equal(t, 8192, cfg.RingCapacity)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "broker1:9092,broker2:9092", cfg.Bus.BootstrapServers)
	assert.Equal(t, "all", cfg.Bus.Acks)
	assert.Equal(t, []string{"market-data"}, cfg.Bus.Topics)

	// Fields absent from the YAML keep their default values.
	assert.Equal(t, 300000, cfg.SymbolTableReserve)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/pitch-ingest.yaml")
	assert.Error(t, err)
}

// Package config holds the pipeline's configuration value object and an
// optional YAML loader.
package config

import (
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Receiver describes one UDP listener.
type Receiver struct {
	BindIP           string `yaml:"bind_ip"`
	BindPort         int    `yaml:"bind_port"`
	CPUAffinityCore  int    `yaml:"cpu_affinity_core"`
	RealtimePriority int    `yaml:"realtime_priority"`
}

// BusConfig mirrors the original KafkaProducer's kafka_cluster YAML section.
type BusConfig struct {
	BootstrapServers     string   `yaml:"bootstrap_servers"`
	Compression          string   `yaml:"compression"`
	Acks                 string   `yaml:"acks"`
	BufferingMaxMessages int      `yaml:"buffering_max_messages"`
	BatchNumMessages     int      `yaml:"batch_num_messages"`
	LingerMillis         int      `yaml:"linger_ms"`
	Topics               []string `yaml:"topics"`
}

// Config is the value object every core component is constructed from.
type Config struct {
	UDPReceivers []Receiver `yaml:"udp_receivers"`
	Bus          BusConfig  `yaml:"bus"`

	RingCapacity         int    `yaml:"ring_capacity"`
	SymbolTableReserve   int    `yaml:"symbol_table_reserve"`
	PartitionsPerTopic   int    `yaml:"partitions_per_topic"`
	RouterQueueCapacity  int    `yaml:"router_queue_capacity"`
	DispatcherCount      int    `yaml:"dispatcher_count"`
	LogLevel             string `yaml:"log_level"`
	MetricsAddr          string `yaml:"metrics_addr"`
}

// Default returns a Config populated with the pipeline's defaults.
func Default() Config {
	return Config{
		Bus: BusConfig{
			BootstrapServers:     "localhost:9092",
			Compression:          "lz4",
			Acks:                 "1",
			BufferingMaxMessages: 1000000,
			BatchNumMessages:     10000,
			LingerMillis:         5,
		},
		RingCapacity:        4096,
		SymbolTableReserve:  300000,
		PartitionsPerTopic:  8,
		RouterQueueCapacity: 65536,
		DispatcherCount:     runtime.GOMAXPROCS(0),
		LogLevel:            "info",
	}
}

// Load reads a YAML configuration file at path, applying it over Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

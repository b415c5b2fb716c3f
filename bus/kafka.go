package bus

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// KafkaConfig carries the subset of producer tuning the original
// KafkaProducer exposed through its YAML configuration section.
type KafkaConfig struct {
	BootstrapServers     string
	Compression          kafka.Compression
	Acks                 string // "0", "1", or "all"
	BatchNumMessages     int
	LingerMillis         int
	BufferingMaxMessages int
}

// DefaultKafkaConfig matches the original producer's defaults.
func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		BootstrapServers:     "localhost:9092",
		Compression:          kafka.Lz4,
		Acks:                 "1",
		BatchNumMessages:     10000,
		LingerMillis:         5,
		BufferingMaxMessages: 1000000,
	}
}

// ParseCompression maps the original's compression.type librdkafka setting
// ("none", "gzip", "snappy", "lz4", "zstd") onto kafka.Compression. Unknown
// or empty values fall back to no compression.
func ParseCompression(s string) kafka.Compression {
	switch s {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return 0
	}
}

// KafkaBus publishes records to Kafka via github.com/segmentio/kafka-go,
// maintaining one *kafka.Writer per topic so each topic's batching and
// ordering are independent of every other topic's.
type KafkaBus struct {
	cfg KafkaConfig
	log *logrus.Logger

	mu      sync.RWMutex
	writers map[string]*kafka.Writer
}

// NewKafkaBus creates a KafkaBus. log may be nil, in which case the
// standard logrus logger is used.
func NewKafkaBus(cfg KafkaConfig, log *logrus.Logger) *KafkaBus {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &KafkaBus{cfg: cfg, log: log, writers: make(map[string]*kafka.Writer)}
}

func (b *KafkaBus) requiredAcks() kafka.RequiredAcks {
	switch b.cfg.Acks {
	case "0":
		return kafka.RequireNone
	case "all", "-1":
		return kafka.RequireAll
	default:
		return kafka.RequireOne
	}
}

// CreateOrGetTopic lazily creates the *kafka.Writer for topic. Mirrors the
// original producer's double-checked-lock get_or_create_topic: a read lock
// first, then a write lock re-check before installing a new writer.
func (b *KafkaBus) CreateOrGetTopic(topic string) error {
	b.mu.RLock()
	_, ok := b.writers[topic]
	b.mu.RUnlock()
	if ok {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.writers[topic]; ok {
		return nil
	}

	w := &kafka.Writer{
		Addr:  kafka.TCP(b.cfg.BootstrapServers),
		Topic: topic,
		// The partition is chosen by the caller and carried in Message.Partition.
		Balancer:     kafka.BalancerFunc(func(msg kafka.Message, _ ...int) int { return msg.Partition }),
		RequiredAcks: b.requiredAcks(),
		Compression:  b.cfg.Compression,
		BatchSize:    b.cfg.BatchNumMessages,
		BatchTimeout: time.Duration(b.cfg.LingerMillis) * time.Millisecond,
		Async:        false,
	}
	b.writers[topic] = w
	return nil
}

// Publish writes payload to topic/partition. The per-topic writer's own
// internal batching (BatchSize/BatchTimeout, above) provides the asynchrony
// the core publisher relies on while this call stays synchronous, so the
// single publisher goroutine's per-symbol ordering is preserved end to end.
func (b *KafkaBus) Publish(topic string, partition int, payload []byte) {
	if err := b.CreateOrGetTopic(topic); err != nil {
		b.log.WithFields(logrus.Fields{"component": "bus.kafka", "topic": topic, "err": err}).Error("create topic failed")
		return
	}
	b.mu.RLock()
	w := b.writers[topic]
	b.mu.RUnlock()

	msg := kafka.Message{Partition: partition, Value: payload}
	if err := w.WriteMessages(context.Background(), msg); err != nil {
		b.log.WithFields(logrus.Fields{"component": "bus.kafka", "topic": topic, "partition": partition, "err": err}).Error("publish failed")
	}
}

// Flush closes every writer, each flushing its buffered batch, bounded by
// timeout.
func (b *KafkaBus) Flush(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	var firstErr error
	for topic, w := range b.writers {
		done := make(chan error, 1)
		go func(w *kafka.Writer) { done <- w.Close() }(w)
		select {
		case err := <-done:
			if err != nil && firstErr == nil {
				firstErr = err
			}
		case <-ctx.Done():
			b.log.WithFields(logrus.Fields{"component": "bus.kafka", "topic": topic}).Warn("flush timed out closing writer")
			if firstErr == nil {
				firstErr = ctx.Err()
			}
		}
	}
	b.writers = make(map[string]*kafka.Writer)
	return firstErr
}

// Command pitch-ingestd runs the PITCH ingestion pipeline: it binds the
// configured UDP listeners, decodes and routes incoming market data, and
// publishes the result to Kafka.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/equixmd/pitch-ingest/bus"
	"github.com/equixmd/pitch-ingest/config"
	"github.com/equixmd/pitch-ingest/metrics"
	"github.com/equixmd/pitch-ingest/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file (defaults applied if omitted)")
	flushTimeout := flag.Duration("flush-timeout", 10*time.Second, "bus flush timeout on shutdown")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pitch-ingestd: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	log := logrus.StandardLogger()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	kafkaBus := bus.NewKafkaBus(bus.KafkaConfig{
		BootstrapServers:     cfg.Bus.BootstrapServers,
		Compression:          bus.ParseCompression(cfg.Bus.Compression),
		Acks:                 cfg.Bus.Acks,
		BatchNumMessages:     cfg.Bus.BatchNumMessages,
		LingerMillis:         cfg.Bus.LingerMillis,
		BufferingMaxMessages: cfg.Bus.BufferingMaxMessages,
	}, log)
	for _, topic := range cfg.Bus.Topics {
		if err := kafkaBus.CreateOrGetTopic(topic); err != nil {
			log.WithFields(logrus.Fields{"topic": topic, "err": err}).Warn("preallocating topic failed")
		}
	}

	p := pipeline.New(cfg, kafkaBus, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := p.Start(ctx); err != nil {
		log.WithFields(logrus.Fields{"err": err}).Fatal("pipeline failed to start")
	}
	log.WithFields(logrus.Fields{"receivers": len(cfg.UDPReceivers)}).Info("pitch-ingestd running")

	metricsSrv := metrics.Serve(cfg.MetricsAddr, p.Registry())
	if cfg.MetricsAddr != "" {
		log.WithFields(logrus.Fields{"addr": cfg.MetricsAddr}).Info("metrics endpoint listening")
	}

	<-ctx.Done()
	log.Info("shutting down")
	if err := metricsSrv.Shutdown(context.Background()); err != nil {
		log.WithFields(logrus.Fields{"err": err}).Warn("error shutting down metrics endpoint")
	}
	if err := p.Stop(*flushTimeout); err != nil {
		log.WithFields(logrus.Fields{"err": err}).Error("error during shutdown")
	}
}

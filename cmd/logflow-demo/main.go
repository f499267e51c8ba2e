// Command logflow-demo wires the logging pipeline end to end: load
// configuration, build a Logger, attach the console transport, start
// the optional tracing exporter and queue-health monitor, and emit a
// handful of sample records at mixed levels before shutting down
// cleanly.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mdzesseis/logflow"
	"github.com/mdzesseis/logflow/internal/config"
	"github.com/mdzesseis/logflow/internal/diagnostics"
	"github.com/mdzesseis/logflow/internal/metrics"
	"github.com/mdzesseis/logflow/internal/record"
	"github.com/mdzesseis/logflow/internal/tracing"
	"github.com/mdzesseis/logflow/pkg/backpressure"
	"github.com/mdzesseis/logflow/transport/console"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config", "", "path to configuration file")
	flag.Parse()

	if configFile == "" {
		configFile = os.Getenv("LOGFLOW_CONFIG_FILE")
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logflow-demo: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	opts := cfg.ToOptions()
	logger := logflow.New(&opts)
	defer logger.Close()

	if cfg.Console.Enabled {
		logger.AddTransport(console.New())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracer, err := tracing.New(cfg.Tracing, logrus.StandardLogger())
	if err != nil {
		diagnostics.Warn("tracing_init_failed", diagnostics.Fields{"error": err.Error()})
		tracer = nil
	} else {
		defer tracer.Shutdown(ctx)
	}

	monitor := backpressure.NewManager(backpressure.Config{}, logrus.StandardLogger())
	monitor.SetLevelChangeCallback(func(_, newLevel backpressure.Level, _ float64) {
		metrics.SetQueueHealthLevel(int(newLevel))
	})
	go monitorQueue(ctx, logger, monitor)

	runDemo(ctx, logger, tracer)
}

func runDemo(ctx context.Context, logger *logflow.Logger, tracer *tracing.Manager) {
	if tracer != nil {
		_, span := tracer.StartSpan(ctx, "demo.run")
		defer span.End()
	}

	samples := []struct {
		level   string
		message string
	}{
		{"info", "logflow-demo starting"},
		{"debug", "loaded configuration"},
		{"warn", "queue utilization approaching threshold"},
		{"error", "transport write failed, retrying"},
		{"info", "logflow-demo shutting down"},
	}

	for _, s := range samples {
		logger.Submit(record.New(s.level, s.message, map[string]any{"component": "demo"}))
		time.Sleep(10 * time.Millisecond)
	}

	if err := logger.Flush(); err != nil {
		diagnostics.Warn("flush_failed", diagnostics.Fields{"error": err.Error()})
	}
}

func monitorQueue(ctx context.Context, logger *logflow.Logger, monitor *backpressure.Manager) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			monitor.UpdateMetrics(backpressure.Metrics{QueueUtilization: logger.QueueUtilization()})
		}
	}
}

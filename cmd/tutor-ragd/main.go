// Command tutor-ragd serves the tutoring assistant over MCP stdio.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	tutorrag "github.com/studyhall/tutor-rag"
	"github.com/studyhall/tutor-rag/common/logger"
	"github.com/studyhall/tutor-rag/config"
	"github.com/studyhall/tutor-rag/metrics"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	metricsAddr := flag.String("metrics-addr", "", "optional address for the Prometheus /metrics endpoint, e.g. :9090")
	flag.Parse()

	if err := run(*configPath, *metricsAddr); err != nil {
		fmt.Fprintf(os.Stderr, "tutor-ragd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, metricsAddr string) error {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, client, err := tutorrag.NewServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	if metricsAddr != "" {
		go serveMetrics(metricsAddr)
	}

	logger.Infof("tutor-ragd %s serving on stdio", tutorrag.Version)
	errCh := make(chan error, 1)
	go func() { errCh <- mcpserver.ServeStdio(srv) }()

	select {
	case <-ctx.Done():
		logger.Infof("shutting down")
		return nil
	case err := <-errCh:
		return err
	}
}

func serveMetrics(addr string) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.Collectors()...)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	logger.Infof("metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warnf("metrics server stopped, err: %v", err)
	}
}

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/df07/glcompute-raytracer/pkg/config"
	"github.com/df07/glcompute-raytracer/pkg/core"
	"github.com/df07/glcompute-raytracer/web/server"
)

// loadConfig reads path, applies a non-zero port and validates the result
func loadConfig(path string, port int) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if port != 0 {
		cfg.Web.Port = port
	}
	return cfg, cfg.Validate()
}

func main() {
	configPath := flag.String("config", "", "TOML config file")
	port := flag.Int("port", 0, "Port to serve on (overrides web.port)")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *port)

	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: core.ParseLevel(cfg.LogLevel)})))
	log := core.Logger()
	if err != nil {
		log.Error("config rejected", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info("preview server starting", "port", cfg.Web.Port, "scene", cfg.Scene)
	if err := server.NewServer(cfg).Start(ctx); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fablabhq/fablab/internal/app"
	"github.com/fablabhq/fablab/internal/common"
	"github.com/fablabhq/fablab/internal/server"
)

// configPaths collects repeated -config flags
type configPaths []string

func (c *configPaths) String() string {
	return strings.Join(*c, ",")
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

func main() {
	var configs configPaths
	flag.Var(&configs, "config", "Path to a TOML config file (repeatable, later files override earlier)")
	port := flag.Int("port", 0, "Server port (overrides config)")
	host := flag.String("host", "", "Server host (overrides config)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(common.GetFullVersion())
		return
	}

	// Auto-discover fablab.toml next to the binary when no config is given
	if len(configs) == 0 {
		if _, err := os.Stat("fablab.toml"); err == nil {
			configs = append(configs, "fablab.toml")
		}
	}

	config, err := common.LoadFromFiles(configs...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	common.ApplyFlagOverrides(config, *port, *host)

	common.PrintBanner()

	logger := common.InitLogger(config)

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}

	srv := server.New(application)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("Server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Graceful shutdown failed")
	}

	application.Close()
}

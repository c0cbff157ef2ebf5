package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/thereceipt/printer-directory/internal/api"
	"github.com/thereceipt/printer-directory/internal/config"
	"github.com/thereceipt/printer-directory/internal/discover"
	"github.com/thereceipt/printer-directory/internal/logger"
	"github.com/thereceipt/printer-directory/internal/registry"
	"github.com/thereceipt/printer-directory/internal/spool"
)

// Version is set during build via ldflags.
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info().Str("version", Version).Msg("printer directory starting")

	reg, err := registry.New(cfg.RegistryPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open printer registry")
	}

	var dir *spool.Directory
	var sources []discover.Source

	sp, err := spool.NewPlatformSpooler()
	switch {
	case err == nil:
		dir = spool.NewDirectory(sp, log)
		sources = append(sources, discover.NewSpoolSource(dir, reg))
	case errors.Is(err, spool.ErrNoSpooler):
		log.Info().Msg("no print spooler on this platform, using direct-attach discovery only")
	default:
		log.Fatal().Err(err).Msg("failed to open print spooler")
	}

	if cfg.EnableUSB {
		sources = append(sources, discover.NewUSBSource(reg))
	}
	if cfg.EnableSerial {
		sources = append(sources, discover.NewSerialSource(reg))
	}

	manager := discover.NewManager(reg, dir, sources, log)

	printers, err := manager.Detect()
	if err != nil {
		log.Warn().Err(err).Msg("initial printer detection failed")
	}
	log.Info().Int("count", len(printers)).Msg("printers discovered")

	server := api.NewServer(manager, log)

	manager.OnAdded(func(p *discover.Printer) {
		server.BroadcastPrinterAdded(p)
	})
	manager.OnRemoved(func(id string) {
		server.BroadcastPrinterRemoved(id)
	})

	monitor := discover.NewMonitor(manager, cfg.ScanInterval, log)
	monitor.Start()
	defer monitor.Stop()

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("API server listening")
		serverErr <- server.Run(cfg.ListenAddr)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatal().Err(err).Msg("API server failed")
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}
}

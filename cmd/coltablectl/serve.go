package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/nishisan-dev/coltable/internal/bulkload"
	"github.com/nishisan-dev/coltable/internal/config"
	"github.com/nishisan-dev/coltable/internal/fileprovider"
	"github.com/nishisan-dev/coltable/internal/logging"
)

const serveShutdownDrainTimeout = 30 * time.Second

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "/etc/coltable/coltablectl.yaml", "path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, closer := logging.NewLogger("info", "json", "")
	defer closer.Close()

	ctx, cancel := signalContext()
	defer cancel()

	opts := fileprovider.OpenOptions{
		Read:     cfg.FileProvider.Read,
		Write:    cfg.FileProvider.Write,
		Append:   cfg.FileProvider.Append,
		Truncate: cfg.FileProvider.Truncate,
		Create:   cfg.FileProvider.Create,
		Sync:     cfg.FileProvider.Sync,
	}
	var providerOpts []fileprovider.Option
	providerOpts = append(providerOpts, fileprovider.WithLogger(logger))
	if cfg.FileProvider.OpenRateLimit > 0 {
		providerOpts = append(providerOpts, fileprovider.WithOpenRateLimit(cfg.FileProvider.OpenRateLimit, cfg.FileProvider.OpenRateBurst))
	}
	provider := fileprovider.New(opts, cfg.FileProvider.DelayMs, providerOpts...)

	buffer := bulkload.New(cfg.StageBuffer.SizeRaw, cfg.StageBuffer.DrainRatioRaw, provider, logger)
	if buffer != nil && cfg.StageBuffer.WriteRateLimitRaw > 0 {
		buffer.SetThrottle(bulkload.NewThrottle(ctx, cfg.StageBuffer.WriteRateLimitRaw, bulkload.AvgSlotSize))
	}

	logger.Info("coltablectl serve started", "stage_buffer_enabled", buffer.Enabled())
	<-ctx.Done()
	logger.Info("coltablectl serve shutting down")

	if buffer.Enabled() {
		buffer.WaitIdle(serveShutdownDrainTimeout)
		stats := buffer.Stats()
		logger.Info("final stage buffer stats",
			"pushed", stats.TotalPushed,
			"drained", stats.TotalDrained,
			"fallbacks", stats.TotalFallbacks,
			"backpressure_events", stats.BackpressureEvents,
		)
	}
	return provider.Shutdown()
}

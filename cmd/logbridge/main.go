// logbridge forwards events from a source logging bus into a target
// logging queue, translating severities, repairing metadata, and honoring
// the target's sync/async delivery contract. It reads syslog-style
// "<priority> message" lines on stdin, renders accepted records to stdout,
// optionally journals them to SQLite, and serves a control API for level
// changes and flushes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/setevik/logbridge/internal/bridge"
	"github.com/setevik/logbridge/internal/config"
	"github.com/setevik/logbridge/internal/control"
	"github.com/setevik/logbridge/internal/source"
	"github.com/setevik/logbridge/internal/target"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "journal":
			runJournal(os.Args[2:])
			return
		case "version":
			fmt.Println("logbridge", version)
			return
		}
	}

	// Default: run daemon.
	runDaemon(os.Args[1:])
}

func runDaemon(args []string) {
	fs := flag.NewFlagSet("logbridge", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	showVersion := fs.Bool("version", false, "print version and exit")
	fs.Parse(args)

	if *showVersion {
		fmt.Println("logbridge", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.Log.Level)

	slog.Info("logbridge starting",
		"version", version,
		"level", cfg.Bridge.Level,
		"utc", cfg.Bridge.UTC,
	)

	if err := run(cfg); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Assemble the target subsystem: sinks behind one FIFO queue, with the
	// per-level behavior gate built from configuration.
	sinks := []target.Sink{target.ConsoleSink{}}
	if cfg.Target.Journal.Enabled {
		journal, err := target.OpenJournal(cfg.JournalPath())
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		slog.Info("journal opened", "path", cfg.JournalPath())

		if retention := cfg.Target.Journal.Retention.Duration; retention > 0 {
			purged, err := journal.Purge(retention)
			if err != nil {
				slog.Warn("failed to purge old journal rows", "error", err)
			} else if purged > 0 {
				slog.Info("purged old journal rows", "count", purged, "retention", retention)
			}
		}
		sinks = append(sinks, journal)
	}

	gate, err := cfg.BuildGate()
	if err != nil {
		return fmt.Errorf("building gate: %w", err)
	}

	queue := target.NewQueue(sinks...)

	// Assemble the source subsystem and attach the bridge handler.
	bus := source.NewBus()
	ownDest := source.NewWriterDestination("logbridge", os.Stdout)

	handler, err := bridge.New(bridge.Options{
		Lookup:         bus,
		Gate:           gate,
		Queue:          queue,
		OwnDestination: ownDest,
		Level:          cfg.Bridge.Level,
		UTC:            cfg.Bridge.UTC,
	})
	if err != nil {
		return fmt.Errorf("starting bridge handler: %w", err)
	}
	bus.AddHandler(handler)

	// Feed the bus from stdin.
	emitter := source.NewPipeEmitter(bus, ownDest, os.Stdin)
	emitterDone := make(chan error, 1)
	go func() {
		emitterDone <- emitter.Run(ctx)
	}()

	// Control surface.
	ctrlSrv := control.NewServer(handler, func() {
		bridge.Flush(bus, queue)
	})
	httpSrv := &http.Server{
		Addr:    cfg.Control.Addr,
		Handler: ctrlSrv.Routes(),
	}
	go func() {
		slog.Info("control surface listening", "addr", cfg.Control.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("control server failed", "error", err)
		}
	}()

	slog.Info("bridge started, forwarding events")

	select {
	case sig := <-sigCh:
		slog.Info("received signal, shutting down", "signal", sig)
	case err := <-emitterDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("pipe emitter stopped", "error", err)
		} else {
			slog.Info("input closed, shutting down")
		}
	}

	cancel()

	// Deliver everything in flight before tearing down.
	bridge.Flush(bus, queue)
	bus.Close()
	handler.Close()
	if err := queue.Close(); err != nil {
		slog.Warn("closing target queue", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// --- journal subcommand ---

func runJournal(args []string) {
	fs := flag.NewFlagSet("journal", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	last := fs.String("last", "24h", "time window (e.g. 24h, 7d)")
	level := fs.String("level", "", "filter by level (debug, info, warn, error)")
	limit := fs.Int("limit", 50, "max rows to show")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	setupLogging("error") // quiet for CLI output

	journal, err := target.OpenJournal(cfg.JournalPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening journal: %v\n", err)
		os.Exit(1)
	}
	defer journal.Close()

	since, err := parseDuration(*last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --last value %q: %v\n", *last, err)
		os.Exit(1)
	}

	rows, err := journal.Query(target.JournalFilter{
		Since: time.Now().Add(-since),
		Level: strings.ToLower(*level),
		Limit: *limit,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "query error: %v\n", err)
		os.Exit(1)
	}

	if len(rows) == 0 {
		fmt.Println("No records found.")
		return
	}

	for _, row := range rows {
		fmt.Printf("%s  [%-5s] %-12s %s\n", row.Stamp, row.Level, row.Destination, row.Message)
	}
	fmt.Printf("Total: %d record(s)\n", len(rows))
}

// parseDuration extends time.ParseDuration with support for "d" (days) suffix.
func parseDuration(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		s = strings.TrimSuffix(s, "d")
		var days int
		if _, err := fmt.Sscanf(s, "%d", &days); err != nil {
			return 0, fmt.Errorf("invalid days format: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// --- utilities ---

func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

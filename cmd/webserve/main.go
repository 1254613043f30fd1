package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rpellegrini/webserve/internal/logger"
	"github.com/rpellegrini/webserve/pkg/adapter/httpd"
	"github.com/rpellegrini/webserve/pkg/config"
	"github.com/rpellegrini/webserve/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (YAML)")
	logLevel := flag.String("log-level", "", "Log level override (DEBUG, INFO, WARN, ERROR)")
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Positional arguments override the config file: [port [host [threads]]]
	if err := applyArgs(cfg, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n", err)
		usage()
		os.Exit(2)
	}

	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("webserve starting (log level %s)", cfg.Logging.Level)

	resources, err := config.CreateResourceStore(ctx, &cfg.Resources)
	if err != nil {
		log.Fatalf("Failed to create resource store: %v", err)
	}
	if err := resources.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize resource store: %v", err)
	}
	defer resources.Close()

	uploads, err := config.CreateUploadStore(ctx, &cfg.Uploads)
	if err != nil {
		log.Fatalf("Failed to create upload store: %v", err)
	}
	if err := uploads.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize upload store: %v", err)
	}
	defer uploads.Close()

	httpAdapter, err := httpd.NewHTTPAdapter(cfg.Adapters.HTTP)
	if err != nil {
		log.Fatalf("Failed to create HTTP adapter: %v", err)
	}

	srv := server.New(resources, uploads)
	if err := srv.AddAdapter(httpAdapter); err != nil {
		log.Fatalf("Failed to register HTTP adapter: %v", err)
	}

	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Server failed: %v", err)
	}

	logger.Info("webserve stopped")
}

// applyArgs overlays the optional positional arguments onto the loaded
// configuration.
func applyArgs(cfg *config.Config, args []string) error {
	if len(args) > 3 {
		return fmt.Errorf("too many arguments")
	}

	if len(args) >= 1 {
		port, err := strconv.Atoi(args[0])
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("invalid port %q", args[0])
		}
		cfg.Adapters.HTTP.Port = port
	}

	if len(args) >= 2 {
		cfg.Adapters.HTTP.Host = args[1]
	}

	if len(args) == 3 {
		threads, err := strconv.Atoi(args[2])
		if err != nil || threads < 1 {
			return fmt.Errorf("invalid thread count %q", args[2])
		}
		cfg.Adapters.HTTP.Workers = threads
	}

	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s [flags] [port [host [threads]]]

Serves static files over HTTP/1.1 and accepts JSON uploads on the configured
upload path.

Flags:
`, os.Args[0])
	flag.PrintDefaults()
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Bibi40k/vsphere-mcp/configs"
	"github.com/Bibi40k/vsphere-mcp/internal/config"
	"github.com/Bibi40k/vsphere-mcp/pkg/mcpserver"
	"github.com/Bibi40k/vsphere-mcp/pkg/task"
	"github.com/Bibi40k/vsphere-mcp/pkg/vcenter"
	"github.com/Bibi40k/vsphere-mcp/pkg/vmops"
)

// loadConfig reads the environment and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	if transport != "" {
		cfg.Server.Transport = strings.ToLower(transport)
	}
	if httpAddr != "" {
		cfg.Server.HTTPAddr = httpAddr
	}
	if logLevel != "" {
		cfg.Logging.Level = strings.ToUpper(logLevel)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, &config.Error{Err: err}
	}
	return cfg, nil
}

// connect opens the vCenter session and resolves the default placement.
// The caller owns the returned client and must disconnect it.
func connect(ctx context.Context, cfg *config.Config, log *slog.Logger) (*vcenter.Client, *vcenter.Placement, error) {
	client, err := vcenter.NewClient(ctx, &vcenter.Config{
		Host:     cfg.VCenter.Host,
		Username: cfg.VCenter.User,
		Password: cfg.VCenter.Password,
		Insecure: cfg.VCenter.Insecure,
		Logger:   log,
	})
	if err != nil {
		return nil, nil, err
	}

	placement, err := client.ResolvePlacement(ctx, vcenter.PlacementConfig{
		Datacenter: cfg.Placement.Datacenter,
		Cluster:    cfg.Placement.Cluster,
		Datastore:  cfg.Placement.Datastore,
		Network:    cfg.Placement.Network,
	})
	if err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, nil, fmt.Errorf("failed to resolve placement: %w", err)
	}
	return client, placement, nil
}

func setupLogger(cfg *config.Config) *slog.Logger {
	out, level := logOutput(cfg.Logging.Level)
	log := newLogger(out, level, cfg.Logging.Format)
	slog.SetDefault(log)
	return log
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := setupLogger(cfg)

	client, placement, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.WithoutCancel(ctx)); err != nil {
			log.Warn("Failed to log out of vCenter", "error", err)
		}
	}()

	driver := task.NewDriver(client.Vim25(),
		task.WithPollInterval(cfg.Tasks.PollInterval),
		task.WithTimeout(cfg.Tasks.Timeout),
		task.WithLogger(log),
	)
	mgr := vmops.NewFromClient(client, placement, driver, log)
	srv := mcpserver.New(mgr, mcpserver.Options{Version: version, Logger: log})

	switch cfg.Server.Transport {
	case "http":
		return srv.ServeHTTP(ctx, mcpserver.HTTPOptions{
			Addr:            cfg.Server.HTTPAddr,
			EndpointPath:    configs.Defaults.Server.EndpointPath,
			ShutdownTimeout: configs.Defaults.Server.ShutdownTimeout(),
		})
	default:
		return srv.ServeStdio(ctx, os.Stdin, os.Stdout)
	}
}

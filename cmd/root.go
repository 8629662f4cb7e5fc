package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ngworks1909/pulse-backend/app"
	"github.com/ngworks1909/pulse-backend/config"
	"github.com/ngworks1909/pulse-backend/infra/logger"
)

var (
	cfgPath string
	workers int
)

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Bus fare monitoring and alert dispatch service",
	Long: "pulse periodically checks live bus fares for every trip carrying " +
		"un-notified alerts and pushes a notification to each user whose " +
		"target price is met.",
	RunE: run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "override the configured sweep worker count")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig loads the configuration file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if workers > 0 {
		cfg.Sweep.Workers = workers
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logg := logger.New("main")
	logg.Infof("starting sweep service: interval %dm, %d workers, store %s",
		cfg.Sweep.IntervalMinutes, cfg.Sweep.Workers, cfg.Store.Path)

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}

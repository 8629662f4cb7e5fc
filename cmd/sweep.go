package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ngworks1909/pulse-backend/app"
	"github.com/ngworks1909/pulse-backend/infra/logger"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a single fare sweep and exit",
	RunE:  sweepOnce,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func sweepOnce(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	logg := logger.New("sweep-command")
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("service close: %v", err)
		}
	}()

	res := svc.Manager.Sweep(ctx)
	logg.Infof("sweep %s: %d trips, %d failed, %d alerts notified in %s",
		res.SweepID, res.Trips, res.Failed, res.Notified, res.Duration)
	if res.Failed > 0 {
		return fmt.Errorf("%d of %d trips failed", res.Failed, res.Trips)
	}
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/campuspub/publication-portal/internal/core/events"
	"github.com/campuspub/publication-portal/internal/request"
	requestpg "github.com/campuspub/publication-portal/internal/request/postgres"
	"github.com/campuspub/publication-portal/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start and manage background jobs like attachment cleanup.`,
}

var sweepWorkerCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Start the orphan attachment sweeper",
	Long:  `Run a scheduled job that removes attachment blobs whose publication request was deleted`,
	Run: func(cmd *cobra.Command, args []string) {
		startSweepWorker()
	},
}

var sweepSchedule string

func startSweepWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if config.Logging.Format == "json" {
		logger.Init("production")
	} else {
		logger.Init("development")
	}
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	gormDB, err := initGorm(db, config.Database.Driver)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize orm: %v\n", err)
		os.Exit(1)
	}

	bus := events.NewEventBus(lg)
	service := request.NewService(requestpg.NewRequestRepository(gormDB), bus, lg)

	scheduler := cron.New()
	_, err = scheduler.AddFunc(sweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		removed, err := service.SweepOrphanAttachments(ctx)
		if err != nil {
			lg.Error("attachment sweep failed", "error", err)
			return
		}
		lg.Info("attachment sweep completed", "removed", removed)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to schedule sweep job: %v\n", err)
		os.Exit(1)
	}

	lg.Info("starting sweep worker", "schedule", sweepSchedule)
	scheduler.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	lg.Info("received signal, stopping worker", "signal", sig)

	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		lg.Warn("timed out waiting for running jobs")
	}
}

func init() {
	sweepWorkerCmd.Flags().StringVar(&sweepSchedule, "schedule", "@hourly", "cron schedule for the sweep job")
	workerCmd.AddCommand(sweepWorkerCmd)
	rootCmd.AddCommand(workerCmd)
}

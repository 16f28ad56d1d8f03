package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/beacon/internal/core/events"
	"github.com/frahmantamala/beacon/internal/invitation"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers: the invitation reconciler and the event bus listener.`,
}

var reconcileWorkerCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Repair invitations whose member already joined",
	Long:  `Periodically marks PENDING invitations as ACCEPTED when the invitee's profile exists, and backfills the matching audit entry.`,
	Run: func(cmd *cobra.Command, args []string) {
		startReconcileWorker()
	},
}

var eventWorkerCmd = &cobra.Command{
	Use:   "events",
	Short: "Start event bus worker",
	Long:  `Start the event bus with logging handlers for tenant events`,
	Run: func(cmd *cobra.Command, args []string) {
		startEventWorker()
	},
}

var (
	reconcileSchedule string
	reconcileBatch    int
	reconcileOnce     bool
)

func startReconcileWorker() {
	ctx := context.Background()
	deps, err := initializeDependencies(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	lg := deps.Logger

	schedule := getStringFlag(reconcileSchedule, deps.Config.Worker.GetSchedule())
	batch := getIntFlag(reconcileBatch, deps.Config.Worker.GetBatchSize())
	reconciler := invitation.NewReconciler(deps.Invitations, deps.Users, deps.Audit, batch, lg)

	run := func() {
		runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		if _, err := reconciler.Reconcile(runCtx); err != nil {
			lg.Error().Err(err).Msg("reconcile run failed")
		}
	}

	if reconcileOnce {
		run()
		deps.Close(ctx)
		return
	}

	c := cron.New(cron.WithLogger(cronLogger{lg}), cron.WithChain(cron.SkipIfStillRunning(cronLogger{lg})))
	if _, err := c.AddFunc(schedule, run); err != nil {
		lg.Error().Err(err).Str("schedule", schedule).Msg("invalid reconcile schedule")
		os.Exit(1)
	}

	lg.Info().
		Str("schedule", schedule).
		Int("batch_size", batch).
		Msg("reconcile worker is running. Press Ctrl+C to stop.")
	c.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	lg.Info().Str("signal", sig.String()).Msg("received signal, shutting down reconcile worker")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	select {
	case <-c.Stop().Done():
		lg.Info().Msg("reconcile worker shutdown complete")
	case <-shutdownCtx.Done():
		lg.Warn().Msg("shutdown timeout reached, forcing exit")
	}
	deps.Close(shutdownCtx)
}

func startEventWorker() {
	ctx := context.Background()
	deps, err := initializeDependencies(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	lg := deps.Logger

	for _, eventType := range []string{
		events.EventTypeOrganizationProvisioned,
		events.EventTypeInvitationCreated,
		events.EventTypeInvitationAccepted,
	} {
		deps.Bus.Subscribe(eventType, logEvent(lg))
	}

	lg.Info().Msg("event bus is running. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	lg.Info().Str("signal", sig.String()).Msg("received signal, shutting down event bus")
	deps.Close(context.Background())
	lg.Info().Msg("event bus shutdown complete")
}

func logEvent(lg zerolog.Logger) events.Handler {
	return func(ctx context.Context, event events.Event) error {
		lg.Info().
			Str("event_id", event.EventID()).
			Str("event_type", event.EventType()).
			Interface("payload", event.Payload()).
			Msg("received event")
		return nil
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	lg zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.lg.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.lg.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	reconcileWorkerCmd.Flags().StringVar(&reconcileSchedule, "schedule", "", "Cron schedule (overrides config)")
	reconcileWorkerCmd.Flags().IntVar(&reconcileBatch, "batch-size", 0, "Invitations per run (overrides config)")
	reconcileWorkerCmd.Flags().BoolVar(&reconcileOnce, "once", false, "Run a single reconcile pass and exit")

	workerCmd.AddCommand(reconcileWorkerCmd)
	workerCmd.AddCommand(eventWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/beacon/internal/core/events"
	"github.com/frahmantamala/beacon/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage events: publish test events to the in-process bus`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long:  `Publish a test event to the event bus for testing and debugging`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishTestEvent(args[0])
	},
}

var (
	eventData string
	eventSync bool
)

func publishTestEvent(eventType string) {
	lg := logger.LoggerWrapper()

	eventBus := events.NewEventBus(lg)
	eventBus.Subscribe(eventType, logEvent(lg))

	testEvent := events.BaseEvent{
		ID:        fmt.Sprintf("test-%d", time.Now().Unix()),
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message": eventData,
			"source":  "cli-command",
		},
	}

	lg.Info().Str("event_type", eventType).Str("event_id", testEvent.ID).Msg("publishing test event")

	publish := eventBus.Publish
	if eventSync {
		publish = eventBus.PublishSync
	}
	if err := publish(context.Background(), testEvent); err != nil {
		lg.Error().Err(err).Msg("failed to publish event")
		return
	}

	eventBus.Wait()
	lg.Info().Msg("test event published successfully")
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event data message")
	publishEventCmd.Flags().BoolVar(&eventSync, "sync", false, "Run handlers inline and report the first handler error")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}

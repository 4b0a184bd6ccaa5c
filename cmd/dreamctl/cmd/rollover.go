package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dreamtrack/dreamtrack/internal/app"
	"github.com/dreamtrack/dreamtrack/internal/config"
)

func RolloverCmd() *cobra.Command {
	var userID string

	rolloverCmd := &cobra.Command{
		Use:   "rollover",
		Short: "Roll users forward to the current week",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.New(config.Load())
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			defer application.Close()

			ctx := context.Background()

			if userID != "" {
				doc, err := application.RolloverService.CheckAndRoll(ctx, userID)
				if err != nil {
					return err
				}
				fmt.Printf("user %s is on week %s (%d goals)\n", userID, doc.WeekID, len(doc.Goals))
				return nil
			}

			return application.RolloverService.SweepAll(ctx)
		},
	}

	rolloverCmd.Flags().StringVar(&userID, "user", "", "roll a single user instead of all users")

	return rolloverCmd
}

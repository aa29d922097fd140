package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fleet-console/fleet-console/internal/config"
	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/fleet-console/fleet-console/internal/http/viewmodels"
	"github.com/fleet-console/fleet-console/internal/logging"
	"github.com/spf13/cobra"
)

var activitiesCmd = &cobra.Command{
	Use:         "activities",
	Short:       "Print the Fleet activity feed.",
	Args:        cobra.NoArgs,
	Annotations: structuredLog(),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		perPage, _ := cmd.Flags().GetInt("per-page")
		if page < 0 || perPage <= 0 {
			return usageError("--page must be >= 0 and --per-page must be > 0")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if _, err := logging.BootstrapFromEnv(logging.BootstrapOptions{Command: cmd.CommandPath(), Writer: cmd.ErrOrStderr(), FleetURL: cfg.FleetURL}); err != nil {
			return err
		}
		client, err := newFleetClient(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runActivities(ctx, cmd.OutOrStdout(), client, fleetapi.ListOptions{Page: page, PerPage: perPage}, time.Now())
	},
}

func init() {
	activitiesCmd.Flags().Int("page", 0, "Zero-based page")
	activitiesCmd.Flags().Int("per-page", 20, "Activities per page")
}

type activityLister interface {
	ListActivities(ctx context.Context, opts fleetapi.ListOptions) (fleetapi.ActivitiesPage, error)
}

// runActivities prints one line per activity: when, who and what.
func runActivities(ctx context.Context, out io.Writer, api activityLister, opts fleetapi.ListOptions, now time.Time) error {
	page, err := api.ListActivities(ctx, opts)
	if err != nil {
		return err
	}
	if len(page.Activities) == 0 {
		_, err := fmt.Fprintln(out, "Fleet has not recorded any activity.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tACTOR\tACTIVITY")
	for _, a := range page.Activities {
		when := "---"
		if rel, ok := viewmodels.ActivityRelativeTime(a.CreatedAt, now); ok {
			when = rel
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", when, viewmodels.ActorName(a), viewmodels.ActivityDescription(a.Type))
	}
	if page.Meta.HasNextResults {
		fmt.Fprintf(tw, "\t\t(more on page %d)\n", opts.Page+1)
	}
	return tw.Flush()
}

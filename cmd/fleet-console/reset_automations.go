package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/fleet-console/fleet-console/internal/config"
	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/fleet-console/fleet-console/internal/logging"
	"github.com/spf13/cobra"
)

var resetAutomationsCmd = &cobra.Command{
	Use:         "reset-automations",
	Short:       "Reset policy automations for teams or policies.",
	Args:        cobra.NoArgs,
	Annotations: structuredLog(),
	RunE: func(cmd *cobra.Command, args []string) error {
		teamIDs, _ := cmd.Flags().GetUintSlice("team-id")
		policyIDs, _ := cmd.Flags().GetUintSlice("policy-id")
		ids, err := resetAutomationIDs(teamIDs, policyIDs)
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger, err := logging.BootstrapFromEnv(logging.BootstrapOptions{Command: cmd.CommandPath(), FleetURL: cfg.FleetURL})
		if err != nil {
			return err
		}
		client, err := newFleetClient(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runResetAutomations(ctx, logger, client, ids)
	},
}

func init() {
	resetAutomationsCmd.Flags().UintSlice("team-id", nil, "Team id whose policy automations are reset (repeatable)")
	resetAutomationsCmd.Flags().UintSlice("policy-id", nil, "Policy id whose automations are reset (repeatable)")
}

type automationResetter interface {
	ResetAutomations(ctx context.Context, ids fleetapi.ResetAutomationIDs) error
}

func resetAutomationIDs(teamIDs, policyIDs []uint) (fleetapi.ResetAutomationIDs, error) {
	if len(teamIDs) == 0 && len(policyIDs) == 0 {
		return fleetapi.ResetAutomationIDs{}, usageError("at least one --team-id or --policy-id is required")
	}
	normalize := func(ids []uint) []uint {
		ids = slices.Clone(ids)
		slices.Sort(ids)
		return slices.Compact(ids)
	}
	return fleetapi.ResetAutomationIDs{TeamIDs: normalize(teamIDs), PolicyIDs: normalize(policyIDs)}, nil
}

func runResetAutomations(ctx context.Context, logger *slog.Logger, api automationResetter, ids fleetapi.ResetAutomationIDs) error {
	if err := api.ResetAutomations(ctx, ids); err != nil {
		return err
	}
	logger.Info("automations reset", "team_ids", ids.TeamIDs, "policy_ids", ids.PolicyIDs)
	return nil
}

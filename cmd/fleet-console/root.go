package main

import (
	"github.com/fleet-console/fleet-console/internal/config"
	"github.com/fleet-console/fleet-console/internal/fleetapi"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "fleet-console",
	Short:         "fleet-console is a server-rendered console for a Fleet device management server.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		recordCommandExecutionContext(cmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd, loginCmd, resetAutomationsCmd, activitiesCmd)
}

// newFleetClient builds the token-authenticated API client shared by the
// commands that talk to Fleet.
func newFleetClient(cfg config.Config) (*fleetapi.Client, error) {
	client, err := fleetapi.New(cfg.FleetURL, cfg.FleetAPIToken, cfg.FleetRequestTimeout)
	if err != nil {
		return nil, err
	}
	client.Limiter = fleetapi.NewLimiter(cfg.FleetAPIRPS)
	return client, nil
}

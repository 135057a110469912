package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"agentforce/pkg/auth"
	"agentforce/pkg/connector"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the Agentforce configuration without contacting the org",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}

		conn := connector.New(cfg.Agentforce, nil)
		if err := conn.Validate(); err != nil {
			return err
		}
		if err := conn.Build(); err != nil {
			return err
		}

		mode := "remote"
		if cfg.Agentforce.SimulationMode {
			mode = "simulation"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "configuration ok (grant %s, mode %s)\n", auth.GrantFor(cfg.Agentforce), mode)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

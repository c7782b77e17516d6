package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dokomo/dokomo/internal/shell/render"
)

// describeCmd prints one deployment node by node.
var describeCmd = &cobra.Command{
	Use:   "describe NAME",
	Short: "Show a deployment's nodes and connection string",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := newEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		dep, err := eng.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		render.DeploymentDetail(os.Stdout, dep)
		return nil
	},
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dokomo/dokomo/internal/shell/render"
)

var listAll bool

// listCmd prints every deployment discovered from container labels.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List deployments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := newEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		deps, err := eng.Reconcile(cmd.Context(), listAll)
		if err != nil {
			return err
		}
		render.DeploymentList(os.Stdout, deps)
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include stopped deployments")
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// startCmd restarts a stopped deployment in planning order.
var startCmd = &cobra.Command{
	Use:   "start NAME",
	Short: "Start a stopped deployment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := newEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := eng.Start(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("started %s (%d nodes)\n", res.Deployment, len(res.Succeeded))
		return nil
	},
}

// stopCmd halts a deployment's containers, keeping data and network.
var stopCmd = &cobra.Command{
	Use:   "stop NAME",
	Short: "Stop a deployment without removing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := newEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := eng.Stop(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("stopped %s (%d nodes)\n", res.Deployment, len(res.Succeeded))
		return nil
	},
}

// removeCmd tears a deployment down: containers, volumes, and network if
// nothing else uses it.
var removeCmd = &cobra.Command{
	Use:     "remove NAME",
	Aliases: []string{"rm"},
	Short:   "Remove a deployment and its data",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := newEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := eng.Remove(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("removed %s (%d nodes)\n", res.Deployment, len(res.Succeeded))
		return nil
	},
}

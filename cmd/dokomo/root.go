package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dokomo/dokomo/internal/core/topology"
	"github.com/dokomo/dokomo/internal/shell/docker"
	"github.com/dokomo/dokomo/internal/shell/engine"
)

// Exit codes for CLI commands.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0
	// ExitError indicates a general error.
	ExitError = 1
	// ExitInvalidTopology indicates the requested deployment shape is invalid.
	ExitInvalidTopology = 2
	// ExitRuntimeUnavailable indicates the Docker daemon could not be reached.
	ExitRuntimeUnavailable = 3
	// ExitNotFound indicates the named deployment does not exist.
	ExitNotFound = 4
)

var (
	flagConfig   string
	flagLogLevel string

	cfg    *Config
	logger *slog.Logger
)

// rootCmd is the base command for the dokomo application.
var rootCmd = &cobra.Command{
	Use:   "dokomo",
	Short: "Provision and manage local MongoDB topologies on Docker",
	Long: `dokomo plans, creates, and manages multi-node MongoDB deployments
(standalone instances, replica sets, and sharded clusters) as Docker
containers. Deployments carry their full description in container labels,
so any dokomo invocation can discover and manage them without a state file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		if flagLogLevel != "" {
			cfg.Log.Level = flagLogLevel
		}
		logger = SetupLogger(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(removeCmd)
}

// Execute runs the root command and maps errors to semantic exit codes.
func Execute() int {
	rootCmd.Version = fmt.Sprintf("%s (built %s)", Version, BuildTime)
	if err := rootCmd.Execute(); err != nil {
		return exitCode(err)
	}
	return ExitSuccess
}

// exitCode maps an error to its exit code for scripting.
func exitCode(err error) int {
	switch {
	case errors.Is(err, topology.ErrInvalidTopology):
		return ExitInvalidTopology
	case errors.Is(err, docker.ErrRuntimeUnavailable):
		return ExitRuntimeUnavailable
	case errors.Is(err, engine.ErrDeploymentNotFound):
		return ExitNotFound
	default:
		return ExitError
	}
}

// newEngine connects to the runtime and wires up an engine. The returned
// cleanup closes the connection.
func newEngine() (*engine.Engine, func(), error) {
	client, err := docker.NewClient(cfg.Docker.Host)
	if err != nil {
		return nil, nil, err
	}
	eng := engine.New(client, engine.WithLogger(logger))
	cleanup := func() {
		if cerr := client.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "closing docker client: %v\n", cerr)
		}
	}
	return eng, cleanup, nil
}

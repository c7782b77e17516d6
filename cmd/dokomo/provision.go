package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dokomo/dokomo/internal/core/domain"
	"github.com/dokomo/dokomo/internal/core/topology"
	"github.com/dokomo/dokomo/internal/shell/render"
)

var provisionFlags struct {
	name          string
	replicas      int
	shards        int
	configServers int
	routers       int
	port          int
	imageRepo     string
	imageTag      string
	network       string
	username      string
	password      string
	ephemeral     bool
}

// provisionCmd creates a new deployment of the requested variant.
var provisionCmd = &cobra.Command{
	Use:       "provision {standalone|replica-set|sharded|cluster-local}",
	Short:     "Create a new MongoDB deployment",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"standalone", "replica-set", "sharded", "cluster-local"},
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := topology.ConfigurationSpec{
			Name:          provisionFlags.name,
			Variant:       domain.Variant(args[0]),
			Replicas:      provisionFlags.replicas,
			Shards:        provisionFlags.shards,
			ConfigServers: provisionFlags.configServers,
			Routers:       provisionFlags.routers,
			StartPort:     provisionFlags.port,
			ImageRepo:     provisionFlags.imageRepo,
			ImageTag:      provisionFlags.imageTag,
			Network:       provisionFlags.network,
			Username:      provisionFlags.username,
			Password:      provisionFlags.password,
			Ephemeral:     provisionFlags.ephemeral,
		}
		if spec.Network == "" {
			spec.Network = cfg.Defaults.Network
		}
		if spec.ImageTag == "" {
			spec.ImageTag = cfg.Defaults.ImageTag
		}

		eng, cleanup, err := newEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		dep, err := eng.Provision(cmd.Context(), spec)
		if err != nil {
			return err
		}
		render.DeploymentDetail(os.Stdout, dep)
		return nil
	},
}

func init() {
	f := provisionCmd.Flags()
	f.StringVar(&provisionFlags.name, "name", "", "deployment name (generated if empty)")
	f.IntVar(&provisionFlags.replicas, "replicas", 0, fmt.Sprintf("members per replica set (default %d)", topology.DefaultReplicas))
	f.IntVar(&provisionFlags.shards, "shards", 0, fmt.Sprintf("number of shards (default %d)", topology.DefaultShards))
	f.IntVar(&provisionFlags.configServers, "config-servers", 0, fmt.Sprintf("number of config servers (default %d)", topology.DefaultConfigServers))
	f.IntVar(&provisionFlags.routers, "routers", 0, fmt.Sprintf("number of mongos routers (default %d)", topology.DefaultRouters))
	f.IntVar(&provisionFlags.port, "port", 0, fmt.Sprintf("first host port to allocate from (default %d)", topology.DefaultStartPort))
	f.StringVar(&provisionFlags.imageRepo, "image-repo", "", "image repository")
	f.StringVar(&provisionFlags.imageTag, "image-tag", "", "image tag")
	f.StringVar(&provisionFlags.network, "network", "", "Docker network name (created if absent)")
	f.StringVar(&provisionFlags.username, "username", "", "root username (standalone and cluster-local only)")
	f.StringVar(&provisionFlags.password, "password", "", "root password")
	f.BoolVar(&provisionFlags.ephemeral, "ephemeral", false, "skip data volumes; data is lost on removal")
}

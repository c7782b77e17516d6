package topology

import (
	"errors"
	"fmt"

	"github.com/dokomo/dokomo/internal/core/domain"
)

// ErrInvalidTopology is returned when a ConfigurationSpec violates the
// minimum shape for its variant. It is always raised before any runtime
// call, so the caller can correct the input and retry.
var ErrInvalidTopology = errors.New("invalid topology")

// =============================================================================
// Configuration Spec
// =============================================================================

// Default shape values, matching the conventional MongoDB local setup.
const (
	DefaultStartPort     = 27017
	DefaultReplicas      = 3
	DefaultShards        = 2
	DefaultConfigServers = 1
	DefaultRouters       = 1
	DefaultImageRepo     = "mongo"
	DefaultImageTag      = "latest"
	DefaultNetwork       = "mongo-network"

	// ClusterLocalImageRepo is the image used by the single-node
	// cluster-local variant, which bundles its own bootstrap.
	ClusterLocalImageRepo = "mongodb/mongodb-atlas-local"
)

// ConfigurationSpec is the immutable input describing a desired deployment
// shape. Zero-valued counts are filled in by ApplyDefaults.
type ConfigurationSpec struct {
	Name          string
	Variant       domain.Variant
	Replicas      int
	Shards        int
	ConfigServers int
	Routers       int
	StartPort     int
	ImageRepo     string
	ImageTag      string
	Network       string
	Username      string
	Password      string
	Ephemeral     bool
}

// Image returns the full image reference.
func (s ConfigurationSpec) Image() string {
	return fmt.Sprintf("%s:%s", s.ImageRepo, s.ImageTag)
}

// AuthEnabled reports whether a root user should be created on the nodes.
func (s ConfigurationSpec) AuthEnabled() bool {
	return s.Username != "" && s.Password != ""
}

// ApplyDefaults fills unset fields with the package defaults. The deployment
// name is left alone: generating one requires knowledge of existing
// deployments and belongs to the caller.
func (s *ConfigurationSpec) ApplyDefaults() {
	if s.StartPort == 0 {
		s.StartPort = DefaultStartPort
	}
	if s.Replicas == 0 {
		s.Replicas = DefaultReplicas
	}
	if s.Shards == 0 {
		s.Shards = DefaultShards
	}
	if s.ConfigServers == 0 {
		s.ConfigServers = DefaultConfigServers
	}
	if s.Routers == 0 {
		s.Routers = DefaultRouters
	}
	if s.ImageRepo == "" {
		if s.Variant == domain.VariantClusterLocal {
			s.ImageRepo = ClusterLocalImageRepo
		} else {
			s.ImageRepo = DefaultImageRepo
		}
	}
	if s.ImageTag == "" {
		s.ImageTag = DefaultImageTag
	}
	if s.Network == "" {
		s.Network = DefaultNetwork
	}
}

// Validate checks the per-variant minimum shape. It never touches the
// runtime.
func (s ConfigurationSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: deployment name is required", ErrInvalidTopology)
	}
	switch s.Variant {
	case domain.VariantStandalone, domain.VariantClusterLocal:
	case domain.VariantReplicaSet:
		if s.Replicas < 1 {
			return fmt.Errorf("%w: a replica set requires at least one member, got %d", ErrInvalidTopology, s.Replicas)
		}
		if s.AuthEnabled() {
			// mongod refuses --auth together with --replSet unless members
			// share a keyfile, which we do not provision.
			return fmt.Errorf("%w: root credentials require internal member authentication (a shared keyfile) on a replica set; only standalone and cluster-local deployments support them", ErrInvalidTopology)
		}
	case domain.VariantSharded:
		if s.Shards < 1 {
			return fmt.Errorf("%w: a sharded cluster requires at least one shard, got %d", ErrInvalidTopology, s.Shards)
		}
		if s.ConfigServers < 1 {
			return fmt.Errorf("%w: a sharded cluster requires at least one config server, got %d", ErrInvalidTopology, s.ConfigServers)
		}
		if s.Routers < 1 {
			return fmt.Errorf("%w: a sharded cluster requires at least one router, got %d", ErrInvalidTopology, s.Routers)
		}
		if s.Replicas < 1 {
			return fmt.Errorf("%w: shards require at least one member each, got %d", ErrInvalidTopology, s.Replicas)
		}
		if s.AuthEnabled() {
			return fmt.Errorf("%w: root credentials require internal member authentication (a shared keyfile) on a sharded cluster; only standalone and cluster-local deployments support them", ErrInvalidTopology)
		}
	default:
		return fmt.Errorf("%w: unknown variant %q", ErrInvalidTopology, s.Variant)
	}
	if s.StartPort < 1 || s.StartPort > 65535 {
		return fmt.Errorf("%w: start port %d out of range", ErrInvalidTopology, s.StartPort)
	}
	return nil
}

// NodeCount returns the number of nodes the spec expands to.
func (s ConfigurationSpec) NodeCount() int {
	switch s.Variant {
	case domain.VariantSharded:
		return s.ConfigServers + s.Shards*s.Replicas + s.Routers
	case domain.VariantReplicaSet:
		return s.Replicas
	default:
		return 1
	}
}

// =============================================================================
// Node Spec
// =============================================================================

// NodeSpec is one planned container. Tier is the dependency ordinal: every
// node in tier n must be running and ready before any node in tier n+1 is
// created.
type NodeSpec struct {
	Name        string
	Role        domain.Role
	Ordinal     int
	Port        int
	Tier        int
	ReplsetName string
	ShardID     int
	// ConfigDB is the --configdb argument for routers, in
	// replset/host:port,... form. Empty for every other role.
	ConfigDB string
}

// Node converts the planned spec into a staged runtime node owned by the
// named deployment.
func (n NodeSpec) Node(deployment string) domain.Node {
	return domain.Node{
		Name:        n.Name,
		Deployment:  deployment,
		Role:        n.Role,
		Ordinal:     n.Ordinal,
		Port:        n.Port,
		ReplsetName: n.ReplsetName,
		ShardID:     n.ShardID,
		State:       domain.NodeCreated,
	}
}

// Tiers groups planned nodes by dependency tier, ascending. Within a tier,
// planning order is preserved.
func Tiers(specs []NodeSpec) [][]NodeSpec {
	var out [][]NodeSpec
	for _, spec := range specs {
		for spec.Tier >= len(out) {
			out = append(out, nil)
		}
		out[spec.Tier] = append(out[spec.Tier], spec)
	}
	return out
}

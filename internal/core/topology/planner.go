package topology

import (
	"fmt"
	"strings"

	"github.com/dokomo/dokomo/internal/core/domain"
)

// =============================================================================
// Topology Planner
// =============================================================================

// Plan expands a ConfigurationSpec into the ordered node specifications that
// realize it. The result is deterministic for identical input and prober
// behavior: ports form an increasing sequence in planning order, skipping
// ports already bound on the host.
//
// Planning order equals creation order: config servers, then each shard's
// members, then routers; single-group variants produce one tier.
func Plan(spec ConfigurationSpec, free PortFree) ([]NodeSpec, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	ports, err := AllocatePorts(spec.StartPort, spec.NodeCount(), free)
	if err != nil {
		return nil, err
	}

	switch spec.Variant {
	case domain.VariantStandalone:
		return []NodeSpec{{
			Name:    MemberName(spec.Name, 1),
			Role:    domain.RoleStandalone,
			Ordinal: 1,
			Port:    ports[0],
			Tier:    0,
		}}, nil

	case domain.VariantClusterLocal:
		return []NodeSpec{{
			Name:    MemberName(spec.Name, 1),
			Role:    domain.RoleStandalone,
			Ordinal: 1,
			Port:    ports[0],
			Tier:    0,
		}}, nil

	case domain.VariantReplicaSet:
		specs := make([]NodeSpec, 0, spec.Replicas)
		for i := 0; i < spec.Replicas; i++ {
			specs = append(specs, NodeSpec{
				Name:        MemberName(spec.Name, i+1),
				Role:        domain.RoleReplicaMember,
				Ordinal:     i + 1,
				Port:        ports[i],
				Tier:        0,
				ReplsetName: ReplsetName(spec.Name),
			})
		}
		return specs, nil

	case domain.VariantSharded:
		return planShardedCluster(spec, ports), nil

	default:
		return nil, fmt.Errorf("%w: unknown variant %q", ErrInvalidTopology, spec.Variant)
	}
}

func planShardedCluster(spec ConfigurationSpec, ports []int) []NodeSpec {
	specs := make([]NodeSpec, 0, len(ports))
	next := 0

	// Tier 0: config servers.
	for i := 0; i < spec.ConfigServers; i++ {
		specs = append(specs, NodeSpec{
			Name:        ConfigServerName(spec.Name, i+1),
			Role:        domain.RoleConfigServer,
			Ordinal:     i + 1,
			Port:        ports[next],
			Tier:        0,
			ReplsetName: ConfigReplsetName(spec.Name),
		})
		next++
	}
	configDB := configDBString(spec.Name, specs)

	// Tiers 1..Shards: one tier per shard member set. Shards are mutually
	// independent, but each shard's replica set is initiated as a unit, so
	// members of one shard share a tier.
	for s := 1; s <= spec.Shards; s++ {
		for i := 0; i < spec.Replicas; i++ {
			specs = append(specs, NodeSpec{
				Name:        ShardMemberName(spec.Name, s, i+1),
				Role:        domain.RoleShardMember,
				Ordinal:     i + 1,
				Port:        ports[next],
				Tier:        s,
				ReplsetName: ShardReplsetName(spec.Name, s),
				ShardID:     s,
			})
			next++
		}
	}

	// Final tier: routers, created only once every data-bearing tier is
	// ready and the config-server replica set is initiated.
	for i := 0; i < spec.Routers; i++ {
		specs = append(specs, NodeSpec{
			Name:     RouterName(spec.Name, i+1),
			Role:     domain.RoleRouter,
			Ordinal:  i + 1,
			Port:     ports[next],
			Tier:     spec.Shards + 1,
			ConfigDB: configDB,
		})
		next++
	}
	return specs
}

// configDBString renders the mongos --configdb argument:
// {csrsName}/{host:port,...}.
func configDBString(deployment string, configServers []NodeSpec) string {
	hosts := make([]string, 0, len(configServers))
	for _, cs := range configServers {
		hosts = append(hosts, fmt.Sprintf("%s:%d", cs.Name, cs.Port))
	}
	return fmt.Sprintf("%s/%s", ConfigReplsetName(deployment), strings.Join(hosts, ","))
}

// ShardConnectionString renders the addShard argument for one shard's member
// set: {replset}/{host:port,...}.
func ShardConnectionString(replset string, members []domain.Node) string {
	hosts := make([]string, 0, len(members))
	for _, m := range members {
		hosts = append(hosts, m.Addr())
	}
	return fmt.Sprintf("%s/%s", replset, strings.Join(hosts, ","))
}

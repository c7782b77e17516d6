package domain

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// Deployment States
// =============================================================================

// DeploymentState is derived from the states of a deployment's nodes, never
// stored anywhere.
type DeploymentState string

const (
	DeploymentRunning DeploymentState = "running"
	DeploymentStopped DeploymentState = "stopped"
	DeploymentPartial DeploymentState = "partial"
)

// DeriveState computes the aggregate state of a node group: running iff every
// node runs, stopped iff every node is stopped, partial otherwise.
func DeriveState(nodes []Node) DeploymentState {
	if len(nodes) == 0 {
		return DeploymentStopped
	}
	running, stopped := 0, 0
	for _, n := range nodes {
		switch n.State {
		case NodeRunning, NodeReady:
			running++
		case NodeStopped:
			stopped++
		}
	}
	switch {
	case running == len(nodes):
		return DeploymentRunning
	case stopped == len(nodes):
		return DeploymentStopped
	default:
		return DeploymentPartial
	}
}

// =============================================================================
// Deployment
// =============================================================================

// Deployment is the full named topology managed as a unit. Its identity is
// the set of containers sharing the deployment-name label; it exists exactly
// as long as at least one such container does.
type Deployment struct {
	Name           string          `json:"name"`
	Variant        Variant         `json:"variant"`
	Network        string          `json:"network,omitempty"`
	Nodes          []Node          `json:"nodes"`
	LastKnownState DeploymentState `json:"last_known_state"`
	// Anomalies records containers that carry the ownership label but could
	// not be interpreted. They never abort reconciliation of other
	// deployments.
	Anomalies []string `json:"anomalies,omitempty"`
}

// SortNodes orders nodes by assigned port, which matches planning order:
// ports are handed out as an increasing sequence across tiers.
func (d *Deployment) SortNodes() {
	sort.Slice(d.Nodes, func(i, j int) bool {
		return d.Nodes[i].Port < d.Nodes[j].Port
	})
}

// NodesByRole returns the deployment's nodes holding the given role, in
// ordinal order.
func (d *Deployment) NodesByRole(role Role) []Node {
	var out []Node
	for _, n := range d.Nodes {
		if n.Role == role {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out
}

// Shards groups the deployment's shard members by shard id, ordinal-ordered
// within each shard, shard ids ascending.
func (d *Deployment) Shards() [][]Node {
	byShard := map[int][]Node{}
	for _, n := range d.Nodes {
		if n.Role == RoleShardMember {
			byShard[n.ShardID] = append(byShard[n.ShardID], n)
		}
	}
	ids := make([]int, 0, len(byShard))
	for id := range byShard {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([][]Node, 0, len(ids))
	for _, id := range ids {
		members := byShard[id]
		sort.Slice(members, func(i, j int) bool { return members[i].Ordinal < members[j].Ordinal })
		out = append(out, members)
	}
	return out
}

// PortRange renders the deployment's port span, e.g. "27017-27022", or a
// single port for one-node deployments.
func (d *Deployment) PortRange() string {
	if len(d.Nodes) == 0 {
		return ""
	}
	lo, hi := d.Nodes[0].Port, d.Nodes[0].Port
	for _, n := range d.Nodes[1:] {
		if n.Port < lo {
			lo = n.Port
		}
		if n.Port > hi {
			hi = n.Port
		}
	}
	if lo == hi {
		return fmt.Sprintf("%d", lo)
	}
	return fmt.Sprintf("%d-%d", lo, hi)
}

// ConnectionString returns the mongodb:// URI for connecting to the
// deployment from the host.
func (d *Deployment) ConnectionString() string {
	switch d.Variant {
	case VariantReplicaSet:
		members := d.NodesByRole(RoleReplicaMember)
		hosts := make([]string, 0, len(members))
		for _, m := range members {
			hosts = append(hosts, m.LocalAddr())
		}
		return fmt.Sprintf("mongodb://%s/?replicaSet=%s", strings.Join(hosts, ","), d.Name)
	case VariantSharded:
		routers := d.NodesByRole(RoleRouter)
		hosts := make([]string, 0, len(routers))
		for _, r := range routers {
			hosts = append(hosts, r.LocalAddr())
		}
		return fmt.Sprintf("mongodb://%s", strings.Join(hosts, ","))
	default:
		if len(d.Nodes) == 0 {
			return ""
		}
		return fmt.Sprintf("mongodb://%s/?directConnection=true", d.Nodes[0].LocalAddr())
	}
}

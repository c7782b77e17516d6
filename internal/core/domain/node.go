package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// =============================================================================
// Variants and Roles
// =============================================================================

// Variant identifies the overall shape of a deployment.
type Variant string

const (
	VariantStandalone   Variant = "standalone"
	VariantReplicaSet   Variant = "replica-set"
	VariantSharded      Variant = "sharded"
	VariantClusterLocal Variant = "cluster-local"
)

// Role identifies the function of a single node within its deployment.
type Role string

const (
	RoleStandalone    Role = "standalone"
	RoleReplicaMember Role = "replica-member"
	RoleConfigServer  Role = "config-server"
	RoleShardMember   Role = "shard-member"
	RoleRouter        Role = "router"
)

// DataBearing reports whether nodes of this role hold data. Routers are the
// only stateless role.
func (r Role) DataBearing() bool {
	return r != RoleRouter
}

// =============================================================================
// Node States
// =============================================================================

// NodeState is the observed runtime state of a node's container.
type NodeState string

const (
	NodeCreated   NodeState = "created"
	NodeRunning   NodeState = "running"
	NodeReady     NodeState = "ready"
	NodeStopped   NodeState = "stopped"
	NodeRemoved   NodeState = "removed"
	NodeUnhealthy NodeState = "unhealthy"
)

// NodeStateFromContainer maps a Docker container state string to a NodeState.
func NodeStateFromContainer(state string) NodeState {
	switch state {
	case "running":
		return NodeRunning
	case "created":
		return NodeCreated
	case "exited", "paused":
		return NodeStopped
	default:
		return NodeUnhealthy
	}
}

// =============================================================================
// Ownership Labels
// =============================================================================

// Label keys stamped on every container dokomo creates. The container
// runtime's label store is the only durable record of a deployment.
const (
	LabelManaged    = "dokomo.managed"
	LabelDeployment = "dokomo.deployment"
	LabelVariant    = "dokomo.variant"
	LabelRole       = "dokomo.role"
	LabelOrdinal    = "dokomo.ordinal"
	LabelPort       = "dokomo.port"
	LabelReplset    = "dokomo.replset"
	LabelShard      = "dokomo.shard"
	LabelNetwork    = "dokomo.network"
)

// =============================================================================
// Node
// =============================================================================

// Node is one realized database process inside one container.
type Node struct {
	ContainerID string    `json:"container_id"`
	Name        string    `json:"name"`
	Deployment  string    `json:"deployment"`
	Role        Role      `json:"role"`
	Ordinal     int       `json:"ordinal"`
	Port        int       `json:"port"`
	ReplsetName string    `json:"replset_name,omitempty"`
	ShardID     int       `json:"shard_id,omitempty"`
	State       NodeState `json:"state"`
}

// Addr returns the node's address on the deployment network, where every
// container is aliased under its own name.
func (n Node) Addr() string {
	return fmt.Sprintf("%s:%d", n.Name, n.Port)
}

// LocalAddr returns the node's address as reachable from the host.
func (n Node) LocalAddr() string {
	return fmt.Sprintf("localhost:%d", n.Port)
}

// Labels returns the ownership labels for the node's container.
func (n Node) Labels(variant Variant) map[string]string {
	labels := map[string]string{
		LabelManaged:    "true",
		LabelDeployment: n.Deployment,
		LabelVariant:    string(variant),
		LabelRole:       string(n.Role),
		LabelOrdinal:    strconv.Itoa(n.Ordinal),
		LabelPort:       strconv.Itoa(n.Port),
	}
	if n.ReplsetName != "" {
		labels[LabelReplset] = n.ReplsetName
	}
	if n.Role == RoleShardMember {
		labels[LabelShard] = strconv.Itoa(n.ShardID)
	}
	return labels
}

// ErrCorruptLabels is returned by NodeFromLabels when a container carries the
// ownership label but its remaining labels cannot be interpreted.
var ErrCorruptLabels = errors.New("corrupt ownership labels")

// NodeFromLabels reconstructs a Node from a container's labels and observed
// state. The container name and ID come from the runtime, everything else
// from the labels written at creation time.
func NodeFromLabels(containerID, name, state string, labels map[string]string) (Node, error) {
	deployment := labels[LabelDeployment]
	if deployment == "" {
		return Node{}, fmt.Errorf("%w: container %s has no %s label", ErrCorruptLabels, name, LabelDeployment)
	}
	role := Role(labels[LabelRole])
	switch role {
	case RoleStandalone, RoleReplicaMember, RoleConfigServer, RoleShardMember, RoleRouter:
	default:
		return Node{}, fmt.Errorf("%w: container %s has unknown role %q", ErrCorruptLabels, name, labels[LabelRole])
	}
	ordinal, err := strconv.Atoi(labels[LabelOrdinal])
	if err != nil {
		return Node{}, fmt.Errorf("%w: container %s has unparsable ordinal %q", ErrCorruptLabels, name, labels[LabelOrdinal])
	}
	port, err := strconv.Atoi(labels[LabelPort])
	if err != nil {
		return Node{}, fmt.Errorf("%w: container %s has unparsable port %q", ErrCorruptLabels, name, labels[LabelPort])
	}
	shardID := 0
	if role == RoleShardMember {
		shardID, err = strconv.Atoi(labels[LabelShard])
		if err != nil {
			return Node{}, fmt.Errorf("%w: container %s has unparsable shard id %q", ErrCorruptLabels, name, labels[LabelShard])
		}
	}
	return Node{
		ContainerID: containerID,
		Name:        name,
		Deployment:  deployment,
		Role:        role,
		Ordinal:     ordinal,
		Port:        port,
		ReplsetName: labels[LabelReplset],
		ShardID:     shardID,
		State:       NodeStateFromContainer(state),
	}, nil
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// State Derivation Tests
// =============================================================================

func TestDeriveState(t *testing.T) {
	tests := []struct {
		name     string
		states   []NodeState
		expected DeploymentState
	}{
		{"all running", []NodeState{NodeRunning, NodeReady, NodeRunning}, DeploymentRunning},
		{"all stopped", []NodeState{NodeStopped, NodeStopped}, DeploymentStopped},
		{"mixed", []NodeState{NodeRunning, NodeStopped}, DeploymentPartial},
		{"unhealthy member", []NodeState{NodeRunning, NodeUnhealthy}, DeploymentPartial},
		{"no nodes", nil, DeploymentStopped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := make([]Node, len(tt.states))
			for i, s := range tt.states {
				nodes[i] = Node{State: s}
			}
			assert.Equal(t, tt.expected, DeriveState(nodes))
		})
	}
}

// =============================================================================
// Deployment Tests
// =============================================================================

func replicaSetDeployment() *Deployment {
	return &Deployment{
		Name:    "brisk-otter",
		Variant: VariantReplicaSet,
		Nodes: []Node{
			{Name: "brisk-otter-1", Role: RoleReplicaMember, Ordinal: 1, Port: 27017, State: NodeRunning},
			{Name: "brisk-otter-2", Role: RoleReplicaMember, Ordinal: 2, Port: 27018, State: NodeRunning},
			{Name: "brisk-otter-3", Role: RoleReplicaMember, Ordinal: 3, Port: 27019, State: NodeRunning},
		},
	}
}

func TestSortNodes(t *testing.T) {
	dep := replicaSetDeployment()
	dep.Nodes[0], dep.Nodes[2] = dep.Nodes[2], dep.Nodes[0]

	dep.SortNodes()
	assert.Equal(t, "brisk-otter-1", dep.Nodes[0].Name)
	assert.Equal(t, "brisk-otter-3", dep.Nodes[2].Name)
}

func TestPortRange(t *testing.T) {
	dep := replicaSetDeployment()
	assert.Equal(t, "27017-27019", dep.PortRange())

	single := &Deployment{Nodes: []Node{{Port: 27017}}}
	assert.Equal(t, "27017", single.PortRange())

	empty := &Deployment{}
	assert.Equal(t, "", empty.PortRange())
}

func TestShards_GroupedAndOrdered(t *testing.T) {
	dep := &Deployment{
		Name:    "shop",
		Variant: VariantSharded,
		Nodes: []Node{
			{Name: "shop-sh2-1", Role: RoleShardMember, ShardID: 2, Ordinal: 1, Port: 27020},
			{Name: "shop-sh1-2", Role: RoleShardMember, ShardID: 1, Ordinal: 2, Port: 27019},
			{Name: "shop-sh1-1", Role: RoleShardMember, ShardID: 1, Ordinal: 1, Port: 27018},
			{Name: "shop-cfg-1", Role: RoleConfigServer, Ordinal: 1, Port: 27017},
		},
	}

	shards := dep.Shards()
	require.Len(t, shards, 2)
	require.Len(t, shards[0], 2)
	assert.Equal(t, "shop-sh1-1", shards[0][0].Name)
	assert.Equal(t, "shop-sh1-2", shards[0][1].Name)
	assert.Equal(t, "shop-sh2-1", shards[1][0].Name)
}

// =============================================================================
// Connection String Tests
// =============================================================================

func TestConnectionString(t *testing.T) {
	t.Run("replica set", func(t *testing.T) {
		dep := replicaSetDeployment()
		assert.Equal(t,
			"mongodb://localhost:27017,localhost:27018,localhost:27019/?replicaSet=brisk-otter",
			dep.ConnectionString())
	})

	t.Run("sharded uses routers only", func(t *testing.T) {
		dep := &Deployment{
			Name:    "shop",
			Variant: VariantSharded,
			Nodes: []Node{
				{Name: "shop-cfg-1", Role: RoleConfigServer, Port: 27017},
				{Name: "shop-sh1-1", Role: RoleShardMember, ShardID: 1, Port: 27018},
				{Name: "shop-router-1", Role: RoleRouter, Port: 27019},
			},
		}
		assert.Equal(t, "mongodb://localhost:27019", dep.ConnectionString())
	})

	t.Run("standalone", func(t *testing.T) {
		dep := &Deployment{
			Name:    "solo",
			Variant: VariantStandalone,
			Nodes:   []Node{{Name: "solo-1", Role: RoleStandalone, Port: 27017}},
		}
		assert.Equal(t, "mongodb://localhost:27017/?directConnection=true", dep.ConnectionString())
	})
}

// =============================================================================
// Name Generation Tests
// =============================================================================

func TestGenerateName_Shape(t *testing.T) {
	name := GenerateName(nil)
	assert.Regexp(t, `^[a-z]+-[a-z]+$`, name)
}

func TestGenerateName_AvoidsTaken(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		name := GenerateName(func(n string) bool { return seen[n] })
		assert.False(t, seen[name], "generated a taken name %q", name)
		seen[name] = true
	}
}

func TestGenerateName_FallbackWhenAllTaken(t *testing.T) {
	// Every adjective-animal pair is taken; the generator must still
	// produce something unique via the uuid suffix.
	name := GenerateName(func(string) bool { return true })
	assert.Regexp(t, `^[a-z]+-[a-z]+-[0-9a-f]{8}$`, name)
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Node State Tests
// =============================================================================

func TestNodeStateFromContainer(t *testing.T) {
	tests := []struct {
		container string
		expected  NodeState
	}{
		{"running", NodeRunning},
		{"created", NodeCreated},
		{"exited", NodeStopped},
		{"paused", NodeStopped},
		{"dead", NodeUnhealthy},
		{"something-new", NodeUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.container, func(t *testing.T) {
			assert.Equal(t, tt.expected, NodeStateFromContainer(tt.container))
		})
	}
}

func TestRoleDataBearing(t *testing.T) {
	assert.True(t, RoleStandalone.DataBearing())
	assert.True(t, RoleReplicaMember.DataBearing())
	assert.True(t, RoleConfigServer.DataBearing())
	assert.True(t, RoleShardMember.DataBearing())
	assert.False(t, RoleRouter.DataBearing())
}

// =============================================================================
// Label Round-Trip Tests
// =============================================================================

func TestNodeLabelsRoundTrip(t *testing.T) {
	original := Node{
		ContainerID: "abc123",
		Name:        "shop-sh1-2",
		Deployment:  "shop",
		Role:        RoleShardMember,
		Ordinal:     2,
		Port:        27019,
		ReplsetName: "shop-sh1",
		ShardID:     1,
	}

	labels := original.Labels(VariantSharded)
	assert.Equal(t, "true", labels[LabelManaged])
	assert.Equal(t, "sharded", labels[LabelVariant])

	restored, err := NodeFromLabels("abc123", "shop-sh1-2", "running", labels)
	require.NoError(t, err)

	original.State = NodeRunning
	assert.Equal(t, original, restored)
}

func TestNodeFromLabels_Corrupt(t *testing.T) {
	valid := Node{
		Name:       "dep-1",
		Deployment: "dep",
		Role:       RoleReplicaMember,
		Ordinal:    1,
		Port:       27017,
	}.Labels(VariantReplicaSet)

	tests := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{"missing deployment", func(l map[string]string) { delete(l, LabelDeployment) }},
		{"unknown role", func(l map[string]string) { l[LabelRole] = "arbiter" }},
		{"unparsable ordinal", func(l map[string]string) { l[LabelOrdinal] = "first" }},
		{"unparsable port", func(l map[string]string) { l[LabelPort] = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels := map[string]string{}
			for k, v := range valid {
				labels[k] = v
			}
			tt.mutate(labels)

			_, err := NodeFromLabels("id", "dep-1", "running", labels)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCorruptLabels)
		})
	}
}

func TestNodeFromLabels_ShardIDRequired(t *testing.T) {
	labels := Node{
		Name:       "dep-sh1-1",
		Deployment: "dep",
		Role:       RoleShardMember,
		Ordinal:    1,
		Port:       27018,
		ShardID:    1,
	}.Labels(VariantSharded)
	delete(labels, LabelShard)

	_, err := NodeFromLabels("id", "dep-sh1-1", "running", labels)
	assert.ErrorIs(t, err, ErrCorruptLabels)
}

func TestNodeAddresses(t *testing.T) {
	n := Node{Name: "dep-1", Port: 27017}
	assert.Equal(t, "dep-1:27017", n.Addr())
	assert.Equal(t, "localhost:27017", n.LocalAddr())
}

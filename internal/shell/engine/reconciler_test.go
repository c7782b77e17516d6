package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dokomo/dokomo/internal/core/domain"
	"github.com/dokomo/dokomo/internal/core/topology"
	"github.com/dokomo/dokomo/internal/shell/docker"
)

// =============================================================================
// Reconcile Tests
// =============================================================================

func TestReconcile_RoundTrip(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	provisioned, err := h.engine.Provision(ctx, topology.ConfigurationSpec{
		Name:    "brisk-otter",
		Variant: domain.VariantReplicaSet,
	})
	require.NoError(t, err)

	deps, err := h.engine.Reconcile(ctx, false)
	require.NoError(t, err)
	require.Len(t, deps, 1)

	got := deps[0]
	assert.Equal(t, provisioned.Name, got.Name)
	assert.Equal(t, domain.VariantReplicaSet, got.Variant)
	assert.Equal(t, provisioned.Network, got.Network)
	assert.Equal(t, domain.DeploymentRunning, got.LastKnownState)
	require.Len(t, got.Nodes, 3)

	// Everything the planner decided survives the label round trip.
	for i, n := range got.Nodes {
		assert.Equal(t, provisioned.Nodes[i].Name, n.Name)
		assert.Equal(t, provisioned.Nodes[i].Port, n.Port)
		assert.Equal(t, provisioned.Nodes[i].Role, n.Role)
		assert.Equal(t, provisioned.Nodes[i].ReplsetName, n.ReplsetName)
	}
}

func TestReconcile_MultipleDeploymentsSorted(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	for _, name := range []string{"zebra", "aardvark"} {
		_, err := h.engine.Provision(ctx, topology.ConfigurationSpec{
			Name:      name,
			Variant:   domain.VariantStandalone,
			StartPort: 28000,
		})
		require.NoError(t, err)
	}

	deps, err := h.engine.Reconcile(ctx, false)
	require.NoError(t, err)
	require.Len(t, deps, 2)
	assert.Equal(t, "aardvark", deps[0].Name)
	assert.Equal(t, "zebra", deps[1].Name)
}

func TestReconcile_StoppedFiltering(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.engine.Provision(ctx, topology.ConfigurationSpec{
		Name:    "dormant",
		Variant: domain.VariantStandalone,
	})
	require.NoError(t, err)
	_, err = h.engine.Stop(ctx, "dormant")
	require.NoError(t, err)

	deps, err := h.engine.Reconcile(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, deps)

	deps, err = h.engine.Reconcile(ctx, true)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, domain.DeploymentStopped, deps[0].LastKnownState)
}

func TestReconcile_AnomalyIsolation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.engine.Provision(ctx, topology.ConfigurationSpec{
		Name:    "mostly-fine",
		Variant: domain.VariantStandalone,
	})
	require.NoError(t, err)

	// A container carrying the ownership labels but an uninterpretable role,
	// as left behind by a newer or corrupted tool version.
	_, err = h.gw.CreateContainer(ctx, docker.ContainerSpec{
		Name: "mostly-fine-mystery",
		Labels: map[string]string{
			domain.LabelManaged:    "true",
			domain.LabelDeployment: "mostly-fine",
			domain.LabelRole:       "arbiter",
			domain.LabelOrdinal:    "9",
			domain.LabelPort:       "29999",
		},
	})
	require.NoError(t, err)

	dep, err := h.engine.Get(ctx, "mostly-fine")
	require.NoError(t, err)

	// The healthy node is intact, the stranger is reported, not fatal.
	require.Len(t, dep.Nodes, 1)
	assert.Equal(t, "mostly-fine-1", dep.Nodes[0].Name)
	require.Len(t, dep.Anomalies, 1)
	assert.Contains(t, dep.Anomalies[0], "mostly-fine-mystery")
}

func TestGet_NotFound(t *testing.T) {
	h := newHarness()

	_, err := h.engine.Get(context.Background(), "never-existed")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeploymentNotFound)
}

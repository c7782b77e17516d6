package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dokomo/dokomo/internal/core/domain"
)

func TestDeploymentList_Empty(t *testing.T) {
	var buf bytes.Buffer
	DeploymentList(&buf, nil)
	assert.Contains(t, buf.String(), "no deployments found")
}

func TestDeploymentList_Rows(t *testing.T) {
	var buf bytes.Buffer
	DeploymentList(&buf, []*domain.Deployment{
		{
			Name:           "brisk-otter",
			Variant:        domain.VariantReplicaSet,
			LastKnownState: domain.DeploymentRunning,
			Nodes: []domain.Node{
				{Name: "brisk-otter-1", Port: 27017},
				{Name: "brisk-otter-2", Port: 27018},
			},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "brisk-otter")
	assert.Contains(t, out, "replica-set")
	assert.Contains(t, out, "running")
	assert.Contains(t, out, "27017-27018")
}

func TestDeploymentDetail(t *testing.T) {
	var buf bytes.Buffer
	DeploymentDetail(&buf, &domain.Deployment{
		Name:           "solo",
		Variant:        domain.VariantStandalone,
		LastKnownState: domain.DeploymentRunning,
		Nodes: []domain.Node{
			{Name: "solo-1", Role: domain.RoleStandalone, Port: 27017, State: domain.NodeRunning},
		},
		Anomalies: []string{"container solo-ghost has unknown role \"arbiter\""},
	})

	out := buf.String()
	assert.Contains(t, out, "solo-1")
	assert.Contains(t, out, "mongodb://localhost:27017/?directConnection=true")
	assert.Contains(t, out, "solo-ghost")
}

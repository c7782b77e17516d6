package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/dokomo/dokomo/internal/core/domain"
	"github.com/dokomo/dokomo/internal/shell/docker"
)

// =============================================================================
// State Reconciliation
// =============================================================================

// listManaged builds a label selector matching every container this engine
// owns, optionally narrowed to one deployment.
func listManaged(all bool, deployment string) docker.ListOptions {
	labels := map[string]string{domain.LabelManaged: "true"}
	if deployment != "" {
		labels[domain.LabelDeployment] = deployment
	}
	return docker.ListOptions{All: all, Labels: labels}
}

// Reconcile rebuilds the set of deployments from container labels. It is the
// only read path: there is no cached state to drift from the runtime.
//
// Containers whose labels cannot be interpreted are reported as anomalies on
// their deployment without failing the whole listing. When includeStopped is
// false, deployments whose every node is stopped are dropped from the result.
func (e *Engine) Reconcile(ctx context.Context, includeStopped bool) ([]*domain.Deployment, error) {
	infos, err := e.gw.ListContainers(ctx, listManaged(true, ""))
	if err != nil {
		return nil, err
	}
	deps := e.assemble(infos)

	out := make([]*domain.Deployment, 0, len(deps))
	for _, dep := range deps {
		if !includeStopped && dep.LastKnownState == domain.DeploymentStopped {
			continue
		}
		out = append(out, dep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get reconciles a single deployment by name, stopped or not.
func (e *Engine) Get(ctx context.Context, name string) (*domain.Deployment, error) {
	infos, err := e.gw.ListContainers(ctx, listManaged(true, name))
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDeploymentNotFound, name)
	}
	deps := e.assemble(infos)
	dep, ok := deps[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeploymentNotFound, name)
	}
	return dep, nil
}

// assemble groups observed containers into deployments, isolating containers
// with corrupt labels as anomalies instead of discarding the deployment.
func (e *Engine) assemble(infos []docker.ContainerInfo) map[string]*domain.Deployment {
	deps := make(map[string]*domain.Deployment)
	for _, info := range infos {
		name := info.Labels[domain.LabelDeployment]
		if name == "" {
			// Managed label without a deployment name: nothing to attach
			// the anomaly to, so log and move on.
			e.logger.Warn("managed container without deployment label",
				"container", info.Name, "id", info.ID)
			continue
		}
		dep := deps[name]
		if dep == nil {
			dep = &domain.Deployment{Name: name}
			deps[name] = dep
		}
		if dep.Variant == "" {
			dep.Variant = domain.Variant(info.Labels[domain.LabelVariant])
		}
		if dep.Network == "" {
			dep.Network = info.Labels[domain.LabelNetwork]
		}

		node, err := domain.NodeFromLabels(info.ID, info.Name, info.State, info.Labels)
		if err != nil {
			dep.Anomalies = append(dep.Anomalies, err.Error())
			continue
		}
		dep.Nodes = append(dep.Nodes, node)
	}
	for _, dep := range deps {
		dep.SortNodes()
		dep.LastKnownState = domain.DeriveState(dep.Nodes)
	}
	return deps
}

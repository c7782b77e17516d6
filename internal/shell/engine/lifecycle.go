package engine

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dokomo/dokomo/internal/core/domain"
	"github.com/dokomo/dokomo/internal/core/topology"
	"github.com/dokomo/dokomo/internal/shell/docker"
)

// stopTimeout is how long a mongod gets to flush and exit before the
// runtime kills it.
const stopTimeout = 10 * time.Second

// =============================================================================
// Lifecycle
// =============================================================================

// Stop halts every container of the named deployment, routers first so
// clients lose their entry points before the data they route to. Data
// volumes and the network stay in place; a later Start resumes from them.
//
// A node that fails to stop does not prevent the remaining nodes from being
// attempted. Stopping an already stopped deployment succeeds.
func (e *Engine) Stop(ctx context.Context, name string) (*Result, error) {
	dep, err := e.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	res := &Result{Deployment: name}
	// Reverse planning order: highest planned port first.
	for i := len(dep.Nodes) - 1; i >= 0; i-- {
		node := dep.Nodes[i]
		if err := e.gw.StopContainer(ctx, node.ContainerID, stopTimeout); err != nil {
			res.Failed = append(res.Failed, NodeOutcome{Node: node.Name, Err: err})
			continue
		}
		res.Succeeded = append(res.Succeeded, node.Name)
	}
	e.logger.Info("deployment stopped",
		"deployment", name,
		"stopped", len(res.Succeeded),
		"failed", len(res.Failed))
	if !res.OK() {
		return res, &PartialFailureError{Deployment: name, Succeeded: res.Succeeded, Failed: res.Failed}
	}
	return res, nil
}

// Start restarts a stopped deployment in planning order and waits for each
// node to answer commands again. Replica set membership lives in the data
// volumes, so no bootstrap commands are reissued. Starting a running
// deployment succeeds.
func (e *Engine) Start(ctx context.Context, name string) (*Result, error) {
	dep, err := e.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	res := &Result{Deployment: name}
	for _, node := range dep.Nodes {
		if err := e.gw.StartContainer(ctx, node.ContainerID); err != nil {
			res.Failed = append(res.Failed, NodeOutcome{Node: node.Name, Err: err})
			continue
		}
		res.Succeeded = append(res.Succeeded, node.Name)
	}
	if !res.OK() {
		return res, &PartialFailureError{Deployment: name, Succeeded: res.Succeeded, Failed: res.Failed}
	}

	// All containers are up; wait for the processes concurrently.
	probe := e.probeFor(dep.Variant)
	g, gctx := errgroup.WithContext(ctx)
	for _, node := range dep.Nodes {
		g.Go(func() error {
			return probe.AwaitReady(gctx, node)
		})
	}
	if err := g.Wait(); err != nil {
		return res, &PartialFailureError{Deployment: name, Succeeded: res.Succeeded, Cause: err}
	}
	e.logger.Info("deployment started", "deployment", name, "nodes", len(res.Succeeded))
	return res, nil
}

// Remove tears the deployment down completely: containers, data volumes,
// and, when no other container still uses it, the network. After a clean
// Remove no trace of the deployment is left on the runtime.
func (e *Engine) Remove(ctx context.Context, name string) (*Result, error) {
	dep, err := e.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	res := &Result{Deployment: name}
	for i := len(dep.Nodes) - 1; i >= 0; i-- {
		node := dep.Nodes[i]
		if err := e.removeNode(ctx, node); err != nil {
			res.Failed = append(res.Failed, NodeOutcome{Node: node.Name, Err: err})
			continue
		}
		res.Succeeded = append(res.Succeeded, node.Name)
	}

	if res.OK() && dep.Network != "" {
		// The network may be shared with other deployments; in-use is not
		// an error here.
		if err := e.gw.RemoveNetwork(ctx, dep.Network); err != nil && !errors.Is(err, docker.ErrNetworkInUse) {
			return res, &PartialFailureError{Deployment: name, Succeeded: res.Succeeded, Cause: err}
		}
	}

	e.logger.Info("deployment removed",
		"deployment", name,
		"removed", len(res.Succeeded),
		"failed", len(res.Failed))
	if !res.OK() {
		return res, &PartialFailureError{Deployment: name, Succeeded: res.Succeeded, Failed: res.Failed}
	}
	return res, nil
}

// removeNode stops and deletes one container together with its data volume.
func (e *Engine) removeNode(ctx context.Context, node domain.Node) error {
	if err := e.gw.StopContainer(ctx, node.ContainerID, stopTimeout); err != nil {
		return err
	}
	if err := e.gw.RemoveContainer(ctx, node.ContainerID); err != nil {
		return err
	}
	if node.Role.DataBearing() {
		// Absent volumes (ephemeral deployments) remove cleanly.
		if err := e.gw.RemoveVolume(ctx, topology.VolumeName(node.Name)); err != nil {
			return err
		}
	}
	return nil
}

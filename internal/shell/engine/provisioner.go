package engine

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dokomo/dokomo/internal/core/domain"
	"github.com/dokomo/dokomo/internal/core/topology"
	"github.com/dokomo/dokomo/internal/shell/docker"
	"github.com/dokomo/dokomo/internal/shell/mongo"
)

// =============================================================================
// Provisioning
// =============================================================================

// Provision plans and realizes a deployment from a configuration spec, then
// bootstraps replication and sharding until the deployment is usable.
//
// Tiers run strictly in sequence; nodes within a tier are created, started,
// and probed concurrently. On any failure the run stops, nothing already
// created is rolled back, and the returned error reports exactly which nodes
// came up before the abort.
func (e *Engine) Provision(ctx context.Context, spec topology.ConfigurationSpec) (*domain.Deployment, error) {
	spec.ApplyDefaults()

	existing, err := e.deploymentNames(ctx)
	if err != nil {
		return nil, err
	}
	if spec.Name == "" {
		spec.Name = domain.GenerateName(func(name string) bool {
			_, taken := existing[name]
			return taken
		})
	} else if _, taken := existing[spec.Name]; taken {
		return nil, fmt.Errorf("%w: %s", ErrNameCollision, spec.Name)
	}

	plan, err := topology.Plan(spec, e.portFree)
	if err != nil {
		return nil, err
	}

	logger := e.logger.With("deployment", spec.Name, "variant", string(spec.Variant))
	logger.Info("provisioning deployment",
		"nodes", len(plan),
		"image", spec.Image(),
		"network", spec.Network)

	if err := e.gw.EnsureImage(ctx, spec.Image()); err != nil {
		return nil, err
	}
	if _, err := e.gw.CreateNetwork(ctx, spec.Network); err != nil {
		return nil, err
	}

	dep := &domain.Deployment{
		Name:    spec.Name,
		Variant: spec.Variant,
		Network: spec.Network,
	}

	tiers := topology.Tiers(plan)

	// Data-bearing tiers first. For a sharded cluster the router tier is
	// held back until the config and shard replica sets are formed, because
	// mongos refuses to start against an uninitiated config server set.
	dataTiers, routerTier := tiers, []topology.NodeSpec(nil)
	if spec.Variant == domain.VariantSharded {
		dataTiers, routerTier = tiers[:len(tiers)-1], tiers[len(tiers)-1]
	}

	for _, tier := range dataTiers {
		nodes, err := e.realizeTier(ctx, spec, tier)
		dep.Nodes = append(dep.Nodes, nodes...)
		if err != nil {
			return nil, e.partial(dep, err)
		}
	}

	if err := e.formReplicaSets(ctx, spec, dep); err != nil {
		return nil, e.partial(dep, err)
	}

	if routerTier != nil {
		nodes, err := e.realizeTier(ctx, spec, routerTier)
		dep.Nodes = append(dep.Nodes, nodes...)
		if err != nil {
			return nil, e.partial(dep, err)
		}
		if err := e.registerShards(ctx, dep); err != nil {
			return nil, e.partial(dep, err)
		}
	}

	dep.SortNodes()
	dep.LastKnownState = domain.DeriveState(dep.Nodes)
	logger.Info("deployment ready", "connection_string", dep.ConnectionString())
	return dep, nil
}

// deploymentNames returns the set of deployment names currently present on
// the runtime, stopped deployments included.
func (e *Engine) deploymentNames(ctx context.Context) (map[string]struct{}, error) {
	infos, err := e.gw.ListContainers(ctx, listManaged(true, ""))
	if err != nil {
		return nil, err
	}
	names := make(map[string]struct{}, len(infos))
	for _, info := range infos {
		if name := info.Labels[domain.LabelDeployment]; name != "" {
			names[name] = struct{}{}
		}
	}
	return names, nil
}

// realizeTier creates, starts, and probes every node of one tier
// concurrently. Every node that reached running is returned even when the
// tier as a whole fails — a node whose probe failed or was cut short by a
// sibling's failure is still up and must be reported, with its reached
// state; readiness failures travel in the error.
func (e *Engine) realizeTier(ctx context.Context, spec topology.ConfigurationSpec, tier []topology.NodeSpec) ([]domain.Node, error) {
	probe := e.probeFor(spec.Variant)

	var mu sync.Mutex
	var running []domain.Node

	g, gctx := errgroup.WithContext(ctx)
	for _, ns := range tier {
		g.Go(func() error {
			node, err := e.realizeNode(gctx, spec, ns, probe)
			mu.Lock()
			if node.State == domain.NodeRunning || node.State == domain.NodeReady {
				running = append(running, node)
			}
			mu.Unlock()
			if err != nil {
				return fmt.Errorf("node %s: %w", ns.Name, err)
			}
			return nil
		})
	}
	err := g.Wait()
	return running, err
}

// realizeNode takes one planned node through create, start, and readiness.
func (e *Engine) realizeNode(ctx context.Context, spec topology.ConfigurationSpec, ns topology.NodeSpec, probe ReadinessProbe) (domain.Node, error) {
	node := ns.Node(spec.Name)

	if !spec.Ephemeral && ns.Role.DataBearing() {
		volume := topology.VolumeName(ns.Name)
		labels := map[string]string{
			domain.LabelManaged:    "true",
			domain.LabelDeployment: spec.Name,
		}
		if err := e.gw.CreateVolume(ctx, volume, labels); err != nil {
			return node, err
		}
	}

	labels := node.Labels(spec.Variant)
	labels[domain.LabelNetwork] = spec.Network

	cspec := docker.ContainerSpec{
		Name:    ns.Name,
		Image:   spec.Image(),
		Command: topology.Command(spec, ns),
		Env:     topology.Environment(spec, ns),
		Labels:  labels,
		Port:    ns.Port,
		Network: spec.Network,
	}
	if !spec.Ephemeral && ns.Role.DataBearing() {
		cspec.VolumeName = topology.VolumeName(ns.Name)
		cspec.VolumePath = topology.DataDir
	}

	id, err := e.gw.CreateContainer(ctx, cspec)
	if err != nil {
		return node, err
	}
	node.ContainerID = id

	if err := e.gw.StartContainer(ctx, id); err != nil {
		return node, err
	}
	node.State = domain.NodeRunning

	e.logger.Debug("node started, awaiting readiness",
		"node", ns.Name, "port", ns.Port)
	if err := probe.AwaitReady(ctx, node); err != nil {
		return node, err
	}
	node.State = domain.NodeReady
	return node, nil
}

// formReplicaSets issues rs.initiate for every replica set in the
// deployment: the single set of a replica-set deployment, or the config
// server set plus one set per shard for a sharded cluster. Standalone and
// cluster-local deployments have nothing to form.
func (e *Engine) formReplicaSets(ctx context.Context, spec topology.ConfigurationSpec, dep *domain.Deployment) error {
	switch spec.Variant {
	case domain.VariantReplicaSet:
		return e.bootstrap.InitiateReplicaSet(ctx, topology.ReplsetName(spec.Name), dep.Nodes, false)
	case domain.VariantSharded:
		cfg := dep.NodesByRole(domain.RoleConfigServer)
		if err := e.bootstrap.InitiateReplicaSet(ctx, topology.ConfigReplsetName(spec.Name), cfg, true); err != nil {
			return err
		}
		for _, members := range dep.Shards() {
			if err := e.bootstrap.InitiateReplicaSet(ctx, members[0].ReplsetName, members, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// registerShards adds every shard replica set to the cluster through the
// first router. Each shard is registered exactly once.
func (e *Engine) registerShards(ctx context.Context, dep *domain.Deployment) error {
	routers := dep.NodesByRole(domain.RoleRouter)
	if len(routers) == 0 {
		return fmt.Errorf("%w: no router available to register shards", mongo.ErrBootstrapFailed)
	}
	for _, members := range dep.Shards() {
		conn := topology.ShardConnectionString(members[0].ReplsetName, members)
		if err := e.bootstrap.RegisterShard(ctx, routers[0], conn); err != nil {
			return err
		}
	}
	return nil
}

// partial wraps a mid-run failure with the progress made so far.
func (e *Engine) partial(dep *domain.Deployment, cause error) error {
	succeeded := make([]string, 0, len(dep.Nodes))
	for _, n := range dep.Nodes {
		succeeded = append(succeeded, n.Name)
	}
	e.logger.Error("provisioning aborted",
		"deployment", dep.Name,
		"nodes_up", len(succeeded),
		"error", cause)
	return &PartialFailureError{
		Deployment: dep.Name,
		Succeeded:  succeeded,
		Cause:      cause,
	}
}

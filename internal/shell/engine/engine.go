// Package engine coordinates the full deployment workflow: planning a
// topology, realizing it against the container runtime tier by tier,
// bootstrapping replication, and managing the lifecycle of deployments
// discovered from runtime labels.
//
// The engine holds no state of its own. Every read operation rebuilds its
// view of the world from container labels, so a deployment survives engine
// restarts and is visible to any engine pointed at the same daemon.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/dokomo/dokomo/internal/core/domain"
	"github.com/dokomo/dokomo/internal/core/topology"
	"github.com/dokomo/dokomo/internal/shell/docker"
	"github.com/dokomo/dokomo/internal/shell/mongo"
)

// =============================================================================
// Collaborator Interfaces
// =============================================================================

// ReadinessProbe blocks until a node accepts server commands or its retry
// budget runs out.
type ReadinessProbe interface {
	AwaitReady(ctx context.Context, node domain.Node) error
}

// Bootstrapper issues the one-shot cluster-formation commands.
type Bootstrapper interface {
	InitiateReplicaSet(ctx context.Context, setName string, members []domain.Node, configSvr bool) error
	RegisterShard(ctx context.Context, router domain.Node, shardConnString string) error
}

// =============================================================================
// Engine
// =============================================================================

// Engine is the single entry point for provisioning, discovering, and
// managing deployments. Callers must serialize operations that target the
// same deployment name; operations on distinct names are safe to run
// concurrently.
type Engine struct {
	gw        docker.Gateway
	probe     ReadinessProbe
	slowProbe ReadinessProbe
	bootstrap Bootstrapper
	portFree  topology.PortFree
	logger    *slog.Logger
}

// Option customizes Engine construction.
type Option func(*Engine)

// WithProbe overrides the default readiness probe. The same probe is used
// for every node, including cluster-local ones.
func WithProbe(p ReadinessProbe) Option {
	return func(e *Engine) {
		e.probe = p
		e.slowProbe = p
	}
}

// WithBootstrapper overrides the default cluster bootstrapper.
func WithBootstrapper(b Bootstrapper) Option {
	return func(e *Engine) { e.bootstrap = b }
}

// WithPortProbe overrides the host port availability check.
func WithPortProbe(free topology.PortFree) Option {
	return func(e *Engine) { e.portFree = free }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// clusterLocalProbeTimeout stretches the readiness budget for the
// cluster-local image, which runs its own internal setup before the server
// answers commands.
const (
	clusterLocalProbeTimeout  = 100 * time.Second
	clusterLocalProbeInterval = 10 * time.Second
)

// New builds an Engine on top of a runtime gateway. By default nodes are
// probed and bootstrapped over the wire with the MongoDB driver and host
// ports are checked with a local TCP dial.
func New(gw docker.Gateway, opts ...Option) *Engine {
	admin := mongo.NewDriverAdmin()
	logger := slog.Default()
	e := &Engine{
		gw:        gw,
		probe:     mongo.NewProbe(admin, logger, mongo.DefaultProbeTimeout, mongo.DefaultProbeInterval),
		slowProbe: mongo.NewProbe(admin, logger, clusterLocalProbeTimeout, clusterLocalProbeInterval),
		bootstrap: mongo.NewBootstrapper(admin, logger, mongo.DefaultBootstrapTimeout),
		portFree:  topology.ProbeLocalPort,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// probeFor returns the readiness probe appropriate for a deployment variant.
func (e *Engine) probeFor(variant domain.Variant) ReadinessProbe {
	if variant == domain.VariantClusterLocal {
		return e.slowProbe
	}
	return e.probe
}

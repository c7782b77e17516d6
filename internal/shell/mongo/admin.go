// Package mongo talks the administrative protocol to running database nodes:
// liveness queries, replica-set initiation, and shard registration.
package mongo

import (
	"context"
	"errors"

	"github.com/dokomo/dokomo/internal/core/domain"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrNodeNotReady means a node did not answer the liveness query within
	// the probe's retry budget. Individual attempt failures are never
	// surfaced; only budget exhaustion is.
	ErrNodeNotReady = errors.New("node not ready")

	// ErrBootstrapFailed means an administrative membership command was
	// rejected. It indicates a sequencing or configuration defect and is
	// never retried automatically.
	ErrBootstrapFailed = errors.New("bootstrap failed")
)

// =============================================================================
// Admin Interface
// =============================================================================

// Admin is the administrative request/response capability of a database
// node, addressed by its host-mapped port. Tests substitute an in-memory
// fake; production uses the driver-backed implementation in this package.
type Admin interface {
	// Ping issues a liveness query against addr ("host:port").
	Ping(ctx context.Context, addr string) error

	// ReplSetInitiate issues the membership-initiation command to the node
	// at addr, naming every member's in-network address with member ids
	// ascending by ordinal. configSvr marks the set as a config-server
	// replica set.
	ReplSetInitiate(ctx context.Context, addr, setName string, members []domain.Node, configSvr bool) error

	// AddShard registers a shard ("replset/host:port,...") through the
	// router at addr.
	AddShard(ctx context.Context, routerAddr, shardConnString string) error

	// ListShards returns the ids of shards registered on the cluster the
	// router at addr belongs to.
	ListShards(ctx context.Context, routerAddr string) ([]string, error)
}

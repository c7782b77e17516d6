package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dokomo/dokomo/internal/core/domain"
)

// =============================================================================
// Cluster Bootstrapper
// =============================================================================

// DefaultBootstrapTimeout bounds a single membership command acknowledgment.
const DefaultBootstrapTimeout = 60 * time.Second

// Bootstrapper issues distributed-membership commands against nodes that are
// already running and probed ready. A rejected command is fatal for the
// provisioning run: the topology state is ambiguous and must be surfaced,
// not papered over with a retry.
type Bootstrapper struct {
	admin   Admin
	logger  *slog.Logger
	timeout time.Duration
}

// NewBootstrapper creates a cluster bootstrapper.
func NewBootstrapper(admin Admin, logger *slog.Logger, timeout time.Duration) *Bootstrapper {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout == 0 {
		timeout = DefaultBootstrapTimeout
	}
	return &Bootstrapper{admin: admin, logger: logger, timeout: timeout}
}

// InitiateReplicaSet initiates the set with every member in one command,
// member ids ascending by ordinal, acknowledged by the lowest-ordinal member.
func (b *Bootstrapper) InitiateReplicaSet(ctx context.Context, setName string, members []domain.Node, configSvr bool) error {
	if len(members) == 0 {
		return fmt.Errorf("%w: replica set %s has no members", ErrBootstrapFailed, setName)
	}
	ordered := make([]domain.Node, len(members))
	copy(ordered, members)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Ordinal < ordered[j].Ordinal })

	initiator := ordered[0]
	b.logger.Info("initiating replica set",
		"replset", setName,
		"members", len(ordered),
		"initiator", initiator.Name,
	)
	cmdCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	if err := b.admin.ReplSetInitiate(cmdCtx, initiator.LocalAddr(), setName, ordered, configSvr); err != nil {
		return err
	}
	return nil
}

// RegisterShard registers one shard through a ready router. It must be
// called strictly after the shard's own replica set was initiated;
// registering an uninitiated shard is a defined failure, not something to
// retry, because masking it would hide an ordering bug upstream. A shard the
// cluster already knows is skipped.
func (b *Bootstrapper) RegisterShard(ctx context.Context, router domain.Node, shardConnString string) error {
	cmdCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	replset, _, found := strings.Cut(shardConnString, "/")
	if found {
		if ids, err := b.admin.ListShards(cmdCtx, router.LocalAddr()); err == nil {
			for _, id := range ids {
				if id == replset {
					b.logger.Info("shard already registered", "router", router.Name, "shard", replset)
					return nil
				}
			}
		}
	}

	b.logger.Info("registering shard", "router", router.Name, "shard", shardConnString)
	return b.admin.AddShard(cmdCtx, router.LocalAddr(), shardConnString)
}

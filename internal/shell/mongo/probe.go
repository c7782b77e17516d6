package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dokomo/dokomo/internal/core/domain"
)

// =============================================================================
// Readiness Probe
// =============================================================================

// Probe defaults, matching the warm-up behavior of a freshly started mongod:
// the process needs an unpredictable interval before it accepts
// administrative commands, so attempt failures are expected and swallowed.
const (
	DefaultProbeTimeout  = 120 * time.Second
	DefaultProbeInterval = 2 * time.Second
)

// Probe polls a node's administrative endpoint until it answers a liveness
// query or the retry budget is exhausted.
type Probe struct {
	admin    Admin
	logger   *slog.Logger
	timeout  time.Duration
	interval time.Duration
}

// NewProbe creates a readiness probe. Zero timeout or interval fall back to
// the package defaults.
func NewProbe(admin Admin, logger *slog.Logger, timeout, interval time.Duration) *Probe {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout == 0 {
		timeout = DefaultProbeTimeout
	}
	if interval == 0 {
		interval = DefaultProbeInterval
	}
	return &Probe{admin: admin, logger: logger, timeout: timeout, interval: interval}
}

// AwaitReady blocks until the node answers the liveness query, the budget
// runs out, or ctx is cancelled. Only budget exhaustion surfaces as
// ErrNodeNotReady; each individual attempt failure is logged and retried.
func (p *Probe) AwaitReady(ctx context.Context, node domain.Node) error {
	deadline := time.Now().Add(p.timeout)
	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, p.interval*2)
		err := p.admin.Ping(attemptCtx, node.LocalAddr())
		cancel()
		if err == nil {
			p.logger.Info("node ready to accept connections", "node", node.Name, "attempts", attempt)
			return nil
		}
		p.logger.Debug("node not ready yet",
			"node", node.Name,
			"attempt", attempt,
			"error", err,
		)
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s did not become ready within %s", ErrNodeNotReady, node.Name, p.timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.interval):
		}
	}
}

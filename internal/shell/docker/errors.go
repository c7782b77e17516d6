package docker

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrRuntimeUnavailable means the Docker daemon could not be reached at
	// all. The whole call is safe to retry later.
	ErrRuntimeUnavailable = errors.New("container runtime unavailable")

	// ErrRuntimeOperationFailed means the daemon was reachable but rejected
	// a specific operation. The failure is attributed to one resource and
	// does not invalidate sibling operations.
	ErrRuntimeOperationFailed = errors.New("container runtime operation failed")

	ErrContainerNotFound    = errors.New("container not found")
	ErrContainerExists      = errors.New("container already exists")
	ErrNetworkInUse         = errors.New("network has active endpoints")
	ErrImageNotFound        = errors.New("image not found")
	ErrPortAlreadyAllocated = errors.New("port is already allocated")
)

// GatewayError wraps runtime errors with operation context.
type GatewayError struct {
	Op      string // Operation that failed
	Entity  string // Entity type (container, network, volume, image)
	ID      string // Entity name or ID if applicable
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %s", e.Op, e.Entity, e.ID, e.Message)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Entity, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// newGatewayError classifies err as unavailable or rejected and wraps it.
func newGatewayError(op, entity, id string, err error) *GatewayError {
	kind := ErrRuntimeOperationFailed
	if isDaemonUnreachable(err) {
		kind = ErrRuntimeUnavailable
	}
	return &GatewayError{
		Op:      op,
		Entity:  entity,
		ID:      id,
		Message: err.Error(),
		Err:     fmt.Errorf("%w: %w", kind, err),
	}
}

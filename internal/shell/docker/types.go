// Package docker implements the container runtime gateway over the Docker SDK.
package docker

import (
	"context"
	"time"
)

// =============================================================================
// Container Types
// =============================================================================

// ContainerSpec defines the specification for creating one node container.
// The host port always maps the node's own listening port: every node binds
// the same port inside and outside the network so that in-network and
// host-side addresses agree.
type ContainerSpec struct {
	Name       string
	Image      string
	Command    []string
	Env        map[string]string
	Labels     map[string]string
	Port       int
	Network    string
	VolumeName string // named data volume mounted at target; empty for none
	VolumePath string // in-container mount target
}

// ContainerInfo contains the observed state of a container.
type ContainerInfo struct {
	ID        string
	Name      string
	Image     string
	State     string // "running", "exited", "created", ...
	Labels    map[string]string
	Port      int // first published host port, 0 if none
	CreatedAt time.Time
}

// ListOptions defines options for listing containers.
type ListOptions struct {
	All    bool              // include stopped containers
	Labels map[string]string // label selector, e.g. {"dokomo.deployment": "x"}
}

// =============================================================================
// Gateway Interface
// =============================================================================

// Gateway is the capability surface every other component consumes. The
// production implementation talks to the Docker daemon; tests substitute an
// in-memory fake. All mutating calls are idempotent where the operation
// allows: stopping a stopped container or removing an absent one succeeds.
type Gateway interface {
	// Container operations
	CreateContainer(ctx context.Context, spec ContainerSpec) (containerID string, err error)
	StartContainer(ctx context.Context, containerID string) error
	StopContainer(ctx context.Context, containerID string, timeout time.Duration) error
	RemoveContainer(ctx context.Context, containerID string) error
	InspectContainer(ctx context.Context, containerID string) (*ContainerInfo, error)
	ListContainers(ctx context.Context, opts ListOptions) ([]ContainerInfo, error)

	// Network operations. CreateNetwork reuses an existing network with the
	// same name regardless of who created it.
	CreateNetwork(ctx context.Context, name string) (networkID string, err error)
	RemoveNetwork(ctx context.Context, name string) error

	// Volume operations
	CreateVolume(ctx context.Context, name string, labels map[string]string) error
	RemoveVolume(ctx context.Context, name string) error

	// Image operations
	EnsureImage(ctx context.Context, image string) error

	// Health operations
	Ping(ctx context.Context) error
	Close() error
}

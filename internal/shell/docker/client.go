package docker

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

// =============================================================================
// Docker Gateway Implementation
// =============================================================================

// Client implements Gateway using the Docker SDK.
type Client struct {
	cli *client.Client
}

// NewClient creates a Docker-backed gateway. If host is empty, the default
// Docker host from the environment is used.
func NewClient(host string) (*Client, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, &GatewayError{
			Op:      "NewClient",
			Message: "failed to create client",
			Err:     fmt.Errorf("%w: %w", ErrRuntimeUnavailable, err),
		}
	}
	return &Client{cli: cli}, nil
}

// Ping checks whether the Docker daemon is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.cli.Ping(ctx); err != nil {
		return &GatewayError{
			Op:      "Ping",
			Message: err.Error(),
			Err:     fmt.Errorf("%w: %w", ErrRuntimeUnavailable, err),
		}
	}
	return nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.cli.Close()
}

// isDaemonUnreachable distinguishes "daemon gone" from "daemon said no".
func isDaemonUnreachable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Cannot connect to the Docker daemon") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "context deadline exceeded")
}

// =============================================================================
// Container Operations
// =============================================================================

// CreateContainer creates a node container from the given spec. The
// container joins the deployment network aliased under its own name, so
// sibling nodes can reach it by name.
func (c *Client) CreateContainer(ctx context.Context, spec ContainerSpec) (string, error) {
	port := nat.Port(fmt.Sprintf("%d/tcp", spec.Port))

	config := &container.Config{
		Image:        spec.Image,
		Cmd:          spec.Command,
		Hostname:     spec.Name,
		Labels:       spec.Labels,
		ExposedPorts: nat.PortSet{port: struct{}{}},
	}
	for k, v := range spec.Env {
		config.Env = append(config.Env, fmt.Sprintf("%s=%s", k, v))
	}

	hostConfig := &container.HostConfig{
		PortBindings: nat.PortMap{
			port: []nat.PortBinding{{HostPort: strconv.Itoa(spec.Port)}},
		},
	}
	if spec.VolumeName != "" {
		hostConfig.Mounts = []mount.Mount{{
			Type:   mount.TypeVolume,
			Source: spec.VolumeName,
			Target: spec.VolumePath,
		}}
	}

	networkConfig := &network.NetworkingConfig{
		EndpointsConfig: map[string]*network.EndpointSettings{
			spec.Network: {Aliases: []string{spec.Name}},
		},
	}

	resp, err := c.cli.ContainerCreate(ctx, config, hostConfig, networkConfig, nil, spec.Name)
	if err != nil {
		if strings.Contains(err.Error(), "Conflict") {
			return "", &GatewayError{
				Op: "CreateContainer", Entity: "container", ID: spec.Name,
				Message: "container already exists",
				Err:     fmt.Errorf("%w: %w", ErrRuntimeOperationFailed, ErrContainerExists),
			}
		}
		if strings.Contains(err.Error(), "port is already allocated") {
			return "", &GatewayError{
				Op: "CreateContainer", Entity: "container", ID: spec.Name,
				Message: err.Error(),
				Err:     fmt.Errorf("%w: %w", ErrRuntimeOperationFailed, ErrPortAlreadyAllocated),
			}
		}
		return "", newGatewayError("CreateContainer", "container", spec.Name, err)
	}
	return resp.ID, nil
}

// StartContainer starts a created or stopped container. Starting a running
// container is not an error.
func (c *Client) StartContainer(ctx context.Context, containerID string) error {
	err := c.cli.ContainerStart(ctx, containerID, container.StartOptions{})
	if err != nil {
		if strings.Contains(err.Error(), "already started") || strings.Contains(err.Error(), "is already running") {
			return nil
		}
		if client.IsErrNotFound(err) {
			return &GatewayError{
				Op: "StartContainer", Entity: "container", ID: containerID,
				Message: "container not found",
				Err:     fmt.Errorf("%w: %w", ErrRuntimeOperationFailed, ErrContainerNotFound),
			}
		}
		return newGatewayError("StartContainer", "container", containerID, err)
	}
	return nil
}

// StopContainer stops a container. Stopping an already-stopped or absent
// container is not an error.
func (c *Client) StopContainer(ctx context.Context, containerID string, timeout time.Duration) error {
	seconds := int(timeout.Seconds())
	err := c.cli.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &seconds})
	if err != nil {
		if client.IsErrNotFound(err) || strings.Contains(err.Error(), "is not running") {
			return nil
		}
		return newGatewayError("StopContainer", "container", containerID, err)
	}
	return nil
}

// RemoveContainer force-removes a container. Removing an absent container is
// not an error.
func (c *Client) RemoveContainer(ctx context.Context, containerID string) error {
	err := c.cli.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true})
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil
		}
		return newGatewayError("RemoveContainer", "container", containerID, err)
	}
	return nil
}

// InspectContainer returns the observed state of a container.
func (c *Client) InspectContainer(ctx context.Context, containerID string) (*ContainerInfo, error) {
	resp, err := c.cli.ContainerInspect(ctx, containerID)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil, &GatewayError{
				Op: "InspectContainer", Entity: "container", ID: containerID,
				Message: "container not found",
				Err:     fmt.Errorf("%w: %w", ErrRuntimeOperationFailed, ErrContainerNotFound),
			}
		}
		return nil, newGatewayError("InspectContainer", "container", containerID, err)
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, resp.Created)
	hostPort := 0
	for _, bindings := range resp.NetworkSettings.Ports {
		for _, binding := range bindings {
			if p, err := strconv.Atoi(binding.HostPort); err == nil && p != 0 {
				hostPort = p
				break
			}
		}
		if hostPort != 0 {
			break
		}
	}

	return &ContainerInfo{
		ID:        resp.ID,
		Name:      strings.TrimPrefix(resp.Name, "/"),
		Image:     resp.Config.Image,
		State:     resp.State.Status,
		Labels:    resp.Config.Labels,
		Port:      hostPort,
		CreatedAt: createdAt,
	}, nil
}

// ListContainers returns containers matching the label selector, in any
// state when opts.All is set.
func (c *Client) ListContainers(ctx context.Context, opts ListOptions) ([]ContainerInfo, error) {
	f := filters.NewArgs()
	for k, v := range opts.Labels {
		f.Add("label", fmt.Sprintf("%s=%s", k, v))
	}
	containers, err := c.cli.ContainerList(ctx, container.ListOptions{All: opts.All, Filters: f})
	if err != nil {
		return nil, newGatewayError("ListContainers", "container", "", err)
	}

	result := make([]ContainerInfo, 0, len(containers))
	for _, ctr := range containers {
		name := ""
		if len(ctr.Names) > 0 {
			name = strings.TrimPrefix(ctr.Names[0], "/")
		}
		hostPort := 0
		for _, p := range ctr.Ports {
			if p.PublicPort != 0 {
				hostPort = int(p.PublicPort)
				break
			}
		}
		result = append(result, ContainerInfo{
			ID:        ctr.ID,
			Name:      name,
			Image:     ctr.Image,
			State:     ctr.State,
			Labels:    ctr.Labels,
			Port:      hostPort,
			CreatedAt: time.Unix(ctr.Created, 0),
		})
	}
	return result, nil
}

// =============================================================================
// Network Operations
// =============================================================================

// CreateNetwork creates a bridge network, or returns the existing network
// with that name regardless of who created it.
func (c *Client) CreateNetwork(ctx context.Context, name string) (string, error) {
	existing, err := c.cli.NetworkList(ctx, network.ListOptions{
		Filters: filters.NewArgs(filters.Arg("name", name)),
	})
	if err != nil {
		return "", newGatewayError("CreateNetwork", "network", name, err)
	}
	for _, n := range existing {
		if n.Name == name {
			return n.ID, nil
		}
	}
	resp, err := c.cli.NetworkCreate(ctx, name, network.CreateOptions{Driver: "bridge"})
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return name, nil
		}
		return "", newGatewayError("CreateNetwork", "network", name, err)
	}
	return resp.ID, nil
}

// RemoveNetwork removes a network by name. Absent networks are not an error;
// networks with active endpoints surface ErrNetworkInUse.
func (c *Client) RemoveNetwork(ctx context.Context, name string) error {
	err := c.cli.NetworkRemove(ctx, name)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil
		}
		if strings.Contains(err.Error(), "has active endpoints") {
			return &GatewayError{
				Op: "RemoveNetwork", Entity: "network", ID: name,
				Message: "network has active endpoints",
				Err:     fmt.Errorf("%w: %w", ErrRuntimeOperationFailed, ErrNetworkInUse),
			}
		}
		return newGatewayError("RemoveNetwork", "network", name, err)
	}
	return nil
}

// =============================================================================
// Volume Operations
// =============================================================================

// CreateVolume creates a named local volume. Creating an existing volume
// with identical settings is a no-op on the daemon side.
func (c *Client) CreateVolume(ctx context.Context, name string, labels map[string]string) error {
	_, err := c.cli.VolumeCreate(ctx, volume.CreateOptions{
		Name:   name,
		Driver: "local",
		Labels: labels,
	})
	if err != nil {
		return newGatewayError("CreateVolume", "volume", name, err)
	}
	return nil
}

// RemoveVolume force-removes a volume. Removing an absent volume is not an
// error.
func (c *Client) RemoveVolume(ctx context.Context, name string) error {
	err := c.cli.VolumeRemove(ctx, name, true)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil
		}
		return newGatewayError("RemoveVolume", "volume", name, err)
	}
	return nil
}

// =============================================================================
// Image Operations
// =============================================================================

// EnsureImage pulls the image unless it is already present locally.
func (c *Client) EnsureImage(ctx context.Context, imageName string) error {
	if _, _, err := c.cli.ImageInspectWithRaw(ctx, imageName); err == nil {
		return nil
	}
	reader, err := c.cli.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "not found") ||
			strings.Contains(msg, "manifest unknown") ||
			strings.Contains(msg, "repository does not exist") ||
			strings.Contains(msg, "pull access denied") {
			return &GatewayError{
				Op: "EnsureImage", Entity: "image", ID: imageName,
				Message: "image not found",
				Err:     fmt.Errorf("%w: %w", ErrRuntimeOperationFailed, ErrImageNotFound),
			}
		}
		return newGatewayError("EnsureImage", "image", imageName, err)
	}
	defer reader.Close()

	// Drain the reader to complete the pull
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return newGatewayError("EnsureImage", "image", imageName, err)
	}
	return nil
}

package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dokomo/dokomo/internal/core/domain"
	"github.com/dokomo/dokomo/internal/shell/docker"
)

// =============================================================================
// Shared Call Log
// =============================================================================

// callLog records operations across all fakes so tests can assert ordering
// between runtime calls, probes, and bootstrap commands.
type callLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *callLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, fmt.Sprintf(format, args...))
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

// firstIndex returns the index of the first entry containing substr, or -1.
func firstIndex(entries []string, substr string) int {
	for i, e := range entries {
		if strings.Contains(e, substr) {
			return i
		}
	}
	return -1
}

// lastIndex returns the index of the last entry containing substr, or -1.
func lastIndex(entries []string, substr string) int {
	for i := len(entries) - 1; i >= 0; i-- {
		if strings.Contains(entries[i], substr) {
			return i
		}
	}
	return -1
}

// =============================================================================
// Fake Gateway
// =============================================================================

type fakeContainer struct {
	id     string
	name   string
	state  string
	labels map[string]string
	port   int
}

// fakeGateway is an in-memory runtime. It honors the same idempotency rules
// as the real gateway: stopping a stopped container or removing an absent
// one succeeds.
type fakeGateway struct {
	mu         sync.Mutex
	seq        int
	containers map[string]*fakeContainer
	networks   map[string]bool
	volumes    map[string]bool
	log        *callLog

	createErr  map[string]error // by container name
	networkErr error
}

func newFakeGateway(log *callLog) *fakeGateway {
	return &fakeGateway{
		containers: map[string]*fakeContainer{},
		networks:   map[string]bool{},
		volumes:    map[string]bool{},
		log:        log,
		createErr:  map[string]error{},
	}
}

func (g *fakeGateway) CreateContainer(_ context.Context, spec docker.ContainerSpec) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.createErr[spec.Name]; err != nil {
		return "", err
	}
	for _, c := range g.containers {
		if c.name == spec.Name {
			return "", fmt.Errorf("%w: %s", docker.ErrContainerExists, spec.Name)
		}
	}
	g.seq++
	id := fmt.Sprintf("c%d", g.seq)
	labels := map[string]string{}
	for k, v := range spec.Labels {
		labels[k] = v
	}
	g.containers[id] = &fakeContainer{id: id, name: spec.Name, state: "created", labels: labels, port: spec.Port}
	g.log.add("create %s", spec.Name)
	return id, nil
}

func (g *fakeGateway) StartContainer(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.containers[id]
	if !ok {
		return fmt.Errorf("%w: %s", docker.ErrContainerNotFound, id)
	}
	c.state = "running"
	g.log.add("start %s", c.name)
	return nil
}

func (g *fakeGateway) StopContainer(_ context.Context, id string, _ time.Duration) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.containers[id]; ok {
		c.state = "exited"
		g.log.add("stop %s", c.name)
	}
	return nil
}

func (g *fakeGateway) RemoveContainer(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.containers[id]; ok {
		g.log.add("remove %s", c.name)
		delete(g.containers, id)
	}
	return nil
}

func (g *fakeGateway) InspectContainer(_ context.Context, id string) (*docker.ContainerInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.containers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", docker.ErrContainerNotFound, id)
	}
	return &docker.ContainerInfo{ID: c.id, Name: c.name, State: c.state, Labels: c.labels, Port: c.port}, nil
}

func (g *fakeGateway) ListContainers(_ context.Context, opts docker.ListOptions) ([]docker.ContainerInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []docker.ContainerInfo
	for _, c := range g.containers {
		if !opts.All && c.state != "running" {
			continue
		}
		match := true
		for k, v := range opts.Labels {
			if c.labels[k] != v {
				match = false
				break
			}
		}
		if match {
			out = append(out, docker.ContainerInfo{ID: c.id, Name: c.name, State: c.state, Labels: c.labels, Port: c.port})
		}
	}
	return out, nil
}

func (g *fakeGateway) CreateNetwork(_ context.Context, name string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.networkErr != nil {
		return "", g.networkErr
	}
	if !g.networks[name] {
		g.networks[name] = true
		g.log.add("create-network %s", name)
	}
	return "net-" + name, nil
}

func (g *fakeGateway) RemoveNetwork(_ context.Context, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	// A network with containers still attached refuses removal.
	for _, c := range g.containers {
		if c.labels[domain.LabelNetwork] == name {
			return fmt.Errorf("%w: %s", docker.ErrNetworkInUse, name)
		}
	}
	delete(g.networks, name)
	g.log.add("remove-network %s", name)
	return nil
}

func (g *fakeGateway) CreateVolume(_ context.Context, name string, _ map[string]string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.volumes[name] = true
	return nil
}

func (g *fakeGateway) RemoveVolume(_ context.Context, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.volumes, name)
	return nil
}

func (g *fakeGateway) EnsureImage(_ context.Context, image string) error {
	g.log.add("ensure-image %s", image)
	return nil
}

func (g *fakeGateway) Ping(context.Context) error { return nil }
func (g *fakeGateway) Close() error               { return nil }

// containerNames returns the names of all containers, running or not.
func (g *fakeGateway) containerNames() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var names []string
	for _, c := range g.containers {
		names = append(names, c.name)
	}
	return names
}

// =============================================================================
// Fake Probe and Bootstrapper
// =============================================================================

type fakeProbe struct {
	log     *callLog
	failFor map[string]error // by node name
}

func (p *fakeProbe) AwaitReady(_ context.Context, node domain.Node) error {
	if err := p.failFor[node.Name]; err != nil {
		p.log.add("probe-fail %s", node.Name)
		return err
	}
	p.log.add("probe %s", node.Name)
	return nil
}

type fakeBootstrap struct {
	mu          sync.Mutex
	log         *callLog
	initiated   []string
	registered  []string
	initiateErr error
}

func (b *fakeBootstrap) InitiateReplicaSet(_ context.Context, setName string, members []domain.Node, configSvr bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initiateErr != nil {
		return b.initiateErr
	}
	b.log.add("initiate %s members=%d configsvr=%t", setName, len(members), configSvr)
	b.initiated = append(b.initiated, setName)
	return nil
}

func (b *fakeBootstrap) RegisterShard(_ context.Context, router domain.Node, shardConnString string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.add("addshard %s via %s", shardConnString, router.Name)
	b.registered = append(b.registered, shardConnString)
	return nil
}

// =============================================================================
// Test Harness
// =============================================================================

type harness struct {
	log       *callLog
	gw        *fakeGateway
	probe     *fakeProbe
	bootstrap *fakeBootstrap
	engine    *Engine
}

func newHarness() *harness {
	log := &callLog{}
	gw := newFakeGateway(log)
	probe := &fakeProbe{log: log, failFor: map[string]error{}}
	bootstrap := &fakeBootstrap{log: log}
	eng := New(gw,
		WithProbe(probe),
		WithBootstrapper(bootstrap),
		WithPortProbe(func(int) bool { return true }),
	)
	return &harness{log: log, gw: gw, probe: probe, bootstrap: bootstrap, engine: eng}
}

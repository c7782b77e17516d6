// Package topology provides pure functions for deployment planning.
//
// Plan expands a ConfigurationSpec into an ordered list of NodeSpecs with
// assigned ports, container names, replica-set names, and dependency tiers.
// All functions are deterministic given identical input; the only I/O is the
// injectable port prober, which callers replace with a stub in tests.
//
// Tiering (lowest tier is created first, and must be fully ready before the
// next tier is created):
//
//	sharded:   config servers (0) → each shard's member set (1..S) → routers (S+1)
//	otherwise: the single node group (0)
package topology

// Package domain defines the runtime entities of a dokomo deployment.
//
// A Deployment is an aggregate over the set of containers that share a
// deployment-name label; it has no storage of its own. Nodes are realized
// container processes and never self-transition: every state change is
// driven through the container runtime gateway.
//
// All types in this package are plain values. Construction from container
// labels lives here (NodeFromLabels) so that the reconciler in
// internal/shell/engine stays a thin grouping layer.
package domain

package engine

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrDeploymentNotFound means no container carries the requested
	// deployment-name label.
	ErrDeploymentNotFound = errors.New("deployment not found")

	// ErrNameCollision means a deployment with the requested name already
	// exists.
	ErrNameCollision = errors.New("deployment name already exists")
)

// NodeOutcome records the result of one node-level operation.
type NodeOutcome struct {
	Node string
	Err  error
}

// Result aggregates per-node outcomes of a multi-node operation. A failure
// on one node never collapses the whole call into a single opaque error:
// the remaining nodes are still attempted and reported.
type Result struct {
	Deployment string
	Succeeded  []string
	Failed     []NodeOutcome
}

// OK reports whether every node succeeded.
func (r *Result) OK() bool {
	return len(r.Failed) == 0
}

// PartialFailureError reports an operation that changed some nodes but not
// all of them, or a run that was aborted mid-flight. Succeeded lists every
// node that did reach running, including nodes whose readiness probe then
// failed; created resources are left in place for inspection, never rolled
// back silently.
type PartialFailureError struct {
	Deployment string
	Succeeded  []string
	Failed     []NodeOutcome
	// Cause is the run-level reason when the failure is not attributable to
	// a single node (tier abort, bootstrap rejection).
	Cause error
}

func (e *PartialFailureError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "deployment %s: partial failure", e.Deployment)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	for _, f := range e.Failed {
		fmt.Fprintf(&b, "; node %s: %v", f.Node, f.Err)
	}
	if len(e.Succeeded) > 0 {
		fmt.Fprintf(&b, " (%d nodes succeeded)", len(e.Succeeded))
	}
	return b.String()
}

func (e *PartialFailureError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	if len(e.Failed) > 0 {
		return e.Failed[0].Err
	}
	return nil
}

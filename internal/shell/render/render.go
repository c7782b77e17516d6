// Package render formats deployments for terminal output.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/dokomo/dokomo/internal/core/domain"
)

// newTable creates a table writer with the standard styling.
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

// DeploymentList renders one row per deployment.
func DeploymentList(w io.Writer, deps []*domain.Deployment) {
	if len(deps) == 0 {
		fmt.Fprintln(w, "no deployments found")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"NAME", "VARIANT", "STATE", "NODES", "PORTS"})
	for _, dep := range deps {
		t.AppendRow(table.Row{
			dep.Name,
			string(dep.Variant),
			string(dep.LastKnownState),
			len(dep.Nodes),
			dep.PortRange(),
		})
	}
	t.Render()
}

// DeploymentDetail renders one deployment with a row per node, followed by
// its connection string and any anomalies.
func DeploymentDetail(w io.Writer, dep *domain.Deployment) {
	fmt.Fprintf(w, "%s (%s, %s)\n", dep.Name, dep.Variant, dep.LastKnownState)

	t := newTable(w)
	t.AppendHeader(table.Row{"CONTAINER", "ROLE", "PORT", "REPLICA SET", "STATE"})
	for _, n := range dep.Nodes {
		t.AppendRow(table.Row{n.Name, string(n.Role), n.Port, n.ReplsetName, string(n.State)})
	}
	t.Render()

	if cs := dep.ConnectionString(); cs != "" {
		fmt.Fprintf(w, "connection string: %s\n", cs)
	}
	if len(dep.Anomalies) > 0 {
		fmt.Fprintf(w, "anomalies:\n  %s\n", strings.Join(dep.Anomalies, "\n  "))
	}
}

package topology

import (
	"strconv"

	"github.com/dokomo/dokomo/internal/core/domain"
)

// =============================================================================
// Container Command and Environment Dispatch
// =============================================================================

// DataDir is the in-container data directory for durable nodes.
const DataDir = "/data/db"

// Role-specific server flags, keyed on the node's role tag. The shared
// skeleton (binary, bind address, port) is assembled in Command.
var roleFlags = map[domain.Role]func(n NodeSpec) []string{
	domain.RoleStandalone:    func(NodeSpec) []string { return nil },
	domain.RoleReplicaMember: func(n NodeSpec) []string { return []string{"--replSet", n.ReplsetName} },
	domain.RoleConfigServer:  func(n NodeSpec) []string { return []string{"--configsvr", "--replSet", n.ReplsetName} },
	domain.RoleShardMember:   func(n NodeSpec) []string { return []string{"--shardsvr", "--replSet", n.ReplsetName} },
	domain.RoleRouter:        func(n NodeSpec) []string { return []string{"--configdb", n.ConfigDB} },
}

// Command builds the container command for a planned node. The cluster-local
// variant relies on the image's own entrypoint and gets no command at all.
func Command(spec ConfigurationSpec, n NodeSpec) []string {
	if spec.Variant == domain.VariantClusterLocal {
		return nil
	}
	binary := "mongod"
	if n.Role == domain.RoleRouter {
		binary = "mongos"
	}
	cmd := []string{binary, "--bind_ip_all", "--port", strconv.Itoa(n.Port)}
	if !spec.Ephemeral && n.Role != domain.RoleRouter {
		cmd = append(cmd, "--dbpath", DataDir)
	}
	cmd = append(cmd, roleFlags[n.Role](n)...)
	return cmd
}

// Environment builds the container environment for a planned node. Root
// credentials are injected only for standalone and cluster-local nodes: the
// official image turns the root env vars into --auth, and mongod refuses
// --auth alongside --replSet without a shared keyfile, which we do not
// provision. Validate rejects credentials on the clustered variants before
// planning gets here.
func Environment(spec ConfigurationSpec, n NodeSpec) map[string]string {
	env := map[string]string{}
	if spec.Variant == domain.VariantClusterLocal {
		env["PORT"] = strconv.Itoa(n.Port)
		env["NAME"] = n.Name
		if spec.AuthEnabled() {
			env["MONGODB_INITDB_ROOT_USERNAME"] = spec.Username
			env["MONGODB_INITDB_ROOT_PASSWORD"] = spec.Password
		}
		return env
	}
	if spec.AuthEnabled() && spec.Variant == domain.VariantStandalone {
		env["MONGO_INITDB_ROOT_USERNAME"] = spec.Username
		env["MONGO_INITDB_ROOT_PASSWORD"] = spec.Password
	}
	return env
}

package topology

import "fmt"

// =============================================================================
// Resource Naming Functions
// =============================================================================

// MemberName generates a container name for a standalone or replica-set
// member. Ordinals start at 1.
//
// Example:
//
//	MemberName("brisk-otter", 1) // returns "brisk-otter-1"
func MemberName(deployment string, ordinal int) string {
	return fmt.Sprintf("%s-%d", deployment, ordinal)
}

// ConfigServerName generates a container name for a config-server member.
func ConfigServerName(deployment string, ordinal int) string {
	return fmt.Sprintf("%s-cfg-%d", deployment, ordinal)
}

// ShardMemberName generates a container name for a member of the given shard.
// Shard ids start at 1.
//
// Example:
//
//	ShardMemberName("brisk-otter", 2, 1) // returns "brisk-otter-sh2-1"
func ShardMemberName(deployment string, shardID, ordinal int) string {
	return fmt.Sprintf("%s-sh%d-%d", deployment, shardID, ordinal)
}

// RouterName generates a container name for a mongos router.
func RouterName(deployment string, ordinal int) string {
	return fmt.Sprintf("%s-router-%d", deployment, ordinal)
}

// ReplsetName returns the replica-set name for a plain replica-set
// deployment, which is the deployment name itself.
func ReplsetName(deployment string) string {
	return deployment
}

// ConfigReplsetName returns the replica-set name of the config-server group.
func ConfigReplsetName(deployment string) string {
	return fmt.Sprintf("%s-cfg", deployment)
}

// ShardReplsetName returns the replica-set name of the given shard.
func ShardReplsetName(deployment string, shardID int) string {
	return fmt.Sprintf("%s-sh%d", deployment, shardID)
}

// VolumeName generates the data-volume name for a node's container.
func VolumeName(containerName string) string {
	return fmt.Sprintf("%s-data", containerName)
}

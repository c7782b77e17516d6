package domain

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// =============================================================================
// Deployment Name Generation
// =============================================================================

var nameAdjectives = []string{
	"amber", "bold", "brisk", "calm", "clever", "crimson", "daring", "eager",
	"fuzzy", "gentle", "golden", "happy", "jolly", "keen", "lively", "mellow",
	"nimble", "plucky", "quiet", "rapid", "silver", "sturdy", "swift", "witty",
}

var nameAnimals = []string{
	"badger", "beaver", "bison", "falcon", "ferret", "gecko", "heron", "ibex",
	"lemur", "lynx", "marmot", "marten", "mole", "otter", "owl", "panda",
	"puffin", "quokka", "raven", "stoat", "tapir", "vole", "walrus", "wombat",
}

// GenerateName produces a deployment name of the form adjective-animal,
// unique against the taken predicate. After a handful of collisions it falls
// back to appending a short uuid fragment, which is unique for any practical
// number of local deployments.
func GenerateName(taken func(string) bool) string {
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("%s-%s",
			nameAdjectives[rand.Intn(len(nameAdjectives))],
			nameAnimals[rand.Intn(len(nameAnimals))],
		)
		if taken == nil || !taken(name) {
			return name
		}
	}
	return fmt.Sprintf("%s-%s-%s",
		nameAdjectives[rand.Intn(len(nameAdjectives))],
		nameAnimals[rand.Intn(len(nameAnimals))],
		uuid.NewString()[:8],
	)
}

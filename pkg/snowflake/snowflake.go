// Package snowflake produces the 63-bit ids used as primary keys across the
// wallet tables. A single process-wide generator is shared by all callers;
// the node id is derived from the process id so that replicas started on the
// same host do not collide.
package snowflake

import (
	"fmt"
	"os"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	mu   sync.Mutex
	node *snowflake.Node
)

// nodeID folds the process id into the generator's node-id space.
func nodeID() int64 {
	max := int64(-1 ^ (-1 << snowflake.NodeBits))
	return int64(os.Getpid()) & max
}

// Init creates the process-wide generator. It must be called once before
// Generate; calling it again replaces the generator.
func Init() error {
	mu.Lock()
	defer mu.Unlock()

	n, err := snowflake.NewNode(nodeID())
	if err != nil {
		return fmt.Errorf("create snowflake node: %w", err)
	}
	node = n
	return nil
}

// Generate returns the next id. It lazily initialises the generator so tests
// and entity constructors do not need explicit setup.
func Generate() int64 {
	mu.Lock()
	defer mu.Unlock()

	if node == nil {
		n, err := snowflake.NewNode(nodeID())
		if err != nil {
			panic(fmt.Sprintf("snowflake init: %v", err))
		}
		node = n
	}
	return node.Generate().Int64()
}

package idgen

import (
	"log"
	"os"
	"strconv"
)

// InitFromEnv initializes the named nodes from SNOWFLAKE_NODE_ID so multiple
// instances never collide on order ids.
func InitFromEnv() {
	nodeIDStr := os.Getenv("SNOWFLAKE_NODE_ID")
	nodeID, err := strconv.ParseInt(nodeIDStr, 10, 64)
	if err != nil || nodeID < 0 || nodeID > 1023 {
		nodeID = 1
	}
	for _, name := range []string{"default", "order"} {
		if err := InitNode(name, nodeID); err != nil {
			log.Fatalf("[IDGen] InitNode %s failed: %v", name, err)
		}
	}
	log.Printf("[IDGen] snowflake nodes initialized: nodeID=%d", nodeID)
}

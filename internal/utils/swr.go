package utils

import (
	"log"
	"time"

	"launcx-order-api/internal/dal"
)

// WeightedNode is one candidate in a smooth weighted round-robin.
type WeightedNode struct {
	ID      int
	Weight  int
	Current int
}

// SmoothWeightedRR picks the next node for redisKey, persisting rotation
// state in Redis so all instances share one distribution. Equal weights give
// plain round-robin; used to spread orders across checkout hosts.
func SmoothWeightedRR(redisKey string, weights map[int]int) int {
	if len(weights) == 0 {
		return 0
	}

	stateJSON, _ := dal.RedisClient.Get(dal.RedisCtx, redisKey).Result()
	last := map[int]int{}
	if stateJSON != "" {
		if err := JSONToMap(stateJSON, &last); err != nil {
			log.Printf("[SW-RR] parse redis state failed: %v", err)
		}
	}

	var nodes []WeightedNode
	var total int
	for id, w := range weights {
		if w <= 0 {
			continue
		}
		total += w
		nodes = append(nodes, WeightedNode{ID: id, Weight: w, Current: last[id] + w})
	}
	if len(nodes) == 0 {
		return 0
	}

	var best *WeightedNode
	for i := range nodes {
		if best == nil || nodes[i].Current > best.Current {
			best = &nodes[i]
		}
	}

	best.Current -= total
	for _, n := range nodes {
		last[n.ID] = n.Current
	}

	if err := dal.RedisClient.Set(dal.RedisCtx, redisKey, MapToJSON(last), 10*time.Minute).Err(); err != nil {
		log.Printf("[SW-RR] redis write failed: %v", err)
	}
	return best.ID
}

// PickCheckoutHost rotates across the configured checkout hostnames.
func PickCheckoutHost(hosts []string) string {
	if len(hosts) == 0 {
		return ""
	}
	if len(hosts) == 1 {
		return hosts[0]
	}
	weights := make(map[int]int, len(hosts))
	for i := range hosts {
		weights[i] = 1
	}
	idx := SmoothWeightedRR("rr_state:checkout_host", weights)
	if idx < 0 || idx >= len(hosts) {
		idx = 0
	}
	return hosts[idx]
}

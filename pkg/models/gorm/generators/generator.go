package gorm_generator

import (
	"hash/fnv"
	"os"
	"sync"
	"time"
)

// Snowflake-style ids: 41 bits of milliseconds since epoch, 10 bits of
// node, 12 bits of sequence. Sortable by creation time, safe across a
// small fleet without coordination.
const (
	epochMillis  = int64(1672531200000) // 2023-01-01T00:00:00Z
	nodeBits     = 10
	sequenceBits = 12
	sequenceMask = int64(1)<<sequenceBits - 1
	maxNode      = int64(1)<<nodeBits - 1
)

var (
	mu       sync.Mutex
	lastTime int64
	sequence int64
	node     = nodeId()
)

func nodeId() int64 {
	host, err := os.Hostname()
	if err != nil {
		return int64(os.Getpid()) & maxNode
	}
	h := fnv.New32a()
	h.Write([]byte(host))
	return int64(h.Sum32()) & maxNode
}

// ID returns the next unique identifier. Blocks for at most a millisecond
// when the per-millisecond sequence overflows.
func ID() uint64 {
	mu.Lock()
	defer mu.Unlock()

	now := time.Now().UnixMilli()
	if now == lastTime {
		sequence = (sequence + 1) & sequenceMask
		if sequence == 0 {
			for now <= lastTime {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		sequence = 0
	}
	lastTime = now

	return uint64((now-epochMillis)<<(nodeBits+sequenceBits) | node<<sequenceBits | sequence)
}

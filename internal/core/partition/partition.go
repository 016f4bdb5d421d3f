package partition

import (
	"encoding/binary"
	"hash/fnv"
)

// Count is the fixed number of logical partitions of the cluster key space.
const Count = 64

// ForCluster returns the partition ID for a cluster.
// Stable and deterministic: same clusterID always maps to the same partition.
// Uses FNV-32a over the big-endian bytes of the ID so sequential IDs spread out.
func ForCluster(clusterID int64) int {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(clusterID))
	h := fnv.New32a()
	h.Write(buf[:])
	return int(h.Sum32() % Count)
}

// Package cmap provides a sharded, string-keyed concurrent map.
//
// Keys are distributed over a power-of-two number of shards by murmur3
// hash; each shard has its own RWMutex, so operations on different keys
// rarely contend.
//
//	m := cmap.NewWithShards[string](16)
//	m.Set("1", "eyJ...")
//	tok, ok := m.Get("1")
package cmap

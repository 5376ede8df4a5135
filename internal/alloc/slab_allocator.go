package alloc

import (
	"sync"
	"sync/atomic"
)

// SlabAllocator is a generic, lock-free slab allocator for short-lived slices.
// Parse jobs draw their per-file scratch (top-level cursor lists, name
// buffers) from it and hand it back when the job ends.
type SlabAllocator[T any] struct {
	// Pools for different size categories (pointers to avoid copying sync.Pool)
	pools []*poolTier[T]

	stats atomic.Pointer[AllocatorStats]
}

// poolTier represents a single size tier in the slab allocator
type poolTier[T any] struct {
	capacity int
	pool     sync.Pool
}

// AllocatorStats tracks allocation statistics
type AllocatorStats struct {
	Allocations   int64
	Reuses        int64
	PoolHits      int64
	PoolMisses    int64
	TotalCapacity int64
}

// SlabTierConfig defines the configuration for a single slab tier
type SlabTierConfig struct {
	Capacity int
}

// DefaultTierConfigs fits top-level declaration counts of typical sources
// and headers.
var DefaultTierConfigs = []SlabTierConfig{
	{Capacity: 16},
	{Capacity: 64},
	{Capacity: 256},
	{Capacity: 1024},
	{Capacity: 4096},
}

// NewSlabAllocator creates a new slab allocator with the given tier configurations
func NewSlabAllocator[T any](configs []SlabTierConfig) *SlabAllocator[T] {
	sa := &SlabAllocator[T]{
		pools: make([]*poolTier[T], len(configs)),
	}

	for i, config := range configs {
		capacity := config.Capacity // capture for closure
		sa.pools[i] = &poolTier[T]{
			capacity: capacity,
			pool: sync.Pool{
				New: func() any {
					return make([]T, 0, capacity)
				},
			},
		}
	}

	sa.stats.Store(&AllocatorStats{})
	return sa
}

// NewSlabAllocatorWithDefaults creates a slab allocator with default tier configurations
func NewSlabAllocatorWithDefaults[T any]() *SlabAllocator[T] {
	return NewSlabAllocator[T](DefaultTierConfigs)
}

// Get returns a slice with length 0 and capacity >= requested.
func (sa *SlabAllocator[T]) Get(capacity int) []T {
	if capacity <= 0 {
		capacity = 1
	}

	// Find the smallest pool that can accommodate the request
	for _, tier := range sa.pools {
		if tier.capacity >= capacity {
			return sa.getFromPool(tier)
		}
	}

	// No pool large enough, allocate directly
	sa.updateStats(func(stats *AllocatorStats) {
		stats.Allocations++
		stats.PoolMisses++
		stats.TotalCapacity += int64(capacity)
	})

	return make([]T, 0, capacity)
}

// Put returns a slice to the pool matching its capacity. Elements are
// zeroed first so pooled slices do not pin cursors or trees.
func (sa *SlabAllocator[T]) Put(slice []T) {
	if cap(slice) == 0 {
		return
	}

	capacity := cap(slice)
	for _, tier := range sa.pools {
		if tier.capacity == capacity {
			clear(slice[:capacity])
			tier.pool.Put(slice[:0])

			sa.updateStats(func(stats *AllocatorStats) {
				stats.Reuses++
			})
			return
		}
	}

	// No matching pool, discard
	sa.updateStats(func(stats *AllocatorStats) {
		stats.PoolMisses++
	})
}

// Append appends v, moving to the next tier through Get/Put when full
func (sa *SlabAllocator[T]) Append(slice []T, v T) []T {
	if len(slice) == cap(slice) {
		slice = sa.GrowSlice(slice, max(len(slice), 1))
	}
	return append(slice, v)
}

// GrowSlice grows a slice to accommodate additional elements, using slab allocation when possible
func (sa *SlabAllocator[T]) GrowSlice(slice []T, additionalCapacity int) []T {
	if additionalCapacity <= 0 {
		return slice
	}

	requiredCap := len(slice) + additionalCapacity
	if cap(slice) >= requiredCap {
		return slice
	}

	newSlice := sa.Get(requiredCap)
	newSlice = append(newSlice, slice...)
	sa.Put(slice)

	return newSlice
}

// GetStats returns current allocation statistics
func (sa *SlabAllocator[T]) GetStats() AllocatorStats {
	return *sa.stats.Load()
}

// ResetStats resets all statistics to zero
func (sa *SlabAllocator[T]) ResetStats() {
	sa.stats.Store(&AllocatorStats{})
}

// getFromPool takes a slice from the tier's pool; sync.Pool's New covers misses
func (sa *SlabAllocator[T]) getFromPool(tier *poolTier[T]) []T {
	slice := tier.pool.Get().([]T)
	sa.updateStats(func(stats *AllocatorStats) {
		stats.PoolHits++
		stats.TotalCapacity += int64(tier.capacity)
	})
	return slice
}

// updateStats atomically updates the statistics
func (sa *SlabAllocator[T]) updateStats(update func(*AllocatorStats)) {
	for {
		current := sa.stats.Load()
		next := *current
		update(&next)
		if sa.stats.CompareAndSwap(current, &next) {
			return
		}
	}
}

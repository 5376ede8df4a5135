package alloc

// arenaChunkSize is the number of values per chunk. Chunks are never
// reallocated, so pointers returned by At stay valid for the arena's life.
const arenaChunkSize = 1024

// Arena stores values of T for the whole run and addresses them by a dense
// 1-based index. Index 0 is never handed out so callers can use it as a
// null handle. Arena is not safe for concurrent use.
type Arena[T any] struct {
	chunks [][]T
	n      uint32
}

// NewArena creates an empty arena
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Alloc reserves a zero value and returns its index and address
func (a *Arena[T]) Alloc() (uint32, *T) {
	chunk := int(a.n / arenaChunkSize)
	if chunk == len(a.chunks) {
		a.chunks = append(a.chunks, make([]T, arenaChunkSize))
	}
	slot := &a.chunks[chunk][a.n%arenaChunkSize]
	a.n++
	return a.n, slot
}

// At returns the value stored at index, or nil when index is out of range
func (a *Arena[T]) At(index uint32) *T {
	if index == 0 || index > a.n {
		return nil
	}
	i := index - 1
	return &a.chunks[i/arenaChunkSize][i%arenaChunkSize]
}

// Len returns the number of allocated values
func (a *Arena[T]) Len() int {
	return int(a.n)
}

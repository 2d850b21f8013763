// Package pool provides bucketed sync.Pool instances for the large scratch
// buffers of the quantizer: strip outputs and diffusion error accumulators.
// Buffers are organized by size class to minimize waste.
package pool

import "sync"

// Size classes for bucketed pools, in elements.
const (
	Size4K   = 4096
	Size64K  = 65536
	Size256K = 262144
	Size1M   = 1048576
	Size4M   = 4194304
)

// bucketIndex returns the pool index for a given size.
func bucketIndex(size int) int {
	switch {
	case size <= Size4K:
		return 0
	case size <= Size64K:
		return 1
	case size <= Size256K:
		return 2
	case size <= Size1M:
		return 3
	default:
		return 4
	}
}

var sizes = [5]int{Size4K, Size64K, Size256K, Size1M, Size4M}

var (
	bytePools  [5]sync.Pool
	floatPools [5]sync.Pool
)

func init() {
	for i := range sizes {
		sz := sizes[i]
		bytePools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, sz)
				return &b
			},
		}
		floatPools[i] = sync.Pool{
			New: func() any {
				f := make([]float32, sz)
				return &f
			},
		}
	}
}

// Get returns a byte slice of the requested size from the pool. The
// contents are unspecified. The caller should call Put when done.
func Get(size int) []byte {
	idx := bucketIndex(size)
	bp := bytePools[idx].Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		return make([]byte, size)
	}
	return b[:size]
}

// Put returns a byte slice to the pool. Slices smaller than the smallest
// size class are dropped.
func Put(b []byte) {
	c := cap(b)
	if c < Size4K {
		return
	}
	b = b[:c]
	bytePools[bucketIndex(c)].Put(&b)
}

// GetFloat32 returns a zeroed float32 slice of the requested length, used as
// the error accumulator of one diffusion pass.
func GetFloat32(length int) []float32 {
	idx := bucketIndex(length)
	fp := floatPools[idx].Get().(*[]float32)
	f := *fp
	if cap(f) < length {
		return make([]float32, length)
	}
	f = f[:length]
	clear(f)
	return f
}

// PutFloat32 returns an accumulator to the pool.
func PutFloat32(f []float32) {
	c := cap(f)
	if c < Size4K {
		return
	}
	f = f[:c]
	floatPools[bucketIndex(c)].Put(&f)
}

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uheap

import "unsafe"

// classPool is the fixed-size-class fast path from spec.md §4.4: a
// single mmap of poolBlocksPerClass equal-sized blocks, reused LIFO
// through a free-index stack. It borrows the teacher's BoundedPool[T]
// idea of handing out blocks by index, but has only get and put (get
// returns the block address, put takes it back; there are no Value or
// Cap accessors) and drops every atomic, lock and retry loop — the
// allocator is single-threaded by contract, so a plain slice-backed
// stack is the whole implementation.
type classPool struct {
	noCopy noCopy

	blockSize int
	region    *region // backing mmap for this class, sized poolBlocksPerClass*blockSize

	free []int32 // stack of free block indices; free[len-1] is next to hand out
	used []bool  // used[i] true while block i is handed out, for double-free checks

	allocRequests int64
	freeRequests  int64
	allocFailures int64
	inUse         int
	peak          int
}

// PoolClassStats is the read-only snapshot PoolStats (diagnostics.go)
// reports for one size class.
type PoolClassStats struct {
	BlockSize     int
	Capacity      int
	InUse         int
	Peak          int
	AllocRequests int64
	FreeRequests  int64
	AllocFailures int64
}

func newClassPool(blockSize int) (*classPool, error) {
	r, err := newRegion(uintptr(blockSize) * poolBlocksPerClass)
	if err != nil {
		return nil, err
	}
	p := &classPool{
		blockSize: blockSize,
		region:    r,
		free:      make([]int32, poolBlocksPerClass),
		used:      make([]bool, poolBlocksPerClass),
	}
	for i := range p.free {
		// Push in descending order so index 0 is handed out first,
		// matching the block-address-ascending order callers expect
		// from a freshly initialized pool.
		p.free[i] = int32(poolBlocksPerClass - 1 - i)
	}
	return p, nil
}

func (p *classPool) blockAt(i int32) unsafe.Pointer {
	return unsafe.Pointer(p.region.base + uintptr(i)*uintptr(p.blockSize))
}

// get pops the top free index and returns its block's address. The
// block-address-equals-payload convention is mandated by spec.md §4.4,
// overriding the original C source's descriptor-offset indirection.
func (p *classPool) get() (unsafe.Pointer, bool) {
	p.allocRequests++
	n := len(p.free)
	if n == 0 {
		p.allocFailures++
		return nil, false
	}
	i := p.free[n-1]
	p.free = p.free[:n-1]
	p.used[i] = true
	p.inUse++
	if p.inUse > p.peak {
		p.peak = p.inUse
	}
	return p.blockAt(i), true
}

// put pushes ptr's index back onto the free stack. Per spec.md §4.4,
// the three rejection cases are distinct: a pointer outside this
// class's mapped range is InvalidPointer, one inside the range but not
// block-aligned is AlignmentError, and one aligned but already on the
// free list is DoubleFree.
func (p *classPool) put(ptr unsafe.Pointer) ErrorCode {
	p.freeRequests++
	addr := uintptr(ptr)
	if !p.region.contains(addr) {
		return InvalidPointer
	}
	off := addr - p.region.base
	if off%uintptr(p.blockSize) != 0 {
		return AlignmentError
	}
	i := int32(off / uintptr(p.blockSize))
	if int(i) >= len(p.used) || !p.used[i] {
		return DoubleFree
	}
	p.used[i] = false
	p.free = append(p.free, i)
	p.inUse--
	return Success
}

func (p *classPool) owns(ptr unsafe.Pointer) bool {
	return p.region.contains(uintptr(ptr))
}

func (p *classPool) stats(size int) PoolClassStats {
	return PoolClassStats{
		BlockSize:     size,
		Capacity:      poolBlocksPerClass,
		InUse:         p.inUse,
		Peak:          p.peak,
		AllocRequests: p.allocRequests,
		FreeRequests:  p.freeRequests,
		AllocFailures: p.allocFailures,
	}
}

func (p *classPool) close() error {
	return p.region.close()
}

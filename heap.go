// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uheap

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// heapState is the single process-wide instance every public function
// dispatches through. uheap is explicitly single-threaded (doc.go); no
// locking accompanies these fields.
type heapState struct {
	noCopy noCopy

	initialized bool
	region      *region
	fl          *freeList
	classes     [numPoolClasses]*classPool
	spray       sprayDetector
	gc          gcState
}

var theHeap *heapState

// Init acquires the backing region and constructs the pool classes.
// It is idempotent: a second successful call returns nil and changes
// nothing (spec.md §4.2).
func Init(bytes int) error {
	if theHeap != nil && theHeap.initialized {
		return setLastError(Success, 0).asError()
	}

	n := bytes
	if n == 0 {
		n = defaultHeapSize
	}
	if n < minHeapSize {
		n = minHeapSize
	}
	if n > maxHeapSize {
		n = maxHeapSize
	}

	r, err := newRegion(uintptr(n))
	if err != nil {
		return setLastError(InitFailed, errnoOf(err)).asError()
	}
	if r.size < headerSize*minHeapUnits {
		_ = r.close()
		return setLastError(InitFailed, 0).asError()
	}
	if r.base%headerSize != 0 {
		_ = r.close()
		return setLastError(InitFailed, 0).asError()
	}

	h := &heapState{
		region: r,
		fl:     newFreeList(r),
	}
	for i, size := range poolClassSizes {
		cp, cerr := newClassPool(size)
		if cerr != nil {
			return setLastError(InitFailed, errnoOf(cerr)).asError()
		}
		h.classes[i] = cp
	}
	h.initialized = true
	theHeap = h
	return setLastError(Success, 0).asError()
}

// Alloc consults the spray detector, tries the matching pool class,
// and falls back to the free-list allocator, per spec.md §4.5.
func Alloc(n int) unsafe.Pointer {
	if theHeap == nil || !theHeap.initialized {
		setLastError(NotInitialized, 0)
		return nil
	}
	if n <= 0 {
		setLastError(InvalidSize, 0)
		return nil
	}

	if theHeap.spray.record(n, time.Now()) {
		setLastError(SprayAttack, 0)
		return nil
	}

	if class, ok := classFor(n); ok {
		if p, got := theHeap.classes[class].get(); got {
			zero(p, uintptr(poolClassSizes[class]))
			setLastError(Success, 0)
			return p
		}
		// Pool exhausted for this class: fall through to the free-list
		// tier rather than failing outright.
	}

	p, code := theHeap.fl.alloc(n)
	setLastError(code, 0)
	return p
}

// Free tries each pool class first, then the free-list allocator, per
// spec.md §4.5; tier membership is decided purely by address range.
func Free(p unsafe.Pointer) {
	if theHeap == nil || !theHeap.initialized {
		setLastError(NotInitialized, 0)
		return
	}
	if p == nil {
		setLastError(InvalidPointer, 0)
		return
	}
	for _, cp := range theHeap.classes {
		if cp.owns(p) {
			setLastError(cp.put(p), 0)
			return
		}
	}
	setLastError(theHeap.fl.release(p), 0)
}

func errnoOf(err error) int {
	if e, ok := err.(unix.Errno); ok {
		return int(e)
	}
	return 0
}

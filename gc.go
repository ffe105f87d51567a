// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uheap

import "unsafe"

// gcState holds the root table and, optionally, a conservative
// stack-scan bound. Collection runs only over the free-list region;
// pool blocks are never collected (spec.md §4.7).
type gcState struct {
	noCopy noCopy

	roots    []*unsafe.Pointer
	stackTop uintptr // address captured at GCInit; 0 if conservative scan unused
}

// AddRoot registers pp as an explicit root: every call to Collect
// treats *pp as a candidate pointer. The table is bounded at maxRoots,
// mirroring spec.md §4.7's "bounded table of pointer-to-pointer slots".
func AddRoot(pp *unsafe.Pointer) {
	if theHeap == nil || !theHeap.initialized {
		setLastError(NotInitialized, 0)
		return
	}
	if pp == nil {
		return
	}
	if len(theHeap.gc.roots) >= maxRoots {
		setLastError(OutOfMemory, 0)
		return
	}
	theHeap.gc.roots = append(theHeap.gc.roots, pp)
	setLastError(Success, 0)
}

// RemoveRoot unregisters a previously added root. A no-op if pp was
// never registered.
func RemoveRoot(pp *unsafe.Pointer) {
	if theHeap == nil || !theHeap.initialized {
		setLastError(NotInitialized, 0)
		return
	}
	roots := theHeap.gc.roots
	for i, r := range roots {
		if r == pp {
			theHeap.gc.roots = append(roots[:i], roots[i+1:]...)
			setLastError(Success, 0)
			return
		}
	}
	setLastError(Success, 0)
}

// GCInit captures an approximate stack bound for the conservative
// scan mode. This is a best-effort approximation, not a true
// stack-pointer read: Go goroutine stacks move and grow, and there is
// no portable, safe way to read the hardware stack pointer from plain
// Go. The address of a local variable at GCInit time stands in for the
// stack bottom; explicit roots (AddRoot/RemoveRoot) remain the
// mechanism callers should actually rely on. Collect still runs
// correctly with this mode disabled (stackTop == 0).
func GCInit() {
	if theHeap == nil || !theHeap.initialized {
		setLastError(NotInitialized, 0)
		return
	}
	var sentinel byte
	theHeap.gc.stackTop = uintptr(unsafe.Pointer(&sentinel))
	setLastError(Success, 0)
}

// isPlausibleCandidate implements spec.md §4.7's candidate validation:
// non-null, word-aligned, inside the payload-addressable range of the
// free-list region.
func (fl *freeList) isPlausibleCandidate(word uintptr) bool {
	if word == 0 {
		return false
	}
	if word%unsafe.Alignof(uintptr(0)) != 0 {
		return false
	}
	lo := fl.r.base + headerSize + fenceSize
	hi := fl.r.base + fl.r.size
	return word >= lo && word < hi
}

// mark recovers the header from a plausible candidate and, if it is a
// genuinely live unmarked block, sets MARK and recurses word-by-word
// over its payload (spec.md §4.7's Mark phase).
func (fl *freeList) mark(word uintptr) {
	if !fl.isPlausibleCandidate(word) {
		return
	}
	headerAddr := word - headerSize - fenceSize
	if !fl.r.contains(headerAddr) || (headerAddr-fl.r.base)%headerSize != 0 {
		return
	}
	h := fl.r.headerAt(headerAddr)
	if !h.inUse() || h.magic != allocMagic || h.marked() {
		return
	}
	h.setMark()

	payloadSize := h.size() - headerSize - 2*fenceSize
	payload := fl.r.payloadOf(h)
	n := payloadSize / unsafe.Sizeof(uintptr(0))
	words := unsafe.Slice((*uintptr)(payload), n)
	for _, w := range words {
		fl.mark(w)
	}
}

// scanRoots marks every candidate reachable from the explicit root
// table and, if GCInit was called, from the best-effort stack range.
func (h *heapState) scanRoots() {
	for _, pp := range h.gc.roots {
		if pp == nil {
			continue
		}
		h.mark(uintptr(*pp))
	}
	if h.gc.stackTop == 0 {
		return
	}
	var here byte
	cur := uintptr(unsafe.Pointer(&here))
	lo, hi := cur, h.gc.stackTop
	if lo > hi {
		lo, hi = hi, lo
	}
	word := unsafe.Sizeof(uintptr(0))
	for a := lo; a+word <= hi; a += word {
		h.mark(*(*uintptr)(unsafe.Pointer(a)))
	}
}

// sweep linearly walks the free-list region; any in-use, unmarked
// block is released through the ordinary release path (so it is
// poisoned, canary-checked, and coalesced), and every marked block has
// MARK cleared for the next cycle.
func (fl *freeList) sweep() {
	addr := fl.r.base
	end := fl.r.base + fl.r.size
	for addr < end {
		h := fl.r.headerAt(addr)
		size := h.size()
		if size < headerSize {
			break // corrupt/unexpected; stop rather than loop forever
		}
		next := addr + size
		if h.inUse() && h.magic == allocMagic {
			if !h.marked() {
				fl.release(fl.r.payloadOf(h))
			} else {
				h.clearMark()
			}
		}
		addr = next
	}
}

// Collect runs one stop-the-world mark-sweep cycle over the free-list
// region. Pool blocks are not touched.
func Collect() {
	if theHeap == nil || !theHeap.initialized {
		setLastError(NotInitialized, 0)
		return
	}
	theHeap.scanRoots()
	theHeap.fl.sweep()
	setLastError(Success, 0)
}

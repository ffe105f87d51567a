// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uheap

import "unsafe"

// freeList is the variable-size tier: a circular, address-ordered free
// list over one region, with first-fit search, splitting on
// allocation, and bidirectional coalescing on release. Every in-use
// block is fenced with canaries and magic-tagged; freeList.release
// verifies both before touching the heap.
type freeList struct {
	noCopy noCopy

	r *region

	// sentinel is a distinguished, permanent ring member that is never a
	// real block (spec.md §9 "Circular sentinel free list"): it always
	// has size 0, is never IN-USE, and lives outside the mapped region,
	// so it can never be selected by alloc's first-fit search nor ever
	// alias a live, in-use block the way a self-referential first real
	// block would. freep may point at the sentinel or at any real free
	// block; it must never come to rest on an in-use block.
	sentinel Header
	freep    *Header
}

func newFreeList(r *region) *freeList {
	fl := &freeList{r: r}
	first := r.headerAt(r.base)
	first.magic = freeMagic
	first.setSize(r.size)
	first.clearInUse()

	fl.sentinel.next = first
	first.next = &fl.sentinel
	fl.freep = &fl.sentinel
	return fl
}

// blockTotal computes header_size + payload + 2F for a requested byte
// count, after rounding payload up to header alignment. ok is false on
// overflow or invalid input, matching spec.md §4.3 step 1.
func blockTotal(request int) (total uintptr, ok bool) {
	if request <= 0 {
		return 0, false
	}
	req := uintptr(request)
	if req > uintptr(maxHeapSize) {
		return 0, false
	}
	payload := roundUp(req, headerSize)
	if payload < req {
		return 0, false // overflow
	}
	total = headerSize + payload + 2*fenceSize
	if total < payload {
		return 0, false // overflow
	}
	return total, true
}

func (fl *freeList) preCanary(h *Header) []byte {
	p := uintptr(unsafe.Pointer(h)) + headerSize
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), fenceSize)
}

func (fl *freeList) postCanary(h *Header) []byte {
	p := uintptr(unsafe.Pointer(h)) + headerSize + fenceSize + (h.size() - headerSize - 2*fenceSize)
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), fenceSize)
}

func fillPattern(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}

func checkPattern(b []byte, v byte) bool {
	for _, c := range b {
		if c != v {
			return false
		}
	}
	return true
}

// alloc implements spec.md §4.3's allocation algorithm: first-fit
// search from freep, splitting the winning block if the remainder is
// large enough to host a free block of its own.
func (fl *freeList) alloc(n int) (unsafe.Pointer, ErrorCode) {
	total, ok := blockTotal(n)
	if !ok {
		return nil, InvalidSize
	}
	if total > fl.r.size {
		return nil, OutOfMemory
	}

	start := fl.freep
	prev := fl.freep
	cur := prev.next
	for {
		if !cur.inUse() && cur.size() >= total {
			remainder := cur.size() - total
			if remainder >= headerSize+2*fenceSize {
				newBlockAddr := uintptr(unsafe.Pointer(cur)) + total
				newBlock := fl.r.headerAt(newBlockAddr)
				newBlock.next = cur.next
				newBlock.magic = freeMagic
				newBlock.setSize(remainder)
				newBlock.clearInUse()
				prev.next = newBlock
				cur.setSize(total)
			} else {
				prev.next = cur.next
			}
			cur.setInUse()
			cur.magic = allocMagic
			fillPattern(fl.preCanary(cur), fencePattern)
			fillPattern(fl.postCanary(cur), fencePattern)
			payload := fl.r.payloadOf(cur)
			zero(payload, cur.size()-headerSize-2*fenceSize)
			fl.freep = prev
			return payload, Success
		}
		if cur == start {
			return nil, OutOfMemory
		}
		prev = cur
		cur = cur.next
	}
}

func zero(p unsafe.Pointer, n uintptr) {
	b := unsafe.Slice((*byte)(p), n)
	for i := range b {
		b[i] = 0
	}
}

// isValidHeapPtr is the strict validation predicate spec.md §4.3
// requires release (and the GC's conservative scan) to share: region
// membership, header alignment, plausible size, and valid magic.
func (fl *freeList) isValidHeapPtr(p unsafe.Pointer) (*Header, bool) {
	if p == nil {
		return nil, false
	}
	addr := uintptr(p)
	if addr < fl.r.base+headerSize+fenceSize {
		return nil, false
	}
	headerAddr := addr - headerSize - fenceSize
	if !fl.r.contains(headerAddr) {
		return nil, false
	}
	if (headerAddr-fl.r.base)%headerSize != 0 {
		return nil, false
	}
	h := fl.r.headerAt(headerAddr)
	if h.size() < headerSize+2*fenceSize || h.size() > fl.r.size {
		return nil, false
	}
	if uintptr(unsafe.Pointer(h))+h.size() > fl.r.base+fl.r.size {
		return nil, false
	}
	if h.magic != allocMagic && h.magic != freeMagic {
		return nil, false
	}
	return h, true
}

// release implements spec.md §4.3's release algorithm: validation,
// canary verification, poisoning, then address-order reinsertion with
// bidirectional coalescing.
func (fl *freeList) release(p unsafe.Pointer) ErrorCode {
	h, ok := fl.isValidHeapPtr(p)
	if !ok {
		return InvalidPointer
	}
	if !h.inUse() {
		return DoubleFree
	}
	if h.magic != allocMagic {
		return CorruptionDetected
	}
	if !checkPattern(fl.preCanary(h), fencePattern) || !checkPattern(fl.postCanary(h), fencePattern) {
		return BoundaryError
	}

	payload := fl.r.payloadOf(h)
	fillPattern(unsafe.Slice((*byte)(payload), h.size()-headerSize-2*fenceSize), poisonByte)

	h.clearInUse()
	h.magic = freeMagic

	prev := fl.findInsertionPoint(h)
	freed := h
	next := prev.next

	freed.next = next

	// The sentinel's address lies outside the mapped region and its
	// size is always 0, so neither adjacency test below can ever fire
	// against it — coalescing only ever merges real, physically
	// adjacent blocks.
	if uintptr(unsafe.Pointer(freed))+freed.size() == uintptr(unsafe.Pointer(next)) {
		freed.setSize(freed.size() + next.size())
		freed.next = next.next
	}
	if uintptr(unsafe.Pointer(prev))+prev.size() == uintptr(unsafe.Pointer(freed)) {
		prev.setSize(prev.size() + freed.size())
		prev.next = freed.next
		fl.freep = prev
	} else {
		prev.next = freed
		fl.freep = prev
	}
	return Success
}

// findInsertionPoint locates the unique predecessor in the
// address-ordered circular free list such that freed belongs between
// prev and prev.next, per spec.md §4.3 step 6.
func (fl *freeList) findInsertionPoint(freed *Header) *Header {
	prev := fl.freep
	faddr := uintptr(unsafe.Pointer(freed))
	for {
		paddr := uintptr(unsafe.Pointer(prev))
		naddr := uintptr(unsafe.Pointer(prev.next))
		if paddr < naddr {
			if paddr < faddr && faddr < naddr {
				break
			}
		} else {
			// wrap point: prev is the highest-addressed free block
			if faddr > paddr || faddr < naddr {
				break
			}
		}
		prev = prev.next
		if prev == fl.freep {
			break
		}
	}
	return prev
}

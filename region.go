// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uheap

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// region is one OS-backed anonymous private mapping: the free-list
// allocator carves its blocks out of the one obtained at Init, and each
// pool size class has one of its own (newClassPool). Using mmap keeps
// the bytes out of Go's garbage collector — the allocator, not the
// runtime, owns their lifetime.
type region struct {
	data []byte // the mmap'd slice; data[0]'s address is base
	base uintptr
	size uintptr
}

func pageSize() uintptr {
	return uintptr(unix.Getpagesize())
}

// mapAnon reserves n bytes of anonymous, private, read-write memory.
// n must already be page-rounded by the caller.
func mapAnon(n uintptr) ([]byte, error) {
	return unix.Mmap(-1, 0, int(n), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
}

func unmapAnon(b []byte) error {
	return unix.Munmap(b)
}

// newRegion rounds bytes up to the next page, then down to a multiple
// of headerSize (spec.md §4.2 steps 3-4), then maps it. roundUp is
// shared with config.go's header-alignment rounding.
func newRegion(bytes uintptr) (*region, error) {
	ps := pageSize()
	n := roundUp(bytes, ps)
	n &^= headerSize - 1 // round down to header alignment

	data, err := mapAnon(n)
	if err != nil {
		return nil, err
	}
	return &region{
		data: data,
		base: uintptr(unsafe.Pointer(&data[0])),
		size: n,
	}, nil
}

func (r *region) close() error {
	if r.data == nil {
		return nil
	}
	err := unmapAnon(r.data)
	r.data = nil
	r.base, r.size = 0, 0
	return err
}

// contains reports whether p falls strictly within the mapped bytes,
// the first test isValidHeapPtr (freelist.go) applies before ever
// dereferencing p as a Header.
func (r *region) contains(p uintptr) bool {
	return p >= r.base && p < r.base+r.size
}

func (r *region) headerAt(p uintptr) *Header {
	return (*Header)(unsafe.Pointer(p))
}

func (r *region) payloadOf(h *Header) unsafe.Pointer {
	return unsafe.Pointer(uintptr(unsafe.Pointer(h)) + headerSize + fenceSize)
}

func (r *region) headerOfPayload(p unsafe.Pointer) *Header {
	addr := uintptr(p) - headerSize - fenceSize
	return (*Header)(unsafe.Pointer(addr))
}

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uheap

import "unsafe"

// Tunables, fixed by spec.md §6.
const (
	defaultHeapSize = 64 * 1024        // 64 KiB
	minHeapSize     = 4 * 1024         // 4 KiB
	maxHeapSize     = 16 * 1024 * 1024 // 16 MiB
	minHeapUnits    = 2

	fenceSize    = 16
	fencePattern = 0xFE
	poisonByte   = 0xDE

	allocMagic uint32 = 0xDEADBEEF
	freeMagic  uint32 = 0xBAADF00D

	poolBlocksPerClass = 128

	maxRoots = 1024

	sprayMaxEvents      = 32
	spraySameSizeLimit  = 8
	sprayTimeWindowNS   = 50_000_000 // 50 ms
)

// Flag bits packed into the low bits of Header.sizeAndFlags, mirroring
// original_source/include/heap_internal.h's HEAP_FLAG_INUSE and
// spec.md §3's MARK bit.
const (
	flagInUse uintptr = 1 << 0
	flagMark  uintptr = 1 << 1
	flagMask  uintptr = flagInUse | flagMark
)

// Header is the fixed-size record prefixing every block in the variable
// (free-list) region. Its layout mirrors the C reference's
// `union header`: a next pointer meaningful only while free, and a size
// word with flag bits packed into the low bits. magic corroborates the
// in-use/free state beyond the flag bit alone (spec.md §3 invariant I2).
type Header struct {
	next         *Header
	sizeAndFlags uintptr
	magic        uint32
	_            [12]byte // pad: keeps unsafe.Sizeof(Header{}) a power of two (32 bytes on 64-bit)
}

// headerSize is the on-heap header size; spec.md §3 requires it be a
// power of two so it can double as the alignment/flag mask.
var headerSize = unsafe.Sizeof(Header{})

func init() {
	if headerSize&(headerSize-1) != 0 {
		panic("uheap: unsafe.Sizeof(Header{}) must be a power of two")
	}
}

func (h *Header) size() uintptr        { return h.sizeAndFlags &^ flagMask }
func (h *Header) setSize(n uintptr)    { h.sizeAndFlags = n | (h.sizeAndFlags & flagMask) }
func (h *Header) inUse() bool          { return h.sizeAndFlags&flagInUse != 0 }
func (h *Header) setInUse()            { h.sizeAndFlags |= flagInUse }
func (h *Header) clearInUse()          { h.sizeAndFlags &^= flagInUse }
func (h *Header) marked() bool         { return h.sizeAndFlags&flagMark != 0 }
func (h *Header) setMark()             { h.sizeAndFlags |= flagMark }
func (h *Header) clearMark()           { h.sizeAndFlags &^= flagMark }

// roundUp rounds n up to the next multiple of align, which must be a
// power of two. This generalizes the teacher's AlignedMem arithmetic
// (((base+align-1)/align)*align) from byte-slice base addresses to
// plain sizes, reused here for both page-rounding (region.go) and
// header-alignment rounding (freelist.go).
func roundUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uheap

import (
	"fmt"
	"io"
	"unsafe"

	"code.hybscloud.com/uheap/internal"
)

// WalkDump performs a per-block walk of the free-list region, printing
// header address, payload address, size, in-use flag, magic, and
// canary status for every block. It is read-only; it never mutates
// heap state (spec.md §4.8).
func WalkDump(w io.Writer) {
	if theHeap == nil || !theHeap.initialized {
		fmt.Fprintln(w, "uheap: not initialized")
		return
	}
	fl := theHeap.fl
	addr := fl.r.base
	end := fl.r.base + fl.r.size
	for addr < end {
		h := fl.r.headerAt(addr)
		size := h.size()
		if size < headerSize {
			fmt.Fprintf(w, "%#x: corrupt header (size=%d)\n", addr, size)
			return
		}
		status := "FREE"
		canary := "n/a"
		if h.inUse() {
			status = "IN-USE"
			ok := checkPattern(fl.preCanary(h), fencePattern) && checkPattern(fl.postCanary(h), fencePattern)
			canary = "ok"
			if !ok {
				canary = "DAMAGED"
			}
		}
		fmt.Fprintf(w, "%#x: %s size=%d payload=%#x magic=%#08x canary=%s\n",
			addr, status, size, uintptr(fl.r.payloadOf(h)), h.magic, canary)
		addr += size
	}
}

// RawDump writes the entire region as a hex dump, grouped into rows of
// internal.CacheLineSize bytes. It is read-only (spec.md §4.8).
func RawDump(w io.Writer) {
	if theHeap == nil || !theHeap.initialized {
		fmt.Fprintln(w, "uheap: not initialized")
		return
	}
	r := theHeap.region
	row := internal.CacheLineSize
	data := unsafe.Slice((*byte)(unsafe.Pointer(r.base)), r.size)
	for off := 0; off < len(data); off += row {
		end := off + row
		if end > len(data) {
			end = len(data)
		}
		fmt.Fprintf(w, "%08x  ", off)
		for _, b := range data[off:end] {
			fmt.Fprintf(w, "%02x ", b)
		}
		fmt.Fprintln(w)
	}
}

// PoolStats returns a point-in-time snapshot of every pool size class.
func PoolStats() [numPoolClasses]PoolClassStats {
	var out [numPoolClasses]PoolClassStats
	if theHeap == nil || !theHeap.initialized {
		return out
	}
	for i, cp := range theHeap.classes {
		out[i] = cp.stats(poolClassSizes[i])
	}
	return out
}

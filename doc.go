// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package uheap implements a process-local, single-threaded memory
// allocator over one OS-backed region of virtual memory.
//
// The region is obtained once, at Init, as a single anonymous mapping.
// Allocations are served from two cooperating tiers:
//
//   - a fixed size-class pool (32/64/128/256 bytes) for the small-object
//     fast path, each class independently mapped and LIFO-reused;
//   - a first-fit free-list allocator over the whole region, with
//     splitting on allocation and address-order coalescing on release.
//
// Every in-use free-list block carries fence canaries and a magic tag;
// Free verifies both before touching the heap. A conservative,
// stop-the-world mark-sweep collector (Collect) can reclaim free-list
// blocks unreachable from a set of registered roots.
//
// # Allocation path
//
//	n := 48
//	p := uheap.Alloc(n) // spray check -> pool tier -> free-list tier
//	if p == nil {
//	    log.Fatal(uheap.LastError())
//	}
//	uheap.Free(p)
//
// # Roots and collection
//
//	var live unsafe.Pointer
//	uheap.AddRoot(&live)
//	live = uheap.Alloc(64)
//	uheap.Collect() // live survives; anything unreachable is freed
//	uheap.RemoveRoot(&live)
//
// # Thread safety
//
// uheap is explicitly not safe for concurrent use. There are no locks,
// no atomics, and no re-entrancy guarantees anywhere in the public
// surface; every call may freely walk and mutate global heap state.
// Callers that need concurrent access must serialize all calls behind
// a single mutex of their own.
//
// # Dependencies
//
// uheap depends on:
//   - golang.org/x/sys/unix: anonymous memory mappings for the region
//     and each pool size class
package uheap

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uheap

import (
	"testing"
	"unsafe"
)

func TestAddRemoveRoot(t *testing.T) {
	resetForTest()
	defer resetForTest()
	mustInit(t, 10*1024)

	var p unsafe.Pointer
	AddRoot(&p)
	if len(theHeap.gc.roots) != 1 {
		t.Fatalf("len(roots) = %d, want 1", len(theHeap.gc.roots))
	}
	RemoveRoot(&p)
	if len(theHeap.gc.roots) != 0 {
		t.Fatalf("len(roots) = %d, want 0 after RemoveRoot", len(theHeap.gc.roots))
	}
}

func TestAddRootBounded(t *testing.T) {
	resetForTest()
	defer resetForTest()
	mustInit(t, 10*1024)

	slots := make([]unsafe.Pointer, maxRoots+1)
	for i := range slots {
		AddRoot(&slots[i])
	}
	if len(theHeap.gc.roots) != maxRoots {
		t.Fatalf("len(roots) = %d, want capped at %d", len(theHeap.gc.roots), maxRoots)
	}
	if LastError() != OutOfMemory {
		t.Fatalf("LastError() = %v, want OutOfMemory once the root table is full", LastError())
	}
}

func TestGCInitCapturesStackTop(t *testing.T) {
	resetForTest()
	defer resetForTest()
	mustInit(t, 10*1024)

	GCInit()
	if theHeap.gc.stackTop == 0 {
		t.Fatal("GCInit did not record a stack bound")
	}
}

// TestCollectClearsMarkBits checks the MARK half of invariant 6: a block
// reachable from a root survives Collect with its MARK bit cleared.
func TestCollectClearsMarkBits(t *testing.T) {
	resetForTest()
	defer resetForTest()
	mustInit(t, 10*1024)

	var live unsafe.Pointer
	AddRoot(&live)
	live = Alloc(500)
	if live == nil {
		t.Fatalf("Alloc: %v", LastError())
	}

	Collect()

	h := theHeap.fl.r.headerOfPayload(live)
	if h.marked() {
		t.Fatal("MARK bit left set after Collect")
	}
	if !h.inUse() {
		t.Fatal("reachable block was swept")
	}

	RemoveRoot(&live)
}

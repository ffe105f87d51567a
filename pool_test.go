// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uheap

import (
	"testing"
	"unsafe"
)

func TestClassPoolLIFOReuse(t *testing.T) {
	cp, err := newClassPool(32)
	if err != nil {
		t.Fatalf("newClassPool: %v", err)
	}
	defer cp.close()

	p, ok := cp.get()
	if !ok {
		t.Fatal("get() failed on a fresh pool")
	}
	if code := cp.put(p); code != Success {
		t.Fatalf("put() = %v, want Success", code)
	}
	q, ok := cp.get()
	if !ok || q != p {
		t.Fatalf("expected LIFO reuse: q=%p p=%p ok=%v", q, p, ok)
	}
}

func TestClassPoolExhaustion(t *testing.T) {
	cp, err := newClassPool(32)
	if err != nil {
		t.Fatalf("newClassPool: %v", err)
	}
	defer cp.close()

	for i := 0; i < poolBlocksPerClass; i++ {
		if _, ok := cp.get(); !ok {
			t.Fatalf("get() failed before exhaustion at i=%d", i)
		}
	}
	if _, ok := cp.get(); ok {
		t.Fatal("get() succeeded past capacity")
	}
	if cp.allocFailures != 1 {
		t.Fatalf("allocFailures = %d, want 1", cp.allocFailures)
	}
}

func TestClassPoolDoubleFreeRejected(t *testing.T) {
	cp, err := newClassPool(32)
	if err != nil {
		t.Fatalf("newClassPool: %v", err)
	}
	defer cp.close()

	p, _ := cp.get()
	if code := cp.put(p); code != Success {
		t.Fatalf("first put() = %v, want Success", code)
	}
	if code := cp.put(p); code != DoubleFree {
		t.Fatalf("second put() on the same block = %v, want DoubleFree", code)
	}
}

func TestClassPoolPutRejectsOutOfRangeAndMisaligned(t *testing.T) {
	cp, err := newClassPool(32)
	if err != nil {
		t.Fatalf("newClassPool: %v", err)
	}
	defer cp.close()

	outside := unsafe.Pointer(cp.region.base - 64)
	if code := cp.put(outside); code != InvalidPointer {
		t.Fatalf("put(outside range) = %v, want InvalidPointer", code)
	}

	misaligned := unsafe.Pointer(cp.region.base + 1)
	if code := cp.put(misaligned); code != AlignmentError {
		t.Fatalf("put(misaligned) = %v, want AlignmentError", code)
	}
}

// TestClassPoolCounterInvariant checks invariant 7: used + free == total.
func TestClassPoolCounterInvariant(t *testing.T) {
	cp, err := newClassPool(64)
	if err != nil {
		t.Fatalf("newClassPool: %v", err)
	}
	defer cp.close()

	var ptrs []unsafe.Pointer
	for i := 0; i < 10; i++ {
		p, ok := cp.get()
		if !ok {
			t.Fatalf("get() failed at i=%d", i)
		}
		ptrs = append(ptrs, p)
	}
	if cp.inUse+len(cp.free) != poolBlocksPerClass {
		t.Fatalf("used(%d)+free(%d) != total(%d)", cp.inUse, len(cp.free), poolBlocksPerClass)
	}
	for _, p := range ptrs {
		cp.put(p)
	}
	if cp.inUse+len(cp.free) != poolBlocksPerClass {
		t.Fatalf("used(%d)+free(%d) != total(%d) after releasing all", cp.inUse, len(cp.free), poolBlocksPerClass)
	}
	if cp.inUse != 0 {
		t.Fatalf("inUse = %d after releasing all blocks, want 0", cp.inUse)
	}
}

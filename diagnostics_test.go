// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uheap

import (
	"bytes"
	"strings"
	"testing"
)

func TestWalkDumpNotInitialized(t *testing.T) {
	resetForTest()
	defer resetForTest()

	var buf bytes.Buffer
	WalkDump(&buf)
	if !strings.Contains(buf.String(), "not initialized") {
		t.Fatalf("WalkDump before Init = %q, want a not-initialized message", buf.String())
	}
}

func TestRawDumpLength(t *testing.T) {
	resetForTest()
	defer resetForTest()
	mustInit(t, 4*1024)

	var buf bytes.Buffer
	RawDump(&buf)
	if buf.Len() == 0 {
		t.Fatal("RawDump produced no output")
	}
}

func TestPoolStatsCounters(t *testing.T) {
	resetForTest()
	defer resetForTest()
	mustInit(t, defaultHeapSize)

	p := Alloc(25) // lands in the 32-byte pool class
	if p == nil {
		t.Fatalf("Alloc: %v", LastError())
	}

	stats := PoolStats()
	s := stats[ClassPico]
	if s.InUse != 1 {
		t.Fatalf("ClassPico.InUse = %d, want 1", s.InUse)
	}
	if s.Capacity != poolBlocksPerClass {
		t.Fatalf("ClassPico.Capacity = %d, want %d", s.Capacity, poolBlocksPerClass)
	}
	if s.AllocRequests < 1 {
		t.Fatalf("ClassPico.AllocRequests = %d, want >= 1", s.AllocRequests)
	}

	Free(p)
	stats = PoolStats()
	if stats[ClassPico].InUse != 0 {
		t.Fatalf("ClassPico.InUse = %d after Free, want 0", stats[ClassPico].InUse)
	}
}

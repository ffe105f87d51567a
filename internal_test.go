// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uheap

// resetForTest tears down the process-wide heap so each test gets a
// fresh region. Production callers have no access to this: Init is
// documented as a one-shot, process-lifetime operation (spec.md §4.2,
// §9 "Region lifetime"), and this reset exists solely to let the test
// binary exercise multiple scenarios without spawning a subprocess per
// case.
func resetForTest() {
	if theHeap != nil {
		_ = theHeap.region.close()
		for _, cp := range theHeap.classes {
			if cp != nil {
				_ = cp.close()
			}
		}
	}
	theHeap = nil
	lastErr = lastErrorState{}
}

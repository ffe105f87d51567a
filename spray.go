// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uheap

import "time"

// sprayEvent records one allocation request for the sliding-window
// spray heuristic: spec.md's detector flags a burst of same-size
// allocations arriving within a short time window, a shape typical of
// heap-spray exploitation attempts.
type sprayEvent struct {
	size int
	at   time.Time
}

type sprayDetector struct {
	events [sprayMaxEvents]sprayEvent
	head   int // next slot to write; ring buffer
	count  int // number of valid entries, saturates at sprayMaxEvents
}

// record appends n to the ring and reports whether the resulting window
// trips the detector: at least spraySameSizeLimit of the retained
// requests share this exact size, and the oldest retained entry overall
// (any size) is still within sprayTimeWindowNS of now, matching
// original_source/src/heap_spray.c's earliest = events[0].whenHappened.
func (d *sprayDetector) record(n int, now time.Time) bool {
	d.events[d.head] = sprayEvent{size: n, at: now}
	d.head = (d.head + 1) % sprayMaxEvents
	if d.count < sprayMaxEvents {
		d.count++
	}

	sameSize := 0
	oldest := now
	for i := 0; i < d.count; i++ {
		e := d.events[i]
		if e.at.Before(oldest) {
			oldest = e.at
		}
		if e.size == n {
			sameSize++
		}
	}
	if sameSize < spraySameSizeLimit {
		return false
	}
	return now.Sub(oldest) <= sprayTimeWindowNS*time.Nanosecond
}

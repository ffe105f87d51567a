// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uheap

// Pool size classes, spec.md §6. Four fixed tiers replace the teacher's
// twelve-tier buffer hierarchy (buffers.go's BufferSizePico..Titan):
// the allocator only needs enough classes to take the bulk of small,
// short-lived requests off the free-list fast path.
const (
	ClassSizePico  = 1 << 5 // 32 B
	ClassSizeNano  = 1 << 6 // 64 B
	ClassSizeMicro = 1 << 7 // 128 B
	ClassSizeSmall = 1 << 8 // 256 B
)

// PoolClass indexes the four pool size classes, mirroring the teacher's
// BufferTier enumeration.
type PoolClass int

const (
	ClassPico PoolClass = iota
	ClassNano
	ClassMicro
	ClassSmall
	numPoolClasses // sentinel marking the end of the class table
)

var poolClassSizes = [numPoolClasses]int{
	ClassPico:  ClassSizePico,
	ClassNano:  ClassSizeNano,
	ClassMicro: ClassSizeMicro,
	ClassSmall: ClassSizeSmall,
}

// classFor returns the smallest pool class able to hold n bytes and
// true, or (0, false) if n exceeds every class and must go to the
// free-list tier instead.
func classFor(n int) (PoolClass, bool) {
	switch {
	case n <= ClassSizePico:
		return ClassPico, true
	case n <= ClassSizeNano:
		return ClassNano, true
	case n <= ClassSizeMicro:
		return ClassMicro, true
	case n <= ClassSizeSmall:
		return ClassSmall, true
	default:
		return 0, false
	}
}

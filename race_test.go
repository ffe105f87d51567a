// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package uheap_test

// raceEnabled is true when the race detector is active. No test in the
// module reads it; every test runs the same way in race mode.
const raceEnabled = true

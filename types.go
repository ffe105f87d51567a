// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package uheap

// noCopy is a sentinel used to prevent copying of the heap's global
// state and pool tables. go vet's copylocks check flags any value (or
// struct embedding one) that implements Lock/Unlock and gets copied.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

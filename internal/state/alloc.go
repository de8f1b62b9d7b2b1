// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package state

import (
	"fmt"
	"sync/atomic"

	"github.com/jacobsa/syncutil"
)

// slotState is the FREE/TAKEN status of one slot in an allocation vector.
type slotState uint8

const (
	free slotState = iota
	taken
)

var delaySink int64

// insertDelay busy-loops a bounded number of iterations, touching a shared
// atomic counter so the compiler cannot prove the loop has no side effects
// and fold it away. It models the access latency of a table that, in a real
// file system, would live in secondary storage.
//
// https://youtu.be/nXaxk27zwlk?t=2775 is the canonical explanation of why a
// plain empty loop doesn't survive optimization but a memory side effect
// does.
func insertDelay() {
	const delayIterations = 2000
	for i := 0; i < delayIterations; i++ {
		atomic.AddInt64(&delaySink, 1)
	}
}

// allocTable is the FREE/TAKEN status vector backing one of the three
// allocation spaces (inodes, data blocks, open files), guarded by a single
// reader/writer lock as required by spec §2.1 and §5.
//
// INVARIANT: len(status) == capacity
type allocTable struct {
	mu     syncutil.InvariantMutex
	status []slotState // GUARDED_BY(mu)

	// delayStride entries are scanned between simulated-latency pauses,
	// modeling a scan that touches one secondary-storage block at a time.
	delayStride int
}

func newAllocTable(capacity, delayStride int) *allocTable {
	t := &allocTable{
		status:      make([]slotState, capacity),
		delayStride: delayStride,
	}
	t.mu = syncutil.NewInvariantMutex(t.checkInvariants)

	return t
}

func (t *allocTable) checkInvariants() {
	// Nothing beyond "status has a fixed length" to check; that's enforced by
	// construction and never resized.
}

// alloc scans the status vector under a single write-lock acquisition,
// claims the first FREE slot, flips it TAKEN, and returns its index. ok is
// false if every slot is TAKEN.
func (t *allocTable) alloc() (index int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.status {
		if t.delayStride > 0 && i%t.delayStride == 0 {
			insertDelay()
		}

		if t.status[i] == free {
			t.status[i] = taken
			return i, true
		}
	}

	return 0, false
}

// free flips slot i back to FREE. It panics if i is already FREE: the
// allocators above it are required to sequence calls so this never happens
// (spec §4.3 "no bookkeeping prevents freeing a block still referenced").
func (t *allocTable) free(i int) {
	insertDelay()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status[i] == free {
		panic(fmt.Sprintf("state: double free of slot %d", i))
	}
	t.status[i] = free
}

// isTaken reports whether slot i is currently allocated.
func (t *allocTable) isTaken(i int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.status[i] == taken
}

// isTakenLocked is isTaken for a caller that already holds t.mu, e.g.
// Table.Delete, which must take the inode lock and the allocator lock
// together.
func (t *allocTable) isTakenLocked(i int) bool {
	return t.status[i] == taken
}

// freeLocked is free for a caller that already holds t.mu.
func (t *allocTable) freeLocked(i int) {
	if t.status[i] == free {
		panic(fmt.Sprintf("state: double free of slot %d", i))
	}
	t.status[i] = free
}

func (t *allocTable) capacity() int {
	return len(t.status)
}

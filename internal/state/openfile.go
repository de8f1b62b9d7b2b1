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

import "github.com/jacobsa/syncutil"

// OpenFileEntry is one row of the open-file table: the inode a handle
// refers to and the handle's current byte offset. Offset is updated through
// SetOffset under the table's lock, after the read or write that moved it has
// released the inode's lock; concurrent use of one handle from several
// goroutines is not serialized.
type OpenFileEntry struct {
	Inumber int
	Offset  int
}

// OpenFiles is the fixed-capacity open-file table. A handle is the dense
// index of its slot, stable for the lifetime between Add and Remove.
type OpenFiles struct {
	mu      syncutil.InvariantMutex
	entries []OpenFileEntry // GUARDED_BY(mu)
	taken   []bool          // GUARDED_BY(mu)
}

// NewOpenFiles allocates an open-file table with the given number of slots.
func NewOpenFiles(capacity int) *OpenFiles {
	t := &OpenFiles{
		entries: make([]OpenFileEntry, capacity),
		taken:   make([]bool, capacity),
	}
	t.mu = syncutil.NewInvariantMutex(t.checkInvariants)

	return t
}

func (t *OpenFiles) checkInvariants() {
	if len(t.entries) != len(t.taken) {
		panic("state: open file table entries/taken length mismatch")
	}
}

func (t *OpenFiles) valid(handle int) bool {
	return handle >= 0 && handle < len(t.entries)
}

// Add claims the lowest-indexed free slot, records (inumber, offset), and
// returns the slot index as the file handle. ok is false if the table is
// full.
func (t *OpenFiles) Add(inumber, offset int) (handle int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, taken := range t.taken {
		if !taken {
			t.taken[i] = true
			t.entries[i] = OpenFileEntry{Inumber: inumber, Offset: offset}
			return i, true
		}
	}

	return 0, false
}

// Remove frees handle's slot. It panics if handle is not currently taken.
func (t *OpenFiles) Remove(handle int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.valid(handle) || !t.taken[handle] {
		panic("state: remove of an untaken open file handle")
	}
	t.taken[handle] = false
}

// Get returns handle's entry and whether it is currently open.
func (t *OpenFiles) Get(handle int) (entry OpenFileEntry, ok bool) {
	if !t.valid(handle) {
		return OpenFileEntry{}, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.taken[handle] {
		return OpenFileEntry{}, false
	}

	return t.entries[handle], true
}

// SetOffset updates handle's offset under the table's lock. It does not take
// the owning inode's lock, so two goroutines reading or writing through the
// same handle are not serialized against each other.
func (t *OpenFiles) SetOffset(handle, offset int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[handle].Offset = offset
}

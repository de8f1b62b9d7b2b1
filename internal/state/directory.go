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
	"bytes"
	"encoding/binary"
)

// MaxFileName is the largest name, including its NUL terminator, a
// directory entry can hold. Names longer than MaxFileName-1 bytes are
// rejected by AddEntry.
const MaxFileName = 40

// DirEntrySize is the on-block encoding size of one directory entry: a
// 4-byte little-endian inumber (-1 marks the entry free) followed by a
// MaxFileName-byte NUL-padded name.
const DirEntrySize = 4 + MaxFileName

// EntriesPerBlock is the directory fan-out for a block of the given size,
// i.e. block_size / sizeof(dir_entry_t).
func EntriesPerBlock(blockSize int) int {
	return blockSize / DirEntrySize
}

// initDirBlock fills block with empty entries (inumber == -1), as
// inode_create does for a freshly allocated directory.
func initDirBlock(block []byte) {
	n := EntriesPerBlock(len(block))
	for i := 0; i < n; i++ {
		putEntry(block, i, -1, "")
	}
}

func putEntry(block []byte, i int, inumber int32, name string) {
	off := i * DirEntrySize
	binary.LittleEndian.PutUint32(block[off:off+4], uint32(inumber))

	nameField := block[off+4 : off+DirEntrySize]
	for j := range nameField {
		nameField[j] = 0
	}
	copy(nameField, name)
}

func entryAt(block []byte, i int) (inumber int32, name string) {
	off := i * DirEntrySize
	inumber = int32(binary.LittleEndian.Uint32(block[off : off+4]))

	raw := block[off+4 : off+DirEntrySize]
	if end := bytes.IndexByte(raw, 0); end != -1 {
		raw = raw[:end]
	}
	return inumber, string(raw)
}

// AddEntry places a new {name, inumber} entry in the first free slot of
// dir's data block. It rejects empty or over-length names and non-directory
// inodes before taking dir's lock.
func AddEntry(dir *Inode, blocks *Blocks, name string, inumber int) error {
	if len(name) == 0 || len(name) > MaxFileName-1 {
		return ErrInvalidName
	}

	insertDelay()
	if dir.Kind != DirKind {
		return ErrNotDir
	}

	dir.Mu.Lock()
	defer dir.Mu.Unlock()

	block := blocks.Get(dir.DataBlock)
	n := EntriesPerBlock(len(block))
	for i := 0; i < n; i++ {
		if existing, _ := entryAt(block, i); existing == -1 {
			putEntry(block, i, int32(inumber), name)
			return nil
		}
	}

	return ErrNoSpace
}

// FindInDir returns the inumber of the first entry in dir whose name
// exactly matches, or ok == false if there is none.
func FindInDir(dir *Inode, blocks *Blocks, name string) (inumber int, ok bool) {
	dir.Mu.RLock()
	defer dir.Mu.RUnlock()

	if dir.Kind != DirKind {
		return 0, false
	}

	block := blocks.Get(dir.DataBlock)
	n := EntriesPerBlock(len(block))
	for i := 0; i < n; i++ {
		entryInumber, entryName := entryAt(block, i)
		if entryInumber != -1 && entryName == name {
			return int(entryInumber), true
		}
	}

	return 0, false
}

// Entry is a snapshot of one live directory entry, used by callers that want
// to diff a whole listing at once (see ListEntries).
type Entry struct {
	Inumber int
	Name    string
}

// ListEntries returns a snapshot of every live entry in dir, in slot order.
func ListEntries(dir *Inode, blocks *Blocks) []Entry {
	dir.Mu.RLock()
	defer dir.Mu.RUnlock()

	block := blocks.Get(dir.DataBlock)
	n := EntriesPerBlock(len(block))

	var entries []Entry
	for i := 0; i < n; i++ {
		inumber, name := entryAt(block, i)
		if inumber != -1 {
			entries = append(entries, Entry{Inumber: int(inumber), Name: name})
		}
	}

	return entries
}

// ClearEntry marks the entry for name free. It reports whether an entry was
// found and cleared.
func ClearEntry(dir *Inode, blocks *Blocks, name string) bool {
	dir.Mu.Lock()
	defer dir.Mu.Unlock()

	block := blocks.Get(dir.DataBlock)
	n := EntriesPerBlock(len(block))
	for i := 0; i < n; i++ {
		entryInumber, entryName := entryAt(block, i)
		if entryInumber != -1 && entryName == name {
			putEntry(block, i, -1, "")
			return true
		}
	}

	return false
}

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

	"github.com/jacobsa/syncutil"
)

// Kind is the type of an inode: a regular file, the (single) directory, or a
// symbolic link.
type Kind int

const (
	FileKind Kind = iota
	DirKind
	SymlinkKind
)

// noBlock marks an inode with no associated data block.
const noBlock = -1

// Inode is the metadata record for a file, the root directory, or a
// symlink. Its lock protects both the fields below and, while it is a
// FileKind or DirKind inode, the contents of DataBlock.
//
// INVARIANT: if Kind == DirKind, Size == block size and DataBlock is valid
// INVARIANT: if Kind == FileKind, (Size == 0 && DataBlock == noBlock) ||
//             (0 < Size && DataBlock is valid)
// INVARIANT: if Kind == SymlinkKind, len(Target) <= block size, DataBlock == noBlock
// INVARIANT: HardLinks >= 1 while the slot is TAKEN
type Inode struct {
	Mu syncutil.InvariantMutex

	Kind      Kind      // GUARDED_BY(Mu)
	Size      int       // GUARDED_BY(Mu)
	DataBlock int       // GUARDED_BY(Mu)
	HardLinks int       // GUARDED_BY(Mu)
	Target    string    // GUARDED_BY(Mu), SymlinkKind only
}

func newInode() *Inode {
	in := &Inode{DataBlock: noBlock}
	in.Mu = syncutil.NewInvariantMutex(in.checkInvariants)

	return in
}

func (in *Inode) checkInvariants() {
	switch in.Kind {
	case DirKind:
		if in.DataBlock == noBlock {
			panic("state: directory inode has no data block")
		}
	case FileKind:
		if in.Size == 0 && in.DataBlock != noBlock {
			panic("state: empty file inode has a data block")
		}
		if in.Size > 0 && in.DataBlock == noBlock {
			panic("state: non-empty file inode has no data block")
		}
	case SymlinkKind:
		if in.DataBlock != noBlock {
			panic("state: symlink inode has a data block")
		}
	default:
		panic(fmt.Sprintf("state: unknown inode kind %v", in.Kind))
	}

	if in.HardLinks < 0 {
		panic("state: negative hard link count")
	}
}

// Table owns the fixed-capacity inode table: one allocation vector plus one
// *Inode per slot. It is the Go analogue of state.c's inode_table paired
// with freeinode_ts.
type Table struct {
	alloc  *allocTable
	inodes []*Inode
}

// NewTable allocates a Table of the given capacity. blockSize sizes the
// simulated-latency stride, matching the rest of the allocation vectors.
func NewTable(capacity, blockSize int) *Table {
	inodes := make([]*Inode, capacity)
	for i := range inodes {
		inodes[i] = newInode()
	}

	return &Table{
		alloc:  newAllocTable(capacity, blockSize),
		inodes: inodes,
	}
}

func (t *Table) valid(inumber int) bool {
	return inumber >= 0 && inumber < len(t.inodes)
}

// Get returns the inode for inumber, or nil if inumber is out of range. The
// caller is responsible for locking it before reading or mutating its
// fields, mirroring state.c's inode_get/inode_lock split.
func (t *Table) Get(inumber int) *Inode {
	if !t.valid(inumber) {
		return nil
	}

	insertDelay()
	return t.inodes[inumber]
}

// Create allocates a slot and wires up type-specific initial fields. For
// DirKind it also allocates one data block from blocks and fills it with
// empty directory entries (inumber -1); on failure the half-built inode is
// rolled back via Delete, matching state.c's inode_create.
func (t *Table) Create(kind Kind, blocks *Blocks) (inumber int, err error) {
	inumber, ok := t.alloc.alloc()
	if !ok {
		return 0, ErrNoSpace
	}

	in := t.inodes[inumber]
	insertDelay()

	in.Mu.Lock()
	in.Kind = kind
	in.HardLinks = 1
	in.Size = 0
	in.DataBlock = noBlock
	in.Target = ""

	if kind == DirKind {
		b, ok := blocks.Alloc()
		if !ok {
			// A directory without a data block breaks checkInvariants, so the
			// slot is rolled back as an empty file.
			in.Kind = FileKind
			in.Mu.Unlock()
			t.Delete(inumber, blocks)
			return 0, ErrNoSpace
		}

		in.Size = blocks.BlockSize()
		in.DataBlock = b
		initDirBlock(blocks.Get(b))
	}
	in.Mu.Unlock()

	return inumber, nil
}

// Delete decrements inumber's hard-link count and, once it reaches zero,
// frees its slot and its data block (if any). It acquires the inode's lock
// and then the allocator's lock, in that order, exactly once -- the single
// call site in this package allowed to hold both.
func (t *Table) Delete(inumber int, blocks *Blocks) {
	insertDelay()
	insertDelay()

	in := t.inodes[inumber]

	in.Mu.Lock()
	t.alloc.mu.Lock()

	in.HardLinks--
	freeBlock := noBlock
	if in.HardLinks == 0 {
		if !t.alloc.isTakenLocked(inumber) {
			panic("state: inode_delete: inode already freed")
		}
		t.alloc.freeLocked(inumber)

		if in.DataBlock != noBlock {
			freeBlock = in.DataBlock
			in.DataBlock = noBlock
			in.Size = 0
		}
	}

	t.alloc.mu.Unlock()
	in.Mu.Unlock()

	if freeBlock != noBlock {
		blocks.Free(freeBlock)
	}
}

// PrepareOpen executes the locked portion of Open against an
// already-resolved inode: optionally truncating it, then computing the
// initial file offset. Freeing the old data block happens while still
// holding the inode's lock, consistent with the lock hierarchy (inode lock
// outer, allocator lock inner).
func (t *Table) PrepareOpen(inumber int, blocks *Blocks, truncate, appendMode bool) (offset int) {
	in := t.inodes[inumber]
	in.Mu.Lock()
	defer in.Mu.Unlock()

	if truncate && in.DataBlock != noBlock {
		b := in.DataBlock
		in.DataBlock = noBlock
		in.Size = 0
		blocks.Free(b)
	}

	if appendMode {
		return in.Size
	}
	return 0
}

// ReadAt copies up to len(p) bytes from inumber's contents starting at off
// into p and returns the number of bytes copied, clamped to the inode's
// current size. There is no EOF error: a short read is simply a smaller n,
// mirroring tfs_read's ssize_t return.
func (t *Table) ReadAt(inumber int, blocks *Blocks, p []byte, off int) (n int) {
	in := t.inodes[inumber]
	in.Mu.RLock()
	defer in.Mu.RUnlock()

	avail := in.Size - off
	if avail <= 0 {
		return 0
	}

	n = len(p)
	if n > avail {
		n = avail
	}
	if n > 0 {
		block := blocks.Get(in.DataBlock)
		copy(p[:n], block[off:off+n])
	}

	return n
}

// WriteAt copies up to len(p) bytes into inumber's data block starting at
// off, clamped so the file never exceeds one block, allocating the block
// first if the inode is currently empty. It returns the number of bytes
// written, or ErrNoSpace if a block needed to be allocated and none were
// free.
func (t *Table) WriteAt(inumber int, blocks *Blocks, p []byte, off int) (n int, err error) {
	in := t.inodes[inumber]
	in.Mu.Lock()
	defer in.Mu.Unlock()

	toWrite := len(p)
	if off+toWrite > blocks.BlockSize() {
		toWrite = blocks.BlockSize() - off
	}
	if toWrite <= 0 {
		return 0, nil
	}

	if in.DataBlock == noBlock {
		b, ok := blocks.Alloc()
		if !ok {
			return 0, ErrNoSpace
		}
		in.DataBlock = b
	}

	block := blocks.Get(in.DataBlock)
	copy(block[off:off+toWrite], p[:toWrite])

	if newSize := off + toWrite; newSize > in.Size {
		in.Size = newSize
	}

	return toWrite, nil
}

// IncrementLinks bumps inumber's hard-link count by one, for Link.
func (t *Table) IncrementLinks(inumber int) {
	in := t.inodes[inumber]
	in.Mu.Lock()
	defer in.Mu.Unlock()
	in.HardLinks++
}

// KindOf returns inumber's Kind under its read lock.
func (t *Table) KindOf(inumber int) Kind {
	in := t.inodes[inumber]
	in.Mu.RLock()
	defer in.Mu.RUnlock()
	return in.Kind
}

// TargetOf returns inumber's symlink target under its read lock.
func (t *Table) TargetOf(inumber int) string {
	in := t.inodes[inumber]
	in.Mu.RLock()
	defer in.Mu.RUnlock()
	return in.Target
}

// SetTarget records target on a freshly created SymlinkKind inode.
func (t *Table) SetTarget(inumber int, target string) {
	in := t.inodes[inumber]
	in.Mu.Lock()
	defer in.Mu.Unlock()
	in.Target = target
}

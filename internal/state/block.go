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

// Blocks is the contiguous data-block pool: max_block_count blocks of
// block_size bytes each, addressed by a block index mapped to a byte
// offset by multiplication. It owns no bookkeeping beyond FREE/TAKEN --
// callers are responsible for sequencing Alloc/Free against inode state,
// exactly as state.c's data_block_alloc/data_block_free.
type Blocks struct {
	alloc     *allocTable
	pool      []byte
	blockSize int
}

// NewBlocks allocates a pool of capacity blocks of blockSize bytes each.
func NewBlocks(capacity, blockSize int) *Blocks {
	return &Blocks{
		alloc:     newAllocTable(capacity, blockSize),
		pool:      make([]byte, capacity*blockSize),
		blockSize: blockSize,
	}
}

// BlockSize returns the fixed size, in bytes, of every block.
func (b *Blocks) BlockSize() int {
	return b.blockSize
}

// Alloc claims the first FREE block and returns its index. ok is false if
// the pool is exhausted.
func (b *Blocks) Alloc() (index int, ok bool) {
	return b.alloc.alloc()
}

// Free releases block i. It panics if i is not currently TAKEN.
func (b *Blocks) Free(i int) {
	b.alloc.free(i)
}

// Get returns the blockSize-byte slice backing block i. The caller must
// hold the lock of whichever inode owns the block.
func (b *Blocks) Get(i int) []byte {
	insertDelay()
	start := i * b.blockSize
	return b.pool[start : start+b.blockSize]
}

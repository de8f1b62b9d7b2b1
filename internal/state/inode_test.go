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
	"testing"

	. "github.com/jacobsa/ogletest"
)

func TestInode(t *testing.T) { RunTests(t) }

type InodeTest struct {
	blocks *Blocks
	table  *Table
}

func init() { RegisterTestSuite(&InodeTest{}) }

func (t *InodeTest) SetUp(ti *TestInfo) {
	t.blocks = NewBlocks(4, 64)
	t.table = NewTable(4, 64)
}

func (t *InodeTest) CreateDirAllocatesABlock() {
	inum, err := t.table.Create(DirKind, t.blocks)
	AssertEq(nil, err)

	in := t.table.Get(inum)
	in.Mu.RLock()
	defer in.Mu.RUnlock()

	ExpectEq(DirKind, in.Kind)
	ExpectEq(t.blocks.BlockSize(), in.Size)
	ExpectNe(noBlock, in.DataBlock)
	ExpectEq(1, in.HardLinks)
}

func (t *InodeTest) CreateFileStartsEmpty() {
	inum, err := t.table.Create(FileKind, t.blocks)
	AssertEq(nil, err)

	in := t.table.Get(inum)
	in.Mu.RLock()
	defer in.Mu.RUnlock()

	ExpectEq(0, in.Size)
	ExpectEq(noBlock, in.DataBlock)
}

func (t *InodeTest) WriteThenReadRoundTrips() {
	inum, err := t.table.Create(FileKind, t.blocks)
	AssertEq(nil, err)

	n, err := t.table.WriteAt(inum, t.blocks, []byte("hello"), 0)
	AssertEq(nil, err)
	AssertEq(5, n)

	buf := make([]byte, 16)
	n = t.table.ReadAt(inum, t.blocks, buf, 0)
	ExpectEq(5, n)
	ExpectEq("hello", string(buf[:n]))
}

func (t *InodeTest) WriteClampsToOneBlock() {
	inum, err := t.table.Create(FileKind, t.blocks)
	AssertEq(nil, err)

	big := make([]byte, t.blocks.BlockSize()*2)
	n, err := t.table.WriteAt(inum, t.blocks, big, 0)
	AssertEq(nil, err)
	ExpectEq(t.blocks.BlockSize(), n)
}

func (t *InodeTest) DeleteFreesSlotAndBlockAtZeroLinks() {
	inum, err := t.table.Create(FileKind, t.blocks)
	AssertEq(nil, err)

	_, err = t.table.WriteAt(inum, t.blocks, []byte("x"), 0)
	AssertEq(nil, err)

	in := t.table.Get(inum)
	in.Mu.RLock()
	block := in.DataBlock
	in.Mu.RUnlock()
	AssertNe(noBlock, block)

	t.table.Delete(inum, t.blocks)
	ExpectFalse(t.table.alloc.isTaken(inum))

	// The freed block is available for reuse.
	again, err := t.table.Create(FileKind, t.blocks)
	AssertEq(nil, err)
	_, err = t.table.WriteAt(again, t.blocks, []byte("y"), 0)
	ExpectEq(nil, err)
}

func (t *InodeTest) HardLinksSurviveASingleUnlink() {
	inum, err := t.table.Create(FileKind, t.blocks)
	AssertEq(nil, err)

	t.table.IncrementLinks(inum)
	t.table.Delete(inum, t.blocks)

	ExpectTrue(t.table.alloc.isTaken(inum))
	t.table.Delete(inum, t.blocks)
	ExpectFalse(t.table.alloc.isTaken(inum))
}

func (t *InodeTest) PrepareOpenTruncateFreesTheBlock() {
	inum, err := t.table.Create(FileKind, t.blocks)
	AssertEq(nil, err)
	_, err = t.table.WriteAt(inum, t.blocks, []byte("data"), 0)
	AssertEq(nil, err)

	offset := t.table.PrepareOpen(inum, t.blocks, true /* truncate */, false)
	ExpectEq(0, offset)

	buf := make([]byte, 8)
	n := t.table.ReadAt(inum, t.blocks, buf, 0)
	ExpectEq(0, n)
}

func (t *InodeTest) PrepareOpenAppendStartsAtSize() {
	inum, err := t.table.Create(FileKind, t.blocks)
	AssertEq(nil, err)
	_, err = t.table.WriteAt(inum, t.blocks, []byte("abc"), 0)
	AssertEq(nil, err)

	offset := t.table.PrepareOpen(inum, t.blocks, false, true /* appendMode */)
	ExpectEq(3, offset)
}

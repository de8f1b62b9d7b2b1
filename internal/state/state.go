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

// Package state implements the three allocation tables (inodes, data
// blocks, open files), the root-directory protocol over the inode table's
// block pool, and the concurrency discipline that lets many goroutines
// share them safely. It is the Go analogue of tecnicofs's fs/state.c,
// restructured per jacobsa/fuse's samples/memfs: one explicit handle owning
// all mutable state, instead of package-level globals.
package state

import (
	"time"

	"github.com/jacobsa/timeutil"
)

// RootInumber is the fixed inumber of the root directory, assigned during
// State.New.
const RootInumber = 0

// State owns every table for the lifetime between New and Close.
type State struct {
	Inodes    *Table
	Blocks    *Blocks
	OpenFiles *OpenFiles

	Clock timeutil.Clock
}

// New allocates all three tables and creates the root directory at
// RootInumber. It returns an error if the root directory cannot be created
// (no free inode slot or no free data block). It panics if the root is
// assigned any inumber other than RootInumber, which cannot happen on a
// freshly allocated table but is asserted anyway.
func New(maxInodeCount, maxBlockCount, maxOpenFilesCount, blockSize int, clock timeutil.Clock) (*State, error) {
	s := &State{
		Inodes:    NewTable(maxInodeCount, blockSize),
		Blocks:    NewBlocks(maxBlockCount, blockSize),
		OpenFiles: NewOpenFiles(maxOpenFilesCount),
		Clock:     clock,
	}

	root, err := s.Inodes.Create(DirKind, s.Blocks)
	if err != nil {
		return nil, err
	}
	if root != RootInumber {
		panic("state: root inode must be assigned inumber 0")
	}

	getLogger().Printf("initialized at %s: inodes=%d blocks=%d open_files=%d block_size=%d",
		clock.Now().Format(time.RFC3339Nano), maxInodeCount, maxBlockCount, maxOpenFilesCount, blockSize)

	return s, nil
}

// Close tears down s. Callers must ensure no other goroutine is using s;
// State does not itself wait for outstanding operations to finish (spec
// §9's documented hazard around destroy-while-in-use is not strengthened
// here).
func (s *State) Close() {
	getLogger().Printf("destroyed at %s", s.Clock.Now().Format(time.RFC3339Nano))
}

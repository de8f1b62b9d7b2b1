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

package tfs

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/jacobsa/timeutil"
	"github.com/pkg/errors"

	"github.com/gofs/tfs/internal/state"
)

// Mode is a bitmask of flags accepted by FileSystem.Open.
type Mode uint8

const (
	// OCreat creates the file if it does not already exist.
	OCreat Mode = 1 << iota
	// OTrunc discards an existing file's contents on open.
	OTrunc
	// OAppend starts the file offset at the file's current size.
	OAppend
)

// FileSystem is the operations layer: the single handle owning the inode
// table, data-block pool, and open-file table for one TFS instance. The
// zero value is a valid, uninitialized FileSystem; call Init before using
// it.
type FileSystem struct {
	clock timeutil.Clock

	// mu guards the Init/Destroy lifecycle transition, not steady-state
	// operations: Open/Read/Write/etc. take it for reading so they can run
	// concurrently with each other, while Init/Destroy take it exclusively.
	mu    sync.RWMutex
	state *state.State
	params Params
}

// NewFileSystem returns an uninitialized FileSystem. Call Init before any
// other method.
func NewFileSystem() *FileSystem {
	return &FileSystem{clock: timeutil.RealClock()}
}

// Init allocates the inode table, data-block pool, and open-file table and
// creates the root directory. If params is nil, DefaultParams is used.
// Init fails if the file system is already initialized.
func (fs *FileSystem) Init(params *Params) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.state != nil {
		return EBusy
	}
	if fs.clock == nil {
		fs.clock = timeutil.RealClock()
	}

	p := DefaultParams()
	if params != nil {
		p = *params
	}

	st, err := state.New(p.MaxInodeCount, p.MaxBlockCount, p.MaxOpenFilesCount, p.BlockSize, fs.clock)
	if err != nil {
		return ENoSpc
	}

	fs.state = st
	fs.params = p
	return nil
}

// Destroy tears down the file system. After Destroy, fs may be re-Init'd.
func (fs *FileSystem) Destroy() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.state == nil {
		return ENxio
	}

	fs.state.Close()
	fs.state = nil
	return nil
}

func validPathname(name string) bool {
	return len(name) >= 2 && name[0] == '/'
}

// lookup resolves an absolute path to an inumber in the root directory. It
// does not chase symlinks.
func (fs *FileSystem) lookup(name string) (inumber int, ok bool) {
	if !validPathname(name) {
		return 0, false
	}

	root := fs.state.Inodes.Get(state.RootInumber)
	return state.FindInDir(root, fs.state.Blocks, name[1:])
}

// Open resolves name in the root directory, honoring OCreat/OTrunc/OAppend,
// registers the result in the open-file table, and returns its handle.
//
// A symlink is resolved one hop at a time: Open repeats the single-hop
// root-directory lookup until it reaches a non-symlink inode. It fails with
// ENoEnt if a target does not resolve, or if the chain is still unresolved
// after as many hops as the inode table has slots.
func (fs *FileSystem) Open(name string, mode Mode) (handle int, err error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if fs.state == nil {
		return 0, ENxio
	}
	if !validPathname(name) {
		return 0, EInval
	}

	inum, found := fs.lookup(name)
	var offset int

	if found {
		// Each hop is a single-hop resolution applied again to its result, so a
		// chain of links resolves correctly as long as every link lives in the
		// root directory. The hop count is bounded by the inode table's
		// capacity so a symlink cycle fails closed instead of spinning forever.
		for hops := 0; fs.state.Inodes.KindOf(inum) == state.SymlinkKind; hops++ {
			if hops >= fs.params.MaxInodeCount {
				return 0, ENoEnt
			}

			target := fs.state.Inodes.TargetOf(inum)
			targetInum, ok := fs.lookup(target)
			if !ok {
				return 0, ENoEnt
			}
			inum = targetInum
		}

		offset = fs.state.Inodes.PrepareOpen(inum, fs.state.Blocks, mode&OTrunc != 0, mode&OAppend != 0)
	} else if mode&OCreat != 0 {
		inum, err = fs.state.Inodes.Create(state.FileKind, fs.state.Blocks)
		if err != nil {
			return 0, ENoSpc
		}

		if addErr := state.AddEntry(fs.state.Inodes.Get(state.RootInumber), fs.state.Blocks, name[1:], inum); addErr != nil {
			fs.state.Inodes.Delete(inum, fs.state.Blocks)
			return 0, translateDirErr(addErr)
		}

		offset = 0
	} else {
		return 0, ENoEnt
	}

	handle, ok := fs.state.OpenFiles.Add(inum, offset)
	if !ok {
		// The freshly created inode, if any, is deliberately left in place:
		// spec §4.6 documents this as intentional, not a bug to fix.
		return 0, ENoSpc
	}

	return handle, nil
}

// Close releases handle. It fails if handle is not currently open.
func (fs *FileSystem) Close(handle int) error {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if fs.state == nil {
		return ENxio
	}
	if _, ok := fs.state.OpenFiles.Get(handle); !ok {
		return EBadF
	}

	fs.state.OpenFiles.Remove(handle)
	return nil
}

// Read copies up to len(buf) bytes from handle's current offset into buf,
// advances the offset, and returns the number of bytes read (possibly 0 at
// end of file).
func (fs *FileSystem) Read(handle int, buf []byte) (n int, err error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if fs.state == nil {
		return 0, ENxio
	}

	entry, ok := fs.state.OpenFiles.Get(handle)
	if !ok {
		return 0, EBadF
	}

	n = fs.state.Inodes.ReadAt(entry.Inumber, fs.state.Blocks, buf, entry.Offset)
	if n > 0 {
		fs.state.OpenFiles.SetOffset(handle, entry.Offset+n)
	}

	return n, nil
}

// Write copies up to len(buf) bytes into handle's file starting at its
// current offset, clamped so the file never exceeds one block, advances the
// offset, and returns the number of bytes written.
func (fs *FileSystem) Write(handle int, buf []byte) (n int, err error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if fs.state == nil {
		return 0, ENxio
	}

	entry, ok := fs.state.OpenFiles.Get(handle)
	if !ok {
		return 0, EBadF
	}

	n, err = fs.state.Inodes.WriteAt(entry.Inumber, fs.state.Blocks, buf, entry.Offset)
	if err != nil {
		return 0, ENoSpc
	}
	if n > 0 {
		fs.state.OpenFiles.SetOffset(handle, entry.Offset+n)
	}

	return n, nil
}

// SymLink creates a symbolic link at linkName whose target is the
// (currently resolving) path target.
func (fs *FileSystem) SymLink(target, linkName string) error {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if fs.state == nil {
		return ENxio
	}
	if !validPathname(linkName) {
		return EInval
	}
	if len(target) > fs.params.BlockSize {
		return EInval
	}
	if _, ok := fs.lookup(target); !ok {
		return ENoEnt
	}

	inum, err := fs.state.Inodes.Create(state.SymlinkKind, fs.state.Blocks)
	if err != nil {
		return ENoSpc
	}
	fs.state.Inodes.SetTarget(inum, target)

	root := fs.state.Inodes.Get(state.RootInumber)
	if err := state.AddEntry(root, fs.state.Blocks, linkName[1:], inum); err != nil {
		fs.state.Inodes.Delete(inum, fs.state.Blocks)
		return translateDirErr(err)
	}

	return nil
}

// Link creates a hard link at linkName pointing at target's inode. It
// fails if target is itself a symbolic link.
func (fs *FileSystem) Link(target, linkName string) error {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if fs.state == nil {
		return ENxio
	}
	if !validPathname(linkName) {
		return EInval
	}

	targetInum, ok := fs.lookup(target)
	if !ok {
		return ENoEnt
	}
	if fs.state.Inodes.KindOf(targetInum) == state.SymlinkKind {
		return EInval
	}

	root := fs.state.Inodes.Get(state.RootInumber)
	if err := state.AddEntry(root, fs.state.Blocks, linkName[1:], targetInum); err != nil {
		return translateDirErr(err)
	}

	fs.state.Inodes.IncrementLinks(targetInum)
	return nil
}

// Unlink removes target's directory entry and deletes its inode, exactly
// once, decrementing its hard-link count (spec §9's Open Question: the
// original C's apparent double clear/delete for symlinks is not
// reproduced).
func (fs *FileSystem) Unlink(target string) error {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if fs.state == nil {
		return ENxio
	}

	inum, ok := fs.lookup(target)
	if !ok {
		return ENoEnt
	}

	root := fs.state.Inodes.Get(state.RootInumber)
	state.ClearEntry(root, fs.state.Blocks, target[1:])
	fs.state.Inodes.Delete(inum, fs.state.Blocks)

	return nil
}

// CopyFromExternal creates (or overwrites) dstPath from the contents of the
// host file at srcPath, up to one block, and returns the number of bytes
// copied. Because it opens dstPath with only OCreat (never OAppend), a
// second call to CopyFromExternal overwrites rather than appends.
func (fs *FileSystem) CopyFromExternal(srcPath, dstPath string) (n int, err error) {
	handle, err := fs.Open(dstPath, OCreat)
	if err != nil {
		return 0, errors.Wrapf(err, "tfs: open/create %q", dstPath)
	}
	defer func() { _ = fs.Close(handle) }()

	src, err := os.Open(srcPath)
	if err != nil {
		return 0, errors.Wrapf(err, "tfs: open external file %q", srcPath)
	}
	defer src.Close()

	buf := make([]byte, fs.blockSize())
	read, err := io.ReadFull(src, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, errors.Wrapf(err, "tfs: read external file %q", srcPath)
	}

	written, err := fs.Write(handle, buf[:read])
	if err != nil {
		return 0, errors.Wrap(err, "tfs: write")
	}

	return written, nil
}

func (fs *FileSystem) blockSize() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.params.BlockSize
}

// translateDirErr maps internal/state's directory errors onto the package's
// syscall.Errno vocabulary.
func translateDirErr(err error) error {
	switch err {
	case state.ErrInvalidName:
		return EInval
	case state.ErrNotDir:
		return fmt.Errorf("%w: not a directory", EInval)
	case state.ErrNoSpace:
		return ENoSpc
	default:
		return err
	}
}

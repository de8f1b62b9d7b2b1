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

import "syscall"

const (
	// EInval is returned for malformed paths, over-length names and symlink
	// targets, and an attempt to hard-link a symbolic link. Open ignores mode
	// bits other than OCreat, OTrunc and OAppend.
	EInval = syscall.EINVAL

	// ENoSpc is returned when the inode table, the block pool, the open-file
	// table, or a directory's entry array is exhausted.
	ENoSpc = syscall.ENOSPC

	// ENoEnt is returned when a path or a symlink target does not resolve.
	ENoEnt = syscall.ENOENT

	// EBadF is returned for an out-of-range or closed file handle.
	EBadF = syscall.EBADF

	// EBusy is returned by Init when the file system is already initialized.
	EBusy = syscall.EBUSY

	// ENxio is returned by any operation performed before Init or after
	// Destroy.
	ENxio = syscall.ENXIO
)

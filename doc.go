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

// Package tfs implements an in-memory, fixed-capacity POSIX-flavored file
// system: a single flat root directory of regular files, symbolic links, and
// hard links, backed by a fixed-size pool of inodes and data blocks.
//
// The primary elements of interest are:
//
//  *  FileSystem, which exposes Open/Close/Read/Write/Link/SymLink/Unlink
//     over a fixed-capacity inode table and data-block pool.
//
//  *  Params, which sizes the inode table, block pool, and open-file table.
//
// There is no kernel-facing surface here: unlike github.com/jacobsa/fuse,
// nothing in this package talks to /dev/fuse. Callers that want a mounted
// file system still need a FUSE binding on top of FileSystem.
package tfs

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

import "errors"

// ErrNoSpace is returned by every allocator when its table is exhausted.
// The tfs package translates it to syscall.ENOSPC at the operations layer.
var ErrNoSpace = errors.New("state: table exhausted")

// ErrInvalidName is returned by AddEntry for an empty or over-length name.
var ErrInvalidName = errors.New("state: invalid directory entry name")

// ErrNotDir is returned when a directory operation targets a non-directory
// inode.
var ErrNotDir = errors.New("state: inode is not a directory")

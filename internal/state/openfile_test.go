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

	. "github.com/jacobsa/oglematchers"
	. "github.com/jacobsa/ogletest"
)

func TestOpenFile(t *testing.T) { RunTests(t) }

type OpenFileTest struct {
	t *OpenFiles
}

func init() { RegisterTestSuite(&OpenFileTest{}) }

func (t *OpenFileTest) SetUp(ti *TestInfo) {
	t.t = NewOpenFiles(2)
}

func (t *OpenFileTest) AddGetRemove() {
	h, ok := t.t.Add(7, 0)
	AssertTrue(ok)
	ExpectEq(0, h)

	entry, ok := t.t.Get(h)
	AssertTrue(ok)
	ExpectEq(7, entry.Inumber)
	ExpectEq(0, entry.Offset)

	t.t.Remove(h)
	_, ok = t.t.Get(h)
	ExpectFalse(ok)
}

func (t *OpenFileTest) ExhaustsCapacity() {
	_, ok := t.t.Add(1, 0)
	AssertTrue(ok)
	_, ok = t.t.Add(2, 0)
	AssertTrue(ok)

	_, ok = t.t.Add(3, 0)
	ExpectFalse(ok)
}

func (t *OpenFileTest) SetOffsetUpdatesEntry() {
	h, ok := t.t.Add(1, 0)
	AssertTrue(ok)

	t.t.SetOffset(h, 42)
	entry, ok := t.t.Get(h)
	AssertTrue(ok)
	ExpectEq(42, entry.Offset)
}

func (t *OpenFileTest) RemoveOfUntakenHandlePanics() {
	ExpectThat(func() { t.t.Remove(0) }, Panics(MatchesRegexp("untaken")))
}

func (t *OpenFileTest) GetOutOfRangeIsNotFound() {
	_, ok := t.t.Get(99)
	ExpectFalse(ok)
}

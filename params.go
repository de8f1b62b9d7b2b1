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

import "github.com/mitchellh/mapstructure"

// Params sizes the three allocation tables and the data-block pool.
type Params struct {
	MaxInodeCount     int `mapstructure:"max_inode_count"`
	MaxBlockCount     int `mapstructure:"max_block_count"`
	MaxOpenFilesCount int `mapstructure:"max_open_files_count"`
	BlockSize         int `mapstructure:"block_size"`
}

// DefaultParams returns the parameters used when Init is called with none.
func DefaultParams() Params {
	return Params{
		MaxInodeCount:     64,
		MaxBlockCount:     1024,
		MaxOpenFilesCount: 16,
		BlockSize:         1024,
	}
}

// ParamsFromMap decodes Params from a loosely-typed source, e.g. parsed
// flags, an env-derived map, or a test table. Fields absent from m keep
// their DefaultParams value.
func ParamsFromMap(m map[string]interface{}) (Params, error) {
	p := DefaultParams()
	if err := mapstructure.Decode(m, &p); err != nil {
		return Params{}, err
	}

	return p, nil
}

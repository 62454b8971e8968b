// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package nodetree

import (
	"fmt"
	"io"
	"io/ioutil"
	"path"

	"github.com/golang/leveldb/db"
	"github.com/golang/leveldb/memfs"
)

// IncludeFS is an in-memory store of included-file originals, keyed by the
// name an include directive refers to. GenerateIncludeMap's originals_dict
// needs the full text of every file it stitches together kept available
// for the life of the tree (so a later AddSourceLocations call can still
// quote the relevant original line); IncludeFS is the place that text
// lives, backed by the same in-memory filesystem the teacher uses to serve
// "/memfs/"-prefixed paths without touching disk.
type IncludeFS struct {
	fs db.FileSystem
}

// NewIncludeFS creates an empty include-file store.
func NewIncludeFS() *IncludeFS {
	return &IncludeFS{fs: memfs.New()}
}

func memPath(name string) string {
	return path.Join("/memfs", name)
}

// Put stores contents under name, overwriting any previous content.
func (ifs *IncludeFS) Put(name, contents string) error {
	p := memPath(name)
	if err := ifs.fs.MkdirAll(path.Dir(p), 0770); err != nil {
		return err
	}
	f, err := ifs.fs.Create(p)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write([]byte(contents))
	return err
}

// Get retrieves the contents previously stored under name.
func (ifs *IncludeFS) Get(name string) (string, error) {
	p := memPath(name)
	fi, err := ifs.fs.Stat(p)
	if err != nil {
		return "", fmt.Errorf("nodetree: include %q not found: %w", name, err)
	}
	f, err := ifs.fs.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()
	buf, err := ioutil.ReadAll(io.LimitReader(f, fi.Size()))
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// ReadIncludeFunc adapts ifs to the ReadIncludeFunc signature
// GenerateIncludeMap expects.
func (ifs *IncludeFS) ReadIncludeFunc() ReadIncludeFunc {
	return ifs.Get
}

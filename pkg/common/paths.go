// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package common holds the layout of the judge's data directory.
package common

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const FilePermissions = 0755

var (
	Directory = filepath.Join(xdg.Home, "gomori-judge")

	// Recordings holds one directory of game recordings per tournament.
	Recordings = filepath.Join(Directory, "recordings")

	// Results holds the statistics snapshot of every tournament.
	Results = filepath.Join(Directory, "results")
)

// RecordingDirectory returns the directory for the recordings of the
// tournament with the given id.
func RecordingDirectory(id string) string {
	return filepath.Join(Recordings, id)
}

// ResultFile returns the snapshot file of the named tournament.
func ResultFile(name string) string {
	return filepath.Join(Results, name+".yaml")
}

func TryMkdir(dir string) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		_ = os.Mkdir(dir, FilePermissions)
	}
}

// Setup creates the data directory layout if it doesn't exist yet.
func Setup() {
	TryMkdir(Directory)
	TryMkdir(Recordings)
	TryMkdir(Results)
}

// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sweepfmt

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
)

// WriteRun writes run to w as an indented JSON document, matching the
// layout the benchmark executable itself produces.
func WriteRun(w io.Writer, run *Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(run)
}

// WriteRunFile writes run to path, creating parent directories as
// needed.
func WriteRunFile(path string, run *Run) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteRun(f, run); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

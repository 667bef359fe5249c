// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sweepfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadRun reads one run document from r. name is used in errors and
// recorded as the Run's path; it may be "".
//
// ReadRun validates the document once at this boundary so later stages
// can consume typed points without defensive checks: the document must
// have a non-empty stats.sweep, every point must name a kernel and a
// positive working-set size, and (kernel, bytes) must be unique within
// the run. Optional numeric fields that are absent simply decode as
// zero; that is degraded data, not an error.
func ReadRun(r io.Reader, name string) (*Run, error) {
	dec := json.NewDecoder(r)
	run := new(Run)
	if err := dec.Decode(run); err != nil {
		return nil, fmt.Errorf("%s: %v", errName(name), err)
	}
	if err := run.validate(); err != nil {
		return nil, fmt.Errorf("%s: %v", errName(name), err)
	}
	run.path = name
	run.SortSweep()
	return run, nil
}

// ReadRunFile reads the run document at path.
func ReadRunFile(path string) (*Run, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRun(f, path)
}

func errName(name string) string {
	if name == "" {
		return "<unknown>"
	}
	return name
}

func (r *Run) validate() error {
	if len(r.Stats.Sweep) == 0 {
		return fmt.Errorf("missing or empty stats.sweep")
	}
	seen := make(map[pointKey]bool, len(r.Stats.Sweep))
	for i, pt := range r.Stats.Sweep {
		if pt.Kernel == "" {
			return fmt.Errorf("sweep[%d]: missing kernel", i)
		}
		if pt.Bytes <= 0 {
			return fmt.Errorf("sweep[%d] (%s): non-positive bytes %d", i, pt.Kernel, pt.Bytes)
		}
		k := pointKey{pt.Kernel, pt.Bytes}
		if seen[k] {
			return fmt.Errorf("sweep[%d]: duplicate point (%s, %d)", i, pt.Kernel, pt.Bytes)
		}
		seen[k] = true
	}
	return nil
}

type pointKey struct {
	kernel string
	bytes  int64
}

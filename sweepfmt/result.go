// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sweepfmt provides a reader and writer for memsweep run
// documents.
//
// A run document is the JSON file written by one process-level
// execution of the memsweep benchmark: run metadata, the command-line
// configuration it was invoked with, and an ordered sweep of
// measurement points, one per working-set size.
//
// This package is designed to be used with the higher-level packages
// sweepunit, sweepstat, and knee.
package sweepfmt

import (
	"encoding/json"
	"sort"
)

// A Run is a single run document: one process-level execution of the
// benchmark, or the aggregate of several (see Aggregation).
type Run struct {
	Metadata Metadata `json:"metadata"`
	Config   Config   `json:"config"`

	// Aggregation records provenance when this document is the
	// reduction of several repeated runs. It is nil on raw runs.
	Aggregation *Aggregation `json:"aggregation,omitempty"`

	Stats Stats `json:"stats"`

	// path records where this Run was read from, or "" if it was
	// not read from a file.
	path string
}

// Path returns the file name this Run was read from. For Runs that
// were not read from a file, it returns "".
func (r *Run) Path() string { return r.path }

// Metadata describes the environment a run was collected in.
type Metadata struct {
	Timestamp string   `json:"timestamp,omitempty"`
	Platform  Platform `json:"platform"`
}

// A Platform identifies the machine and toolchain behind a run. The
// cache sizes are reported by the benchmark's system probe and are
// each independently optional; zero means unreported.
type Platform struct {
	OS            string `json:"os,omitempty"`
	Compiler      string `json:"compiler,omitempty"`
	CPUModel      string `json:"cpu_model,omitempty"`
	CacheL1Bytes  int64  `json:"cache_l1_bytes,omitempty"`
	CacheL2Bytes  int64  `json:"cache_l2_bytes,omitempty"`
	CacheLLCBytes int64  `json:"cache_llc_bytes,omitempty"`
}

// A Config is the benchmark command line that produced a run.
type Config struct {
	Kernel  string `json:"kernel"`
	Size    string `json:"size,omitempty"`
	Threads int    `json:"threads,omitempty"`
	Iters   int    `json:"iters,omitempty"`
	Warmup  int    `json:"warmup,omitempty"`
	Seed    int64  `json:"seed,omitempty"`
	Out     string `json:"out,omitempty"`
}

// Stats holds a run's measurements.
type Stats struct {
	// Performance is the executable's whole-run summary block. It
	// is opaque to this toolchain and passed through verbatim.
	Performance json.RawMessage `json:"performance,omitempty"`

	// Sweep is the per-working-set-size measurement series,
	// ordered by (kernel, bytes).
	Sweep []SweepPoint `json:"sweep"`
}

// A SweepPoint is one (kernel, working-set size) measurement. Bytes is
// the size of one array; STREAM-style kernels touch two or three
// arrays per iteration (see knee.Multiplier).
type SweepPoint struct {
	Kernel       string  `json:"kernel"`
	Bytes        int64   `json:"bytes"`
	MedianNs     float64 `json:"median_ns"`
	P95Ns        float64 `json:"p95_ns"`
	MinNs        float64 `json:"min_ns"`
	MaxNs        float64 `json:"max_ns"`
	StddevNs     float64 `json:"stddev_ns"`
	BandwidthGBs float64 `json:"bandwidth_gb_s"`
	Checksum     float64 `json:"checksum"`

	// NsPerAccess is the per-dependent-load latency, recorded only
	// by latency-style kernels. nil means the key was absent.
	NsPerAccess *float64 `json:"ns_per_access,omitempty"`
}

// Aggregation records how an aggregated document was produced.
type Aggregation struct {
	// Runs is the number of input run documents.
	Runs int `json:"runs"`
	// Inputs names the input files, when known.
	Inputs []string `json:"inputs,omitempty"`
}

// Clone makes a copy of Run that shares no state with r.
func (r *Run) Clone() *Run {
	r2 := *r
	r2.Stats.Sweep = append([]SweepPoint(nil), r.Stats.Sweep...)
	if r.Stats.Performance != nil {
		r2.Stats.Performance = append(json.RawMessage(nil), r.Stats.Performance...)
	}
	if r.Aggregation != nil {
		agg := *r.Aggregation
		agg.Inputs = append([]string(nil), r.Aggregation.Inputs...)
		r2.Aggregation = &agg
	}
	return &r2
}

// Kernels returns the distinct kernel names in r's sweep, in sweep
// order.
func (r *Run) Kernels() []string {
	var names []string
	seen := make(map[string]bool)
	for _, pt := range r.Stats.Sweep {
		if !seen[pt.Kernel] {
			seen[pt.Kernel] = true
			names = append(names, pt.Kernel)
		}
	}
	return names
}

// KernelSweep returns the sweep points for one kernel, sorted by
// increasing working-set size. This is the curve shape the knee
// detector requires.
func (r *Run) KernelSweep(kernel string) []SweepPoint {
	var pts []SweepPoint
	for _, pt := range r.Stats.Sweep {
		if pt.Kernel == kernel {
			pts = append(pts, pt)
		}
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Bytes < pts[j].Bytes })
	return pts
}

// SortSweep sorts r's sweep points by (kernel, bytes).
func (r *Run) SortSweep() {
	sort.Slice(r.Stats.Sweep, func(i, j int) bool {
		a, b := r.Stats.Sweep[i], r.Stats.Sweep[j]
		if a.Kernel != b.Kernel {
			return a.Kernel < b.Kernel
		}
		return a.Bytes < b.Bytes
	})
}

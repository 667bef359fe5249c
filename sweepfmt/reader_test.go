// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sweepfmt

import (
	"bytes"
	"strings"
	"testing"
)

const sampleDoc = `{
    "metadata": {
        "timestamp": "2025-06-01 12:00:00",
        "platform": {
            "os": "Linux",
            "cpu_model": "TestCPU 9000",
            "cache_l2_bytes": 5242880
        }
    },
    "config": {"kernel": "triad", "size": "64MB", "iters": 11},
    "stats": {
        "performance": {"total_time_ns": 12345},
        "sweep": [
            {"kernel": "triad", "bytes": 4096, "median_ns": 100.0, "p95_ns": 120.0,
             "min_ns": 90.0, "max_ns": 130.0, "stddev_ns": 5.0,
             "bandwidth_gb_s": 40.0, "checksum": 1.5},
            {"kernel": "triad", "bytes": 1024, "median_ns": 50.0, "p95_ns": 60.0,
             "min_ns": 45.0, "max_ns": 70.0, "stddev_ns": 2.0,
             "bandwidth_gb_s": 50.0, "checksum": 1.5,
             "ns_per_access": 1.25}
        ]
    }
}`

func TestReadRun(t *testing.T) {
	run, err := ReadRun(strings.NewReader(sampleDoc), "sample.json")
	if err != nil {
		t.Fatal(err)
	}

	if got := run.Path(); got != "sample.json" {
		t.Errorf("Path = %q, want sample.json", got)
	}
	if got := run.Config.Kernel; got != "triad" {
		t.Errorf("Config.Kernel = %q, want triad", got)
	}
	if got := run.Metadata.Platform.CacheL2Bytes; got != 5242880 {
		t.Errorf("CacheL2Bytes = %d, want 5242880", got)
	}

	// The sweep is sorted by (kernel, bytes) on read.
	if len(run.Stats.Sweep) != 2 {
		t.Fatalf("len(Sweep) = %d, want 2", len(run.Stats.Sweep))
	}
	if got := run.Stats.Sweep[0].Bytes; got != 1024 {
		t.Errorf("Sweep[0].Bytes = %d, want 1024 (sorted)", got)
	}

	// ns_per_access is optional: present on the first point,
	// absent (nil, not zero) on the second.
	if pt := run.Stats.Sweep[0]; pt.NsPerAccess == nil || *pt.NsPerAccess != 1.25 {
		t.Errorf("Sweep[0].NsPerAccess = %v, want 1.25", pt.NsPerAccess)
	}
	if pt := run.Stats.Sweep[1]; pt.NsPerAccess != nil {
		t.Errorf("Sweep[1].NsPerAccess = %v, want nil", *pt.NsPerAccess)
	}
}

func TestReadRunErrors(t *testing.T) {
	test := func(name, doc, want string) {
		t.Helper()
		_, err := ReadRun(strings.NewReader(doc), name)
		if err == nil {
			t.Errorf("%s: expected error containing %q, got nil", name, want)
			return
		}
		if !strings.Contains(err.Error(), want) {
			t.Errorf("%s: error %q does not contain %q", name, err, want)
		}
	}

	test("empty", `{"metadata":{"platform":{}},"config":{"kernel":"x"},"stats":{"sweep":[]}}`,
		"empty stats.sweep")
	test("nokernel", `{"stats":{"sweep":[{"kernel":"","bytes":1024,"bandwidth_gb_s":1}]}}`,
		"missing kernel")
	test("badbytes", `{"stats":{"sweep":[{"kernel":"copy","bytes":0,"bandwidth_gb_s":1}]}}`,
		"non-positive bytes")
	test("dup", `{"stats":{"sweep":[
		{"kernel":"copy","bytes":1024,"bandwidth_gb_s":1},
		{"kernel":"copy","bytes":1024,"bandwidth_gb_s":2}]}}`,
		"duplicate point")
	test("garbage", `{`, "unexpected EOF")
}

func TestWriteRunRoundTrip(t *testing.T) {
	run, err := ReadRun(strings.NewReader(sampleDoc), "sample.json")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteRun(&buf, run); err != nil {
		t.Fatal(err)
	}
	run2, err := ReadRun(bytes.NewReader(buf.Bytes()), "roundtrip")
	if err != nil {
		t.Fatalf("reading written document: %v", err)
	}

	if len(run2.Stats.Sweep) != len(run.Stats.Sweep) {
		t.Fatalf("round trip changed sweep length: %d != %d", len(run2.Stats.Sweep), len(run.Stats.Sweep))
	}
	for i := range run.Stats.Sweep {
		a, b := run.Stats.Sweep[i], run2.Stats.Sweep[i]
		if a.Kernel != b.Kernel || a.Bytes != b.Bytes || a.BandwidthGBs != b.BandwidthGBs {
			t.Errorf("point %d changed: %+v != %+v", i, a, b)
		}
		if (a.NsPerAccess == nil) != (b.NsPerAccess == nil) {
			t.Errorf("point %d: ns_per_access presence changed", i)
		}
	}
	// The opaque performance block passes through verbatim.
	if !bytes.Contains(buf.Bytes(), []byte("total_time_ns")) {
		t.Error("performance block was not passed through")
	}
}

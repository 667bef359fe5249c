// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sweepplot

import (
	"strings"
	"testing"

	"github.com/memsweep/sweepstat/knee"
	"github.com/memsweep/sweepstat/sweepfmt"
)

func TestPow2Ticks(t *testing.T) {
	ticks := pow2Ticks{}.Ticks(1024, 4096)
	if len(ticks) != 3 {
		t.Fatalf("got %d ticks, want 3", len(ticks))
	}
	wantLabels := []string{"1.0 KiB", "2.0 KiB", "4.0 KiB"}
	for i, tick := range ticks {
		if tick.Label != wantLabels[i] {
			t.Errorf("tick %d label = %q, want %q", i, tick.Label, wantLabels[i])
		}
	}

	// A wide range thins its labels but keeps every tick mark.
	ticks = pow2Ticks{}.Ticks(1, 1<<20)
	if len(ticks) != 21 {
		t.Fatalf("got %d ticks, want 21", len(ticks))
	}
	labeled := 0
	for _, tick := range ticks {
		if tick.Label != "" {
			labeled++
		}
	}
	if labeled > 10 {
		t.Errorf("%d labeled ticks, want at most 10", labeled)
	}

	if ticks := (pow2Ticks{}).Ticks(0, 4096); ticks != nil {
		t.Errorf("non-positive min: got %v, want nil", ticks)
	}
	if ticks := (pow2Ticks{}).Ticks(4096, 1024); ticks != nil {
		t.Errorf("inverted range: got %v, want nil", ticks)
	}
}

func TestBandwidth(t *testing.T) {
	pts := []sweepfmt.SweepPoint{
		{Kernel: "triad", Bytes: 1024, BandwidthGBs: 40},
		{Kernel: "triad", Bytes: 4096, BandwidthGBs: 12},
	}
	o := Options{
		CPU:        "TestCPU 9000",
		Hierarchy:  knee.Hierarchy{L2: 5242880},
		Multiplier: 3,
		Knees: []knee.Classification{
			{Knee: knee.Knee{X: 2048}, EffectiveBytes: 6144, Label: knee.LabelL2},
		},
	}
	pl, err := Bandwidth("triad", pts, o)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(pl.Title.Text, "triad") {
		t.Errorf("title %q does not name the kernel", pl.Title.Text)
	}
	if !strings.Contains(pl.Title.Text, "CPU: TestCPU 9000") {
		t.Errorf("title %q does not name the CPU", pl.Title.Text)
	}

	if _, err := Bandwidth("triad", nil, o); err == nil {
		t.Error("empty sweep: expected error")
	}
}

func TestBandwidthTitleOverride(t *testing.T) {
	pts := []sweepfmt.SweepPoint{{Kernel: "load", Bytes: 1024, BandwidthGBs: 10}}
	pl, err := Bandwidth("load", pts, Options{Title: "Custom"})
	if err != nil {
		t.Fatal(err)
	}
	if pl.Title.Text != "Custom" {
		t.Errorf("title = %q, want Custom", pl.Title.Text)
	}
}

func TestLatency(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	pts := []sweepfmt.SweepPoint{
		{Kernel: "chase", Bytes: 1024, NsPerAccess: f(1.2)},
		{Kernel: "chase", Bytes: 4096}, // skipped, no latency
		{Kernel: "chase", Bytes: 16384, NsPerAccess: f(8.0)},
	}
	pl, err := Latency("chase", pts, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(pl.Title.Text, "Latency") {
		t.Errorf("title = %q", pl.Title.Text)
	}

	if _, err := Latency("load", pts[1:2], Options{}); err == nil {
		t.Error("no latency values: expected error")
	}
}

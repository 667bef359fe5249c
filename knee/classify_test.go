// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package knee

import (
	"testing"

	"github.com/memsweep/sweepstat/sweepfmt"
)

func TestHierarchyOf(t *testing.T) {
	p := sweepfmt.Platform{CacheL2Bytes: 5242880}
	fb := Hierarchy{L1: 32768, LLC: 16 << 20}

	h := HierarchyOf(p, fb)
	if h.L1 != 32768 {
		t.Errorf("L1 = %d, want fallback 32768", h.L1)
	}
	if h.L2 != 5242880 {
		t.Errorf("L2 = %d, want reported 5242880", h.L2)
	}
	if h.LLC != 16<<20 {
		t.Errorf("LLC = %d, want fallback %d", h.LLC, 16<<20)
	}

	// Reported sizes win over fallbacks.
	h = HierarchyOf(sweepfmt.Platform{CacheL1Bytes: 49152}, Hierarchy{L1: 32768})
	if h.L1 != 49152 {
		t.Errorf("L1 = %d, want reported 49152", h.L1)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("clean"); err != nil || m != ModeClean {
		t.Errorf("ParseMode(clean) = %v, %v", m, err)
	}
	if m, err := ParseMode(" Research "); err != nil || m != ModeResearch {
		t.Errorf("ParseMode(Research) = %v, %v", m, err)
	}
	if _, err := ParseMode("strict"); err == nil {
		t.Error("ParseMode(strict): expected error")
	}
}

const (
	l1Size = 32768
	l2Size = 5242880 // 5 MiB
)

var testHierarchy = Hierarchy{L1: l1Size, L2: l2Size}

// kneeCurve builds a curve whose only drop falls between preBytes and
// postBytes, putting the knee at the geometric mean of the two.
func kneeCurve(preBytes, postBytes int64, bw1, bw2 float64) []sweepfmt.SweepPoint {
	return []sweepfmt.SweepPoint{
		{Kernel: "load", Bytes: preBytes, BandwidthGBs: bw1},
		{Kernel: "load", Bytes: postBytes, BandwidthGBs: bw2},
	}
}

func TestAnalyzeCleanConfirmed(t *testing.T) {
	// Knee at sqrt(2752512*11010048) = 5505024 = L2*1.05: above the
	// L2 size but within tolerance of it, so the boundary label is
	// claimed.
	pts := kneeCurve(2752512, 11010048, 40, 12)
	cs := Analyze("load", pts, testHierarchy, DefaultOptions)
	if len(cs) != 1 {
		t.Fatalf("got %d classifications, want 1", len(cs))
	}
	c := cs[0]
	if c.Label != LabelL2 {
		t.Errorf("Label = %q, want %q", c.Label, LabelL2)
	}
	if c.NearTheory != "L2" {
		t.Errorf("NearTheory = %q, want L2", c.NearTheory)
	}
	if c.EffectiveBytes != 5505024 {
		t.Errorf("EffectiveBytes = %v, want 5505024", c.EffectiveBytes)
	}
	if got := c.String(); got != LabelL2 {
		t.Errorf("String = %q, want %q", got, LabelL2)
	}
}

func TestAnalyzeCleanExactBoundary(t *testing.T) {
	// A knee exactly at the L2 size fits in L2 (inclusive bound) and
	// is at zero distance from theory; both tests agree.
	pts := kneeCurve(l2Size/2, l2Size*2, 40, 12)
	cs := Analyze("load", pts, testHierarchy, DefaultOptions)
	if len(cs) != 1 {
		t.Fatalf("got %d classifications, want 1", len(cs))
	}
	if cs[0].EffectiveBytes != l2Size {
		t.Errorf("EffectiveBytes = %v, want %d", cs[0].EffectiveBytes, int64(l2Size))
	}
	if cs[0].Label != LabelL2 {
		t.Errorf("Label = %q, want %q", cs[0].Label, LabelL2)
	}
}

func TestAnalyzeCleanNoBoundaryClaim(t *testing.T) {
	// Knee at 3*L2: far from every configured size. The drop is
	// reported, but not as a cache boundary.
	pts := kneeCurve(7864320, 31457280, 40, 12)
	cs := Analyze("load", pts, testHierarchy, DefaultOptions)
	if len(cs) != 1 {
		t.Fatalf("got %d classifications, want 1", len(cs))
	}
	if cs[0].Label == LabelL1 || cs[0].Label == LabelL2 || cs[0].Label == LabelLLC {
		t.Errorf("Label = %q, want no cache-boundary claim", cs[0].Label)
	}
	if cs[0].NearTheory != "" {
		t.Errorf("NearTheory = %q, want none", cs[0].NearTheory)
	}
}

func TestAnalyzeCleanUnconfirmedInsideCache(t *testing.T) {
	// Knee at 1 MiB: inside the L2 size range but nowhere near the
	// L2 size itself, so the range alone earns only a generic label.
	pts := kneeCurve(1<<19, 1<<21, 40, 12)
	cs := Analyze("load", pts, testHierarchy, DefaultOptions)
	if len(cs) != 1 {
		t.Fatalf("got %d classifications, want 1", len(cs))
	}
	if cs[0].Label != LabelSignificant {
		t.Errorf("Label = %q, want %q", cs[0].Label, LabelSignificant)
	}
}

func TestAnalyzeCleanMultiplier(t *testing.T) {
	// For triad the working set is three arrays: a knee at one-third
	// of L2*1.05 on the single-array axis lands on the L2 boundary.
	pts := []sweepfmt.SweepPoint{
		{Kernel: "triad", Bytes: 917504, BandwidthGBs: 40},
		{Kernel: "triad", Bytes: 3670016, BandwidthGBs: 12},
	}
	cs := Analyze("triad", pts, testHierarchy, DefaultOptions)
	if len(cs) != 1 {
		t.Fatalf("got %d classifications, want 1", len(cs))
	}
	if cs[0].EffectiveBytes != 5505024 {
		t.Errorf("EffectiveBytes = %v, want 5505024", cs[0].EffectiveBytes)
	}
	if cs[0].Label != LabelL2 {
		t.Errorf("Label = %q, want %q", cs[0].Label, LabelL2)
	}
}

func TestAnalyzeCleanDedup(t *testing.T) {
	// Two retained knees straddling the L2 size, both within
	// tolerance of it. Only the stronger one may claim the label.
	pts := []sweepfmt.SweepPoint{
		{Kernel: "load", Bytes: 4300000, BandwidthGBs: 50},
		{Kernel: "load", Bytes: 5200000, BandwidthGBs: 30},
		{Kernel: "load", Bytes: 6300000, BandwidthGBs: 14},
	}
	o := DefaultOptions
	o.SeparationFactor = 1.1 // let both knees through separation
	cs := Analyze("load", pts, testHierarchy, o)
	if len(cs) != 1 {
		t.Fatalf("got %d classifications, want 1", len(cs))
	}
	if cs[0].Label != LabelL2 {
		t.Errorf("Label = %q, want %q", cs[0].Label, LabelL2)
	}
	if cs[0].Knee.Drop != 20 {
		t.Errorf("kept Drop = %v, want the stronger knee (20)", cs[0].Knee.Drop)
	}
}

func TestAnalyzeResearch(t *testing.T) {
	pts := []sweepfmt.SweepPoint{
		{Kernel: "load", Bytes: 4096, BandwidthGBs: 50},
		{Kernel: "load", Bytes: 16384, BandwidthGBs: 30},
		{Kernel: "load", Bytes: 1 << 20, BandwidthGBs: 28},
		{Kernel: "load", Bytes: 1 << 22, BandwidthGBs: 10},
	}
	o := DefaultOptions
	o.Mode = ModeResearch
	cs := Analyze("load", pts, testHierarchy, o)
	if len(cs) != 2 {
		t.Fatalf("got %d classifications, want 2", len(cs))
	}

	// Ordinals rank by drop magnitude.
	if cs[0].Ordinal != 1 || cs[0].Knee.Drop != 20 {
		t.Errorf("first: ordinal %d drop %v, want 1, 20", cs[0].Ordinal, cs[0].Knee.Drop)
	}
	if cs[1].Ordinal != 2 || cs[1].Knee.Drop != 18 {
		t.Errorf("second: ordinal %d drop %v, want 2, 18", cs[1].Ordinal, cs[1].Knee.Drop)
	}
	if got, want := cs[0].String(), "drop #1 (-20.0 GB/s, -40%)"; got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}

func TestAnalyzeNoCandidates(t *testing.T) {
	pts := kneeCurve(1024, 2048, 10, 9.9)
	if cs := Analyze("load", pts, testHierarchy, DefaultOptions); cs != nil {
		t.Errorf("flat curve: got %v, want nil", cs)
	}
	if cs := Analyze("load", nil, testHierarchy, DefaultOptions); cs != nil {
		t.Errorf("empty curve: got %v, want nil", cs)
	}
}

// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package knee detects and classifies bandwidth drops in a
// size-ordered sweep curve.
//
// A "knee" is a point where bandwidth falls sharply between two
// adjacent working-set sizes, typically because the working set
// stopped fitting in a level of the cache hierarchy. Detection is
// purely data driven; classification against L1/L2/LLC sizes is a
// separate, deliberately conservative step so that noise inside a
// plateau is not presented as a hardware effect.
//
// The pipeline is Detect, then Separate, then Analyze's mode-specific
// labeling. Each step is a pure function; all of them return empty
// results rather than errors when the curve is too thin to say
// anything.
package knee

import (
	"math"
	"sort"

	"github.com/memsweep/sweepstat/sweepfmt"
)

// Thresholds configures candidate detection.
type Thresholds struct {
	// MinDropRatio is the bw2/bw1 ceiling: an adjacent pair only
	// counts as a drop if the bandwidth falls below this fraction
	// of its predecessor.
	MinDropRatio float64

	// MinDropAbs is the minimum absolute drop in GB/s.
	MinDropAbs float64

	// MinDropPeakFrac scales the absolute threshold with the
	// curve: the drop must also be at least this fraction of the
	// peak bandwidth.
	MinDropPeakFrac float64

	// MinPreDropPeakFrac ignores drops that start below this
	// fraction of peak bandwidth. Such drops sit inside the DRAM
	// plateau and are noise, not cache transitions.
	MinPreDropPeakFrac float64
}

// DefaultThresholds is a reasonable starting point for STREAM-style
// sweeps.
var DefaultThresholds = Thresholds{
	MinDropRatio:       0.75,
	MinDropAbs:         2.0,
	MinDropPeakFrac:    0.10,
	MinPreDropPeakFrac: 0.30,
}

// A Knee is a candidate transition between two size-adjacent sweep
// points.
type Knee struct {
	// X is the candidate's position on the size axis: the
	// geometric mean of the two sizes, which is the midpoint on a
	// logarithmic axis. Like SweepPoint.Bytes, this counts one
	// array only.
	X float64

	// Index is the index of the lower (pre-drop) point in the
	// curve passed to Detect.
	Index int

	// Drop is the absolute bandwidth drop in GB/s, and Ratio the
	// post/pre bandwidth ratio.
	Drop  float64
	Ratio float64

	// Bandwidth1 and Bandwidth2 are the pre- and post-drop
	// bandwidths.
	Bandwidth1 float64
	Bandwidth2 float64
}

// Detect scans one kernel's sweep curve, sorted by increasing
// working-set size, and returns every candidate drop that clears t.
// The result is unordered and unfiltered; use Separate to deduplicate
// it. Curves with fewer than two points yield no candidates.
func Detect(pts []sweepfmt.SweepPoint, t Thresholds) []Knee {
	if len(pts) < 2 {
		return nil
	}

	peak := 0.0
	for _, pt := range pts {
		if pt.BandwidthGBs > peak {
			peak = pt.BandwidthGBs
		}
	}
	absThresh := t.MinDropAbs
	if s := t.MinDropPeakFrac * peak; s > absThresh {
		absThresh = s
	}

	var cands []Knee
	for i := 0; i < len(pts)-1; i++ {
		bw1, bw2 := pts[i].BandwidthGBs, pts[i+1].BandwidthGBs
		if bw1 <= 0 || bw2 <= 0 {
			continue
		}
		if bw1 < t.MinPreDropPeakFrac*peak {
			continue
		}
		ratio := bw2 / bw1
		drop := bw1 - bw2
		if ratio < t.MinDropRatio && drop >= absThresh {
			cands = append(cands, Knee{
				X:          math.Sqrt(float64(pts[i].Bytes) * float64(pts[i+1].Bytes)),
				Index:      i,
				Drop:       drop,
				Ratio:      ratio,
				Bandwidth1: bw1,
				Bandwidth2: bw2,
			})
		}
	}
	return cands
}

// Separate deduplicates candidates on the logarithmic size axis. It
// keeps the largest drops first, rejecting any candidate whose
// position lies within a factor of minSeparationFactor of an already
// accepted one, and stops after max accepted knees. A genuine
// boundary smeared across two adjacent sweep steps therefore counts
// once.
func Separate(cands []Knee, minSeparationFactor float64, max int) []Knee {
	if max <= 0 {
		return nil
	}
	sorted := append([]Knee(nil), cands...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Drop > sorted[j].Drop })

	var kept []Knee
	for _, c := range sorted {
		tooClose := false
		for _, k := range kept {
			if c.X > k.X/minSeparationFactor && c.X < k.X*minSeparationFactor {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}
		kept = append(kept, c)
		if len(kept) >= max {
			break
		}
	}
	return kept
}

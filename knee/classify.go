// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package knee

import (
	"fmt"
	"math"
	"strings"

	"github.com/memsweep/sweepstat/sweepfmt"
)

// A Hierarchy holds a machine's cache sizes in bytes. A zero size
// means that level was not reported and removes it from bucketing and
// confirmation; it is never treated as a zero-byte cache.
type Hierarchy struct {
	L1  int64
	L2  int64
	LLC int64
}

// HierarchyOf builds a Hierarchy from run platform metadata, filling
// each missing level independently from fallback. The fallback is the
// place for manually configured sizes on machines whose OS probe
// reports nothing.
func HierarchyOf(p sweepfmt.Platform, fallback Hierarchy) Hierarchy {
	h := Hierarchy{L1: p.CacheL1Bytes, L2: p.CacheL2Bytes, LLC: p.CacheLLCBytes}
	if h.L1 <= 0 {
		h.L1 = fallback.L1
	}
	if h.L2 <= 0 {
		h.L2 = fallback.L2
	}
	if h.LLC <= 0 {
		h.LLC = fallback.LLC
	}
	return h
}

// levels returns the configured cache levels in hierarchy order.
func (h Hierarchy) levels() []level {
	var ls []level
	if h.L1 > 0 {
		ls = append(ls, level{"L1", h.L1})
	}
	if h.L2 > 0 {
		ls = append(ls, level{"L2", h.L2})
	}
	if h.LLC > 0 {
		ls = append(ls, level{"LLC", h.LLC})
	}
	return ls
}

type level struct {
	name string
	size int64
}

// Classification labels.
const (
	LabelL1          = "L1 boundary"
	LabelL2          = "L2 boundary"
	LabelLLC         = "LLC boundary"
	LabelDRAM        = "DRAM/large"
	LabelSignificant = "significant drop"
)

// A Classification is a labeled, retained knee.
type Classification struct {
	Knee Knee

	// EffectiveBytes is the knee position scaled by the kernel's
	// array multiplier: the true working set at the transition.
	EffectiveBytes float64

	// Label is one of the Label constants in clean mode, or
	// "drop #k" in research mode.
	Label string

	// NearTheory names the cache level whose size the knee sits
	// within tolerance of, or "" if none. In clean mode a
	// cache-boundary Label implies a matching NearTheory; in
	// research mode it is informative only.
	NearTheory string

	// Ordinal is the 1-based research-mode rank by drop magnitude;
	// 0 in clean mode.
	Ordinal int
}

// String renders the classification the way reports print it.
func (c Classification) String() string {
	if c.Ordinal > 0 {
		rel := 0.0
		if c.Knee.Bandwidth1 > 0 {
			rel = c.Knee.Drop / c.Knee.Bandwidth1 * 100
		}
		s := fmt.Sprintf("drop #%d (-%.1f GB/s, -%.0f%%)", c.Ordinal, c.Knee.Drop, rel)
		if c.NearTheory != "" {
			s += ", near theory: " + c.NearTheory
		}
		return s
	}
	return c.Label
}

// A Mode selects the classification policy.
type Mode int

const (
	// ModeClean is conservative: at most one knee per cache-region
	// label, and a cache-boundary label is only claimed when the
	// knee is also near the corresponding reported cache size.
	ModeClean Mode = iota

	// ModeResearch is exploratory: every retained knee is reported
	// with its magnitude and nothing is suppressed.
	ModeResearch
)

// ParseMode parses "clean" or "research".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clean":
		return ModeClean, nil
	case "research":
		return ModeResearch, nil
	}
	return ModeClean, fmt.Errorf("unknown mode %q", s)
}

// Options configures Analyze. The zero value is not useful; start
// from DefaultOptions.
type Options struct {
	Mode             Mode
	Thresholds       Thresholds
	MaxKnees         int
	SeparationFactor float64

	// TheoryTol is the relative tolerance of the nearest-theory
	// test: a knee "matches" a cache size when |E-size|/size is at
	// most this fraction.
	TheoryTol float64

	// Multipliers overrides the kernel array-multiplier heuristic
	// by exact kernel name; nil uses the heuristic alone.
	Multipliers map[string]float64
}

// DefaultOptions mirrors the benchmark suite's standard reporting
// settings.
var DefaultOptions = Options{
	Mode:             ModeClean,
	Thresholds:       DefaultThresholds,
	MaxKnees:         5,
	SeparationFactor: 2.0,
	TheoryTol:        0.15,
}

// Analyze runs the full pipeline for one kernel's curve: detect
// candidates, deduplicate them, and label the survivors according to
// o.Mode. pts must be sorted by increasing working-set size. The
// result is ordered by descending drop magnitude and is empty when no
// qualifying drop exists; absence of knees is an answer, not an
// error.
func Analyze(kernel string, pts []sweepfmt.SweepPoint, h Hierarchy, o Options) []Classification {
	cands := Detect(pts, o.Thresholds)
	if len(cands) == 0 {
		return nil
	}
	mult := Multiplier(kernel, o.Multipliers)

	if o.Mode == ModeResearch {
		kept := Separate(cands, o.SeparationFactor, o.MaxKnees)
		var out []Classification
		for i, k := range kept {
			eff := mult * k.X
			near, _ := nearestTheory(eff, h, o.TheoryTol)
			out = append(out, Classification{
				Knee:           k,
				EffectiveBytes: eff,
				Label:          fmt.Sprintf("drop #%d", i+1),
				NearTheory:     near,
				Ordinal:        i + 1,
			})
		}
		return out
	}

	// Clean mode: strongest candidate per tentative region label,
	// then separation among those, then theory confirmation.
	best := make(map[string]Knee)
	for _, k := range cands {
		label := bucket(mult*k.X, h)
		if prev, ok := best[label]; !ok || k.Drop > prev.Drop {
			best[label] = k
		}
	}
	var picked []Knee
	for _, label := range []string{LabelL1, LabelL2, LabelLLC, LabelDRAM} {
		if k, ok := best[label]; ok {
			picked = append(picked, k)
		}
	}
	kept := Separate(picked, o.SeparationFactor, len(picked))

	var out []Classification
	for _, k := range kept {
		eff := mult * k.X
		label := bucket(eff, h)
		near, nearOK := nearestTheory(eff, h, o.TheoryTol)
		switch {
		case label == LabelDRAM && nearOK:
			// The knee sits above every configured size but
			// within tolerance of the outermost one; that is
			// the boundary itself, overshot by less than the
			// tolerance.
			label = labelOf(near)
		case label != LabelDRAM && labelOf(near) != label:
			// The size range alone is not evidence of a
			// hardware boundary; report the drop without the
			// cache claim.
			label = LabelSignificant
		}
		out = append(out, Classification{
			Knee:           k,
			EffectiveBytes: eff,
			Label:          label,
			NearTheory:     near,
		})
	}

	// At most one knee per occupied boundary label. kept is in
	// descending drop order, so the first holder of a label is the
	// strongest.
	seen := make(map[string]bool)
	final := out[:0]
	for _, c := range out {
		if c.Label != LabelSignificant {
			if seen[c.Label] {
				continue
			}
			seen[c.Label] = true
		}
		final = append(final, c)
	}
	return final
}

// bucket places an effective size in the first containing cache
// interval. The upper bound is inclusive: a working set exactly the
// size of a level still fits in it, and the nearest-theory distance
// at that point is zero, so the two tests agree at the boundary.
func bucket(effectiveBytes float64, h Hierarchy) string {
	for _, l := range h.levels() {
		if effectiveBytes <= float64(l.size) {
			return labelOf(l.name)
		}
	}
	return LabelDRAM
}

func labelOf(level string) string {
	switch level {
	case "L1":
		return LabelL1
	case "L2":
		return LabelL2
	case "LLC":
		return LabelLLC
	}
	return ""
}

// nearestTheory returns the configured cache level whose size is
// relatively closest to effectiveBytes, if that distance is within
// tol. It reports ok=false when no level is configured or the nearest
// one is too far away.
func nearestTheory(effectiveBytes float64, h Hierarchy, tol float64) (level string, ok bool) {
	bestFrac := math.Inf(1)
	bestName := ""
	for _, l := range h.levels() {
		frac := math.Abs(effectiveBytes-float64(l.size)) / float64(l.size)
		if frac < bestFrac {
			bestFrac, bestName = frac, l.name
		}
	}
	if bestName == "" || bestFrac > tol {
		return "", false
	}
	return bestName, true
}

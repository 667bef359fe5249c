// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sweepstat aggregates repeated memsweep runs into one
// canonical sweep.
//
// The benchmark executable already computes per-point statistics
// across iterations inside one process; this package computes robust
// statistics across repeated process-level runs, where scheduler and
// frequency noise live. The primary metrics take the median across
// runs so that a single stalled run cannot shift the aggregate, while
// the tail and dispersion fields (p95, stddev) take the mean, since a
// median of medians there would discard exactly the information they
// carry.
package sweepstat

import (
	"errors"
	"sort"

	"github.com/aclements/go-moremath/stats"
	"github.com/memsweep/sweepstat/sweepfmt"
)

// ErrNoInput is returned by Aggregate when it is given no runs.
var ErrNoInput = errors.New("no input runs")

// A Point is one aggregated (kernel, bytes) group: the reduced sweep
// point plus the number of runs that contributed to it.
type Point struct {
	sweepfmt.SweepPoint

	// Runs is the number of input points in this group. It is
	// carried in tabular projections but not in the aggregated
	// document, whose sweep keeps the raw schema.
	Runs int
}

// A Result is the output of Aggregate: the aggregated run document
// and its flat tabular projection.
type Result struct {
	// Run is an aggregated document with the same shape as its
	// inputs. Metadata, config, and the opaque performance block
	// are taken from the first input; stats.sweep holds the
	// reduced points; Aggregation records provenance.
	Run *sweepfmt.Run

	// Points mirrors Run.Stats.Sweep one row per point, adding the
	// run count, for tables and CSV output.
	Points []Point
}

// Aggregate reduces repeated runs of the same sweep to one canonical
// document. Points are grouped by (kernel, bytes) across all runs;
// each group reduces to median_ns = median, p95_ns = mean,
// min_ns = min, max_ns = max, stddev_ns = mean, bandwidth = median,
// checksum = median, and ns_per_access = median over the points that
// supplied it. Groups are emitted sorted by (kernel, bytes), so the
// result is independent of input order.
//
// Aggregate fails only on an empty input; a run that omits an
// optional field contributes a zero there and never aborts the rest.
func Aggregate(runs []*sweepfmt.Run) (*Result, error) {
	if len(runs) == 0 {
		return nil, ErrNoInput
	}

	type key struct {
		kernel string
		bytes  int64
	}
	groups := make(map[key][]sweepfmt.SweepPoint)
	var keys []key
	for _, run := range runs {
		for _, pt := range run.Stats.Sweep {
			k := key{pt.Kernel, pt.Bytes}
			if _, ok := groups[k]; !ok {
				keys = append(keys, k)
			}
			groups[k] = append(groups[k], pt)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].kernel != keys[j].kernel {
			return keys[i].kernel < keys[j].kernel
		}
		return keys[i].bytes < keys[j].bytes
	})

	points := make([]Point, 0, len(keys))
	for _, k := range keys {
		pts := groups[k]
		var medians, p95s, mins, maxes, stddevs, bws, sums []float64
		var perAccess []float64
		for _, pt := range pts {
			medians = append(medians, pt.MedianNs)
			p95s = append(p95s, pt.P95Ns)
			mins = append(mins, pt.MinNs)
			maxes = append(maxes, pt.MaxNs)
			stddevs = append(stddevs, pt.StddevNs)
			bws = append(bws, pt.BandwidthGBs)
			sums = append(sums, pt.Checksum)
			if pt.NsPerAccess != nil {
				perAccess = append(perAccess, *pt.NsPerAccess)
			}
		}
		minNs, _ := stats.Bounds(mins)
		_, maxNs := stats.Bounds(maxes)
		agg := sweepfmt.SweepPoint{
			Kernel:       k.kernel,
			Bytes:        k.bytes,
			MedianNs:     median(medians),
			P95Ns:        stats.Mean(p95s),
			MinNs:        minNs,
			MaxNs:        maxNs,
			StddevNs:     stats.Mean(stddevs),
			BandwidthGBs: median(bws),
			Checksum:     median(sums),
		}
		if len(perAccess) > 0 {
			m := median(perAccess)
			agg.NsPerAccess = &m
		}
		points = append(points, Point{SweepPoint: agg, Runs: len(pts)})
	}

	out := runs[0].Clone()
	out.Stats.Sweep = make([]sweepfmt.SweepPoint, len(points))
	for i, p := range points {
		out.Stats.Sweep[i] = p.SweepPoint
	}
	out.Aggregation = &sweepfmt.Aggregation{Runs: len(runs)}
	for _, run := range runs {
		if run.Path() != "" {
			out.Aggregation.Inputs = append(out.Aggregation.Inputs, run.Path())
		}
	}

	return &Result{Run: out, Points: points}, nil
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stats.Sample{Xs: xs}.Quantile(0.5)
}

// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sweepplot

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/memsweep/sweepstat/sweepfmt"
)

// Latency builds a latency-vs-working-set-size chart from a
// pointer-chase sweep. Points without an ns_per_access value are
// skipped; at least one point must carry it.
func Latency(kernel string, pts []sweepfmt.SweepPoint, o Options) (*plot.Plot, error) {
	var xys plotter.XYs
	for _, pt := range pts {
		if pt.NsPerAccess == nil {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(pt.Bytes), Y: *pt.NsPerAccess})
	}
	if len(xys) == 0 {
		return nil, fmt.Errorf("kernel %q has no ns_per_access values", kernel)
	}

	pl := plot.New()
	pl.Title.Text = title(o, "Pointer-Chasing Latency vs Working-Set Size")
	pl.X.Label.Text = "Working-set size (bytes)"
	pl.Y.Label.Text = "Latency (ns per dependent load)"
	pl.X.Scale = plot.LogScale{}
	pl.X.Tick.Marker = pow2Ticks{}
	pl.Add(plotter.NewGrid())

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, err
	}
	line.Width = vg.Points(1.8)
	pl.Add(line, points)
	pl.Legend.Add("measured", line, points)
	pl.Legend.Top = true

	return pl, nil
}

// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sweepstat

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/memsweep/sweepstat/sweepunit"
)

// tableColumns is the header shared by the text, CSV, and HTML
// projections. ns_per_access is always present as a column; points
// from non-latency kernels leave it blank.
var tableColumns = []string{
	"kernel", "bytes", "size", "median_ns", "p95_ns", "min_ns", "max_ns",
	"stddev_ns", "bandwidth_gb_s", "checksum", "ns_per_access", "runs",
}

func (p Point) row() []string {
	perAccess := ""
	if p.NsPerAccess != nil {
		perAccess = fmt.Sprintf("%.3f", *p.NsPerAccess)
	}
	return []string{
		p.Kernel,
		fmt.Sprintf("%d", p.Bytes),
		sweepunit.FormatBytes(p.Bytes),
		fmt.Sprintf("%.1f", p.MedianNs),
		fmt.Sprintf("%.1f", p.P95Ns),
		fmt.Sprintf("%.1f", p.MinNs),
		fmt.Sprintf("%.1f", p.MaxNs),
		fmt.Sprintf("%.1f", p.StddevNs),
		fmt.Sprintf("%.3f", p.BandwidthGBs),
		fmt.Sprintf("%g", p.Checksum),
		perAccess,
		fmt.Sprintf("%d", p.Runs),
	}
}

// FormatText writes the aggregated points as an aligned text table.
func FormatText(w io.Writer, res *Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	writeRow := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, c)
		}
		fmt.Fprintln(tw)
	}
	writeRow(tableColumns)
	for _, p := range res.Points {
		writeRow(p.row())
	}
	return tw.Flush()
}

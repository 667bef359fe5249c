// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sweepstat

import (
	"encoding/csv"
	"io"
)

// FormatCSV writes the aggregated points in CSV form, one row per
// point, with the same columns as the text table. This is the format
// downstream spreadsheets and plotting scripts consume.
func FormatCSV(w io.Writer, res *Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tableColumns); err != nil {
		return err
	}
	for _, p := range res.Points {
		if err := cw.Write(p.row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

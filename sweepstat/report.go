// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sweepstat

import (
	"fmt"
	"io"

	"github.com/memsweep/sweepstat/knee"
	"github.com/memsweep/sweepstat/sweepunit"
)

func formatEffective(eff float64) string {
	return sweepunit.FormatBytes(int64(eff + 0.5))
}

// FormatKnees writes a plain-text drop report for one kernel. An
// empty classification list reports the absence explicitly; callers
// must not treat it as a failure.
func FormatKnees(w io.Writer, kernel string, cs []knee.Classification) {
	if len(cs) == 0 {
		fmt.Fprintf(w, "%s: no significant drops detected\n", kernel)
		return
	}
	fmt.Fprintf(w, "%s:\n", kernel)
	for _, c := range cs {
		fmt.Fprintf(w, "  %s @ %s\n", c.String(), formatEffective(c.EffectiveBytes))
	}
}

// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package knee

import "strings"

// Multiplier returns how many array-sizes of memory a kernel touches
// per iteration. The sweep's "bytes" field counts one array, but
// STREAM-style kernels stream through several: copy and scale touch
// two arrays, add and triad three. Classification must scale a knee's
// position by this factor to recover the true working set.
//
// overrides maps exact kernel names to multipliers and takes
// precedence over the name heuristic; it may be nil.
func Multiplier(kernel string, overrides map[string]float64) float64 {
	if m, ok := overrides[kernel]; ok {
		return m
	}
	k := strings.ToLower(kernel)
	switch {
	case strings.Contains(k, "copy") || strings.Contains(k, "scale"):
		return 2
	case strings.Contains(k, "add") || strings.Contains(k, "triad"):
		return 3
	}
	return 1
}

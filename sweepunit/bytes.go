// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sweepunit parses and formats working-set sizes in bytes.
//
// Sizes on the command line accept the same syntax as the benchmark
// executable: a number with an optional decimal (SI) or binary (IEC)
// unit suffix, such as "64MB", "512KiB", "1GiB", or "1048576".
// Formatting always uses binary prefixes, since working-set sizes are
// naturally powers of two.
package sweepunit

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var multipliers = map[string]uint64{
	"":    1,
	"b":   1,
	"kb":  1000,
	"mb":  1000 * 1000,
	"gb":  1000 * 1000 * 1000,
	"ki":  1024,
	"kib": 1024,
	"mi":  1024 * 1024,
	"mib": 1024 * 1024,
	"gi":  1024 * 1024 * 1024,
	"gib": 1024 * 1024 * 1024,
}

// ParseBytes parses a size string like "64MB", "512KiB", or "1048576"
// into a byte count. Fractional values round to the nearest byte.
func ParseBytes(s string) (int64, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, fmt.Errorf("empty size string")
	}

	// Split the numeric prefix from the unit suffix.
	i := 0
	dot := false
	for i < len(t) {
		c := t[i]
		if '0' <= c && c <= '9' {
			i++
			continue
		}
		if c == '.' && !dot {
			dot = true
			i++
			continue
		}
		break
	}
	if i == 0 {
		return 0, fmt.Errorf("size %q has no numeric prefix", s)
	}

	val, err := strconv.ParseFloat(t[:i], 64)
	if err != nil {
		return 0, fmt.Errorf("size %q: %v", s, err)
	}
	unit := strings.ToLower(strings.TrimSpace(t[i:]))
	mult, ok := multipliers[unit]
	if !ok {
		return 0, fmt.Errorf("size %q: unsupported unit %q", s, t[i:])
	}

	bytes := val*float64(mult) + 0.5
	if bytes >= math.MaxInt64 {
		return 0, fmt.Errorf("size %q overflows", s)
	}
	return int64(bytes), nil
}

// FormatBytes formats a byte count with an IEC prefix, e.g.
// "48 KiB" or "1.5 MiB". Values of ten or more in their unit are shown
// without a fraction.
func FormatBytes(bytes int64) string {
	v := float64(bytes)
	units := []string{"B", "KiB", "MiB", "GiB"}
	for i, u := range units {
		if v < 1024 || i == len(units)-1 {
			if u == "B" || v >= 10 {
				return fmt.Sprintf("%.0f %s", v, u)
			}
			return fmt.Sprintf("%.1f %s", v, u)
		}
		v /= 1024
	}
	return fmt.Sprintf("%d B", bytes)
}

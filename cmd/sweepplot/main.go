// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Sweepplot renders charts from a memsweep run document.
//
// Usage:
//
//	sweepplot [options] results.json
//
// The input is usually an aggregated document produced by
// sweepstat -out-json, but any run document works. For every kernel
// in the sweep, sweepplot writes a bandwidth-vs-working-set-size PNG
// with data-driven knee annotations and faint theory rules at the
// reported cache sizes. For kernels that record per-access latency,
// -latency also writes a latency-vs-size chart.
//
// The knee flags mirror sweepstat's; see that command for their
// meaning.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/memsweep/sweepstat/knee"
	"github.com/memsweep/sweepstat/sweepfmt"
	"github.com/memsweep/sweepstat/sweepplot"
	"github.com/memsweep/sweepstat/sweepunit"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: sweepplot [options] results.json\n")
	fmt.Fprintf(os.Stderr, "options:\n")
	flag.PrintDefaults()
	os.Exit(2)
}

var (
	flagOutDir  = flag.String("out-dir", "plots", "write charts into `dir`")
	flagLatency = flag.Bool("latency", false, "also render latency-vs-size charts")
	flagDPI     = flag.Int("dpi", 250, "output resolution")

	flagMode     = flag.String("mode", "clean", "drop annotation `mode`: clean or research")
	flagMaxKnees = flag.Int("max-knees", 5, "annotate at most `n` drops per kernel")
	flagMinRatio = flag.Float64("min-drop-ratio", 0.75, "count a drop only if post/pre bandwidth is below `ratio`")
	flagPeakFrac = flag.Float64("min-drop-peak-frac", 0.10, "require a drop of at least `frac` of peak bandwidth")
	flagMinAbs   = flag.Float64("min-drop-abs", 2.0, "require a drop of at least `gbs` GB/s")
	flagSepFac   = flag.Float64("min-separation-factor", 2.0, "keep drops at least `factor` apart on the log size axis")
	flagTol      = flag.Float64("theory-match-tol", 0.15, "match a cache size within `frac` relative distance")
	flagPreFrac  = flag.Float64("min-pre-drop-peak-frac", 0.30, "ignore drops starting below `frac` of peak bandwidth")
	flagTheoryL1 = flag.Bool("theory-l1", false, "also draw the L1 theory rule")

	flagL1  = flag.String("l1", "", "fallback L1 data cache `size` (e.g. 48KiB)")
	flagL2  = flag.String("l2", "", "fallback L2 cache `size`")
	flagLLC = flag.String("llc", "", "fallback last-level cache `size`")
)

func main() {
	log.SetPrefix("sweepplot: ")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}

	mode, err := knee.ParseMode(*flagMode)
	if err != nil {
		log.Fatal(err)
	}
	fallback := knee.Hierarchy{
		L1:  parseSizeFlag("l1", *flagL1),
		L2:  parseSizeFlag("l2", *flagL2),
		LLC: parseSizeFlag("llc", *flagLLC),
	}

	run, err := sweepfmt.ReadRunFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	hierarchy := knee.HierarchyOf(run.Metadata.Platform, fallback)

	opts := knee.Options{
		Mode: mode,
		Thresholds: knee.Thresholds{
			MinDropRatio:       *flagMinRatio,
			MinDropAbs:         *flagMinAbs,
			MinDropPeakFrac:    *flagPeakFrac,
			MinPreDropPeakFrac: *flagPreFrac,
		},
		MaxKnees:         *flagMaxKnees,
		SeparationFactor: *flagSepFac,
		TheoryTol:        *flagTol,
	}

	if err := os.MkdirAll(*flagOutDir, 0777); err != nil {
		log.Fatal(err)
	}

	suffix := ""
	if mode == knee.ModeResearch {
		suffix = "_research"
	}

	for _, kernel := range run.Kernels() {
		pts := run.KernelSweep(kernel)
		knees := knee.Analyze(kernel, pts, hierarchy, opts)

		po := sweepplot.Options{
			CPU:             run.Metadata.Platform.CPUModel,
			Knees:           knees,
			Hierarchy:       hierarchy,
			Multiplier:      knee.Multiplier(kernel, nil),
			IncludeL1Theory: *flagTheoryL1,
		}
		pl, err := sweepplot.Bandwidth(kernel, pts, po)
		if err != nil {
			log.Fatal(err)
		}
		path := filepath.Join(*flagOutDir, fmt.Sprintf("bandwidth_vs_size_%s%s.png", kernel, suffix))
		if err := sweepplot.SavePNG(pl, path, 23, 13, *flagDPI); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote %s\n", path)

		if !*flagLatency {
			continue
		}
		lp, err := sweepplot.Latency(kernel, pts, sweepplot.Options{CPU: po.CPU})
		if err != nil {
			// Bandwidth-only kernels simply have no latency chart.
			continue
		}
		path = filepath.Join(*flagOutDir, fmt.Sprintf("latency_vs_size_%s.png", kernel))
		if err := sweepplot.SavePNG(lp, path, 20, 12, *flagDPI); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote %s\n", path)
	}
}

func parseSizeFlag(name, val string) int64 {
	if val == "" {
		return 0
	}
	n, err := sweepunit.ParseBytes(val)
	if err != nil {
		log.Fatalf("-%s: %v", name, err)
	}
	return n
}

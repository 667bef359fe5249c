// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Sweepstat aggregates repeated memsweep runs and reports bandwidth
// drops.
//
// Usage:
//
//	sweepstat [options] run1.json [run2.json ...]
//
// Each input file is one run document written by the memsweep
// executable. Sweepstat groups the sweep points of all inputs by
// (kernel, working-set size), reduces each group to robust cross-run
// statistics, and prints the aggregate as an aligned table. It then
// scans each kernel's bandwidth curve for significant drops ("knees")
// and classifies them against the machine's cache hierarchy.
//
// With -mode clean (the default), at most one knee is reported per
// cache region, and a cache-boundary label is claimed only when the
// knee also lies near the corresponding reported cache size; anything
// else is reported as a generic significant drop. With -mode research
// every retained drop is reported with its magnitude and an
// informative near-theory tag.
//
// Cache sizes come from the run's platform metadata; -l1, -l2, and
// -llc supply fallbacks for machines whose probe reports nothing, in
// the usual size syntax ("48KiB", "5MiB").
//
// The aggregated document can be written back out with -out-json, and
// the flat per-point table with -out-csv. -csv and -html select the
// corresponding stdout format instead of the text table.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/memsweep/sweepstat/knee"
	"github.com/memsweep/sweepstat/sweepfmt"
	"github.com/memsweep/sweepstat/sweepstat"
	"github.com/memsweep/sweepstat/sweepunit"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: sweepstat [options] run1.json [run2.json ...]\n")
	fmt.Fprintf(os.Stderr, "options:\n")
	flag.PrintDefaults()
	os.Exit(2)
}

var (
	flagOutJSON = flag.String("out-json", "", "write the aggregated document to `file`")
	flagOutCSV  = flag.String("out-csv", "", "write the per-point table to `file` as CSV")
	flagCSV     = flag.Bool("csv", false, "print the table in CSV form")
	flagHTML    = flag.Bool("html", false, "print the report as HTML")
	flagNoKnees = flag.Bool("no-knees", false, "suppress the drop report")

	flagMode     = flag.String("mode", "clean", "drop report `mode`: clean or research")
	flagMaxKnees = flag.Int("max-knees", 5, "report at most `n` drops per kernel")
	flagMinRatio = flag.Float64("min-drop-ratio", 0.75, "count a drop only if post/pre bandwidth is below `ratio`")
	flagPeakFrac = flag.Float64("min-drop-peak-frac", 0.10, "require a drop of at least `frac` of peak bandwidth")
	flagMinAbs   = flag.Float64("min-drop-abs", 2.0, "require a drop of at least `gbs` GB/s")
	flagSepFac   = flag.Float64("min-separation-factor", 2.0, "keep drops at least `factor` apart on the log size axis")
	flagTol      = flag.Float64("theory-match-tol", 0.15, "match a cache size within `frac` relative distance")
	flagPreFrac  = flag.Float64("min-pre-drop-peak-frac", 0.30, "ignore drops starting below `frac` of peak bandwidth")

	flagL1  = flag.String("l1", "", "fallback L1 data cache `size` (e.g. 48KiB)")
	flagL2  = flag.String("l2", "", "fallback L2 cache `size`")
	flagLLC = flag.String("llc", "", "fallback last-level cache `size`")
)

func main() {
	log.SetPrefix("sweepstat: ")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
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

	files := sweepfmt.Files{Paths: flag.Args(), AllowStdin: true}
	runs, err := files.ReadAll()
	if err != nil {
		log.Fatal(err)
	}

	res, err := sweepstat.Aggregate(runs)
	if err != nil {
		log.Fatal(err)
	}

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
	hierarchy := knee.HierarchyOf(res.Run.Metadata.Platform, fallback)

	knees := make(map[string][]knee.Classification)
	for _, kernel := range res.Run.Kernels() {
		knees[kernel] = knee.Analyze(kernel, res.Run.KernelSweep(kernel), hierarchy, opts)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	switch {
	case *flagHTML:
		out.WriteString(htmlHeader)
		if err := sweepstat.FormatHTML(out, res, knees); err != nil {
			log.Fatal(err)
		}
		out.WriteString(htmlFooter)
	case *flagCSV:
		if err := sweepstat.FormatCSV(out, res); err != nil {
			log.Fatal(err)
		}
	default:
		if err := sweepstat.FormatText(out, res); err != nil {
			log.Fatal(err)
		}
		if !*flagNoKnees {
			fmt.Fprintln(out)
			for _, kernel := range res.Run.Kernels() {
				sweepstat.FormatKnees(out, kernel, knees[kernel])
			}
		}
	}

	if *flagOutJSON != "" {
		if err := sweepfmt.WriteRunFile(*flagOutJSON, res.Run); err != nil {
			log.Fatal(err)
		}
	}
	if *flagOutCSV != "" {
		f, err := os.Create(*flagOutCSV)
		if err != nil {
			log.Fatal(err)
		}
		if err := sweepstat.FormatCSV(f, res); err != nil {
			log.Fatal(err)
		}
		if err := f.Close(); err != nil {
			log.Fatal(err)
		}
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

var htmlHeader = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Sweep Aggregation Report</title>
<style>
.sweepstat { border-collapse: collapse; }
.sweepstat th, .sweepstat td { text-align: right; padding: 0em 0.6em; }
.sweepstat th:first-child, .sweepstat td:first-child { text-align: left; }
.sweepstat tr th { border-top: 1px solid #666; border-bottom: 1px solid #ccc; }
</style>
</head>
<body>
`
var htmlFooter = `</body>
</html>
`

// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Sweepsave files run documents into a local archive.
//
// Usage:
//
//	sweepsave [-db file] run1.json [run2.json ...]
//	sweepsave [-db file] -list
//	sweepsave [-db file] -extract dir [-kernel name]
//
// The archive is a SQLite database (default memsweep.db) holding raw
// run JSON, so a machine's benchmark history survives the results
// directory being cleaned and can be re-aggregated later:
//
//	sweepsave -extract /tmp/runs -kernel triad
//	sweepstat /tmp/runs/*.json
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/memsweep/sweepstat/store"
	"github.com/memsweep/sweepstat/sweepfmt"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: sweepsave [options] [run1.json ...]\n")
	fmt.Fprintf(os.Stderr, "options:\n")
	flag.PrintDefaults()
	os.Exit(2)
}

var (
	flagDB      = flag.String("db", "memsweep.db", "archive database `file`")
	flagList    = flag.Bool("list", false, "list archive contents by kernel")
	flagExtract = flag.String("extract", "", "write archived runs into `dir`")
	flagKernel  = flag.String("kernel", "", "limit -extract to one kernel")
)

func main() {
	log.SetPrefix("sweepsave: ")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	s, err := store.Open(*flagDB)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	switch {
	case *flagList:
		sums, err := s.Summaries(ctx)
		if err != nil {
			log.Fatal(err)
		}
		if len(sums) == 0 {
			fmt.Println("archive is empty")
			return
		}
		for _, sum := range sums {
			fmt.Printf("%s\truns=%d\tlatest=%s\n", sum.Kernel, sum.Count, sum.Latest)
		}

	case *flagExtract != "":
		runs, err := s.Runs(ctx, *flagKernel)
		if err != nil {
			log.Fatal(err)
		}
		if err := os.MkdirAll(*flagExtract, 0777); err != nil {
			log.Fatal(err)
		}
		for _, run := range runs {
			// Path has the form "archive:<id>"; keep the id in
			// the file name so extractions are stable.
			name := fmt.Sprintf("run_%s.json", strings.TrimPrefix(run.Path(), "archive:"))
			path := filepath.Join(*flagExtract, name)
			if err := sweepfmt.WriteRunFile(path, run); err != nil {
				log.Fatal(err)
			}
			fmt.Printf("wrote %s\n", path)
		}

	default:
		if flag.NArg() < 1 {
			flag.Usage()
		}
		files := sweepfmt.Files{Paths: flag.Args()}
		for files.Scan() {
			run := files.Run()
			id, err := s.SaveRun(ctx, run)
			if err != nil {
				log.Fatal(err)
			}
			fmt.Printf("archived %s as run %d\n", run.Path(), id)
		}
		if err := files.Err(); err != nil {
			log.Fatal(err)
		}
	}
}

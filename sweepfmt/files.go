// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sweepfmt

import "os"

// A Files reads run documents from a sequence of input files.
//
// This is the standard way for commands to consume their file-list
// arguments. The path "-" is treated as stdin when AllowStdin is set.
type Files struct {
	// Paths is the list of file names to read in.
	Paths []string

	// AllowStdin indicates that the path "-" should be treated as
	// stdin and, if the file list is empty, that the list should be
	// treated as consisting of stdin.
	//
	// This is generally the desired behavior when the file list
	// comes from command-line flags.
	AllowStdin bool

	// next indexes the remaining paths, or -1 if this Files has
	// not started yet.
	next int

	run *Run
	err error
}

// Scan advances f to the next run document in the file sequence and
// reports whether one was read. The caller should use the Run method
// to get the document. If Scan reaches the end of the sequence or an
// error occurs, it returns false and the caller should check Err.
func (f *Files) Scan() bool {
	if f.err != nil {
		return false
	}
	paths := f.Paths
	if f.AllowStdin && len(paths) == 0 {
		paths = []string{"-"}
	}
	if f.next >= len(paths) {
		return false
	}
	path := paths[f.next]
	f.next++
	if f.AllowStdin && path == "-" {
		f.run, f.err = ReadRun(os.Stdin, "<stdin>")
	} else {
		f.run, f.err = ReadRunFile(path)
	}
	return f.err == nil
}

// Run returns the run document read by the latest call to Scan.
func (f *Files) Run() *Run { return f.run }

// Err returns the first error encountered by Scan.
func (f *Files) Err() error { return f.err }

// ReadAll reads every document in the sequence and returns them in
// order.
func (f *Files) ReadAll() ([]*Run, error) {
	var runs []*Run
	for f.Scan() {
		runs = append(runs, f.Run())
	}
	return runs, f.Err()
}

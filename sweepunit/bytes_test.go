// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sweepunit

import "testing"

func TestParseBytes(t *testing.T) {
	test := func(in string, want int64) {
		t.Helper()
		got, err := ParseBytes(in)
		if err != nil {
			t.Errorf("ParseBytes(%q): unexpected error %v", in, err)
			return
		}
		if got != want {
			t.Errorf("ParseBytes(%q) = %d, want %d", in, got, want)
		}
	}
	testErr := func(in string) {
		t.Helper()
		got, err := ParseBytes(in)
		if err == nil {
			t.Errorf("ParseBytes(%q) = %d, want error", in, got)
		}
	}

	test("1048576", 1048576)
	test("64MB", 64e6)
	test("64MiB", 64<<20)
	test("512KiB", 512<<10)
	test("512KB", 512e3)
	test("1GiB", 1<<30)
	test("1GB", 1e9)
	test("48kib", 48<<10) // units are case-insensitive
	test("1.5KiB", 1536)
	test("100B", 100)
	test("  64MB  ", 64e6)

	testErr("")
	testErr("MB")
	testErr("64XB")
	testErr("-1KiB")
	testErr("12 34")
	testErr("99999999999GiB") // overflows int64
}

func TestFormatBytes(t *testing.T) {
	test := func(in int64, want string) {
		t.Helper()
		if got := FormatBytes(in); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", in, got, want)
		}
	}

	test(0, "0 B")
	test(100, "100 B")
	test(1024, "1.0 KiB")
	test(48<<10, "48 KiB")
	test(1536, "1.5 KiB")
	test(5<<20, "5.0 MiB")
	test(5242880*3, "15 MiB")
	test(1<<30, "1.0 GiB")
	test(3<<40, "3072 GiB")
}

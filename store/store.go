// Copyright 2025 The Memsweep Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store archives run documents in a local SQLite database.
//
// The archive keeps raw run JSON verbatim so archived runs can be
// re-aggregated later with different settings; the indexed columns
// exist only for lookup. It is a collaborator of the analysis
// pipeline, not part of it: the aggregation and knee transforms never
// read or write the archive themselves.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/memsweep/sweepstat/sweepfmt"
)

// A Store is a handle to a run archive. It is safe for concurrent use
// by multiple goroutines.
type Store struct {
	sql *sql.DB
	// prepared statements
	insertRun *sql.Stmt
}

const createStmts = `
CREATE TABLE IF NOT EXISTS Runs (
	RunID INTEGER PRIMARY KEY AUTOINCREMENT,
	Kernel TEXT,
	CPUModel TEXT,
	SavedAt TEXT,
	Content BLOB
);
CREATE INDEX IF NOT EXISTS RunsKernel ON Runs(Kernel);
`

// Open opens the archive at dataSourceName, creating the schema if
// needed. dataSourceName is a SQLite DSN: a file path, or ":memory:"
// for tests.
func Open(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, err
	}
	s := &Store{sql: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	s.insertRun, err = db.Prepare("INSERT INTO Runs(Kernel, CPUModel, SavedAt, Content) VALUES (?, ?, ?, ?)")
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) createTables() error {
	for _, q := range strings.Split(createStmts, ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := s.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// SaveRun archives one run document and returns its archive ID.
func (s *Store) SaveRun(ctx context.Context, run *sweepfmt.Run) (int64, error) {
	var buf bytes.Buffer
	if err := sweepfmt.WriteRun(&buf, run); err != nil {
		return 0, err
	}
	res, err := s.insertRun.ExecContext(ctx,
		run.Config.Kernel,
		run.Metadata.Platform.CPUModel,
		time.Now().UTC().Format(time.RFC3339),
		buf.Bytes(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Runs returns archived runs for one kernel, oldest first. An empty
// kernel returns every archived run.
func (s *Store) Runs(ctx context.Context, kernel string) ([]*sweepfmt.Run, error) {
	q := "SELECT RunID, Content FROM Runs ORDER BY RunID"
	args := []interface{}{}
	if kernel != "" {
		q = "SELECT RunID, Content FROM Runs WHERE Kernel = ? ORDER BY RunID"
		args = append(args, kernel)
	}
	rows, err := s.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*sweepfmt.Run
	for rows.Next() {
		var id int64
		var content []byte
		if err := rows.Scan(&id, &content); err != nil {
			return nil, err
		}
		run, err := sweepfmt.ReadRun(bytes.NewReader(content), fmt.Sprintf("archive:%d", id))
		if err != nil {
			return nil, fmt.Errorf("archived run %d: %v", id, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// A Summary describes one kernel's presence in the archive.
type Summary struct {
	Kernel string
	Count  int
	Latest string // SavedAt of the newest run
}

// Summaries lists the archive contents grouped by kernel.
func (s *Store) Summaries(ctx context.Context) ([]Summary, error) {
	rows, err := s.sql.QueryContext(ctx,
		"SELECT Kernel, COUNT(*), MAX(SavedAt) FROM Runs GROUP BY Kernel ORDER BY Kernel")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sums []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.Kernel, &sum.Count, &sum.Latest); err != nil {
			return nil, err
		}
		sums = append(sums, sum)
	}
	return sums, rows.Err()
}

// Close closes the archive, releasing any open resources.
func (s *Store) Close() error {
	if err := s.insertRun.Close(); err != nil {
		return err
	}
	return s.sql.Close()
}

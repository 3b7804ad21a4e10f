// Copyright (c) 2026 Nijidex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// the export engine's error model.
//
// Any query failure is fatal to an export run (nothing is published), so the
// mapping is deliberately small: classify "no rows" distinctly and annotate
// everything else with the failed action for the run log.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is a standard error returned when a queried row doesn't exist.
var ErrNotFound = errors.New("dberr: not found")

// Wrap inspects a database error and annotates it with the failed action.
// SQL text and connection details stay out of the message; the wrapped cause
// carries them for the structured log.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", action, ErrNotFound)
	}

	return fmt.Errorf("%s: %w", action, err)
}

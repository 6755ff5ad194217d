// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package pattern turns an ordered pictograph sequence into a spatial grid.
//
// The generator is a pure function: identical input always yields a
// structurally identical grid, with no I/O and no shared state. That
// determinism is what makes grids safe to key bitmap caches on and easy
// to assert against in tests.
package pattern

import "fmt"

// ValidationError reports a sequence that failed symbol validation.
//
// Index identifies the offending symbol's position in the input sequence,
// or -1 when the failure concerns the sequence as a whole (for example,
// exceeding the length bound).
type ValidationError struct {
	// Index of the offending symbol, or -1 for sequence-level failures.
	Index int

	// Err is the underlying validation failure.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid sequence: %v", e.Err)
	}
	return fmt.Sprintf("invalid symbol at index %d: %v", e.Index, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// errTooLong describes a sequence exceeding the configured length bound.
func errTooLong(got, max int) error {
	return fmt.Errorf("sequence has %d symbols, maximum is %d", got, max)
}

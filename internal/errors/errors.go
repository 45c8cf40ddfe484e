// Package errors provides error handling for union-generator.
//
// It re-exports github.com/cockroachdb/errors so host code gets stack traces,
// wrapping with context and user-facing hints from a single import.
//
//	if err := loadPackages(); err != nil {
//	    return errors.Wrap(err, "failed to load packages")
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New         = crdb.New
	Newf        = crdb.Newf
	Wrap        = crdb.Wrap
	Wrapf       = crdb.Wrapf
	WithStack   = crdb.WithStack
	WithMessage = crdb.WithMessage
)

// User-facing messages and details
var (
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	WithDetail   = crdb.WithDetail
	WithDetailf  = crdb.WithDetailf
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Error inspection
var (
	Is        = crdb.Is
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// AssertionFailedf reports a broken internal invariant.
var AssertionFailedf = crdb.AssertionFailedf

var (
	// ErrOutOfDate is returned by check when generated files differ from disk.
	ErrOutOfDate = New("generated files are out of date")

	// ErrNoPackages indicates the patterns matched no Go packages.
	ErrNoPackages = New("no packages matched")
)

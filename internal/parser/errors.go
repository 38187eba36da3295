// Package parser provides a recursive descent parser for the C subset
// with integrated type resolution.
package parser

import (
	"github.com/kolkov/ucc/internal/diag"
	"github.com/kolkov/ucc/internal/token"
)

// Common error messages as constants for consistency.
const (
	errExpectedExpr     = "expected an expression"
	errExpectedIdent    = "expected an identifier"
	errExpectedNumber   = "expected a number"
	errExpectedType     = "expected 'int' or 'char'"
	errUndefinedVar     = "undefined variable"
	errInvalidOperands  = "invalid operands"
	errInvalidDeref     = "invalid pointer dereference"
	errNotLValue        = "not an lvalue"
	errArrayAsScalar    = "array used as a scalar value"
	errTooManyArgs      = "too many arguments"
	errVoidStmtExpr     = "statement expression returning void is not supported"
	errEmptyStmtExpr    = "empty statement expression"
	errRedefinition     = "redefinition of '%s'"
	errZeroArrayLen     = "array length must be positive"
	errArrayTooLarge    = "array too large"
	errFrameTooLarge    = "stack frame of '%s' too large"
)

// MaxArgs is the number of integer argument registers in the calling
// convention; calls and definitions may not exceed it.
const MaxArgs = 6

// abort stops parsing with a diagnostic. Parse recovers it.
func abort(kind diag.Kind, pos token.Position, format string, args ...any) {
	panic(diag.Errorf(kind, pos, format, args...))
}

// recoverError turns an abort into an error return, re-panicking on
// anything that is not a diagnostic.
func recoverError(err *error) {
	if r := recover(); r != nil {
		if de, ok := r.(*diag.Error); ok {
			*err = de
			return
		}
		panic(r)
	}
}

// Package apperr holds the sentinel errors shared across nnote packages.
// Callers wrap them with context and match with errors.Is.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidExtension reports a file extension that cannot name a
	// note file: it must start with a dot and contain no separators.
	ErrInvalidExtension = errors.New("invalid extension")

	// ErrMalformedIdentity reports an identifier string that is not
	// HEAD-TAIL-NONCE hex, or whose fields do not name a real instant.
	ErrMalformedIdentity = errors.New("malformed identity")
	// ErrInvalidFilterSyntax reports a bad key[=value] filter, including a
	// value attached to an extension filter.
	ErrInvalidFilterSyntax = errors.New("invalid filter syntax")
	ErrInvalidRangeSyntax  = errors.New("invalid range syntax")
	ErrInvalidDateSyntax   = errors.New("invalid date syntax")
	// ErrCorruptEntry reports a leaf filename that looks like a note but
	// does not decode. It is raised mid-walk and never aborts it.
	ErrCorruptEntry = errors.New("corrupt entry")
)

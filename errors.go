// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dusk

import (
	"errors"
	"fmt"
)

// Precondition violations. Operations panic with an error wrapping one of
// these; recover and test with errors.Is.
var (
	// ErrProcMissing is raised when a native entry point is not provided by
	// the installed proc table.
	ErrProcMissing = errors.New("dusk: native entry point missing")

	// ErrNullHandle is raised when a native create call returns a null handle.
	ErrNullHandle = errors.New("dusk: native call returned a null handle")

	// ErrReleased is raised when a handle is used after Release.
	ErrReleased = errors.New("dusk: handle used after release")

	// ErrEncoderLocked is raised when an encoder is used while one of its
	// passes is still open.
	ErrEncoderLocked = errors.New("dusk: encoder is locked (pass in progress)")

	// ErrEncoderFinished is raised when an encoder is used after Finish.
	ErrEncoderFinished = errors.New("dusk: encoder is finished")

	// ErrPassEnded is raised when a pass encoder is used after End.
	ErrPassEnded = errors.New("dusk: pass already ended")

	// ErrAdapterNotFound is raised when no adapter matches a request.
	ErrAdapterNotFound = errors.New("dusk: adapter not found")

	// ErrBackendMismatch is raised when backend-specific parameters are
	// used with a device of another backend.
	ErrBackendMismatch = errors.New("dusk: backend mismatch")
)

// Marshaling errors, returned before any native call is made.
var (
	// ErrOverflow reports a count or offset that does not fit the native
	// integer type.
	ErrOverflow = errors.New("dusk: value overflows native integer")

	// ErrConflictingAccess reports a storage texture binding marked both
	// read-only and write-only.
	ErrConflictingAccess = errors.New("dusk: storage texture is both read-only and write-only")

	// ErrShaderSource reports shader code that cannot be passed to the
	// native library.
	ErrShaderSource = errors.New("dusk: invalid shader source")

	// ErrUnsupportedExtension reports a required extension the adapter does
	// not offer.
	ErrUnsupportedExtension = errors.New("dusk: extension not supported by adapter")
)

// ErrMapFailed is returned by Buffer.MapRead when the native mapping does
// not succeed.
var ErrMapFailed = errors.New("dusk: buffer mapping failed")

// precondition panics with err wrapped in a message naming the operation.
func precondition(err error, op string) {
	panic(fmt.Errorf("%s: %w", op, err))
}

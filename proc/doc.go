// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package proc defines the native contract of dusk: opaque handle types,
// C-shaped descriptor structs and the Table of entry points an
// implementation provides.
//
// Nothing in this package owns GPU objects. Ownership, reference counting
// and device locking live in package dusk; implementations of the Table
// live under backend/.
package proc

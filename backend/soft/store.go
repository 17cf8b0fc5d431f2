// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package soft

import "github.com/gogpu/dusk/internal/handlemap"

// store maps handle values to software objects.
type store = handlemap.Map

func newStore() *store { return handlemap.New("soft") }

// lookup returns the object behind h as a T.
func lookup[T any](s *store, h uintptr) T { return handlemap.Get[T](s, h) }

// lookupOpt is lookup for optional handles; zero yields the zero T.
func lookupOpt[T any](s *store, h uintptr) T { return handlemap.GetOpt[T](s, h) }

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package proctest wraps a proc.Table to observe how callers drive it.
package proctest

import (
	"reflect"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gogpu/dusk/proc"
)

// Recorder counts calls per entry point and tracks how many device-scoped
// calls were in flight at once.
type Recorder struct {
	calls map[string]*atomic.Int64

	inFlight    atomic.Int64
	maxInFlight atomic.Int64
	delay       atomic.Int64
}

// Wrap returns a copy of t whose entries report to a new Recorder.
func Wrap(t *proc.Table) (*proc.Table, *Recorder) {
	r := &Recorder{calls: make(map[string]*atomic.Int64)}
	out := *t
	v := reflect.ValueOf(&out).Elem()
	typ := v.Type()
	for i := range typ.NumField() {
		f := typ.Field(i)
		fv := v.Field(i)
		if f.Type.Kind() != reflect.Func || f.Name == "SetLogger" || fv.IsNil() {
			continue
		}
		counter := new(atomic.Int64)
		r.calls[f.Name] = counter
		base := reflect.ValueOf(fv.Interface())
		fv.Set(r.wrap(base, counter, deviceScoped(f.Name)))
	}
	return &out, r
}

// deviceScoped reports whether entry name runs against device state.
func deviceScoped(name string) bool {
	for _, p := range []string{"CreateInstance", "Instance", "Surface"} {
		if strings.HasPrefix(name, p) {
			return false
		}
	}
	return true
}

func (r *Recorder) wrap(fn reflect.Value, counter *atomic.Int64, tracked bool) reflect.Value {
	return reflect.MakeFunc(fn.Type(), func(args []reflect.Value) []reflect.Value {
		counter.Add(1)
		if !tracked {
			return fn.Call(args)
		}
		n := r.inFlight.Add(1)
		defer r.inFlight.Add(-1)
		for {
			peak := r.maxInFlight.Load()
			if n <= peak || r.maxInFlight.CompareAndSwap(peak, n) {
				break
			}
		}
		if d := time.Duration(r.delay.Load()); d > 0 {
			time.Sleep(d)
		}
		return fn.Call(args)
	})
}

// Calls returns how many times entry name was called.
func (r *Recorder) Calls(name string) int64 {
	if c, ok := r.calls[name]; ok {
		return c.Load()
	}
	return 0
}

// MaxInFlight returns the largest number of device-scoped calls observed
// running at the same time.
func (r *Recorder) MaxInFlight() int64 { return r.maxInFlight.Load() }

// SetDelay makes every device-scoped call sleep for d before running,
// widening the window in which overlapping calls would be seen.
func (r *Recorder) SetDelay(d time.Duration) { r.delay.Store(int64(d)) }

// Reset zeroes all counters.
func (r *Recorder) Reset() {
	for _, c := range r.calls {
		c.Store(0)
	}
	r.maxInFlight.Store(0)
}

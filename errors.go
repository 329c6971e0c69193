// Copyright 2026 reactorgo.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reactor

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Construction errors (spec §7.1).
var (
	// ErrNotObject is returned by NewReactor when the source is not a
	// non-nil string-keyed map, non-nil slice, or non-nil pointer-to-struct.
	ErrNotObject = errors.New("reactor: source is not object-like")
	// ErrNotCallable is returned by NewObserver when the body is nil.
	ErrNotCallable = errors.New("reactor: observer body is not callable")
)

// ErrNotWritable is a trap-propagated error (spec §7.2): returned by Set
// or Delete when the underlying operation cannot be performed, e.g.
// an unexported struct field, an out-of-range slice index, or the
// synthetic read-only "length" key.
type ErrNotWritable struct {
	Key    string
	Reason string
}

func (e *ErrNotWritable) Error() string {
	return fmt.Sprintf("reactor: key %q is not writable: %s", e.Key, e.Reason)
}

// CompositeError aggregates the errors raised by more than one observer
// drained during a single pending-queue cycle (spec §7.3). Causes that are
// themselves CompositeErrors are flattened one level, so a chain of writes
// across several failing observers always surfaces a single flat Cause
// list rather than a tree.
type CompositeError struct {
	merr *multierror.Error
}

// newCompositeError builds a CompositeError from the errors collected
// during one drain cycle. An element that is itself a *CompositeError is
// flattened one level by appending its underlying errors in its place,
// rather than nesting it. Returns nil if errs is empty, and the bare error
// (not wrapped) if it holds exactly one.
func newCompositeError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var acc *multierror.Error
	for _, e := range errs {
		if ce, ok := e.(*CompositeError); ok {
			acc = multierror.Append(acc, ce.merr.Errors...)
			continue
		}
		acc = multierror.Append(acc, e)
	}
	return &CompositeError{merr: acc}
}

// Cause returns the ordered, flattened list of underlying errors.
func (e *CompositeError) Cause() []error {
	out := make([]error, len(e.merr.Errors))
	copy(out, e.merr.Errors)
	return out
}

// Unwrap exposes the flattened cause list for errors.Is/errors.As.
func (e *CompositeError) Unwrap() []error {
	return e.Cause()
}

func (e *CompositeError) Error() string {
	return e.merr.Error()
}

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

// batchDepth is the process-wide batch-nesting counter (spec §4.5). Like
// the observer stack and pending queue, it is unguarded: single-threaded
// cooperative use only.
var batchDepth int

// Batch defers notification drains until f (and any Batch nested inside
// it) returns. Writes performed inside f are applied immediately — a read
// inside f sees them — but the observers they would otherwise trigger
// are coalesced and run at most once, after the outermost Batch unwinds.
// Batch returns f's result; the depth counter is restored even if f
// returns an error, via defer, per spec §4.5. If the outermost unwind's
// drain itself raises an error, it is merged with f's own error (flattened
// the same way a plain write's drain error is, see errors.go) rather than
// silently dropped — the caller of the outermost Batch is the one whose
// action, in the end, triggered that drain.
func Batch[T any](f func() (T, error)) (val T, err error) {
	batchDepth++
	defer func() {
		batchDepth--
		if batchDepth == 0 && !pending.draining {
			pending.draining = true
			derr := pending.drainAll()
			pending.draining = false
			if derr != nil {
				err = mergeErrors(err, derr)
			}
		}
	}()
	val, err = f()
	return
}

// mergeErrors combines two possibly-nil errors into one, flattening any
// CompositeError among them one level (see newCompositeError).
func mergeErrors(a, b error) error {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		return newCompositeError([]error{a, b})
	}
}

// BatchFunc is the zero-value convenience form of Batch.
func BatchFunc(f func()) {
	batchDepth++
	defer func() {
		batchDepth--
		if batchDepth == 0 && !pending.draining {
			pending.draining = true
			pending.drainAll()
			pending.draining = false
		}
	}()
	f()
}

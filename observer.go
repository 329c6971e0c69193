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
	"fmt"

	"github.com/samber/lo"
)

// ObserverState is the lifecycle state of an Observer (spec §3).
type ObserverState uint8

const (
	// StateStopped is the state of a freshly-constructed Observer, and of
	// one that has been explicitly Stop()ed. A stopped observer owns no
	// subscriptions (spec §3 invariant).
	StateStopped ObserverState = iota
	// StateIdle is the state after a successful run: the observer owns
	// whatever subscriptions its last run established, and will be
	// re-run when any of them changes.
	StateIdle
	// StateRunning is the state for the duration of one run. The observer
	// is removed from every cell on entry and re-subscribed, via fresh
	// Get/Has/Keys calls, over the course of the run; a write made while
	// it is still running never enqueues it (see enqueue in queue.go).
	StateRunning
)

// ObserverFunc is the body of an Observer. It receives whatever arguments
// the most recent invocation passed and returns a value and/or an error.
type ObserverFunc func(args ...any) (any, error)

// Observer is a callable record whose body is re-run whenever any Reactor
// cell it last read changes (spec §3, §4.4). The zero value is not usable;
// construct one with NewObserver.
type Observer struct {
	body     ObserverFunc
	state    ObserverState
	value    any
	deps     []depKey
	lastArgs []any
}

// runner is the unexported interface an Observer satisfies to answer
// "Observers must also identify as callable" (spec §6) — there is no Go
// analogue of a JS function-as-object, so this module renders that
// requirement as: any *Observer can always be invoked via Run.
type runner interface {
	Run(args ...any) (any, error)
}

var _ runner = (*Observer)(nil)

// NewObserver constructs an Observer wrapping f. f must not be nil.
func NewObserver(f ObserverFunc) (*Observer, error) {
	if f == nil {
		return nil, ErrNotCallable
	}
	return &Observer{body: f, state: StateStopped}, nil
}

// Run invokes the observer's body with the given arguments, starting
// dependency tracking for the duration of the call, exactly like every
// other entry point into the run procedure (Start, or a queue-triggered
// re-run) — spec §6's "invoke observer(...args)": captures this/args
// (Go has no implicit `this`; the body closes over whatever receiver it
// needs, see SPEC_FULL.md §4), runs f, and returns f's return value.
func (o *Observer) Run(args ...any) (any, error) {
	return o.run(args...)
}

// Start ensures the observer is active, running it once with the most
// recently captured arguments if it was stopped. It is idempotent: calling
// Start on an already idle or running observer does nothing (spec §4.4,
// scenario 10 of spec §8).
func (o *Observer) Start() error {
	if o.state != StateStopped {
		return nil
	}
	_, err := o.run(o.lastArgs...)
	return err
}

// Stop deactivates the observer and clears its subscriptions. Idempotent.
func (o *Observer) Stop() {
	if o.state == StateStopped {
		return
	}
	o.state = StateStopped
	unsubscribeAll(o)
}

// Value returns the last value returned by a successful run, or nil if
// the observer has never successfully run.
func (o *Observer) Value() any {
	return o.value
}

// State returns the observer's current lifecycle state.
func (o *Observer) State() ObserverState {
	return o.state
}

// Execute returns the observer's currently-bound body.
func (o *Observer) Execute() ObserverFunc {
	return o.body
}

// SetExecute replaces the observer's body. Per spec §4.4, this is
// equivalent to atomically stopping the observer, replacing its body, and
// starting it again — the new body's dependencies populate immediately,
// and the prior subscriptions are discarded.
func (o *Observer) SetExecute(f ObserverFunc) error {
	if f == nil {
		return ErrNotCallable
	}
	o.Stop()
	o.body = f
	return o.Start()
}

// run is the six-step run procedure of spec §4.4, shared by Run, Start,
// and the pending queue's triggered re-runs (queue.go). Subscriptions are
// always replaced wholesale (unsubscribeAll happens unconditionally,
// before the body runs, not only on error). If the body errors or
// panics, the prior state is restored (not forced to idle) and the
// subscriptions stay cleared — an observer that failed has no stale
// dependencies lingering from before the failed attempt.
func (o *Observer) run(args ...any) (any, error) {
	prevState := o.state
	o.state = StateRunning
	unsubscribeAll(o)
	o.lastArgs = args

	pushObserver(o)
	val, err := o.safeInvoke(args...)
	popObserver()

	if err != nil {
		o.state = prevState
		unsubscribeAll(o)
		return nil, err
	}
	o.state = StateIdle
	o.value = val
	return val, nil
}

// safeInvoke calls the observer's body, converting a panic into an error
// rather than letting it unwind through the core's bookkeeping (pending
// queue drains, batch scopes). Grounded on the teacher's own
// tryNext/tryError pattern: recover via lo.TryCatchWithErrorValue and
// report the panic through the diagnostics hook (diagnostics.go).
func (o *Observer) safeInvoke(args ...any) (val any, err error) {
	lo.TryCatchWithErrorValue(
		func() error {
			v, e := o.body(args...)
			val, err = v, e
			return nil
		},
		func(r any) {
			perr := fmt.Errorf("reactor: observer panicked: %v", r)
			notifyObserverPanic(o, perr)
			err = perr
		},
	)
	return val, err
}

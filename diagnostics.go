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
	"log"
	"sync/atomic"
)

var (
	// onObserverPanic stores the current handler invoked whenever an
	// observer body panics during a run. Accessed via atomic.Value so
	// concurrent readers (there should be none, per the single-threaded
	// contract of the core itself, but the hook may be read from an
	// unrelated goroutine logging elsewhere) never race with a writer.
	onObserverPanic atomic.Value // func(*Observer, error)

	// onDrainError stores the handler invoked once per drain cycle when
	// that cycle produced any error, in addition to (not instead of) the
	// error being returned to the caller that triggered the drain.
	onDrainError atomic.Value // func(error)
)

func init() {
	onObserverPanic.Store(IgnoreOnObserverPanic)
	onDrainError.Store(IgnoreOnDrainError)
}

// SetOnObserverPanic sets the handler invoked when an observer body
// panics. Passing nil restores the default (silent).
func SetOnObserverPanic(fn func(o *Observer, err error)) {
	if fn == nil {
		fn = IgnoreOnObserverPanic
	}
	onObserverPanic.Store(fn)
}

// SetOnDrainError sets the handler invoked once per drain cycle that
// produced at least one error. Passing nil restores the default (silent).
func SetOnDrainError(fn func(err error)) {
	if fn == nil {
		fn = IgnoreOnDrainError
	}
	onDrainError.Store(fn)
}

func notifyObserverPanic(o *Observer, err error) {
	onObserverPanic.Load().(func(*Observer, error))(o, err)
}

func notifyDrainError(err error) {
	onDrainError.Load().(func(error))(err)
}

// IgnoreOnObserverPanic is the default, silent observer-panic handler.
func IgnoreOnObserverPanic(o *Observer, err error) {}

// IgnoreOnDrainError is the default, silent drain-error handler.
func IgnoreOnDrainError(err error) {}

// DefaultOnObserverPanic is an opt-in verbose handler, installed with
// SetOnObserverPanic(reactor.DefaultOnObserverPanic).
func DefaultOnObserverPanic(o *Observer, err error) {
	if err != nil {
		log.Printf("reactor: observer panicked: %s", err.Error())
	}
}

// DefaultOnDrainError is an opt-in verbose handler, installed with
// SetOnDrainError(reactor.DefaultOnDrainError).
func DefaultOnDrainError(err error) {
	if err != nil {
		log.Printf("reactor: drain cycle raised an error: %s", err.Error())
	}
}

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

// The current-observer stack and the hide-depth counter are process-wide,
// package-level state (spec §4.2, §5). The core is single-threaded
// cooperative by contract: no mutex guards this state, the same way the
// pending queue and batch depth are left unguarded (queue.go, batch.go).
// Callers driving this library from multiple goroutines concurrently are
// outside its contract, exactly as stated by the specification this
// package implements.
var (
	observerStack []*Observer
	hideDepth     int
)

// pushObserver makes o the observer that Get/Has/Keys attribute reads to.
func pushObserver(o *Observer) {
	observerStack = append(observerStack, o)
}

// popObserver restores the previous top of the observer stack. Nested
// observer runs (an observer body that constructs and runs another
// observer) push and pop correctly because this is a plain stack: the
// inner run's pop always restores the outer observer as the new top.
func popObserver() {
	observerStack = observerStack[:len(observerStack)-1]
}

// currentObserver returns the observer that a read should subscribe to,
// or ok=false if there is none (no-active-observer, per spec §4.2) or
// tracking is currently suppressed by Hide.
func currentObserver() (*Observer, bool) {
	if hideDepth > 0 {
		return nil, false
	}
	if len(observerStack) == 0 {
		return nil, false
	}
	return observerStack[len(observerStack)-1], true
}

func pushHidden() { hideDepth++ }
func popHidden()  { hideDepth-- }

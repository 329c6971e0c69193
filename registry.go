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
	"weak"

	"golang.org/x/exp/slices"
)

// cellKind distinguishes the three kinds of access key that share the
// subscription index (spec §3): a property value, its existence, or the
// enumeration of a source's own keys.
type cellKind uint8

const (
	cellValue cellKind = iota
	cellHas
	cellOwnKeys
)

// cellID is one access key: (kind, key). key is unused for cellOwnKeys.
type cellID struct {
	kind cellKind
	key  string
}

// depKey is an observer's back-pointer to one cell it has subscribed to
// (spec §3: "the observer carries a back-pointer set of all its current
// cells so it can tear them down").
type depKey struct {
	source uintptr
	cell   cellID
}

// cellSubs maps a source identity to its per-cell subscriber lists. Lists
// are ordered slices, not sets, so that delivery order for a shared cell
// is insertion order (spec §9 Open Question: reference behavior is
// insertion order, stable but not a guaranteed contract). Subscribers are
// held by weak.Pointer so a stopped, otherwise-unreferenced observer does
// not keep itself — or transitively the source it was subscribed to —
// reachable (spec §4.3, "weak keys on sources and observers").
//
// Like the rest of the core's process-wide state, this map is deliberately
// unguarded by a mutex: single-threaded cooperative use only (spec §5).
var cellSubs = map[uintptr]map[cellID][]weak.Pointer[Observer]{}

// canon is the canonical source-identity → wrapper map (spec §3: "the core
// stores a canonical bidirectional mapping source ↔ wrapper"). Entries are
// weak so an unreferenced wrapper can be collected; a stale entry is
// pruned lazily, the next time canonicalLookup finds its Value() is nil,
// rather than proactively — proactive pruning via runtime.AddCleanup would
// run its callback on a runtime-managed goroutine, which would touch this
// unguarded map concurrently with whatever goroutine is using the library,
// violating the single-threaded contract above.
var canon = map[uintptr]weak.Pointer[Reactor]{}

func canonicalLookup(source uintptr) *Reactor {
	wp, ok := canon[source]
	if !ok {
		return nil
	}
	if r := wp.Value(); r != nil {
		return r
	}
	delete(canon, source)
	return nil
}

func canonicalStore(source uintptr, r *Reactor) {
	canon[source] = weak.Make(r)
}

// subscribe records that o depends on (source, cell), unless it already
// does. It also appends the edge to o's own back-pointer set.
func subscribe(o *Observer, source uintptr, cell cellID) {
	bucket, ok := cellSubs[source]
	if !ok {
		bucket = map[cellID][]weak.Pointer[Observer]{}
		cellSubs[source] = bucket
	}
	for _, wp := range bucket[cell] {
		if wp.Value() == o {
			return
		}
	}
	bucket[cell] = append(bucket[cell], weak.Make(o))
	o.deps = append(o.deps, depKey{source: source, cell: cell})
}

// collect returns a snapshot of the observers currently subscribed to
// (source, cell), pruning any weak references that have gone dead along
// the way. A snapshot, not a live view, is required because draining it
// may cause one of its own observers to re-run and mutate this very list
// (spec §4.3: "iteration must not alias a concurrently-mutated set").
func collect(source uintptr, cell cellID) []*Observer {
	bucket, ok := cellSubs[source]
	if !ok {
		return nil
	}
	list := bucket[cell]
	live := list[:0]
	out := make([]*Observer, 0, len(list))
	for _, wp := range list {
		if o := wp.Value(); o != nil {
			out = append(out, o)
			live = append(live, wp)
		}
	}
	bucket[cell] = live
	return out
}

// unsubscribeAll tears down every cell o is currently subscribed to,
// using its back-pointer set, and clears that set. Called at the start of
// every observer run (subscriptions are always replaced wholesale, spec
// §3) and on Stop.
func unsubscribeAll(o *Observer) {
	for _, dk := range o.deps {
		bucket, ok := cellSubs[dk.source]
		if !ok {
			continue
		}
		list := bucket[dk.cell]
		kept := list[:0]
		for _, wp := range list {
			if v := wp.Value(); v != nil && v != o {
				kept = append(kept, wp)
			}
		}
		bucket[dk.cell] = kept
	}
	o.deps = o.deps[:0]
}

// subscribeCurrent registers the observer currently running (if any, and
// if tracking isn't suppressed by Hide) against (source, cell).
func subscribeCurrent(source uintptr, cell cellID) {
	o, ok := currentObserver()
	if !ok {
		return
	}
	subscribe(o, source, cell)
}

// sameKeySet reports whether a and b contain the same strings, ignoring
// order — used to decide whether a write changed a source's own-key
// enumeration (spec §4.1: "the own-key set of the source is unchanged...
// order irrelevant").
func sameKeySet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := slices.Clone(a), slices.Clone(b)
	slices.Sort(sa)
	slices.Sort(sb)
	return slices.Equal(sa, sb)
}

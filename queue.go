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

// pendingQueue is the ordered, de-duplicating FIFO of observers awaiting
// re-run (spec §4.4, §4.5, Glossary "Pending queue"). Like the observer
// stack, it is process-wide and deliberately unguarded by a mutex — the
// core is single-threaded cooperative (spec §5).
type pendingQueue struct {
	order    []*Observer
	queued   map[*Observer]bool
	draining bool
}

var pending = &pendingQueue{queued: map[*Observer]bool{}}

// enqueue adds o to the back of the queue unless it is already present.
// De-duplication here is what makes a chain of writes that each schedule
// the same observer converge: it runs once, at its first enqueue
// position (spec §5, Ordering). A running observer is never enqueued, so
// an observer that writes a cell it read earlier in the same run does not
// schedule itself again.
func (q *pendingQueue) enqueue(o *Observer) {
	if q.queued[o] || o.state == StateRunning {
		return
	}
	q.queued[o] = true
	q.order = append(q.order, o)
}

// drainAll runs every idle observer currently queued, including ones
// enqueued by observers run earlier in the same call (re-entrant writes
// during a drain are appended to q.order and picked up by the same loop,
// per spec §4.4's re-entrancy rule — they do not start a nested drain).
// Stopped observers are skipped; running is impossible here because
// enqueue never queues a running observer.
func (q *pendingQueue) drainAll() error {
	var errs []error
	for len(q.order) > 0 {
		o := q.order[0]
		q.order = q.order[1:]
		delete(q.queued, o)

		if o.state != StateIdle {
			continue
		}
		if _, err := o.run(o.lastArgs...); err != nil {
			errs = append(errs, err)
		}
	}
	composite := newCompositeError(errs)
	if composite != nil {
		notifyDrainError(composite)
	}
	return composite
}

// notify enqueues every observer in observers and, unless batching is
// active or a drain is already in progress (re-entrant write), drains the
// queue immediately and returns whatever error that drain produced.
func notify(observers []*Observer) error {
	for _, o := range observers {
		pending.enqueue(o)
	}
	if batchDepth > 0 || pending.draining {
		return nil
	}
	pending.draining = true
	defer func() { pending.draining = false }()
	return pending.drainAll()
}

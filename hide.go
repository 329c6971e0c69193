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

// Hide runs f with dependency tracking suppressed: any Get/Has/Keys call
// made while f runs does not register a subscription, for whichever
// observer (if any) is currently running. Writes made inside f still
// notify their subscribers as usual — the reference behavior (spec §9,
// Open Question) tracks reads only. The suppression is restored even if f
// returns an error, via defer, exactly as nested Hide calls compose via a
// depth counter rather than a boolean.
func Hide[T any](f func() (T, error)) (T, error) {
	pushHidden()
	defer popHidden()
	return f()
}

// HideFunc is the zero-value convenience form of Hide, for callers who
// don't need a return value.
func HideFunc(f func()) {
	pushHidden()
	defer popHidden()
	f()
}

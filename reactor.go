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

// Package reactor implements a transparent reactive object graph: Reactor
// wraps an object-like value and tracks structural access to it at cell
// granularity (one value, one existence check, or one key-enumeration per
// property); Observer is a function automatically re-run whenever any
// cell it read on its last run changes.
//
// Go has no language-level transparent-proxy facility, so Reactor exposes
// an explicit cell-based API — Get/Set/Has/Delete/Keys/Call — instead of
// raw dot-notation access. See SPEC_FULL.md §2 for the full rationale.
package reactor

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// sourceKind is the shape of object-like value a Reactor wraps.
type sourceKind uint8

const (
	kindMap sourceKind = iota
	kindSlice
	kindStruct
)

// Reactor is a transparent wrapper over a source object-like value. Use
// NewReactor to construct one; constructing a Reactor over a source that
// already has one returns the existing wrapper (spec §3 identity
// stability).
type Reactor struct {
	source any
	id     uintptr
	kind   sourceKind
}

// NewReactor constructs a Reactor over source, or returns the already-
// canonical wrapper if one exists for this exact source identity. source
// must be a non-nil string-keyed map, a non-nil slice, or a non-nil
// pointer to a struct; anything else is a construction error (spec §7.1).
func NewReactor(source any) (*Reactor, error) {
	id, kind, err := identify(source)
	if err != nil {
		return nil, err
	}
	if r := canonicalLookup(id); r != nil {
		return r, nil
	}
	r := &Reactor{source: source, id: id, kind: kind}
	canonicalStore(id, r)
	return r, nil
}

// identify validates that source is object-like and returns a stable
// identity for it (the address backing a map, slice, or struct pointer),
// used both as the Cell Registry's source key and as the canonical map's
// key. This is the Go rendering of Design Notes option (b): there is no
// proxy trap to intercept, so identity must be computed explicitly.
func identify(source any) (uintptr, sourceKind, error) {
	if source == nil {
		return 0, 0, ErrNotObject
	}
	v := reflect.ValueOf(source)
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() || v.Type().Key().Kind() != reflect.String {
			return 0, 0, ErrNotObject
		}
		return v.Pointer(), kindMap, nil
	case reflect.Slice:
		if v.IsNil() {
			return 0, 0, ErrNotObject
		}
		return v.Pointer(), kindSlice, nil
	case reflect.Ptr:
		if v.IsNil() || v.Elem().Kind() != reflect.Struct {
			return 0, 0, ErrNotObject
		}
		return v.Pointer(), kindStruct, nil
	default:
		return 0, 0, ErrNotObject
	}
}

// Shuck returns the source object behind a wrapper, or x unchanged if it
// is not a *Reactor (spec §4.1: "the escape hatch for cases where an
// operation cannot tolerate a proxy").
func Shuck(x any) any {
	if r, ok := x.(*Reactor); ok {
		return r.source
	}
	return x
}

// Shuck returns the source object behind r.
func (r *Reactor) Shuck() any {
	return r.source
}

// Get reads key, subscribing the currently-running observer (if any, and
// unless Hide is suppressing tracking) to (r, key). If the resolved value
// is itself object-like, Get returns its Reactor wrapper (constructed
// lazily and canonically cached), so nested reactivity is reached by
// chaining Get calls: r.Get("foo").(*Reactor).Get("bar") — the Go
// rendering of spec §8 scenario 2. Primitives are returned as-is. A key
// that does not exist returns (nil, nil), not an error.
func (r *Reactor) Get(key string) (any, error) {
	subscribeCurrent(r.id, cellID{kind: cellValue, key: key})
	raw, exists, err := r.rawGet(key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return wrapIfObjectLike(raw), nil
}

// Has reports whether key exists, subscribing the current observer to
// (r, HAS(key)). Writes that leave this unchanged never re-trigger an
// observer that only read Has (spec §4.1, scenario 9).
func (r *Reactor) Has(key string) bool {
	subscribeCurrent(r.id, cellID{kind: cellHas, key: key})
	_, exists, _ := r.rawGet(key)
	return exists
}

// Keys returns the source's own keys, subscribing the current observer to
// (r, OWN_KEYS). Writes that leave the own-key set unchanged (as a set;
// order is irrelevant) never re-trigger an observer that only read Keys.
func (r *Reactor) Keys() []string {
	subscribeCurrent(r.id, cellID{kind: cellOwnKeys})
	return r.rawKeys()
}

// Set assigns value to key, diffs the old and new observable projections
// (value, existence, own-key set), and notifies exactly the cells whose
// projection changed (spec §4.1). A write that changes nothing observable
// produces no notifications at all (spec §8, scenario 3). If the
// underlying assignment itself fails — an out-of-range slice index, an
// unexported or non-existent struct field, the synthetic read-only
// "length" key — that failure is returned as *ErrNotWritable and no
// notification happens.
func (r *Reactor) Set(key string, value any) error {
	oldVal, existedBefore, _ := r.rawGet(key)
	keysBefore := r.rawKeys()

	if err := r.rawSet(key, value); err != nil {
		return err
	}

	newVal, existedAfter, _ := r.rawGet(key)
	keysAfter := r.rawKeys()

	existsChanged := existedBefore != existedAfter
	keysChanged := !sameKeySet(keysBefore, keysAfter)
	valueChanged := !valuesEqual(oldVal, newVal)

	if !valueChanged && !existsChanged && !keysChanged {
		return nil
	}

	affected := collect(r.id, cellID{kind: cellValue, key: key})
	if existsChanged {
		affected = append(affected, collect(r.id, cellID{kind: cellHas, key: key})...)
	}
	if keysChanged {
		affected = append(affected, collect(r.id, cellID{kind: cellOwnKeys})...)
	}
	return notify(affected)
}

// Delete removes key, notifying exactly the cells whose projection
// changed, analogous to Set (spec §4.1, "deleteProperty ... behave
// analogously"). Deleting an absent key, or one whose removal changes
// nothing observable, produces no notifications.
func (r *Reactor) Delete(key string) error {
	_, existedBefore, _ := r.rawGet(key)
	keysBefore := r.rawKeys()

	if err := r.rawDelete(key); err != nil {
		return err
	}

	_, existedAfter, _ := r.rawGet(key)
	keysAfter := r.rawKeys()

	existsChanged := existedBefore != existedAfter
	keysChanged := !sameKeySet(keysBefore, keysAfter)

	if !existsChanged && !keysChanged {
		return nil
	}

	affected := collect(r.id, cellID{kind: cellValue, key: key})
	if existsChanged {
		affected = append(affected, collect(r.id, cellID{kind: cellHas, key: key})...)
	}
	if keysChanged {
		affected = append(affected, collect(r.id, cellID{kind: cellOwnKeys})...)
	}
	return notify(affected)
}

// Call invokes a method on the source, with the source (never the
// wrapper) as the receiver — the Go rendering of spec §4.1's host-object
// receiver-redirection rule, and of Design Notes' guidance to "detect
// host-internal-slot methods and bind to the source." A panic inside the
// method is recovered and returned as an error, the same way an observer
// body's panic is (observer.go).
func (r *Reactor) Call(method string, args ...any) (results []any, err error) {
	mv := reflect.ValueOf(r.source).MethodByName(method)
	if !mv.IsValid() {
		return nil, fmt.Errorf("reactor: no such method %q", method)
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		if a == nil {
			in[i] = reflect.New(mv.Type().In(i)).Elem()
			continue
		}
		in[i] = reflect.ValueOf(a)
	}

	lo.TryCatchWithErrorValue(
		func() error {
			out := mv.Call(in)
			results = make([]any, len(out))
			for i, v := range out {
				results[i] = v.Interface()
			}
			return nil
		},
		func(rec any) {
			err = fmt.Errorf("reactor: method %q panicked: %v", method, rec)
		},
	)
	return results, err
}

// valuesEqual is the Go rendering of spec §4.1's "strictly equal to the
// old value" test. Go's == gives reference identity directly for
// comparable dynamic types, including the pointer-to-struct values this
// module actually wraps, but == on a map or slice is a compile-time
// error rather than a reference check, so those compare by their
// underlying data pointer instead (two distinct slices with identical
// contents are "changed," matching the spec's literal invariant rather
// than a structural-equality approximation of it). reflect.DeepEqual is
// the last resort, for a dynamic type that is neither comparable nor a
// map/slice.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	switch ta.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func:
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	default:
		if ta.Comparable() {
			return a == b
		}
		return reflect.DeepEqual(a, b)
	}
}

// wrapIfObjectLike returns raw's Reactor wrapper if raw is itself
// object-like, else raw unchanged. This is what makes nested reactivity
// transitive: every Get that resolves to a map, slice, or struct pointer
// hands back something you can Get/Set/Has/Keys/Call on in turn.
func wrapIfObjectLike(raw any) any {
	if raw == nil {
		return raw
	}
	if _, _, err := identify(raw); err != nil {
		return raw
	}
	r, err := NewReactor(raw)
	if err != nil {
		return raw
	}
	return r
}

// rawGet resolves key's value without touching the Cell Registry.
func (r *Reactor) rawGet(key string) (value any, exists bool, err error) {
	switch r.kind {
	case kindMap:
		v := reflect.ValueOf(r.source)
		mv := v.MapIndex(reflect.ValueOf(key))
		if !mv.IsValid() {
			return nil, false, nil
		}
		return mv.Interface(), true, nil

	case kindSlice:
		v := reflect.ValueOf(r.source)
		if key == "length" {
			return v.Len(), true, nil
		}
		idx, perr := strconv.Atoi(key)
		if perr != nil || idx < 0 || idx >= v.Len() {
			return nil, false, nil
		}
		return v.Index(idx).Interface(), true, nil

	case kindStruct:
		v := reflect.ValueOf(r.source).Elem()
		field, ok := exportedField(v, key)
		if !ok {
			return nil, false, nil
		}
		return field.Interface(), true, nil
	}
	return nil, false, nil
}

// rawKeys returns the source's own keys without touching the registry.
func (r *Reactor) rawKeys() []string {
	switch r.kind {
	case kindMap:
		v := reflect.ValueOf(r.source)
		keys := make([]string, 0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			keys = append(keys, iter.Key().String())
		}
		slices.Sort(keys)
		return keys

	case kindSlice:
		v := reflect.ValueOf(r.source)
		keys := make([]string, v.Len())
		for i := range keys {
			keys[i] = strconv.Itoa(i)
		}
		return keys

	case kindStruct:
		v := reflect.ValueOf(r.source).Elem()
		t := v.Type()
		keys := make([]string, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			if t.Field(i).PkgPath == "" {
				keys = append(keys, t.Field(i).Name)
			}
		}
		return keys
	}
	return nil
}

// rawSet performs the underlying assignment, recovering any panic from an
// incompatible value type as *ErrNotWritable.
func (r *Reactor) rawSet(key string, value any) (err error) {
	switch r.kind {
	case kindMap:
		v := reflect.ValueOf(r.source)
		lo.TryCatchWithErrorValue(
			func() error {
				v.SetMapIndex(reflect.ValueOf(key), reflect.ValueOf(value))
				return nil
			},
			func(rec any) {
				err = &ErrNotWritable{Key: key, Reason: fmt.Sprintf("%v", rec)}
			},
		)
		return err

	case kindSlice:
		if key == "length" {
			return &ErrNotWritable{Key: key, Reason: "length is read-only"}
		}
		v := reflect.ValueOf(r.source)
		idx, perr := strconv.Atoi(key)
		if perr != nil || idx < 0 || idx >= v.Len() {
			return &ErrNotWritable{Key: key, Reason: "index out of range"}
		}
		lo.TryCatchWithErrorValue(
			func() error {
				v.Index(idx).Set(reflect.ValueOf(value))
				return nil
			},
			func(rec any) {
				err = &ErrNotWritable{Key: key, Reason: fmt.Sprintf("%v", rec)}
			},
		)
		return err

	case kindStruct:
		v := reflect.ValueOf(r.source).Elem()
		field, ok := exportedField(v, key)
		if !ok || !field.CanSet() {
			return &ErrNotWritable{Key: key, Reason: "no such exported field"}
		}
		lo.TryCatchWithErrorValue(
			func() error {
				field.Set(reflect.ValueOf(value))
				return nil
			},
			func(rec any) {
				err = &ErrNotWritable{Key: key, Reason: fmt.Sprintf("%v", rec)}
			},
		)
		return err
	}
	return &ErrNotWritable{Key: key, Reason: "unsupported source kind"}
}

// rawDelete removes key, where that is meaningful: a map key is removed
// outright; a slice index is reset to its zero value (mirroring a JS
// array's delete, which leaves a hole without shrinking length — deleting
// by re-slicing would change the source's identity, which Set/Delete must
// never do); a struct's fields are fixed, so deleting one is always
// *ErrNotWritable.
func (r *Reactor) rawDelete(key string) error {
	switch r.kind {
	case kindMap:
		v := reflect.ValueOf(r.source)
		v.SetMapIndex(reflect.ValueOf(key), reflect.Value{})
		return nil

	case kindSlice:
		if key == "length" {
			return &ErrNotWritable{Key: key, Reason: "length is read-only"}
		}
		v := reflect.ValueOf(r.source)
		idx, perr := strconv.Atoi(key)
		if perr != nil || idx < 0 || idx >= v.Len() {
			return &ErrNotWritable{Key: key, Reason: "index out of range"}
		}
		v.Index(idx).Set(reflect.Zero(v.Type().Elem()))
		return nil

	case kindStruct:
		return &ErrNotWritable{Key: key, Reason: "struct fields cannot be deleted"}
	}
	return &ErrNotWritable{Key: key, Reason: "unsupported source kind"}
}

// exportedField looks up key as an exported struct field, treating
// unexported fields as if they did not exist (they are unreachable
// through reflect without unsafe, so there is no safe way to honor them).
func exportedField(v reflect.Value, key string) (reflect.Value, bool) {
	field := v.FieldByName(key)
	if !field.IsValid() {
		return reflect.Value{}, false
	}
	sf, _ := v.Type().FieldByName(key)
	if sf.PkgPath != "" {
		return reflect.Value{}, false
	}
	return field, true
}

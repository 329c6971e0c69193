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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompositeError_singleErrorIsNotWrapped(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	boom := errors.New("boom")
	err := newCompositeError([]error{boom})
	is.Same(boom, err)
}

func TestNewCompositeError_emptyIsNil(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	is.Nil(newCompositeError(nil))
}

func TestNewCompositeError_flattensNestedComposites(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	e1 := errors.New("e1")
	e2 := errors.New("e2")
	e3 := errors.New("e3")

	inner := newCompositeError([]error{e1, e2})
	outer := newCompositeError([]error{inner, e3})

	ce, ok := outer.(*CompositeError)
	require.True(t, ok)
	is.Len(ce.Cause(), 3)
}

// Scenario 6: composite error.
func TestScenario_compositeError(t *testing.T) {
	is := assert.New(t)

	r, err := NewReactor(map[string]any{"value": 1})
	require.NoError(t, err)

	failer := func() ObserverFunc {
		return func(args ...any) (any, error) {
			v, _ := r.Get("value")
			if v.(int) > 1 {
				return nil, errors.New("over threshold")
			}
			return nil, nil
		}
	}

	o1, err := NewObserver(failer())
	require.NoError(t, err)
	o2, err := NewObserver(failer())
	require.NoError(t, err)
	require.NoError(t, o1.Start())
	require.NoError(t, o2.Start())

	err = r.Set("value", 2)
	require.Error(t, err)
	ce, ok := err.(*CompositeError)
	require.True(t, ok)
	is.Len(ce.Cause(), 2)
}

// Scenario 7: chained flatten.
func TestScenario_chainedFlatten(t *testing.T) {
	is := assert.New(t)

	r, err := NewReactor(map[string]any{"foo": "", "passthrough": ""})
	require.NoError(t, err)

	a, err := NewObserver(func(args ...any) (any, error) {
		foo, _ := r.Get("foo")
		return nil, r.Set("passthrough", foo)
	})
	require.NoError(t, err)
	require.NoError(t, a.Start())

	failOnFoo := func(args ...any) (any, error) {
		v, _ := r.Get("foo")
		if v == "error" {
			return nil, errors.New("foo is error")
		}
		return nil, nil
	}
	failOnPassthrough := func(args ...any) (any, error) {
		v, _ := r.Get("passthrough")
		if v == "error" {
			return nil, errors.New("passthrough is error")
		}
		return nil, nil
	}

	b1, err := NewObserver(failOnFoo)
	require.NoError(t, err)
	b2, err := NewObserver(failOnFoo)
	require.NoError(t, err)
	b3, err := NewObserver(failOnPassthrough)
	require.NoError(t, err)
	b4, err := NewObserver(failOnPassthrough)
	require.NoError(t, err)
	require.NoError(t, b1.Start())
	require.NoError(t, b2.Start())
	require.NoError(t, b3.Start())
	require.NoError(t, b4.Start())

	err = r.Set("foo", "error")
	require.Error(t, err)
	ce, ok := err.(*CompositeError)
	require.True(t, ok)
	is.Len(ce.Cause(), 4)
}

func TestErrNotWritable_Error(t *testing.T) {
	t.Parallel()
	is := assert.New(t)

	err := &ErrNotWritable{Key: "foo", Reason: "nope"}
	is.Contains(err.Error(), "foo")
	is.Contains(err.Error(), "nope")
}

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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 5: hide escape.
func TestScenario_hideEscape(t *testing.T) {
	is := assert.New(t)

	r, err := NewReactor(map[string]any{"outer": 1, "inner": 1})
	require.NoError(t, err)

	runs := 0
	o, err := NewObserver(func(args ...any) (any, error) {
		runs++
		_, _ = r.Get("outer")
		_, err := Hide(func() (any, error) {
			return r.Get("inner")
		})
		return nil, err
	})
	require.NoError(t, err)
	require.NoError(t, o.Start())
	is.Equal(1, runs)

	require.NoError(t, r.Set("inner", 2))
	is.Equal(1, runs)

	require.NoError(t, r.Set("outer", 2))
	is.Equal(2, runs)
}

func TestHide_returnsFResultAndWritesStillNotify(t *testing.T) {
	is := assert.New(t)

	r, err := NewReactor(map[string]any{"value": 1})
	require.NoError(t, err)

	runs := 0
	o, err := NewObserver(func(args ...any) (any, error) {
		runs++
		_, _ = r.Get("value")
		return nil, nil
	})
	require.NoError(t, err)
	require.NoError(t, o.Start())

	val, err := Hide(func() (int, error) {
		require.NoError(t, r.Set("value", 9))
		return 42, nil
	})
	require.NoError(t, err)
	is.Equal(42, val)
	is.Equal(2, runs) // the write inside Hide still notified
}

func TestHide_nestsViaDepthCounter(t *testing.T) {
	is := assert.New(t)

	r, err := NewReactor(map[string]any{"value": 1})
	require.NoError(t, err)

	runs := 0
	o, err := NewObserver(func(args ...any) (any, error) {
		runs++
		_, _ = Hide(func() (any, error) {
			return Hide(func() (any, error) {
				return r.Get("value")
			})
		})
		return nil, nil
	})
	require.NoError(t, err)
	require.NoError(t, o.Start())
	is.Equal(1, runs)

	require.NoError(t, r.Set("value", 2))
	is.Equal(1, runs)
}

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

// Scenario 4: batch coalesce.
func TestScenario_batchCoalesce(t *testing.T) {
	is := assert.New(t)

	r, err := NewReactor(map[string]any{"value": ""})
	require.NoError(t, err)

	runs := 0
	var tracker any
	o, err := NewObserver(func(args ...any) (any, error) {
		runs++
		v, _ := r.Get("value")
		tracker = v
		return nil, nil
	})
	require.NoError(t, err)
	require.NoError(t, o.Start())
	is.Equal(1, runs)

	_, err = Batch(func() (any, error) {
		require.NoError(t, r.Set("value", "a"))
		require.NoError(t, r.Set("value", "b"))
		require.NoError(t, r.Set("value", "c"))
		return nil, nil
	})
	require.NoError(t, err)

	is.Equal(2, runs)
	is.Equal("c", tracker)
}

func TestBatch_writesVisibleImmediatelyInsideScope(t *testing.T) {
	is := assert.New(t)

	r, err := NewReactor(map[string]any{"value": 1})
	require.NoError(t, err)

	var seenInsideBatch any
	_, err = Batch(func() (any, error) {
		require.NoError(t, r.Set("value", 2))
		seenInsideBatch, _ = r.Get("value")
		return nil, nil
	})
	require.NoError(t, err)
	is.Equal(2, seenInsideBatch)
}

func TestBatch_nestedDefersToOutermost(t *testing.T) {
	is := assert.New(t)

	r, err := NewReactor(map[string]any{"value": 0})
	require.NoError(t, err)

	runs := 0
	o, err := NewObserver(func(args ...any) (any, error) {
		runs++
		_, _ = r.Get("value")
		return nil, nil
	})
	require.NoError(t, err)
	require.NoError(t, o.Start())

	_, err = Batch(func() (any, error) {
		require.NoError(t, r.Set("value", 1))
		_, innerErr := Batch(func() (any, error) {
			require.NoError(t, r.Set("value", 2))
			return nil, nil
		})
		is.Equal(1, runs) // still not drained, even after the inner batch returns
		return nil, innerErr
	})
	require.NoError(t, err)
	is.Equal(2, runs)
}

func TestBatch_returnsFValueAndMergesDrainError(t *testing.T) {
	is := assert.New(t)

	r, err := NewReactor(map[string]any{"value": 1})
	require.NoError(t, err)

	boom := errors.New("observer boom")
	o, err := NewObserver(func(args ...any) (any, error) {
		v, _ := r.Get("value")
		if v.(int) > 1 {
			return nil, boom
		}
		return nil, nil
	})
	require.NoError(t, err)
	require.NoError(t, o.Start())

	val, err := Batch(func() (string, error) {
		require.NoError(t, r.Set("value", 5))
		return "done", nil
	})
	is.Equal("done", val)
	is.Error(err)
	is.Contains(err.Error(), "observer boom")
}

package pqueue

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intLess(a, b int) bool { return a < b }

func TestQueue_PopEmpty(t *testing.T) {
	q := New(intLess)

	_, err := q.Pop()
	require.ErrorIs(t, err, ErrEmpty)

	_, ok := q.Peek()
	assert.False(t, ok)
}

func TestQueue_PopsInOrder(t *testing.T) {
	q := New(intLess)
	for _, v := range []int{5, 3, 9, 1, 7, 3, 0} {
		q.Push(v)
	}

	got := make([]int, 0, q.Len())
	for q.Len() > 0 {
		v, err := q.Pop()
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []int{0, 1, 3, 3, 5, 7, 9}, got)
}

func TestQueue_GrowsByDoubling(t *testing.T) {
	q := New(intLess)
	require.Equal(t, InitialCapacity, q.Cap())

	for i := 0; i < InitialCapacity; i++ {
		q.Push(i)
	}
	assert.Equal(t, InitialCapacity, q.Cap())

	q.Push(-1)
	assert.Equal(t, 2*InitialCapacity, q.Cap())
	assert.Equal(t, InitialCapacity+1, q.Len())

	for q.Len() > 0 {
		_, err := q.Pop()
		require.NoError(t, err)
	}
	assert.Equal(t, 2*InitialCapacity, q.Cap(), "capacity never shrinks")
}

func TestQueue_InterleavedMatchesReferenceSort(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	q := New(intLess)
	var ref []int

	for i := 0; i < 5000; i++ {
		if len(ref) == 0 || rng.Intn(3) > 0 {
			v := rng.Intn(1000)
			q.Push(v)
			ref = append(ref, v)
			continue
		}

		sort.Ints(ref)
		want := ref[0]
		ref = ref[1:]

		peeked, ok := q.Peek()
		require.True(t, ok)
		require.Equal(t, want, peeked)

		got, err := q.Pop()
		require.NoError(t, err)
		require.Equal(t, want, got, "iteration %d", i)
		require.Equal(t, len(ref), q.Len())
	}
}

func TestQueue_StableWithSequenceTieBreak(t *testing.T) {
	type item struct {
		key float64
		seq int
	}
	q := New(func(a, b item) bool {
		if a.key != b.key {
			return a.key < b.key
		}
		return a.seq < b.seq
	})
	for i := 0; i < 300; i++ {
		q.Push(item{key: float64(i % 3), seq: i})
	}

	prev := item{key: -1, seq: -1}
	for q.Len() > 0 {
		it, err := q.Pop()
		require.NoError(t, err)
		if it.key == prev.key {
			assert.Greater(t, it.seq, prev.seq)
		} else {
			assert.Greater(t, it.key, prev.key)
		}
		prev = it
	}
}

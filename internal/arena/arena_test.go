package arena_test

import (
	"testing"

	"github.com/gmofishsauce/hplc/internal/arena"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_AllocAndAt(t *testing.T) {
	a := arena.New[int]()
	i1, p1 := a.Alloc()
	*p1 = 42
	i2, p2 := a.Alloc()
	*p2 = 7

	assert.Equal(t, 42, *a.At(i1))
	assert.Equal(t, 7, *a.At(i2))
	assert.Equal(t, 2, a.Len())
}

func TestArena_SpansMultiplePages(t *testing.T) {
	a := arena.New[int]()
	const n = 300 // more than one 256-slot page
	var indices []arena.Index
	for i := 0; i < n; i++ {
		idx, p := a.Alloc()
		*p = i
		indices = append(indices, idx)
	}
	require.Equal(t, n, a.Len())
	for i, idx := range indices {
		assert.Equal(t, i, *a.At(idx))
	}
}

func TestArena_ReleaseResetsState(t *testing.T) {
	a := arena.New[int]()
	a.Alloc()
	a.Alloc()
	a.Release()
	assert.Equal(t, 0, a.Len())

	idx, p := a.Alloc()
	*p = 99
	assert.Equal(t, arena.Index(0), idx)
	assert.Equal(t, 99, *a.At(idx))
}

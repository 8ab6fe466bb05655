package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk(t *testing.T) {
	t.Run("splits with remainder", func(t *testing.T) {
		chunks := chunk([]int{1, 2, 3, 4, 5}, 2)
		require.Len(t, chunks, 3)
		assert.Equal(t, []int{1, 2}, chunks[0])
		assert.Equal(t, []int{3, 4}, chunks[1])
		assert.Equal(t, []int{5}, chunks[2])
	})

	t.Run("preserves every element in order", func(t *testing.T) {
		items := []int{9, 8, 7, 6, 5}
		var flattened []int
		for _, part := range chunk(items, 2) {
			flattened = append(flattened, part...)
		}
		assert.Equal(t, items, flattened)
	})

	t.Run("single chunk when size exceeds length", func(t *testing.T) {
		chunks := chunk([]int{1, 2, 3}, 20000)
		require.Len(t, chunks, 1)
		assert.Equal(t, []int{1, 2, 3}, chunks[0])
	})

	t.Run("empty input yields no chunks", func(t *testing.T) {
		assert.Empty(t, chunk([]int{}, 2))
	})

	t.Run("exact multiple", func(t *testing.T) {
		chunks := chunk([]int{1, 2, 3, 4}, 2)
		require.Len(t, chunks, 2)
		assert.Equal(t, []int{3, 4}, chunks[1])
	})
}

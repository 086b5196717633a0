package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	t.Run("new set contains the seed elements", func(t *testing.T) {
		set := NewSet("a", "b", "a")

		assert.Len(t, set, 2)
		assert.True(t, set.Contains("a"))
		assert.True(t, set.Contains("b"))
		assert.False(t, set.Contains("c"))
	})

	t.Run("add deduplicates", func(t *testing.T) {
		set := NewSet[string]()
		set.Add("p1", "p2")
		set.Add("p1")

		assert.Len(t, set, 2)
	})

	t.Run("delete removes elements", func(t *testing.T) {
		set := NewSet(1, 2, 3)
		set.Delete(2, 3)

		assert.Len(t, set, 1)
		assert.True(t, set.Contains(1))
		assert.False(t, set.Contains(2))
	})

	t.Run("to slice holds every element", func(t *testing.T) {
		set := NewSet("x", "y")

		assert.ElementsMatch(t, []string{"x", "y"}, set.ToSlice())
	})
}

package attribution

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGetOrCompute(t *testing.T) {
	t.Run("computes once and reuses the result", func(t *testing.T) {
		cache := NewCache()
		computes := 0

		for range 3 {
			result, err := cache.GetOrCompute("0xabc", func() (Classification, error) {
				computes++
				return Classification{Recognized: true, Group: "jumper.exchange"}, nil
			})

			require.NoError(t, err)
			assert.Equal(t, "jumper.exchange", result.Group)
		}

		assert.Equal(t, 1, computes)
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("distinct hashes are cached independently", func(t *testing.T) {
		cache := NewCache()

		first, err := cache.GetOrCompute("0x1", func() (Classification, error) {
			return Classification{Recognized: true, Group: "a"}, nil
		})
		require.NoError(t, err)

		second, err := cache.GetOrCompute("0x2", func() (Classification, error) {
			return Classification{Recognized: true, Group: "b"}, nil
		})
		require.NoError(t, err)

		assert.NotEqual(t, first.Group, second.Group)
		assert.Equal(t, 2, cache.Len())
	})

	t.Run("failed computations are not cached", func(t *testing.T) {
		cache := NewCache()

		_, err := cache.GetOrCompute("0xabc", func() (Classification, error) {
			return Classification{}, errors.New("payload fetch failed")
		})
		require.Error(t, err)
		assert.Zero(t, cache.Len())

		result, err := cache.GetOrCompute("0xabc", func() (Classification, error) {
			return Classification{Recognized: true}, nil
		})
		require.NoError(t, err)
		assert.True(t, result.Recognized)
	})

	t.Run("concurrent callers share a single computation", func(t *testing.T) {
		cache := NewCache()

		var computes atomic.Int64
		compute := func() (Classification, error) {
			computes.Add(1)
			time.Sleep(10 * time.Millisecond)
			return Classification{Recognized: true, Group: "jumper.exchange"}, nil
		}

		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()

				result, err := cache.GetOrCompute("0xabc", compute)

				assert.NoError(t, err)
				assert.Equal(t, "jumper.exchange", result.Group)
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(1), computes.Load())
	})
}

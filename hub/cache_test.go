package hub

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalebridge/scale"
)

func TestCacheEmpty(t *testing.T) {
	c := NewCache()
	_, ok := c.Get()
	assert.False(t, ok)
}

func TestCacheSetGet(t *testing.T) {
	c := NewCache()
	r1 := scale.Reading{EventTime: time.Now(), Weight: 80.5, Units: scale.Kilogram}
	c.Set(r1)

	got, ok := c.Get()
	require.True(t, ok)
	assert.Equal(t, r1, got)

	r2 := scale.Reading{EventTime: time.Now(), Weight: 81.0, Units: scale.Kilogram}
	c.Set(r2)

	got, ok = c.Get()
	require.True(t, ok)
	assert.Equal(t, r2, got)
}

func TestCacheConcurrentReaders(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			c.Set(scale.Reading{Weight: float64(i), Units: scale.Pound})
		}
	}()
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				if r, ok := c.Get(); ok {
					assert.Equal(t, scale.Pound, r.Units)
				}
			}
		}()
	}
	wg.Wait()
}

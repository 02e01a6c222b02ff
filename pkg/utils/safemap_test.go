package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeMapConcurrentPuts(t *testing.T) {
	m := NewSafeMap[int, string]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Put(i, "value")
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, m.Len())
	assert.Len(t, m.Keys(), 50)

	value, ok := m.Get(7)
	assert.True(t, ok)
	assert.Equal(t, "value", value)
	_, ok = m.Get(100)
	assert.False(t, ok)
}

func TestSafeMapCloneIsDetached(t *testing.T) {
	m := NewSafeMap[string, int]()
	m.Put("a", 1)
	clone := m.Clone()
	m.Put("b", 2)
	assert.Len(t, clone, 1)

	m.Reset()
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 1, clone["a"])
}

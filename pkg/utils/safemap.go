package utils

import (
	"sync"
)

// SafeMap is a small mutex-guarded map used where one goroutine collects
// results while another reads progress.
type SafeMap[K comparable, V any] struct {
	mutex sync.Mutex
	data  map[K]V
}

func NewSafeMap[K comparable, V any]() *SafeMap[K, V] {
	return &SafeMap[K, V]{data: make(map[K]V)}
}

func (m *SafeMap[K, V]) Get(key K) (V, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	value, ok := m.data[key]
	return value, ok
}

func (m *SafeMap[K, V]) Put(key K, value V) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data[key] = value
}

func (m *SafeMap[K, V]) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.data)
}

func (m *SafeMap[K, V]) Keys() []K {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	keys := make([]K, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}

func (m *SafeMap[K, V]) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data = make(map[K]V)
}

func (m *SafeMap[K, V]) Clone() map[K]V {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	data := make(map[K]V)
	for key, v := range m.data {
		data[key] = v
	}
	return data
}

package cache

import (
	"container/list"
	"sync"
	"time"
)

// Expiring is a bounded map whose entries live for ttl after their last
// write or renewal. Past capacity the least recently used entry is dropped.
type Expiring[T any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	clock    func() time.Time

	index map[string]*list.Element
	order *list.List // front is most recently used
}

type slot[T any] struct {
	key      string
	value    T
	deadline time.Time
}

// NewExpiring returns an empty map holding at most capacity entries.
func NewExpiring[T any](capacity int, ttl time.Duration) *Expiring[T] {
	return &Expiring[T]{
		capacity: capacity,
		ttl:      ttl,
		clock:    time.Now,
		index:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// live returns the element for key if it has not expired, dropping it
// otherwise. Callers hold mu.
func (m *Expiring[T]) live(key string, now time.Time) (*list.Element, bool) {
	el, ok := m.index[key]
	if !ok {
		return nil, false
	}
	if now.After(el.Value.(*slot[T]).deadline) {
		m.drop(el)
		return nil, false
	}
	return el, true
}

func (m *Expiring[T]) Get(key string) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.live(key, m.clock())
	if !ok {
		var zero T
		return zero, false
	}
	m.order.MoveToFront(el)
	return el.Value.(*slot[T]).value, true
}

// Renew returns the value for key and pushes its deadline ttl past now.
func (m *Expiring[T]) Renew(key string) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	el, ok := m.live(key, now)
	if !ok {
		var zero T
		return zero, false
	}
	s := el.Value.(*slot[T])
	s.deadline = now.Add(m.ttl)
	m.order.MoveToFront(el)
	return s.value, true
}

func (m *Expiring[T]) Put(key string, value T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &slot[T]{key: key, value: value, deadline: m.clock().Add(m.ttl)}
	if el, ok := m.index[key]; ok {
		el.Value = s
		m.order.MoveToFront(el)
		return
	}
	m.index[key] = m.order.PushFront(s)
	for m.order.Len() > m.capacity {
		m.drop(m.order.Back())
	}
}

func (m *Expiring[T]) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if el, ok := m.index[key]; ok {
		m.drop(el)
	}
}

func (m *Expiring[T]) drop(el *list.Element) {
	delete(m.index, el.Value.(*slot[T]).key)
	m.order.Remove(el)
}

// Sweep implements Sweeper.
func (m *Expiring[T]) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for el := m.order.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*slot[T]).deadline) {
			m.drop(el)
			removed++
		}
		el = prev
	}
	return removed
}

func (m *Expiring[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.index)
}

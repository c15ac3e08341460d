package datamodel

import "sync"

// a set of message ids with constant time membership checks; used for
// delivered messages and tombstones
type FastSet struct {
	mutex sync.Mutex
	items map[string]struct{}
}

func NewFastSet() *FastSet {
	return &FastSet{
		items: make(map[string]struct{}),
	}
}

// adds an item; returns false if it was already present
func (q *FastSet) Add(item string) bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if _, exists := q.items[item]; exists {
		return false
	}
	q.items[item] = struct{}{}
	return true
}

func (q *FastSet) Remove(item string) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	delete(q.items, item)
}

func (q *FastSet) Contains(item string) bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	_, exists := q.items[item]
	return exists
}

func (q *FastSet) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return len(q.items)
}

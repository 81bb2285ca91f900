package reconcile

import (
	"sort"
	"sync"
)

// keyedMutex serializes work per entity key while letting unrelated keys
// proceed in parallel. Batch files carry thousands of independent entities,
// so per-key locking is the primary scalability lever.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// LockAll acquires the mutex for every key and returns an unlock function.
// Keys are deduplicated and acquired in sorted order so two records sharing
// any subset of identifiers cannot deadlock against each other.
func (k *keyedMutex) LockAll(keys []string) func() {
	unique := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, key)
	}
	sort.Strings(unique)

	acquired := make([]*refMutex, 0, len(unique))
	for _, key := range unique {
		k.mu.Lock()
		m, ok := k.locks[key]
		if !ok {
			m = &refMutex{}
			k.locks[key] = m
		}
		m.refs++
		k.mu.Unlock()

		m.Lock()
		acquired = append(acquired, m)
	}

	unlockKeys := unique
	return func() {
		// Release in reverse acquisition order.
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].Unlock()

			k.mu.Lock()
			m := acquired[i]
			m.refs--
			if m.refs == 0 {
				delete(k.locks, unlockKeys[i])
			}
			k.mu.Unlock()
		}
	}
}

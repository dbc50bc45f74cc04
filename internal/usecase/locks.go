package usecase

import (
	"sort"
	"sync"
)

// accountLocks serializes work on the same account within this process.
// Entries are reference counted and dropped once nobody holds them.
type accountLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[string]*lockEntry)}
}

// lock acquires every id in sorted order (DEADLOCK PREVENTION) and returns
// a function releasing them.
func (l *accountLocks) lock(ids ...string) func() {
	ids = uniqueSorted(ids)

	entries := make([]*lockEntry, len(ids))
	l.mu.Lock()
	for i, id := range ids {
		e, ok := l.locks[id]
		if !ok {
			e = &lockEntry{}
			l.locks[id] = e
		}
		e.refs++
		entries[i] = e
	}
	l.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
	}

	return func() {
		for i := len(entries) - 1; i >= 0; i-- {
			entries[i].mu.Unlock()
		}

		l.mu.Lock()
		for i, id := range ids {
			entries[i].refs--
			if entries[i].refs == 0 {
				delete(l.locks, id)
			}
		}
		l.mu.Unlock()
	}
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

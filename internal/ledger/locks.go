package ledger

import "sync"

// userLocks hands out one mutex per user ID. Entries are dropped when the
// last holder releases them, so the map only holds users with work in flight.
type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[int64]*userLock)}
}

// lock blocks until userID is free and returns the matching unlock func.
func (l *userLocks) lock(userID int64) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.Lock()
	return func() {
		ul.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

// openIndex maps user ID to the ID of that user's open session. It is a cache:
// every entry can be rebuilt from the store.
type openIndex struct {
	mu sync.RWMutex
	m  map[int64]uint
}

func newOpenIndex() *openIndex {
	return &openIndex{m: make(map[int64]uint)}
}

func (i *openIndex) get(userID int64) (uint, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	id, ok := i.m[userID]
	return id, ok
}

func (i *openIndex) set(userID int64, sessionID uint) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.m[userID] = sessionID
}

func (i *openIndex) delete(userID int64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.m, userID)
}

func (i *openIndex) reset(entries map[int64]uint) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.m = entries
}

func (i *openIndex) len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.m)
}

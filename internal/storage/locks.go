package storage

import "sync"

// userLocks hands out one mutex per user. Writers of different users never
// wait on each other; writers of the same user run the guard and the write
// as one critical section.
type userLocks struct {
	locks map[int64]*sync.Mutex
	mu    sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[int64]*sync.Mutex)}
}

// lock blocks until the user's mutex is held and returns its release func.
func (l *userLocks) lock(userID int64) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

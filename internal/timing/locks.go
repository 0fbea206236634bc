package timing

import "sync"

// trackLocks serializes work on the same track while letting different
// tracks proceed in parallel.
type trackLocks struct {
	mu    sync.Mutex
	locks map[int64]*trackLock
}

type trackLock struct {
	mu   sync.Mutex
	refs int
}

func newTrackLocks() *trackLocks {
	return &trackLocks{locks: make(map[int64]*trackLock)}
}

// acquire blocks until the track is free and returns the release func.
func (l *trackLocks) acquire(trackID int64) func() {
	l.mu.Lock()
	entry, ok := l.locks[trackID]
	if !ok {
		entry = &trackLock{}
		l.locks[trackID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, trackID)
		}
		l.mu.Unlock()
	}
}

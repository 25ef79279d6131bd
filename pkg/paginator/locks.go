package paginator

import "sync"

type messageLock struct {
	mu   sync.Mutex
	refs int
}

// messageLocks hands out one mutex per message id and forgets it once no
// caller holds or waits on it.
type messageLocks struct {
	mu    sync.Mutex
	locks map[string]*messageLock
}

func newMessageLocks() *messageLocks {
	return &messageLocks{locks: make(map[string]*messageLock)}
}

// lock blocks until the caller owns messageID and returns the release func.
func (l *messageLocks) lock(messageID string) func() {
	l.mu.Lock()
	ml, ok := l.locks[messageID]
	if !ok {
		ml = &messageLock{}
		l.locks[messageID] = ml
	}
	ml.refs++
	l.mu.Unlock()

	ml.mu.Lock()

	return func() {
		ml.mu.Unlock()

		l.mu.Lock()
		ml.refs--
		if ml.refs == 0 {
			delete(l.locks, messageID)
		}
		l.mu.Unlock()
	}
}

func (l *messageLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

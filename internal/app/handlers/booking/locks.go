package booking

import "sync"

// PropertyLocks serializes conflict-check-then-write sequences per property
// within one process. The zero value is ready to use.
type PropertyLocks struct {
	mu    sync.Mutex
	locks map[string]*propertyLock
}

type propertyLock struct {
	mu   sync.Mutex
	refs int
}

// Do runs fn while holding the lock for propertyID.
func (p *PropertyLocks) Do(propertyID string, fn func() error) error {
	lock := p.acquire(propertyID)
	defer p.release(propertyID, lock)
	return fn()
}

func (p *PropertyLocks) acquire(propertyID string) *propertyLock {
	p.mu.Lock()
	if p.locks == nil {
		p.locks = make(map[string]*propertyLock)
	}
	lock, ok := p.locks[propertyID]
	if !ok {
		lock = &propertyLock{}
		p.locks[propertyID] = lock
	}
	lock.refs++
	p.mu.Unlock()

	lock.mu.Lock()
	return lock
}

func (p *PropertyLocks) release(propertyID string, lock *propertyLock) {
	lock.mu.Unlock()

	p.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(p.locks, propertyID)
	}
	p.mu.Unlock()
}

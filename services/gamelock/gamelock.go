package gamelock

import (
	"sync"
)

// Manager hands out one exclusive critical section per game number. All
// state-mutating commands against the same number run strictly serialized;
// commands against different numbers proceed fully concurrently.
//
// Entries are reference-counted so the map doesn't accumulate a mutex for
// every game number ever touched.
type Manager struct {
	mu    sync.Mutex
	locks map[int]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewManager() *Manager {
	return &Manager{
		locks: make(map[int]*entry),
	}
}

// WithGame runs fn while holding the exclusive section for number.
// Broadcasting must happen after WithGame returns, on the committed state.
func (m *Manager) WithGame(number int, fn func() error) error {
	e := m.acquire(number)
	e.mu.Lock()
	defer func() {
		e.mu.Unlock()
		m.release(number, e)
	}()
	return fn()
}

func (m *Manager) acquire(number int) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.locks[number]
	if !ok {
		e = &entry{}
		m.locks[number] = e
	}
	e.refs++
	return e
}

func (m *Manager) release(number int, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.locks, number)
	}
}

package gradesync

import "sync"

// keyLock hands out one mutex per (student, coursework) key so the
// count-then-append window is serialized per key without blocking
// unrelated submissions. Entries are kept for the process lifetime;
// the key space is bounded by the active student/coursework pairs.
type keyLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLock() *keyLock {
	return &keyLock{locks: map[string]*sync.Mutex{}}
}

func (k *keyLock) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

func (k *keyLock) Lock(key string) func() {
	m := k.get(key)
	m.Lock()
	return m.Unlock
}

package callback

import "sync"

type guardKey struct {
	userID string
	code   string
}

// Guard serializes callback processing per (user, authorization code)
// pair so duplicate concurrent submissions never race each other to the
// provider's one-time token exchange. Entries live for the process
// lifetime; code-reuse windows are short enough that the map stays small.
type Guard struct {
	mu    sync.Mutex
	locks map[guardKey]*sync.Mutex
}

func NewGuard() *Guard {
	return &Guard{locks: make(map[guardKey]*sync.Mutex)}
}

// Lock blocks until the (userID, code) pair is free and returns the
// unlock function. Callers must defer the unlock so every exit path,
// including error paths, releases the pair.
func (g *Guard) Lock(userID, code string) (unlock func()) {

	g.mu.Lock()
	key := guardKey{userID: userID, code: code}
	l, ok := g.locks[key]
	if !ok {
		l = &sync.Mutex{}
		g.locks[key] = l
	}
	g.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Len reports how many pairs have been seen; used by tests.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.locks)
}

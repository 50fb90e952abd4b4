package session

import "sync"

// Observer is notified when a role's credential stops being valid.
// Implementations must be idempotent: repeated expiries for the same role
// may be delivered in quick succession.
type Observer interface {
	SessionExpired(role Role, reason string)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(role Role, reason string)

func (f ObserverFunc) SessionExpired(role Role, reason string) { f(role, reason) }

// Bus is the in-process session-expiry broadcast. Dispatch is synchronous;
// a panicking observer must not prevent delivery to the others. The bus is
// injected into every authenticated surface rather than living as a hidden
// process-wide singleton.
type Bus struct {
	mu        sync.RWMutex
	nextID    int
	observers map[int]Observer
}

func NewBus() *Bus {
	return &Bus{observers: make(map[int]Observer)}
}

// Subscribe registers an observer and returns its unsubscribe function.
func (b *Bus) Subscribe(o Observer) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.observers[id] = o
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.observers, id)
	}
}

// Emit notifies every currently-registered observer.
func (b *Bus) Emit(role Role, reason string) {
	b.mu.RLock()
	observers := make([]Observer, 0, len(b.observers))
	for _, o := range b.observers {
		observers = append(observers, o)
	}
	b.mu.RUnlock()

	for _, o := range observers {
		notify(o, role, reason)
	}
}

func notify(o Observer, role Role, reason string) {
	defer func() {
		_ = recover()
	}()
	o.SessionExpired(role, reason)
}

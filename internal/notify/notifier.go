// Package notify provides the change-notification signal shared by the
// calendar service and its subscribers.
package notify

import (
	"log"
	"sync"
)

// Notifier is a registry of zero-argument callbacks used purely as a "state
// changed, please reload" signal. It is constructed once at process start and
// passed to the components that need it; there is no package-level instance.
//
// Delivery is synchronous and unordered. A subscriber must not assume any
// ordering relative to other subscribers.
type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func()
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]func())}
}

// Subscribe registers a callback and returns its unsubscribe function.
// Unsubscribing twice is harmless.
func (n *Notifier) Subscribe(fn func()) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.subs[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

// Notify invokes every registered callback exactly once. A panicking callback
// is recovered and logged so one bad subscriber cannot block the others.
func (n *Notifier) Notify() {
	n.mu.Lock()
	subs := make([]func(), 0, len(n.subs))
	for _, fn := range n.subs {
		subs = append(subs, fn)
	}
	n.mu.Unlock()

	for _, fn := range subs {
		invoke(fn)
	}
}

// SubscriberCount returns the number of registered callbacks.
func (n *Notifier) SubscriberCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

func invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Subscriber callback panicked: %v", r)
		}
	}()
	fn()
}

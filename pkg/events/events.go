// Package events implements the synchronous fan-out used to deliver inbound
// front-end events (pointer clicks and the like) to per-instance subscribers.
//
// Dispatch is single-threaded and ordered: handlers run in subscription
// order on the dispatching goroutine. The mutex only guards the handler
// list against subscription changes from other goroutines.
package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Handler consumes one event.
type Handler[E any] func(event E)

// Unbind detaches a subscription. Calling it more than once is harmless.
type Unbind func()

type subscription[E any] struct {
	id      string
	handler Handler[E]
	once    bool
}

// Dispatcher fans one event type out to its subscribers.
// The zero value is ready to use.
type Dispatcher[E any] struct {
	mu   sync.Mutex
	subs []subscription[E]
}

// Subscribe registers a handler for every future event.
func (d *Dispatcher[E]) Subscribe(h Handler[E]) Unbind {
	return d.add(h, false)
}

// SubscribeOnce registers a handler that detaches itself after one event.
func (d *Dispatcher[E]) SubscribeOnce(h Handler[E]) Unbind {
	return d.add(h, true)
}

func (d *Dispatcher[E]) add(h Handler[E], once bool) Unbind {
	id := uuid.NewString()
	d.mu.Lock()
	d.subs = append(d.subs, subscription[E]{id: id, handler: h, once: once})
	d.mu.Unlock()
	return func() { d.remove(id) }
}

func (d *Dispatcher[E]) remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, s := range d.subs {
		if s.id == id {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

// Dispatch delivers the event to all current subscribers in subscription
// order. One-shot subscribers are detached before their handler runs, so a
// handler dispatching recursively never sees itself again.
func (d *Dispatcher[E]) Dispatch(event E) {
	d.mu.Lock()
	subs := make([]subscription[E], len(d.subs))
	copy(subs, d.subs)
	kept := d.subs[:0]
	for _, s := range d.subs {
		if !s.once {
			kept = append(kept, s)
		}
	}
	d.subs = kept
	d.mu.Unlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// Next returns a channel that receives the next dispatched event and is
// then closed. The context cancels the wait and detaches the subscriber.
func (d *Dispatcher[E]) Next(ctx context.Context) <-chan E {
	ch := make(chan E, 1)
	unbind := d.SubscribeOnce(func(e E) {
		ch <- e
		close(ch)
	})
	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			unbind()
		}()
	}
	return ch
}

// Len reports the number of active subscriptions.
func (d *Dispatcher[E]) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}

// MouseModifier names a keyboard modifier held during a pointer event.
type MouseModifier = string

// Recognized mouse modifiers.
const (
	ModifierAlt     MouseModifier = "alt"
	ModifierControl MouseModifier = "control"
	ModifierShift   MouseModifier = "shift"
	ModifierMeta    MouseModifier = "meta"
)

// ClickEvent is a pointer click in domain coordinates.
type ClickEvent struct {
	X         float64         `json:"x"`
	Y         float64         `json:"y"`
	Button    int             `json:"button"`
	Modifiers []MouseModifier `json:"modifiers,omitempty"`
}

// HasModifier reports whether the named modifier was held.
func (e ClickEvent) HasModifier(m MouseModifier) bool {
	for _, held := range e.Modifiers {
		if held == m {
			return true
		}
	}
	return false
}

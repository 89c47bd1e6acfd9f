package events

import (
	"regexp"
	"sync"
)

// Handler receives the event name and its payload. Payload types are owned
// by the emitting package and are part of the notification contract.
type Handler func(name string, data any)

// Subscription cancels one registration when invoked. Cancellation has to be
// explicit, callers keep the handle and call it on teardown.
type Subscription func()

type subscriber struct {
	id      int
	pattern *regexp.Regexp // nil for exact-name subscriptions
	handler Handler
}

// Emitter is a synchronous in-process dispatcher: exact event names plus
// pattern subscriptions matched against every emitted name. Mutators emit
// after their state is settled; handlers run on the emitting goroutine and
// outside the lock, so a handler may subscribe or emit further events.
type Emitter struct {
	mu     sync.RWMutex
	nextID int
	exact  map[string][]subscriber
	wild   []subscriber
}

func New() *Emitter {
	return &Emitter{
		exact: make(map[string][]subscriber),
	}
}

// On registers a handler for one exact event name.
func (e *Emitter) On(name string, h Handler) Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.exact[name] = append(e.exact[name], subscriber{id: id, handler: h})

	return func() { e.offExact(name, id) }
}

// OnPattern registers a handler for every event whose name matches re.
func (e *Emitter) OnPattern(re *regexp.Regexp, h Handler) Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.wild = append(e.wild, subscriber{id: id, pattern: re, handler: h})

	return func() { e.offPattern(id) }
}

var matchAll = regexp.MustCompile(``)

// OnAll registers a handler for every emitted event.
func (e *Emitter) OnAll(h Handler) Subscription {
	return e.OnPattern(matchAll, h)
}

// Emit delivers the event synchronously to every matching subscriber, in
// subscription order, exact-name subscribers first.
func (e *Emitter) Emit(name string, data any) {
	e.mu.RLock()
	handlers := make([]Handler, 0, len(e.exact[name])+len(e.wild))
	for _, s := range e.exact[name] {
		handlers = append(handlers, s.handler)
	}
	for _, s := range e.wild {
		if s.pattern.MatchString(name) {
			handlers = append(handlers, s.handler)
		}
	}
	e.mu.RUnlock()

	for _, h := range handlers {
		h(name, data)
	}
}

func (e *Emitter) offExact(name string, id int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	subs := e.exact[name]
	for i, s := range subs {
		if s.id == id {
			e.exact[name] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(e.exact[name]) == 0 {
		delete(e.exact, name)
	}
}

func (e *Emitter) offPattern(id int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, s := range e.wild {
		if s.id == id {
			e.wild = append(e.wild[:i:i], e.wild[i+1:]...)
			break
		}
	}
}

package backdrop

import "sync"

// PointerEvent is a pointer position in viewport pixels.
type PointerEvent struct {
	X, Y float64
}

// ResizeEvent reports a new viewport size in logical pixels.
type ResizeEvent struct {
	Width, Height int
}

// EventSource delivers host input events. Each On* call returns a function
// that removes the listener; calling it more than once is safe.
type EventSource interface {
	OnPointerMove(fn func(PointerEvent)) (remove func())
	OnPointerEnter(fn func(PointerEvent)) (remove func())
	OnPointerLeave(fn func(PointerEvent)) (remove func())
	OnResize(fn func(ResizeEvent)) (remove func())
}

// Listeners is an ordered list of handlers for one event type. Publish
// calls handlers synchronously in subscription order. It is safe for
// concurrent use; handlers may unsubscribe themselves while being called.
type Listeners[T any] struct {
	mu       sync.Mutex
	nextID   uint64
	handlers []listener[T]
}

type listener[T any] struct {
	id uint64
	fn func(T)
}

// Subscribe registers fn and returns its remover.
func (l *Listeners[T]) Subscribe(fn func(T)) (remove func()) {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.handlers = append(l.handlers, listener[T]{id: id, fn: fn})
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(id) })
	}
}

func (l *Listeners[T]) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, h := range l.handlers {
		if h.id == id {
			// Copy on write so a Publish in progress keeps its snapshot.
			hs := make([]listener[T], 0, len(l.handlers)-1)
			hs = append(hs, l.handlers[:i]...)
			l.handlers = append(hs, l.handlers[i+1:]...)
			return
		}
	}
}

// Publish calls every handler subscribed before the call.
func (l *Listeners[T]) Publish(ev T) {
	l.mu.Lock()
	hs := l.handlers
	l.mu.Unlock()
	for _, h := range hs {
		h.fn(ev)
	}
}

// Len returns the number of subscribed handlers.
func (l *Listeners[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.handlers)
}

// EventHub is an in-process EventSource. Hosts publish into it; tests use
// it directly to simulate input.
type EventHub struct {
	Pointer Listeners[PointerEvent]
	Enter   Listeners[PointerEvent]
	Leave   Listeners[PointerEvent]
	Resize  Listeners[ResizeEvent]
}

// NewEventHub creates an empty hub.
func NewEventHub() *EventHub {
	return &EventHub{}
}

// OnPointerMove implements EventSource.
func (h *EventHub) OnPointerMove(fn func(PointerEvent)) func() {
	return h.Pointer.Subscribe(fn)
}

// OnPointerEnter implements EventSource.
func (h *EventHub) OnPointerEnter(fn func(PointerEvent)) func() {
	return h.Enter.Subscribe(fn)
}

// OnPointerLeave implements EventSource.
func (h *EventHub) OnPointerLeave(fn func(PointerEvent)) func() {
	return h.Leave.Subscribe(fn)
}

// OnResize implements EventSource.
func (h *EventHub) OnResize(fn func(ResizeEvent)) func() {
	return h.Resize.Subscribe(fn)
}

// MovePointer publishes a pointer event.
func (h *EventHub) MovePointer(x, y float64) {
	h.Pointer.Publish(PointerEvent{X: x, Y: y})
}

// EnterPointer publishes a pointer-enter event.
func (h *EventHub) EnterPointer(x, y float64) {
	h.Enter.Publish(PointerEvent{X: x, Y: y})
}

// LeavePointer publishes a pointer-leave event.
func (h *EventHub) LeavePointer(x, y float64) {
	h.Leave.Publish(PointerEvent{X: x, Y: y})
}

// ResizeTo publishes a resize event.
func (h *EventHub) ResizeTo(w, hgt int) {
	h.Resize.Publish(ResizeEvent{Width: w, Height: hgt})
}

// Listening returns the total number of subscribed handlers.
func (h *EventHub) Listening() int {
	return h.Pointer.Len() + h.Enter.Len() + h.Leave.Len() + h.Resize.Len()
}

package page

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Node is an element with text content.
type Node struct {
	ID string

	mu   sync.RWMutex
	text string
}

// Text returns the node's text content.
func (n *Node) Text() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.text
}

// SetText replaces the node's text content.
func (n *Node) SetText(text string) {
	n.mu.Lock()
	n.text = text
	n.mu.Unlock()
}

// Event is a dispatched DOM event.
type Event struct {
	Type string
}

// Listener handles events dispatched on an EventTarget.
type Listener interface {
	HandleEvent(ctx context.Context, ev Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, ev Event)

func (f ListenerFunc) HandleEvent(ctx context.Context, ev Event) {
	f(ctx, ev)
}

// EventTarget keeps listeners per event type.
type EventTarget struct {
	logger *zap.Logger

	mu        sync.Mutex
	listeners map[string][]Listener
}

// NewEventTarget creates an event target with no listeners.
func NewEventTarget(logger *zap.Logger) *EventTarget {
	return &EventTarget{
		logger:    logger,
		listeners: make(map[string][]Listener),
	}
}

// AddEventListener registers l for events of type typ.
func (t *EventTarget) AddEventListener(typ string, l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners[typ] = append(t.listeners[typ], l)
}

// DispatchEvent calls every listener for ev.Type in registration order. A
// panicking listener is logged and the rest still run.
func (t *EventTarget) DispatchEvent(ctx context.Context, ev Event) {
	t.mu.Lock()
	listeners := append([]Listener(nil), t.listeners[ev.Type]...)
	t.mu.Unlock()

	for _, l := range listeners {
		t.call(ctx, l, ev)
	}
}

func (t *EventTarget) call(ctx context.Context, l Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Event listener panicked",
				zap.String("event", ev.Type),
				zap.Error(fmt.Errorf("%v", r)),
			)
		}
	}()
	l.HandleEvent(ctx, ev)
}

// Document is a flat set of nodes addressed by id, plus a body that receives
// events.
type Document struct {
	Body *EventTarget

	nodes map[string]*Node
}

// NewDocument creates a document holding an empty node for each id.
func NewDocument(logger *zap.Logger, ids ...string) *Document {
	doc := &Document{
		Body:  NewEventTarget(logger.With(zap.String("component", "page-body"))),
		nodes: make(map[string]*Node, len(ids)),
	}
	for _, id := range ids {
		doc.nodes[id] = &Node{ID: id}
	}
	return doc
}

// GetElementByID returns the node with the given id, or nil.
func (d *Document) GetElementByID(id string) *Node {
	return d.nodes[id]
}

// Package page is a headless model of the blog page template: a document
// with six named elements and a body click that reloads the post.
package page

import (
	"context"

	"go.uber.org/zap"
)

// Page is a document wired to its click handler.
type Page struct {
	Document *Document
	Elements *Elements

	handler *ClickHandler
}

// New resolves the elements of doc and attaches a click handler to its body.
func New(doc *Document, fetcher Fetcher, logger *zap.Logger, opts ...HandlerOption) (*Page, error) {
	elements, err := ResolveElements(doc)
	if err != nil {
		return nil, err
	}

	handler := NewClickHandler(elements, fetcher, logger, opts...)
	doc.Body.AddEventListener(EventClick, handler)

	return &Page{
		Document: doc,
		Elements: elements,
		handler:  handler,
	}, nil
}

// Click dispatches a click on the body and returns once listeners are done.
func (p *Page) Click(ctx context.Context) {
	p.Document.Body.DispatchEvent(ctx, Event{Type: EventClick})
}

// Snapshot returns the current text of every element, keyed by id.
func (p *Page) Snapshot() map[string]string {
	snap := make(map[string]string, len(ElementIDs))
	for _, id := range ElementIDs {
		snap[id] = p.Document.GetElementByID(id).Text()
	}
	return snap
}

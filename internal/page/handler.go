package page

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// EventClick is the event type the handler listens for.
const EventClick = "click"

// ErrNoPost is logged when a Fetcher returns neither a post nor an error.
var ErrNoPost = errors.New("fetcher returned no post")

// ClickHandler refreshes the page from a fetched post.
type ClickHandler struct {
	elements *Elements
	fetcher  Fetcher
	logger   *zap.Logger

	now     func() time.Time
	timeout time.Duration
}

// HandlerOption configures a ClickHandler.
type HandlerOption func(*ClickHandler)

// WithClock replaces time.Now for the timestamp.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *ClickHandler) {
		h.now = now
	}
}

// WithFetchTimeout bounds each fetch. Zero means no timeout.
func WithFetchTimeout(d time.Duration) HandlerOption {
	return func(h *ClickHandler) {
		h.timeout = d
	}
}

// NewClickHandler creates a handler writing into elements.
func NewClickHandler(elements *Elements, fetcher Fetcher, logger *zap.Logger, opts ...HandlerOption) *ClickHandler {
	h := &ClickHandler{
		elements: elements,
		fetcher:  fetcher,
		logger:   logger.With(zap.String("component", "page-handler")),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleEvent stamps the time, then fetches the post once and applies its
// title and main together. A failed fetch is logged and otherwise ignored.
func (h *ClickHandler) HandleEvent(ctx context.Context, ev Event) {
	h.elements.Timestamp.SetText(strconv.FormatInt(h.now().UnixMilli(), 10))

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	post, err := h.fetcher.Fetch(ctx)
	if err == nil && post == nil {
		err = ErrNoPost
	}
	if err != nil {
		h.logger.Error("Failed to fetch post",
			zap.String("event", ev.Type),
			zap.Error(err),
		)
		return
	}

	h.elements.Title.SetText(post.Title)
	h.elements.Main.SetText(post.Main)
}

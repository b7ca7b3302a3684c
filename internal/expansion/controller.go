package expansion

import "sync"

// Controller tracks which staff card is expanded on narrow viewports. At
// most one card is expanded; every change swaps the single expanded id
// under the lock, so no observer sees two cards open.
type Controller struct {
	mu       sync.Mutex
	expanded string
	onChange func(prev, next string)
}

type Option func(*Controller)

// WithOnChange registers fn to run after each change, outside the lock.
func WithOnChange(fn func(prev, next string)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

func New(opts ...Option) *Controller {
	c := &Controller{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Select expands cardID, collapsing whatever was open. Selecting the card
// already expanded collapses it. Returns the expanded id afterwards.
func (c *Controller) Select(cardID string) string {
	c.mu.Lock()
	prev := c.expanded
	if prev == cardID {
		c.expanded = ""
	} else {
		c.expanded = cardID
	}
	next := c.expanded
	c.mu.Unlock()

	c.notify(prev, next)
	return next
}

func (c *Controller) Collapse() {
	c.mu.Lock()
	prev := c.expanded
	c.expanded = ""
	c.mu.Unlock()

	c.notify(prev, "")
}

func (c *Controller) Expanded() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expanded
}

func (c *Controller) IsExpanded(cardID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cardID != "" && c.expanded == cardID
}

func (c *Controller) notify(prev, next string) {
	if c.onChange != nil && prev != next {
		c.onChange(prev, next)
	}
}

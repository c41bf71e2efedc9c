package client

import (
	"context"
	"errors"
)

// ErrNoMorePages is returned by Next after the last page.
var ErrNoMorePages = errors.New("no more pages")

// PageFetcher loads the page that follows cursor. A nil cursor loads the first page.
type PageFetcher[T any] func(ctx context.Context, cursor *uint) (*Page[T], error)

// Pager walks a cursor listing and keeps every page it has fetched, so moving
// back never hits the network.
type Pager[T any] struct {
	fetch PageFetcher[T]
	pages []*Page[T]
	index int
}

func NewPager[T any](fetch PageFetcher[T]) *Pager[T] {
	return &Pager[T]{fetch: fetch, index: -1}
}

// NoticePager pages through notice.list for one building complex.
func (c *Client) NoticePager(buildingComplexID uint, limit int) *Pager[Notice] {
	return NewPager(func(ctx context.Context, cursor *uint) (*Page[Notice], error) {
		return c.ListNotices(ctx, buildingComplexID, limit, cursor)
	})
}

// InfiniteNoticePager pages through the public feed of a building complex.
func (c *Client) InfiniteNoticePager(buildingComplexID uint, limit int) *Pager[Notice] {
	return NewPager(func(ctx context.Context, cursor *uint) (*Page[Notice], error) {
		return c.InfiniteListNotices(ctx, buildingComplexID, limit, cursor)
	})
}

// Next moves to the following page. Cached pages are returned directly; past
// the last cached page the next one is fetched and appended first. On a failed
// fetch the position does not change.
func (p *Pager[T]) Next(ctx context.Context) (*Page[T], error) {
	if p.index+1 < len(p.pages) {
		p.index++
		return p.pages[p.index], nil
	}

	var cursor *uint
	if n := len(p.pages); n > 0 {
		cursor = p.pages[n-1].NextCursor
		if cursor == nil {
			return nil, ErrNoMorePages
		}
	}

	page, err := p.fetch(ctx, cursor)
	if err != nil {
		return nil, err
	}
	p.pages = append(p.pages, page)
	p.index++
	return page, nil
}

// Prev moves to the previous cached page. It reports false on the first page.
func (p *Pager[T]) Prev() (*Page[T], bool) {
	if p.index <= 0 {
		return nil, false
	}
	p.index--
	return p.pages[p.index], true
}

// Current returns the page at the current position, or nil before the first Next.
func (p *Pager[T]) Current() *Page[T] {
	if p.index < 0 {
		return nil
	}
	return p.pages[p.index]
}

// Index is the zero-based position of the current page, -1 before the first Next.
func (p *Pager[T]) Index() int {
	return p.index
}

// HasNext reports whether Next can return another page.
func (p *Pager[T]) HasNext() bool {
	if p.index+1 < len(p.pages) || len(p.pages) == 0 {
		return true
	}
	return p.pages[len(p.pages)-1].NextCursor != nil
}

// Items flattens every fetched page in order.
func (p *Pager[T]) Items() []T {
	var items []T
	for _, page := range p.pages {
		items = append(items, page.Items...)
	}
	return items
}

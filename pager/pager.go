package pager

import (
	"context"
	stderrors "errors"
	"iter"
	"sync"

	"github.com/kbukum/armkit/logger"
	"github.com/kbukum/armkit/observability"
)

// ErrNoMorePages is returned by NextPage after the last page.
var ErrNoMorePages = stderrors.New("pager: no more pages")

// Handler tells a Pager how to fetch pages of type T.
type Handler[T any] struct {
	// Fetcher retrieves one page. token is nil for the first page and the
	// previous page's continuation token afterwards.
	Fetcher func(ctx context.Context, token *string) (T, error)
	// NextLink extracts the continuation token from a page. An empty string
	// ends the sequence.
	NextLink func(page T) string

	// Operation names the collection in logs and metrics.
	Operation string
	Metrics   *observability.HTTPMetrics
}

// Pager walks a paginated collection one page at a time. It is pull-based:
// nothing is fetched until NextPage is called and no page is prefetched.
// A Pager is safe for concurrent use; calls are serialised.
type Pager[T any] struct {
	handler Handler[T]

	mu      sync.Mutex
	token   *string
	pages   int
	done    bool
	err     error
	current T
}

// New creates a pager positioned before the first page.
func New[T any](h Handler[T]) *Pager[T] {
	return &Pager[T]{handler: h}
}

// More reports whether NextPage may return another page. It stays true after
// a failure so the error can be observed.
func (p *Pager[T]) More() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.done
}

// NextPage fetches the next page. A failed fetch ends the sequence: the same
// error is returned by every later call.
func (p *Pager[T]) NextPage(ctx context.Context) (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var zero T
	if p.err != nil {
		return zero, p.err
	}
	if p.done {
		return zero, ErrNoMorePages
	}

	page, err := p.handler.Fetcher(ctx, p.token)
	if err != nil {
		p.err = err
		logger.WithComponent("pager").WithContext(ctx).Debug("page fetch failed", logger.MergeWithError(logger.Fields(
			logger.FieldOperation, p.handler.Operation,
			logger.FieldPage, p.pages+1,
		), err))
		return zero, err
	}
	p.pages++
	p.current = page
	p.handler.Metrics.RecordPage(ctx, p.handler.Operation)

	if next := p.handler.NextLink(page); next != "" {
		p.token = &next
	} else {
		p.token = nil
		p.done = true
	}
	return page, nil
}

// Current returns the last page fetched.
func (p *Pager[T]) Current() T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Next is the iterator form of NextPage. It returns false once the sequence
// is exhausted or closed.
func (p *Pager[T]) Next(ctx context.Context) (T, bool, error) {
	if !p.More() {
		var zero T
		return zero, false, nil
	}
	page, err := p.NextPage(ctx)
	if err != nil {
		return page, false, err
	}
	return page, true, nil
}

// Close stops the pager. Later calls to Next report exhaustion.
func (p *Pager[T]) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = true
	p.token = nil
	return nil
}

// Pages ranges over the remaining pages. Iteration stops after the first
// error, which is yielded with a zero page.
func (p *Pager[T]) Pages(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for p.More() {
			page, err := p.NextPage(ctx)
			if err != nil {
				if stderrors.Is(err, ErrNoMorePages) {
					return
				}
				yield(page, err)
				return
			}
			if !yield(page, nil) {
				return
			}
		}
	}
}

// All fetches every remaining page.
func (p *Pager[T]) All(ctx context.Context) ([]T, error) {
	var pages []T
	for page, err := range p.Pages(ctx) {
		if err != nil {
			return pages, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// Items flattens the remaining pages of p into their elements.
func Items[T, V any](ctx context.Context, p *Pager[T], values func(T) []V) iter.Seq2[V, error] {
	return func(yield func(V, error) bool) {
		for page, err := range p.Pages(ctx) {
			if err != nil {
				var zero V
				yield(zero, err)
				return
			}
			for _, v := range values(page) {
				if !yield(v, nil) {
					return
				}
			}
		}
	}
}

// CollectItems gathers every remaining element of p.
func CollectItems[T, V any](ctx context.Context, p *Pager[T], values func(T) []V) ([]V, error) {
	var out []V
	for v, err := range Items(ctx, p, values) {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

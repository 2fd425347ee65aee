package pager

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"
)

type page struct {
	Value    []int
	NextLink string
}

// scripted serves pages keyed by continuation token; "" is the first page.
type scripted struct {
	mu     sync.Mutex
	pages  map[string]page
	fail   map[string]error
	tokens []string
}

func (s *scripted) handler() Handler[page] {
	return Handler[page]{
		Fetcher: func(_ context.Context, token *string) (page, error) {
			key := ""
			if token != nil {
				key = *token
			}
			s.mu.Lock()
			defer s.mu.Unlock()
			s.tokens = append(s.tokens, key)
			if err := s.fail[key]; err != nil {
				return page{}, err
			}
			p, ok := s.pages[key]
			if !ok {
				return page{}, fmt.Errorf("unknown token %q", key)
			}
			return p, nil
		},
		NextLink: func(p page) string { return p.NextLink },
	}
}

func threePages() *scripted {
	return &scripted{pages: map[string]page{
		"":   {Value: []int{1, 2}, NextLink: "t1"},
		"t1": {Value: []int{3}, NextLink: "t2"},
		"t2": {Value: []int{4, 5}},
	}}
}

func TestPager_YieldsPagesInOrder(t *testing.T) {
	s := threePages()
	p := New(s.handler())

	var got [][]int
	for p.More() {
		pg, err := p.NextPage(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, pg.Value)
	}
	if fmt.Sprint(got) != "[[1 2] [3] [4 5]]" {
		t.Errorf("unexpected pages %v", got)
	}
	if fmt.Sprint(s.tokens) != "[ t1 t2]" {
		t.Errorf("unexpected token sequence %q", s.tokens)
	}
	if _, err := p.NextPage(context.Background()); !stderrors.Is(err, ErrNoMorePages) {
		t.Errorf("expected ErrNoMorePages, got %v", err)
	}
}

func TestPager_FirstFetchPassesNilToken(t *testing.T) {
	var sawNil bool
	p := New(Handler[page]{
		Fetcher: func(_ context.Context, token *string) (page, error) {
			sawNil = token == nil
			return page{Value: []int{1}}, nil
		},
		NextLink: func(p page) string { return p.NextLink },
	})
	if _, err := p.NextPage(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sawNil {
		t.Error("first fetch must receive a nil token")
	}
	if p.More() {
		t.Error("a page without a next link terminates the pager")
	}
}

func TestPager_ErrorIsSticky(t *testing.T) {
	s := threePages()
	boom := stderrors.New("boom")
	s.fail = map[string]error{"t1": boom}
	p := New(s.handler())

	if _, err := p.NextPage(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := p.NextPage(context.Background()); !stderrors.Is(err, boom) {
			t.Fatalf("call %d: expected boom, got %v", i, err)
		}
	}
	if len(s.tokens) != 2 {
		t.Errorf("expected no fetch after the failure, got %d fetches", len(s.tokens))
	}
	if !p.More() {
		t.Error("More stays true so the error stays observable")
	}
}

func TestPager_Deterministic(t *testing.T) {
	s := threePages()
	a, errA := New(s.handler()).All(context.Background())
	b, errB := New(s.handler()).All(context.Background())
	if errA != nil || errB != nil {
		t.Fatalf("unexpected errors: %v, %v", errA, errB)
	}
	if fmt.Sprint(a) != fmt.Sprint(b) {
		t.Errorf("expected identical sequences, got %v and %v", a, b)
	}
	if len(a) != 3 {
		t.Errorf("expected 3 pages, got %d", len(a))
	}
}

func TestPager_NextAndClose(t *testing.T) {
	p := New(threePages().handler())
	pg, ok, err := p.Next(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected a page, got ok=%v err=%v", ok, err)
	}
	if fmt.Sprint(pg.Value) != "[1 2]" {
		t.Errorf("unexpected first page %v", pg.Value)
	}
	if fmt.Sprint(p.Current().Value) != "[1 2]" {
		t.Errorf("unexpected current page %v", p.Current().Value)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if _, ok, err := p.Next(context.Background()); ok || err != nil {
		t.Errorf("expected exhaustion after Close, got ok=%v err=%v", ok, err)
	}
}

func TestPager_PagesStopsOnBreak(t *testing.T) {
	s := threePages()
	p := New(s.handler())
	for range p.Pages(context.Background()) {
		break
	}
	if len(s.tokens) != 1 {
		t.Errorf("expected a single fetch, got %d", len(s.tokens))
	}
	rest, err := p.All(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rest) != 2 {
		t.Errorf("expected the remaining 2 pages, got %d", len(rest))
	}
}

func TestPager_PagesYieldsError(t *testing.T) {
	s := threePages()
	s.fail = map[string]error{"t2": stderrors.New("boom")}

	var pages int
	var gotErr error
	for _, err := range New(s.handler()).Pages(context.Background()) {
		if err != nil {
			gotErr = err
			continue
		}
		pages++
	}
	if pages != 2 || gotErr == nil {
		t.Errorf("expected 2 pages then an error, got %d pages, err=%v", pages, gotErr)
	}
}

func TestItems(t *testing.T) {
	values := func(p page) []int { return p.Value }

	got, err := CollectItems(context.Background(), New(threePages().handler()), values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fmt.Sprint(got) != "[1 2 3 4 5]" {
		t.Errorf("unexpected items %v", got)
	}

	var first []int
	for v, err := range Items(context.Background(), New(threePages().handler()), values) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		first = append(first, v)
		if len(first) == 3 {
			break
		}
	}
	if fmt.Sprint(first) != "[1 2 3]" {
		t.Errorf("unexpected items %v", first)
	}

	s := threePages()
	s.fail = map[string]error{"t1": stderrors.New("boom")}
	got, err = CollectItems(context.Background(), New(s.handler()), values)
	if err == nil {
		t.Fatal("expected an error")
	}
	if fmt.Sprint(got) != "[1 2]" {
		t.Errorf("expected items before the failure, got %v", got)
	}
}

func TestPager_ConcurrentNextPage(t *testing.T) {
	s := &scripted{pages: map[string]page{}}
	for i := 0; i < 20; i++ {
		next := ""
		if i < 19 {
			next = fmt.Sprintf("t%d", i+1)
		}
		key := ""
		if i > 0 {
			key = fmt.Sprintf("t%d", i)
		}
		s.pages[key] = page{Value: []int{i}, NextLink: next}
	}
	p := New(s.handler())

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := map[int]bool{}
	for w := 0; w < 5; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				pg, err := p.NextPage(context.Background())
				if err != nil {
					return
				}
				mu.Lock()
				seen[pg.Value[0]] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(seen) != 20 {
		t.Errorf("expected every page exactly once across workers, got %d", len(seen))
	}
	if len(s.tokens) != 20 {
		t.Errorf("expected 20 fetches, got %d", len(s.tokens))
	}
}

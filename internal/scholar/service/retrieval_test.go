package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scholar-fetch/internal/scholar/model"
)

func scholarships(n int) []model.Scholarship {
	out := make([]model.Scholarship, n)
	for i := range out {
		out[i] = model.Scholarship{
			ID:   fmt.Sprintf("src-award-%d-100", i),
			Name: fmt.Sprintf("Award %d", i),
		}
	}
	return out
}

type fakePager struct {
	items []model.Scholarship
	total int64
	err   error
	calls int
}

func (p *fakePager) ReadPage(_ context.Context, _ int) ([]model.Scholarship, int64, error) {
	p.calls++
	return p.items, p.total, p.err
}

type fakeStore struct {
	pager      *fakePager
	pagersMade int

	mu     sync.Mutex
	synced [][]model.Scholarship
}

func (s *fakeStore) NewPager(int) PageReader {
	s.pagersMade++
	return s.pager
}

func (s *fakeStore) SyncScholarships(_ context.Context, items []model.Scholarship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.synced = append(s.synced, items)
	return nil
}

func (s *fakeStore) syncCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.synced)
}

type fakeCache struct {
	items []model.Scholarship
	reads int
	wrote []model.Scholarship
}

func (c *fakeCache) Get(context.Context) ([]model.Scholarship, bool) {
	c.reads++
	return c.items, len(c.items) > 0
}

func (c *fakeCache) Set(_ context.Context, items []model.Scholarship) error {
	c.wrote = items
	return nil
}

type fakeScraper struct {
	result []model.Scholarship
	calls  int
}

func (f *fakeScraper) ScrapeAll(_ context.Context, _ []model.Source, _, _ int, onProgress func(int)) []model.Scholarship {
	f.calls++
	if onProgress != nil {
		onProgress(len(f.result))
	}
	return f.result
}

func newRetrieval(st *fakeStore, c *fakeCache, sc *fakeScraper) *Retrieval {
	return &Retrieval{
		Log:          zap.NewNop(),
		Store:        st,
		Cache:        c,
		Scraper:      sc,
		Sources:      []model.Source{{ID: "src"}},
		BatchSize:    5,
		LiveMaxPages: 2,
	}
}

func TestGetScholarships_StoreFastPath(t *testing.T) {
	stored := scholarships(5)
	st := &fakeStore{pager: &fakePager{items: stored, total: 42}}
	c := &fakeCache{}
	sc := &fakeScraper{}

	items, total := newRetrieval(st, c, sc).NewSession().GetScholarships(context.Background(), 1, 5, nil)
	require.Equal(t, int64(42), total)
	require.Equal(t, stored, items)
	// neither fallback layer is touched on the fast path
	require.Zero(t, c.reads)
	require.Zero(t, sc.calls)
}

func TestGetScholarships_EmptyStoreFallsBackToCache(t *testing.T) {
	cached := scholarships(30)
	st := &fakeStore{pager: &fakePager{total: 0}} // store empty, not an error
	c := &fakeCache{items: cached}
	sc := &fakeScraper{}

	items, total := newRetrieval(st, c, sc).NewSession().GetScholarships(context.Background(), 2, 10, nil)
	require.Equal(t, int64(30), total)
	require.Equal(t, cached[10:20], items)
	require.Zero(t, sc.calls)
}

func TestGetScholarships_StoreErrorFallsBackToCache(t *testing.T) {
	cached := scholarships(3)
	st := &fakeStore{pager: &fakePager{err: errors.New("store down")}}
	c := &fakeCache{items: cached}

	items, total := newRetrieval(st, c, &fakeScraper{}).NewSession().GetScholarships(context.Background(), 1, 10, nil)
	require.Equal(t, int64(3), total)
	require.Len(t, items, 3)
}

func TestGetScholarships_LiveScrapeSeedsCacheAndStore(t *testing.T) {
	scraped := scholarships(12)
	st := &fakeStore{pager: &fakePager{total: 0}}
	c := &fakeCache{}
	sc := &fakeScraper{result: scraped}

	var progress []int
	items, total := newRetrieval(st, c, sc).NewSession().GetScholarships(
		context.Background(), 1, 5,
		func(n int) { progress = append(progress, n) },
	)

	require.Equal(t, int64(12), total)
	require.Len(t, items, 5)
	require.Equal(t, []int{12}, progress)
	require.Len(t, c.wrote, 12)

	// store seeding happens off the request path
	require.Eventually(t, func() bool { return st.syncCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestGetScholarships_AllLayersEmpty(t *testing.T) {
	st := &fakeStore{pager: &fakePager{total: 0}}
	items, total := newRetrieval(st, &fakeCache{}, &fakeScraper{}).NewSession().
		GetScholarships(context.Background(), 1, 20, nil)

	// total unavailability degrades to an empty page, never an error
	require.Empty(t, items)
	require.Zero(t, total)
}

func TestGetScholarships_CachePageBeyondEnd(t *testing.T) {
	st := &fakeStore{pager: &fakePager{total: 0}}
	c := &fakeCache{items: scholarships(7)}

	items, total := newRetrieval(st, c, &fakeScraper{}).NewSession().GetScholarships(context.Background(), 5, 10, nil)
	require.Equal(t, int64(7), total)
	require.Empty(t, items)
}

func TestSession_ReusesPagerPerPageSize(t *testing.T) {
	st := &fakeStore{pager: &fakePager{items: scholarships(2), total: 2}}
	sess := newRetrieval(st, &fakeCache{}, &fakeScraper{}).NewSession()

	sess.GetScholarships(context.Background(), 1, 10, nil)
	sess.GetScholarships(context.Background(), 2, 10, nil)
	require.Equal(t, 2, st.pager.calls)
	// one pager per page size per session; cursors survive across calls
	require.Equal(t, 1, st.pagersMade)
}

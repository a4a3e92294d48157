package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/xcview/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// fakeProfiles is a switchable active profile
type fakeProfiles struct {
	mu      sync.Mutex
	current string
}

func (p *fakeProfiles) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *fakeProfiles) Set(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = name
}

// fakeSource serves per-profile listings and counts calls
type fakeSource struct {
	categoryCalls atomic.Int32
	itemCalls     atomic.Int32
	infoCalls     atomic.Int32

	fail    atomic.Bool
	gate    chan struct{} // when non-nil, fetches block until closed
	onFetch func(profile string)

	info *domain.MediaInfo
}

func (s *fakeSource) wait(profile string) {
	if s.onFetch != nil {
		s.onFetch(profile)
	}
	if s.gate != nil {
		<-s.gate
	}
}

func (s *fakeSource) FetchCategories(ctx context.Context, profile string, t domain.MediaType) ([]domain.Category, error) {
	s.categoryCalls.Add(1)
	s.wait(profile)
	if s.fail.Load() {
		return nil, domain.ErrNetwork
	}
	return []domain.Category{{ID: "1", Name: "US " + profile + " " + t.String()}}, nil
}

func (s *fakeSource) FetchCategoryItems(ctx context.Context, profile string, t domain.MediaType) ([]domain.MediaItem, error) {
	s.itemCalls.Add(1)
	s.wait(profile)
	if s.fail.Load() {
		return nil, domain.ErrNetwork
	}
	return []domain.MediaItem{{ID: "10", Name: profile, Type: t, CategoryID: "1"}}, nil
}

func (s *fakeSource) FetchMediaInfo(ctx context.Context, profile string, t domain.MediaType, id string) (*domain.MediaInfo, error) {
	s.infoCalls.Add(1)
	if s.fail.Load() {
		return nil, domain.ErrNetwork
	}
	if s.info == nil {
		return nil, domain.ErrNotFound
	}
	info := *s.info
	return &info, nil
}

func setupCache(t *testing.T) (*Cache, *fakeSource, *fakeProfiles, *Metrics) {
	t.Helper()
	src := &fakeSource{}
	profiles := &fakeProfiles{current: "alice"}
	metrics := NewMetrics(prometheus.NewRegistry())
	return NewCache(src, profiles, metrics, nil), src, profiles, metrics
}

func TestCache_SameProfileFetchesOnce(t *testing.T) {
	c, src, _, metrics := setupCache(t)
	ctx := context.Background()

	first := c.RetrieveCategories(ctx, domain.MediaTypeLive)
	second := c.RetrieveCategories(ctx, domain.MediaTypeLive)

	if got := src.categoryCalls.Load(); got != 1 {
		t.Fatalf("expected 1 fetch, got %d", got)
	}
	if len(first) != 1 || len(second) != 1 || first[0].Name != second[0].Name {
		t.Errorf("expected identical listings, got %v and %v", first, second)
	}
	if got := testutil.ToFloat64(metrics.Hits.WithLabelValues(kindCategories, "live")); got != 1 {
		t.Errorf("expected 1 hit, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.Misses.WithLabelValues(kindCategories, "live")); got != 1 {
		t.Errorf("expected 1 miss, got %v", got)
	}
}

func TestCache_ProfileChangeRefetches(t *testing.T) {
	c, src, profiles, _ := setupCache(t)
	ctx := context.Background()

	steps := []struct {
		profile   string
		wantCalls int32
		wantName  string
	}{
		{"alice", 1, "alice"},
		{"alice", 1, "alice"},
		{"bob", 2, "bob"},
		{"bob", 2, "bob"},
		{"alice", 3, "alice"},
	}
	for i, step := range steps {
		profiles.Set(step.profile)
		items := c.RetrieveCategoryInfo(ctx, domain.MediaTypeMovie)
		if got := src.itemCalls.Load(); got != step.wantCalls {
			t.Errorf("step %d: expected %d fetches, got %d", i, step.wantCalls, got)
		}
		if len(items) != 1 || items[0].Name != step.wantName {
			t.Errorf("step %d: expected items of %s, got %v", i, step.wantName, items)
		}
	}
}

func TestCache_MediaTypesAreIndependent(t *testing.T) {
	c, src, _, _ := setupCache(t)
	ctx := context.Background()

	for _, mt := range domain.MediaTypes {
		c.RetrieveCategories(ctx, mt)
	}
	for _, mt := range domain.MediaTypes {
		c.RetrieveCategories(ctx, mt)
	}
	if got := src.categoryCalls.Load(); got != 3 {
		t.Errorf("expected one fetch per media type, got %d", got)
	}
}

func TestCache_FailureIsNotCached(t *testing.T) {
	c, src, _, metrics := setupCache(t)
	ctx := context.Background()

	src.fail.Store(true)
	got := c.RetrieveCategories(ctx, domain.MediaTypeSeries)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil listing on failure, got %#v", got)
	}
	if _, _, ok := c.Cached(domain.MediaTypeSeries); ok {
		t.Error("expected no cache entry after failure")
	}

	src.fail.Store(false)
	got = c.RetrieveCategories(ctx, domain.MediaTypeSeries)
	if len(got) != 1 {
		t.Fatalf("expected retry to succeed, got %v", got)
	}
	if calls := src.categoryCalls.Load(); calls != 2 {
		t.Errorf("expected 2 fetches, got %d", calls)
	}
	if f := testutil.ToFloat64(metrics.Failures.WithLabelValues(kindCategories, "series")); f != 1 {
		t.Errorf("expected 1 failure, got %v", f)
	}
}

func TestCache_StaleResultDiscarded(t *testing.T) {
	c, src, profiles, metrics := setupCache(t)
	ctx := context.Background()

	// Switch profile while the fetch is in flight
	src.onFetch = func(profile string) {
		if profile == "alice" {
			profiles.Set("bob")
		}
	}

	got := c.RetrieveCategories(ctx, domain.MediaTypeLive)
	if len(got) != 0 {
		t.Fatalf("expected stale result to be discarded, got %v", got)
	}
	if d := testutil.ToFloat64(metrics.Discarded.WithLabelValues(kindCategories, "live")); d != 1 {
		t.Errorf("expected 1 discarded result, got %v", d)
	}

	src.onFetch = nil
	got = c.RetrieveCategories(ctx, domain.MediaTypeLive)
	if len(got) != 1 || got[0].Name != "US bob live" {
		t.Errorf("expected bob's listing, got %v", got)
	}
	if calls := src.categoryCalls.Load(); calls != 2 {
		t.Errorf("expected a fresh fetch for bob, got %d calls", calls)
	}
}

func TestCache_ConcurrentFetchesCoalesce(t *testing.T) {
	c, src, _, _ := setupCache(t)
	src.gate = make(chan struct{})

	var started sync.WaitGroup
	var done sync.WaitGroup
	results := make([][]domain.Category, 5)
	for i := range results {
		started.Add(1)
		done.Add(1)
		go func(i int) {
			defer done.Done()
			started.Done()
			results[i] = c.RetrieveCategories(context.Background(), domain.MediaTypeMovie)
		}(i)
	}
	started.Wait()

	// Wait until the first fetch is in flight before releasing it
	deadline := time.Now().Add(2 * time.Second)
	for src.categoryCalls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	done.Wait()

	if calls := src.categoryCalls.Load(); calls != 1 {
		t.Errorf("expected a single in-flight fetch, got %d", calls)
	}
	for i, r := range results {
		if len(r) != 1 {
			t.Errorf("waiter %d: expected shared result, got %v", i, r)
		}
	}
}

func TestCache_CachedAndInvalidate(t *testing.T) {
	c, src, profiles, _ := setupCache(t)
	ctx := context.Background()

	if _, _, ok := c.Cached(domain.MediaTypeLive); ok {
		t.Fatal("expected empty cache")
	}
	c.RetrieveCategories(ctx, domain.MediaTypeLive)
	c.RetrieveCategoryInfo(ctx, domain.MediaTypeLive)

	cats, items, ok := c.Cached(domain.MediaTypeLive)
	if !ok || len(cats) != 1 || len(items) != 1 {
		t.Fatalf("expected cached listings, got %v %v %v", cats, items, ok)
	}

	profiles.Set("bob")
	if _, _, ok := c.Cached(domain.MediaTypeLive); ok {
		t.Error("expected listings of another profile to be hidden")
	}
	profiles.Set("alice")

	c.Invalidate(domain.MediaTypeLive)
	c.RetrieveCategories(ctx, domain.MediaTypeLive)
	if calls := src.categoryCalls.Load(); calls != 2 {
		t.Errorf("expected refetch after Invalidate, got %d calls", calls)
	}

	c.InvalidateAll()
	c.RetrieveCategories(ctx, domain.MediaTypeLive)
	if calls := src.categoryCalls.Load(); calls != 3 {
		t.Errorf("expected refetch after InvalidateAll, got %d calls", calls)
	}
}

func TestResolver_ProvidedSkipsNetwork(t *testing.T) {
	src := &fakeSource{}
	r := NewResolver(src, &fakeProfiles{current: "alice"}, nil)

	provided := &domain.MediaInfo{ID: "1", Name: "Given"}
	got, ok := r.Resolve(context.Background(), domain.MediaTypeMovie, "1", provided)
	if !ok || got != provided {
		t.Fatalf("expected provided info back, got %v %v", got, ok)
	}
	if calls := src.infoCalls.Load(); calls != 0 {
		t.Errorf("expected no fetch, got %d", calls)
	}
}

func TestResolver_Failures(t *testing.T) {
	src := &fakeSource{}
	r := NewResolver(src, &fakeProfiles{current: "alice"}, nil)

	if got, ok := r.Resolve(context.Background(), domain.MediaTypeMovie, "1", nil); ok || got != nil {
		t.Errorf("expected not found to yield nil, got %v", got)
	}

	src.fail.Store(true)
	if got, ok := r.Resolve(context.Background(), domain.MediaTypeMovie, "1", nil); ok || got != nil {
		t.Errorf("expected network failure to yield nil, got %v", got)
	}
}

func TestResolver_SeriesSeasons(t *testing.T) {
	src := &fakeSource{info: &domain.MediaInfo{
		ID:   "7",
		Type: domain.MediaTypeSeries,
		Episodes: []domain.Episode{
			{Season: 1, Episode: 1},
			{Season: 1, Episode: 2},
			{Season: 0, Episode: 1},
			{Season: 3, Episode: 1},
			{Season: 2, Episode: 1},
			{Season: 3, Episode: 2},
		},
	}}
	r := NewResolver(src, &fakeProfiles{current: "alice"}, nil)

	info, ok := r.Resolve(context.Background(), domain.MediaTypeSeries, "7", nil)
	if !ok {
		t.Fatal("expected info")
	}
	want := []int{1, 3, 2}
	if len(info.Seasons) != len(want) {
		t.Fatalf("expected seasons %v, got %v", want, info.Seasons)
	}
	for i := range want {
		if info.Seasons[i] != want[i] {
			t.Errorf("expected seasons %v, got %v", want, info.Seasons)
			break
		}
	}
}

func TestCache_FailedRefetchClearsOtherProfileEntry(t *testing.T) {
	c, src, profiles, _ := setupCache(t)
	ctx := context.Background()

	c.RetrieveCategories(ctx, domain.MediaTypeLive)

	profiles.Set("bob")
	src.fail.Store(true)
	if got := c.RetrieveCategories(ctx, domain.MediaTypeLive); len(got) != 0 {
		t.Fatalf("expected empty listing for failed fetch, got %v", got)
	}
	if _, _, ok := c.Cached(domain.MediaTypeLive); ok {
		t.Error("expected no cached listing after failed refetch")
	}

	// Back to alice: the last fetch for this type was bob's, so fetch again
	profiles.Set("alice")
	src.fail.Store(false)
	got := c.RetrieveCategories(ctx, domain.MediaTypeLive)
	if calls := src.categoryCalls.Load(); calls != 3 {
		t.Errorf("expected a fresh fetch for alice, got %d calls", calls)
	}
	if len(got) != 1 || got[0].Name != "US alice live" {
		t.Errorf("expected alice's listing, got %v", got)
	}
}

func TestCache_ReturnsCopies(t *testing.T) {
	c, _, _, _ := setupCache(t)
	ctx := context.Background()

	first := c.RetrieveCategories(ctx, domain.MediaTypeMovie)
	first[0].Name = "changed"

	second := c.RetrieveCategories(ctx, domain.MediaTypeMovie)
	if second[0].Name == "changed" {
		t.Error("expected caller changes not to reach the cache")
	}
}

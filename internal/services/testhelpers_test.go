package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quietwaters-app/quietwaters-backend/internal/catalog"
	"github.com/quietwaters-app/quietwaters-backend/internal/types"
)

// fakeClock is a settable clock shared across service tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(at time.Time) *fakeClock {
	return &fakeClock{now: at}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = at
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fixedRand pins the jitter to exactly 1.0 (0.8 + 0.5*0.4) and makes
// shuffles no-ops, so rankings are fully determined by the weights.
type fixedRand struct{}

func (fixedRand) Float64() float64 { return 0.5 }

func (fixedRand) Shuffle(n int, swap func(i, j int)) {}

type fakeContentRepo struct {
	items []*types.ContentItem
	err   error
}

func (f *fakeContentRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.ContentItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func (f *fakeContentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ContentItem, error) {
	return nil, nil
}

func (f *fakeContentRepo) Upsert(ctx context.Context, tx *gorm.DB, items []*types.ContentItem) error {
	return nil
}

type fakeKV struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string][]byte)}
}

func (f *fakeKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, false, f.err
	}
	raw, ok := f.data[key]
	return raw, ok, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, val []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.data[key] = val
	return nil
}

func (f *fakeKV) Del(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeKV) Close() error { return nil }

type fakeStreakRepo struct {
	state *types.StreakState
	err   error
}

func (f *fakeStreakRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.StreakState, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.state, nil
}

func (f *fakeStreakRepo) Save(ctx context.Context, tx *gorm.DB, state *types.StreakState) error {
	if f.err != nil {
		return f.err
	}
	f.state = state
	return nil
}

type fakeVerseProvider struct {
	curated []catalog.CuratedVerse
	texts   map[string][]catalog.VerseText
}

func (f *fakeVerseProvider) CuratedVerses() []catalog.CuratedVerse { return f.curated }

func (f *fakeVerseProvider) Verses(book string, chapter int) []catalog.VerseText {
	if f.texts == nil {
		return nil
	}
	return f.texts[book]
}

type fakePlatform struct {
	mu        sync.Mutex
	cancelled []uuid.UUID
	scheduled map[uuid.UUID][]*types.NotificationRequest
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{scheduled: make(map[uuid.UUID][]*types.NotificationRequest)}
}

func (f *fakePlatform) CancelAll(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, userID)
	delete(f.scheduled, userID)
	return nil
}

func (f *fakePlatform) Schedule(ctx context.Context, userID uuid.UUID, reqs []*types.NotificationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled[userID] = reqs
	return nil
}

func makeItem(t types.ContentType, opts ...func(*types.ContentItem)) *types.ContentItem {
	item := &types.ContentItem{
		ID:            uuid.New(),
		Type:          t,
		TemplateText:  "Lord, be near to {name} today.",
		TimeSlots:     types.EncodeStrings(nil),
		LifeSeasons:   types.EncodeStrings(nil),
		Burdens:       types.EncodeStrings(nil),
		FaithLevelMin: types.FaithJustCurious,
	}
	for _, opt := range opts {
		opt(item)
	}
	return item
}

func withBurdens(burdens ...string) func(*types.ContentItem) {
	return func(item *types.ContentItem) { item.Burdens = types.EncodeStrings(burdens) }
}

func withSeasons(seasons ...string) func(*types.ContentItem) {
	return func(item *types.ContentItem) { item.LifeSeasons = types.EncodeStrings(seasons) }
}

func withSlots(slots ...string) func(*types.ContentItem) {
	return func(item *types.ContentItem) { item.TimeSlots = types.EncodeStrings(slots) }
}

func withFaithMin(level types.FaithLevel) func(*types.ContentItem) {
	return func(item *types.ContentItem) { item.FaithLevelMin = level }
}

func withProOnly() func(*types.ContentItem) {
	return func(item *types.ContentItem) { item.IsProOnly = true }
}

func withVerse(ref, text string) func(*types.ContentItem) {
	return func(item *types.ContentItem) {
		item.VerseReference = ref
		item.VerseText = text
	}
}

func baseProfile() types.ProfileSnapshot {
	return types.ProfileSnapshot{
		UserID:     uuid.New(),
		FirstName:  "Hannah",
		FaithLevel: types.FaithGrowing,
	}
}

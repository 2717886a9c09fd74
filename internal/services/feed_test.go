package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quietwaters-app/quietwaters-backend/internal/apierr"
	"github.com/quietwaters-app/quietwaters-backend/internal/logger"
	"github.com/quietwaters-app/quietwaters-backend/internal/types"
)

func newFeedService(repo *fakeContentRepo, clock *fakeClock) FeedService {
	scoring := NewScoringService(logger.NewNop(), fixedRand{})
	return NewFeedService(logger.NewNop(), repo, scoring, clock)
}

func richCatalog(perType int) []*types.ContentItem {
	var items []*types.ContentItem
	for _, ct := range []types.ContentType{
		types.ContentTypePrayer,
		types.ContentTypeVerse,
		types.ContentTypeDevotional,
		types.ContentTypeQuote,
		types.ContentTypeGuidedPrayer,
		types.ContentTypeReflection,
	} {
		for i := 0; i < perType; i++ {
			items = append(items, makeItem(ct))
		}
	}
	return items
}

func testClock() *fakeClock {
	return newFakeClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
}

func TestGenerateBatchQuotaConformance(t *testing.T) {
	repo := &fakeContentRepo{items: richCatalog(10)}
	svc := newFeedService(repo, testClock())

	batch, err := svc.GenerateBatch(context.Background(), baseProfile(), 20, nil)
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}
	if len(batch) != 20 {
		t.Fatalf("batch size %d, want 20", len(batch))
	}

	counts := make(map[types.ContentType]int)
	for _, item := range batch {
		counts[item.Type]++
	}
	wants := map[types.ContentType]int{
		types.ContentTypePrayer:       7,
		types.ContentTypeVerse:        6,
		types.ContentTypeDevotional:   3,
		types.ContentTypeQuote:        2,
		types.ContentTypeGuidedPrayer: 1,
		types.ContentTypeReflection:   1,
	}
	for ct, want := range wants {
		if counts[ct] < want {
			t.Fatalf("type %s count %d, want at least %d (counts=%v)", ct, counts[ct], want, counts)
		}
	}
}

func TestGenerateBatchExcludesRequestedIDs(t *testing.T) {
	items := richCatalog(3)
	repo := &fakeContentRepo{items: items}
	svc := newFeedService(repo, testClock())

	exclude := map[uuid.UUID]struct{}{
		items[0].ID: {},
		items[5].ID: {},
	}
	batch, err := svc.GenerateBatch(context.Background(), baseProfile(), 18, exclude)
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}
	for _, item := range batch {
		if _, ok := exclude[item.ID]; ok {
			t.Fatalf("excluded id %s returned", item.ID)
		}
	}
}

func TestGenerateBatchInterleaving(t *testing.T) {
	var items []*types.ContentItem
	for i := 0; i < 3; i++ {
		items = append(items, makeItem(types.ContentTypePrayer))
		items = append(items, makeItem(types.ContentTypeVerse))
	}
	repo := &fakeContentRepo{items: items}
	svc := newFeedService(repo, testClock())

	batch, err := svc.GenerateBatch(context.Background(), baseProfile(), 6, nil)
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}
	if len(batch) != 6 {
		t.Fatalf("batch size %d, want 6", len(batch))
	}
	for i := 1; i < len(batch); i++ {
		if batch[i].Type == batch[i-1].Type {
			t.Fatalf("adjacent same-type items at %d with both types available: %v", i, batch)
		}
	}
}

func TestGenerateBatchSingleTypeCatalog(t *testing.T) {
	var items []*types.ContentItem
	for i := 0; i < 5; i++ {
		items = append(items, makeItem(types.ContentTypeQuote))
	}
	repo := &fakeContentRepo{items: items}
	svc := newFeedService(repo, testClock())

	batch, err := svc.GenerateBatch(context.Background(), baseProfile(), 10, nil)
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}
	// Pool smaller than count: a short batch, not an error.
	if len(batch) != 5 {
		t.Fatalf("batch size %d, want 5", len(batch))
	}
}

func TestGenerateBatchFaithAndProFilters(t *testing.T) {
	deepOnly := makeItem(types.ContentTypeDevotional, withFaithMin(types.FaithDeepInTheWord))
	proOnly := makeItem(types.ContentTypePrayer, withProOnly())
	open := makeItem(types.ContentTypeVerse)
	repo := &fakeContentRepo{items: []*types.ContentItem{deepOnly, proOnly, open}}
	svc := newFeedService(repo, testClock())

	snap := baseProfile()
	snap.FaithLevel = types.FaithJustCurious
	snap.IsPro = false

	batch, err := svc.GenerateBatch(context.Background(), snap, 10, nil)
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}
	for _, item := range batch {
		if item.ID == deepOnly.ID {
			t.Fatalf("deepInTheWord item returned for justCurious profile")
		}
		if item.ID == proOnly.ID {
			t.Fatalf("pro-only item returned for free profile")
		}
	}
	if len(batch) != 1 {
		t.Fatalf("batch size %d, want 1 eligible item", len(batch))
	}
}

func TestGenerateBatchRejectsNonPositiveCount(t *testing.T) {
	svc := newFeedService(&fakeContentRepo{}, testClock())

	for _, count := range []int{0, -5} {
		_, err := svc.GenerateBatch(context.Background(), baseProfile(), count, nil)
		if err == nil {
			t.Fatalf("count=%d should be rejected", count)
		}
		var apiErr *apierr.Error
		if !errors.As(err, &apiErr) || apiErr.Status != 400 {
			t.Fatalf("count=%d error %v, want apierr with status 400", count, err)
		}
	}
}

func TestGenerateBatchDegradesOnStorageFailure(t *testing.T) {
	repo := &fakeContentRepo{err: fmt.Errorf("connection refused")}
	svc := newFeedService(repo, testClock())

	batch, err := svc.GenerateBatch(context.Background(), baseProfile(), 20, nil)
	if err != nil {
		t.Fatalf("storage failure must degrade, got error %v", err)
	}
	if len(batch) != 0 {
		t.Fatalf("expected empty batch on storage failure, got %d", len(batch))
	}
}

func TestMarkShownSuppressesRepeats(t *testing.T) {
	items := richCatalog(2)
	repo := &fakeContentRepo{items: items}
	clock := testClock()
	svc := newFeedService(repo, clock)
	snap := baseProfile()

	first, err := svc.GenerateBatch(context.Background(), snap, 6, nil)
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}
	svc.MarkShown(snap.UserID, first)

	second, err := svc.GenerateBatch(context.Background(), snap, 6, nil)
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}
	seen := make(map[uuid.UUID]struct{}, len(first))
	for _, item := range first {
		seen[item.ID] = struct{}{}
	}
	for _, item := range second {
		if _, ok := seen[item.ID]; ok {
			t.Fatalf("item %s repeated within the session window", item.ID)
		}
	}

	// Past the window the first batch becomes eligible again.
	clock.Advance(FeedRepeatWindow + time.Minute)
	third, err := svc.GenerateBatch(context.Background(), snap, 12, nil)
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}
	if len(third) != 12 {
		t.Fatalf("expected full batch after window expiry, got %d", len(third))
	}
}

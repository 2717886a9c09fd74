package services

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/quietwaters-app/quietwaters-backend/internal/apierr"
	"github.com/quietwaters-app/quietwaters-backend/internal/logger"
	"github.com/quietwaters-app/quietwaters-backend/internal/repos"
	"github.com/quietwaters-app/quietwaters-backend/internal/timeutil"
	"github.com/quietwaters-app/quietwaters-backend/internal/types"
)

// feedQuotas is walked in order during the quota pass; the same order
// drives the interleave pass, so it doubles as the presentation order.
var feedQuotas = []struct {
	contentType types.ContentType
	ratio       float64
}{
	{types.ContentTypePrayer, 0.35},
	{types.ContentTypeVerse, 0.30},
	{types.ContentTypeDevotional, 0.15},
	{types.ContentTypeQuote, 0.10},
	{types.ContentTypeGuidedPrayer, 0.05},
	{types.ContentTypeReflection, 0.05},
}

type FeedService interface {
	// GenerateBatch assembles an ordered batch for the user's current time
	// slot. It never mutates the session registry; callers that actually
	// present the batch must follow up with MarkShown.
	GenerateBatch(ctx context.Context, snap types.ProfileSnapshot, count int, excludeIDs map[uuid.UUID]struct{}) ([]*types.ContentItem, error)
	MarkShown(userID uuid.UUID, items []*types.ContentItem)
}

type feedService struct {
	log         *logger.Logger
	contentRepo repos.ContentRepo
	scoring     ScoringService
	clock       timeutil.Clock

	mu       sync.Mutex
	sessions map[uuid.UUID]*MemoryRegistry
}

func NewFeedService(log *logger.Logger, contentRepo repos.ContentRepo, scoring ScoringService, clock timeutil.Clock) FeedService {
	serviceLog := log.With("service", "FeedService")
	return &feedService{
		log:         serviceLog,
		contentRepo: contentRepo,
		scoring:     scoring,
		clock:       clock,
		sessions:    make(map[uuid.UUID]*MemoryRegistry),
	}
}

type scoredCandidate struct {
	item  *types.ContentItem
	score float64
}

func (s *feedService) GenerateBatch(ctx context.Context, snap types.ProfileSnapshot, count int, excludeIDs map[uuid.UUID]struct{}) ([]*types.ContentItem, error) {
	if count <= 0 {
		return nil, apierr.New(http.StatusBadRequest, "invalid_count", fmt.Errorf("batch count must be positive, got %d", count))
	}

	items, err := s.contentRepo.GetAll(ctx, nil)
	if err != nil {
		// Degrade to an empty catalog; a short (or empty) batch is the
		// contract, not an error.
		s.log.Warn("content catalog read failed, returning short batch", "error", err)
		items = nil
	}

	now := s.clock.Now()
	slot := timeutil.SlotForTime(now)
	registry := s.sessionRegistry(snap.UserID)
	registry.Prune(now)

	scored := make([]scoredCandidate, 0, len(items))
	for _, item := range items {
		if _, excluded := excludeIDs[item.ID]; excluded {
			continue
		}
		if registry.IsRecentlyShown(item.ID.String()) {
			continue
		}
		if !s.scoring.IsEligible(item, snap) {
			continue
		}
		scored = append(scored, scoredCandidate{item: item, score: s.scoring.ScoreForFeed(item, snap, slot)})
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	selected := s.quotaPass(scored, count)
	selected = s.backfill(scored, selected, count)
	batch := interleave(selected)

	s.log.Debug("feed batch assembled",
		"user_id", snap.UserID.String(),
		"slot", string(slot),
		"eligible", len(scored),
		"returned", len(batch),
	)
	return batch, nil
}

// quotaPass takes the top-ranked items per type up to each type's quota,
// stopping once the batch is full.
func (s *feedService) quotaPass(scored []scoredCandidate, count int) []scoredCandidate {
	selected := make([]scoredCandidate, 0, count)
	chosen := make(map[uuid.UUID]struct{}, count)

	for _, quota := range feedQuotas {
		want := int(math.Round(float64(count) * quota.ratio))
		if want < 1 {
			want = 1
		}
		taken := 0
		for _, cand := range scored {
			if len(selected) >= count {
				return selected
			}
			if taken >= want {
				break
			}
			if cand.item.Type != quota.contentType {
				continue
			}
			if _, ok := chosen[cand.item.ID]; ok {
				continue
			}
			chosen[cand.item.ID] = struct{}{}
			selected = append(selected, cand)
			taken++
		}
	}
	return selected
}

// backfill tops the selection up from the overall ranking when quotas could
// not be filled. Running out of candidates is fine; a short batch is
// returned as-is.
func (s *feedService) backfill(scored, selected []scoredCandidate, count int) []scoredCandidate {
	if len(selected) >= count {
		return selected
	}
	chosen := make(map[uuid.UUID]struct{}, len(selected))
	for _, cand := range selected {
		chosen[cand.item.ID] = struct{}{}
	}
	for _, cand := range scored {
		if len(selected) >= count {
			break
		}
		if _, ok := chosen[cand.item.ID]; ok {
			continue
		}
		chosen[cand.item.ID] = struct{}{}
		selected = append(selected, cand)
	}
	return selected
}

// interleave emits one item per type per round, in quota order, so two
// same-type items only sit adjacent once every other type is exhausted.
func interleave(selected []scoredCandidate) []*types.ContentItem {
	groups := make(map[types.ContentType][]*types.ContentItem)
	for _, cand := range selected {
		groups[cand.item.Type] = append(groups[cand.item.Type], cand.item)
	}

	out := make([]*types.ContentItem, 0, len(selected))
	for len(out) < len(selected) {
		emitted := false
		for _, quota := range feedQuotas {
			group := groups[quota.contentType]
			if len(group) == 0 {
				continue
			}
			out = append(out, group[0])
			groups[quota.contentType] = group[1:]
			emitted = true
		}
		if !emitted {
			break
		}
	}
	return out
}

func (s *feedService) MarkShown(userID uuid.UUID, items []*types.ContentItem) {
	if len(items) == 0 {
		return
	}
	registry := s.sessionRegistry(userID)
	now := s.clock.Now()
	for _, item := range items {
		registry.MarkShown(item.ID.String(), now)
	}
}

// sessionRegistry returns the per-user 24h feed registry, creating it on
// first use. One registry per user session; process restart clears them.
func (s *feedService) sessionRegistry(userID uuid.UUID) *MemoryRegistry {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.sessions[userID]
	if !ok {
		reg = NewMemoryRegistry(FeedRepeatWindow, s.clock)
		s.sessions[userID] = reg
	}
	return reg
}

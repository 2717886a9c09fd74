package services

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/quietwaters-app/quietwaters-backend/internal/apierr"
	"github.com/quietwaters-app/quietwaters-backend/internal/catalog"
	redisclient "github.com/quietwaters-app/quietwaters-backend/internal/clients/redis"
	"github.com/quietwaters-app/quietwaters-backend/internal/logger"
	"github.com/quietwaters-app/quietwaters-backend/internal/repos"
	"github.com/quietwaters-app/quietwaters-backend/internal/timeutil"
	"github.com/quietwaters-app/quietwaters-backend/internal/types"
)

const (
	defaultHorizonDays = 7
	namePlaceholder    = "{name}"

	// Shown when the catalog cannot be read at all; a generic body beats a
	// failed scheduling run.
	placeholderBody = "Take a quiet moment with God today."
)

// VerseProvider is the curated verse pool plus its bundled text, consumed
// by the notification selector.
type VerseProvider interface {
	CuratedVerses() []catalog.CuratedVerse
	Verses(book string, chapter int) []catalog.VerseText
}

// NotificationPlatform is the delivery collaborator. Schedule replaces the
// user's pending notifications in one shot.
type NotificationPlatform interface {
	CancelAll(ctx context.Context, userID uuid.UUID) error
	Schedule(ctx context.Context, userID uuid.UUID, reqs []*types.NotificationRequest) error
}

type NotificationService interface {
	// SelectForSlot picks numDays bodies for one slot, preferring content
	// the persisted registry has not seen. Always returns exactly numDays
	// entries; duplicates appear only when the pool is too small to avoid
	// them.
	SelectForSlot(ctx context.Context, registry AntiRepeatRegistry, slot types.TimeSlot, numDays int, snap types.ProfileSnapshot) ([]types.SelectedContent, error)
	// RescheduleAll rebuilds the user's whole notification horizon:
	// selects per preferred slot, cancels everything pending, and writes
	// the new schedule. Clear-then-rewrite, never an incremental patch.
	RescheduleAll(ctx context.Context, snap types.ProfileSnapshot, horizonDays int) error
}

type notificationService struct {
	log         *logger.Logger
	contentRepo repos.ContentRepo
	verses      VerseProvider
	scoring     ScoringService
	rng         Rand
	clock       timeutil.Clock
	kv          redisclient.KVStore
	platform    NotificationPlatform
}

func NewNotificationService(
	log *logger.Logger,
	contentRepo repos.ContentRepo,
	verses VerseProvider,
	scoring ScoringService,
	rng Rand,
	clock timeutil.Clock,
	kv redisclient.KVStore,
	platform NotificationPlatform,
) NotificationService {
	serviceLog := log.With("service", "NotificationService")
	return &notificationService{
		log:         serviceLog,
		contentRepo: contentRepo,
		verses:      verses,
		scoring:     scoring,
		rng:         rng,
		clock:       clock,
		kv:          kv,
		platform:    platform,
	}
}

type notifCandidate struct {
	key     string
	score   float64
	content types.SelectedContent
}

func (s *notificationService) SelectForSlot(ctx context.Context, registry AntiRepeatRegistry, slot types.TimeSlot, numDays int, snap types.ProfileSnapshot) ([]types.SelectedContent, error) {
	if numDays <= 0 {
		return nil, apierr.New(http.StatusBadRequest, "invalid_num_days", fmt.Errorf("numDays must be positive, got %d", numDays))
	}

	pool := append(s.feedPool(ctx, slot, snap), s.versePool(slot, snap)...)
	if len(pool) == 0 {
		out := make([]types.SelectedContent, numDays)
		for i := range out {
			out[i] = types.SelectedContent{Text: placeholderBody}
		}
		return out, nil
	}

	sort.Slice(pool, func(i, j int) bool { return pool[i].score > pool[j].score })

	// Keep the top slice competitive but shuffled, so high scorers are
	// favored without the order being deterministic.
	top := pool
	if limit := numDays * 3; len(pool) > limit {
		top = pool[:limit]
	}
	s.rng.Shuffle(len(top), func(i, j int) { top[i], top[j] = top[j], top[i] })

	registry.Prune(s.clock.Now())

	chosen := make([]notifCandidate, 0, numDays)
	used := make(map[string]struct{}, numDays)
	for _, cand := range top {
		if len(chosen) == numDays {
			break
		}
		if registry.IsRecentlyShown(cand.key) {
			continue
		}
		if _, ok := used[cand.key]; ok {
			continue
		}
		used[cand.key] = struct{}{}
		chosen = append(chosen, cand)
	}
	// Fresh pool exhausted: allow recently-shown candidates.
	for _, cand := range top {
		if len(chosen) == numDays {
			break
		}
		if _, ok := used[cand.key]; ok {
			continue
		}
		used[cand.key] = struct{}{}
		chosen = append(chosen, cand)
	}
	// Still short: cycle. Repeats are tolerated here and only here; a
	// pool smaller than numDays cannot avoid them.
	for i := 0; len(chosen) < numDays; i++ {
		chosen = append(chosen, top[i%len(top)])
	}

	now := s.clock.Now()
	out := make([]types.SelectedContent, 0, numDays)
	for _, cand := range chosen {
		registry.MarkShown(cand.key, now)
		out = append(out, cand.content)
	}
	return out, nil
}

// feedPool scores catalog content for a slot. The slot filter falls back to
// the full Pro-appropriate catalog when it matches nothing, so a sparse
// slot never produces an empty pool on its own.
func (s *notificationService) feedPool(ctx context.Context, slot types.TimeSlot, snap types.ProfileSnapshot) []notifCandidate {
	items, err := s.contentRepo.GetAll(ctx, nil)
	if err != nil {
		s.log.Warn("content catalog read failed, scheduling from curated verses only", "error", err)
		return nil
	}

	eligible := make([]*types.ContentItem, 0, len(items))
	for _, item := range items {
		if s.scoring.IsEligible(item, snap) {
			eligible = append(eligible, item)
		}
	}

	slotMatched := make([]*types.ContentItem, 0, len(eligible))
	for _, item := range eligible {
		if item.MatchesSlot(slot) {
			slotMatched = append(slotMatched, item)
		}
	}
	if len(slotMatched) == 0 {
		slotMatched = eligible
	}

	out := make([]notifCandidate, 0, len(slotMatched))
	for _, item := range slotMatched {
		id := item.ID
		out = append(out, notifCandidate{
			key:   item.ID.String(),
			score: s.scoring.ScoreForNotification(item, snap),
			content: types.SelectedContent{
				Text:            renderContentBody(item, snap.FirstName),
				SourceContentID: &id,
			},
		})
	}
	return out
}

func (s *notificationService) versePool(slot types.TimeSlot, snap types.ProfileSnapshot) []notifCandidate {
	var out []notifCandidate
	for _, v := range s.verses.CuratedVerses() {
		if !v.MatchesSlot(slot) {
			continue
		}
		out = append(out, notifCandidate{
			key:   v.Key(),
			score: s.scoring.ScoreCuratedVerse(v, snap),
			content: types.SelectedContent{
				Text:          s.renderCuratedVerse(v),
				BibleBookName: v.Book,
				BibleChapter:  v.Chapter,
			},
		})
	}
	return out
}

func renderContentBody(item *types.ContentItem, firstName string) string {
	if item.VerseText != "" && item.VerseReference != "" {
		return fmt.Sprintf("“%s” — %s", item.VerseText, item.VerseReference)
	}
	name := strings.TrimSpace(firstName)
	if name == "" {
		name = "friend"
	}
	return strings.ReplaceAll(item.TemplateText, namePlaceholder, name)
}

func (s *notificationService) renderCuratedVerse(v catalog.CuratedVerse) string {
	for _, vt := range s.verses.Verses(v.Book, v.Chapter) {
		if vt.Number == v.Verse {
			return fmt.Sprintf("“%s” — %s %d:%d", vt.Text, v.Book, v.Chapter, v.Verse)
		}
	}
	return fmt.Sprintf("Spend a quiet moment with %s %d:%d today.", v.Book, v.Chapter, v.Verse)
}

var slotTitles = map[types.TimeSlot]string{
	types.SlotMorning: "Morning Prayer",
	types.SlotMidday:  "Midday Pause",
	types.SlotEvening: "Evening Reflection",
	types.SlotBedtime: "Bedtime Blessing",
}

var slotSubtitles = map[types.TimeSlot][]string{
	types.SlotMorning: {
		"Start your day in His presence",
		"A word for your morning",
		"Before the day begins",
	},
	types.SlotMidday: {
		"A pause in your day",
		"Midday encouragement",
		"Take a breath with God",
	},
	types.SlotEvening: {
		"Wind down with the Word",
		"Reflect on today",
		"An evening word for you",
	},
	types.SlotBedtime: {
		"Peace for tonight",
		"End the day with grace",
		"Rest in His promises",
	},
}

func (s *notificationService) RescheduleAll(ctx context.Context, snap types.ProfileSnapshot, horizonDays int) error {
	if horizonDays <= 0 {
		horizonDays = defaultHorizonDays
	}

	slots := snap.PreferredSlots
	if len(slots) == 0 {
		slots = []types.TimeSlot{types.SlotMorning, types.SlotEvening}
	}

	registry := NewPersistedRegistry(s.kv, NotificationRegistryKey(snap.UserID.String()), NotificationRepeatWindow, s.clock, s.log)
	registry.Load(ctx)

	now := s.clock.Now()
	reqs := make([]*types.NotificationRequest, 0, len(slots)*horizonDays)
	for _, slot := range slots {
		selections, err := s.SelectForSlot(ctx, registry, slot, horizonDays, snap)
		if err != nil {
			return fmt.Errorf("select for slot %s: %w", slot, err)
		}

		subtitles := append([]string(nil), slotSubtitles[slot]...)
		s.rng.Shuffle(len(subtitles), func(i, j int) { subtitles[i], subtitles[j] = subtitles[j], subtitles[i] })

		// If today's fire time already passed, the horizon starts tomorrow.
		baseDay := now
		if !timeutil.SlotFireTime(now, slot).After(now) {
			baseDay = now.AddDate(0, 0, 1)
		}

		for i, sel := range selections {
			day := baseDay.AddDate(0, 0, i)
			reqs = append(reqs, &types.NotificationRequest{
				Identifier:      fmt.Sprintf("qw-%s-%s-%d", snap.UserID, slot, i),
				FireAt:          timeutil.SlotFireTime(day, slot),
				Title:           slotTitles[slot],
				Subtitle:        subtitles[i%len(subtitles)],
				Body:            sel.Text,
				SourceContentID: sel.SourceContentID,
				BibleBookName:   sel.BibleBookName,
				BibleChapter:    sel.BibleChapter,
			})
		}
	}

	if err := registry.Save(ctx); err != nil {
		// Quality degradation only; the schedule itself is still valid.
		s.log.Warn("persisting shown-registry failed", "error", err)
	}

	if err := s.platform.CancelAll(ctx, snap.UserID); err != nil {
		return fmt.Errorf("cancel pending notifications: %w", err)
	}
	if err := s.platform.Schedule(ctx, snap.UserID, reqs); err != nil {
		return fmt.Errorf("schedule notifications: %w", err)
	}

	s.log.Info("notification schedule rewritten",
		"user_id", snap.UserID.String(),
		"slots", len(slots),
		"days", horizonDays,
		"scheduled", len(reqs),
	)
	return nil
}

package services

import (
	"github.com/quietwaters-app/quietwaters-backend/internal/catalog"
	"github.com/quietwaters-app/quietwaters-backend/internal/logger"
	"github.com/quietwaters-app/quietwaters-backend/internal/types"
)

// Multiplicative weights over a base score of 1.0.
const (
	burdenMatchWeight = 3.0
	seasonMatchWeight = 2.0
	slotMatchWeight   = 1.5
	faithMatchWeight  = 1.3

	// Curated verses get a flat boost so they stay competitive against
	// feed content in the merged notification pool.
	curatedVerseBoost = 1.2

	// Freshness jitter range [0.8, 1.2); re-rolled on every score call so
	// the top of the ranking is not identical call after call.
	jitterMin  = 0.8
	jitterSpan = 0.4
)

type ScoringService interface {
	// ScoreForFeed includes the time-of-day term (with the empty-set
	// wildcard rule).
	ScoreForFeed(item *types.ContentItem, snap types.ProfileSnapshot, slot types.TimeSlot) float64
	// ScoreForNotification omits the time-of-day term; the notification
	// path pre-filters its pool by slot instead.
	ScoreForNotification(item *types.ContentItem, snap types.ProfileSnapshot) float64
	ScoreCuratedVerse(v catalog.CuratedVerse, snap types.ProfileSnapshot) float64
	// IsEligible applies the Pro gate and the ordinal faith-level filter.
	// Note the asymmetry kept on purpose: eligibility compares faith
	// levels with <=, while the scoring bonus below requires an exact
	// match.
	IsEligible(item *types.ContentItem, snap types.ProfileSnapshot) bool
}

type scoringService struct {
	log *logger.Logger
	rng Rand
}

func NewScoringService(log *logger.Logger, rng Rand) ScoringService {
	serviceLog := log.With("service", "ScoringService")
	return &scoringService{log: serviceLog, rng: rng}
}

func (s *scoringService) ScoreForFeed(item *types.ContentItem, snap types.ProfileSnapshot, slot types.TimeSlot) float64 {
	score := s.baseScore(item, snap)
	if item.MatchesSlot(slot) {
		score *= slotMatchWeight
	}
	return score * s.jitter()
}

func (s *scoringService) ScoreForNotification(item *types.ContentItem, snap types.ProfileSnapshot) float64 {
	return s.baseScore(item, snap) * s.jitter()
}

func (s *scoringService) ScoreCuratedVerse(v catalog.CuratedVerse, snap types.ProfileSnapshot) float64 {
	score := 1.0
	if intersects(v.Burdens, snap.Burdens) {
		score *= burdenMatchWeight
	}
	score *= curatedVerseBoost
	return score * s.jitter()
}

func (s *scoringService) IsEligible(item *types.ContentItem, snap types.ProfileSnapshot) bool {
	if item.IsProOnly && !snap.IsPro {
		return false
	}
	if item.FaithLevelMin.Rank() > snap.FaithLevel.Rank() {
		return false
	}
	return true
}

func (s *scoringService) baseScore(item *types.ContentItem, snap types.ProfileSnapshot) float64 {
	score := 1.0
	if intersects(item.BurdenTags(), snap.Burdens) {
		score *= burdenMatchWeight
	}
	if intersects(item.Seasons(), snap.LifeSeasons) {
		score *= seasonMatchWeight
	}
	if item.FaithLevelMin == snap.FaithLevel {
		score *= faithMatchWeight
	}
	return score
}

func (s *scoringService) jitter() float64 {
	return jitterMin + s.rng.Float64()*jitterSpan
}

func intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

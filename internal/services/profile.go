package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quietwaters-app/quietwaters-backend/internal/logger"
	"github.com/quietwaters-app/quietwaters-backend/internal/repos"
	"github.com/quietwaters-app/quietwaters-backend/internal/types"
)

// maxProfileTags caps how many seasons and burdens a profile may declare.
const maxProfileTags = 3

type ProfileUpdate struct {
	FirstName      *string          `json:"first_name,omitempty"`
	FaithLevel     types.FaithLevel `json:"faith_level"`
	LifeSeasons    []string         `json:"life_seasons"`
	Burdens        []string         `json:"burdens"`
	IsPro          *bool            `json:"is_pro,omitempty"`
	PreferredSlots []string         `json:"preferred_slots"`
}

type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
	Update(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*types.UserProfile, error)
	// Snapshot builds the read-only projection the ranking engine works
	// with. A user without a saved profile gets conservative defaults
	// rather than an error.
	Snapshot(ctx context.Context, userID uuid.UUID) (types.ProfileSnapshot, error)
}

type profileService struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.UserProfileRepo
	userRepo    repos.UserRepo
}

func NewProfileService(db *gorm.DB, log *logger.Logger, profileRepo repos.UserProfileRepo, userRepo repos.UserRepo) ProfileService {
	serviceLog := log.With("service", "ProfileService")
	return &profileService{db: db, log: serviceLog, profileRepo: profileRepo, userRepo: userRepo}
}

func (ps *profileService) Get(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	profile, err := ps.profileRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		profile = defaultProfile(userID)
	}
	return profile, nil
}

func (ps *profileService) Update(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*types.UserProfile, error) {
	if update.FaithLevel != "" {
		switch update.FaithLevel {
		case types.FaithJustCurious, types.FaithGrowing, types.FaithDeepInTheWord:
		default:
			return nil, fmt.Errorf("unknown faith level %q", update.FaithLevel)
		}
	}
	for _, s := range update.PreferredSlots {
		switch types.TimeSlot(s) {
		case types.SlotMorning, types.SlotMidday, types.SlotEvening, types.SlotBedtime:
		default:
			return nil, fmt.Errorf("unknown time slot %q", s)
		}
	}
	if len(update.LifeSeasons) > maxProfileTags {
		return nil, fmt.Errorf("at most %d life seasons allowed", maxProfileTags)
	}
	if len(update.Burdens) > maxProfileTags {
		return nil, fmt.Errorf("at most %d burdens allowed", maxProfileTags)
	}

	profile, err := ps.profileRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		profile = defaultProfile(userID)
	}

	if update.FaithLevel != "" {
		profile.FaithLevel = update.FaithLevel
	}
	if update.LifeSeasons != nil {
		profile.LifeSeasons = types.EncodeStrings(update.LifeSeasons)
	}
	if update.Burdens != nil {
		profile.Burdens = types.EncodeStrings(update.Burdens)
	}
	if update.IsPro != nil {
		profile.IsPro = *update.IsPro
	}
	if update.PreferredSlots != nil {
		profile.PreferredSlots = types.EncodeStrings(update.PreferredSlots)
	}

	saved, err := ps.profileRepo.Upsert(ctx, nil, profile)
	if err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	if update.FirstName != nil {
		if err := ps.userRepo.UpdateFirstName(ctx, nil, userID, *update.FirstName); err != nil {
			return nil, fmt.Errorf("save first name: %w", err)
		}
	}
	return saved, nil
}

func (ps *profileService) Snapshot(ctx context.Context, userID uuid.UUID) (types.ProfileSnapshot, error) {
	profile, err := ps.Get(ctx, userID)
	if err != nil {
		return types.ProfileSnapshot{}, err
	}

	firstName := ""
	users, err := ps.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		ps.log.Warn("user lookup failed for snapshot", "user_id", userID.String(), "error", err)
	} else if len(users) > 0 {
		firstName = users[0].FirstName
	}

	return profile.Snapshot(firstName), nil
}

func defaultProfile(userID uuid.UUID) *types.UserProfile {
	return &types.UserProfile{
		UserID:         userID,
		FaithLevel:     types.FaithJustCurious,
		LifeSeasons:    types.EncodeStrings(nil),
		Burdens:        types.EncodeStrings(nil),
		PreferredSlots: types.EncodeStrings(nil),
	}
}

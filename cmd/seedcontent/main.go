package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/quietwaters-app/quietwaters-backend/internal/db"
	"github.com/quietwaters-app/quietwaters-backend/internal/logger"
	"github.com/quietwaters-app/quietwaters-backend/internal/repos"
	"github.com/quietwaters-app/quietwaters-backend/internal/types"
)

// contentNamespace seeds deterministic item IDs so re-running the importer
// updates rows in place instead of duplicating them.
var contentNamespace = uuid.MustParse("7f0c2f44-9d1e-4b6a-8a57-3f1de2c0a9b1")

type seedFile struct {
	Items []seedItem `yaml:"items"`
}

type seedItem struct {
	Key            string   `yaml:"key"`
	Type           string   `yaml:"type"`
	Text           string   `yaml:"text"`
	VerseReference string   `yaml:"verse_reference"`
	VerseText      string   `yaml:"verse_text"`
	Category       string   `yaml:"category"`
	TimeSlots      []string `yaml:"time_slots"`
	LifeSeasons    []string `yaml:"life_seasons"`
	Burdens        []string `yaml:"burdens"`
	FaithLevelMin  string   `yaml:"faith_level_min"`
	IsProOnly      bool     `yaml:"is_pro_only"`
}

func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	path := "seed/content.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal("Reading seed file failed", "path", path, "error", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		log.Fatal("Parsing seed file failed", "path", path, "error", err)
	}
	if len(seed.Items) == 0 {
		log.Fatal("Seed file contains no items", "path", path)
	}

	items := make([]*types.ContentItem, 0, len(seed.Items))
	for i, si := range seed.Items {
		item, err := buildItem(si)
		if err != nil {
			log.Fatal("Invalid seed item", "index", i, "key", si.Key, "error", err)
		}
		items = append(items, item)
	}

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}

	contentRepo := repos.NewContentRepo(postgresService.DB(), log)
	if err := contentRepo.Upsert(context.Background(), nil, items); err != nil {
		log.Fatal("Upserting content failed", "error", err)
	}
	log.Info("Seed complete", "path", path, "items", len(items))
}

func buildItem(si seedItem) (*types.ContentItem, error) {
	if si.Key == "" {
		return nil, fmt.Errorf("missing key")
	}
	if si.Text == "" {
		return nil, fmt.Errorf("missing text")
	}

	ct := types.ContentType(si.Type)
	switch ct {
	case types.ContentTypePrayer, types.ContentTypeVerse, types.ContentTypeDevotional,
		types.ContentTypeQuote, types.ContentTypeGuidedPrayer, types.ContentTypeReflection:
	default:
		return nil, fmt.Errorf("unknown content type %q", si.Type)
	}

	faith := types.FaithLevel(si.FaithLevelMin)
	if si.FaithLevelMin == "" {
		faith = types.FaithJustCurious
	} else {
		switch faith {
		case types.FaithJustCurious, types.FaithGrowing, types.FaithDeepInTheWord:
		default:
			return nil, fmt.Errorf("unknown faith level %q", si.FaithLevelMin)
		}
	}

	for _, s := range si.TimeSlots {
		switch types.TimeSlot(s) {
		case types.SlotMorning, types.SlotMidday, types.SlotEvening, types.SlotBedtime:
		default:
			return nil, fmt.Errorf("unknown time slot %q", s)
		}
	}

	return &types.ContentItem{
		ID:             uuid.NewSHA1(contentNamespace, []byte(si.Key)),
		Type:           ct,
		TemplateText:   si.Text,
		VerseReference: si.VerseReference,
		VerseText:      si.VerseText,
		Category:       si.Category,
		TimeSlots:      types.EncodeStrings(si.TimeSlots),
		LifeSeasons:    types.EncodeStrings(si.LifeSeasons),
		Burdens:        types.EncodeStrings(si.Burdens),
		FaithLevelMin:  faith,
		IsProOnly:      si.IsProOnly,
	}, nil
}

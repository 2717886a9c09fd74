package catalog

import (
	"strings"
	"testing"

	"github.com/quietwaters-app/quietwaters-backend/internal/types"
)

func TestLoadCatalog(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.CuratedVerses()) == 0 {
		t.Fatalf("expected curated verses")
	}

	// Every curated entry must have bundled text for its exact verse number.
	for _, v := range c.CuratedVerses() {
		texts := c.Verses(v.Book, v.Chapter)
		if len(texts) == 0 {
			t.Fatalf("no bundled text for %s %d", v.Book, v.Chapter)
		}
		found := false
		for _, vt := range texts {
			if vt.Number == v.Verse {
				if strings.TrimSpace(vt.Text) == "" {
					t.Fatalf("empty text for %s %d:%d", v.Book, v.Chapter, v.Verse)
				}
				found = true
			}
		}
		if !found {
			t.Fatalf("verse %s %d:%d missing from bundled text", v.Book, v.Chapter, v.Verse)
		}
	}
}

func TestCuratedVerseKey(t *testing.T) {
	v := CuratedVerse{Book: "1 Peter", Chapter: 5, Verse: 7}
	if got := v.Key(); got != "verse-1 Peter-5" {
		t.Fatalf("Key=%q", got)
	}
}

func TestCuratedVerseMatchesSlot(t *testing.T) {
	cases := []struct {
		name  string
		verse CuratedVerse
		slot  types.TimeSlot
		want  bool
	}{
		{name: "declared_slot_matches", verse: CuratedVerse{Slots: []types.TimeSlot{types.SlotMorning}}, slot: types.SlotMorning, want: true},
		{name: "declared_slot_misses", verse: CuratedVerse{Slots: []types.TimeSlot{types.SlotMorning}}, slot: types.SlotBedtime, want: false},
		{name: "empty_is_wildcard", verse: CuratedVerse{}, slot: types.SlotBedtime, want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.verse.MatchesSlot(tc.slot); got != tc.want {
				t.Fatalf("MatchesSlot=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestVersesUnknownChapter(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := c.Verses("Obadiah", 1); got != nil {
		t.Fatalf("expected nil for chapter outside the pack, got %v", got)
	}
}

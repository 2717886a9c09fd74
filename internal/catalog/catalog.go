// Package catalog bundles the hand-curated verse pool and its verse text,
// shipped with the binary so notification scheduling works without any
// external verse service.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/quietwaters-app/quietwaters-backend/internal/types"
)

//go:embed verses.yaml
var rawCatalog []byte

type CuratedVerse struct {
	Book    string           `yaml:"book"`
	Chapter int              `yaml:"chapter"`
	Verse   int              `yaml:"verse"`
	Slots   []types.TimeSlot `yaml:"slots"`
	Burdens []string         `yaml:"burdens"`
}

// Key is the registry identifier convention for curated verses, which carry
// no UUID. The book name keeps its spaces.
func (v CuratedVerse) Key() string {
	return fmt.Sprintf("verse-%s-%d", v.Book, v.Chapter)
}

// MatchesSlot uses the same wildcard rule as content items: an empty slot
// list matches everything.
func (v CuratedVerse) MatchesSlot(slot types.TimeSlot) bool {
	if len(v.Slots) == 0 {
		return true
	}
	for _, s := range v.Slots {
		if s == slot {
			return true
		}
	}
	return false
}

type VerseText struct {
	Number int    `yaml:"number"`
	Text   string `yaml:"text"`
}

type chapterTexts struct {
	Book    string      `yaml:"book"`
	Chapter int         `yaml:"chapter"`
	Verses  []VerseText `yaml:"verses"`
}

type catalogFile struct {
	Curated []CuratedVerse `yaml:"curated"`
	Texts   []chapterTexts `yaml:"texts"`
}

type Catalog struct {
	curated []CuratedVerse
	texts   map[string][]VerseText
}

func Load() (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(rawCatalog, &file); err != nil {
		return nil, fmt.Errorf("decode verse catalog: %w", err)
	}
	texts := make(map[string][]VerseText, len(file.Texts))
	for _, ch := range file.Texts {
		texts[textKey(ch.Book, ch.Chapter)] = ch.Verses
	}
	return &Catalog{curated: file.Curated, texts: texts}, nil
}

func (c *Catalog) CuratedVerses() []CuratedVerse {
	return c.curated
}

// Verses returns the bundled text for a chapter, or nil when the chapter is
// not part of the curated pack.
func (c *Catalog) Verses(book string, chapter int) []VerseText {
	return c.texts[textKey(book, chapter)]
}

func textKey(book string, chapter int) string {
	return fmt.Sprintf("%s %d", book, chapter)
}

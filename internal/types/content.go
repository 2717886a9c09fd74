package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ContentType string

const (
	ContentTypePrayer       ContentType = "prayer"
	ContentTypeVerse        ContentType = "verse"
	ContentTypeDevotional   ContentType = "devotional"
	ContentTypeQuote        ContentType = "quote"
	ContentTypeGuidedPrayer ContentType = "guidedPrayer"
	ContentTypeReflection   ContentType = "reflection"
)

type TimeSlot string

const (
	SlotMorning TimeSlot = "morning"
	SlotMidday  TimeSlot = "midday"
	SlotEvening TimeSlot = "evening"
	SlotBedtime TimeSlot = "bedtime"
)

// AllTimeSlots is in presentation order; scheduling and fallback logic
// iterate it in this order.
var AllTimeSlots = []TimeSlot{SlotMorning, SlotMidday, SlotEvening, SlotBedtime}

type FaithLevel string

const (
	FaithJustCurious   FaithLevel = "justCurious"
	FaithGrowing       FaithLevel = "growing"
	FaithDeepInTheWord FaithLevel = "deepInTheWord"
)

// Rank orders faith levels for eligibility checks. Unknown values rank
// lowest so malformed rows never lock content away from anyone.
func (f FaithLevel) Rank() int {
	switch f {
	case FaithGrowing:
		return 1
	case FaithDeepInTheWord:
		return 2
	default:
		return 0
	}
}

type ContentItem struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Type           ContentType    `gorm:"column:type;not null;index" json:"type"`
	TemplateText   string         `gorm:"column:template_text;not null" json:"template_text"`
	VerseReference string         `gorm:"column:verse_reference" json:"verse_reference,omitempty"`
	VerseText      string         `gorm:"column:verse_text" json:"verse_text,omitempty"`
	Category       string         `gorm:"column:category" json:"category,omitempty"`
	TimeSlots      datatypes.JSON `gorm:"type:jsonb;column:time_slots" json:"time_slots"`
	LifeSeasons    datatypes.JSON `gorm:"type:jsonb;column:life_seasons" json:"life_seasons"`
	Burdens        datatypes.JSON `gorm:"type:jsonb;column:burdens" json:"burdens"`
	FaithLevelMin  FaithLevel     `gorm:"column:faith_level_min;not null;default:'justCurious'" json:"faith_level_min"`
	IsProOnly      bool           `gorm:"column:is_pro_only;not null;default:false" json:"is_pro_only"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ContentItem) TableName() string { return "content_item" }

// Slots decodes the jsonb slot column. An empty result means the item is a
// wildcard eligible for every time of day.
func (c *ContentItem) Slots() []TimeSlot {
	raw := decodeStrings(c.TimeSlots)
	out := make([]TimeSlot, 0, len(raw))
	for _, s := range raw {
		out = append(out, TimeSlot(s))
	}
	return out
}

func (c *ContentItem) Seasons() []string { return decodeStrings(c.LifeSeasons) }

func (c *ContentItem) BurdenTags() []string { return decodeStrings(c.Burdens) }

// MatchesSlot applies the wildcard rule: no declared slots means every slot
// matches. The emptiness check must stay an explicit short-circuit.
func (c *ContentItem) MatchesSlot(slot TimeSlot) bool {
	slots := c.Slots()
	if len(slots) == 0 {
		return true
	}
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}

func decodeStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// EncodeStrings builds a jsonb column value from a string slice. Used by the
// seed importer and profile updates.
func EncodeStrings(vals []string) datatypes.JSON {
	if len(vals) == 0 {
		return datatypes.JSON([]byte("[]"))
	}
	raw, err := json.Marshal(vals)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(raw)
}

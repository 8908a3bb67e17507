package spaced_repetition

import (
	"fmt"

	"github.com/example/vocabdrill/pkg/models"
)

// Badge classifies an entry's mastery level for display
type Badge int

const (
	BadgeNone Badge = iota
	BadgeLow
	BadgeMedium
	BadgeHigh
	BadgeMastered
)

var (
	badgeNames   = [...]string{"none", "low", "medium", "high", "mastered"}
	badgeSymbols = [...]string{"", "🌱", "🌿", "🌳", "🏆"}
)

// Badges lists every badge from lowest to highest
var Badges = []Badge{BadgeNone, BadgeLow, BadgeMedium, BadgeHigh, BadgeMastered}

func (b Badge) String() string {
	if b >= BadgeNone && b <= BadgeMastered {
		return badgeNames[b]
	}
	return fmt.Sprintf("Badge(%d)", int(b))
}

// Symbol returns the emoji shown next to an entry, empty for BadgeNone
func (b Badge) Symbol() string {
	if b >= BadgeNone && b <= BadgeMastered {
		return badgeSymbols[b]
	}
	return ""
}

// MarshalText implements encoding.TextMarshaler so badges serialize by name
func (b Badge) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// BadgeFor maps a mastery level onto a badge. Each band includes its lower bound.
func BadgeFor(mastery float64) Badge {
	switch {
	case mastery >= 0.9:
		return BadgeMastered
	case mastery >= 0.7:
		return BadgeHigh
	case mastery >= 0.5:
		return BadgeMedium
	case mastery >= 0.3:
		return BadgeLow
	default:
		return BadgeNone
	}
}

// MasteryBadge returns the badge for the entry's current mastery level
func MasteryBadge(entry *models.VocabularyEntry) Badge {
	return BadgeFor(entry.MasteryLevel)
}

package item

import (
	"fmt"
	"strings"
)

// Quality is a crafted item tier, Normal (most common) through Eternal.
type Quality int

const (
	Normal Quality = iota
	Good
	Great
	Excellent
	Perfect
	Eternal
)

// Qualities lists every tier from most to least common.
var Qualities = []Quality{Normal, Good, Great, Excellent, Perfect, Eternal}

var qualityNames = [...]string{"Normal", "Good", "Great", "Excellent", "Perfect", "Eternal"}

// exportNames are the quality strings used by the game's gearset export.
var exportNames = [...]string{"common", "uncommon", "rare", "epic", "legendary", "ethereal"}

// String returns the display name, e.g. "Perfect".
func (q Quality) String() string {
	if q < Normal || q > Eternal {
		return fmt.Sprintf("Quality(%d)", int(q))
	}
	return qualityNames[q]
}

// ExportName returns the gearset export string, e.g. "legendary".
func (q Quality) ExportName() string {
	if q < Normal || q > Eternal {
		return exportNames[Normal]
	}
	return exportNames[q]
}

// ParseQuality accepts either a display name ("Perfect") or an export name
// ("legendary"), case-insensitively.
func ParseQuality(s string) (Quality, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i := range qualityNames {
		if strings.ToLower(qualityNames[i]) == s || exportNames[i] == s {
			return Quality(i), true
		}
	}
	return Normal, false
}

// SplitQualitySuffix splits "Iron Sword (Perfect)" into ("Iron Sword",
// Perfect, true). Names without a recognised suffix return (name, Normal, false).
func SplitQualitySuffix(name string) (string, Quality, bool) {
	trimmed := strings.TrimSpace(name)
	if !strings.HasSuffix(trimmed, ")") {
		return trimmed, Normal, false
	}
	open := strings.LastIndex(trimmed, "(")
	if open < 0 {
		return trimmed, Normal, false
	}
	q, ok := ParseQuality(trimmed[open+1 : len(trimmed)-1])
	if !ok {
		return trimmed, Normal, false
	}
	return strings.TrimSpace(trimmed[:open]), q, true
}

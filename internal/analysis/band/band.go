// Package band classifies a normalized score into a severity band.
package band

import (
	"fmt"
	"slices"

	"github.com/ericdynasty/line-oca-bot/internal/model/assessment"
)

// Level is the canonical severity tier a band belongs to. Syndrome rules test
// levels, never band IDs, so a configuration can rename bands freely.
type Level string

const (
	HighHeavy Level = "high-heavy"
	HighLight Level = "high-light"
	Neutral   Level = "neutral"
	LowLight  Level = "low-light"
	LowHeavy  Level = "low-heavy"
)

// Levels lists every level from highest to lowest.
func Levels() []Level {
	return []Level{HighHeavy, HighLight, Neutral, LowLight, LowHeavy}
}

// Valid reports whether l is one of the five canonical levels.
func (l Level) Valid() bool {
	return slices.Contains(Levels(), l)
}

// Band is one classification tier. Min and Max are inclusive; a nil bound is
// open on that side.
type Band struct {
	ID       string `json:"id" yaml:"id"`
	Level    Level  `json:"level" yaml:"level"`
	Min      *int   `json:"min,omitempty" yaml:"min,omitempty"`
	Max      *int   `json:"max,omitempty" yaml:"max,omitempty"`
	Label    string `json:"label" yaml:"label"`
	Template string `json:"template" yaml:"template"`
}

// Contains reports whether score falls inside the band's bounds. A band with
// no bounds at all contains nothing.
func (b Band) Contains(score int) bool {
	if b.Min == nil && b.Max == nil {
		return false
	}
	if b.Min != nil && score < *b.Min {
		return false
	}
	if b.Max != nil && score > *b.Max {
		return false
	}
	return true
}

// Validate checks a single band's shape.
func (b Band) Validate() error {
	if !b.Level.Valid() {
		return fmt.Errorf("band %q: unknown level %q", b.ID, b.Level)
	}
	if b.Min == nil && b.Max == nil {
		return fmt.Errorf("band %q: needs min or max", b.ID)
	}
	if b.Min != nil && b.Max != nil && *b.Min > *b.Max {
		return fmt.Errorf("band %q: min %d above max %d", b.ID, *b.Min, *b.Max)
	}
	return nil
}

// ValidateSet checks that every band is well formed and that together they
// cover every score in [MinScore, MaxScore].
func ValidateSet(bands []Band) error {
	if len(bands) == 0 {
		return fmt.Errorf("no bands")
	}
	for _, b := range bands {
		if err := b.Validate(); err != nil {
			return err
		}
	}
	for s := assessment.MinScore; s <= assessment.MaxScore; s++ {
		if _, ok := match(s, bands); !ok {
			return fmt.Errorf("score %d is not covered", s)
		}
	}
	return nil
}

// Classify returns the first band in declared order containing score. When
// nothing matches, the built-in default set for dim is used instead, so the
// result is always a band.
func Classify(dim assessment.DimensionKey, score int, bands []Band) Band {
	score = assessment.Clamp(score)
	if b, ok := match(score, bands); ok {
		return b
	}
	b, _ := match(score, Defaults(dim))
	return b
}

func match(score int, bands []Band) (Band, bool) {
	for _, b := range bands {
		if b.Contains(score) {
			return b, true
		}
	}
	return Band{}, false
}

package band

import (
	"sort"

	"github.com/ericdynasty/line-oca-bot/internal/model/assessment"
)

// Scored is one dimension's raw score together with its band.
type Scored struct {
	Dim   assessment.DimensionKey `json:"dim"`
	Score int                     `json:"score"`
	Band  Band                    `json:"band"`
}

// Vector holds all ten dimensions in declared order.
type Vector []Scored

// ClassifyAll bands every declared dimension. Missing scores count as 0 and
// dimensions absent from table use the built-in defaults.
func ClassifyAll(scores map[assessment.DimensionKey]int, table map[assessment.DimensionKey][]Band) Vector {
	out := make(Vector, 0, 10)
	for _, key := range assessment.Keys() {
		score := assessment.Clamp(scores[key])
		out = append(out, Scored{Dim: key, Score: score, Band: Classify(key, score, table[key])})
	}
	return out
}

// Get returns the entry for dim.
func (v Vector) Get(dim assessment.DimensionKey) (Scored, bool) {
	for _, s := range v {
		if s.Dim == dim {
			return s, true
		}
	}
	return Scored{}, false
}

// Max returns the largest raw score in the vector.
func (v Vector) Max() int {
	best := assessment.MinScore
	for _, s := range v {
		if s.Score > best {
			best = s.Score
		}
	}
	return best
}

// TopByMagnitude returns the n entries with the largest |score|. Ties keep
// declared dimension order.
func (v Vector) TopByMagnitude(n int) Vector {
	sorted := append(Vector(nil), v...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return abs(sorted[i].Score) > abs(sorted[j].Score)
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	if n < 0 {
		n = 0
	}
	return sorted[:n]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

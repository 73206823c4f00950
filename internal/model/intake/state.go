package intake

import (
	"strings"

	"github.com/ericdynasty/line-oca-bot/internal/model/assessment"
)

// State is the intake step a session is waiting on.
type State string

const (
	StateIdle        State = "idle"
	StateName        State = "collecting-name"
	StateGender      State = "collecting-gender"
	StateAge         State = "collecting-age"
	StateDate        State = "collecting-date"
	StateFlagA       State = "collecting-flag-a"
	StateFlagB       State = "collecting-flag-b"
	StatePreferences State = "collecting-preferences"
	StateAnalyzing   State = "analyzing"
	StateDone        State = "done"
	StateCancelled   State = "cancelled"
)

const scorePrefix = "collecting-score-"

// ScoreState returns the state collecting dim's score.
func ScoreState(dim assessment.DimensionKey) State {
	return State(scorePrefix + string(dim))
}

// ScoreDim reports which dimension a score-collecting state asks for.
func (s State) ScoreDim() (assessment.DimensionKey, bool) {
	raw, ok := strings.CutPrefix(string(s), scorePrefix)
	if !ok {
		return "", false
	}
	key := assessment.DimensionKey(raw)
	return key, key.Valid()
}

// Valid reports whether s is one of the enumerated states.
func (s State) Valid() bool {
	switch s {
	case StateIdle, StateName, StateGender, StateAge, StateDate, StateFlagA, StateFlagB,
		StatePreferences, StateAnalyzing, StateDone, StateCancelled:
		return true
	}
	_, ok := s.ScoreDim()
	return ok
}

// IsTerminal reports whether the session ends in s.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateCancelled
}

// Ordered lists every state in the order a complete intake visits them.
func Ordered() []State {
	states := []State{StateIdle, StateName, StateGender, StateAge, StateDate, StateFlagA, StateFlagB}
	for _, key := range assessment.Keys() {
		states = append(states, ScoreState(key))
	}
	return append(states, StatePreferences, StateAnalyzing, StateDone)
}

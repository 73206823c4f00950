package intake

import (
	"time"

	"github.com/ericdynasty/line-oca-bot/internal/model/assessment"
)

// Collected holds the identity answers gathered before the scores.
type Collected struct {
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Age    int    `json:"age"`
	Date   string `json:"date"`
	FlagA  bool   `json:"flagA"`
	FlagB  bool   `json:"flagB"`
}

// Preferences selects the optional report sections.
type Preferences struct {
	WantDetail  bool `json:"wantDetail"`
	WantSummary bool `json:"wantSummary"`
	WantPersona bool `json:"wantPersona"`
}

// Session is one user's in-progress intake. Scores only ever hold validated
// integers in [-100,100].
type Session struct {
	UserID       string                          `json:"userId"`
	State        State                           `json:"state"`
	Collected    Collected                       `json:"collected"`
	Scores       map[assessment.DimensionKey]int `json:"scores"`
	Preferences  Preferences                     `json:"preferences"`
	CreatedAt    time.Time                       `json:"createdAt"`
	LastActivity time.Time                       `json:"lastActivity"`
}

// NewSession starts an empty session waiting for the respondent's name.
func NewSession(userID string, now time.Time) Session {
	return Session{
		UserID:       userID,
		State:        StateName,
		Scores:       make(map[assessment.DimensionKey]int, 10),
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Clone returns a deep copy so callers can mutate it without touching the
// stored value.
func (s Session) Clone() Session {
	out := s
	out.Scores = make(map[assessment.DimensionKey]int, len(s.Scores))
	for k, v := range s.Scores {
		out.Scores[k] = v
	}
	return out
}

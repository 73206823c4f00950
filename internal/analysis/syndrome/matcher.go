// Package syndrome detects combinations across dimensions and turns them into
// insight texts.
package syndrome

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ericdynasty/line-oca-bot/internal/analysis/band"
)

// DefaultLimit caps the number of insights when the caller passes 0.
const DefaultLimit = 6

// Rule is a declarative syndrome definition.
type Rule struct {
	ID       string    `json:"id" yaml:"id"`
	Priority int       `json:"priority" yaml:"priority"`
	Insight  string    `json:"insight" yaml:"insight"`
	When     Predicate `json:"when" yaml:"when"`
}

// Validate checks the rule without evaluating it.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: rule without id", ErrMalformed)
	}
	if strings.TrimSpace(r.Insight) == "" {
		return fmt.Errorf("%w: rule %s has no insight text", ErrMalformed, r.ID)
	}
	if err := r.When.Validate(); err != nil {
		return fmt.Errorf("rule %s: %w", r.ID, err)
	}
	return nil
}

// Match is one rule that evaluated true.
type Match struct {
	RuleID   string `json:"ruleId"`
	Priority int    `json:"priority"`
	Insight  string `json:"insight"`
}

// Matcher evaluates rule lists. It holds no state besides its collaborators
// and is safe for concurrent use.
type Matcher struct {
	logger  *zap.Logger
	onError func(ruleID string, err error)
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithErrorHook registers a callback for rules skipped during evaluation.
func WithErrorHook(fn func(ruleID string, err error)) Option {
	return func(m *Matcher) { m.onError = fn }
}

// NewMatcher creates a Matcher. A nil logger discards output.
func NewMatcher(logger *zap.Logger, opts ...Option) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Matcher{logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Order returns a copy of rules sorted by priority, highest first. Equal
// priorities keep declaration order.
func Order(rules []Rule) []Rule {
	sorted := append([]Rule(nil), rules...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	return sorted
}

// Match evaluates rules against v and returns at most limit matches in
// non-increasing priority order. Rules that fail to evaluate are skipped.
func (m *Matcher) Match(rules []Rule, v band.Vector, limit int) []Match {
	if limit <= 0 {
		limit = DefaultLimit
	}

	matches := make([]Match, 0, limit)
	for _, rule := range Order(rules) {
		if len(matches) >= limit {
			break
		}
		ok, err := rule.When.Eval(v)
		if err != nil {
			m.logger.Warn("skipping rule", zap.String("rule", rule.ID), zap.Error(err))
			if m.onError != nil {
				m.onError(rule.ID, err)
			}
			continue
		}
		if ok {
			matches = append(matches, Match{RuleID: rule.ID, Priority: rule.Priority, Insight: rule.Insight})
		}
	}
	return matches
}

// Package analysis runs the scoring pipeline: normalize, classify, match
// syndrome rules and render the report.
package analysis

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ericdynasty/line-oca-bot/internal/analysis/band"
	"github.com/ericdynasty/line-oca-bot/internal/analysis/report"
	"github.com/ericdynasty/line-oca-bot/internal/analysis/syndrome"
	"github.com/ericdynasty/line-oca-bot/internal/model/assessment"
	"github.com/ericdynasty/line-oca-bot/internal/model/intake"
	"github.com/ericdynasty/line-oca-bot/internal/rules"
)

const (
	SourceIntake = "intake"
	SourceForm   = "form"
	SourceTool   = "tool"
)

const fallbackText = "分析時發生錯誤，請稍後再試，或輸入「填表」重新開始。"

// RulesSource provides the active configuration. *rules.Store satisfies it.
type RulesSource interface {
	Current() *rules.Ruleset
}

// Recorder receives pipeline counts. *metrics.Metrics satisfies it.
type Recorder interface {
	Analysis(source string)
	RuleError(ruleID string)
}

type nopRecorder struct{}

func (nopRecorder) Analysis(string)  {}
func (nopRecorder) RuleError(string) {}

// Input is one complete assessment, already validated.
type Input struct {
	Identity report.Identity
	FlagA    bool
	FlagB    bool
	Sections report.Sections
	Scores   map[assessment.DimensionKey]int
}

// Result is the pipeline output.
type Result struct {
	ReportID    string           `json:"reportId"`
	RulesSource string           `json:"rulesSource"`
	Vector      band.Vector      `json:"vector"`
	Matches     []syndrome.Match `json:"matches"`
	Segments    []report.Segment `json:"segments"`
	Failed      bool             `json:"failed,omitempty"`
}

// Service owns the pipeline collaborators. It does no I/O apart from reading
// the cached ruleset.
type Service struct {
	rules    RulesSource
	renderer *report.Renderer
	matcher  *syndrome.Matcher
	metrics  Recorder
	logger   *zap.Logger
	ruleCap  int
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder reports analyses and rule evaluation errors.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRuleCap limits how many syndrome insights a report carries.
func WithRuleCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.ruleCap = n
		}
	}
}

// NewService builds the pipeline. A nil renderer gets the defaults.
func NewService(src RulesSource, renderer *report.Renderer, opts ...Option) *Service {
	s := &Service{
		rules:    src,
		renderer: renderer,
		metrics:  nopRecorder{},
		logger:   zap.NewNop(),
		ruleCap:  syndrome.DefaultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		s.renderer = report.NewRenderer(s.logger)
	}
	s.matcher = syndrome.NewMatcher(s.logger, syndrome.WithErrorHook(func(ruleID string, _ error) {
		s.metrics.RuleError(ruleID)
	}))
	return s
}

// Analyze runs the whole pipeline. It never panics: any failure produces a
// single fallback segment and Failed is set.
func (s *Service) Analyze(_ context.Context, in Input, source string) (res Result) {
	res.ReportID = uuid.NewString()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("analysis failed",
				zap.String("report_id", res.ReportID),
				zap.String("source", source),
				zap.Any("panic", r),
			)
			res = Result{
				ReportID: res.ReportID,
				Segments: []report.Segment{{Text: fallbackText}},
				Failed:   true,
			}
		}
	}()

	rs := s.ruleset()
	scores := make(map[assessment.DimensionKey]int, len(in.Scores))
	for k, v := range in.Scores {
		scores[k] = assessment.Normalize(v)
	}
	vector := band.ClassifyAll(scores, rs.Bands)
	matches := s.matcher.Match(rs.Rules, vector, s.ruleCap)
	segments := s.renderer.Render(report.Request{
		Identity:      in.Identity,
		Flags:         map[rules.Flag]bool{rules.FlagA: in.FlagA, rules.FlagB: in.FlagB},
		Sections:      in.Sections,
		Vector:        vector,
		Matches:       matches,
		SpecialStates: rs.SpecialStates,
	})

	s.metrics.Analysis(source)
	s.logger.Info("report rendered",
		zap.String("report_id", res.ReportID),
		zap.String("source", source),
		zap.String("rules", rs.Meta.Source),
		zap.Int("matches", len(matches)),
		zap.Int("segments", len(segments)),
	)
	return Result{
		ReportID:    res.ReportID,
		RulesSource: rs.Meta.Source,
		Vector:      vector,
		Matches:     matches,
		Segments:    segments,
	}
}

// AnalyzeSession renders the report for a completed intake session.
func (s *Service) AnalyzeSession(ctx context.Context, sess intake.Session) []report.Segment {
	res := s.Analyze(ctx, FromSession(sess), SourceIntake)
	return res.Segments
}

// FromSession converts a finished intake session into pipeline input.
func FromSession(sess intake.Session) Input {
	return Input{
		Identity: report.Identity{
			Name:   sess.Collected.Name,
			Gender: sess.Collected.Gender,
			Age:    sess.Collected.Age,
			Date:   sess.Collected.Date,
		},
		FlagA: sess.Collected.FlagA,
		FlagB: sess.Collected.FlagB,
		Sections: report.Sections{
			Detail:  sess.Preferences.WantDetail,
			Summary: sess.Preferences.WantSummary,
			Persona: sess.Preferences.WantPersona,
		},
		Scores: sess.Scores,
	}
}

// Classify bands a single raw value for dim with the active configuration.
func (s *Service) Classify(dim assessment.DimensionKey, raw any) (band.Scored, error) {
	if !dim.Valid() {
		return band.Scored{}, fmt.Errorf("unknown dimension %q", dim)
	}
	score := assessment.Normalize(raw)
	return band.Scored{Dim: dim, Score: score, Band: band.Classify(dim, score, s.ruleset().BandsFor(dim))}, nil
}

// Ruleset exposes the active configuration.
func (s *Service) Ruleset() *rules.Ruleset {
	return s.ruleset()
}

func (s *Service) ruleset() *rules.Ruleset {
	if s.rules == nil {
		return rules.Defaults()
	}
	if rs := s.rules.Current(); rs != nil {
		return rs
	}
	return rules.Defaults()
}

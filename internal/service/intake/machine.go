// Package intake drives the conversational questionnaire. Each inbound
// message moves one user's session through an explicit transition table.
package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/width"

	"github.com/ericdynasty/line-oca-bot/internal/analysis/report"
	"github.com/ericdynasty/line-oca-bot/internal/model/assessment"
	"github.com/ericdynasty/line-oca-bot/internal/model/intake"
	"github.com/ericdynasty/line-oca-bot/internal/service/session"
)

// Analyzer renders the report for a completed session.
type Analyzer interface {
	AnalyzeSession(ctx context.Context, s intake.Session) []report.Segment
}

// Recorder receives transition and rejection counts. *metrics.Metrics
// satisfies it.
type Recorder interface {
	Transition(from, to string)
	Rejection(state string)
}

type nopRecorder struct{}

func (nopRecorder) Transition(string, string) {}
func (nopRecorder) Rejection(string)          {}

type step struct {
	prompt   func(now time.Time) report.Segment
	validate func(text string, now time.Time) (mutation, error)
	next     intake.State
}

// Machine is the intake state machine. It holds no per-user state of its
// own; concurrent messages from the same user race and the last write wins.
type Machine struct {
	store    session.Store
	analyzer Analyzer
	metrics  Recorder
	logger   *zap.Logger
	now      func() time.Time
	steps    map[intake.State]step
}

// Option configures a Machine.
type Option func(*Machine)

// WithRecorder reports transitions and rejections.
func WithRecorder(r Recorder) Option {
	return func(m *Machine) {
		if r != nil {
			m.metrics = r
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides time.Now for date handling and activity stamps.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMachine wires the transition table to a session store and analyzer.
func NewMachine(store session.Store, analyzer Analyzer, opts ...Option) *Machine {
	m := &Machine{
		store:    store,
		analyzer: analyzer,
		metrics:  nopRecorder{},
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.steps = buildSteps()
	return m
}

func buildSteps() map[intake.State]step {
	steps := map[intake.State]step{
		intake.StateName:   {prompt: fixed(msgAskName, optCancel, optRestart), validate: validateName, next: intake.StateGender},
		intake.StateGender: {prompt: fixed(msgAskGender, "1", "2", "3", optCancel), validate: validateGender, next: intake.StateAge},
		intake.StateAge:    {prompt: fixed(msgAskAge, "14", "18", "25", optCancel), validate: validateAge, next: intake.StateDate},
		intake.StateDate:   {prompt: askDate, validate: validateDate, next: intake.StateFlagA},
		intake.StateFlagA:  {prompt: fixed(msgAskFlagA, "1", "2", optCancel), validate: validateFlagA, next: intake.StateFlagB},
		intake.StateFlagB:  {prompt: fixed(msgAskFlagB, "1", "2", optCancel), validate: validateFlagB},
		intake.StatePreferences: {
			prompt:   fixed(msgAskWant, "1", "2", "3", "4", optCancel),
			validate: validatePreferences,
			next:     intake.StateAnalyzing,
		},
	}

	keys := assessment.Keys()
	flagB := steps[intake.StateFlagB]
	flagB.next = intake.ScoreState(keys[0])
	steps[intake.StateFlagB] = flagB

	for i, dim := range keys {
		next := intake.StatePreferences
		if i+1 < len(keys) {
			next = intake.ScoreState(keys[i+1])
		}
		steps[intake.ScoreState(dim)] = step{
			prompt:   fixed(askScore(dim), "-50", "-25", "0", "25", "50", optCancel),
			validate: validateScore(dim),
			next:     next,
		}
	}
	return steps
}

func fixed(text string, options ...string) func(time.Time) report.Segment {
	return func(time.Time) report.Segment {
		return report.Segment{Text: text, Options: options}
	}
}

func askDate(now time.Time) report.Segment {
	return report.Segment{Text: msgAskDate, Options: []string{"1", now.Format(dateLayout), optCancel}}
}

// Handle consumes one inbound text message and returns the replies.
func (m *Machine) Handle(ctx context.Context, userID, text string) ([]report.Segment, error) {
	if userID == "" {
		return nil, session.ErrUserIDRequired
	}
	text = strings.TrimSpace(width.Fold.String(text))

	current, found, err := m.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch parseCommand(text) {
	case cmdCancel:
		return m.cancel(ctx, userID, current, found)
	case cmdRestart:
		return m.restart(ctx, userID, current, found, report.Segment{Text: msgRestarted})
	case cmdStart:
		return m.restart(ctx, userID, current, found)
	case cmdContinue:
		if found {
			if st, ok := m.steps[current.State]; ok {
				now := m.now()
				if err := m.touch(ctx, current, now); err != nil {
					return nil, err
				}
				return []report.Segment{{Text: msgContinueHint}, st.prompt(now)}, nil
			}
		}
	}

	if !found || current.State == intake.StateIdle {
		return m.greet(ctx, userID)
	}
	st, ok := m.steps[current.State]
	if !ok {
		return m.reset(ctx, current)
	}
	return m.advance(ctx, current, st, text)
}

// Prompt returns the question a session in state s is waiting on.
func (m *Machine) Prompt(s intake.State) (report.Segment, bool) {
	st, ok := m.steps[s]
	if !ok {
		return report.Segment{}, false
	}
	return st.prompt(m.now()), true
}

func (m *Machine) load(ctx context.Context, userID string) (intake.Session, bool, error) {
	current, err := m.store.Get(ctx, userID)
	if errors.Is(err, session.ErrSessionNotFound) {
		return intake.Session{}, false, nil
	}
	if err != nil {
		return intake.Session{}, false, fmt.Errorf("load session: %w", err)
	}
	return current, true, nil
}

func (m *Machine) advance(ctx context.Context, current intake.Session, st step, text string) ([]report.Segment, error) {
	now := m.now()
	apply, err := st.validate(text, now)
	if err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return nil, err
		}
		m.metrics.Rejection(string(current.State))
		m.logger.Debug("reply rejected",
			zap.String("user_id", current.UserID),
			zap.String("state", string(current.State)),
			zap.String("field", verr.Field),
		)
		if err := m.touch(ctx, current, now); err != nil {
			return nil, err
		}
		return []report.Segment{{Text: verr.Hint}, st.prompt(now)}, nil
	}

	next := current.Clone()
	apply(&next)
	next.State = st.next
	next.LastActivity = now
	m.transition(current.State, next.State)

	if next.State == intake.StateAnalyzing {
		return m.finish(ctx, next)
	}
	if err := m.store.Put(ctx, next); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	follow := m.steps[next.State]
	return []report.Segment{follow.prompt(now)}, nil
}

// touch 只刷新活动时间，状态与已收集的数据不变
func (m *Machine) touch(ctx context.Context, current intake.Session, now time.Time) error {
	current.LastActivity = now
	if err := m.store.Put(ctx, current); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (m *Machine) finish(ctx context.Context, s intake.Session) ([]report.Segment, error) {
	if err := m.store.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	segments := m.analyzer.AnalyzeSession(ctx, s)
	m.transition(intake.StateAnalyzing, intake.StateDone)
	if err := m.store.Delete(ctx, s.UserID); err != nil {
		m.logger.Warn("drop finished session", zap.String("user_id", s.UserID), zap.Error(err))
	}
	m.logger.Info("intake completed", zap.String("user_id", s.UserID), zap.Int("segments", len(segments)))
	return segments, nil
}

func (m *Machine) greet(ctx context.Context, userID string) ([]report.Segment, error) {
	s := intake.NewSession(userID, m.now())
	if err := m.store.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	m.transition(intake.StateIdle, s.State)
	prompt, _ := m.Prompt(s.State)
	return []report.Segment{{Text: msgHello}, prompt}, nil
}

func (m *Machine) restart(ctx context.Context, userID string, current intake.Session, found bool, lead ...report.Segment) ([]report.Segment, error) {
	s := intake.NewSession(userID, m.now())
	if err := m.store.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	from := intake.StateIdle
	if found {
		from = current.State
	}
	m.transition(from, s.State)
	prompt, _ := m.Prompt(s.State)
	return append(lead, prompt), nil
}

func (m *Machine) cancel(ctx context.Context, userID string, current intake.Session, found bool) ([]report.Segment, error) {
	if found {
		if err := m.store.Delete(ctx, userID); err != nil {
			return nil, fmt.Errorf("drop session: %w", err)
		}
		m.transition(current.State, intake.StateCancelled)
	}
	return []report.Segment{
		{Text: msgCancelled},
		{Text: msgCancelHint, Options: []string{optStart, optRestart}},
	}, nil
}

func (m *Machine) reset(ctx context.Context, current intake.Session) ([]report.Segment, error) {
	m.logger.Warn("session in unknown state, resetting",
		zap.String("user_id", current.UserID),
		zap.String("state", string(current.State)),
	)
	if err := m.store.Delete(ctx, current.UserID); err != nil {
		return nil, fmt.Errorf("drop session: %w", err)
	}
	m.transition(current.State, intake.StateIdle)
	return []report.Segment{{Text: msgResetHint, Options: []string{optStart}}}, nil
}

func (m *Machine) transition(from, to intake.State) {
	m.metrics.Transition(string(from), string(to))
}

package analysis

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericdynasty/line-oca-bot/internal/analysis/band"
	"github.com/ericdynasty/line-oca-bot/internal/analysis/report"
	"github.com/ericdynasty/line-oca-bot/internal/analysis/syndrome"
	"github.com/ericdynasty/line-oca-bot/internal/model/assessment"
	"github.com/ericdynasty/line-oca-bot/internal/model/intake"
	"github.com/ericdynasty/line-oca-bot/internal/rules"
	intakeService "github.com/ericdynasty/line-oca-bot/internal/service/intake"
)

var testTime = time.Date(2025, 9, 2, 10, 0, 0, 0, time.UTC)

var sampleScores = map[assessment.DimensionKey]int{
	assessment.DimA: 44, assessment.DimB: -8, assessment.DimC: -35, assessment.DimD: 22, assessment.DimE: 41,
	assessment.DimF: 51, assessment.DimG: 16, assessment.DimH: 2, assessment.DimI: -33, assessment.DimJ: -12,
}

type staticSource struct{ rs *rules.Ruleset }

func (s staticSource) Current() *rules.Ruleset { return s.rs }

type panickingSource struct{}

func (panickingSource) Current() *rules.Ruleset { panic("boom") }

type countingRecorder struct {
	analyses   map[string]int
	ruleErrors map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{analyses: map[string]int{}, ruleErrors: map[string]int{}}
}

func (c *countingRecorder) Analysis(source string)  { c.analyses[source]++ }
func (c *countingRecorder) RuleError(ruleID string) { c.ruleErrors[ruleID]++ }

func TestMissingRulesFileStillRendersFullReport(t *testing.T) {
	store := rules.NewStore(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	svc := NewService(store, nil)

	res := svc.Analyze(context.Background(), Input{
		Identity: report.Identity{Name: "小明", Gender: "男", Age: 30},
		Scores:   sampleScores,
	}, SourceIntake)

	require.False(t, res.Failed)
	assert.Equal(t, rules.SourceFallback, res.RulesSource)
	assert.NotEmpty(t, res.ReportID)
	require.Len(t, res.Vector, 10)
	require.Len(t, res.Segments, 5)

	detail := res.Segments[1].Text
	for _, key := range assessment.Keys() {
		assert.Containsf(t, detail, string(key)+" "+key.Name()+"：", "detail for %s", key)
	}
	ids := make([]string, 0, len(res.Matches))
	for _, m := range res.Matches {
		ids = append(ids, m.RuleID)
	}
	assert.Equal(t, []string{"A1_B34", "A1_C34", "F_over_E"}, ids)
}

func TestSampleBands(t *testing.T) {
	svc := NewService(staticSource{rules.Defaults()}, nil)
	res := svc.Analyze(context.Background(), Input{Scores: sampleScores}, SourceTool)

	want := map[assessment.DimensionKey]band.Level{
		assessment.DimA: band.HighHeavy,
		assessment.DimB: band.Neutral,
		assessment.DimC: band.LowLight,
		assessment.DimE: band.HighHeavy,
		assessment.DimF: band.HighHeavy,
		assessment.DimI: band.LowLight,
		assessment.DimJ: band.LowLight,
	}
	for dim, level := range want {
		got, ok := res.Vector.Get(dim)
		require.True(t, ok)
		assert.Equalf(t, level, got.Band.Level, "dimension %s", dim)
	}
}

func TestAnalyzeSessionHonoursPreferences(t *testing.T) {
	rec := newCountingRecorder()
	svc := NewService(staticSource{rules.Defaults()}, nil, WithRecorder(rec))

	sess := intake.NewSession("u1", testTime)
	sess.Collected = intake.Collected{Name: "小華", Gender: "女", Age: 20, Date: "2025/09/02", FlagB: true}
	sess.Preferences = intake.Preferences{WantSummary: true}
	for k, v := range sampleScores {
		sess.Scores[k] = v
	}

	segments := svc.AnalyzeSession(context.Background(), sess)
	require.Len(t, segments, 3)
	assert.True(t, strings.HasPrefix(segments[0].Text, "Hi 小華！"))
	assert.True(t, strings.HasPrefix(segments[1].Text, "【綜合重點】"))
	assert.Contains(t, segments[1].Text, "躁狂（E 點）：有")
	assert.True(t, strings.HasPrefix(segments[2].Text, "【判讀提示】"))
	assert.Equal(t, 1, rec.analyses[SourceIntake])
}

func TestFormScoresAreNormalized(t *testing.T) {
	svc := NewService(staticSource{rules.Defaults()}, nil)
	res := svc.Analyze(context.Background(), Form{
		Name: "表單",
		Scores: map[string]any{
			"a": "44.5",
			"B": 300,
			"C": nil,
			"D": "abc",
			"E": -12.5,
			"Z": 10,
		},
		Wants: &report.Sections{Detail: true},
	}.Input(), SourceForm)

	scores := map[assessment.DimensionKey]int{}
	for _, s := range res.Vector {
		scores[s.Dim] = s.Score
	}
	assert.Equal(t, 45, scores[assessment.DimA])
	assert.Equal(t, 100, scores[assessment.DimB])
	assert.Equal(t, 0, scores[assessment.DimC])
	assert.Equal(t, 0, scores[assessment.DimD])
	assert.Equal(t, -13, scores[assessment.DimE])
	assert.Equal(t, 0, scores[assessment.DimJ])
	assert.Len(t, res.Segments, 2)
}

func validForm() Form {
	scores := map[string]any{}
	for key, v := range sampleScores {
		scores[string(key)] = v
	}
	scores["B"] = "-8"
	return Form{Name: "小明", Age: 30, Scores: scores}
}

func TestAnalyzeFormValidates(t *testing.T) {
	svc := NewService(staticSource{rules.Defaults()}, nil)

	res, err := svc.AnalyzeForm(context.Background(), validForm())
	require.NoError(t, err)
	assert.Len(t, res.Segments, 5)

	cases := []struct {
		name  string
		edit  func(*Form)
		field string
	}{
		{"empty name", func(f *Form) { f.Name = "  " }, "name"},
		{"age 13", func(f *Form) { f.Age = 13 }, "age"},
		{"missing age", func(f *Form) { f.Age = 0 }, "age"},
		{"score out of range", func(f *Form) { f.Scores["A"] = 500 }, "score.A"},
		{"score missing", func(f *Form) { delete(f.Scores, "J") }, "score.J"},
		{"score not numeric", func(f *Form) { f.Scores["C"] = "abc" }, "score.C"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := validForm()
			tc.edit(&form)
			_, err := svc.AnalyzeForm(context.Background(), form)
			var verr *intakeService.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.NotEmpty(t, verr.Hint)
		})
	}
}

func TestPanicBecomesFallbackSegment(t *testing.T) {
	svc := NewService(panickingSource{}, nil)
	res := svc.Analyze(context.Background(), Input{Scores: sampleScores}, SourceIntake)

	assert.True(t, res.Failed)
	require.Len(t, res.Segments, 1)
	assert.Equal(t, fallbackText, res.Segments[0].Text)
	assert.NotEmpty(t, res.ReportID)
}

func TestRuleErrorsAreCounted(t *testing.T) {
	rs := rules.Defaults()
	rs.Rules = append([]syndrome.Rule{{
		ID:       "broken",
		Priority: 500,
		Insight:  "never",
		When:     syndrome.Predicate{Max: &syndrome.MaxTest{Dim: "Z"}},
	}}, rs.Rules...)

	rec := newCountingRecorder()
	svc := NewService(staticSource{rs}, nil, WithRecorder(rec))
	res := svc.Analyze(context.Background(), Input{Scores: sampleScores}, SourceTool)

	assert.False(t, res.Failed)
	assert.Equal(t, 1, rec.ruleErrors["broken"])
	assert.NotEmpty(t, res.Matches)
}

func TestRuleCap(t *testing.T) {
	svc := NewService(staticSource{rules.Defaults()}, nil, WithRuleCap(1))
	res := svc.Analyze(context.Background(), Input{Scores: sampleScores}, SourceTool)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "A1_B34", res.Matches[0].RuleID)
}

func TestClassify(t *testing.T) {
	svc := NewService(nil, nil)

	got, err := svc.Classify(assessment.DimB, "-40")
	require.NoError(t, err)
	assert.Equal(t, -40, got.Score)
	assert.Equal(t, band.LowLight, got.Band.Level)

	_, err = svc.Classify("K", 10)
	assert.Error(t, err)
}

func TestParseScorePairs(t *testing.T) {
	scores, err := ParseScorePairs("a=44, B:-8;C=＋12")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"A": "44", "B": "-8", "C": "＋12"}, scores)

	_, err = ParseScorePairs("Z=1")
	assert.Error(t, err)
	_, err = ParseScorePairs("A44")
	assert.Error(t, err)
	_, err = ParseScorePairs("  ")
	assert.Error(t, err)
}

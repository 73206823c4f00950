package report

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericdynasty/line-oca-bot/internal/analysis/band"
	"github.com/ericdynasty/line-oca-bot/internal/analysis/syndrome"
	"github.com/ericdynasty/line-oca-bot/internal/model/assessment"
	"github.com/ericdynasty/line-oca-bot/internal/rules"
)

var sampleScores = map[assessment.DimensionKey]int{
	assessment.DimA: 44, assessment.DimB: -8, assessment.DimC: -35, assessment.DimD: 22, assessment.DimE: 41,
	assessment.DimF: 51, assessment.DimG: 16, assessment.DimH: 2, assessment.DimI: -33, assessment.DimJ: -12,
}

func sampleRequest() Request {
	return Request{
		Identity: Identity{Name: "小明", Gender: "男", Age: 30, Date: "2025/01/02"},
		Vector:   band.ClassifyAll(sampleScores, band.DefaultTable()),
		Matches: []syndrome.Match{
			{RuleID: "A1_B34", Priority: 70, Insight: "穩定偏高但價值未跟上。"},
		},
	}
}

func TestRenderAllSections(t *testing.T) {
	r := NewRenderer(nil)
	got := Texts(r.Render(sampleRequest()))
	require.Len(t, got, 5)

	want := []string{
		"Hi 小明！已收到你的 OCA 分數。\n（年齡：30，性別：男）",
		"【綜合重點】\n" +
			"最需要留意／最有影響的面向：F 樂觀：51（高(重)）、A 穩定：44（高(重)）、E 活躍：41（高(重)）。\n" +
			"躁狂（B 情緒）：無；躁狂（E 點）：無；\n" +
			"日 期：2025/01/02。",
		"【判讀提示】\n・穩定偏高但價值未跟上。",
		"【人物側寫】\nF 樂觀偏高、A 穩定偏高；整體呈現「主動、外放」傾向。\n行動先於猶豫，樂於把想法說出口。",
	}
	if diff := cmp.Diff(want, []string{got[0], got[2], got[3], got[4]}); diff != "" {
		t.Fatalf("segments mismatch (-want +got):\n%s", diff)
	}

	detail := got[1]
	assert.True(t, strings.HasPrefix(detail, "【A~J 單點】\nA 穩定：44｜高(重)｜（A5）\n— 偏高且影響重、驅動力大。\n\nB 價值"))
	assert.Contains(t, detail, "C 變化：-35｜低(輕)｜（C2）")
	assert.Contains(t, detail, "J 滿意能力：-12｜低(輕)｜（J2）")
}

func TestRenderNoPreferenceMeansAll(t *testing.T) {
	r := NewRenderer(nil)
	req := sampleRequest()
	req.Sections = Sections{}
	assert.Len(t, r.Render(req), 5)
}

func TestRenderSelectedSections(t *testing.T) {
	r := NewRenderer(nil)
	req := sampleRequest()

	req.Sections = Sections{Persona: true}
	got := Texts(r.Render(req))
	require.Len(t, got, 2)
	assert.True(t, strings.HasPrefix(got[1], "【人物側寫】"))

	req.Sections = Sections{Detail: true, Persona: true}
	got = Texts(r.Render(req))
	require.Len(t, got, 3)
	for _, text := range got {
		assert.NotContains(t, text, "【判讀提示】", "insights belong to the summary")
	}
}

func TestRenderInsightsOnlyWithMatches(t *testing.T) {
	r := NewRenderer(nil)
	req := sampleRequest()
	req.Matches = nil
	req.Sections = Sections{Summary: true}
	got := Texts(r.Render(req))
	require.Len(t, got, 2)
	assert.True(t, strings.HasPrefix(got[1], "【綜合重點】"))
}

func TestSpecialStateOverridesBandText(t *testing.T) {
	r := NewRenderer(nil)
	req := sampleRequest()
	req.Flags = map[rules.Flag]bool{rules.FlagA: true}
	req.Sections = Sections{Detail: true, Summary: true}
	got := Texts(r.Render(req))

	detail := got[1]
	special := rules.DefaultSpecialStates()[rules.FlagA]
	assert.Contains(t, detail, "B 價值：-8｜躁狂（B 情緒）｜（B3）\n— "+special.Template)
	assert.Contains(t, detail, "E 活躍：41｜高(重)｜（E5）", "flag B is off so E keeps its band")
	assert.Contains(t, got[2], "躁狂（B 情緒）：有；躁狂（E 點）：無；")
}

func TestCustomSpecialStateTarget(t *testing.T) {
	r := NewRenderer(nil)
	req := sampleRequest()
	req.Flags = map[rules.Flag]bool{rules.FlagB: true}
	req.SpecialStates = map[rules.Flag]rules.SpecialState{
		rules.FlagA: rules.DefaultSpecialStates()[rules.FlagA],
		rules.FlagB: {Dim: assessment.DimG, Label: "特殊 G", Template: "G 改寫"},
	}
	req.Sections = Sections{Detail: true}
	detail := Texts(r.Render(req))[1]
	assert.Contains(t, detail, "G 責任：16｜特殊 G｜（G4）\n— G 改寫")
	assert.Contains(t, detail, "E 活躍：41｜高(重)｜（E5）")
}

func TestSegmentsRespectCap(t *testing.T) {
	const max = 60
	r := NewRenderer(nil, WithMaxSegmentLen(max))
	segments := r.Render(sampleRequest())
	require.Greater(t, len(segments), 5)

	headings := 0
	for _, s := range segments {
		assert.LessOrEqual(t, utf8.RuneCountInString(s.Text), max, s.Text)
		assert.NotEmpty(t, s.Text)
		for _, h := range []string{headingDetail, headingSummary, headingInsights, headingPersona} {
			if strings.Contains(s.Text, h) {
				assert.True(t, strings.HasPrefix(s.Text, h), "section %s must open a segment", h)
				headings++
			}
		}
	}
	assert.Equal(t, 4, headings)
}

func TestPersonaBalancedWithoutScores(t *testing.T) {
	r := NewRenderer(nil)
	got := Texts(r.Render(Request{Sections: Sections{Persona: true}}))
	require.Len(t, got, 2)
	assert.Equal(t, "Hi ！已收到你的 OCA 分數。\n（年齡：未填，性別：未填）", got[0])
	assert.Equal(t, "【人物側寫】\n整體表現較均衡。", got[1])
}

func TestPack(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		max   int
		want  []string
	}{
		{name: "fits", lines: []string{"ab", "cd"}, max: 10, want: []string{"ab\ncd"}},
		{name: "greedy", lines: []string{"aaa", "bbb", "cc"}, max: 7, want: []string{"aaa\nbbb", "cc"}},
		{name: "long line split on runes", lines: []string{"abcdefghij"}, max: 4, want: []string{"abcd", "efgh", "ij"}},
		{name: "runes not bytes", lines: []string{"一二三", "四五"}, max: 6, want: []string{"一二三\n四五"}},
		{name: "no leading blank", lines: []string{"aaaa", "", "bb"}, max: 4, want: []string{"aaaa", "bb"}},
		{name: "empty", lines: nil, max: 4, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, pack(tt.lines, tt.max)); diff != "" {
				t.Fatalf("pack mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSections(t *testing.T) {
	s, err := ParseSections("detail, Persona")
	require.NoError(t, err)
	assert.Equal(t, Sections{Detail: true, Persona: true}, s)

	s, err = ParseSections("")
	require.NoError(t, err)
	assert.Equal(t, AllSections(), s)

	_, err = ParseSections("detail,horoscope")
	assert.Error(t, err)
}
